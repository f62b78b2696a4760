package models

import (
	"fmt"

	"github.com/google/uuid"
)

type Stat string

const (
	StatPoints Stat = "points"
	StatScore  Stat = "score"
	StatWins   Stat = "wins"
	StatDraws  Stat = "draws"
	StatLosses Stat = "losses"
	StatSecond Stat = "second"
	StatThird  Stat = "third"
)

// Stats is a team's running record inside one group.
type Stats struct {
	Points int `json:"points"`
	Score  int `json:"score"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
	Second int `json:"second"`
	Third  int `json:"third"`
	Games  int `json:"games"`
}

func (s Stats) Get(stat Stat) (int, error) {
	switch stat {
	case StatPoints:
		return s.Points, nil
	case StatScore:
		return s.Score, nil
	case StatWins:
		return s.Wins, nil
	case StatDraws:
		return s.Draws, nil
	case StatLosses:
		return s.Losses, nil
	case StatSecond:
		return s.Second, nil
	case StatThird:
		return s.Third, nil
	default:
		return 0, fmt.Errorf("%w: unknown statistic %q", ErrConfiguration, stat)
	}
}

type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SumPoints int    `json:"sum_points"`
	SumScore  int    `json:"sum_score"`

	// Set on placeholder teams moved by a blank progression.
	OriginID string `json:"origin_id,omitempty"`

	stats map[string]*Stats
}

type TeamOption func(*Team)

func WithTeamID(id string) TeamOption {
	return func(t *Team) {
		if id != "" {
			t.ID = id
		}
	}
}

func NewTeam(name string, opts ...TeamOption) *Team {
	t := &Team{
		ID:    uuid.NewString(),
		Name:  name,
		stats: make(map[string]*Stats),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewBlankTeam creates a placeholder standing in for origin in schedule estimates.
func NewBlankTeam(origin *Team) *Team {
	return &Team{
		ID:       "blank-" + uuid.NewString(),
		Name:     "Blank " + origin.Name,
		OriginID: origin.ID,
		stats:    make(map[string]*Stats),
	}
}

func (t *Team) IsBlank() bool {
	return t.OriginID != ""
}

func (t *Team) String() string {
	return t.Name
}

func (t *Team) statsFor(groupID string) *Stats {
	if t.stats == nil {
		t.stats = make(map[string]*Stats)
	}
	s, ok := t.stats[groupID]
	if !ok {
		s = &Stats{}
		t.stats[groupID] = s
	}
	return s
}

// Stats returns the team's record in groupID (zero when it never played there).
func (t *Team) Stats(groupID string) Stats {
	if s, ok := t.stats[groupID]; ok {
		return *s
	}
	return Stats{}
}

// GroupStats returns a copy of every per-group record.
func (t *Team) GroupStats() map[string]Stats {
	out := make(map[string]Stats, len(t.stats))
	for id, s := range t.stats {
		out[id] = *s
	}
	return out
}

// SetStats overwrites the record for groupID. Used when restoring a snapshot.
func (t *Team) SetStats(groupID string, s Stats) {
	*t.statsFor(groupID) = s
}

// SumStat adds stat over groupIDs; groups the team never played in count as zero.
func (t *Team) SumStat(stat Stat, groupIDs []string) (int, error) {
	sum := 0
	for _, id := range groupIDs {
		v, err := t.Stats(id).Get(stat)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func (t *Team) GameCount(groupIDs []string) int {
	n := 0
	for _, id := range groupIDs {
		n += t.Stats(id).Games
	}
	return n
}

func (t *Team) AddPoints(points int) {
	t.SumPoints += points
}

func (t *Team) RemovePoints(points int) {
	t.SumPoints -= points
}

func (t *Team) AddScore(groupID string, score int) {
	t.statsFor(groupID).Score += score
	t.SumScore += score
}

func (t *Team) RemoveScore(groupID string, score int) {
	t.AddScore(groupID, -score)
}

func (t *Team) AddWin(groupID string, points int)    { t.record(groupID, ResultWin, points, 1) }
func (t *Team) AddLoss(groupID string, points int)   { t.record(groupID, ResultLoss, points, 1) }
func (t *Team) AddDraw(groupID string, points int)   { t.record(groupID, ResultDraw, points, 1) }
func (t *Team) AddSecond(groupID string, points int) { t.record(groupID, ResultSecond, points, 1) }
func (t *Team) AddThird(groupID string, points int)  { t.record(groupID, ResultThird, points, 1) }

func (t *Team) RemoveWin(groupID string, points int)    { t.record(groupID, ResultWin, points, -1) }
func (t *Team) RemoveLoss(groupID string, points int)   { t.record(groupID, ResultLoss, points, -1) }
func (t *Team) RemoveDraw(groupID string, points int)   { t.record(groupID, ResultDraw, points, -1) }
func (t *Team) RemoveSecond(groupID string, points int) { t.record(groupID, ResultSecond, points, -1) }
func (t *Team) RemoveThird(groupID string, points int)  { t.record(groupID, ResultThird, points, -1) }

// record applies (sign=1) or reverts (sign=-1) one placement in groupID.
func (t *Team) record(groupID string, result ResultType, points, sign int) {
	s := t.statsFor(groupID)
	switch result {
	case ResultWin:
		s.Wins += sign
	case ResultLoss:
		s.Losses += sign
	case ResultDraw:
		s.Draws += sign
	case ResultSecond:
		s.Second += sign
	case ResultThird:
		s.Third += sign
	}
	s.Games += sign
	s.Points += sign * points
	t.SumPoints += sign * points
}
