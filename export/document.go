// Package export converts tournaments to and from a plain document form that can be
// stored, sent over the wire or edited by hand as JSON or YAML.
package export

import (
	"fmt"
	"time"

	"github.com/Dosada05/tournament-generator/models"
)

const DocumentVersion = 1

// Duration is a time.Duration written as "1h30m" in documents.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("%w: invalid duration %q", models.ErrConfiguration, string(b))
	}
	*d = Duration(v)
	return nil
}

type Timing struct {
	Play         Duration `json:"play" yaml:"play"`
	GameWait     Duration `json:"game_wait" yaml:"game_wait"`
	RoundWait    Duration `json:"round_wait" yaml:"round_wait"`
	CategoryWait Duration `json:"category_wait" yaml:"category_wait"`
}

type Document struct {
	Version     int            `json:"version" yaml:"version"`
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name" yaml:"name"`
	Timing      Timing         `json:"timing" yaml:"timing"`
	FirstGameID int            `json:"first_game_id,omitempty" yaml:"first_game_id,omitempty"`
	NextGameID  int            `json:"next_game_id,omitempty" yaml:"next_game_id,omitempty"`
	Teams       []TeamDoc      `json:"teams" yaml:"teams"`
	Categories  []CategoryDoc  `json:"categories,omitempty" yaml:"categories,omitempty"`
	Rounds      []RoundDoc     `json:"rounds,omitempty" yaml:"rounds,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

type TeamDoc struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	OriginID string `json:"origin_id,omitempty" yaml:"origin_id,omitempty"`
}

type CategoryDoc struct {
	ID     string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string     `json:"name" yaml:"name"`
	Rounds []RoundDoc `json:"rounds" yaml:"rounds"`
}

type RoundDoc struct {
	ID     string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string     `json:"name" yaml:"name"`
	Order  int        `json:"order,omitempty" yaml:"order,omitempty"`
	Groups []GroupDoc `json:"groups" yaml:"groups"`
}

type PointsDoc struct {
	Win      int `json:"win" yaml:"win"`
	Draw     int `json:"draw" yaml:"draw"`
	Loss     int `json:"loss" yaml:"loss"`
	Second   int `json:"second" yaml:"second"`
	Third    int `json:"third" yaml:"third"`
	Progress int `json:"progress" yaml:"progress"`
}

type GroupDoc struct {
	ID           string           `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string           `json:"name" yaml:"name"`
	Order        int              `json:"order,omitempty" yaml:"order,omitempty"`
	Type         string           `json:"type,omitempty" yaml:"type,omitempty"`
	InGame       int              `json:"in_game,omitempty" yaml:"in_game,omitempty"`
	MaxSize      int              `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	AllowSkip    bool             `json:"allow_skip,omitempty" yaml:"allow_skip,omitempty"`
	Points       *PointsDoc       `json:"points,omitempty" yaml:"points,omitempty"`
	Teams        []string         `json:"teams" yaml:"teams"`
	Progressed   []string         `json:"progressed,omitempty" yaml:"progressed,omitempty"`
	Games        []GameDoc        `json:"games,omitempty" yaml:"games,omitempty"`
	Progressions []ProgressionDoc `json:"progressions,omitempty" yaml:"progressions,omitempty"`
}

type GameDoc struct {
	ID     int            `json:"id,omitempty" yaml:"id,omitempty"`
	Teams  []string       `json:"teams" yaml:"teams"`
	Scores map[string]int `json:"scores,omitempty" yaml:"scores,omitempty"`
}

type ProgressionDoc struct {
	To         string      `json:"to" yaml:"to"`
	Offset     int         `json:"offset,omitempty" yaml:"offset,omitempty"`
	Length     *int        `json:"length,omitempty" yaml:"length,omitempty"`
	Points     *int        `json:"points,omitempty" yaml:"points,omitempty"`
	Filters    []FilterDoc `json:"filters,omitempty" yaml:"filters,omitempty"`
	Progressed bool        `json:"progressed,omitempty" yaml:"progressed,omitempty"`
	Teams      []string    `json:"teams,omitempty" yaml:"teams,omitempty"`
}

// FilterDoc is a leaf when What is set, otherwise a composite joined by Op.
type FilterDoc struct {
	Op        string      `json:"op,omitempty" yaml:"op,omitempty"`
	What      string      `json:"what,omitempty" yaml:"what,omitempty"`
	How       string      `json:"how,omitempty" yaml:"how,omitempty"`
	Value     float64     `json:"value,omitempty" yaml:"value,omitempty"`
	Team      string      `json:"team,omitempty" yaml:"team,omitempty"`
	Aggregate string      `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	Groups    []string    `json:"groups,omitempty" yaml:"groups,omitempty"`
	Children  []FilterDoc `json:"children,omitempty" yaml:"children,omitempty"`
}

// Export captures the full state of t: structure, games with their scores and the
// progressions already run.
func Export(t *models.Tournament) *Document {
	doc := &Document{
		Version:     DocumentVersion,
		ID:          t.ID,
		Name:        t.Name,
		FirstGameID: t.FirstIncrement(),
		NextGameID:  t.AutoIncrement(),
		Timing: Timing{
			Play:         Duration(t.Play),
			GameWait:     Duration(t.GameWait),
			RoundWait:    Duration(t.RoundWait),
			CategoryWait: Duration(t.CategoryWait),
		},
	}
	for _, team := range t.Teams() {
		doc.Teams = append(doc.Teams, TeamDoc{ID: team.ID, Name: team.Name, OriginID: team.OriginID})
	}
	for _, c := range t.Categories() {
		cd := CategoryDoc{ID: c.ID, Name: c.Name}
		for _, r := range c.Rounds() {
			cd.Rounds = append(cd.Rounds, exportRound(r))
		}
		doc.Categories = append(doc.Categories, cd)
	}
	for _, r := range t.DirectRounds() {
		doc.Rounds = append(doc.Rounds, exportRound(r))
	}
	return doc
}

func exportRound(r *models.Round) RoundDoc {
	rd := RoundDoc{ID: r.ID, Name: r.Name, Order: r.Order}
	for _, g := range r.Groups() {
		rd.Groups = append(rd.Groups, exportGroup(g))
	}
	return rd
}

func exportGroup(g *models.Group) GroupDoc {
	gd := GroupDoc{
		ID:        g.ID,
		Name:      g.Name,
		Order:     g.Order,
		Type:      string(g.Type()),
		InGame:    g.InGame(),
		MaxSize:   g.MaxSize(),
		AllowSkip: g.AllowSkip,
		Points: &PointsDoc{
			Win:      g.WinPoints,
			Draw:     g.DrawPoints,
			Loss:     g.LossPoints,
			Second:   g.SecondPoints,
			Third:    g.ThirdPoints,
			Progress: g.ProgressPoints,
		},
	}
	for _, team := range g.Teams() {
		gd.Teams = append(gd.Teams, team.ID)
		if g.IsProgressed(team) {
			gd.Progressed = append(gd.Progressed, team.ID)
		}
	}
	for _, game := range g.Games() {
		d := GameDoc{ID: game.ID, Teams: append([]string(nil), game.TeamIDs...)}
		if game.IsPlayed() {
			d.Scores = make(map[string]int, len(game.Results))
			for id, res := range game.Results {
				d.Scores[id] = res.Score
			}
		}
		gd.Games = append(gd.Games, d)
	}
	for _, p := range g.Progressions() {
		pd := ProgressionDoc{
			To:         p.To().ID,
			Offset:     p.Offset,
			Length:     p.Length,
			Points:     p.Points,
			Progressed: p.IsProgressed(),
		}
		for _, f := range p.Filters {
			pd.Filters = append(pd.Filters, exportFilter(f))
		}
		if p.IsProgressed() {
			for _, team := range p.ProgressedTeams() {
				pd.Teams = append(pd.Teams, team.ID)
			}
		}
		gd.Progressions = append(gd.Progressions, pd)
	}
	return gd
}

func exportFilter(f models.Filter) FilterDoc {
	if f.Team != nil {
		tf := f.Team
		fd := FilterDoc{
			What:      string(tf.What),
			How:       string(tf.How),
			Value:     tf.Value,
			Team:      tf.TeamID,
			Aggregate: string(tf.Aggregate),
		}
		for _, g := range tf.Groups {
			fd.Groups = append(fd.Groups, g.ID)
		}
		return fd
	}
	fd := FilterDoc{Op: string(f.Op)}
	for _, child := range f.Children {
		fd.Children = append(fd.Children, exportFilter(child))
	}
	return fd
}
