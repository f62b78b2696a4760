package models

import (
	"time"

	"github.com/Dosada05/tournament-generator/containers"
	"github.com/google/uuid"
)

// Tournament is the root of a bracket. Every round below it, directly or through a
// category, draws game ids from one shared stream.
type Tournament struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Play         time.Duration `json:"play"`
	GameWait     time.Duration `json:"game_wait"`
	RoundWait    time.Duration `json:"round_wait"`
	CategoryWait time.Duration `json:"category_wait"`

	teams      []*Team
	categories []*Category
	rounds     []*Round

	tree *containers.Tree
	node containers.NodeID
}

type TournamentOption func(*Tournament)

func WithTournamentID(id string) TournamentOption {
	return func(t *Tournament) {
		if id != "" {
			t.ID = id
		}
	}
}

// WithTiming sets the durations used by TournamentTime.
func WithTiming(play, gameWait, roundWait, categoryWait time.Duration) TournamentOption {
	return func(t *Tournament) {
		t.Play, t.GameWait, t.RoundWait, t.CategoryWait = play, gameWait, roundWait, categoryWait
	}
}

func NewTournament(name string, opts ...TournamentOption) *Tournament {
	tree := containers.NewTree()
	t := &Tournament{ID: uuid.NewString(), Name: name, tree: tree, node: tree.MustAdd(0)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tournament) String() string {
	return t.Name
}

// AddTeam registers teams with the tournament, ignoring ids already registered.
func (t *Tournament) AddTeam(teams ...*Team) {
	for _, team := range teams {
		if team == nil || t.registered(team.ID) {
			continue
		}
		t.teams = append(t.teams, team)
	}
}

func (t *Tournament) registered(id string) bool {
	for _, team := range t.teams {
		if team.ID == id {
			return true
		}
	}
	return false
}

// Teams returns the registered teams followed by any other team found in a group.
func (t *Tournament) Teams() []*Team {
	out := make([]*Team, len(t.teams))
	copy(out, t.teams)
	seen := make(map[string]bool, len(out))
	for _, team := range out {
		seen[team.ID] = true
	}
	for _, r := range t.Rounds() {
		for _, team := range r.Teams() {
			if !seen[team.ID] {
				seen[team.ID] = true
				out = append(out, team)
			}
		}
	}
	return out
}

func (t *Tournament) Team(id string) *Team {
	for _, team := range t.Teams() {
		if team.ID == id {
			return team
		}
	}
	return nil
}

func (t *Tournament) Category(name string, opts ...CategoryOption) *Category {
	c := &Category{ID: uuid.NewString(), Name: name, tree: t.tree, node: t.tree.MustAdd(t.node)}
	for _, opt := range opts {
		opt(c)
	}
	t.categories = append(t.categories, c)
	return c
}

func (t *Tournament) Categories() []*Category {
	out := make([]*Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Round adds a round directly under the tournament.
func (t *Tournament) Round(name string, opts ...RoundOption) *Round {
	r := newRound(name, t.tree, t.tree.MustAdd(t.node), opts...)
	if r.Order == 0 {
		r.Order = len(t.rounds) + 1
	}
	t.rounds = append(t.rounds, r)
	return r
}

// Rounds lists the rounds of every category, in category order, then the direct rounds.
func (t *Tournament) Rounds() []*Round {
	var out []*Round
	for _, c := range t.categories {
		out = append(out, c.rounds...)
	}
	return append(out, t.rounds...)
}

// DirectRounds lists only the rounds added straight under the tournament.
func (t *Tournament) DirectRounds() []*Round {
	out := make([]*Round, len(t.rounds))
	copy(out, t.rounds)
	return out
}

func (t *Tournament) GroupByID(id string) *Group {
	for _, r := range t.Rounds() {
		if g := r.GroupByID(id); g != nil {
			return g
		}
	}
	return nil
}

// GameByID finds a game and the group owning it.
func (t *Tournament) GameByID(id int) (*Game, *Group) {
	for _, r := range t.Rounds() {
		for _, g := range r.groups {
			if game := g.GameByID(id); game != nil {
				return game, g
			}
		}
	}
	return nil, nil
}

func (t *Tournament) Games() []*Game {
	var out []*Game
	for _, r := range t.Rounds() {
		out = append(out, r.Games()...)
	}
	return out
}

// SortTeams produces the final standings: teams of the last round first, ranked within
// that round, then the teams eliminated earlier, round by round backwards.
func (t *Tournament) SortTeams(ordering Ordering) ([]*Team, error) {
	rounds := t.Rounds()
	seen := make(map[string]bool)
	var out []*Team
	for i := len(rounds) - 1; i >= 0; i-- {
		ranked, err := rounds[i].SortTeams(ordering)
		if err != nil {
			return nil, err
		}
		for _, team := range ranked {
			if !seen[team.ID] {
				seen[team.ID] = true
				out = append(out, team)
			}
		}
	}

	var rest []*Team
	for _, team := range t.teams {
		if !seen[team.ID] {
			rest = append(rest, team)
		}
	}
	rest, err := RankTeams(rest, nil, ordering)
	if err != nil {
		return nil, err
	}
	return append(out, rest...), nil
}

func (t *Tournament) ResetGames() {
	for _, r := range t.Rounds() {
		r.ResetGames()
	}
}

// ClearGames removes every game and rewinds the id stream.
func (t *Tournament) ClearGames() {
	for _, r := range t.Rounds() {
		r.ClearGames()
	}
	t.tree.Reset(t.node)
}

func (t *Tournament) AutoIncrement() int {
	return t.tree.AutoIncrement(t.node)
}

func (t *Tournament) SetAutoIncrement(n int) {
	t.tree.SetAutoIncrement(t.node, n)
}

// AdvanceAutoIncrement consumes ids until the next one handed out is at least n.
func (t *Tournament) AdvanceAutoIncrement(n int) {
	for t.tree.AutoIncrement(t.node) < n {
		t.tree.Increment(t.node)
	}
}

// FirstIncrement is the id ClearGames rewinds the stream to.
func (t *Tournament) FirstIncrement() int {
	return t.tree.FirstIncrement(t.node)
}

// TournamentTime estimates the wall-clock length of the tournament from its games.
func (t *Tournament) TournamentTime() time.Duration {
	games := len(t.Games())
	if games == 0 {
		return 0
	}
	total := t.Play*time.Duration(games) + t.GameWait*time.Duration(games-1)
	if rounds := len(t.Rounds()); rounds > 1 {
		total += t.RoundWait * time.Duration(rounds-1)
	}
	if categories := len(t.categories); categories > 1 {
		total += t.CategoryWait * time.Duration(categories-1)
	}
	return total
}
