package models

import (
	"fmt"

	"github.com/Dosada05/tournament-generator/containers"
	"github.com/google/uuid"
)

type Round struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`

	groups []*Group

	tree *containers.Tree
	node containers.NodeID
}

type RoundOption func(*Round)

func WithRoundID(id string) RoundOption {
	return func(r *Round) {
		if id != "" {
			r.ID = id
		}
	}
}

// NewRound creates a round outside any tournament, with its own id counter.
func NewRound(name string, opts ...RoundOption) *Round {
	tree := containers.NewTree()
	return newRound(name, tree, tree.MustAdd(0), opts...)
}

func newRound(name string, tree *containers.Tree, node containers.NodeID, opts ...RoundOption) *Round {
	r := &Round{ID: uuid.NewString(), Name: name, tree: tree, node: node}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Round) String() string {
	return r.Name
}

// Group creates a group inside the round sharing the round's id stream.
func (r *Round) Group(name string, opts ...GroupOption) (*Group, error) {
	g, err := newGroup(name, r.tree, r.tree.MustAdd(r.node), opts...)
	if err != nil {
		return nil, err
	}
	for _, existing := range r.groups {
		if existing.ID == g.ID {
			return nil, fmt.Errorf("%w: duplicate group id %q in round %q", ErrConfiguration, g.ID, r.Name)
		}
	}
	if g.Order == 0 {
		g.Order = len(r.groups) + 1
	}
	r.groups = append(r.groups, g)
	return g, nil
}

func (r *Round) Groups() []*Group {
	out := make([]*Group, len(r.groups))
	copy(out, r.groups)
	return out
}

func (r *Round) GroupByID(id string) *Group {
	for _, g := range r.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (r *Round) groupIDs() []string {
	ids := make([]string, len(r.groups))
	for i, g := range r.groups {
		ids[i] = g.ID
	}
	return ids
}

// Teams lists every member of the round's groups once, in group order.
func (r *Round) Teams() []*Team {
	seen := make(map[string]bool)
	var out []*Team
	for _, g := range r.groups {
		for _, t := range g.teams {
			if !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func (r *Round) Games() []*Game {
	var out []*Game
	for _, g := range r.groups {
		out = append(out, g.games...)
	}
	return out
}

// IsPlayed reports whether every group holding games has all results in. A round with no
// games at all is not played.
func (r *Round) IsPlayed() bool {
	hasGames := false
	for _, g := range r.groups {
		if len(g.games) == 0 {
			continue
		}
		hasGames = true
		if !g.IsPlayed() {
			return false
		}
	}
	return hasGames
}

func (r *Round) Progress(blank bool) error {
	for _, g := range r.groups {
		if err := g.Progress(blank); err != nil {
			return fmt.Errorf("progressing group %q: %w", g.Name, err)
		}
	}
	return nil
}

func (r *Round) ResetProgressions() {
	for _, g := range r.groups {
		for _, p := range g.progressions {
			p.Reset()
		}
	}
}

func (r *Round) ResetGames() {
	for _, g := range r.groups {
		g.ResetGames()
	}
}

func (r *Round) ClearGames() {
	for _, g := range r.groups {
		g.ClearGames()
	}
}

// SortTeams ranks the round's teams over all of its groups.
func (r *Round) SortTeams(ordering Ordering) ([]*Team, error) {
	return RankTeams(r.Teams(), r.groupIDs(), ordering)
}

func (r *Round) AutoIncrement() int {
	return r.tree.AutoIncrement(r.node)
}

func (r *Round) SetAutoIncrement(n int) {
	r.tree.SetAutoIncrement(r.node, n)
}
