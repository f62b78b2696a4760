package models

import (
	"github.com/Dosada05/tournament-generator/containers"
)

// Category is a set of rounds played as one block of a tournament.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	rounds []*Round

	tree *containers.Tree
	node containers.NodeID
}

type CategoryOption func(*Category)

func WithCategoryID(id string) CategoryOption {
	return func(c *Category) {
		if id != "" {
			c.ID = id
		}
	}
}

func (c *Category) String() string {
	return c.Name
}

func (c *Category) Round(name string, opts ...RoundOption) *Round {
	r := newRound(name, c.tree, c.tree.MustAdd(c.node), opts...)
	if r.Order == 0 {
		r.Order = len(c.rounds) + 1
	}
	c.rounds = append(c.rounds, r)
	return r
}

func (c *Category) Rounds() []*Round {
	out := make([]*Round, len(c.rounds))
	copy(out, c.rounds)
	return out
}

func (c *Category) Games() []*Game {
	var out []*Game
	for _, r := range c.rounds {
		out = append(out, r.Games()...)
	}
	return out
}
