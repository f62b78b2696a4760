package models

import (
	"fmt"
)

// LogicOp joins the children of a composite filter.
type LogicOp string

const (
	OpAnd LogicOp = "and"
	OpOr  LogicOp = "or"
)

// Filter is either a single TeamFilter (Team set) or a group of child filters joined by Op.
// An empty Op behaves as and.
type Filter struct {
	Op       LogicOp
	Team     *TeamFilter
	Children []Filter
}

func Leaf(f *TeamFilter) Filter {
	return Filter{Team: f}
}

func AllOf(children ...Filter) Filter {
	return Filter{Op: OpAnd, Children: children}
}

func AnyOf(children ...Filter) Filter {
	return Filter{Op: OpOr, Children: children}
}

// Accepts evaluates the filter tree with short-circuiting: and stops at the first
// rejecting child, or stops at the first accepting one.
func (f Filter) Accepts(team *Team, scope []*Group) (bool, error) {
	if f.Team != nil {
		return f.Team.Accepts(team, scope)
	}

	switch f.Op {
	case OpAnd, "":
		for _, child := range f.Children {
			ok, err := child.Accepts(team, scope)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case OpOr:
		for _, child := range f.Children {
			ok, err := child.Accepts(team, scope)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, f.Op)
	}
}

// FilterTeams keeps the teams every filter accepts, preserving their order.
func FilterTeams(teams []*Team, filters []Filter, scope []*Group) ([]*Team, error) {
	out := teams
	for _, f := range filters {
		kept := make([]*Team, 0, len(out))
		for _, t := range out {
			ok, err := f.Accepts(t, scope)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, t)
			}
		}
		out = kept
	}
	if len(filters) == 0 {
		out = append([]*Team(nil), teams...)
	}
	return out, nil
}
