package models

import (
	"fmt"
)

// FilterWhat names what a TeamFilter looks at.
type FilterWhat string

const (
	FilterPoints        FilterWhat = "points"
	FilterScore         FilterWhat = "score"
	FilterWins          FilterWhat = "wins"
	FilterDraws         FilterWhat = "draws"
	FilterLosses        FilterWhat = "losses"
	FilterSecond        FilterWhat = "second"
	FilterThird         FilterWhat = "third"
	FilterTeam          FilterWhat = "team"
	FilterProgressed    FilterWhat = "progressed"
	FilterNotProgressed FilterWhat = "not-progressed"
)

func (w FilterWhat) stat() (Stat, bool) {
	switch w {
	case FilterPoints, FilterScore, FilterWins, FilterDraws, FilterLosses, FilterSecond, FilterThird:
		return Stat(w), true
	}
	return "", false
}

type Comparator string

const (
	CmpGT  Comparator = ">"
	CmpLT  Comparator = "<"
	CmpGTE Comparator = ">="
	CmpLTE Comparator = "<="
	CmpEQ  Comparator = "="
	CmpNEQ Comparator = "!="
)

func (c Comparator) compare(a, b float64) bool {
	switch c {
	case CmpGT:
		return a > b
	case CmpLT:
		return a < b
	case CmpGTE:
		return a >= b
	case CmpLTE:
		return a <= b
	case CmpEQ:
		return a == b
	default:
		return a != b
	}
}

type Aggregate string

const (
	AggregateSum Aggregate = "sum"
	AggregateAvg Aggregate = "avg"
	AggregateMax Aggregate = "max"
	AggregateMin Aggregate = "min"
)

// TeamFilter is a single predicate over a team's statistics or progression status.
type TeamFilter struct {
	What      FilterWhat
	How       Comparator
	Value     float64
	TeamID    string
	Aggregate Aggregate

	// Groups whose statistics are aggregated. Empty means the groups the filter is evaluated in.
	Groups []*Group
}

type TeamFilterOption func(*TeamFilter)

// OverGroups aggregates statistics across the given groups instead of the evaluating group.
func OverGroups(groups ...*Group) TeamFilterOption {
	return func(f *TeamFilter) { f.Groups = append(f.Groups, groups...) }
}

func WithAggregate(a Aggregate) TeamFilterOption {
	return func(f *TeamFilter) { f.Aggregate = a }
}

// ForTeam sets the team id compared by a team identity filter.
func ForTeam(id string) TeamFilterOption {
	return func(f *TeamFilter) { f.TeamID = id }
}

func NewTeamFilter(what FilterWhat, how Comparator, value float64, opts ...TeamFilterOption) (*TeamFilter, error) {
	f := &TeamFilter{What: what, How: how, Value: value, Aggregate: AggregateSum}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *TeamFilter) Validate() error {
	switch f.How {
	case CmpGT, CmpLT, CmpGTE, CmpLTE, CmpEQ, CmpNEQ:
	default:
		return fmt.Errorf("%w: unknown comparison %q", ErrConfiguration, f.How)
	}
	switch f.Aggregate {
	case AggregateSum, AggregateAvg, AggregateMax, AggregateMin:
	default:
		return fmt.Errorf("%w: unknown aggregate %q", ErrConfiguration, f.Aggregate)
	}
	switch f.What {
	case FilterTeam:
		if f.How != CmpEQ && f.How != CmpNEQ {
			return fmt.Errorf("%w: team filter only supports = and !=, got %q", ErrConfiguration, f.How)
		}
		if f.TeamID == "" {
			return fmt.Errorf("%w: team filter without a team id", ErrConfiguration)
		}
	case FilterProgressed, FilterNotProgressed:
	default:
		if _, ok := f.What.stat(); !ok {
			return fmt.Errorf("%w: unknown filter subject %q", ErrConfiguration, f.What)
		}
	}
	return nil
}

func (f *TeamFilter) String() string {
	if f.What == FilterTeam {
		return fmt.Sprintf("team %s %s", f.How, f.TeamID)
	}
	if f.What == FilterProgressed || f.What == FilterNotProgressed {
		return string(f.What)
	}
	return fmt.Sprintf("%s(%s) %s %g", f.Aggregate, f.What, f.How, f.Value)
}

// Accepts evaluates the filter for team. scope is used when the filter names no groups.
func (f *TeamFilter) Accepts(team *Team, scope []*Group) (bool, error) {
	groups := f.Groups
	if len(groups) == 0 {
		groups = scope
	}

	switch f.What {
	case FilterTeam:
		found := false
		for _, g := range groups {
			if g.Team(f.TeamID) != nil {
				found = true
				break
			}
		}
		if !found {
			return false, fmt.Errorf("%w: filtered team %q is not in any of the filter's groups", ErrReference, f.TeamID)
		}
		same := team.ID == f.TeamID
		if f.How == CmpEQ {
			return same, nil
		}
		return !same, nil

	case FilterProgressed, FilterNotProgressed:
		progressed := false
		for _, g := range groups {
			if g.IsProgressed(team) {
				progressed = true
				break
			}
		}
		return progressed == (f.What == FilterProgressed), nil
	}

	value, err := f.aggregate(team, groups)
	if err != nil {
		return false, err
	}
	return f.How.compare(value, f.Value), nil
}

func (f *TeamFilter) aggregate(team *Team, groups []*Group) (float64, error) {
	stat, ok := f.What.stat()
	if !ok {
		return 0, fmt.Errorf("%w: unknown filter subject %q", ErrConfiguration, f.What)
	}
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}

	switch f.Aggregate {
	case AggregateSum:
		sum, err := team.SumStat(stat, ids)
		return float64(sum), err

	case AggregateAvg:
		sum, err := team.SumStat(stat, ids)
		if err != nil {
			return 0, err
		}
		games := team.GameCount(ids)
		if games == 0 {
			return 0, nil
		}
		return float64(sum) / float64(games), nil

	case AggregateMax, AggregateMin:
		values, err := f.extremeCandidates(team, stat, groups)
		if err != nil || len(values) == 0 {
			return 0, err
		}
		best := values[0]
		for _, v := range values[1:] {
			if (f.Aggregate == AggregateMax && v > best) || (f.Aggregate == AggregateMin && v < best) {
				best = v
			}
		}
		return float64(best), nil
	}
	return 0, fmt.Errorf("%w: unknown aggregate %q", ErrConfiguration, f.Aggregate)
}

// extremeCandidates lists the values max/min pick from: single game results for score and
// points within one group, per-group totals otherwise.
func (f *TeamFilter) extremeCandidates(team *Team, stat Stat, groups []*Group) ([]int, error) {
	if len(groups) == 1 && (stat == StatScore || stat == StatPoints) {
		var values []int
		for _, game := range groups[0].Games() {
			r, ok := game.Results[team.ID]
			if !ok {
				continue
			}
			if stat == StatScore {
				values = append(values, r.Score)
			} else {
				values = append(values, r.Points)
			}
		}
		return values, nil
	}

	values := make([]int, 0, len(groups))
	for _, g := range groups {
		v, err := team.Stats(g.ID).Get(stat)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
