package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFilter(t *testing.T, what FilterWhat, how Comparator, value float64, opts ...TeamFilterOption) *TeamFilter {
	t.Helper()
	f, err := NewTeamFilter(what, how, value, opts...)
	require.NoError(t, err)
	return f
}

func TestNewTeamFilterValidation(t *testing.T) {
	_, err := NewTeamFilter("goals", CmpGT, 1)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewTeamFilter(FilterPoints, "~", 1)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewTeamFilter(FilterPoints, CmpGT, 1, WithAggregate("median"))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewTeamFilter(FilterTeam, CmpGT, 0, ForTeam("t1"))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewTeamFilter(FilterTeam, CmpEQ, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestComparators(t *testing.T) {
	g, teams := groupWithTeams(t, 1)
	teams[0].SetStats(g.ID, Stats{Points: 4})
	scope := []*Group{g}

	cases := []struct {
		how   Comparator
		value float64
		want  bool
	}{
		{CmpGT, 3, true}, {CmpGT, 4, false},
		{CmpLT, 5, true}, {CmpLT, 4, false},
		{CmpGTE, 4, true}, {CmpGTE, 5, false},
		{CmpLTE, 4, true}, {CmpLTE, 3, false},
		{CmpEQ, 4, true}, {CmpEQ, 4.5, false},
		{CmpNEQ, 3, true}, {CmpNEQ, 4, false},
	}
	for _, tc := range cases {
		got, err := mustFilter(t, FilterPoints, tc.how, tc.value).Accepts(teams[0], scope)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "points %s %g", tc.how, tc.value)
	}
}

func TestAndOrTruthTable(t *testing.T) {
	g, teams := groupWithTeams(t, 4)
	// wins in {0,1} x draws in {0,1}
	teams[0].SetStats(g.ID, Stats{})
	teams[1].SetStats(g.ID, Stats{Wins: 1})
	teams[2].SetStats(g.ID, Stats{Draws: 1})
	teams[3].SetStats(g.ID, Stats{Wins: 1, Draws: 1})

	f1 := Leaf(mustFilter(t, FilterWins, CmpGTE, 1))
	f2 := Leaf(mustFilter(t, FilterDraws, CmpGTE, 1))
	scope := []*Group{g}

	for i, team := range teams {
		s := team.Stats(g.ID)
		a := s.Wins >= 1
		b := s.Draws >= 1

		and, err := AllOf(f1, f2).Accepts(team, scope)
		require.NoError(t, err)
		assert.Equal(t, a && b, and, "and, team %d", i)

		or, err := AnyOf(f1, f2).Accepts(team, scope)
		require.NoError(t, err)
		assert.Equal(t, a || b, or, "or, team %d", i)

		bare, err := Filter{Children: []Filter{f1, f2}}.Accepts(team, scope)
		require.NoError(t, err)
		assert.Equal(t, and, bare, "bare entries join with and, team %d", i)
	}
}

func TestNestedFilters(t *testing.T) {
	g, teams := groupWithTeams(t, 3)
	teams[0].SetStats(g.ID, Stats{Points: 9, Score: 10})
	teams[1].SetStats(g.ID, Stats{Points: 1, Score: 200})
	teams[2].SetStats(g.ID, Stats{Points: 1, Score: 5})

	// points >= 5 OR (score > 100 AND losses = 0)
	expr := AnyOf(
		Leaf(mustFilter(t, FilterPoints, CmpGTE, 5)),
		AllOf(
			Leaf(mustFilter(t, FilterScore, CmpGT, 100)),
			Leaf(mustFilter(t, FilterLosses, CmpEQ, 0)),
		),
	)

	kept, err := FilterTeams(teams, []Filter{expr}, []*Group{g})
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[0], teams[1]}, kept)
}

func TestFilterTeamsEveryEntryMustAccept(t *testing.T) {
	g, teams := groupWithTeams(t, 3)
	teams[0].SetStats(g.ID, Stats{Points: 9, Wins: 3})
	teams[1].SetStats(g.ID, Stats{Points: 6, Wins: 0})
	teams[2].SetStats(g.ID, Stats{Points: 1, Wins: 1})

	kept, err := FilterTeams(teams, []Filter{
		Leaf(mustFilter(t, FilterPoints, CmpGT, 2)),
		Leaf(mustFilter(t, FilterWins, CmpGT, 0)),
	}, []*Group{g})
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[0]}, kept)
}

func TestUnknownOperator(t *testing.T) {
	g, teams := groupWithTeams(t, 1)
	f := Filter{Op: "xor", Children: []Filter{Leaf(mustFilter(t, FilterPoints, CmpGTE, 0))}}

	_, err := f.Accepts(teams[0], []*Group{g})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestShortCircuit(t *testing.T) {
	g, teams := groupWithTeams(t, 1)
	broken := Filter{Op: "xor"}
	yes := Leaf(mustFilter(t, FilterPoints, CmpGTE, 0))
	no := Leaf(mustFilter(t, FilterPoints, CmpLT, 0))
	scope := []*Group{g}

	ok, err := AnyOf(yes, broken).Accepts(teams[0], scope)
	require.NoError(t, err, "or stops before the broken child")
	assert.True(t, ok)

	ok, err = AllOf(no, broken).Accepts(teams[0], scope)
	require.NoError(t, err, "and stops before the broken child")
	assert.False(t, ok)

	_, err = AllOf(yes, broken).Accepts(teams[0], scope)
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestAggregates(t *testing.T) {
	first, err := NewGroup("first")
	require.NoError(t, err)
	second, err := NewGroup("second")
	require.NoError(t, err)
	a, b := NewTeam("A", WithTeamID("a")), NewTeam("B", WithTeamID("b"))
	first.AddTeam(a, b)
	second.AddTeam(a, b)

	g1, _ := first.Game("a", "b")
	g2, _ := first.Game("a", "b")
	_, err = first.SetResults(g1.ID, map[string]int{"a": 10, "b": 2})
	require.NoError(t, err)
	_, err = first.SetResults(g2.ID, map[string]int{"a": 30, "b": 40})
	require.NoError(t, err)
	g3, _ := second.Game("a", "b")
	_, err = second.SetResults(g3.ID, map[string]int{"a": 5, "b": 1})
	require.NoError(t, err)

	value := func(f *TeamFilter, scope ...*Group) float64 {
		v, err := f.aggregate(a, scope)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, 40.0, value(mustFilter(t, FilterScore, CmpGT, 0), first))
	assert.Equal(t, 45.0, value(mustFilter(t, FilterScore, CmpGT, 0), first, second))
	assert.Equal(t, 20.0, value(mustFilter(t, FilterScore, CmpGT, 0, WithAggregate(AggregateAvg)), first))
	assert.Equal(t, 2.0, value(mustFilter(t, FilterPoints, CmpGT, 0, WithAggregate(AggregateAvg)), first, second))

	// single group: per-game results
	assert.Equal(t, 30.0, value(mustFilter(t, FilterScore, CmpGT, 0, WithAggregate(AggregateMax)), first))
	assert.Equal(t, 10.0, value(mustFilter(t, FilterScore, CmpGT, 0, WithAggregate(AggregateMin)), first))
	// several groups: per-group totals
	assert.Equal(t, 40.0, value(mustFilter(t, FilterScore, CmpGT, 0, WithAggregate(AggregateMax)), first, second))
	assert.Equal(t, 5.0, value(mustFilter(t, FilterScore, CmpGT, 0, WithAggregate(AggregateMin)), first, second))

	// OverGroups takes precedence over the evaluating scope
	f := mustFilter(t, FilterWins, CmpEQ, 2, OverGroups(first, second))
	ok, err := f.Accepts(a, []*Group{second})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAverageWithoutGames(t *testing.T) {
	g, teams := groupWithTeams(t, 1)
	f := mustFilter(t, FilterPoints, CmpEQ, 0, WithAggregate(AggregateAvg))
	ok, err := f.Accepts(teams[0], []*Group{g})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTeamIdentityFilter(t *testing.T) {
	g, teams := groupWithTeams(t, 3)
	scope := []*Group{g}

	kept, err := FilterTeams(teams, []Filter{Leaf(mustFilter(t, FilterTeam, CmpNEQ, 0, ForTeam("t2")))}, scope)
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[0], teams[2]}, kept)

	kept, err = FilterTeams(teams, []Filter{Leaf(mustFilter(t, FilterTeam, CmpEQ, 0, ForTeam("t2")))}, scope)
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[1]}, kept)

	_, err = FilterTeams(teams, []Filter{Leaf(mustFilter(t, FilterTeam, CmpEQ, 0, ForTeam("ghost")))}, scope)
	assert.ErrorIs(t, err, ErrReference)
}

func TestProgressedFilters(t *testing.T) {
	g, teams := groupWithTeams(t, 3)
	g.AddProgressed(teams[1])
	scope := []*Group{g}

	kept, err := FilterTeams(teams, []Filter{Leaf(mustFilter(t, FilterProgressed, CmpEQ, 0))}, scope)
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[1]}, kept)

	kept, err = FilterTeams(teams, []Filter{Leaf(mustFilter(t, FilterNotProgressed, CmpEQ, 0))}, scope)
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[0], teams[2]}, kept)
}
