package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameIDsAreSharedAcrossRounds(t *testing.T) {
	tour := NewTournament("Cup")
	a, b := NewTeam("A", WithTeamID("a")), NewTeam("B", WithTeamID("b"))
	tour.AddTeam(a, b)

	first, err := tour.Round("Round 1").Group("G1")
	require.NoError(t, err)
	first.AddTeam(a, b)
	cat := tour.Category("Juniors")
	second, err := cat.Round("Round 2").Group("G2")
	require.NoError(t, err)
	second.AddTeam(a, b)

	g1, _ := first.Game("a", "b")
	g2, _ := second.Game("a", "b")
	g3, _ := first.Game("b", "a")
	assert.Equal(t, []int{1, 2, 3}, []int{g1.ID, g2.ID, g3.ID})
	assert.Equal(t, 4, tour.AutoIncrement())

	game, owner := tour.GameByID(2)
	assert.Same(t, g2, game)
	assert.Same(t, second, owner)
	assert.Same(t, second, tour.GroupByID(second.ID))

	tour.ClearGames()
	assert.Empty(t, tour.Games())
	assert.Equal(t, 1, tour.AutoIncrement())
	g4, _ := second.Game("a", "b")
	assert.Equal(t, 1, g4.ID)
}

func TestRoundsListCategoriesFirst(t *testing.T) {
	tour := NewTournament("Cup")
	direct := tour.Round("Final")
	cat := tour.Category("Qualification")
	q1 := cat.Round("Q1")
	q2 := cat.Round("Q2")

	assert.Equal(t, []*Round{q1, q2, direct}, tour.Rounds())
	assert.Equal(t, 2, q2.Order)
}

func TestTournamentSortTeamsLastRoundFirst(t *testing.T) {
	tour := NewTournament("Cup")
	teams := []*Team{NewTeam("A"), NewTeam("B"), NewTeam("C"), NewTeam("D"), NewTeam("E")}
	tour.AddTeam(teams...)

	groupStage, err := tour.Round("Groups").Group("G")
	require.NoError(t, err)
	groupStage.AddTeam(teams[:4]...)
	final, err := tour.Round("Final").Group("F")
	require.NoError(t, err)
	final.AddTeam(teams[1], teams[0])

	teams[0].SetStats(groupStage.ID, Stats{Points: 3})
	teams[1].SetStats(groupStage.ID, Stats{Points: 3})
	teams[2].SetStats(groupStage.ID, Stats{Points: 6})
	teams[0].SetStats(final.ID, Stats{Points: 3})

	ranked, err := tour.SortTeams(OrderByPoints)
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[0], teams[1], teams[2], teams[3], teams[4]}, ranked)

	_, err = tour.SortTeams("wins")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTournamentTime(t *testing.T) {
	tour := NewTournament("Cup", WithTiming(10*time.Minute, 2*time.Minute, 5*time.Minute, 30*time.Minute))
	assert.Zero(t, tour.TournamentTime())

	a, b := NewTeam("A", WithTeamID("a")), NewTeam("B", WithTeamID("b"))
	g1, err := tour.Round("R1").Group("G1")
	require.NoError(t, err)
	g2, err := tour.Round("R2").Group("G2")
	require.NoError(t, err)
	g1.AddTeam(a, b)
	g2.AddTeam(a, b)
	_, _ = g1.Game("a", "b")
	_, _ = g1.Game("a", "b")
	_, _ = g2.Game("a", "b")

	// 3 games, 2 waits between games, 1 wait between rounds, 1 category
	assert.Equal(t, 39*time.Minute, tour.TournamentTime())
}

func TestRoundHelpers(t *testing.T) {
	r := NewRound("R1")
	g1, err := r.Group("G1")
	require.NoError(t, err)
	g2, err := r.Group("G2")
	require.NoError(t, err)
	empty, err := r.Group("Bye")
	require.NoError(t, err)
	a, b, c := NewTeam("A", WithTeamID("a")), NewTeam("B", WithTeamID("b")), NewTeam("C", WithTeamID("c"))
	g1.AddTeam(a, b)
	g2.AddTeam(b, c)
	empty.AddTeam(NewTeam("Lonely"))

	assert.Len(t, r.Teams(), 4)
	assert.False(t, r.IsPlayed())

	x, _ := g1.Game("a", "b")
	y, _ := g2.Game("b", "c")
	assert.Equal(t, []*Game{x, y}, r.Games())

	_, err = g1.SetResults(x.ID, map[string]int{"a": 5, "b": 1})
	require.NoError(t, err)
	assert.False(t, r.IsPlayed())
	_, err = g2.SetResults(y.ID, map[string]int{"b": 2, "c": 1})
	require.NoError(t, err)
	assert.True(t, r.IsPlayed(), "groups without games don't block the round")

	ranked, err := r.SortTeams(OrderByPoints)
	require.NoError(t, err)
	assert.Equal(t, []*Team{a, b}, ranked[:2])

	_, err = r.Group("Dup", WithGroupID(g1.ID))
	assert.ErrorIs(t, err, ErrConfiguration)

	r.ResetGames()
	assert.False(t, r.IsPlayed())
	assert.Zero(t, b.SumPoints)
}

func TestRankTeamsOrderings(t *testing.T) {
	g, teams := groupWithTeams(t, 3)
	teams[0].SetStats(g.ID, Stats{Points: 3, Score: 10})
	teams[1].SetStats(g.ID, Stats{Points: 3, Score: 30})
	teams[2].SetStats(g.ID, Stats{Points: 1, Score: 90})

	byPoints, err := RankTeams(teams, []string{g.ID}, OrderByPoints)
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[1], teams[0], teams[2]}, byPoints)

	byScore, err := RankTeams(teams, []string{g.ID}, OrderByScore)
	require.NoError(t, err)
	assert.Equal(t, []*Team{teams[2], teams[1], teams[0]}, byScore)

	o, err := ParseOrdering("")
	require.NoError(t, err)
	assert.Equal(t, OrderByPoints, o)
	_, err = ParseOrdering("wins")
	assert.ErrorIs(t, err, ErrConfiguration)
}
