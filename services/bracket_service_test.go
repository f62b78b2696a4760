package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/eventbus"
	"github.com/Dosada05/tournament-generator/models"
)

func newBracketFixture(t *testing.T) (BracketService, *memTournamentRepo, *recordingPublisher, *countingRecorder, string) {
	t.Helper()
	repo := newMemTournamentRepo()
	id := createCup(t, repo, "Ants", "Bees", "Cats", "Dogs")
	pub := &recordingPublisher{}
	rec := &countingRecorder{}
	svc := NewBracketService(nil, repo, brackets.NewRandomizer(5), pub, rec, testLogger(), testTracer())
	return svc, repo, pub, rec, id
}

func TestBracketLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, rec, id := newBracketFixture(t)

	games, err := svc.GenerateGames(ctx, id, 0, true)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, 2, rec.games)

	for _, g := range games {
		played, err := svc.SetResults(ctx, id, g.ID, map[string]int{g.TeamIDs[0]: 3, g.TeamIDs[1]: 1})
		require.NoError(t, err)
		assert.Equal(t, g.TeamIDs[0], played.Winner())
	}
	assert.Equal(t, 2, rec.results)

	moves, err := svc.Progress(ctx, id, 0, false)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	winners := []string{games[0].TeamIDs[0], games[1].TeamIDs[0]}
	for _, m := range moves {
		require.Len(t, m.Teams, 1)
		assert.Contains(t, winners, m.Teams[0])
	}
	assert.Equal(t, 2, rec.progressed)

	// Already progressed: nothing new moves.
	moves, err = svc.Progress(ctx, id, 0, false)
	require.NoError(t, err)
	assert.Empty(t, moves)

	final, err := svc.GenerateGames(ctx, id, 1, false)
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.ElementsMatch(t, winners, final[0].TeamIDs)

	standings, err := svc.Standings(ctx, id, "points")
	require.NoError(t, err)
	require.Len(t, standings, 4)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Contains(t, winners, standings[0].TeamID)

	assert.Equal(t, []string{
		eventbus.TopicGamesGenerated,
		eventbus.TopicResultsUpdated,
		eventbus.TopicResultsUpdated,
		eventbus.TopicTeamsProgressed,
		eventbus.TopicTeamsProgressed,
		eventbus.TopicGamesGenerated,
	}, pub.topics())
}

func TestResetResultsAndProgression(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub, _, id := newBracketFixture(t)

	games, err := svc.GenerateGames(ctx, id, 0, false)
	require.NoError(t, err)
	g := games[0]
	_, err = svc.SetResults(ctx, id, g.ID, map[string]int{g.TeamIDs[0]: 1, g.TeamIDs[1]: 0})
	require.NoError(t, err)

	reset, err := svc.ResetResults(ctx, id, g.ID)
	require.NoError(t, err)
	assert.False(t, reset.IsPlayed())
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, ResultsUpdatedPayload{Game: reset, Reset: true}, last.payload)

	_, err = svc.Progress(ctx, id, 0, true)
	require.NoError(t, err)
	require.NoError(t, svc.ResetProgression(ctx, id, 0))
	moves, err := svc.Progress(ctx, id, 0, true)
	require.NoError(t, err)
	assert.Len(t, moves, 2)
	assert.Greater(t, repo.updates, 3)
}

func TestBracketErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, _, id := newBracketFixture(t)

	_, err := svc.GenerateGames(ctx, id, 5, false)
	assert.ErrorIs(t, err, ErrRoundNotFound)
	_, err = svc.GenerateGames(ctx, id, -1, false)
	assert.ErrorIs(t, err, ErrRoundNotFound)
	_, err = svc.GenerateGames(ctx, "missing", 0, false)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = svc.SetResults(ctx, id, 99, map[string]int{"a": 1})
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = svc.SetResults(ctx, id, 1, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.ResetResults(ctx, id, 99)
	assert.ErrorIs(t, err, ErrGameNotFound)

	games, err := svc.GenerateGames(ctx, id, 0, false)
	require.NoError(t, err)
	_, err = svc.SetResults(ctx, id, games[0].ID, map[string]int{"stranger": 1})
	assert.ErrorIs(t, err, models.ErrReference)

	_, err = svc.Standings(ctx, id, "height")
	assert.ErrorIs(t, err, models.ErrConfiguration)

	// Failed mutations publish nothing.
	assert.Equal(t, []string{eventbus.TopicGamesGenerated}, pub.topics())
}
