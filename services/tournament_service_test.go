package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/models"
)

func TestCreateFromPreset(t *testing.T) {
	repo := newMemTournamentRepo()
	id := createCup(t, repo, "Ants", "Bees", "Cats", "Dogs")

	svc := NewTournamentService(nil, repo, &memSimulationRepo{}, testLogger(), testTracer())
	doc, err := svc.GetDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Cup", doc.Name)
	assert.Len(t, doc.Teams, 4)
	require.Len(t, doc.Rounds, 2)
	assert.Len(t, doc.Rounds[0].Groups, 2)
	assert.Equal(t, "single_elimination", repo.records[id].Preset)
}

func TestCreateFromDocument(t *testing.T) {
	repo := newMemTournamentRepo()
	svc := NewTournamentService(nil, repo, &memSimulationRepo{}, testLogger(), testTracer())

	doc := &export.Document{
		ID:    "league",
		Name:  "League",
		Teams: []export.TeamDoc{{ID: "a", Name: "Ants"}, {ID: "b", Name: "Bees"}},
		Rounds: []export.RoundDoc{{Name: "Round 1", Groups: []export.GroupDoc{
			{ID: "g", Name: "League", Teams: []string{"a", "b"}},
		}}},
	}
	rec, err := svc.Create(context.Background(), CreateTournamentInput{Document: doc})
	require.NoError(t, err)
	assert.Equal(t, "league", rec.ID)

	_, err = svc.Create(context.Background(), CreateTournamentInput{Document: doc})
	assert.ErrorIs(t, err, ErrTournamentConflict)
}

func TestCreateValidation(t *testing.T) {
	svc := NewTournamentService(nil, newMemTournamentRepo(), &memSimulationRepo{}, testLogger(), testTracer())
	cases := map[string]struct {
		input CreateTournamentInput
		want  error
	}{
		"no name":        {CreateTournamentInput{Preset: "r2g"}, ErrValidationFailed},
		"no preset":      {CreateTournamentInput{Name: "Cup"}, ErrValidationFailed},
		"unknown preset": {CreateTournamentInput{Name: "Cup", Preset: "swiss", Teams: []string{"a", "b"}}, models.ErrConfiguration},
		"duplicate team": {CreateTournamentInput{Name: "Cup", Preset: "r2g", Teams: []string{"a", "a"}}, ErrValidationFailed},
		"blank team":     {CreateTournamentInput{Name: "Cup", Preset: "r2g", Teams: []string{"a", " "}}, ErrValidationFailed},
		"too few teams":  {CreateTournamentInput{Name: "Cup", Preset: "single_elimination", Teams: []string{"a"}}, models.ErrInsufficientData},
		"both team sources": {
			CreateTournamentInput{Name: "Cup", Preset: "r2g", Teams: []string{"a", "b"}, FakeTeams: 4},
			ErrValidationFailed,
		},
		"document and preset": {
			CreateTournamentInput{Document: &export.Document{Name: "x"}, Preset: "r2g"},
			ErrValidationFailed,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFakeTeamNames(t *testing.T) {
	names := FakeTeamNames(16, 42)
	require.Len(t, names, 16)
	seen := map[string]bool{}
	for _, n := range names {
		assert.NotEmpty(t, n)
		assert.False(t, seen[n], n)
		seen[n] = true
	}
	assert.Equal(t, names, FakeTeamNames(16, 42))
}

func TestCreateWithFakeTeams(t *testing.T) {
	repo := newMemTournamentRepo()
	svc := NewTournamentService(nil, repo, &memSimulationRepo{}, testLogger(), testTracer())
	rec, err := svc.Create(context.Background(), CreateTournamentInput{Name: "Cup", Preset: "double_elimination", FakeTeams: 6, Seed: 3})
	require.NoError(t, err)

	doc, err := svc.GetDocument(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Len(t, doc.Teams, 6)
}

func TestListAndDelete(t *testing.T) {
	repo := newMemTournamentRepo()
	sims := &memSimulationRepo{}
	svc := NewTournamentService(nil, repo, sims, testLogger(), testTracer())
	first := createCup(t, repo, "a", "b")
	createCup(t, repo, "c", "d")
	require.NoError(t, sims.Create(context.Background(), nil, &models.SimulationRecord{TournamentID: first, Runs: 1}))

	list, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.List(context.Background(), -1, 0)
	assert.ErrorIs(t, err, ErrValidationFailed)

	require.NoError(t, svc.Delete(context.Background(), first))
	assert.Empty(t, sims.records)
	_, err = svc.GetDocument(context.Background(), first)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), first), ErrTournamentNotFound)
}
