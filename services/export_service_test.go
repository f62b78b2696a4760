package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/metrics"
	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/storage"
)

func newExportFixture(t *testing.T, uploader storage.FileUploader) (ExportService, *memTournamentRepo, string) {
	t.Helper()
	repo := newMemTournamentRepo()
	id := createCup(t, repo, "Ants", "Bees", "Cats", "Dogs")
	sims := NewSimulationService(nil, repo, &memSimulationRepo{}, 3, 1, testLogger(), metrics.Noop{}, testTracer())
	return NewExportService(repo, sims, uploader, testLogger(), testTracer()), repo, id
}

func TestPublishWithoutStorage(t *testing.T) {
	svc, _, id := newExportFixture(t, nil)
	_, err := svc.Publish(context.Background(), id)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	uploader, err := storage.NewDirUploader(dir, "http://localhost:8080/exports")
	require.NoError(t, err)
	svc, repo, id := newExportFixture(t, uploader)

	files, err := svc.Publish(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, files.Chart)
	assert.Equal(t, "tournaments/"+id+"/document.json", files.Document.Key)
	assert.Equal(t, "http://localhost:8080/exports/tournaments/"+id+"/schedule.xlsx", files.Workbook.Location)

	f, err := os.Open(filepath.Join(dir, "tournaments", id, "document.json"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := export.ReadJSON(f)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)

	bracket := NewBracketService(nil, repo, brackets.NewRandomizer(1), &recordingPublisher{}, metrics.Noop{}, testLogger(), testTracer())
	_, err = bracket.GenerateGames(context.Background(), id, 0, false)
	require.NoError(t, err)

	files, err = svc.Publish(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, files.Chart)
	assert.FileExists(t, filepath.Join(dir, "tournaments", id, "rounds.png"))
}

func TestExportFiles(t *testing.T) {
	svc, _, id := newExportFixture(t, nil)
	ctx := context.Background()

	workbook, err := svc.Workbook(ctx, id)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(workbook, []byte("PK")))

	_, err = svc.RoundChart(ctx, id)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	png, err := svc.DurationChart(ctx, id, 5)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = svc.DurationChart(ctx, id, 1)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	_, err = svc.Workbook(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
