package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

type memTournamentRepo struct {
	mu      sync.Mutex
	records map[string]models.TournamentRecord
	updates int
}

func newMemTournamentRepo() *memTournamentRepo {
	return &memTournamentRepo{records: make(map[string]models.TournamentRecord)}
}

func (r *memTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, rec *models.TournamentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; ok {
		return repositories.ErrTournamentConflict
	}
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	r.records[rec.ID] = *rec
	return nil
}

func (r *memTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.TournamentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &rec, nil
}

func (r *memTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]*models.TournamentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.TournamentRecord, 0, len(r.records))
	for _, rec := range r.records {
		rec := rec
		rec.Document = nil
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset >= len(out) {
		return []*models.TournamentRecord{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, rec *models.TournamentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	rec.UpdatedAt = time.Now().UTC()
	r.records[rec.ID] = *rec
	r.updates++
	return nil
}

func (r *memTournamentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.records, id)
	return nil
}

type memSimulationRepo struct {
	mu      sync.Mutex
	records []*models.SimulationRecord
}

func (r *memSimulationRepo) Create(_ context.Context, _ repositories.SQLExecutor, rec *models.SimulationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = int64(len(r.records) + 1)
	rec.CreatedAt = time.Now().UTC()
	r.records = append(r.records, rec)
	return nil
}

func (r *memSimulationRepo) ListByTournament(_ context.Context, tournamentID string, limit int) ([]*models.SimulationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SimulationRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].TournamentID == tournamentID {
			out = append(out, r.records[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memSimulationRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.TournamentID != tournamentID {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

type publishedEvent struct {
	topic        string
	tournamentID string
	payload      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, tournamentID string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, tournamentID: tournamentID, payload: payload})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

type countingRecorder struct {
	mu          sync.Mutex
	games       int
	results     int
	progressed  int
	simulations int
}

func (c *countingRecorder) GamesGenerated(n int) {
	c.mu.Lock()
	c.games += n
	c.mu.Unlock()
}

func (c *countingRecorder) ResultsRecorded() {
	c.mu.Lock()
	c.results++
	c.mu.Unlock()
}

func (c *countingRecorder) TeamsProgressed(n int) {
	c.mu.Lock()
	c.progressed += n
	c.mu.Unlock()
}

func (c *countingRecorder) SimulationCompleted(int, time.Duration, time.Duration) {
	c.mu.Lock()
	c.simulations++
	c.mu.Unlock()
}

// createCup stores a single elimination tournament with the given teams and returns its id.
func createCup(t *testing.T, repo *memTournamentRepo, teams ...string) string {
	t.Helper()
	svc := NewTournamentService(nil, repo, &memSimulationRepo{}, testLogger(), testTracer())
	rec, err := svc.Create(context.Background(), CreateTournamentInput{
		Name:   "Cup",
		Preset: "single_elimination",
		Teams:  teams,
		Seed:   1,
	})
	require.NoError(t, err)
	return rec.ID
}
