package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/metrics"
	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/repositories"
)

const maxScore = 500

type SimulateOptions struct {
	// Blank progresses placeholder teams and leaves no results behind.
	Blank bool
	Seed  uint64
}

type SimulationReport struct {
	Games    int           `json:"games"`
	Rounds   int           `json:"rounds"`
	Duration time.Duration `json:"duration"`
}

type EstimateReport struct {
	Runs         int             `json:"runs"`
	MinGames     int             `json:"min_games"`
	MaxGames     int             `json:"max_games"`
	MeanGames    float64         `json:"mean_games"`
	MinDuration  time.Duration   `json:"min_duration"`
	MaxDuration  time.Duration   `json:"max_duration"`
	MeanDuration time.Duration   `json:"mean_duration"`
	Durations    []time.Duration `json:"durations"`
}

type SimulationService interface {
	SimulateGroup(group *models.Group, rnd brackets.Randomizer) error
	Simulate(ctx context.Context, t *models.Tournament, opts SimulateOptions) (*SimulationReport, error)
	Estimate(ctx context.Context, doc *export.Document, runs int) (*EstimateReport, error)
	EstimateTournament(ctx context.Context, tournamentID string, runs int) (*models.SimulationRecord, error)
	History(ctx context.Context, tournamentID string, limit int) ([]*models.SimulationRecord, error)
}

type simulationService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	simulationRepo repositories.SimulationRepository
	runs           int
	seed           uint64
	logger         *slog.Logger
	recorder       metrics.Recorder
	tracer         trace.Tracer
}

// NewSimulationService builds the simulator. The repositories are only needed by
// EstimateTournament and History and may be nil otherwise.
func NewSimulationService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	simulationRepo repositories.SimulationRepository,
	runs int,
	seed uint64,
	logger *slog.Logger,
	recorder metrics.Recorder,
	tracer trace.Tracer,
) SimulationService {
	if runs < 1 {
		runs = 1
	}
	return &simulationService{
		db:             db,
		tournamentRepo: tournamentRepo,
		simulationRepo: simulationRepo,
		runs:           runs,
		seed:           seed,
		logger:         logger,
		recorder:       recorder,
		tracer:         tracer,
	}
}

// SimulateGroup plays every game of the group with random scores.
func (s *simulationService) SimulateGroup(group *models.Group, rnd brackets.Randomizer) error {
	for _, game := range group.Games() {
		scores := make(map[string]int, len(game.TeamIDs))
		for _, id := range game.TeamIDs {
			scores[id] = rnd.IntN(maxScore)
		}
		if _, err := group.SetResults(game.ID, scores); err != nil {
			return fmt.Errorf("group %q: %w", group.Name, err)
		}
	}
	return nil
}

func (s *simulationService) Simulate(ctx context.Context, t *models.Tournament, opts SimulateOptions) (*SimulationReport, error) {
	ctx, span := s.tracer.Start(ctx, "SimulationService.Simulate")
	defer span.End()

	rnd := brackets.NewRandomizer(opts.Seed)
	rounds := t.Rounds()
	for _, round := range rounds {
		if _, err := brackets.GenerateRound(ctx, round, rnd); err != nil {
			return nil, fmt.Errorf("round %q: %w", round.Name, err)
		}
		if err := brackets.OrderRound(round); err != nil {
			return nil, fmt.Errorf("round %q: %w", round.Name, err)
		}
		for _, group := range round.Groups() {
			if err := s.SimulateGroup(group, rnd); err != nil {
				return nil, err
			}
		}
		if err := round.Progress(opts.Blank); err != nil {
			return nil, fmt.Errorf("round %q: %w", round.Name, err)
		}
	}

	report := &SimulationReport{
		Games:    len(t.Games()),
		Rounds:   len(rounds),
		Duration: t.TournamentTime(),
	}
	if opts.Blank {
		t.ResetGames()
	}
	span.SetAttributes(attribute.Int("simulation.games", report.Games), attribute.Bool("simulation.blank", opts.Blank))
	return report, nil
}

// Estimate rebuilds doc once per run and simulates each copy with its own seed.
func (s *simulationService) Estimate(ctx context.Context, doc *export.Document, runs int) (*EstimateReport, error) {
	ctx, span := s.tracer.Start(ctx, "SimulationService.Estimate")
	defer span.End()

	if runs <= 0 {
		runs = s.runs
	}
	started := time.Now()
	results := make([]*SimulationReport, runs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range runs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := export.Import(doc)
			if err != nil {
				return err
			}
			report, err := s.Simulate(ctx, t, SimulateOptions{Seed: s.seed + uint64(i)})
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			results[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := summarize(results)
	s.recorder.SimulationCompleted(report.MaxGames, report.MeanDuration, time.Since(started))
	span.SetAttributes(attribute.Int("simulation.runs", runs))
	s.logger.InfoContext(ctx, "simulation finished",
		slog.Int("runs", runs),
		slog.Float64("mean_games", report.MeanGames),
		slog.Duration("mean_duration", report.MeanDuration),
		slog.Duration("took", time.Since(started)),
	)
	return report, nil
}

func summarize(results []*SimulationReport) *EstimateReport {
	report := &EstimateReport{Runs: len(results), Durations: make([]time.Duration, 0, len(results))}
	var games int
	var total time.Duration
	for i, r := range results {
		if i == 0 || r.Games < report.MinGames {
			report.MinGames = r.Games
		}
		if r.Games > report.MaxGames {
			report.MaxGames = r.Games
		}
		if i == 0 || r.Duration < report.MinDuration {
			report.MinDuration = r.Duration
		}
		if r.Duration > report.MaxDuration {
			report.MaxDuration = r.Duration
		}
		games += r.Games
		total += r.Duration
		report.Durations = append(report.Durations, r.Duration)
	}
	if n := len(results); n > 0 {
		report.MeanGames = float64(games) / float64(n)
		report.MeanDuration = total / time.Duration(n)
	}
	slices.Sort(report.Durations)
	return report
}

func (s *simulationService) EstimateTournament(ctx context.Context, tournamentID string, runs int) (*models.SimulationRecord, error) {
	ctx, span := s.tracer.Start(ctx, "SimulationService.EstimateTournament")
	defer span.End()

	t, _, err := loadTournament(ctx, s.tournamentRepo, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	report, err := s.Estimate(ctx, export.Export(t), runs)
	if err != nil {
		return nil, err
	}

	rec := &models.SimulationRecord{
		TournamentID: tournamentID,
		Runs:         report.Runs,
		MinGames:     report.MinGames,
		MaxGames:     report.MaxGames,
		MeanGames:    report.MeanGames,
		MinDuration:  report.MinDuration,
		MaxDuration:  report.MaxDuration,
		MeanDuration: report.MeanDuration,
	}
	if err := s.simulationRepo.Create(ctx, nil, rec); err != nil {
		return nil, fmt.Errorf("failed to save simulation of tournament %s: %w", tournamentID, err)
	}
	return rec, nil
}

func (s *simulationService) History(ctx context.Context, tournamentID string, limit int) ([]*models.SimulationRecord, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.simulationRepo.ListByTournament(ctx, tournamentID, limit)
}
