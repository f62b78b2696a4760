package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/repositories"
)

// CreateTournamentInput describes a new tournament either as a full document or as a
// preset applied to a list of teams.
type CreateTournamentInput struct {
	Document *export.Document `json:"document,omitempty"`

	Name   string        `json:"name,omitempty"`
	Preset string        `json:"preset,omitempty"`
	Teams  []string      `json:"teams,omitempty"`
	Timing export.Timing `json:"timing"`
	Seed   uint64        `json:"seed,omitempty"`

	// Generates this many teams with made-up names instead of Teams.
	FakeTeams int `json:"fake_teams,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.TournamentRecord, error)
	GetDocument(ctx context.Context, id string) (*export.Document, error)
	List(ctx context.Context, limit, offset int) ([]*models.TournamentRecord, error)
	Delete(ctx context.Context, id string) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	simulationRepo repositories.SimulationRepository
	logger         *slog.Logger
	tracer         trace.Tracer
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	simulationRepo repositories.SimulationRepository,
	logger *slog.Logger,
	tracer trace.Tracer,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		simulationRepo: simulationRepo,
		logger:         logger,
		tracer:         tracer,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.TournamentRecord, error) {
	ctx, span := s.tracer.Start(ctx, "TournamentService.Create")
	defer span.End()

	t, err := BuildTournament(input)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("tournament.id", t.ID), attribute.String("tournament.preset", input.Preset))

	rec := &models.TournamentRecord{Preset: input.Preset}
	if err := snapshot(rec, t); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.Create(ctx, nil, rec); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", rec.ID),
		slog.String("preset", rec.Preset),
		slog.Int("teams", len(t.Teams())),
		slog.Int("rounds", len(t.Rounds())),
	)
	return rec, nil
}

// BuildTournament lays out a tournament from a document or from a preset and team list.
func BuildTournament(input CreateTournamentInput) (*models.Tournament, error) {
	if input.Document != nil {
		if input.Preset != "" {
			return nil, fmt.Errorf("%w: a document and a preset can't be combined", ErrValidationFailed)
		}
		return export.Import(input.Document)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if input.Preset == "" {
		return nil, fmt.Errorf("%w: either a document or a preset is required", ErrValidationFailed)
	}

	rnd := brackets.DefaultRandomizer
	if input.Seed != 0 {
		rnd = brackets.NewRandomizer(input.Seed)
	}
	preset, err := brackets.PresetByName(input.Preset, rnd)
	if err != nil {
		return nil, err
	}

	names := input.Teams
	if input.FakeTeams > 0 {
		if len(names) > 0 {
			return nil, fmt.Errorf("%w: teams and fake_teams can't be combined", ErrValidationFailed)
		}
		names = FakeTeamNames(input.FakeTeams, input.Seed)
	}

	teams := make([]*models.Team, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("%w: team names must not be empty", ErrValidationFailed)
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: duplicate team %q", ErrValidationFailed, n)
		}
		seen[n] = true
		teams = append(teams, models.NewTeam(n))
	}

	t := models.NewTournament(name, models.WithTiming(
		time.Duration(input.Timing.Play), time.Duration(input.Timing.GameWait),
		time.Duration(input.Timing.RoundWait), time.Duration(input.Timing.CategoryWait),
	))
	if err := preset.Build(t, teams); err != nil {
		return nil, err
	}
	return t, nil
}

// FakeTeamNames returns n distinct made-up team names, reproducible for a given seed.
func FakeTeamNames(n int, seed uint64) []string {
	faker := gofakeit.New(seed)
	names := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(names) < n {
		name := faker.Company()
		if seen[name] {
			name = fmt.Sprintf("%s %d", name, len(names)+1)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func (s *tournamentService) GetDocument(ctx context.Context, id string) (*export.Document, error) {
	ctx, span := s.tracer.Start(ctx, "TournamentService.GetDocument")
	defer span.End()

	t, _, err := loadTournament(ctx, s.tournamentRepo, nil, id)
	if err != nil {
		return nil, err
	}
	return export.Export(t), nil
}

func (s *tournamentService) List(ctx context.Context, limit, offset int) ([]*models.TournamentRecord, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrValidationFailed)
	}
	return s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{Limit: limit, Offset: offset})
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "TournamentService.Delete")
	defer span.End()

	err := withTx(ctx, s.db, s.logger, func(exec repositories.SQLExecutor) error {
		if err := s.simulationRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return fmt.Errorf("failed to delete simulations of tournament %s: %w", id, err)
		}
		return mapRepositoryError(s.tournamentRepo.Delete(ctx, exec, id))
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "tournament deleted", slog.String("tournament_id", id))
	return nil
}
