package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/eventbus"
	"github.com/Dosada05/tournament-generator/metrics"
	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/repositories"
)

// GamesGeneratedPayload is published on eventbus.TopicGamesGenerated.
type GamesGeneratedPayload struct {
	Round   int            `json:"round"`
	Ordered bool           `json:"ordered"`
	Games   []*models.Game `json:"games"`
}

// ResultsUpdatedPayload is published on eventbus.TopicResultsUpdated.
type ResultsUpdatedPayload struct {
	Game  *models.Game `json:"game"`
	Reset bool         `json:"reset"`
}

// TeamsProgressedPayload is published on eventbus.TopicTeamsProgressed.
type TeamsProgressedPayload struct {
	Round int    `json:"round"`
	Blank bool   `json:"blank"`
	Moves []Move `json:"moves"`
}

// Move lists the teams one progression carried from a group to another.
type Move struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Teams []string `json:"teams"`
}

type Standing struct {
	Rank   int    `json:"rank"`
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Score  int    `json:"score"`
}

type BracketService interface {
	GenerateGames(ctx context.Context, tournamentID string, round int, order bool) ([]*models.Game, error)
	SetResults(ctx context.Context, tournamentID string, gameID int, scores map[string]int) (*models.Game, error)
	ResetResults(ctx context.Context, tournamentID string, gameID int) (*models.Game, error)
	Progress(ctx context.Context, tournamentID string, round int, blank bool) ([]Move, error)
	ResetProgression(ctx context.Context, tournamentID string, round int) error
	Standings(ctx context.Context, tournamentID string, ordering string) ([]Standing, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	rnd            brackets.Randomizer
	publisher      eventbus.Publisher
	recorder       metrics.Recorder
	logger         *slog.Logger
	tracer         trace.Tracer
	locks          *keyedMutex
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	rnd brackets.Randomizer,
	publisher eventbus.Publisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
	tracer trace.Tracer,
) BracketService {
	if rnd == nil {
		rnd = brackets.DefaultRandomizer
	}
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		rnd:            rnd,
		publisher:      publisher,
		recorder:       recorder,
		logger:         logger,
		tracer:         tracer,
		locks:          newKeyedMutex(),
	}
}

// mutate loads the tournament, applies fn and stores the result in one transaction.
func (s *bracketService) mutate(ctx context.Context, id string, fn func(t *models.Tournament) error) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	return withTx(ctx, s.db, s.logger, func(exec repositories.SQLExecutor) error {
		t, rec, err := loadTournament(ctx, s.tournamentRepo, exec, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := snapshot(rec, t); err != nil {
			return err
		}
		return mapRepositoryError(s.tournamentRepo.Update(ctx, exec, rec))
	})
}

func (s *bracketService) publish(ctx context.Context, topic, id string, payload any) {
	if err := s.publisher.Publish(ctx, topic, id, payload); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("tournament_id", id),
			slog.Any("error", err),
		)
	}
}

func roundAt(t *models.Tournament, index int) (*models.Round, error) {
	rounds := t.Rounds()
	if index < 0 || index >= len(rounds) {
		return nil, fmt.Errorf("%w: tournament %s has %d rounds, index %d given", ErrRoundNotFound, t.ID, len(rounds), index)
	}
	return rounds[index], nil
}

func (s *bracketService) GenerateGames(ctx context.Context, tournamentID string, roundIndex int, order bool) ([]*models.Game, error) {
	ctx, span := s.tracer.Start(ctx, "BracketService.GenerateGames")
	defer span.End()
	span.SetAttributes(attribute.String("tournament.id", tournamentID), attribute.Int("round.index", roundIndex))

	var games []*models.Game
	err := s.mutate(ctx, tournamentID, func(t *models.Tournament) error {
		round, err := roundAt(t, roundIndex)
		if err != nil {
			return err
		}
		if _, err := brackets.GenerateRound(ctx, round, s.rnd); err != nil {
			return err
		}
		if order {
			if err := brackets.OrderRound(round); err != nil {
				return err
			}
		}
		games = round.Games()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.GamesGenerated(len(games))
	s.publish(ctx, eventbus.TopicGamesGenerated, tournamentID, GamesGeneratedPayload{Round: roundIndex, Ordered: order, Games: games})
	s.logger.InfoContext(ctx, "games generated",
		slog.String("tournament_id", tournamentID),
		slog.Int("round", roundIndex),
		slog.Int("games", len(games)),
	)
	return games, nil
}

func (s *bracketService) SetResults(ctx context.Context, tournamentID string, gameID int, scores map[string]int) (*models.Game, error) {
	ctx, span := s.tracer.Start(ctx, "BracketService.SetResults")
	defer span.End()
	span.SetAttributes(attribute.String("tournament.id", tournamentID), attribute.Int("game.id", gameID))

	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: scores are required", ErrValidationFailed)
	}

	var game *models.Game
	err := s.mutate(ctx, tournamentID, func(t *models.Tournament) error {
		_, group := t.GameByID(gameID)
		if group == nil {
			return fmt.Errorf("%w: game %d", ErrGameNotFound, gameID)
		}
		var err error
		game, err = group.SetResults(gameID, scores)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.ResultsRecorded()
	s.publish(ctx, eventbus.TopicResultsUpdated, tournamentID, ResultsUpdatedPayload{Game: game})
	return game, nil
}

func (s *bracketService) ResetResults(ctx context.Context, tournamentID string, gameID int) (*models.Game, error) {
	ctx, span := s.tracer.Start(ctx, "BracketService.ResetResults")
	defer span.End()

	var game *models.Game
	err := s.mutate(ctx, tournamentID, func(t *models.Tournament) error {
		_, group := t.GameByID(gameID)
		if group == nil {
			return fmt.Errorf("%w: game %d", ErrGameNotFound, gameID)
		}
		var err error
		game, err = group.ResetResults(gameID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.TopicResultsUpdated, tournamentID, ResultsUpdatedPayload{Game: game, Reset: true})
	return game, nil
}

// Progress runs the progressions of a round and returns the moves it made. Progressions
// that had already run are skipped and not reported.
func (s *bracketService) Progress(ctx context.Context, tournamentID string, roundIndex int, blank bool) ([]Move, error) {
	ctx, span := s.tracer.Start(ctx, "BracketService.Progress")
	defer span.End()
	span.SetAttributes(attribute.String("tournament.id", tournamentID), attribute.Bool("progress.blank", blank))

	moves := []Move{}
	err := s.mutate(ctx, tournamentID, func(t *models.Tournament) error {
		round, err := roundAt(t, roundIndex)
		if err != nil {
			return err
		}
		for _, group := range round.Groups() {
			for _, p := range group.Progressions() {
				if p.IsProgressed() {
					continue
				}
				if err := p.Progress(blank); err != nil {
					return fmt.Errorf("progressing group %q: %w", group.Name, err)
				}
				move := Move{From: group.ID, To: p.To().ID, Teams: []string{}}
				for _, team := range p.ProgressedTeams() {
					move.Teams = append(move.Teams, team.ID)
				}
				moves = append(moves, move)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	moved := 0
	for _, m := range moves {
		moved += len(m.Teams)
	}
	s.recorder.TeamsProgressed(moved)
	s.publish(ctx, eventbus.TopicTeamsProgressed, tournamentID, TeamsProgressedPayload{Round: roundIndex, Blank: blank, Moves: moves})
	s.logger.InfoContext(ctx, "round progressed",
		slog.String("tournament_id", tournamentID),
		slog.Int("round", roundIndex),
		slog.Int("teams", moved),
		slog.Bool("blank", blank),
	)
	return moves, nil
}

func (s *bracketService) ResetProgression(ctx context.Context, tournamentID string, roundIndex int) error {
	ctx, span := s.tracer.Start(ctx, "BracketService.ResetProgression")
	defer span.End()

	return s.mutate(ctx, tournamentID, func(t *models.Tournament) error {
		round, err := roundAt(t, roundIndex)
		if err != nil {
			return err
		}
		round.ResetProgressions()
		return nil
	})
}

func (s *bracketService) Standings(ctx context.Context, tournamentID string, ordering string) ([]Standing, error) {
	ctx, span := s.tracer.Start(ctx, "BracketService.Standings")
	defer span.End()

	order, err := models.ParseOrdering(ordering)
	if err != nil {
		return nil, err
	}
	t, _, err := loadTournament(ctx, s.tournamentRepo, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	teams, err := t.SortTeams(order)
	if err != nil {
		return nil, err
	}

	out := make([]Standing, 0, len(teams))
	for i, team := range teams {
		out = append(out, Standing{
			Rank:   i + 1,
			TeamID: team.ID,
			Name:   team.Name,
			Points: team.SumPoints,
			Score:  team.SumScore,
		})
	}
	return out, nil
}
