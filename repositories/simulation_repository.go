package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/Dosada05/tournament-generator/models"
)

type SimulationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, record *models.SimulationRecord) error
	ListByTournament(ctx context.Context, tournamentID string, limit int) ([]*models.SimulationRecord, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type sqlSimulationRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSimulationRepository(db *sql.DB, dialect Dialect) SimulationRepository {
	return &sqlSimulationRepository{db: db, dialect: dialect}
}

func (r *sqlSimulationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlSimulationRepository) Create(ctx context.Context, exec SQLExecutor, s *models.SimulationRecord) error {
	executor := r.getExecutor(exec)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := r.dialect.rebind(`
		INSERT INTO simulations
			(tournament_id, runs, min_games, max_games, mean_games, min_duration, max_duration, mean_duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	return executor.QueryRowContext(ctx, query,
		s.TournamentID, s.Runs, s.MinGames, s.MaxGames, s.MeanGames,
		int64(s.MinDuration), int64(s.MaxDuration), int64(s.MeanDuration), s.CreatedAt,
	).Scan(&s.ID)
}

func (r *sqlSimulationRepository) ListByTournament(ctx context.Context, tournamentID string, limit int) ([]*models.SimulationRecord, error) {
	query := `
		SELECT id, tournament_id, runs, min_games, max_games, mean_games,
			min_duration, max_duration, mean_duration, created_at
		FROM simulations
		WHERE tournament_id = ?
		ORDER BY id DESC`
	args := []interface{}{tournamentID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.SimulationRecord, 0)
	for rows.Next() {
		s := &models.SimulationRecord{}
		var minD, maxD, meanD int64
		if err := rows.Scan(&s.ID, &s.TournamentID, &s.Runs, &s.MinGames, &s.MaxGames, &s.MeanGames,
			&minD, &maxD, &meanD, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.MinDuration, s.MaxDuration, s.MeanDuration = time.Duration(minD), time.Duration(maxD), time.Duration(meanD)
		records = append(records, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *sqlSimulationRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, r.dialect.rebind(`DELETE FROM simulations WHERE tournament_id = ?`), tournamentID)
	return err
}
