package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/tournament-generator/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament with this id already exists")
)

type ListTournamentsFilter struct {
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, record *models.TournamentRecord) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.TournamentRecord, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.TournamentRecord, error)
	Update(ctx context.Context, exec SQLExecutor, record *models.TournamentRecord) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type sqlTournamentRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewTournamentRepository(db *sql.DB, dialect Dialect) TournamentRepository {
	return &sqlTournamentRepository{db: db, dialect: dialect}
}

func (r *sqlTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.TournamentRecord) error {
	executor := r.getExecutor(exec)
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	query := r.dialect.rebind(`
		INSERT INTO tournaments (id, name, preset, document, games, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := executor.ExecContext(ctx, query,
		t.ID, t.Name, t.Preset, string(t.Document), t.Games, t.CreatedAt, t.UpdatedAt,
	)
	return r.handleTournamentError(err)
}

func (r *sqlTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.TournamentRecord, error) {
	executor := r.getExecutor(exec)
	query := r.dialect.rebind(`
		SELECT id, name, preset, document, games, created_at, updated_at
		FROM tournaments
		WHERE id = ?`)

	t := &models.TournamentRecord{}
	var document []byte
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Preset, &document, &t.Games, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.Document = document
	return t, nil
}

// List returns records without their documents, most recently updated first.
func (r *sqlTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.TournamentRecord, error) {
	query := `
		SELECT id, name, preset, games, created_at, updated_at
		FROM tournaments
		ORDER BY updated_at DESC, id`
	args := []interface{}{}
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.TournamentRecord, 0)
	for rows.Next() {
		t := &models.TournamentRecord{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Preset, &t.Games, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *sqlTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.TournamentRecord) error {
	executor := r.getExecutor(exec)
	t.UpdatedAt = time.Now().UTC()
	query := r.dialect.rebind(`
		UPDATE tournaments
		SET name = ?, preset = ?, document = ?, games = ?, updated_at = ?
		WHERE id = ?`)

	result, err := executor.ExecContext(ctx, query, t.Name, t.Preset, string(t.Document), t.Games, t.UpdatedAt, t.ID)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, r.dialect.rebind(`DELETE FROM tournaments WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrTournamentConflict
	}
	return err
}
