package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/models"
	"github.com/Dosada05/tournament-generator/repositories"
)

// withTx runs fn inside a transaction on db. A nil db runs fn without one, with a nil
// executor, so repositories fall back to their own handle.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(exec repositories.SQLExecutor) error) (err error) {
	if db == nil {
		return fn(nil)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentConflict):
		return ErrTournamentConflict
	default:
		return err
	}
}

// loadTournament reads a record and rebuilds its tournament.
func loadTournament(ctx context.Context, repo repositories.TournamentRepository, exec repositories.SQLExecutor, id string) (*models.Tournament, *models.TournamentRecord, error) {
	rec, err := repo.GetByID(ctx, exec, id)
	if err != nil {
		return nil, nil, mapRepositoryError(err)
	}
	var doc export.Document
	if err := json.Unmarshal(rec.Document, &doc); err != nil {
		return nil, nil, fmt.Errorf("stored document of tournament %s is corrupt: %w", id, err)
	}
	t, err := export.Import(&doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to rebuild tournament %s: %w", id, err)
	}
	return t, rec, nil
}

// snapshot writes the current state of t into rec.
func snapshot(rec *models.TournamentRecord, t *models.Tournament) error {
	data, err := json.Marshal(export.Export(t))
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	rec.ID = t.ID
	rec.Name = t.Name
	rec.Document = data
	rec.Games = len(t.Games())
	return nil
}

// keyedMutex serialises load-modify-save cycles per tournament within the process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
