package models

import (
	"encoding/json"
	"time"
)

// TournamentRecord is a stored tournament: its exported document plus bookkeeping columns.
type TournamentRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Preset    string          `json:"preset,omitempty"`
	Document  json.RawMessage `json:"document"`
	Games     int             `json:"games"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SimulationRecord keeps the outcome of one batch of simulated runs.
type SimulationRecord struct {
	ID           int64         `json:"id"`
	TournamentID string        `json:"tournament_id"`
	Runs         int           `json:"runs"`
	MinGames     int           `json:"min_games"`
	MaxGames     int           `json:"max_games"`
	MeanGames    float64       `json:"mean_games"`
	MinDuration  time.Duration `json:"min_duration"`
	MaxDuration  time.Duration `json:"max_duration"`
	MeanDuration time.Duration `json:"mean_duration"`
	CreatedAt    time.Time     `json:"created_at"`
}
