package services

import "errors"

// Errors shared by the services and mapped to HTTP statuses by the handlers. Errors from
// the bracket engine (models.Err*) pass through wrapped and are mapped there too.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrGameNotFound       = errors.New("game not found")

	ErrTournamentConflict = errors.New("tournament with this id already exists")

	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrStorageUnavailable = errors.New("file storage is not configured")
)
