package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds raised by the bracket engine. Callers match them with errors.Is.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrInsufficientData   = errors.New("insufficient data")
	ErrSchedulingConflict = errors.New("scheduling conflict")
	ErrReference          = errors.New("reference error")
	ErrUnknownOperator    = errors.New("unknown filter operator")
)

// SchedulingConflictError is returned when a group's teams cannot be split into
// games of equal size and skipping is not allowed.
type SchedulingConflictError struct {
	Group     string
	InGame    int
	TeamCount int
	Discarded []string
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("%s: couldn't make games with all teams in group %q, expected k*%d teams, %d given, discarding %d teams (%s)",
		ErrSchedulingConflict, e.Group, e.InGame, e.TeamCount, len(e.Discarded), strings.Join(e.Discarded, ", "))
}

func (e *SchedulingConflictError) Unwrap() error {
	return ErrSchedulingConflict
}
