// Package apperr defines the error values shared across assetfill.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrMarkerNotFound = errors.New("marker not found")
)

// Phases reported by PhaseError.
const (
	PhaseEnrich  = "enrich"
	PhaseRender  = "render"
	PhaseRead    = "read"
	PhaseScan    = "scan"
	PhaseWrite   = "write"
	PhaseCatalog = "catalog"
)

// PhaseError tags a failure with the fill phase it happened in.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InPhase wraps err with phase. A nil err stays nil.
func InPhase(phase string, err error) error {
	if err == nil {
		return nil
	}
	return &PhaseError{Phase: phase, Err: err}
}

// Phase returns the phase recorded on err, or "" when err carries none.
func Phase(err error) string {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase
	}
	return ""
}
