// Package tui provides an interactive terminal user interface for lexbrief.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer composes cited answers (required).
	Answer driving.AnswerService

	// Session lists and clears the session's documents (required).
	Session driving.SessionService

	// Ingest adds files to the session. Without it the documents view is read-only.
	Ingest driving.IngestService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	answer driving.AnswerService,
	session driving.SessionService,
	ingest driving.IngestService,
) *Ports {
	return &Ports{
		Answer:  answer,
		Session: session,
		Ingest:  ingest,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Session == nil {
		return ErrMissingSessionService
	}
	return nil
}
