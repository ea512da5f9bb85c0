package mcp

import (
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval ranks session passages against a question.
	Retrieval driving.RetrievalService

	// Answer composes cited answers.
	Answer driving.AnswerService

	// Ingest loads documents into a session.
	Ingest driving.IngestService

	// Session lists and clears session contents.
	Session driving.SessionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Answer, Ingest and Session are optional; their tools report ErrServiceUnavailable.
	return nil
}
