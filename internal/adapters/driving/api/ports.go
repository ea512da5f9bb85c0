package api

import (
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the HTTP server.
type Ports struct {
	// Ingest turns uploads into searchable passages.
	Ingest driving.IngestService

	// Retrieval ranks a session's passages against a question.
	Retrieval driving.RetrievalService

	// Answer composes cited answers.
	Answer driving.AnswerService

	// Session lists and clears session contents.
	Session driving.SessionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p == nil || p.Ingest == nil:
		return ErrMissingIngestService
	case p.Retrieval == nil:
		return ErrMissingRetrievalService
	case p.Answer == nil:
		return ErrMissingAnswerService
	case p.Session == nil:
		return ErrMissingSessionService
	}
	return nil
}
