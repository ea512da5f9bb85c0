// Package api provides the JSON HTTP adapter for lexbrief. A browser or any
// HTTP client uploads documents into a cookie-identified session and asks
// questions answered from that session's passages.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("api: ingest service is required")

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("api: retrieval service is required")

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("api: answer service is required")

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("api: session service is required")

// noTextMessage is shown when an upload has no text layer.
const noTextMessage = "No extractable text found in PDF. If this is a scanned PDF, please OCR it first."

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNoExtractableText):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for err.
func messageFor(prefix string, err error) string {
	if errors.Is(err, domain.ErrNoExtractableText) {
		return noTextMessage
	}
	return prefix + ": " + err.Error()
}
