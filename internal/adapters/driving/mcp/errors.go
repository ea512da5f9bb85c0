// Package mcp provides an MCP (Model Context Protocol) server adapter for lexbrief.
// It lets AI assistants load documents into a session and ask cited questions about them.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrServiceUnavailable is returned when a tool needs a port that was not provided.
var ErrServiceUnavailable = errors.New("mcp: service not available")
