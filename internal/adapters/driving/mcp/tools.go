package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// plainTextMIME routes ingested text through the plain text extractor.
const plainTextMIME = "text/plain"

// SessionInput names the session a tool acts on.
type SessionInput struct {
	Session string `json:"session,omitempty" jsonschema:"session name (default mcp)"`
}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Session string `json:"session,omitempty" jsonschema:"session name (default mcp)"`
	Name    string `json:"name" jsonschema:"document name shown in citations"`
	Text    string `json:"text" jsonschema:"document text; form feed characters separate pages"`
}

// IngestFileInput is the input schema for the ingest_file tool.
type IngestFileInput struct {
	Session string `json:"session,omitempty" jsonschema:"session name (default mcp)"`
	Path    string `json:"path" jsonschema:"local path of a PDF, DOCX, HTML or text file"`
}

// DocumentOutput describes an ingested document.
type DocumentOutput struct {
	DocID string `json:"docId"`
	Name  string `json:"name"`
	Pages int    `json:"pages"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Session  string `json:"session,omitempty" jsonschema:"session name (default mcp)"`
	Question string `json:"question" jsonschema:"the question to rank passages against"`
	K        int    `json:"k,omitempty" jsonschema:"number of passages to return (default 6)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Retrieved []domain.RetrievedPassage `json:"retrieved"`
	Count     int                       `json:"count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Session  string `json:"session,omitempty" jsonschema:"session name (default mcp)"`
	Question string `json:"question" jsonschema:"the question to answer from the session's documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string                    `json:"answer"`
	PageHits  []int                     `json:"page_hits"`
	Citations []domain.Citation         `json:"citations"`
	Reasoning string                    `json:"reasoning"`
	Retrieved []domain.RetrievedPassage `json:"retrieved"`
}

// DocumentsOutput is the output schema for the list_documents tool.
type DocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// RemoveDocumentInput is the input schema for the remove_document tool.
type RemoveDocumentInput struct {
	Session string `json:"session,omitempty" jsonschema:"session name (default mcp)"`
	DocID   string `json:"docId" jsonschema:"ID of the document to remove, as returned by list_documents"`
}

// RemoveDocumentOutput is the output schema for the remove_document tool.
type RemoveDocumentOutput struct {
	Session string `json:"session"`
	DocID   string `json:"docId"`
	Removed bool   `json:"removed"`
}

// ClearOutput is the output schema for the clear_session tool.
type ClearOutput struct {
	Session string `json:"session"`
	Cleared bool   `json:"cleared"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Add a text document to a session so it can be searched and cited",
	}, s.handleIngestText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_file",
		Description: "Add a local PDF, DOCX, HTML or text file to a session",
	}, s.handleIngestFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the passages of a session most similar to a question",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from a session's documents with page citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents loaded into a session",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_document",
		Description: "Remove one document and its passages from a session",
	}, s.handleRemoveDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_session",
		Description: "Remove every document from a session",
	}, s.handleClearSession)
}

// handleIngestText handles the ingest_text tool invocation.
func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Ingest == nil {
		return nil, DocumentOutput{}, fmt.Errorf("ingest_text: %w", ErrServiceUnavailable)
	}

	doc, err := s.ports.Ingest.IngestFile(ctx, sessionOrDefault(input.Session), input.Name, plainTextMIME, []byte(input.Text))
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(*doc), nil
}

// handleIngestFile handles the ingest_file tool invocation.
func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFileInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Ingest == nil {
		return nil, DocumentOutput{}, fmt.Errorf("ingest_file: %w", ErrServiceUnavailable)
	}
	if input.Path == "" {
		return nil, DocumentOutput{}, fmt.Errorf("ingest_file: %w: path is required", domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}

	doc, err := s.ports.Ingest.IngestFile(ctx, sessionOrDefault(input.Session), filepath.Base(input.Path), "", data)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(*doc), nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = s.topK
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, sessionOrDefault(input.Session), input.Question, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Retrieved: make([]domain.RetrievedPassage, len(results)),
		Count:     len(results),
	}
	for i := range results {
		output.Retrieved[i] = results[i].Passage()
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, fmt.Errorf("ask: %w", ErrServiceUnavailable)
	}

	result, err := s.ports.Answer.Ask(ctx, sessionOrDefault(input.Session), input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer:    result.Answer.Answer,
		PageHits:  result.Answer.PageHits,
		Citations: result.Answer.Citations,
		Reasoning: result.Answer.Reasoning,
		Retrieved: result.Passages(),
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	if s.ports.Session == nil {
		return nil, DocumentsOutput{}, fmt.Errorf("list_documents: %w", ErrServiceUnavailable)
	}

	docs, err := s.ports.Session.ListDocuments(ctx, sessionOrDefault(input.Session))
	if err != nil {
		return nil, DocumentsOutput{}, err
	}

	output := DocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(docs[i])
	}
	return nil, output, nil
}

// handleRemoveDocument handles the remove_document tool invocation.
func (s *Server) handleRemoveDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveDocumentInput,
) (*mcp.CallToolResult, RemoveDocumentOutput, error) {
	if s.ports.Session == nil {
		return nil, RemoveDocumentOutput{}, fmt.Errorf("remove_document: %w", ErrServiceUnavailable)
	}
	if input.DocID == "" {
		return nil, RemoveDocumentOutput{}, fmt.Errorf("remove_document: %w: docId is required", domain.ErrInvalidInput)
	}

	session := sessionOrDefault(input.Session)
	if err := s.ports.Session.RemoveDocument(ctx, session, input.DocID); err != nil {
		return nil, RemoveDocumentOutput{}, err
	}
	return nil, RemoveDocumentOutput{Session: session, DocID: input.DocID, Removed: true}, nil
}

// handleClearSession handles the clear_session tool invocation.
func (s *Server) handleClearSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	if s.ports.Session == nil {
		return nil, ClearOutput{}, fmt.Errorf("clear_session: %w", ErrServiceUnavailable)
	}

	session := sessionOrDefault(input.Session)
	if err := s.ports.Session.Clear(ctx, session); err != nil {
		return nil, ClearOutput{}, err
	}
	return nil, ClearOutput{Session: session, Cleared: true}, nil
}

func toDocumentOutput(doc domain.Document) DocumentOutput {
	return DocumentOutput{DocID: doc.ID, Name: doc.Name, Pages: doc.PageCount}
}
