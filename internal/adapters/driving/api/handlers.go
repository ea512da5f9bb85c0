package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// defaultUploadName is used when the multipart part carries no file name.
const defaultUploadName = "document.pdf"

type questionRequest struct {
	Question string `json:"question"`
}

type chatRequest struct {
	Question string `json:"question"`
	Context  struct {
		Snippets []domain.RetrievedPassage `json:"snippets"`
	} `json:"context"`
}

type retrieveResponse struct {
	Retrieved []domain.RetrievedPassage `json:"retrieved"`
}

type askResponse struct {
	domain.Answer
	Retrieved []domain.RetrievedPassage `json:"retrieved"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type documentsResponse struct {
	Documents []domain.Document `json:"documents"`
}

type statusResponse struct {
	OK    bool   `json:"ok"`
	Route string `json:"route,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{OK: true})
}

func (s *Server) handleUploadHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{OK: true, Route: "/api/upload"})
}

// handleUpload ingests the first file of the multipart field "files".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	tooLarge := fmt.Sprintf("Upload exceeds the %d byte limit", s.maxUploadBytes)
	if r.ContentLength > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(files) > 1 {
		logger.Debug("upload: %d files sent, ingesting only %s", len(files), files[0].Filename)
	}

	header := files[0]
	f, err := header.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Empty or invalid file buffer")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Empty or invalid file buffer")
		return
	}

	name := header.Filename
	if strings.TrimSpace(name) == "" {
		name = defaultUploadName
	}

	doc, err := s.ports.Ingest.IngestFile(r.Context(), sessionID(w, r), name, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, "Upload error", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	question, ok := s.readQuestion(w, r)
	if !ok {
		return
	}

	results, err := s.ports.Retrieval.Retrieve(r.Context(), sessionID(w, r), question, s.topK)
	if err != nil {
		writeServiceError(w, "Retrieve error", err)
		return
	}

	resp := retrieveResponse{Retrieved: make([]domain.RetrievedPassage, len(results))}
	for i, res := range results {
		resp.Retrieved[i] = res.Passage()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	question, ok := s.readQuestion(w, r)
	if !ok {
		return
	}

	result, err := s.ports.Answer.Ask(r.Context(), sessionID(w, r), question)
	if err != nil {
		writeServiceError(w, "Ask error", err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: result.Answer, Retrieved: result.Passages()})
}

// handleChat answers from caller-supplied snippets without touching the session.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, "Chat error", err)
		return
	}

	answer, err := s.ports.Answer.Chat(r.Context(), req.Question, req.Context.Snippets)
	if err != nil {
		writeServiceError(w, "Chat error", err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Session.ListDocuments(r.Context(), sessionID(w, r))
	if err != nil {
		writeServiceError(w, "Documents error", err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, documentsResponse{Documents: docs})
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Session.RemoveDocument(r.Context(), sessionID(w, r), r.PathValue("id")); err != nil {
		writeServiceError(w, "Remove error", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OK: true})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Session.Clear(r.Context(), sessionID(w, r)); err != nil {
		writeServiceError(w, "Clear error", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OK: true})
}

// readQuestion decodes {"question": ...} and rejects a blank question.
func (s *Server) readQuestion(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req questionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, "Invalid request", err)
		return "", false
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "Missing question")
		return "", false
	}
	return question, true
}
