package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lexbrief/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in an in-memory SQLite database.
type SessionStore struct {
	db       *sql.DB
	name     string
	writeSeq atomic.Int64
}

// NewSessionStore opens a fresh in-memory database and applies migrations.
func NewSessionStore() (*SessionStore, error) {
	name := "lexbrief-" + uuid.NewString()
	dsn := "file:" + name + "?mode=memory&cache=shared&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// The memory database lives as long as one connection stays open.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SessionStore{db: db, name: name}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database, discarding every session.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Name returns the in-memory database name.
func (s *SessionStore) Name() string {
	return s.name
}

// SaveDocument stores or replaces a document.
func (s *SessionStore) SaveDocument(ctx context.Context, sessionID string, doc domain.Document) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (session_id, id, name, page_count, created_at, write_seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, id) DO UPDATE SET
			name = excluded.name,
			page_count = excluded.page_count,
			created_at = excluded.created_at,
			write_seq = excluded.write_seq
	`, sessionID, doc.ID, doc.Name, doc.PageCount, doc.CreatedAt.UnixMicro(), s.writeSeq.Add(1))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// AppendChunks appends the batch in a single transaction.
func (s *SessionStore) AppendChunks(ctx context.Context, sessionID string, chunks []domain.Chunk) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dims, err := domain.ValidateChunkBatch(chunks, 0)
	if err != nil {
		return fmt.Errorf("append chunks: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var held int
	err = tx.QueryRowContext(ctx, `SELECT dims FROM chunks WHERE session_id = ? LIMIT 1`, sessionID).Scan(&held)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reading session width: %w", err)
	case held != dims:
		return fmt.Errorf("append chunks: %w: batch has %d dimensions, session holds %d",
			domain.ErrDimensionMismatch, dims, held)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (session_id, id, document_id, page_label, start_offset, text, dims, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, sessionID, c.ID, c.DocumentID, c.PageLabel, c.Offset,
			c.Text, dims, float32SliceToBytes(c.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// ListDocuments returns the session's documents, most recent first.
func (s *SessionStore) ListDocuments(ctx context.Context, sessionID string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, page_count, created_at
		FROM documents
		WHERE session_id = ?
		ORDER BY created_at DESC, write_seq DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var createdAt int64
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.PageCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.CreatedAt = time.UnixMicro(createdAt).UTC()
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Chunks returns the session's chunks in insertion order.
func (s *SessionStore) Chunks(ctx context.Context, sessionID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, page_label, start_offset, text, embedding
		FROM chunks
		WHERE session_id = ?
		ORDER BY pos
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.PageLabel, &c.Offset, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// RemoveDocument deletes one document and any chunks carrying its ID in a
// single transaction.
func (s *SessionStore) RemoveDocument(ctx context.Context, sessionID, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var removed int64
	for _, q := range []string{
		`DELETE FROM documents WHERE session_id = ? AND id = ?`,
		`DELETE FROM chunks WHERE session_id = ? AND document_id = ?`,
	} {
		res, err := tx.ExecContext(ctx, q, sessionID, documentID)
		if err != nil {
			return fmt.Errorf("removing document %s: %w", documentID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("removing document %s: %w", documentID, err)
		}
		removed += n
	}
	if removed == 0 {
		return fmt.Errorf("remove document %s: %w", documentID, domain.ErrNotFound)
	}
	return tx.Commit()
}

// Clear deletes the session's documents and chunks.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	return tx.Commit()
}

// Sessions returns the IDs of sessions holding documents or chunks, sorted.
func (s *SessionStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id FROM documents
		UNION
		SELECT session_id FROM chunks
		ORDER BY session_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// migrate runs all pending migrations.
func (s *SessionStore) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_sessions.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func checkSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
