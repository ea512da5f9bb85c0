package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

func TestSessionRegistry_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) driven.SessionStore {
		return NewSessionRegistry()
	})
}

func TestSessionRegistry_SnapshotIsStable(t *testing.T) {
	r := NewSessionRegistry()
	ctx := context.Background()

	require.NoError(t, r.AppendChunks(ctx, "s", []domain.Chunk{storetest.Chunk("d", 1, 0, 1, 0)}))
	snapshot, err := r.Chunks(ctx, "s")
	require.NoError(t, err)

	require.NoError(t, r.AppendChunks(ctx, "s", []domain.Chunk{storetest.Chunk("d", 2, 0, 0, 1)}))
	assert.Len(t, snapshot, 1)

	// Appending to the snapshot must not leak into the store.
	_ = append(snapshot, storetest.Chunk("x", 9, 0, 1, 1))
	chunks, err := r.Chunks(ctx, "s")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "d-2-0", chunks[1].ID)
}

func TestSessionRegistry_SnapshotSurvivesClear(t *testing.T) {
	r := NewSessionRegistry()
	ctx := context.Background()

	require.NoError(t, r.AppendChunks(ctx, "s", []domain.Chunk{storetest.Chunk("d", 1, 0, 1, 0)}))
	snapshot, _ := r.Chunks(ctx, "s")
	require.NoError(t, r.Clear(ctx, "s"))

	assert.Len(t, snapshot, 1)
}

func TestSessionRegistry_Close(t *testing.T) {
	r := NewSessionRegistry()
	ctx := context.Background()

	require.NoError(t, r.AppendChunks(ctx, "a", []domain.Chunk{storetest.Chunk("d", 1, 0, 1)}))
	require.NoError(t, r.AppendChunks(ctx, "b", []domain.Chunk{storetest.Chunk("d", 1, 0, 1)}))
	require.NoError(t, r.Close())

	sessions, err := r.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRegistry_RejectedBatchCreatesNoSession(t *testing.T) {
	r := NewSessionRegistry()
	ctx := context.Background()

	err := r.AppendChunks(ctx, "s", []domain.Chunk{storetest.Chunk("d", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sessions, _ := r.Sessions(ctx)
	assert.Empty(t, sessions)
}

func TestSessionRegistry_RemoveDocumentLeavesOtherSessionsReadable(t *testing.T) {
	r := NewSessionRegistry()
	ctx := context.Background()

	require.NoError(t, r.SaveDocument(ctx, "a", domain.Document{ID: "d", Name: "d.pdf"}))
	require.NoError(t, r.AppendChunks(ctx, "a", []domain.Chunk{storetest.Chunk("d", 1, 0, 1)}))
	require.NoError(t, r.AppendChunks(ctx, "b", []domain.Chunk{storetest.Chunk("e", 1, 0, 1)}))

	// Hold session a so the removal stalls inside it.
	held := r.lookup("a")
	held.mu.Lock()

	removed := make(chan error, 1)
	go func() { removed <- r.RemoveDocument(ctx, "a", "d") }()

	read := make(chan int, 1)
	go func() {
		chunks, _ := r.Chunks(ctx, "b")
		read <- len(chunks)
	}()

	select {
	case n := <-read:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("reading session b blocked behind a removal in session a")
	}

	held.mu.Unlock()
	require.NoError(t, <-removed)

	sessions, err := r.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, sessions)
}

func TestSessionRegistry_WriteAfterRemovalKeepsSession(t *testing.T) {
	r := NewSessionRegistry()
	ctx := context.Background()

	require.NoError(t, r.AppendChunks(ctx, "s", []domain.Chunk{storetest.Chunk("d", 1, 0, 1)}))
	s := r.lookup("s")
	require.NoError(t, r.RemoveDocument(ctx, "s", "d"))

	require.NoError(t, r.AppendChunks(ctx, "s", []domain.Chunk{storetest.Chunk("e", 1, 0, 1, 1)}))
	r.discardIfEmpty("s", s)

	chunks, err := r.Chunks(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}
