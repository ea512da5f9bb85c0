// Package storetest holds behaviour tests shared by every SessionStore implementation.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) driven.SessionStore

// Chunk builds an embedded chunk for tests.
func Chunk(docID string, label, offset int, embedding ...float32) domain.Chunk {
	return domain.Chunk{
		ID:         fmt.Sprintf("%s-%d-%d", docID, label, offset),
		DocumentID: docID,
		PageLabel:  label,
		Offset:     offset,
		Text:       fmt.Sprintf("text of %s page %d at %d", docID, label, offset),
		Embedding:  embedding,
	}
}

// Run exercises the SessionStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("unknown session reads empty", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		docs, err := store.ListDocuments(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, docs)

		chunks, err := store.Chunks(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("documents newest first and last write wins", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "a", Name: "a.pdf", PageCount: 1, CreatedAt: base}))
		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "b", Name: "b.pdf", PageCount: 2, CreatedAt: base.Add(time.Hour)}))
		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "c", Name: "c.pdf", PageCount: 3, CreatedAt: base.Add(30 * time.Minute)}))
		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "a", Name: "a-v2.pdf", PageCount: 9, CreatedAt: base}))

		docs, err := store.ListDocuments(ctx, "s")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{"b", "c", "a"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
		assert.Equal(t, "a-v2.pdf", docs[2].Name)
		assert.Equal(t, 9, docs[2].PageCount)
		assert.True(t, docs[0].CreatedAt.Equal(base.Add(time.Hour)))
	})

	t.Run("chunks keep insertion order across batches", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{
			Chunk("d", 1, 0, 1, 0), Chunk("d", 1, 1300, 0, 1),
		}))
		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("d", 2, 0, 1, 1)}))

		chunks, err := store.Chunks(ctx, "s")
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "d-1-0", chunks[0].ID)
		assert.Equal(t, "d-1-1300", chunks[1].ID)
		assert.Equal(t, "d-2-0", chunks[2].ID)
		assert.Equal(t, []float32{0, 1}, chunks[1].Embedding)
		assert.Equal(t, 1300, chunks[1].Offset)
		assert.Equal(t, "text of d page 1 at 1300", chunks[1].Text)
	})

	t.Run("rejects chunks without embeddings atomically", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("d", 1, 0, 1, 0), Chunk("d", 1, 5)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		chunks, err := store.Chunks(ctx, "s")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("rejects dimension mismatch", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("d", 1, 0, 1, 0), Chunk("d", 1, 5, 1, 0, 0)})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("d", 1, 0, 1, 0)}))
		err = store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("d", 2, 0, 1, 0, 0)})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		chunks, err := store.Chunks(ctx, "s")
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("rejects empty session id and invalid document", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		assert.ErrorIs(t, store.SaveDocument(ctx, "", domain.Document{ID: "a", Name: "a"}), domain.ErrInvalidInput)
		assert.ErrorIs(t, store.AppendChunks(ctx, "", []domain.Chunk{Chunk("d", 1, 0, 1)}), domain.ErrInvalidInput)
		assert.ErrorIs(t, store.SaveDocument(ctx, "s", domain.Document{ID: "a"}), domain.ErrInvalidInput)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.AppendChunks(context.Background(), "s", nil))

		sessions, err := store.Sessions(context.Background())
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveDocument(ctx, "one", domain.Document{ID: "a", Name: "a.pdf", CreatedAt: time.Now()}))
		require.NoError(t, store.AppendChunks(ctx, "one", []domain.Chunk{Chunk("a", 1, 0, 1, 0, 0)}))
		// Another session may use a different width.
		require.NoError(t, store.AppendChunks(ctx, "two", []domain.Chunk{Chunk("b", 1, 0, 1, 0)}))

		docs, err := store.ListDocuments(ctx, "two")
		require.NoError(t, err)
		assert.Empty(t, docs)

		chunks, err := store.Chunks(ctx, "two")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "b", chunks[0].DocumentID)

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, sessions)
	})

	t.Run("clear behaves as if the session never existed", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "a", Name: "a.pdf", CreatedAt: time.Now()}))
		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("a", 1, 0, 1, 0)}))
		require.NoError(t, store.AppendChunks(ctx, "other", []domain.Chunk{Chunk("b", 1, 0, 1, 0)}))

		require.NoError(t, store.Clear(ctx, "s"))

		docs, err := store.ListDocuments(ctx, "s")
		require.NoError(t, err)
		assert.Empty(t, docs)
		chunks, err := store.Chunks(ctx, "s")
		require.NoError(t, err)
		assert.Empty(t, chunks)

		// The width constraint is gone with the session.
		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("a", 1, 0, 1, 0, 0)}))

		others, err := store.Chunks(ctx, "other")
		require.NoError(t, err)
		assert.Len(t, others, 1)

		require.NoError(t, store.Clear(ctx, "never-existed"))
	})

	t.Run("remove document drops its chunks only", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		now := time.Now()

		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "a", Name: "a.pdf", PageCount: 1, CreatedAt: now}))
		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "b", Name: "b.pdf", PageCount: 1, CreatedAt: now}))
		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{
			Chunk("a", 1, 0, 1, 0), Chunk("b", 1, 0, 0, 1), Chunk("a", 2, 0, 1, 1),
		}))

		require.NoError(t, store.RemoveDocument(ctx, "s", "a"))

		docs, err := store.ListDocuments(ctx, "s")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "b", docs[0].ID)

		chunks, err := store.Chunks(ctx, "s")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "b", chunks[0].DocumentID)

		assert.ErrorIs(t, store.RemoveDocument(ctx, "s", "a"), domain.ErrNotFound)
		assert.ErrorIs(t, store.RemoveDocument(ctx, "nobody", "a"), domain.ErrNotFound)
	})

	t.Run("removing the last document empties the session", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "a", Name: "a.pdf", CreatedAt: time.Now()}))
		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("a", 1, 0, 1, 0)}))

		require.NoError(t, store.RemoveDocument(ctx, "s", "a"))

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		assert.Empty(t, sessions)

		// A new width is accepted once nothing is left.
		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("c", 1, 0, 1, 0, 0)}))
	})

	t.Run("remove document takes chunks that never got a document", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{
			Chunk("orphan", 1, 0, 1, 0), Chunk("kept", 1, 0, 0, 1),
		}))

		require.NoError(t, store.RemoveDocument(ctx, "s", "orphan"))

		chunks, err := store.Chunks(ctx, "s")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "kept", chunks[0].DocumentID)
		assert.ErrorIs(t, store.RemoveDocument(ctx, "s", "orphan"), domain.ErrNotFound)
	})

	t.Run("zero creation time round-trips", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveDocument(ctx, "s", domain.Document{ID: "a", Name: "a.pdf"}))

		docs, err := store.ListDocuments(ctx, "s")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.True(t, docs[0].CreatedAt.IsZero())
	})

	t.Run("stored embeddings are isolated from caller", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		c := Chunk("d", 1, 0, 1, 2)
		require.NoError(t, store.AppendChunks(ctx, "s", []domain.Chunk{c}))
		c.Embedding[0] = 99

		chunks, err := store.Chunks(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, float32(1), chunks[0].Embedding[0])
	})

	t.Run("cancelled context does not mutate", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := store.AppendChunks(ctx, "s", []domain.Chunk{Chunk("d", 1, 0, 1)})
		assert.ErrorIs(t, err, context.Canceled)

		chunks, err := store.Chunks(context.Background(), "s")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("concurrent appends are never lost or torn", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const writers, batches, batchSize = 8, 10, 5

		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for b := 0; b < batches; b++ {
					batch := make([]domain.Chunk, batchSize)
					for i := range batch {
						batch[i] = Chunk(fmt.Sprintf("w%d", w), b+1, i, 1, float32(i))
					}
					assert.NoError(t, store.AppendChunks(ctx, "shared", batch))
				}
			}(w)
		}

		// Readers must always observe whole batches.
		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					chunks, err := store.Chunks(ctx, "shared")
					assert.NoError(t, err)
					assert.Zero(t, len(chunks)%batchSize)
				}
			}()
		}
		wg.Wait()

		chunks, err := store.Chunks(ctx, "shared")
		require.NoError(t, err)
		assert.Len(t, chunks, writers*batches*batchSize)
	})
}
