package core

import (
	"context"

	"github.com/aufaim/docquery/internal/models"
)

// ChunkStore persists chunks and ranks them by vector distance. It abstracts
// Postgres/pgvector so higher layers never depend on a specific database.
type ChunkStore interface {
	// Upsert stores the chunks keyed by (doc_id, chunk_index, source_type),
	// overwriting text, embedding and metadata on conflict. It returns the
	// number of rows written and is a no-op on empty input.
	Upsert(ctx context.Context, chunks []models.Chunk) (int, error)

	// DeleteStale removes rows of a document whose chunk_index is at or
	// beyond keep, so a document re-chunked into fewer chunks leaves no
	// orphaned rows behind.
	DeleteStale(ctx context.Context, docID string, sourceType models.SourceType, keep int) error

	// Rank returns up to limit chunks ordered by ascending cosine distance
	// to the query vector. It returns an empty slice, never an error: an
	// empty store and a recoverable query failure both degrade to "nothing
	// found" (the failure is logged).
	Rank(ctx context.Context, queryVec []float32, limit int) []models.ScoredChunk

	Close()
}
