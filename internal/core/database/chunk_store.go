package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/models"
)

const upsertChunkSQL = `
	INSERT INTO chunks
		(id, doc_id, doc_name, chunk_index, text, embedding, filename, page_numbers, title, source_type)
	VALUES
		($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), $10)
	ON CONFLICT (doc_id, chunk_index, source_type) DO UPDATE SET
		doc_name     = EXCLUDED.doc_name,
		text         = EXCLUDED.text,
		embedding    = EXCLUDED.embedding,
		filename     = EXCLUDED.filename,
		page_numbers = EXCLUDED.page_numbers,
		title        = EXCLUDED.title,
		updated_at   = now()
`

// Upsert writes all chunks in one batched round trip. Conflicts on the
// natural key overwrite the mutable columns; the key itself never changes.
func (s *Store) Upsert(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range chunks {
		ch := &chunks[i]
		batch.Queue(upsertChunkSQL,
			uuid.NewString(),
			ch.DocID,
			ch.DocName,
			ch.ChunkIndex,
			ch.Text,
			pgvector.NewVector(ch.Embedding),
			ch.Filename,
			ch.PageNumbers,
			ch.Title,
			string(ch.SourceType),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	stored := 0
	for range chunks {
		if _, err := br.Exec(); err != nil {
			log.Error().Err(err).Int("stored", stored).Msg("chunk upsert failed")
			return stored, fmt.Errorf("upsert chunks: %w", err)
		}
		stored++
	}
	return stored, nil
}

// DeleteStale trims rows left over when a document re-chunks into fewer
// chunks than a previous ingestion produced.
func (s *Store) DeleteStale(ctx context.Context, docID string, sourceType models.SourceType, keep int) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM chunks WHERE doc_id = $1 AND source_type = $2 AND chunk_index >= $3`,
		docID, string(sourceType), keep)
	if err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}
	return nil
}

const rankSQL = `
	SELECT doc_id, doc_name, chunk_index, text,
	       COALESCE(filename, ''), page_numbers, COALESCE(title, ''),
	       source_type, embedding <=> $1 AS distance
	FROM chunks
	ORDER BY embedding <=> $1
	LIMIT $2
`

// Rank returns up to limit chunks by ascending cosine distance to the query
// vector. Query failures are logged and degrade to an empty result so the
// caller can fall back gracefully.
func (s *Store) Rank(ctx context.Context, queryVec []float32, limit int) []models.ScoredChunk {
	if limit < 1 {
		limit = 1
	} else if limit > 20 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, rankSQL, pgvector.NewVector(queryVec), limit)
	if err != nil {
		log.Warn().Err(err).Msg("chunk ranking query failed")
		return nil
	}
	defer rows.Close()

	var out []models.ScoredChunk
	for rows.Next() {
		var (
			sc         models.ScoredChunk
			sourceType string
		)
		if err := rows.Scan(
			&sc.DocID, &sc.DocName, &sc.ChunkIndex, &sc.Text,
			&sc.Filename, &sc.PageNumbers, &sc.Title,
			&sourceType, &sc.Distance,
		); err != nil {
			log.Warn().Err(err).Msg("chunk ranking scan failed")
			return nil
		}
		sc.SourceType = models.SourceType(sourceType)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		log.Warn().Err(err).Msg("chunk ranking rows failed")
		return nil
	}
	return out
}
