package ingestion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/core"
	"github.com/aufaim/docquery/internal/models"
)

const defaultFileBatchSize = 5

// Orchestrator drives one ingestion run: list files from a source, convert
// and chunk each one, embed the chunk texts, and upsert the results in
// batches of files.
type Orchestrator struct {
	sources   map[models.SourceType]core.DocumentSource
	converter core.DocumentConverter
	embedder  core.EmbeddingProvider
	store     core.ChunkStore
	chunker   *Chunker
	batchSize int
}

func NewOrchestrator(
	sources map[models.SourceType]core.DocumentSource,
	converter core.DocumentConverter,
	embedder core.EmbeddingProvider,
	store core.ChunkStore,
	chunker *Chunker,
	batchSize int,
) *Orchestrator {
	if batchSize < 1 {
		batchSize = defaultFileBatchSize
	}
	return &Orchestrator{
		sources:   sources,
		converter: converter,
		embedder:  embedder,
		store:     store,
		chunker:   chunker,
		batchSize: batchSize,
	}
}

// fileResult records, for one successfully processed file, how many chunks it
// produced; the count drives stale-row trimming after the batch is flushed.
type fileResult struct {
	docID      string
	sourceType models.SourceType
	chunkCount int
}

// Run executes one ingestion. Parameter validation and source listing
// failures abort the run; a failure on an individual file is logged, counted
// and skipped so the remaining files still go through.
func (o *Orchestrator) Run(ctx context.Context, params models.IngestParams) (*models.IngestReport, error) {
	location, err := params.Location()
	if err != nil {
		return nil, err
	}

	src, ok := o.sources[params.SourceType]
	if !ok {
		return nil, fmt.Errorf("source %q is not configured", params.SourceType)
	}

	files, err := src.List(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("list source: %w", err)
	}

	report := &models.IngestReport{FilesFound: len(files)}
	if len(files) == 0 {
		report.Message = "no files found at the requested location"
		return report, nil
	}

	var (
		pending []models.Chunk
		results []fileResult
	)

	flush := func() {
		flushOK := true
		if len(pending) > 0 {
			stored, err := o.store.Upsert(ctx, pending)
			report.ChunksStored += stored
			if err != nil {
				log.Error().Err(err).Int("chunks", len(pending)).Msg("batch upsert failed")
				flushOK = false
			}
		}
		if flushOK {
			for _, r := range results {
				if err := o.store.DeleteStale(ctx, r.docID, r.sourceType, r.chunkCount); err != nil {
					log.Warn().Err(err).Str("doc_id", r.docID).Msg("stale chunk trim failed")
				}
			}
		}
		pending = pending[:0]
		results = results[:0]
	}

	for i, file := range files {
		chunks, err := o.processFile(ctx, src, file, params.SourceType)
		if err != nil {
			log.Error().Err(err).Str("file", file.Name).Msg("file ingestion failed")
			report.FilesFailed++
		} else {
			report.FilesProcessed++
			pending = append(pending, chunks...)
			results = append(results, fileResult{
				docID:      file.ID,
				sourceType: params.SourceType,
				chunkCount: len(chunks),
			})
		}

		// Flush after every batchSize files regardless of how many
		// chunks accumulated, so one write failure loses at most one
		// batch of files.
		if (i+1)%o.batchSize == 0 || i == len(files)-1 {
			flush()
		}
	}

	report.Message = fmt.Sprintf("processed %d of %d files (%d failed), stored %d chunks",
		report.FilesProcessed, report.FilesFound, report.FilesFailed, report.ChunksStored)
	log.Info().
		Str("source", string(params.SourceType)).
		Int("found", report.FilesFound).
		Int("processed", report.FilesProcessed).
		Int("failed", report.FilesFailed).
		Int("chunks", report.ChunksStored).
		Msg("ingestion run finished")
	return report, nil
}

func (o *Orchestrator) processFile(
	ctx context.Context,
	src core.DocumentSource,
	file models.SourceFile,
	sourceType models.SourceType,
) ([]models.Chunk, error) {
	path, cleanup, err := src.Fetch(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer cleanup()

	doc, err := o.converter.Convert(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	drafts := o.chunker.Split(doc)
	if len(drafts) == 0 {
		log.Warn().Str("file", file.Name).Msg("document produced no chunks")
		return nil, nil
	}

	texts := make([]string, len(drafts))
	for i, d := range drafts {
		texts[i] = d.Text
	}
	vectors, err := o.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(drafts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(drafts))
	}

	chunks := make([]models.Chunk, len(drafts))
	for i, d := range drafts {
		chunks[i] = models.Chunk{
			DocID:       file.ID,
			DocName:     file.Name,
			ChunkIndex:  i,
			Text:        d.Text,
			Embedding:   vectors[i],
			Filename:    doc.Filename,
			PageNumbers: d.Pages,
			Title:       d.Title,
			SourceType:  sourceType,
		}
	}
	return chunks, nil
}
