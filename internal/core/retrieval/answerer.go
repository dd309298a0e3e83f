package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/core"
	"github.com/aufaim/docquery/internal/models"
)

const (
	defaultResultCount = 5
	maxResultCount     = 20

	noContextFallback = "I couldn't find any relevant information in the ingested documents to answer your question."

	systemPrompt = `You are a helpful assistant that answers questions strictly from the provided document excerpts.
Rules:
- Use only the excerpts below. Do not add outside knowledge.
- If the excerpts do not contain the answer, say you could not find it in the documents.
- Cite the source line of each excerpt you rely on.`
)

// Answerer runs the query path: embed the question, rank stored chunks, and
// generate a grounded answer over the assembled context.
type Answerer struct {
	embedder core.EmbeddingProvider
	store    core.ChunkStore
	llm      core.LLMProvider
}

func NewAnswerer(embedder core.EmbeddingProvider, store core.ChunkStore, llm core.LLMProvider) *Answerer {
	return &Answerer{embedder: embedder, store: store, llm: llm}
}

// Answer always returns a string the caller can show to the user. Failures on
// any stage degrade to an explanatory message instead of an error.
func (a *Answerer) Answer(ctx context.Context, question string, limit int) string {
	if limit <= 0 {
		limit = defaultResultCount
	} else if limit > maxResultCount {
		limit = maxResultCount
	}

	vectors, err := a.embedder.EmbedTexts(ctx, []string{question})
	if err == nil && len(vectors) != 1 {
		err = fmt.Errorf("expected 1 vector, got %d", len(vectors))
	}
	if err != nil {
		log.Error().Err(err).Msg("question embedding failed")
		return fmt.Sprintf("I couldn't process your question right now (embedding failed: %v). Please try again.", err)
	}

	scored := a.store.Rank(ctx, vectors[0], limit)
	if len(scored) == 0 {
		return noContextFallback
	}

	contextBlock := buildContext(scored)
	userPrompt := fmt.Sprintf("Document excerpts:\n\n%s\n\nQuestion: %s", contextBlock, question)

	answer, err := a.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Error().Err(err).Msg("answer generation failed")
		return fmt.Sprintf("I found relevant documents but couldn't generate an answer (generation failed: %v). Please try again.", err)
	}
	return answer
}

// buildContext assembles the ranked chunks into one prompt block, most
// similar first, each prefixed with its source line.
func buildContext(scored []models.ScoredChunk) string {
	blocks := make([]string, len(scored))
	for i, sc := range scored {
		blocks[i] = sourceLine(sc.Chunk) + "\n" + sc.Text
	}
	return strings.Join(blocks, "\n---\n")
}

// sourceLine renders a chunk's provenance, e.g.
// "Document: 'Guide.pdf' (local) | Pages: 3, 4 | Section: 'Intro'".
// Absent parts are omitted rather than rendered empty.
func sourceLine(ch models.Chunk) string {
	parts := []string{
		fmt.Sprintf("Document: '%s' (%s)", ch.DocName, ch.SourceType),
	}
	if len(ch.PageNumbers) > 0 {
		nums := make([]string, len(ch.PageNumbers))
		for i, p := range ch.PageNumbers {
			nums[i] = fmt.Sprintf("%d", p)
		}
		parts = append(parts, "Pages: "+strings.Join(nums, ", "))
	}
	if ch.Title != "" {
		parts = append(parts, fmt.Sprintf("Section: '%s'", ch.Title))
	}
	return strings.Join(parts, " | ")
}
