package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aufaim/docquery/internal/models"
)

// wordCounter approximates tokens as whitespace-separated words, which keeps
// the budgets in these tests easy to reason about.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w"
	}
	return strings.Join(parts, " ")
}

func TestSplitSingleChunk(t *testing.T) {
	c := NewChunker(wordCounter{}, 100, 10)
	doc := &models.ConvertedDocument{
		Filename: "a.pdf",
		Items: []models.ContentItem{
			{Text: "alpha beta", Page: 2},
			{Text: "gamma delta", Page: 1},
			{Text: "epsilon", Page: 2},
		},
	}

	drafts := c.Split(doc)
	require.Len(t, drafts, 1)
	assert.Equal(t, "alpha beta\n\ngamma delta\n\nepsilon", drafts[0].Text)

	// Pages are deduplicated and ascending regardless of item order.
	assert.Equal(t, []int32{1, 2}, drafts[0].Pages)
	assert.Empty(t, drafts[0].Title)
}

func TestSplitRespectsBudget(t *testing.T) {
	// Budget is 10 - 2 = 8 words.
	c := NewChunker(wordCounter{}, 10, 2)
	doc := &models.ConvertedDocument{
		Items: []models.ContentItem{
			{Text: words(6), Page: 1},
			{Text: words(6), Page: 2},
		},
	}

	drafts := c.Split(doc)
	require.Len(t, drafts, 2)
	assert.Equal(t, []int32{1}, drafts[0].Pages)
	assert.Equal(t, []int32{2}, drafts[1].Pages)
}

func TestSplitOversizedItem(t *testing.T) {
	c := NewChunker(wordCounter{}, 6, 1)
	doc := &models.ConvertedDocument{
		Items: []models.ContentItem{
			{Text: words(12), Page: 1},
		},
	}

	drafts := c.Split(doc)
	require.NotEmpty(t, drafts)
	for _, d := range drafts {
		assert.LessOrEqual(t, len(strings.Fields(d.Text)), 5)
	}
}

func TestSplitHeadingBoundary(t *testing.T) {
	c := NewChunker(wordCounter{}, 100, 0)
	doc := &models.ConvertedDocument{
		Items: []models.ContentItem{
			{Text: "Intro", Heading: "Intro"},
			{Text: "welcome text", Heading: "Intro"},
			{Text: "Setup", Heading: "Setup"},
			{Text: "install steps", Heading: "Setup"},
		},
	}

	drafts := c.Split(doc)
	require.Len(t, drafts, 2)

	// A heading change starts a new chunk even when the budget has room,
	// and each chunk carries the heading it started under.
	assert.Equal(t, "Intro\n\nwelcome text", drafts[0].Text)
	assert.Equal(t, "Intro", drafts[0].Title)
	assert.Equal(t, "Setup\n\ninstall steps", drafts[1].Text)
	assert.Equal(t, "Setup", drafts[1].Title)
}

// runeCounter charges one token per rune, so the blank-line join between
// merged pieces has a visible cost.
type runeCounter struct{}

func (runeCounter) Count(text string) int {
	return len([]rune(text))
}

func TestSplitCountsJoinSeparator(t *testing.T) {
	// Two 6-token items fit a budget of 13 on their own, but merging them
	// adds a 2-token separator; the merged text would measure 14.
	c := NewChunker(runeCounter{}, 13, 0)
	doc := &models.ConvertedDocument{
		Items: []models.ContentItem{
			{Text: "aaaaaa"},
			{Text: "bbbbbb"},
		},
	}

	drafts := c.Split(doc)
	require.Len(t, drafts, 2)
	for _, d := range drafts {
		assert.LessOrEqual(t, runeCounter{}.Count(d.Text), 13)
	}
}

func TestSplitBreaksOversizedWord(t *testing.T) {
	// A single unbreakable token larger than the whole budget still may not
	// produce a chunk over the limit.
	c := NewChunker(runeCounter{}, 5, 0)
	doc := &models.ConvertedDocument{
		Items: []models.ContentItem{
			{Text: "abcdefghijkl"},
		},
	}

	drafts := c.Split(doc)
	require.NotEmpty(t, drafts)
	joined := ""
	for _, d := range drafts {
		assert.LessOrEqual(t, runeCounter{}.Count(d.Text), 5)
		joined += d.Text
	}
	assert.Equal(t, "abcdefghijkl", joined)
}

func TestSplitEmptyDocument(t *testing.T) {
	c := NewChunker(wordCounter{}, 100, 10)

	assert.Empty(t, c.Split(&models.ConvertedDocument{}))
	assert.Empty(t, c.Split(&models.ConvertedDocument{
		Items: []models.ContentItem{{Text: "   "}, {Text: "\n"}},
	}))
}

func TestSplitSentenceFallback(t *testing.T) {
	c := NewChunker(wordCounter{}, 5, 0)
	doc := &models.ConvertedDocument{
		Items: []models.ContentItem{
			{Text: "One two three. Four five six. Seven eight nine.", Page: 1},
		},
	}

	drafts := c.Split(doc)
	require.NotEmpty(t, drafts)
	for _, d := range drafts {
		assert.LessOrEqual(t, len(strings.Fields(d.Text)), 5)
	}
}
