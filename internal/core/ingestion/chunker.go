package ingestion

import (
	"sort"
	"strings"

	"github.com/aufaim/docquery/internal/core/tokenizer"
	"github.com/aufaim/docquery/internal/models"
)

// Draft is a chunk before embedding: the merged text plus the metadata
// accumulated from the content items that produced it.
type Draft struct {
	Text  string
	Pages []int32
	Title string
}

// Chunker merges converted content items into drafts that fit a token budget.
// The effective budget is maxTokens minus a safety margin, leaving headroom
// for the metadata the embedding call carries alongside the text.
type Chunker struct {
	tok       tokenizer.Counter
	maxTokens int
	margin    int
}

func NewChunker(tok tokenizer.Counter, maxTokens, margin int) *Chunker {
	return &Chunker{tok: tok, maxTokens: maxTokens, margin: margin}
}

func (c *Chunker) budget() int {
	b := c.maxTokens - c.margin
	if b < 1 {
		b = 1
	}
	return b
}

// Split turns a converted document into ordered drafts. Items under the same
// heading merge until the budget would be exceeded; a heading change always
// starts a new draft. Oversized items are split on paragraph, then sentence
// boundaries before being flushed.
func (c *Chunker) Split(doc *models.ConvertedDocument) []Draft {
	budget := c.budget()
	// Merged pieces are joined with a blank line; its tokens count against
	// the budget too, so the final chunk never exceeds it.
	sep := c.tok.Count("\n\n")

	var (
		drafts  []Draft
		cur     strings.Builder
		curTok  int
		pages   = map[int32]struct{}{}
		heading string
		title   string
	)

	flush := func() {
		text := strings.TrimSpace(cur.String())
		if text == "" {
			cur.Reset()
			curTok = 0
			pages = map[int32]struct{}{}
			return
		}
		drafts = append(drafts, Draft{
			Text:  text,
			Pages: sortedPages(pages),
			Title: title,
		})
		cur.Reset()
		curTok = 0
		pages = map[int32]struct{}{}
	}

	for _, item := range doc.Items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		if item.Heading != heading {
			flush()
			heading = item.Heading
		}

		for _, piece := range c.splitOversize(text, budget) {
			n := c.tok.Count(piece)
			if curTok > 0 && curTok+sep+n > budget {
				flush()
			}
			if curTok == 0 {
				title = item.Heading
			}
			if cur.Len() > 0 {
				cur.WriteString("\n\n")
				curTok += sep
			}
			cur.WriteString(piece)
			curTok += n
			if item.Page > 0 {
				pages[int32(item.Page)] = struct{}{}
			}
		}
	}
	flush()
	return drafts
}

// splitOversize breaks text into pieces that each fit the budget. It tries
// paragraphs first, then sentences, and as a last resort accumulates words.
func (c *Chunker) splitOversize(text string, budget int) []string {
	if c.tok.Count(text) <= budget {
		return []string{text}
	}

	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if c.tok.Count(para) <= budget {
			pieces = append(pieces, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if c.tok.Count(sent) <= budget {
				pieces = append(pieces, sent)
				continue
			}
			pieces = append(pieces, c.splitWords(sent, budget)...)
		}
	}
	return pieces
}

func (c *Chunker) splitWords(text string, budget int) []string {
	sep := c.tok.Count(" ")
	var (
		pieces []string
		cur    strings.Builder
		curTok int
	)
	flush := func() {
		if cur.Len() > 0 {
			pieces = append(pieces, cur.String())
			cur.Reset()
			curTok = 0
		}
	}
	for _, word := range strings.Fields(text) {
		n := c.tok.Count(word)
		if n > budget {
			// A single word over the budget cannot merge with anything;
			// break it apart so no piece escapes the limit.
			flush()
			pieces = append(pieces, c.splitRunes(word, budget)...)
			continue
		}
		if curTok > 0 && curTok+sep+n > budget {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
			curTok += sep
		}
		cur.WriteString(word)
		curTok += n
	}
	flush()
	return pieces
}

// splitRunes greedily accumulates runes into substrings that each fit the
// budget. Last resort for pathological single tokens.
func (c *Chunker) splitRunes(word string, budget int) []string {
	var (
		pieces []string
		cur    strings.Builder
	)
	for _, r := range word {
		cur.WriteRune(r)
		if c.tok.Count(cur.String()) > budget {
			s := cur.String()
			cut := s[:len(s)-len(string(r))]
			if cut != "" {
				pieces = append(pieces, cut)
			}
			cur.Reset()
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}

func splitSentences(text string) []string {
	var (
		out  []string
		last int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' {
			continue
		}
		if s := strings.TrimSpace(string(runes[last : i+1])); s != "" {
			out = append(out, s)
		}
		last = i + 1
	}
	if s := strings.TrimSpace(string(runes[last:])); s != "" {
		out = append(out, s)
	}
	return out
}

func sortedPages(set map[int32]struct{}) []int32 {
	if len(set) == 0 {
		return nil
	}
	pages := make([]int32, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })
	return pages
}
