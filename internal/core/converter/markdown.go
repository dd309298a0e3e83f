package converter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aufaim/docquery/internal/models"
)

// convertMarkdown parses markdown (and plain text, which goldmark handles as
// bare paragraphs) into content items. Each heading updates the enclosing
// section title carried by the items that follow it. Drive exports Google
// Docs as markdown, so heading structure survives ingestion from Drive.
func convertMarkdown(path string) (*models.ConvertedDocument, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := &models.ConvertedDocument{Filename: filepath.Base(path)}
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	heading := ""
	appendItem := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		doc.Items = append(doc.Items, models.ContentItem{Text: t, Heading: heading})
	}

	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			heading = strings.TrimSpace(blockText(n, src))
			appendItem(heading)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock, *ast.CodeBlock, *ast.FencedCodeBlock:
			appendItem(blockText(n, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// blockText reassembles a block node's raw source lines.
func blockText(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return sb.String()
}
