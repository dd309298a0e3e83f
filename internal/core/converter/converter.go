package converter

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/aufaim/docquery/internal/core"
	"github.com/aufaim/docquery/internal/models"
)

// supportedExts are the file extensions the converter knows how to turn into
// structured text. Everything not handled natively falls through to docconv.
var supportedExts = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".docx":     true,
	".doc":      true,
	".odt":      true,
	".rtf":      true,
	".html":     true,
	".htm":      true,
}

// Converter dispatches a file to a format-specific extraction strategy and
// returns a document of page/heading-tagged content items.
type Converter struct{}

func New() *Converter {
	return &Converter{}
}

func (c *Converter) Supports(filename string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(filename))]
}

func (c *Converter) Convert(ctx context.Context, path string) (*models.ConvertedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return convertPDF(path)
	case ".md", ".markdown", ".txt", ".csv":
		return convertMarkdown(path)
	default:
		return convertDocconv(path)
	}
}

var _ core.DocumentConverter = (*Converter)(nil)
