package converter

import (
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"

	"github.com/aufaim/docquery/internal/models"
)

// convertDocconv handles formats without a native strategy (docx, html, rtf,
// odt...). docconv yields a flat text body, so items carry neither page
// numbers nor headings; paragraphs are split on blank lines.
func convertDocconv(path string) (*models.ConvertedDocument, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("docconv %s: %w", filepath.Base(path), err)
	}

	doc := &models.ConvertedDocument{Filename: filepath.Base(path)}
	for _, para := range strings.Split(res.Body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		doc.Items = append(doc.Items, models.ContentItem{Text: para})
	}
	return doc, nil
}
