package core

import (
	"context"

	"github.com/aufaim/docquery/internal/models"
)

// DocumentConverter turns a file on disk into a structured document with
// page/heading-tagged content items. Implementations choose a parsing
// strategy from the file extension or content type.
type DocumentConverter interface {
	Convert(ctx context.Context, path string) (*models.ConvertedDocument, error)

	// Supports reports whether the converter can handle the named file.
	// Sources use it to filter listings up front.
	Supports(filename string) bool
}
