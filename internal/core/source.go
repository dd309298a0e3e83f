package core

import (
	"context"

	"github.com/aufaim/docquery/internal/models"
)

// DocumentSource enumerates and fetches candidate files from one ingestion
// origin (local directory, Drive folder, S3 prefix).
//
// List returns immediate children only: sub-folders are skipped, never
// descended into. Fetch materialises a file on the local filesystem and
// returns a cleanup func that removes any temporary artifact; cleanup is
// never nil and is safe to call unconditionally.
type DocumentSource interface {
	List(ctx context.Context, location string) ([]models.SourceFile, error)
	Fetch(ctx context.Context, file models.SourceFile) (path string, cleanup func(), err error)
}
