package source

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/core"
	"github.com/aufaim/docquery/internal/models"
)

// LocalSource reads documents from a directory on the server's filesystem.
// Listing is non-recursive; subdirectories are skipped.
type LocalSource struct {
	converter core.DocumentConverter
}

func NewLocalSource(converter core.DocumentConverter) *LocalSource {
	return &LocalSource{converter: converter}
}

// List returns the supported files directly inside location. A missing or
// unreadable directory is an error so the caller can fail the run up front.
func (s *LocalSource) List(ctx context.Context, location string) ([]models.SourceFile, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("local path %q: %w", location, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local path %q is not a directory", location)
	}

	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("read local path %q: %w", location, err)
	}

	var files []models.SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !s.converter.Supports(name) {
			log.Debug().Str("file", name).Msg("skipping unsupported local file")
			continue
		}
		files = append(files, models.SourceFile{
			ID:       filepath.Join(location, name),
			Name:     name,
			MimeType: mime.TypeByExtension(filepath.Ext(name)),
		})
	}
	return files, nil
}

// Fetch for a local file is the identity: the listed path is already on disk
// and must not be deleted after processing.
func (s *LocalSource) Fetch(ctx context.Context, file models.SourceFile) (string, func(), error) {
	if _, err := os.Stat(file.ID); err != nil {
		return "", func() {}, fmt.Errorf("local file %q: %w", file.ID, err)
	}
	return file.ID, func() {}, nil
}

var _ core.DocumentSource = (*LocalSource)(nil)
