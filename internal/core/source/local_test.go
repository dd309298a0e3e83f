package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aufaim/docquery/internal/models"
)

type stubConverter struct{}

func (stubConverter) Convert(ctx context.Context, path string) (*models.ConvertedDocument, error) {
	return nil, nil
}

func (stubConverter) Supports(filename string) bool {
	return strings.HasSuffix(filename, ".md") || strings.HasSuffix(filename, ".pdf")
}

func TestLocalSourceList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte("# hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte{1}, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "deep.md"), []byte("x"), 0o644))

	src := NewLocalSource(stubConverter{})
	files, err := src.List(context.Background(), dir)
	require.NoError(t, err)

	// Unsupported files and subdirectories are excluded; listing does not
	// recurse.
	require.Len(t, files, 1)
	assert.Equal(t, "guide.md", files[0].Name)
	assert.Equal(t, filepath.Join(dir, "guide.md"), files[0].ID)
}

func TestLocalSourceListMissingDir(t *testing.T) {
	src := NewLocalSource(stubConverter{})
	_, err := src.List(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLocalSourceListFileNotDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	src := NewLocalSource(stubConverter{})
	_, err := src.List(context.Background(), file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestLocalSourceFetchIdentity(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	src := NewLocalSource(stubConverter{})
	path, cleanup, err := src.Fetch(context.Background(), models.SourceFile{ID: file, Name: "a.md"})
	require.NoError(t, err)
	assert.Equal(t, file, path)

	// Cleanup must never delete the caller's file.
	cleanup()
	_, err = os.Stat(file)
	assert.NoError(t, err)
}

func TestLocalSourceFetchMissing(t *testing.T) {
	src := NewLocalSource(stubConverter{})
	_, _, err := src.Fetch(context.Background(), models.SourceFile{ID: "/nonexistent/a.md", Name: "a.md"})
	assert.Error(t, err)
}
