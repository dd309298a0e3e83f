package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/aufaim/docquery/internal/core"
	"github.com/aufaim/docquery/internal/models"
)

const driveFolderMime = "application/vnd.google-apps.folder"

// Google Workspace files have no binary body and must be exported. Everything
// is exported to markdown so the chunker sees headings.
var driveExportMimes = map[string]string{
	"application/vnd.google-apps.document":     "text/markdown",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
}

// DriveSource lists and downloads files from a Google Drive folder using a
// service account credentials file.
type DriveSource struct {
	svc       *drive.Service
	converter core.DocumentConverter
}

func NewDriveSource(ctx context.Context, credentialsFile string, converter core.DocumentConverter) (*DriveSource, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("drive credentials file: %w", err)
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveSource{svc: svc, converter: converter}, nil
}

// ingestible reports whether a listed Drive file is worth fetching: either a
// Workspace-native file with an export mapping, or a binary whose name the
// converter can handle. Folders and unsupported media are skipped up front so
// they never download only to fail conversion.
func (s *DriveSource) ingestible(mimeType, name string) bool {
	if mimeType == driveFolderMime {
		return false
	}
	if _, ok := driveExportMimes[mimeType]; ok {
		return true
	}
	return s.converter.Supports(name)
}

// List returns the non-folder files directly inside the folder identified by
// location. Pagination is followed to the end.
func (s *DriveSource) List(ctx context.Context, location string) ([]models.SourceFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", location)

	var files []models.SourceFile
	pageToken := ""
	for {
		call := s.svc.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder %q: %w", location, err)
		}

		for _, f := range res.Files {
			if !s.ingestible(f.MimeType, f.Name) {
				log.Debug().Str("file", f.Name).Str("mime", f.MimeType).
					Msg("skipping unsupported drive file")
				continue
			}
			files = append(files, models.SourceFile{
				ID:       f.Id,
				Name:     f.Name,
				MimeType: f.MimeType,
			})
		}

		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return files, nil
}

// Fetch downloads the file body to a temp file and returns its path together
// with a cleanup that removes it. Workspace-native files are exported instead
// of downloaded, with the file name adjusted so the converter can dispatch on
// the extension.
func (s *DriveSource) Fetch(ctx context.Context, file models.SourceFile) (string, func(), error) {
	var (
		body io.ReadCloser
		name = file.Name
	)

	if exportMime, ok := driveExportMimes[file.MimeType]; ok {
		res, err := s.svc.Files.Export(file.ID, exportMime).Context(ctx).Download()
		if err != nil {
			return "", func() {}, fmt.Errorf("export drive file %q: %w", file.Name, err)
		}
		body = res.Body
		name += exportExtension(exportMime)
	} else {
		res, err := s.svc.Files.Get(file.ID).Context(ctx).Download()
		if err != nil {
			return "", func() {}, fmt.Errorf("download drive file %q: %w", file.Name, err)
		}
		body = res.Body
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "docquery-drive-*"+sanitizeExt(name))
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", tmp.Name()).Msg("temp file cleanup failed")
		}
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write drive file %q: %w", file.Name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

func exportExtension(exportMime string) string {
	switch exportMime {
	case "text/markdown":
		return ".md"
	case "text/csv":
		return ".csv"
	default:
		return ".txt"
	}
}

// sanitizeExt keeps only the extension of name, since os.CreateTemp rejects
// path separators in its pattern.
func sanitizeExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

var _ core.DocumentSource = (*DriveSource)(nil)
