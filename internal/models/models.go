package models

import (
	"errors"
	"time"
)

// SourceType identifies which ingestion origin produced a chunk.
type SourceType string

const (
	SourceGoogleDrive SourceType = "google_drive"
	SourceLocal       SourceType = "local"
	SourceS3          SourceType = "s3"
)

// Valid reports whether the source type is one we know how to ingest.
func (s SourceType) Valid() bool {
	switch s {
	case SourceGoogleDrive, SourceLocal, SourceS3:
		return true
	}
	return false
}

// Chunk is the atomic retrievable unit: a bounded slice of a document's text
// plus its embedding and provenance metadata.
//
// (DocID, ChunkIndex, SourceType) is the natural key; re-ingesting the same
// document overwrites rows with the same key.
type Chunk struct {
	DocID       string     `json:"doc_id"`
	DocName     string     `json:"doc_name"`
	ChunkIndex  int        `json:"chunk_index"`
	Text        string     `json:"text"`
	Embedding   []float32  `json:"-"`
	Filename    string     `json:"filename,omitempty"`
	PageNumbers []int32    `json:"page_numbers,omitempty"`
	Title       string     `json:"title,omitempty"`
	SourceType  SourceType `json:"source_type"`
}

// ScoredChunk is a chunk returned from nearest-neighbor ranking together with
// its distance to the query vector (smaller = more similar).
type ScoredChunk struct {
	Chunk
	Distance float64 `json:"distance"`
}

// SourceFile is one candidate file enumerated from a document source.
type SourceFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// ContentItem is one page- or heading-tagged fragment of a converted document.
// Page is 1-based; 0 means the source format has no page notion. Heading is
// the nearest enclosing heading, empty when unavailable.
type ContentItem struct {
	Text    string
	Page    int
	Heading string
}

// ConvertedDocument is the converter's structured output for one file.
type ConvertedDocument struct {
	Filename string
	Items    []ContentItem
}

// JobStatus is the lifecycle state of a background ingestion run.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// IngestParams selects what to ingest.
type IngestParams struct {
	SourceType SourceType `json:"source_type"`
	FolderID   string     `json:"folder_id,omitempty"`
	LocalPath  string     `json:"local_path,omitempty"`
}

var (
	ErrUnknownSourceType = errors.New("unknown source type")
	ErrMissingFolderID   = errors.New("folder_id is required for google_drive ingestion")
	ErrMissingLocalPath  = errors.New("local_path is required for local ingestion")
)

// Location validates the parameters and returns the source-specific location
// (folder id, directory path, or object prefix). Validation happens before
// any processing starts.
func (p IngestParams) Location() (string, error) {
	switch p.SourceType {
	case SourceGoogleDrive:
		if p.FolderID == "" {
			return "", ErrMissingFolderID
		}
		return p.FolderID, nil
	case SourceLocal:
		if p.LocalPath == "" {
			return "", ErrMissingLocalPath
		}
		return p.LocalPath, nil
	case SourceS3:
		// An empty prefix means the bucket root.
		return p.FolderID, nil
	default:
		return "", ErrUnknownSourceType
	}
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	FilesFound     int    `json:"files_found"`
	FilesProcessed int    `json:"files_processed"`
	FilesFailed    int    `json:"files_failed"`
	ChunksStored   int    `json:"chunks_stored"`
	Message        string `json:"message"`
}

// IngestJob is the status handle for a background ingestion run.
type IngestJob struct {
	ID         string        `json:"job_id"`
	Status     JobStatus     `json:"status"`
	Params     IngestParams  `json:"params"`
	Report     *IngestReport `json:"report,omitempty"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}
