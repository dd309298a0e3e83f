package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aufaim/docquery/internal/models"
)

func TestSubmitValidatesParams(t *testing.T) {
	m := NewManager(newTestOrchestrator(&fakeSource{}, &fakeConverter{}, &fakeEmbedder{}, &fakeStore{}))

	_, err := m.Submit(models.IngestParams{SourceType: models.SourceGoogleDrive})
	assert.ErrorIs(t, err, models.ErrMissingFolderID)

	_, err = m.Submit(models.IngestParams{SourceType: "ftp"})
	assert.ErrorIs(t, err, models.ErrUnknownSourceType)
}

func TestSubmitRejectsBusySource(t *testing.T) {
	// No worker is running, so the first job stays queued and holds the
	// source claim.
	m := NewManager(newTestOrchestrator(&fakeSource{}, &fakeConverter{}, &fakeEmbedder{}, &fakeStore{}))

	params := models.IngestParams{SourceType: models.SourceLocal, LocalPath: "/docs"}
	_, err := m.Submit(params)
	require.NoError(t, err)

	_, err = m.Submit(params)
	assert.ErrorIs(t, err, ErrSourceBusy)

	// A different source type is an independent claim.
	_, err = m.Submit(models.IngestParams{SourceType: models.SourceS3})
	assert.NoError(t, err)
}

func TestJobLifecycle(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(newTestOrchestrator(&fakeSource{files: testFiles(2)}, &fakeConverter{}, &fakeEmbedder{}, store))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	job, err := m.Submit(models.IngestParams{SourceType: models.SourceLocal, LocalPath: "/docs"})
	require.NoError(t, err)
	assert.Equal(t, models.JobQueued, job.Status)

	require.Eventually(t, func() bool {
		got, err := m.Get(job.ID)
		return err == nil && got.Status == models.JobSucceeded
	}, 5*time.Second, 10*time.Millisecond)

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Report)
	assert.Equal(t, 2, got.Report.FilesProcessed)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.FinishedAt)

	// The source is claimable again once the run finished.
	_, err = m.Submit(models.IngestParams{SourceType: models.SourceLocal, LocalPath: "/docs"})
	assert.NoError(t, err)
}

func TestJobFailureIsRecorded(t *testing.T) {
	m := NewManager(newTestOrchestrator(
		&fakeSource{listErr: errors.New("unreachable")},
		&fakeConverter{}, &fakeEmbedder{}, &fakeStore{},
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	job, err := m.Submit(models.IngestParams{SourceType: models.SourceLocal, LocalPath: "/docs"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := m.Get(job.ID)
		return err == nil && got.Status == models.JobFailed
	}, 5*time.Second, 10*time.Millisecond)

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Error, "unreachable")
	assert.Nil(t, got.Report)
}

func TestGetUnknownJob(t *testing.T) {
	m := NewManager(newTestOrchestrator(&fakeSource{}, &fakeConverter{}, &fakeEmbedder{}, &fakeStore{}))

	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
