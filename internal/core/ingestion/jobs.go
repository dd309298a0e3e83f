package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/aufaim/docquery/internal/models"
)

// ErrSourceBusy means an ingestion run for the same source type is already
// queued or running.
var ErrSourceBusy = errors.New("an ingestion run for this source is already in progress")

// ErrJobNotFound means no job with the given id exists.
var ErrJobNotFound = errors.New("job not found")

const jobQueueSize = 64

// Manager runs ingestions in the background. At most one run per source type
// is admitted at a time; a second submission for a busy source is rejected
// rather than queued behind the first.
type Manager struct {
	orch *Orchestrator

	mu   sync.RWMutex
	jobs map[string]*models.IngestJob

	queue chan string
	sems  map[models.SourceType]*semaphore.Weighted
}

func NewManager(orch *Orchestrator) *Manager {
	sems := map[models.SourceType]*semaphore.Weighted{
		models.SourceGoogleDrive: semaphore.NewWeighted(1),
		models.SourceLocal:       semaphore.NewWeighted(1),
		models.SourceS3:          semaphore.NewWeighted(1),
	}
	return &Manager{
		orch:  orch,
		jobs:  make(map[string]*models.IngestJob),
		queue: make(chan string, jobQueueSize),
		sems:  sems,
	}
}

// Start launches the worker that drains the queue. It returns immediately;
// the worker stops when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-m.queue:
				m.run(ctx, id)
			}
		}
	}()
}

// Submit validates the parameters, claims the source, and queues a job.
// Validation failures surface immediately so the caller can map them to a
// client error instead of discovering them in the job report.
func (m *Manager) Submit(params models.IngestParams) (*models.IngestJob, error) {
	if _, err := params.Location(); err != nil {
		return nil, err
	}

	sem := m.sems[params.SourceType]
	if !sem.TryAcquire(1) {
		return nil, ErrSourceBusy
	}

	job := &models.IngestJob{
		ID:        uuid.NewString(),
		Status:    models.JobQueued,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	// Snapshot before enqueueing; the worker may start mutating the job as
	// soon as it is on the queue.
	snapshot := copyJob(job)

	select {
	case m.queue <- job.ID:
	default:
		sem.Release(1)
		m.mu.Lock()
		delete(m.jobs, job.ID)
		m.mu.Unlock()
		return nil, errors.New("job queue is full")
	}

	log.Info().Str("job_id", job.ID).Str("source", string(params.SourceType)).Msg("ingestion job queued")
	return snapshot, nil
}

// Get returns a snapshot of the job with the given id.
func (m *Manager) Get(id string) (*models.IngestJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return copyJob(job), nil
}

func (m *Manager) run(ctx context.Context, id string) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	params := job.Params
	now := time.Now().UTC()
	job.Status = models.JobRunning
	job.StartedAt = &now
	m.mu.Unlock()

	defer m.sems[params.SourceType].Release(1)

	report, err := m.orch.Run(ctx, params)

	m.mu.Lock()
	defer m.mu.Unlock()
	done := time.Now().UTC()
	job.FinishedAt = &done
	if err != nil {
		job.Status = models.JobFailed
		job.Error = err.Error()
		log.Error().Err(err).Str("job_id", id).Msg("ingestion job failed")
		return
	}
	job.Status = models.JobSucceeded
	job.Report = report
}

func copyJob(job *models.IngestJob) *models.IngestJob {
	out := *job
	if job.Report != nil {
		r := *job.Report
		out.Report = &r
	}
	return &out
}
