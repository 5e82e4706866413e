package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/calebds/vaultive/internal/models"
)

// ErrFileNotFound is returned by Submit when the file id does not
// reference an existing file record.
var ErrFileNotFound = errors.New("file not found")

type task struct {
	jobID   string
	fileID  string
	version int
	lang    string
}

// Dispatcher is the synchronous entry point: it creates or reuses the
// job record for a file, returns the job id immediately, and hands the
// slow work to a bounded pool of workers draining the jobs channel.
type Dispatcher struct {
	store       Store
	manager     *Manager
	defaultLang string
	jobs        chan task
}

// NewDispatcher constructs the dispatcher with a bounded job queue.
func NewDispatcher(store Store, manager *Manager, defaultLang string, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if defaultLang == "" {
		defaultLang = "eng"
	}
	return &Dispatcher{
		store:       store,
		manager:     manager,
		defaultLang: defaultLang,
		jobs:        make(chan task, queueSize),
	}
}

// Start runs numWorkers goroutines draining the job queue. Workers exit
// when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Dispatcher: worker %d shutting down.", w)
					return
				case t := <-d.jobs:
					log.Printf("Dispatcher: worker %d processing job %s (file %s)", w, t.jobID, t.fileID)
					d.manager.Run(ctx, t.jobID, t.fileID, t.version, t.lang)
				}
			}
		}(w)
	}
}

// Submit creates or reuses the extraction job for fileID and enqueues
// the run. Reuse resets the record to processing and discards any prior
// result, which is the intended rerun behavior. The returned job id can
// be polled immediately.
//
// If the queue is full, Submit blocks until a worker frees space.
func (d *Dispatcher) Submit(ctx context.Context, fileID, lang string) (string, error) {
	if lang == "" {
		lang = d.defaultLang
	}

	file, err := d.store.GetFileByID(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("fetch file record: %w", err)
	}
	if file == nil {
		return "", ErrFileNotFound
	}

	job, err := d.store.FindJobByFileID(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("job lookup: %w", err)
	}

	if job != nil {
		job, err = d.store.ResetJob(ctx, job.ID)
		if err != nil {
			return "", fmt.Errorf("reset job: %w", err)
		}
	} else {
		job = &models.ExtractionJob{
			ID:       uuid.NewString(),
			FileID:   fileID,
			Status:   models.JobStatusProcessing,
			Metadata: map[string]any{"initializing": true},
		}
		if err := d.store.CreateJob(ctx, job); err != nil {
			return "", fmt.Errorf("create job: %w", err)
		}
	}

	d.jobs <- task{jobID: job.ID, fileID: fileID, version: job.Version, lang: lang}
	return job.ID, nil
}

// Status returns the job by its id, or (nil, nil) if unknown.
func (d *Dispatcher) Status(ctx context.Context, jobID string) (*models.ExtractionJob, error) {
	return d.store.GetJobByID(ctx, jobID)
}

// StatusByFile returns the current job for a file, or (nil, nil) if the
// file has never been submitted.
func (d *Dispatcher) StatusByFile(ctx context.Context, fileID string) (*models.ExtractionJob, error) {
	return d.store.FindJobByFileID(ctx, fileID)
}
