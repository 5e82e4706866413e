package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/models"
)

// Store is the slice of persistence the pipeline needs: file metadata
// lookup plus the job record operations. *db.DatabaseClient satisfies it.
type Store interface {
	GetFileByID(ctx context.Context, id string) (*models.FileRecord, error)
	FindJobByFileID(ctx context.Context, fileID string) (*models.ExtractionJob, error)
	GetJobByID(ctx context.Context, id string) (*models.ExtractionJob, error)
	CreateJob(ctx context.Context, job *models.ExtractionJob) error
	ResetJob(ctx context.Context, id string) (*models.ExtractionJob, error)
	UpdateJobResult(ctx context.Context, id string, version int, upd *models.JobUpdate) error
}

// ObjectFetcher fetches the raw bytes of a stored file.
type ObjectFetcher interface {
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// Config tunes the pipeline.
//
// EngineBinary:  path or name of the tesseract executable.
// TempDir:       working dir for the image strategy's temp files ("" = os.TempDir()).
// DefaultLang:   language code used when a submission carries no hint.
// EngineTimeout: bound on one engine subprocess invocation.
type Config struct {
	EngineBinary  string
	TempDir       string
	DefaultLang   string
	EngineTimeout time.Duration
}

// Manager runs one extraction attempt end to end and resolves the job
// record to a terminal state. Every failure downstream of job creation
// is captured into the record; nothing escapes a worker goroutine.
type Manager struct {
	store Store
	obj   ObjectFetcher
	cfg   *Config

	// strategyFor is swappable in tests.
	strategyFor func(kind Kind, lang string) Strategy
}

func NewManager(store Store, obj ObjectFetcher, cfg *Config) *Manager {
	m := &Manager{store: store, obj: obj, cfg: cfg}
	m.strategyFor = m.defaultStrategy
	return m
}

func (m *Manager) defaultStrategy(kind Kind, lang string) Strategy {
	switch kind {
	case KindNativeDocument:
		return NewPDFStrategy()
	case KindImage:
		s := NewTesseractStrategy(m.cfg.EngineBinary, m.cfg.TempDir, lang)
		s.Timeout = m.cfg.EngineTimeout
		return s
	default:
		return nil
	}
}

// Run executes the extraction for one submission and lands the terminal
// write. version is the job's version stamp at submission time; the
// final write is dropped as stale if a newer submission bumped it.
func (m *Manager) Run(ctx context.Context, jobID, fileID string, version int, lang string) {
	start := time.Now()
	meta := map[string]any{}

	res, err := m.extract(ctx, fileID, lang, meta)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		log.Printf("extraction: job %s failed: %v", jobID, err)
		m.finish(ctx, fileID, version, &models.JobUpdate{
			Status:           models.JobStatusFailed,
			Text:             "OCR processing failed: " + err.Error(),
			Confidence:       0,
			Error:            err.Error(),
			ProcessingTimeMs: elapsed,
			Metadata:         meta,
		})
		return
	}

	m.finish(ctx, fileID, version, &models.JobUpdate{
		Status:           models.JobStatusCompleted,
		Text:             res.Text,
		Confidence:       res.Confidence,
		PageCount:        res.PageCount,
		ProcessingTimeMs: elapsed,
		Metadata:         meta,
	})
}

// extract fetches metadata and bytes, selects a strategy and runs it.
// meta is filled in as the run progresses so failure writes still carry
// whatever diagnostics were gathered.
func (m *Manager) extract(ctx context.Context, fileID, lang string, meta map[string]any) (*Result, error) {
	file, err := m.store.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("fetch file record: %w", err)
	}
	if file == nil {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	meta["extension"] = file.Extension
	meta["mime_type"] = file.ContentType
	meta["size_bytes"] = file.SizeBytes

	kind := Classify(file.ContentType, file.Extension)
	if kind == KindUnsupported {
		return nil, fmt.Errorf("Unsupported file type for OCR: %s", file.ContentType)
	}

	strat := m.strategyFor(kind, lang)
	if strat == nil {
		return nil, fmt.Errorf("no strategy for kind %d", kind)
	}
	meta["strategy"] = strat.Name()

	data, err := m.obj.GetFile(ctx, file.Bucket, file.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download file bytes: %w", err)
	}

	return strat.Extract(ctx, data)
}

// finish re-resolves the current job record for the file (a second
// submission may have replaced which record is current) and lands the
// terminal write. Failures here are logged best-effort; there is no
// further fallback.
func (m *Manager) finish(ctx context.Context, fileID string, version int, upd *models.JobUpdate) {
	job, err := m.store.FindJobByFileID(ctx, fileID)
	if err != nil {
		log.Printf("extraction: final write lookup failed for file %s: %v", fileID, err)
		return
	}
	if job == nil {
		log.Printf("extraction: no job record for file %s at final write", fileID)
		return
	}

	if err := m.store.UpdateJobResult(ctx, job.ID, version, upd); err != nil {
		if errors.Is(err, core.ErrStaleJob) {
			log.Printf("extraction: dropping stale result for job %s (file %s)", job.ID, fileID)
			return
		}
		log.Printf("extraction: final write failed for job %s: %v", job.ID, err)
	}
}
