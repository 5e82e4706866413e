package extraction

import (
	"context"
	"fmt"
	"sync"

	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/models"
)

// fakeStore is an in-memory Store with the same version-stamp semantics
// as the real adapter.
type fakeStore struct {
	mu    sync.Mutex
	files map[string]*models.FileRecord
	jobs  map[string]*models.ExtractionJob

	createErr error
	lookupErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files: map[string]*models.FileRecord{},
		jobs:  map[string]*models.ExtractionJob{},
	}
}

func (s *fakeStore) addFile(f *models.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.ID] = f
}

func (s *fakeStore) jobForFile(fileID string) *models.ExtractionJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.FileID == fileID {
			cp := *j
			return &cp
		}
	}
	return nil
}

func (s *fakeStore) jobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *fakeStore) GetFileByID(ctx context.Context, id string) (*models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	f, ok := s.files[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *fakeStore) FindJobByFileID(ctx context.Context, fileID string) (*models.ExtractionJob, error) {
	return s.jobForFile(fileID), nil
}

func (s *fakeStore) GetJobByID(ctx context.Context, id string) (*models.ExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (s *fakeStore) CreateJob(ctx context.Context, job *models.ExtractionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	job.Version = 1
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *fakeStore) ResetJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	j.Status = models.JobStatusProcessing
	j.Text = ""
	j.Confidence = 0
	j.PageCount = 0
	j.ProcessingTimeMs = 0
	j.Error = ""
	j.Version++
	cp := *j
	return &cp, nil
}

func (s *fakeStore) UpdateJobResult(ctx context.Context, id string, version int, upd *models.JobUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.Version != version {
		return core.ErrStaleJob
	}
	j.Status = upd.Status
	j.Text = upd.Text
	j.Confidence = upd.Confidence
	j.PageCount = upd.PageCount
	j.ProcessingTimeMs = upd.ProcessingTimeMs
	j.Error = upd.Error
	j.Metadata = upd.Metadata
	return nil
}

// fakeFetcher serves bytes by bucket/key.
type fakeFetcher struct {
	data map[string][]byte
	err  error
}

func (f *fakeFetcher) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.data[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s/%s", bucket, key)
	}
	return b, nil
}

// fakeStrategy returns a canned result or error.
type fakeStrategy struct {
	name string
	res  *Result
	err  error
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Extract(ctx context.Context, data []byte) (*Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}
