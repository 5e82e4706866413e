package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calebds/vaultive/internal/models"
)

func seedJob(store *fakeStore, fileID string) *models.ExtractionJob {
	job := &models.ExtractionJob{
		ID:     "job-1",
		FileID: fileID,
		Status: models.JobStatusProcessing,
	}
	_ = store.CreateJob(context.Background(), job)
	return job
}

func TestManagerRun(t *testing.T) {
	ctx := context.Background()

	pdfFile := &models.FileRecord{
		ID: "file-1", ContentType: "application/pdf", Extension: "pdf",
		Bucket: "b", StorageKey: "k", SizeBytes: 1234,
	}

	t.Run("document scenario completes with parser page count", func(t *testing.T) {
		store := newFakeStore()
		store.addFile(pdfFile)
		job := seedJob(store, "file-1")
		obj := &fakeFetcher{data: map[string][]byte{"b/k": []byte("%PDF-1.4 ...")}}

		m := NewManager(store, obj, &Config{})
		m.strategyFor = func(kind Kind, lang string) Strategy {
			require.Equal(t, KindNativeDocument, kind)
			return &fakeStrategy{name: "pdf-native", res: &Result{Text: "...", Confidence: 95, PageCount: 3}}
		}

		m.Run(ctx, job.ID, "file-1", job.Version, "eng")

		got := store.jobForFile("file-1")
		require.Equal(t, models.JobStatusCompleted, got.Status)
		require.Equal(t, "...", got.Text)
		require.Equal(t, 95, got.Confidence)
		require.Equal(t, 3, got.PageCount)
		require.Empty(t, got.Error)
		require.Equal(t, "pdf-native", got.Metadata["strategy"])
		require.Equal(t, "pdf", got.Metadata["extension"])
	})

	t.Run("unsupported type fails with exact message", func(t *testing.T) {
		store := newFakeStore()
		store.addFile(&models.FileRecord{
			ID: "file-2", ContentType: "video", Extension: "mp4",
			Bucket: "b", StorageKey: "k2",
		})
		job := &models.ExtractionJob{ID: "job-2", FileID: "file-2", Status: models.JobStatusProcessing}
		require.NoError(t, store.CreateJob(ctx, job))

		m := NewManager(store, &fakeFetcher{}, &Config{})
		m.Run(ctx, job.ID, "file-2", job.Version, "eng")

		got := store.jobForFile("file-2")
		require.Equal(t, models.JobStatusFailed, got.Status)
		require.Equal(t, "Unsupported file type for OCR: video", got.Error)
		require.Equal(t, 0, got.Confidence)
		require.Contains(t, got.Text, "OCR processing failed:")
		require.Contains(t, got.Text, "Unsupported file type for OCR: video")
	})

	t.Run("strategy failure is captured into the record", func(t *testing.T) {
		store := newFakeStore()
		store.addFile(pdfFile)
		job := seedJob(store, "file-1")
		obj := &fakeFetcher{data: map[string][]byte{"b/k": []byte("junk")}}

		m := NewManager(store, obj, &Config{})
		m.strategyFor = func(kind Kind, lang string) Strategy {
			return &fakeStrategy{name: "pdf-native", err: errors.New("pdf text extraction failed: bad xref")}
		}

		m.Run(ctx, job.ID, "file-1", job.Version, "eng")

		got := store.jobForFile("file-1")
		require.Equal(t, models.JobStatusFailed, got.Status)
		require.Equal(t, 0, got.Confidence)
		require.Equal(t, "OCR processing failed: pdf text extraction failed: bad xref", got.Text)
		require.Equal(t, "pdf text extraction failed: bad xref", got.Error)
	})

	t.Run("missing file record fails the job", func(t *testing.T) {
		store := newFakeStore()
		job := seedJob(store, "ghost")

		m := NewManager(store, &fakeFetcher{}, &Config{})
		m.Run(ctx, job.ID, "ghost", job.Version, "eng")

		got := store.jobForFile("ghost")
		require.Equal(t, models.JobStatusFailed, got.Status)
		require.Contains(t, got.Error, "file not found: ghost")
	})

	t.Run("byte fetch failure fails the job", func(t *testing.T) {
		store := newFakeStore()
		store.addFile(pdfFile)
		job := seedJob(store, "file-1")

		m := NewManager(store, &fakeFetcher{err: errors.New("connection reset")}, &Config{})
		m.strategyFor = func(kind Kind, lang string) Strategy {
			return &fakeStrategy{name: "pdf-native"}
		}
		m.Run(ctx, job.ID, "file-1", job.Version, "eng")

		got := store.jobForFile("file-1")
		require.Equal(t, models.JobStatusFailed, got.Status)
		require.Contains(t, got.Error, "download file bytes")
	})

	t.Run("stale run does not overwrite a newer submission", func(t *testing.T) {
		store := newFakeStore()
		store.addFile(pdfFile)
		job := seedJob(store, "file-1")
		staleVersion := job.Version

		// A second submission resets the record and bumps the version.
		_, err := store.ResetJob(ctx, job.ID)
		require.NoError(t, err)

		obj := &fakeFetcher{data: map[string][]byte{"b/k": []byte("x")}}
		m := NewManager(store, obj, &Config{})
		m.strategyFor = func(kind Kind, lang string) Strategy {
			return &fakeStrategy{name: "pdf-native", res: &Result{Text: "old result", Confidence: 95, PageCount: 1}}
		}

		m.Run(ctx, job.ID, "file-1", staleVersion, "eng")

		got := store.jobForFile("file-1")
		require.Equal(t, models.JobStatusProcessing, got.Status, "stale terminal write must be dropped")
		require.Empty(t, got.Text)
	})
}
