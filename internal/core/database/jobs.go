package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/models"
)

// Job store adapter. Owns query shaping, timestamp maintenance and
// JSONB metadata encoding; no job lifecycle logic lives here.

const jobColumns = `
	id, file_id, status, text, confidence, page_count,
	processing_time_ms, error, metadata, version, created_at, updated_at
`

func (c *DatabaseClient) FindJobByFileID(ctx context.Context, fileID string) (*models.ExtractionJob, error) {
	q := `SELECT ` + jobColumns + ` FROM extraction_jobs WHERE file_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanJob(c.db.QueryRowContext(ctx, q, fileID))
}

func (c *DatabaseClient) GetJobByID(ctx context.Context, id string) (*models.ExtractionJob, error) {
	q := `SELECT ` + jobColumns + ` FROM extraction_jobs WHERE id = $1`
	return scanJob(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) CreateJob(ctx context.Context, job *models.ExtractionJob) error {
	if job == nil {
		return errors.New("nil job")
	}
	meta, err := encodeMetadata(job.Metadata)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO extraction_jobs
			(id, file_id, status, text, confidence, page_count,
			 processing_time_ms, error, metadata, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, now(), now())
	`
	_, err = c.db.ExecContext(ctx, q,
		job.ID, job.FileID, job.Status, job.Text, job.Confidence, job.PageCount,
		job.ProcessingTimeMs, job.Error, meta)
	if err != nil {
		return err
	}
	job.Version = 1
	return nil
}

// ResetJob flips an existing record back to processing and clears any
// prior result, bumping the version stamp. Returns the updated row.
func (c *DatabaseClient) ResetJob(ctx context.Context, id string) (*models.ExtractionJob, error) {
	const q = `
		UPDATE extraction_jobs
		SET status = 'processing', text = '', confidence = 0, page_count = 0,
		    processing_time_ms = 0, error = '', version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING ` + jobColumns
	job, err := scanJob(c.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	return job, nil
}

// UpdateJobResult lands the terminal write. The version guard makes it
// a compare-and-swap: if a resubmission bumped the version since this
// run started, zero rows match and core.ErrStaleJob is returned.
func (c *DatabaseClient) UpdateJobResult(ctx context.Context, id string, version int, upd *models.JobUpdate) error {
	if upd == nil {
		return errors.New("nil job update")
	}
	meta, err := encodeMetadata(upd.Metadata)
	if err != nil {
		return err
	}
	const q = `
		UPDATE extraction_jobs
		SET status = $3, text = $4, confidence = $5, page_count = $6,
		    processing_time_ms = $7, error = $8, metadata = $9, updated_at = now()
		WHERE id = $1 AND version = $2
	`
	res, err := c.db.ExecContext(ctx, q,
		id, version, upd.Status, upd.Text, upd.Confidence, upd.PageCount,
		upd.ProcessingTimeMs, upd.Error, meta)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrStaleJob
	}
	return nil
}

func scanJob(row *sql.Row) (*models.ExtractionJob, error) {
	var (
		j    models.ExtractionJob
		meta []byte
	)
	err := row.Scan(
		&j.ID, &j.FileID, &j.Status, &j.Text, &j.Confidence, &j.PageCount,
		&j.ProcessingTimeMs, &j.Error, &meta, &j.Version, &j.CreatedAt, &j.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &j.Metadata); err != nil {
			return nil, fmt.Errorf("decode job metadata: %w", err)
		}
	}
	return &j, nil
}

func encodeMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte(`{}`), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode job metadata: %w", err)
	}
	return b, nil
}
