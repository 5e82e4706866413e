package models

import (
	"time"
)

// User represents an authenticated user of the vault.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	DepartmentID string    `db:"department_id" json:"department_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Department groups users and files for admin reporting.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FileRecord represents a stored file. Raw bytes live in object storage
// under Bucket/StorageKey; everything else is metadata.
type FileRecord struct {
	ID           string     `db:"id" json:"id"`
	OwnerID      string     `db:"owner_id" json:"owner_id"`
	DepartmentID string     `db:"department_id" json:"department_id,omitempty"`
	FileName     string     `db:"file_name" json:"file_name"`
	Extension    string     `db:"extension" json:"extension"`
	ContentType  string     `db:"content_type" json:"content_type"`
	SizeBytes    int64      `db:"size_bytes" json:"size_bytes"`
	Bucket       string     `db:"bucket" json:"-"`
	StorageKey   string     `db:"storage_key" json:"-"`
	Trashed      bool       `db:"trashed" json:"trashed"`
	TrashedAt    *time.Time `db:"trashed_at" json:"trashed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ShareGrant gives a grantee read access to someone else's file.
type ShareGrant struct {
	ID        string    `db:"id" json:"id"`
	FileID    string    `db:"file_id" json:"file_id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	GranteeID string    `db:"grantee_id" json:"grantee_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Extraction job statuses. There is no queued state: a job is
// processing from the moment it is created.
const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ExtractionJob tracks one text-extraction attempt for a file. At most
// one record exists per file; resubmission resets the record in place
// and bumps Version so a stale background run cannot overwrite the
// newer result.
type ExtractionJob struct {
	ID               string         `db:"id" json:"id"`
	FileID           string         `db:"file_id" json:"file_id"`
	Status           string         `db:"status" json:"status"` // processing | completed | failed
	Text             string         `db:"text" json:"text"`
	Confidence       int            `db:"confidence" json:"confidence"` // 0-100
	PageCount        int            `db:"page_count" json:"page_count"`
	ProcessingTimeMs int64          `db:"processing_time_ms" json:"processing_time_ms"`
	Error            string         `db:"error" json:"error,omitempty"`
	Metadata         map[string]any `db:"metadata" json:"metadata,omitempty"`
	Version          int            `db:"version" json:"-"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// JobUpdate carries the terminal write for a job.
type JobUpdate struct {
	Status           string
	Text             string
	Confidence       int
	PageCount        int
	ProcessingTimeMs int64
	Error            string
	Metadata         map[string]any
}

// DepartmentUsage is one row of the admin usage report.
type DepartmentUsage struct {
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	FileCount      int    `json:"file_count"`
	TotalBytes     int64  `json:"total_bytes"`
}
