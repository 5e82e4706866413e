package core

import (
	"context"
	"errors"
	"io"

	"github.com/calebds/vaultive/internal/models"
)

// ErrStaleJob is returned by UpdateJobResult when the job's version no
// longer matches, i.e. a newer submission reset the record while a
// background run was still in flight. The stale result is dropped.
var ErrStaleJob = errors.New("stale job version")

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
// Lookups return (nil, nil) when no row matches.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateDepartment(ctx context.Context, dep *models.Department) error
	ListDepartments(ctx context.Context) ([]models.Department, error)

	CreateFile(ctx context.Context, f *models.FileRecord) error
	GetFileByID(ctx context.Context, id string) (*models.FileRecord, error)
	ListFilesByOwner(ctx context.Context, ownerID string) ([]models.FileRecord, error)
	ListTrashedFiles(ctx context.Context, ownerID string) ([]models.FileRecord, error)
	SetFileTrashed(ctx context.Context, id string, trashed bool) error
	DeleteFile(ctx context.Context, id string) error

	CreateShare(ctx context.Context, grant *models.ShareGrant) error
	DeleteShare(ctx context.Context, fileID, granteeID string) error
	HasShare(ctx context.Context, fileID, granteeID string) (bool, error)
	ListSharedWithUser(ctx context.Context, granteeID string) ([]models.FileRecord, error)

	FindJobByFileID(ctx context.Context, fileID string) (*models.ExtractionJob, error)
	GetJobByID(ctx context.Context, id string) (*models.ExtractionJob, error)
	CreateJob(ctx context.Context, job *models.ExtractionJob) error
	ResetJob(ctx context.Context, id string) (*models.ExtractionJob, error)
	UpdateJobResult(ctx context.Context, id string, version int, upd *models.JobUpdate) error

	CountUsers(ctx context.Context) (int, error)
	CountFiles(ctx context.Context) (count int, totalBytes int64, err error)
	JobCountsByStatus(ctx context.Context) (map[string]int, error)
	UsageByDepartment(ctx context.Context) ([]models.DepartmentUsage, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
