package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/models"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrNotOwner     = errors.New("not the file owner")
	ErrNoAccess     = errors.New("no access to file")
)

type FileService struct {
	db      core.DbClient
	storage core.ObjectClient
	bucket  string
}

func NewFileService(db core.DbClient, storage core.ObjectClient, bucket string) *FileService {
	return &FileService{db: db, storage: storage, bucket: bucket}
}

// UploadAndCreate stores the bytes in object storage and creates the
// file record.
func (s *FileService) UploadAndCreate(ctx context.Context, ownerID, departmentID, filename, contentType string, data []byte) (*models.FileRecord, error) {
	fileID := uuid.NewString()
	key := s.objectKey(ownerID, fileID, filename)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.storage.UploadFile(ctx, s.bucket, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	f := &models.FileRecord{
		ID:           fileID,
		OwnerID:      ownerID,
		DepartmentID: departmentID,
		FileName:     filename,
		Extension:    strings.TrimPrefix(strings.ToLower(path.Ext(filename)), "."),
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Bucket:       s.bucket,
		StorageKey:   key,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.CreateFile(ctx, f); err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}
	return f, nil
}

// Get returns the record if userID is the owner or a grantee.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*models.FileRecord, error) {
	f, err := s.db.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFileNotFound
	}
	if f.OwnerID != userID {
		shared, err := s.db.HasShare(ctx, fileID, userID)
		if err != nil {
			return nil, err
		}
		if !shared {
			return nil, ErrNoAccess
		}
	}
	return f, nil
}

// Download fetches the raw bytes, subject to the same access rules as Get.
func (s *FileService) Download(ctx context.Context, userID, fileID string) (*models.FileRecord, []byte, error) {
	f, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.GetFile(ctx, f.Bucket, f.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}
	return f, data, nil
}

func (s *FileService) ListByOwner(ctx context.Context, ownerID string) ([]models.FileRecord, error) {
	return s.db.ListFilesByOwner(ctx, ownerID)
}

func (s *FileService) ListTrash(ctx context.Context, ownerID string) ([]models.FileRecord, error) {
	return s.db.ListTrashedFiles(ctx, ownerID)
}

func (s *FileService) ListSharedWith(ctx context.Context, userID string) ([]models.FileRecord, error) {
	return s.db.ListSharedWithUser(ctx, userID)
}

// Trash soft-deletes; Restore undoes it. Only the owner may do either.
func (s *FileService) Trash(ctx context.Context, userID, fileID string) error {
	return s.setTrashed(ctx, userID, fileID, true)
}

func (s *FileService) Restore(ctx context.Context, userID, fileID string) error {
	return s.setTrashed(ctx, userID, fileID, false)
}

func (s *FileService) setTrashed(ctx context.Context, userID, fileID string, trashed bool) error {
	f, err := s.requireOwner(ctx, userID, fileID)
	if err != nil {
		return err
	}
	return s.db.SetFileTrashed(ctx, f.ID, trashed)
}

// DeletePermanently removes the object and the record. Owner only.
func (s *FileService) DeletePermanently(ctx context.Context, userID, fileID string) error {
	f, err := s.requireOwner(ctx, userID, fileID)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteFile(ctx, f.Bucket, f.StorageKey); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return s.db.DeleteFile(ctx, f.ID)
}

// Share grants granteeID read access. Owner only; self-shares are a no-op.
func (s *FileService) Share(ctx context.Context, userID, fileID, granteeID string) error {
	f, err := s.requireOwner(ctx, userID, fileID)
	if err != nil {
		return err
	}
	if granteeID == userID {
		return nil
	}
	grantee, err := s.db.GetUserByID(ctx, granteeID)
	if err != nil {
		return err
	}
	if grantee == nil {
		return fmt.Errorf("grantee not found: %s", granteeID)
	}
	return s.db.CreateShare(ctx, &models.ShareGrant{
		ID:        uuid.NewString(),
		FileID:    f.ID,
		OwnerID:   userID,
		GranteeID: granteeID,
	})
}

func (s *FileService) Unshare(ctx context.Context, userID, fileID, granteeID string) error {
	if _, err := s.requireOwner(ctx, userID, fileID); err != nil {
		return err
	}
	return s.db.DeleteShare(ctx, fileID, granteeID)
}

func (s *FileService) requireOwner(ctx context.Context, userID, fileID string) (*models.FileRecord, error) {
	f, err := s.db.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFileNotFound
	}
	if f.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return f, nil
}

// objectKey creates a consistent S3 key layout.
func (s *FileService) objectKey(ownerID, fileID, filename string) string {
	filename = strings.TrimSpace(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("users", ownerID, "files", fileID, filename)
}
