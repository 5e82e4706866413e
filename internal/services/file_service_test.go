package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/models"
)

// fakeDB embeds the interface so only the methods a test exercises need
// real implementations.
type fakeDB struct {
	core.DbClient

	files   map[string]*models.FileRecord
	users   map[string]*models.User
	shares  map[string]bool // fileID|granteeID
	trashed map[string]bool
	created []*models.FileRecord
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		files:   map[string]*models.FileRecord{},
		users:   map[string]*models.User{},
		shares:  map[string]bool{},
		trashed: map[string]bool{},
	}
}

func (f *fakeDB) GetFileByID(ctx context.Context, id string) (*models.FileRecord, error) {
	return f.files[id], nil
}

func (f *fakeDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeDB) HasShare(ctx context.Context, fileID, granteeID string) (bool, error) {
	return f.shares[fileID+"|"+granteeID], nil
}

func (f *fakeDB) CreateShare(ctx context.Context, g *models.ShareGrant) error {
	f.shares[g.FileID+"|"+g.GranteeID] = true
	return nil
}

func (f *fakeDB) SetFileTrashed(ctx context.Context, id string, trashed bool) error {
	f.trashed[id] = trashed
	return nil
}

func (f *fakeDB) CreateFile(ctx context.Context, rec *models.FileRecord) error {
	f.files[rec.ID] = rec
	f.created = append(f.created, rec)
	return nil
}

// fakeStorage records uploads and serves canned bytes.
type fakeStorage struct {
	uploads map[string][]byte
}

func (s *fakeStorage) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	b, _ := io.ReadAll(data)
	s.uploads[bucket+"/"+key] = b
	return "https://" + bucket + ".s3.test/" + key, nil
}

func (s *fakeStorage) DeleteFile(ctx context.Context, bucket, key string) error { return nil }

func (s *fakeStorage) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	return s.uploads[bucket+"/"+key], nil
}

func (s *fakeStorage) GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.uploads[bucket+"/"+key])), nil
}

func TestFileServiceUploadAndCreate(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	storage := &fakeStorage{}
	svc := NewFileService(db, storage, "vault")

	rec, err := svc.UploadAndCreate(ctx, "user-1", "", "my scan.PDF", "application/pdf", []byte("pdf bytes"))
	require.NoError(t, err)
	require.Equal(t, "user-1", rec.OwnerID)
	require.Equal(t, "pdf", rec.Extension)
	require.Equal(t, int64(9), rec.SizeBytes)
	require.Equal(t, "vault", rec.Bucket)
	require.Equal(t, "users/user-1/files/"+rec.ID+"/my_scan.PDF", rec.StorageKey)

	// Bytes actually landed under the generated key.
	require.Equal(t, []byte("pdf bytes"), storage.uploads["vault/"+rec.StorageKey])
}

func TestFileServiceAccess(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	db.files["f1"] = &models.FileRecord{ID: "f1", OwnerID: "owner"}
	db.users["friend"] = &models.User{ID: "friend"}
	svc := NewFileService(db, &fakeStorage{}, "vault")

	t.Run("owner can read", func(t *testing.T) {
		f, err := svc.Get(ctx, "owner", "f1")
		require.NoError(t, err)
		require.Equal(t, "f1", f.ID)
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		_, err := svc.Get(ctx, "stranger", "f1")
		require.ErrorIs(t, err, ErrNoAccess)
	})

	t.Run("grantee can read after share", func(t *testing.T) {
		require.NoError(t, svc.Share(ctx, "owner", "f1", "friend"))
		f, err := svc.Get(ctx, "friend", "f1")
		require.NoError(t, err)
		require.Equal(t, "f1", f.ID)
	})

	t.Run("only owner can share", func(t *testing.T) {
		err := svc.Share(ctx, "friend", "f1", "stranger")
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("only owner can trash", func(t *testing.T) {
		require.ErrorIs(t, svc.Trash(ctx, "friend", "f1"), ErrNotOwner)
		require.NoError(t, svc.Trash(ctx, "owner", "f1"))
		require.True(t, db.trashed["f1"])
	})

	t.Run("unknown file id", func(t *testing.T) {
		_, err := svc.Get(ctx, "owner", "missing")
		require.ErrorIs(t, err, ErrFileNotFound)
	})
}
