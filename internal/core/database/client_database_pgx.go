package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/calebds/vaultive/internal/config"
	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
		// Append SSL params to the provided DATABASE_URL safely.
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Ensure bootstrap once
	if err := EnsureBootstrapped(ctx, db); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, is_admin, department_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), COALESCE($7, now()), COALESCE($8, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, user.IsAdmin, user.DepartmentID, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, is_admin, COALESCE(department_id, ''), created_at, updated_at
		FROM users WHERE email = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, email))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, is_admin, COALESCE(department_id, ''), created_at, updated_at
		FROM users WHERE id = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.DepartmentID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for departments

func (c *DatabaseClient) CreateDepartment(ctx context.Context, dep *models.Department) error {
	if dep == nil {
		return errors.New("nil department")
	}
	const q = `
		INSERT INTO departments (id, name, created_at)
		VALUES ($1, $2, COALESCE($3, now()))
	`
	_, err := c.db.ExecContext(ctx, q, dep.ID, dep.Name, dep.CreatedAt)
	return err
}

func (c *DatabaseClient) ListDepartments(ctx context.Context) ([]models.Department, error) {
	const q = `
		SELECT id, name, created_at FROM departments ORDER BY name ASC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Implementing the db interface for files

const fileColumns = `
	id, owner_id, COALESCE(department_id, ''), file_name, extension, content_type,
	size_bytes, bucket, storage_key, trashed, trashed_at, created_at, updated_at
`

func (c *DatabaseClient) CreateFile(ctx context.Context, f *models.FileRecord) error {
	if f == nil {
		return errors.New("nil file record")
	}
	const q = `
		INSERT INTO files
			(id, owner_id, department_id, file_name, extension, content_type,
			 size_bytes, bucket, storage_key, trashed, created_at, updated_at)
		VALUES
			($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, false, COALESCE($10, now()), COALESCE($11, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		f.ID, f.OwnerID, f.DepartmentID, f.FileName, f.Extension, f.ContentType,
		f.SizeBytes, f.Bucket, f.StorageKey, f.CreatedAt, f.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetFileByID(ctx context.Context, id string) (*models.FileRecord, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	var f models.FileRecord
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.OwnerID, &f.DepartmentID, &f.FileName, &f.Extension, &f.ContentType,
		&f.SizeBytes, &f.Bucket, &f.StorageKey, &f.Trashed, &f.TrashedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *DatabaseClient) ListFilesByOwner(ctx context.Context, ownerID string) ([]models.FileRecord, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 AND trashed = false ORDER BY created_at DESC`
	return c.queryFiles(ctx, q, ownerID)
}

func (c *DatabaseClient) ListTrashedFiles(ctx context.Context, ownerID string) ([]models.FileRecord, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 AND trashed = true ORDER BY trashed_at DESC`
	return c.queryFiles(ctx, q, ownerID)
}

func (c *DatabaseClient) queryFiles(ctx context.Context, q string, args ...any) ([]models.FileRecord, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FileRecord
	for rows.Next() {
		var f models.FileRecord
		if err := rows.Scan(
			&f.ID, &f.OwnerID, &f.DepartmentID, &f.FileName, &f.Extension, &f.ContentType,
			&f.SizeBytes, &f.Bucket, &f.StorageKey, &f.Trashed, &f.TrashedAt, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) SetFileTrashed(ctx context.Context, id string, trashed bool) error {
	const q = `
		UPDATE files
		SET trashed = $2,
		    trashed_at = CASE WHEN $2 THEN now() ELSE NULL END,
		    updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, trashed)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("file not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) DeleteFile(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("file not found: %s", id)
	}
	return nil
}

// Implementing the db interface for share grants

func (c *DatabaseClient) CreateShare(ctx context.Context, grant *models.ShareGrant) error {
	if grant == nil {
		return errors.New("nil share grant")
	}
	const q = `
		INSERT INTO share_grants (id, file_id, owner_id, grantee_id, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		ON CONFLICT (file_id, grantee_id) DO NOTHING
	`
	_, err := c.db.ExecContext(ctx, q, grant.ID, grant.FileID, grant.OwnerID, grant.GranteeID, grant.CreatedAt)
	return err
}

func (c *DatabaseClient) DeleteShare(ctx context.Context, fileID, granteeID string) error {
	const q = `DELETE FROM share_grants WHERE file_id = $1 AND grantee_id = $2`
	_, err := c.db.ExecContext(ctx, q, fileID, granteeID)
	return err
}

func (c *DatabaseClient) HasShare(ctx context.Context, fileID, granteeID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM share_grants WHERE file_id = $1 AND grantee_id = $2)`
	var ok bool
	if err := c.db.QueryRowContext(ctx, q, fileID, granteeID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *DatabaseClient) ListSharedWithUser(ctx context.Context, granteeID string) ([]models.FileRecord, error) {
	const q = `
		SELECT
			f.id, f.owner_id, COALESCE(f.department_id, ''), f.file_name, f.extension, f.content_type,
			f.size_bytes, f.bucket, f.storage_key, f.trashed, f.trashed_at, f.created_at, f.updated_at
		FROM files f
		JOIN share_grants s ON s.file_id = f.id
		WHERE s.grantee_id = $1 AND f.trashed = false
		ORDER BY s.created_at DESC
	`
	return c.queryFiles(ctx, q, granteeID)
}

// Implementing the db interface for admin analytics

func (c *DatabaseClient) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (c *DatabaseClient) CountFiles(ctx context.Context) (int, int64, error) {
	var (
		n     int
		bytes int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(sum(size_bytes), 0) FROM files WHERE trashed = false`,
	).Scan(&n, &bytes)
	return n, bytes, err
}

func (c *DatabaseClient) JobCountsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT status, count(*) FROM extraction_jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UsageByDepartment(ctx context.Context) ([]models.DepartmentUsage, error) {
	const q = `
		SELECT d.id, d.name, count(f.id), COALESCE(sum(f.size_bytes), 0)
		FROM departments d
		LEFT JOIN files f ON f.department_id = d.id AND f.trashed = false
		GROUP BY d.id, d.name
		ORDER BY d.name ASC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DepartmentUsage
	for rows.Next() {
		var u models.DepartmentUsage
		if err := rows.Scan(&u.DepartmentID, &u.DepartmentName, &u.FileCount, &u.TotalBytes); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
