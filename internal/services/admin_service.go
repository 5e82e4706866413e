package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/models"
)

// VaultSummary is the admin dashboard payload.
type VaultSummary struct {
	TotalUsers        int            `json:"total_users"`
	TotalFiles        int            `json:"total_files"`
	TotalStorageBytes int64          `json:"total_storage_bytes"`
	JobsByStatus      map[string]int `json:"jobs_by_status"`
}

type AdminService struct {
	db core.DbClient
}

func NewAdminService(db core.DbClient) *AdminService {
	return &AdminService{db: db}
}

// Summary gathers the dashboard counters; the independent queries run
// concurrently and any failure cancels the rest.
func (s *AdminService) Summary(ctx context.Context) (*VaultSummary, error) {
	var out VaultSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.db.CountUsers(gctx)
		out.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, bytes, err := s.db.CountFiles(gctx)
		out.TotalFiles, out.TotalStorageBytes = n, bytes
		return err
	})
	g.Go(func() error {
		counts, err := s.db.JobCountsByStatus(gctx)
		out.JobsByStatus = counts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return &out, nil
}

func (s *AdminService) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	dep := &models.Department{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.db.CreateDepartment(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

func (s *AdminService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.db.ListDepartments(ctx)
}

func (s *AdminService) Usage(ctx context.Context) ([]models.DepartmentUsage, error) {
	return s.db.UsageByDepartment(ctx)
}

// BuildUsageWorkbook renders the per-department usage report as an
// XLSX workbook for download.
func (s *AdminService) BuildUsageWorkbook(ctx context.Context) (*excelize.File, error) {
	usage, err := s.db.UsageByDepartment(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Usage"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Department", "Files", "Storage (bytes)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, u := range usage {
		values := []any{u.DepartmentName, u.FileCount, u.TotalBytes}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
