// AngelaMos | 2026
// service.go

package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shoplytics/backoffice/internal/core"
	"github.com/shoplytics/backoffice/internal/guard"
	"github.com/shoplytics/backoffice/internal/shop"
	"github.com/shoplytics/backoffice/internal/storage"
	"github.com/shoplytics/backoffice/internal/user"
)

type Service struct {
	repo  Repository
	shops shop.Repository
	files *storage.Store
}

func NewService(
	repo Repository,
	shops shop.Repository,
	files *storage.Store,
) *Service {
	return &Service{
		repo:  repo,
		shops: shops,
		files: files,
	}
}

// Create attaches a report to the shop the calling analyst is staffed on.
// The uploaded file is persisted first and unlinked again if the row insert
// fails.
func (s *Service) Create(
	ctx context.Context,
	analystID, shopID int64,
	req CreateReportRequest,
	upload io.Reader,
) (*Report, error) {
	target, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	staffed, err := s.shops.IsStaffed(ctx, shopID, analystID)
	if err != nil {
		return nil, err
	}
	if !staffed {
		return nil, fmt.Errorf(
			"analyst %d is not staffed on this shop: %w",
			analystID,
			core.ErrForbidden,
		)
	}

	dir := "reports/" + strconv.FormatInt(target.ID, 10)
	path, err := s.files.SaveFile(dir, upload)
	if err != nil {
		return nil, fmt.Errorf("save report file: %w", err)
	}

	report := &Report{
		Name:      req.Name,
		FilePath:  path,
		Comment:   req.Comment,
		ShopID:    shopID,
		AnalystID: analystID,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		//nolint:errcheck // cleanup of the orphaned upload
		_ = s.files.Remove(path)
		return nil, err
	}

	return report, nil
}

func (s *Service) ListByShop(
	ctx context.Context,
	callerID int64,
	callerRole string,
	shopID int64,
	params ListReportsParams,
) ([]Report, int, error) {
	target, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, 0, err
	}

	if err := s.authorizeView(ctx, callerID, callerRole, target); err != nil {
		return nil, 0, err
	}

	params.Normalize()
	return s.repo.ListByShop(ctx, shopID, params)
}

func (s *Service) Get(
	ctx context.Context,
	callerID int64,
	callerRole string,
	reportID int64,
) (*Report, error) {
	report, target, err := s.loadWithShop(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeView(ctx, callerID, callerRole, target); err != nil {
		return nil, err
	}

	return report, nil
}

// Update rewrites the report's name and comment. Only the authoring analyst
// may touch content, the owning manager included.
func (s *Service) Update(
	ctx context.Context,
	callerID, reportID int64,
	req UpdateReportRequest,
) (*Report, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if !report.CreatedBy(callerID) {
		return nil, fmt.Errorf(
			"only the report's author may edit it: %w",
			core.ErrForbidden,
		)
	}

	report.Name = req.Name
	report.Comment = req.Comment

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// SetSeen flips the review flag. Only the shop's current owning manager may
// mark a report, the author included.
func (s *Service) SetSeen(
	ctx context.Context,
	callerID, reportID int64,
	seen bool,
) (*Report, error) {
	report, target, err := s.loadWithShop(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if d := guard.OwnsShop(callerID, target.ManagerID); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, core.ErrForbidden)
	}

	if err := s.repo.SetSeen(ctx, reportID, seen); err != nil {
		return nil, err
	}

	report.Seen = seen
	return report, nil
}

// Delete removes the row and unlinks the stored file. Allowed for the
// author and for the shop's owning manager.
func (s *Service) Delete(ctx context.Context, callerID, reportID int64) error {
	report, target, err := s.loadWithShop(ctx, reportID)
	if err != nil {
		return err
	}

	if !report.CreatedBy(callerID) && !target.OwnedBy(callerID) {
		return fmt.Errorf(
			"only the author or the shop owner may delete a report: %w",
			core.ErrForbidden,
		)
	}

	if err := s.repo.Delete(ctx, reportID); err != nil {
		return err
	}

	//nolint:errcheck // row is gone, file removal is best-effort
	_ = s.files.Remove(report.FilePath)

	return nil
}

// OpenFile returns the stored document for download after the same access
// check as Get.
func (s *Service) OpenFile(
	ctx context.Context,
	callerID int64,
	callerRole string,
	reportID int64,
) (*Report, *os.File, error) {
	report, target, err := s.loadWithShop(ctx, reportID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.authorizeView(ctx, callerID, callerRole, target); err != nil {
		return nil, nil, err
	}

	file, err := s.files.Open(report.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open report file: %w", err)
	}

	return report, file, nil
}

func (s *Service) loadWithShop(
	ctx context.Context,
	reportID int64,
) (*Report, *shop.Shop, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, nil, err
	}

	target, err := s.shops.GetByID(ctx, report.ShopID)
	if err != nil {
		return nil, nil, err
	}

	return report, target, nil
}

// authorizeView admits the shop's owning manager and its staffed analysts.
// Everyone else gets not-found so report ids are not probeable.
func (s *Service) authorizeView(
	ctx context.Context,
	callerID int64,
	callerRole string,
	target *shop.Shop,
) error {
	if target.OwnedBy(callerID) {
		return nil
	}

	if callerRole == user.RoleAnalyst {
		staffed, err := s.shops.IsStaffed(ctx, target.ID, callerID)
		if err != nil {
			return err
		}
		if staffed {
			return nil
		}
	}

	return fmt.Errorf("view report: %w", core.ErrNotFound)
}
