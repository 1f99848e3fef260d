// AngelaMos | 2026
// repository.go

package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shoplytics/backoffice/internal/core"
)

type Repository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id int64) (*Report, error)
	Update(ctx context.Context, report *Report) error
	SetSeen(ctx context.Context, id int64, seen bool) error
	Delete(ctx context.Context, id int64) error
	ListByShop(
		ctx context.Context,
		shopID int64,
		params ListReportsParams,
	) ([]Report, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const reportColumns = `
	id, name, file_path, comment, seen, shop_id, analyst_id,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (name, file_path, comment, shop_id, analyst_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, seen, created_at, updated_at`

	err := r.db.GetContext(ctx, report, query,
		report.Name,
		report.FilePath,
		report.Comment,
		report.ShopID,
		report.AnalystID,
	)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE id = $1`

	var report Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get report: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get report: %w", err)
	}

	return &report, nil
}

func (r *repository) Update(ctx context.Context, report *Report) error {
	query := `
		UPDATE reports
		SET name = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &report.UpdatedAt, query,
		report.ID,
		report.Name,
		report.Comment,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update report: %w", core.ErrNotFound)
		}
		return fmt.Errorf("update report: %w", err)
	}

	return nil
}

func (r *repository) SetSeen(ctx context.Context, id int64, seen bool) error {
	query := `
		UPDATE reports
		SET seen = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, seen)
	if err != nil {
		return fmt.Errorf("set report seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set report seen: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set report seen: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete report: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByShop(
	ctx context.Context,
	shopID int64,
	params ListReportsParams,
) ([]Report, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM reports WHERE shop_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, shopID); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE shop_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	reports := []Report{}
	err := r.db.SelectContext(ctx, &reports, query,
		shopID,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	return reports, total, nil
}
