// AngelaMos | 2026
// repository.go

package shop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shoplytics/backoffice/internal/core"
)

type Repository interface {
	Create(ctx context.Context, shop *Shop) error
	GetByID(ctx context.Context, id int64) (*Shop, error)
	// GetForUpdate loads the shop under a row lock. Only meaningful when the
	// repository is constructed over a transaction.
	GetForUpdate(ctx context.Context, id int64) (*Shop, error)
	Update(ctx context.Context, shop *Shop) error
	UpdateManager(
		ctx context.Context,
		shopID, managerID int64,
	) (time.Time, error)
	Delete(ctx context.Context, id int64) error
	ListByManager(
		ctx context.Context,
		managerID int64,
		params ListShopsParams,
	) ([]Shop, int, error)
	ListStaff(ctx context.Context, shopID int64) ([]StaffMember, error)
	StaffedAnalystIDs(ctx context.Context, shopID int64) ([]int64, error)
	// ExistingAssignments returns the subset of analystIDs already staffed
	// on the shop.
	ExistingAssignments(
		ctx context.Context,
		shopID int64,
		analystIDs []int64,
	) ([]int64, error)
	AddStaff(ctx context.Context, shopID int64, analystIDs []int64) error
	RemoveStaff(ctx context.Context, shopID int64, analystIDs []int64) error
	// DeleteAssignmentsFor empties the full assignment set of each analyst,
	// across every shop they staff.
	DeleteAssignmentsFor(ctx context.Context, analystIDs []int64) error
	IsStaffed(ctx context.Context, shopID, analystID int64) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const shopColumns = `
	id, uuid, name, manager_id, avatar_path, created_at, updated_at`

func (r *repository) Create(ctx context.Context, shop *Shop) error {
	if shop.UUID == "" {
		shop.UUID = uuid.New().String()
	}

	query := `
		INSERT INTO shops (uuid, name, manager_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, shop, query,
		shop.UUID,
		shop.Name,
		shop.ManagerID,
	)
	if err != nil {
		return fmt.Errorf("create shop: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Shop, error) {
	query := `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE id = $1`

	var shop Shop
	if err := r.db.GetContext(ctx, &shop, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get shop: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}

	return &shop, nil
}

func (r *repository) GetForUpdate(
	ctx context.Context,
	id int64,
) (*Shop, error) {
	query := `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE id = $1
		FOR UPDATE`

	var shop Shop
	if err := r.db.GetContext(ctx, &shop, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lock shop: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("lock shop: %w", err)
	}

	return &shop, nil
}

func (r *repository) Update(ctx context.Context, shop *Shop) error {
	query := `
		UPDATE shops
		SET name = $2, avatar_path = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &shop.UpdatedAt, query,
		shop.ID,
		shop.Name,
		shop.AvatarPath,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update shop: %w", core.ErrNotFound)
		}
		return fmt.Errorf("update shop: %w", err)
	}

	return nil
}

func (r *repository) UpdateManager(
	ctx context.Context,
	shopID, managerID int64,
) (time.Time, error) {
	query := `
		UPDATE shops
		SET manager_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	var updatedAt time.Time
	err := r.db.GetContext(ctx, &updatedAt, query, shopID, managerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("update shop owner: %w", core.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("update shop owner: %w", err)
	}

	return updatedAt, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete shop: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByManager(
	ctx context.Context,
	managerID int64,
	params ListShopsParams,
) ([]Shop, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM shops WHERE manager_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, managerID); err != nil {
		return nil, 0, fmt.Errorf("count shops: %w", err)
	}

	query := `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE manager_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	shops := []Shop{}
	err := r.db.SelectContext(ctx, &shops, query,
		managerID,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list shops: %w", err)
	}

	return shops, total, nil
}

func (r *repository) ListStaff(
	ctx context.Context,
	shopID int64,
) ([]StaffMember, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM shop_staff ss
		JOIN users u ON u.id = ss.analyst_id
		WHERE ss.shop_id = $1 AND u.deleted_at IS NULL
		ORDER BY u.name`

	staff := []StaffMember{}
	if err := r.db.SelectContext(ctx, &staff, query, shopID); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	return staff, nil
}

func (r *repository) StaffedAnalystIDs(
	ctx context.Context,
	shopID int64,
) ([]int64, error) {
	query := `SELECT analyst_id FROM shop_staff WHERE shop_id = $1`

	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, shopID); err != nil {
		return nil, fmt.Errorf("staffed analyst ids: %w", err)
	}

	return ids, nil
}

func (r *repository) ExistingAssignments(
	ctx context.Context,
	shopID int64,
	analystIDs []int64,
) ([]int64, error) {
	if len(analystIDs) == 0 {
		return []int64{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT analyst_id
		FROM shop_staff
		WHERE shop_id = ? AND analyst_id IN (?)`,
		shopID, analystIDs)
	if err != nil {
		return nil, fmt.Errorf("existing assignments: %w", err)
	}

	ids := []int64{}
	query = r.db.Rebind(query)
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("existing assignments: %w", err)
	}

	return ids, nil
}

func (r *repository) AddStaff(
	ctx context.Context,
	shopID int64,
	analystIDs []int64,
) error {
	if len(analystIDs) == 0 {
		return nil
	}

	query := `INSERT INTO shop_staff (shop_id, analyst_id) VALUES ($1, $2)`
	for _, analystID := range analystIDs {
		if _, err := r.db.ExecContext(ctx, query, shopID, analystID); err != nil {
			return fmt.Errorf("add staff: %w", err)
		}
	}

	return nil
}

func (r *repository) RemoveStaff(
	ctx context.Context,
	shopID int64,
	analystIDs []int64,
) error {
	if len(analystIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		DELETE FROM shop_staff
		WHERE shop_id = ? AND analyst_id IN (?)`,
		shopID, analystIDs)
	if err != nil {
		return fmt.Errorf("remove staff: %w", err)
	}

	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove staff: %w", err)
	}

	return nil
}

func (r *repository) DeleteAssignmentsFor(
	ctx context.Context,
	analystIDs []int64,
) error {
	if len(analystIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`DELETE FROM shop_staff WHERE analyst_id IN (?)`,
		analystIDs,
	)
	if err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}

	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}

	return nil
}

func (r *repository) IsStaffed(
	ctx context.Context,
	shopID, analystID int64,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM shop_staff WHERE shop_id = $1 AND analyst_id = $2
		)`

	var staffed bool
	err := r.db.GetContext(ctx, &staffed, query, shopID, analystID)
	if err != nil {
		return false, fmt.Errorf("check staffed: %w", err)
	}

	return staffed, nil
}
