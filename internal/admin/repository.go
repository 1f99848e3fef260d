// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/shoplytics/backoffice/internal/core"
)

// EntityCounts is the back-office inventory shown on the root dashboard.
type EntityCounts struct {
	Managers      int64 `db:"managers"       json:"managers"`
	Analysts      int64 `db:"analysts"       json:"analysts"`
	Shops         int64 `db:"shops"          json:"shops"`
	Reports       int64 `db:"reports"        json:"reports"`
	UnseenReports int64 `db:"unseen_reports" json:"unseen_reports"`
}

type Repository interface {
	CountEntities(ctx context.Context) (*EntityCounts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CountEntities(
	ctx context.Context,
) (*EntityCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users
				WHERE role = 'manager' AND deleted_at IS NULL) AS managers,
			(SELECT COUNT(*) FROM users
				WHERE role = 'analyst' AND deleted_at IS NULL) AS analysts,
			(SELECT COUNT(*) FROM shops) AS shops,
			(SELECT COUNT(*) FROM reports) AS reports,
			(SELECT COUNT(*) FROM reports WHERE NOT seen) AS unseen_reports`

	var counts EntityCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}

	return &counts, nil
}
