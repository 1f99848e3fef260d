// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/backoffice/internal/core"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return NewRepository(db), mock
}

func TestSoftDeleteClearsStaffAssignments(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`WITH unstaffed AS \( DELETE FROM shop_staff WHERE analyst_id = \$1 \) UPDATE users SET deleted_at = NOW\(\), updated_at = NOW\(\) WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SoftDelete(context.Background(), int64(42))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteMissingUser(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`WITH unstaffed AS \( DELETE FROM shop_staff WHERE analyst_id = \$1 \) UPDATE users SET deleted_at = NOW\(\), updated_at = NOW\(\) WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), int64(999))
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
