// AngelaMos | 2026
// service_test.go

package shop

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/backoffice/internal/core"
)

const (
	callerID   int64 = 10
	otherID    int64 = 20
	newOwnerID int64 = 30
	shopID     int64 = 1
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return NewService(db, NewRepository(db), nil), mock
}

func shopRows(managerID int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "uuid", "name", "manager_id", "avatar_path",
		"created_at", "updated_at",
	}).AddRow(
		shopID, "3f1a2b3c-0000-0000-0000-000000000001", "Northside",
		managerID, nil, now, now,
	)
}

func userRow(id int64, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "role", "manager_id",
		"avatar_path", "token_version", "created_at", "updated_at",
		"deleted_at",
	}).AddRow(
		id, "owner@example.com", "x", "New Owner", role, nil,
		nil, 0, now, now, nil,
	)
}

func expectShopLock(mock sqlmock.Sqlmock, managerID int64) {
	mock.ExpectQuery(`SELECT (.+) FROM shops WHERE id = \$1 FOR UPDATE`).
		WithArgs(shopID).
		WillReturnRows(shopRows(managerID))
}

func TestChangeOwnerReparentsStaffInOneTransaction(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(newOwnerID).
		WillReturnRows(userRow(newOwnerID, "manager"))

	mock.ExpectQuery(`SELECT analyst_id FROM shop_staff WHERE shop_id = \$1`).
		WithArgs(shopID).
		WillReturnRows(sqlmock.NewRows([]string{"analyst_id"}).
			AddRow(int64(100)).
			AddRow(int64(101)))

	mock.ExpectExec(`UPDATE users SET manager_id = \$1, updated_at = NOW\(\) WHERE id IN \(\$2, \$3\)`).
		WithArgs(newOwnerID, int64(100), int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	mock.ExpectExec(`DELETE FROM shop_staff WHERE analyst_id IN \(\$1, \$2\)`).
		WithArgs(int64(100), int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	bumped := time.Now().Add(time.Minute).Truncate(time.Second)
	mock.ExpectQuery(`UPDATE shops SET manager_id = \$2, updated_at = NOW\(\) WHERE id = \$1 RETURNING updated_at`).
		WithArgs(shopID, newOwnerID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(bumped))

	mock.ExpectCommit()

	resp, err := svc.ChangeOwner(context.Background(), callerID, shopID, newOwnerID)
	require.NoError(t, err)

	assert.Equal(t, newOwnerID, resp.Shop.ManagerID)
	assert.Equal(t, newOwnerID, resp.NewOwner.ID)
	assert.True(t, resp.Shop.UpdatedAt.Equal(bumped))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeOwnerWithNoStaffSkipsReassignment(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(newOwnerID).
		WillReturnRows(userRow(newOwnerID, "manager"))

	mock.ExpectQuery(`SELECT analyst_id FROM shop_staff WHERE shop_id = \$1`).
		WithArgs(shopID).
		WillReturnRows(sqlmock.NewRows([]string{"analyst_id"}))

	mock.ExpectQuery(`UPDATE shops SET manager_id = \$2, updated_at = NOW\(\) WHERE id = \$1 RETURNING updated_at`).
		WithArgs(shopID, newOwnerID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).
			AddRow(time.Now()))

	mock.ExpectCommit()

	_, err := svc.ChangeOwner(context.Background(), callerID, shopID, newOwnerID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeOwnerRejectsUnchangedManager(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)
	mock.ExpectRollback()

	_, err := svc.ChangeOwner(context.Background(), callerID, shopID, callerID)
	assert.ErrorIs(t, err, ErrSameOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeOwnerRejectsNonOwner(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, otherID)
	mock.ExpectRollback()

	_, err := svc.ChangeOwner(context.Background(), callerID, shopID, newOwnerID)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeOwnerRejectsNonManagerTarget(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(newOwnerID).
		WillReturnRows(userRow(newOwnerID, "analyst"))

	mock.ExpectRollback()

	_, err := svc.ChangeOwner(context.Background(), callerID, shopID, newOwnerID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeOwnerMissingShop(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM shops WHERE id = \$1 FOR UPDATE`).
		WithArgs(shopID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.ChangeOwner(context.Background(), callerID, shopID, newOwnerID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectSubordinates(mock sqlmock.Sqlmock, managers map[int64]int64, ids ...int64) {
	rows := sqlmock.NewRows([]string{"id", "manager_id"})
	for _, id := range ids {
		if m, ok := managers[id]; ok {
			rows.AddRow(id, m)
		}
	}

	args := make([]driver.Value, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, "analyst")

	mock.ExpectQuery(`SELECT id, manager_id FROM users WHERE id IN`).
		WithArgs(args...).
		WillReturnRows(rows)
}

func TestUpdateStaffAddInsertsAllRows(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)
	expectSubordinates(mock, map[int64]int64{100: callerID, 101: callerID}, 100, 101)

	mock.ExpectQuery(`SELECT analyst_id FROM shop_staff WHERE shop_id = \$1 AND analyst_id IN \(\$2, \$3\)`).
		WithArgs(shopID, int64(100), int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"analyst_id"}))

	mock.ExpectExec(`INSERT INTO shop_staff \(shop_id, analyst_id\) VALUES \(\$1, \$2\)`).
		WithArgs(shopID, int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO shop_staff \(shop_id, analyst_id\) VALUES \(\$1, \$2\)`).
		WithArgs(shopID, int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT u.id, u.name, u.email FROM shop_staff ss`).
		WithArgs(shopID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(int64(100), "Ana", "ana@example.com").
			AddRow(int64(101), "Ben", "ben@example.com"))

	mock.ExpectCommit()

	card, err := svc.UpdateStaff(
		context.Background(),
		callerID,
		shopID,
		StaffOperationAdd,
		[]int64{100, 101},
	)
	require.NoError(t, err)
	assert.Len(t, card.Staff, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffAddRejectsWholeBatchWhenAnyAlreadyStaffed(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)
	expectSubordinates(mock, map[int64]int64{100: callerID, 101: callerID}, 100, 101)

	mock.ExpectQuery(`SELECT analyst_id FROM shop_staff WHERE shop_id = \$1 AND analyst_id IN \(\$2, \$3\)`).
		WithArgs(shopID, int64(100), int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"analyst_id"}).AddRow(int64(101)))

	mock.ExpectRollback()

	_, err := svc.UpdateStaff(
		context.Background(),
		callerID,
		shopID,
		StaffOperationAdd,
		[]int64{100, 101},
	)
	assert.ErrorIs(t, err, ErrAlreadyStaffed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffRemoveRejectsWhenAnyNotStaffed(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)
	expectSubordinates(mock, map[int64]int64{100: callerID, 101: callerID}, 100, 101)

	mock.ExpectQuery(`SELECT analyst_id FROM shop_staff WHERE shop_id = \$1 AND analyst_id IN \(\$2, \$3\)`).
		WithArgs(shopID, int64(100), int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"analyst_id"}).AddRow(int64(100)))

	mock.ExpectRollback()

	_, err := svc.UpdateStaff(
		context.Background(),
		callerID,
		shopID,
		StaffOperationRemove,
		[]int64{100, 101},
	)
	assert.ErrorIs(t, err, ErrNotStaffed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffRemoveDeletesListedRows(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)
	expectSubordinates(mock, map[int64]int64{100: callerID}, 100)

	mock.ExpectQuery(`SELECT analyst_id FROM shop_staff WHERE shop_id = \$1 AND analyst_id IN \(\$2\)`).
		WithArgs(shopID, int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"analyst_id"}).AddRow(int64(100)))

	mock.ExpectExec(`DELETE FROM shop_staff WHERE shop_id = \$1 AND analyst_id IN \(\$2\)`).
		WithArgs(shopID, int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT u.id, u.name, u.email FROM shop_staff ss`).
		WithArgs(shopID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	mock.ExpectCommit()

	card, err := svc.UpdateStaff(
		context.Background(),
		callerID,
		shopID,
		StaffOperationRemove,
		[]int64{100},
	)
	require.NoError(t, err)
	assert.Empty(t, card.Staff)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffRejectsNonSubordinate(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)
	// analyst 101 reports to someone else and never comes back from the
	// subordinate lookup
	expectSubordinates(mock, map[int64]int64{100: callerID}, 100, 101)
	mock.ExpectRollback()

	_, err := svc.UpdateStaff(
		context.Background(),
		callerID,
		shopID,
		StaffOperationAdd,
		[]int64{100, 101},
	)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Contains(t, err.Error(), "analyst 101")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffRejectsNonOwnerBeforeTouchingRows(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, otherID)
	expectSubordinates(mock, map[int64]int64{100: callerID}, 100)
	mock.ExpectRollback()

	_, err := svc.UpdateStaff(
		context.Background(),
		callerID,
		shopID,
		StaffOperationAdd,
		[]int64{100},
	)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffDeduplicatesBatch(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	expectShopLock(mock, callerID)
	expectSubordinates(mock, map[int64]int64{100: callerID}, 100)

	mock.ExpectQuery(`SELECT analyst_id FROM shop_staff WHERE shop_id = \$1 AND analyst_id IN \(\$2\)`).
		WithArgs(shopID, int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"analyst_id"}))

	mock.ExpectExec(`INSERT INTO shop_staff`).
		WithArgs(shopID, int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT u.id, u.name, u.email FROM shop_staff ss`).
		WithArgs(shopID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(int64(100), "Ana", "ana@example.com"))

	mock.ExpectCommit()

	_, err := svc.UpdateStaff(
		context.Background(),
		callerID,
		shopID,
		StaffOperationAdd,
		[]int64{100, 100, 100},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
