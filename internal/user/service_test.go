// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/backoffice/internal/core"
)

type fakeRepo struct {
	Repository

	users   map[int64]*User
	nextID  int64
	deleted []int64
}

func newFakeRepo(users ...*User) *fakeRepo {
	repo := &fakeRepo{users: map[int64]*User{}, nextID: 1000}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return u, nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	f.deleted = append(f.deleted, id)
	delete(f.users, id)
	return nil
}

func manager(id int64) *User {
	return &User{ID: id, Role: RoleManager, Name: "Manager", Email: "m@example.com"}
}

func analyst(id, managerID int64) *User {
	return &User{
		ID:        id,
		Role:      RoleAnalyst,
		ManagerID: &managerID,
		Name:      "Analyst",
		Email:     "a@example.com",
	}
}

func TestCreateAnalystReportsToCreator(t *testing.T) {
	repo := newFakeRepo(manager(1))
	svc := NewService(repo, nil)

	created, err := svc.CreateAnalyst(context.Background(), 1, CreateAnalystRequest{
		Email:    "New.Analyst@Example.com",
		Password: "correct horse battery",
		Name:     "New Analyst",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleAnalyst, created.Role)
	require.NotNil(t, created.ManagerID)
	assert.Equal(t, int64(1), *created.ManagerID)
	assert.Equal(t, "new.analyst@example.com", created.Email)
	assert.NotEqual(t, "correct horse battery", created.PasswordHash)
}

func TestGetAnalystRejectsForeignSubordinate(t *testing.T) {
	repo := newFakeRepo(manager(1), manager(2), analyst(3, 2))
	svc := NewService(repo, nil)

	_, err := svc.GetAnalyst(context.Background(), 1, 3)
	assert.ErrorIs(t, err, core.ErrForbidden)

	got, err := svc.GetAnalyst(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestGetAnalystRejectsNonAnalystTarget(t *testing.T) {
	repo := newFakeRepo(manager(1), manager(2))
	svc := NewService(repo, nil)

	_, err := svc.GetAnalyst(context.Background(), 1, 2)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestDeleteAnalystGuardsSubordination(t *testing.T) {
	repo := newFakeRepo(manager(1), manager(2), analyst(3, 1))
	svc := NewService(repo, nil)

	err := svc.DeleteAnalyst(context.Background(), 2, 3)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Empty(t, repo.deleted)

	err = svc.DeleteAnalyst(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, repo.deleted)
}

func TestCanDeleteUser(t *testing.T) {
	root := &User{ID: 1, Role: RoleRoot}
	repo := newFakeRepo(root, manager(2), analyst(3, 2))
	svc := NewService(repo, nil)

	// anyone may delete themselves
	assert.NoError(t, svc.CanDeleteUser(context.Background(), 2, 2))

	// non-root may not delete others
	err := svc.CanDeleteUser(context.Background(), 2, 3)
	assert.ErrorIs(t, err, core.ErrForbidden)

	// root may delete non-root users
	assert.NoError(t, svc.CanDeleteUser(context.Background(), 1, 3))

	// root accounts are protected from everyone but themselves
	other := &User{ID: 4, Role: RoleRoot}
	repo.users[4] = other
	err = svc.CanDeleteUser(context.Background(), 1, 4)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestGetMeRequiresAuthenticatedID(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.GetMe(context.Background(), 0)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestCreateLowercasesEmailAndAssignsManagerRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	info, err := svc.Create(
		context.Background(),
		"Boss@Example.COM",
		"hash",
		"Boss",
	)
	require.NoError(t, err)
	assert.Equal(t, "boss@example.com", info.Email)
	assert.Equal(t, RoleManager, info.Role)
}
