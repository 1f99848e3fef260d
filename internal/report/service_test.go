// AngelaMos | 2026
// service_test.go

package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/backoffice/internal/core"
	"github.com/shoplytics/backoffice/internal/shop"
	"github.com/shoplytics/backoffice/internal/storage"
	"github.com/shoplytics/backoffice/internal/user"
)

type fakeReportRepo struct {
	Repository

	reports map[int64]*Report
	deleted []int64
}

func (f *fakeReportRepo) GetByID(ctx context.Context, id int64) (*Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, fmt.Errorf("get report: %w", core.ErrNotFound)
	}
	return r, nil
}

func (f *fakeReportRepo) Update(ctx context.Context, r *Report) error {
	f.reports[r.ID] = r
	return nil
}

func (f *fakeReportRepo) SetSeen(ctx context.Context, id int64, seen bool) error {
	r, ok := f.reports[id]
	if !ok {
		return fmt.Errorf("set report seen: %w", core.ErrNotFound)
	}
	r.Seen = seen
	return nil
}

func (f *fakeReportRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.reports[id]; !ok {
		return fmt.Errorf("delete report: %w", core.ErrNotFound)
	}
	f.deleted = append(f.deleted, id)
	delete(f.reports, id)
	return nil
}

type fakeShopRepo struct {
	shop.Repository

	shops   map[int64]*shop.Shop
	staffed map[int64][]int64
}

func (f *fakeShopRepo) GetByID(ctx context.Context, id int64) (*shop.Shop, error) {
	s, ok := f.shops[id]
	if !ok {
		return nil, fmt.Errorf("get shop: %w", core.ErrNotFound)
	}
	return s, nil
}

func (f *fakeShopRepo) IsStaffed(
	ctx context.Context,
	shopID, analystID int64,
) (bool, error) {
	for _, id := range f.staffed[shopID] {
		if id == analystID {
			return true, nil
		}
	}
	return false, nil
}

const (
	ownerID   int64 = 1
	authorID  int64 = 2
	otherID   int64 = 3
	theShopID int64 = 10
	reportID  int64 = 100
)

func newFixtureService(t *testing.T) (*Service, *fakeReportRepo, string) {
	t.Helper()

	baseDir := t.TempDir()
	files, err := storage.New(baseDir, 1<<20)
	require.NoError(t, err)

	docDir := filepath.Join(baseDir, "reports", "10")
	require.NoError(t, os.MkdirAll(docDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(docDir, "doc.pdf"),
		[]byte("%PDF-1.4"),
		0o644,
	))

	reports := &fakeReportRepo{reports: map[int64]*Report{
		reportID: {
			ID:        reportID,
			Name:      "Q3 revenue",
			FilePath:  "reports/10/doc.pdf",
			ShopID:    theShopID,
			AnalystID: authorID,
		},
	}}

	shops := &fakeShopRepo{
		shops: map[int64]*shop.Shop{
			theShopID: {ID: theShopID, ManagerID: ownerID},
		},
		staffed: map[int64][]int64{
			theShopID: {authorID},
		},
	}

	return NewService(reports, shops, files), reports, baseDir
}

func TestUpdateOnlyByAuthor(t *testing.T) {
	svc, _, _ := newFixtureService(t)

	req := UpdateReportRequest{Name: "Q3 revenue v2", Comment: "redone"}

	_, err := svc.Update(context.Background(), ownerID, reportID, req)
	assert.ErrorIs(t, err, core.ErrForbidden)

	updated, err := svc.Update(context.Background(), authorID, reportID, req)
	require.NoError(t, err)
	assert.Equal(t, "Q3 revenue v2", updated.Name)
	assert.Equal(t, "redone", updated.Comment)
}

func TestSetSeenOnlyByOwningManager(t *testing.T) {
	svc, repo, _ := newFixtureService(t)

	_, err := svc.SetSeen(context.Background(), authorID, reportID, true)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.False(t, repo.reports[reportID].Seen)

	updated, err := svc.SetSeen(context.Background(), ownerID, reportID, true)
	require.NoError(t, err)
	assert.True(t, updated.Seen)
}

func TestDeleteByAuthorOrOwner(t *testing.T) {
	svc, repo, baseDir := newFixtureService(t)
	docPath := filepath.Join(baseDir, "reports", "10", "doc.pdf")

	err := svc.Delete(context.Background(), otherID, reportID)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Empty(t, repo.deleted)
	assert.FileExists(t, docPath)

	err = svc.Delete(context.Background(), authorID, reportID)
	require.NoError(t, err)
	assert.Equal(t, []int64{reportID}, repo.deleted)

	// the backing file goes with the row
	assert.NoFileExists(t, docPath)
}

func TestGetHidesReportFromOutsiders(t *testing.T) {
	svc, _, _ := newFixtureService(t)

	// the owning manager sees it
	_, err := svc.Get(context.Background(), ownerID, user.RoleManager, reportID)
	assert.NoError(t, err)

	// the staffed author sees it
	_, err = svc.Get(context.Background(), authorID, user.RoleAnalyst, reportID)
	assert.NoError(t, err)

	// an unstaffed analyst gets not-found, not forbidden
	_, err = svc.Get(context.Background(), otherID, user.RoleAnalyst, reportID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// a foreign manager gets not-found as well
	_, err = svc.Get(context.Background(), otherID, user.RoleManager, reportID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateRequiresStaffing(t *testing.T) {
	svc, _, _ := newFixtureService(t)

	req := CreateReportRequest{Name: "maiden report"}

	_, err := svc.Create(
		context.Background(),
		otherID,
		theShopID,
		req,
		nil,
	)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestCreateMissingShop(t *testing.T) {
	svc, _, _ := newFixtureService(t)

	_, err := svc.Create(
		context.Background(),
		authorID,
		999,
		CreateReportRequest{Name: "orphan"},
		nil,
	)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
