// AngelaMos | 2026
// service.go

package shop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/shoplytics/backoffice/internal/core"
	"github.com/shoplytics/backoffice/internal/guard"
	"github.com/shoplytics/backoffice/internal/storage"
	"github.com/shoplytics/backoffice/internal/user"
)

// Business-rule violations surfaced as forbidden with the rule's message.
var (
	ErrSameOwner      = errors.New("manager is unchanged")
	ErrAlreadyStaffed = errors.New("already staffed")
	ErrNotStaffed     = errors.New("not staffed")
)

type Service struct {
	db    *sqlx.DB
	repo  Repository
	files *storage.Store
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	files *storage.Store,
) *Service {
	return &Service{
		db:    db,
		repo:  repo,
		files: files,
	}
}

func (s *Service) Create(
	ctx context.Context,
	managerID int64,
	req CreateShopRequest,
) (*Shop, error) {
	shop := &Shop{
		Name:      req.Name,
		ManagerID: managerID,
	}

	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, err
	}

	return shop, nil
}

func (s *Service) List(
	ctx context.Context,
	managerID int64,
	params ListShopsParams,
) ([]Shop, int, error) {
	params.Normalize()
	return s.repo.ListByManager(ctx, managerID, params)
}

// Get returns the shop card for the owning manager or a staffed analyst.
// Everyone else sees not-found rather than forbidden, so shop ids are not
// probeable.
func (s *Service) Get(
	ctx context.Context,
	callerID int64,
	callerRole string,
	shopID int64,
) (*ShopCard, error) {
	shop, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	switch {
	case shop.OwnedBy(callerID):
	case callerRole == user.RoleAnalyst:
		staffed, err := s.repo.IsStaffed(ctx, shopID, callerID)
		if err != nil {
			return nil, err
		}
		if !staffed {
			return nil, fmt.Errorf("get shop: %w", core.ErrNotFound)
		}
	default:
		return nil, fmt.Errorf("get shop: %w", core.ErrNotFound)
	}

	return s.buildCard(ctx, shop)
}

func (s *Service) Update(
	ctx context.Context,
	callerID, shopID int64,
	req UpdateShopRequest,
) (*Shop, error) {
	shop, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	if d := guard.OwnsShop(callerID, shop.ManagerID); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, core.ErrForbidden)
	}

	shop.Name = req.Name
	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, err
	}

	return shop, nil
}

func (s *Service) Delete(ctx context.Context, callerID, shopID int64) error {
	shop, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return err
	}

	if d := guard.OwnsShop(callerID, shop.ManagerID); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, core.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, shopID); err != nil {
		return err
	}

	if shop.AvatarPath != nil {
		//nolint:errcheck // best-effort removal of the shop avatar
		_ = s.files.Remove(*shop.AvatarPath)
	}

	return nil
}

func (s *Service) UpdateAvatar(
	ctx context.Context,
	callerID, shopID int64,
	upload io.Reader,
) (*Shop, error) {
	shop, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	if d := guard.OwnsShop(callerID, shop.ManagerID); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, core.ErrForbidden)
	}

	dir := "avatars/shops/" + strconv.FormatInt(shopID, 10)
	path, err := s.files.SaveImage(dir, upload)
	if err != nil {
		return nil, fmt.Errorf("save shop avatar: %w", err)
	}

	oldPath := shop.AvatarPath
	shop.AvatarPath = &path

	if err := s.repo.Update(ctx, shop); err != nil {
		//nolint:errcheck // cleanup of the orphaned upload
		_ = s.files.Remove(path)
		return nil, err
	}

	if oldPath != nil {
		//nolint:errcheck // best-effort removal of the replaced avatar
		_ = s.files.Remove(*oldPath)
	}

	return shop, nil
}

// ChangeOwner transfers the shop to another manager. The shop row, the
// staffed analysts' manager pointers and their assignment sets all move in
// one transaction; a failure at any step leaves no partial state behind.
func (s *Service) ChangeOwner(
	ctx context.Context,
	callerID, shopID, newManagerID int64,
) (*ChangeOwnerResponse, error) {
	var resp *ChangeOwnerResponse

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		shops := NewRepository(tx)
		users := user.NewRepository(tx)

		shop, err := shops.GetForUpdate(ctx, shopID)
		if err != nil {
			return err
		}

		if d := guard.OwnsShop(callerID, shop.ManagerID); !d.Allowed {
			return fmt.Errorf("%s: %w", d.Reason, core.ErrForbidden)
		}

		if shop.ManagerID == newManagerID {
			return ErrSameOwner
		}

		newOwner, err := users.GetByID(ctx, newManagerID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.NotFoundError("manager")
			}
			return fmt.Errorf("new owner: %w", err)
		}
		if !newOwner.IsManager() {
			return core.NotFoundError("manager")
		}

		staffIDs, err := shops.StaffedAnalystIDs(ctx, shopID)
		if err != nil {
			return err
		}

		if len(staffIDs) > 0 {
			if err := users.ReassignManager(ctx, staffIDs, newManagerID); err != nil {
				return err
			}
			if err := shops.DeleteAssignmentsFor(ctx, staffIDs); err != nil {
				return err
			}
		}

		updatedAt, err := shops.UpdateManager(ctx, shopID, newManagerID)
		if err != nil {
			return err
		}

		shop.ManagerID = newManagerID
		shop.UpdatedAt = updatedAt
		resp = &ChangeOwnerResponse{
			Shop: ToShopResponse(shop),
			NewOwner: OwnerInfo{
				ID:    newOwner.ID,
				Name:  newOwner.Name,
				Email: newOwner.Email,
			},
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// UpdateStaff applies one add or remove batch to the shop's roster. The
// batch is all-or-nothing: one already-staffed analyst fails an add, one
// unstaffed analyst fails a remove.
func (s *Service) UpdateStaff(
	ctx context.Context,
	callerID, shopID int64,
	op StaffOperation,
	analystIDs []int64,
) (*ShopCard, error) {
	analystIDs = uniqueIDs(analystIDs)

	var card *ShopCard

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		shops := NewRepository(tx)
		users := user.NewRepository(tx)

		shop, err := shops.GetForUpdate(ctx, shopID)
		if err != nil {
			return err
		}

		managers, err := users.SubordinateManagers(ctx, analystIDs)
		if err != nil {
			return err
		}

		decision := guard.Chain(
			func() guard.Decision {
				return guard.OwnsShop(callerID, shop.ManagerID)
			},
			func() guard.Decision {
				return guard.AllReportTo(callerID, analystIDs, managers)
			},
		)
		if !decision.Allowed {
			return fmt.Errorf("%s: %w", decision.Reason, core.ErrForbidden)
		}

		existing, err := shops.ExistingAssignments(ctx, shopID, analystIDs)
		if err != nil {
			return err
		}

		switch op {
		case StaffOperationAdd:
			if len(existing) > 0 {
				return fmt.Errorf("analyst %d: %w", existing[0], ErrAlreadyStaffed)
			}
			if err := shops.AddStaff(ctx, shopID, analystIDs); err != nil {
				return err
			}
		case StaffOperationRemove:
			if len(existing) != len(analystIDs) {
				missing := firstMissing(analystIDs, existing)
				return fmt.Errorf("analyst %d: %w", missing, ErrNotStaffed)
			}
			if err := shops.RemoveStaff(ctx, shopID, analystIDs); err != nil {
				return err
			}
		default:
			return fmt.Errorf(
				"staff operation %q: %w",
				op.String(),
				core.ErrForbidden,
			)
		}

		card, err = s.buildCardWith(ctx, shops, shop)
		return err
	})
	if err != nil {
		return nil, err
	}

	return card, nil
}

func (s *Service) buildCard(ctx context.Context, shop *Shop) (*ShopCard, error) {
	return s.buildCardWith(ctx, s.repo, shop)
}

func (s *Service) buildCardWith(
	ctx context.Context,
	repo Repository,
	shop *Shop,
) (*ShopCard, error) {
	staff, err := repo.ListStaff(ctx, shop.ID)
	if err != nil {
		return nil, err
	}

	return &ShopCard{
		ShopResponse: ToShopResponse(shop),
		Staff:        staff,
	}, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func firstMissing(requested, present []int64) int64 {
	presentSet := make(map[int64]struct{}, len(present))
	for _, id := range present {
		presentSet[id] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := presentSet[id]; !ok {
			return id
		}
	}
	return 0
}
