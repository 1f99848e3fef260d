// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shoplytics/backoffice/internal/auth"
	"github.com/shoplytics/backoffice/internal/core"
	"github.com/shoplytics/backoffice/internal/storage"
)

type Service struct {
	repo  Repository
	files *storage.Store
}

func NewService(repo Repository, files *storage.Store) *Service {
	return &Service{repo: repo, files: files}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers a new manager account. Analysts are never self-registered;
// they are created by their manager via CreateAnalyst.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	user := &User{
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleManager,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID int64,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID int64,
	req UpdateUserRequest,
) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteMe(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.SoftDelete(ctx, userID)
}

// UpdateAvatar stores the uploaded image and swaps the user's avatar path,
// removing the previous file best-effort.
func (s *Service) UpdateAvatar(
	ctx context.Context,
	userID int64,
	upload io.Reader,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dir := "avatars/users/" + strconv.FormatInt(userID, 10)
	path, err := s.files.SaveImage(dir, upload)
	if err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	oldPath := user.AvatarPath
	user.AvatarPath = &path

	if err := s.repo.Update(ctx, user); err != nil {
		//nolint:errcheck // cleanup of the orphaned upload
		_ = s.files.Remove(path)
		return nil, err
	}

	if oldPath != nil {
		//nolint:errcheck // best-effort removal of the replaced avatar
		_ = s.files.Remove(*oldPath)
	}

	return user, nil
}

// CreateAnalyst creates a subordinate analyst account reporting to the
// calling manager.
func (s *Service) CreateAnalyst(
	ctx context.Context,
	managerID int64,
	req CreateAnalystRequest,
) (*User, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	analyst := &User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         RoleAnalyst,
		ManagerID:    &managerID,
	}

	if err := s.repo.Create(ctx, analyst); err != nil {
		return nil, err
	}

	return analyst, nil
}

func (s *Service) ListAnalysts(
	ctx context.Context,
	managerID int64,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.ListSubordinates(ctx, managerID, params)
}

func (s *Service) GetAnalyst(
	ctx context.Context,
	managerID, analystID int64,
) (*User, error) {
	analyst, err := s.repo.GetByID(ctx, analystID)
	if err != nil {
		return nil, err
	}

	if !analyst.IsAnalyst() || !analyst.ReportsTo(managerID) {
		return nil, fmt.Errorf(
			"analyst does not report to the caller: %w",
			core.ErrForbidden,
		)
	}

	return analyst, nil
}

func (s *Service) DeleteAnalyst(
	ctx context.Context,
	managerID, analystID int64,
) error {
	if _, err := s.GetAnalyst(ctx, managerID, analystID); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, analystID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// CanDeleteUser allows self-deletion for anyone, and otherwise restricts
// deletion to root. Root accounts cannot be deleted by anyone else.
func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID int64,
) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsRoot() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsRoot() {
		return fmt.Errorf("cannot delete root users: %w", core.ErrForbidden)
	}

	return nil
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
