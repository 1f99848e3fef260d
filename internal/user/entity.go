// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           int64      `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	ManagerID    *int64     `db:"manager_id"`
	AvatarPath   *string    `db:"avatar_path"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

const (
	RoleRoot    = "root"
	RoleManager = "manager"
	RoleAnalyst = "analyst"
)

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsRoot() bool {
	return u.Role == RoleRoot
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsAnalyst() bool {
	return u.Role == RoleAnalyst
}

// ReportsTo reports whether this user is a subordinate of the given manager.
func (u *User) ReportsTo(managerID int64) bool {
	return u.ManagerID != nil && *u.ManagerID == managerID
}
