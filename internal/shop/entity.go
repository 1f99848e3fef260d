// AngelaMos | 2026
// entity.go

package shop

import (
	"time"
)

// Shop is an analytics storefront owned by exactly one manager. The uuid is
// assigned at creation and never changes, even across ownership transfers.
type Shop struct {
	ID         int64     `db:"id"`
	UUID       string    `db:"uuid"`
	Name       string    `db:"name"`
	ManagerID  int64     `db:"manager_id"`
	AvatarPath *string   `db:"avatar_path"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (s *Shop) OwnedBy(userID int64) bool {
	return s.ManagerID == userID
}

// StaffMember is a staffed analyst as listed on a shop card.
type StaffMember struct {
	ID    int64  `db:"id"    json:"id"`
	Name  string `db:"name"  json:"name"`
	Email string `db:"email" json:"email"`
}
