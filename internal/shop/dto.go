// AngelaMos | 2026
// dto.go

package shop

import (
	"time"
)

type CreateShopRequest struct {
	Name string `json:"name" validate:"required,min=1,max=150"`
}

type UpdateShopRequest struct {
	Name string `json:"name" validate:"required,min=1,max=150"`
}

type ChangeOwnerRequest struct {
	ManagerID int64 `json:"manager_id" validate:"required,gt=0"`
}

type UpdateStaffRequest struct {
	AnalystIDs []int64 `json:"analyst_ids" validate:"required,min=1,dive,gt=0"`
}

type ShopResponse struct {
	ID         int64     `json:"id"`
	UUID       string    `json:"uuid"`
	Name       string    `json:"name"`
	ManagerID  int64     `json:"manager_id"`
	AvatarPath *string   `json:"avatar_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ShopCard is a shop plus its current staff roster.
type ShopCard struct {
	ShopResponse
	Staff []StaffMember `json:"staff"`
}

type OwnerInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChangeOwnerResponse struct {
	Shop     ShopResponse `json:"shop"`
	NewOwner OwnerInfo    `json:"new_owner"`
}

type ListShopsParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p *ListShopsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListShopsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToShopResponse(s *Shop) ShopResponse {
	return ShopResponse{
		ID:         s.ID,
		UUID:       s.UUID,
		Name:       s.Name,
		ManagerID:  s.ManagerID,
		AvatarPath: s.AvatarPath,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func ToShopResponseList(shops []Shop) []ShopResponse {
	responses := make([]ShopResponse, 0, len(shops))
	for _, s := range shops {
		responses = append(responses, ToShopResponse(&s))
	}
	return responses
}
