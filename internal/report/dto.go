// AngelaMos | 2026
// dto.go

package report

import (
	"time"
)

type CreateReportRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=150"`
	Comment string `json:"comment" validate:"max=2000"`
}

type UpdateReportRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=150"`
	Comment string `json:"comment" validate:"max=2000"`
}

type SetSeenRequest struct {
	Seen bool `json:"seen"`
}

type ReportResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	Seen      bool      `json:"seen"`
	ShopID    int64     `json:"shop_id"`
	AnalystID int64     `json:"analyst_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListReportsParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p *ListReportsParams) Normalize() {
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

func (p *ListReportsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToReportResponse(r *Report) ReportResponse {
	return ReportResponse{
		ID:        r.ID,
		Name:      r.Name,
		Comment:   r.Comment,
		Seen:      r.Seen,
		ShopID:    r.ShopID,
		AnalystID: r.AnalystID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func ToReportResponseList(reports []Report) []ReportResponse {
	responses := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		responses = append(responses, ToReportResponse(&r))
	}
	return responses
}
