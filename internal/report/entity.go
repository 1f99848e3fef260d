// AngelaMos | 2026
// entity.go

package report

import (
	"time"
)

// Report is an analyst-authored document attached to a shop. The file on
// disk lives and dies with the row.
type Report struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	FilePath  string    `db:"file_path"`
	Comment   string    `db:"comment"`
	Seen      bool      `db:"seen"`
	ShopID    int64     `db:"shop_id"`
	AnalystID int64     `db:"analyst_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *Report) CreatedBy(userID int64) bool {
	return r.AnalystID == userID
}
