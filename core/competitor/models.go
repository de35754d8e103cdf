package competitor

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// Competitor is market intelligence gathered by field reps: who else operates
// in the territory, where, and at what prices.
type Competitor struct {
	ID          int          `json:"id" db:"id"`
	OrgID       int          `json:"org_id" db:"org_id"`
	BranchID    null.Int     `json:"branch_id,omitempty" db:"branch_id"`
	Name        string       `json:"name" db:"name"`
	Industry    string       `json:"industry,omitempty" db:"industry"`
	Address     core.JSONMap `json:"address,omitempty" db:"address"`
	SocialMedia core.JSONMap `json:"social_media,omitempty" db:"social_media"`
	Pricing     core.JSONMap `json:"pricing,omitempty" db:"pricing"`
	Notes       string       `json:"notes,omitempty" db:"notes"`
	IsDeleted   bool         `json:"-" db:"is_deleted"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

// NewCompetitor contains information needed to create a new Competitor.
type NewCompetitor struct {
	OrgID       int          `json:"-"`
	BranchID    null.Int     `json:"-"`
	Name        string       `json:"name" validate:"required"`
	Industry    string       `json:"industry"`
	Address     core.JSONMap `json:"address"`
	SocialMedia core.JSONMap `json:"social_media"`
	Pricing     core.JSONMap `json:"pricing"`
	Notes       string       `json:"notes"`
}

func (nc *NewCompetitor) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Industry = core.CleanString(nc.Industry)
	nc.Notes = core.CleanString(nc.Notes)
	return core.Validate.Struct(nc)
}

// UpdateCompetitor defines what information may be provided to modify an existing Competitor.
type UpdateCompetitor struct {
	Name        string       `json:"name"`
	Industry    null.String  `json:"industry"`
	Address     core.JSONMap `json:"address"`
	SocialMedia core.JSONMap `json:"social_media"`
	Pricing     core.JSONMap `json:"pricing"`
	Notes       null.String  `json:"notes"`
}

func (uc *UpdateCompetitor) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

type QueryFilter struct {
	OrgID    int      `query:"-"`
	BranchID null.Int `query:"branch_id"`
	Search   string   `query:"search"`
	Industry string   `query:"industry"`

	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Industry = core.CleanString(qf.Industry)
	qf.Pagination.Clean()
}
