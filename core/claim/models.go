package claim

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Claim is an expense/reimbursement request filed by a field user.
type Claim struct {
	ID          int         `json:"id" db:"id"`
	OrgID       int         `json:"org_id" db:"org_id"`
	BranchID    null.Int    `json:"branch_id,omitempty" db:"branch_id"`
	UserID      int         `json:"user_id" db:"user_id"`
	Category    string      `json:"category" db:"category"`
	Amount      float64     `json:"amount" db:"amount"`
	Currency    string      `json:"currency" db:"currency"`
	Description string      `json:"description,omitempty" db:"description"`
	Status      string      `json:"status" db:"status"`
	ReviewedBy  null.Int    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt  null.Time   `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewNote  null.String `json:"review_note,omitempty" db:"review_note"`
	IsDeleted   bool        `json:"-" db:"is_deleted"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (c *Claim) IsPending() bool { return c.Status == StatusPending }

// NewClaim contains information needed to create a new Claim.
type NewClaim struct {
	OrgID       int      `json:"-"`
	BranchID    null.Int `json:"-"`
	UserID      int      `json:"-"`
	Category    string   `json:"category" validate:"required"`
	Amount      float64  `json:"amount" validate:"required,gt=0"`
	Currency    string   `json:"currency" validate:"omitempty,iso4217"`
	Description string   `json:"description"`
}

func (nc *NewClaim) Validate() error {
	nc.Category = core.CleanString(nc.Category, true /* lower */)
	nc.Description = core.CleanString(nc.Description)
	nc.Currency = core.CleanString(nc.Currency)
	if nc.Currency == "" {
		nc.Currency = "USD"
	}
	return core.Validate.Struct(nc)
}

// UpdateClaim defines what information may be provided to modify a pending Claim.
type UpdateClaim struct {
	Category    string       `json:"category"`
	Amount      null.Float64 `json:"amount" validate:"omitempty,gt=0"`
	Currency    string       `json:"currency" validate:"omitempty,iso4217"`
	Description null.String  `json:"description"`
}

func (uc *UpdateClaim) Validate() error {
	uc.Category = core.CleanString(uc.Category, true /* lower */)
	uc.Currency = core.CleanString(uc.Currency)
	return core.Validate.Struct(uc)
}

// Review approves or rejects a pending Claim.
type Review struct {
	ReviewerID int         `json:"-"`
	Approve    bool        `json:"approve"`
	Note       null.String `json:"note"`
}

type QueryFilter struct {
	OrgID    int       `query:"-"`
	BranchID null.Int  `query:"branch_id"`
	UserID   null.Int  `query:"user_id"`
	Status   string    `query:"status"`
	Category string    `query:"category"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`

	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Pagination.Clean()
}
