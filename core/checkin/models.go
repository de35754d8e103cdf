package checkin

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// CheckIn is a timestamped visit record with location and optional
// contact/sales data.
type CheckIn struct {
	ID           int          `json:"id" db:"id"`
	OrgID        int          `json:"org_id" db:"org_id"`
	BranchID     null.Int     `json:"branch_id,omitempty" db:"branch_id"`
	UserID       int          `json:"user_id" db:"user_id"`
	Lat          float64      `json:"lat" db:"lat"`
	Lng          float64      `json:"lng" db:"lng"`
	Address      null.String  `json:"address,omitempty" db:"address"` // reverse geocoded when absent
	ContactName  null.String  `json:"contact_name,omitempty" db:"contact_name"`
	ContactPhone null.String  `json:"contact_phone,omitempty" db:"contact_phone"`
	SaleAmount   null.Float64 `json:"sale_amount,omitempty" db:"sale_amount"`
	Notes        string       `json:"notes,omitempty" db:"notes"`
	CheckedInAt  time.Time    `json:"checked_in_at" db:"checked_in_at"` // UTC
	CheckedOutAt null.Time    `json:"checked_out_at,omitempty" db:"checked_out_at"`
	IsDeleted    bool         `json:"-" db:"is_deleted"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

func (c *CheckIn) Point() core.Point { return core.Point{Lat: c.Lat, Lng: c.Lng} }

// Duration reports the visit length; zero until checked out.
func (c *CheckIn) Duration() time.Duration {
	if !c.CheckedOutAt.Valid {
		return 0
	}
	return c.CheckedOutAt.Time.Sub(c.CheckedInAt)
}

// NewCheckIn contains information needed to create a new CheckIn.
type NewCheckIn struct {
	OrgID        int          `json:"-"`
	BranchID     null.Int     `json:"-"`
	UserID       int          `json:"-"`
	Lat          float64      `json:"lat" validate:"latitude"`
	Lng          float64      `json:"lng" validate:"longitude"`
	Address      null.String  `json:"address"`
	ContactName  null.String  `json:"contact_name"`
	ContactPhone null.String  `json:"contact_phone"`
	SaleAmount   null.Float64 `json:"sale_amount" validate:"omitempty,min=0"`
	Notes        string       `json:"notes"`
	CheckedInAt  time.Time    `json:"checked_in_at"`
}

func (nc *NewCheckIn) Validate() error {
	nc.Notes = core.CleanString(nc.Notes)
	if nc.CheckedInAt.IsZero() {
		nc.CheckedInAt = time.Now().UTC()
	}
	return core.Validate.Struct(nc)
}

// UpdateCheckIn defines what information may be provided to modify an existing CheckIn.
type UpdateCheckIn struct {
	Address      null.String  `json:"address"`
	ContactName  null.String  `json:"contact_name"`
	ContactPhone null.String  `json:"contact_phone"`
	SaleAmount   null.Float64 `json:"sale_amount" validate:"omitempty,min=0"`
	Notes        null.String  `json:"notes"`
}

func (uc *UpdateCheckIn) Validate() error { return core.Validate.Struct(uc) }

// CheckOut closes an open visit.
type CheckOut struct {
	CheckedOutAt time.Time    `json:"checked_out_at"`
	SaleAmount   null.Float64 `json:"sale_amount" validate:"omitempty,min=0"`
}

func (co *CheckOut) Validate(orig CheckIn) error {
	if co.CheckedOutAt.IsZero() {
		co.CheckedOutAt = time.Now().UTC()
	}
	if !co.CheckedOutAt.After(orig.CheckedInAt) {
		return core.NewFieldError("checked_out_at", "check-out must come after check-in")
	}
	return core.Validate.Struct(co)
}

type QueryFilter struct {
	OrgID    int       `query:"-"`
	BranchID null.Int  `query:"branch_id"`
	UserID   null.Int  `query:"user_id"`
	Search   string    `query:"search"`
	Open     *bool     `query:"open"` // not yet checked out
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`

	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Pagination.Clean()
}
