package journal

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// Kinds
const (
	KindJournal    = "journal"
	KindInspection = "inspection"
)

// Journal is a free-form field diary entry; inspections additionally carry a
// 0-100 score and usually a location.
type Journal struct {
	ID        int          `json:"id" db:"id"`
	OrgID     int          `json:"org_id" db:"org_id"`
	BranchID  null.Int     `json:"branch_id,omitempty" db:"branch_id"`
	UserID    int          `json:"user_id" db:"user_id"`
	Kind      string       `json:"kind" db:"kind"`
	Title     string       `json:"title" db:"title"`
	Body      string       `json:"body,omitempty" db:"body"`
	Score     null.Int     `json:"score,omitempty" db:"score"` // inspections only
	Lat       null.Float64 `json:"lat,omitempty" db:"lat"`
	Lng       null.Float64 `json:"lng,omitempty" db:"lng"`
	IsDeleted bool         `json:"-" db:"is_deleted"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

func (j *Journal) IsInspection() bool { return j.Kind == KindInspection }

func (j *Journal) HasLocation() bool { return j.Lat.Valid && j.Lng.Valid }

func (j *Journal) Point() core.Point {
	return core.Point{Lat: j.Lat.Float64, Lng: j.Lng.Float64}
}

// NewJournal contains information needed to create a new Journal.
type NewJournal struct {
	OrgID    int          `json:"-"`
	BranchID null.Int     `json:"-"`
	UserID   int          `json:"-"`
	Kind     string       `json:"kind" validate:"required,oneof=journal inspection"`
	Title    string       `json:"title" validate:"required"`
	Body     string       `json:"body"`
	Score    null.Int     `json:"score" validate:"omitempty,min=0,max=100"`
	Lat      null.Float64 `json:"lat" validate:"omitempty,latitude"`
	Lng      null.Float64 `json:"lng" validate:"omitempty,longitude"`
}

func (nj *NewJournal) Validate() error {
	nj.Kind = core.CleanString(nj.Kind, true /* lower */)
	nj.Title = core.CleanString(nj.Title)
	nj.Body = core.CleanString(nj.Body)

	if err := core.Validate.Struct(nj); err != nil {
		return err
	}
	if nj.Score.Valid && nj.Kind != KindInspection {
		return core.NewFieldError("score", "only inspections carry a score")
	}
	return nil
}

// UpdateJournal defines what information may be provided to modify an existing Journal.
type UpdateJournal struct {
	Title string       `json:"title"`
	Body  null.String  `json:"body"`
	Score null.Int     `json:"score" validate:"omitempty,min=0,max=100"`
	Lat   null.Float64 `json:"lat" validate:"omitempty,latitude"`
	Lng   null.Float64 `json:"lng" validate:"omitempty,longitude"`
}

func (uj *UpdateJournal) Validate() error {
	uj.Title = core.CleanString(uj.Title)
	return core.Validate.Struct(uj)
}

type QueryFilter struct {
	OrgID    int       `query:"-"`
	BranchID null.Int  `query:"branch_id"`
	UserID   null.Int  `query:"user_id"`
	Kind     string    `query:"kind"`
	Search   string    `query:"search"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`

	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Kind = core.CleanString(qf.Kind, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
	qf.Pagination.Clean()
}
