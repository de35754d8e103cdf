package lead

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// Statuses (funnel order)
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// FunnelStatuses lists every status in funnel order.
var FunnelStatuses = []string{StatusNew, StatusContacted, StatusQualified, StatusWon, StatusLost}

// Lead is a prospective customer, optionally assigned to an owning user and
// optionally geo-tagged for map rendering.
type Lead struct {
	ID        int          `json:"id" db:"id"`
	OrgID     int          `json:"org_id" db:"org_id"`
	BranchID  null.Int     `json:"branch_id,omitempty" db:"branch_id"`
	OwnerID   null.Int     `json:"owner_id,omitempty" db:"owner_id"`
	Name      string       `json:"name" db:"name"`
	Company   string       `json:"company,omitempty" db:"company"`
	Phone     string       `json:"phone,omitempty" db:"phone"`
	Email     string       `json:"email,omitempty" db:"email"`
	Source    string       `json:"source,omitempty" db:"source"`
	Status    string       `json:"status" db:"status"`
	Value     null.Float64 `json:"value,omitempty" db:"value"` // estimated deal value
	Lat       null.Float64 `json:"lat,omitempty" db:"lat"`
	Lng       null.Float64 `json:"lng,omitempty" db:"lng"`
	IsDeleted bool         `json:"-" db:"is_deleted"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

func (l *Lead) HasLocation() bool { return l.Lat.Valid && l.Lng.Valid }

func (l *Lead) Point() core.Point {
	return core.Point{Lat: l.Lat.Float64, Lng: l.Lng.Float64}
}

// NewLead contains information needed to create a new Lead.
type NewLead struct {
	OrgID    int          `json:"-"`
	BranchID null.Int     `json:"-"`
	OwnerID  null.Int     `json:"owner_id"`
	Name     string       `json:"name" validate:"required"`
	Company  string       `json:"company"`
	Phone    string       `json:"phone"`
	Email    string       `json:"email" validate:"omitempty,email"`
	Source   string       `json:"source"`
	Status   string       `json:"status" validate:"omitempty,oneof=new contacted qualified won lost"`
	Value    null.Float64 `json:"value" validate:"omitempty,min=0"`
	Lat      null.Float64 `json:"lat" validate:"omitempty,latitude"`
	Lng      null.Float64 `json:"lng" validate:"omitempty,longitude"`
}

func (nl *NewLead) clean() {
	nl.Name = core.CleanString(nl.Name)
	nl.Company = core.CleanString(nl.Company)
	nl.Phone = core.CleanString(nl.Phone)
	nl.Email = core.CleanString(nl.Email, true /* lower */)
	nl.Source = core.CleanString(nl.Source, true /* lower */)
	nl.Status = core.CleanString(nl.Status, true /* lower */)
	if nl.Status == "" {
		nl.Status = StatusNew
	}
}

func (nl *NewLead) Validate() error {
	nl.clean()
	return core.Validate.Struct(nl)
}

// UpdateLead defines what information may be provided to modify an existing Lead.
type UpdateLead struct {
	OwnerID null.Int     `json:"owner_id"`
	Name    string       `json:"name"`
	Company null.String  `json:"company"`
	Phone   null.String  `json:"phone"`
	Email   null.String  `json:"email"`
	Source  null.String  `json:"source"`
	Status  string       `json:"status" validate:"omitempty,oneof=new contacted qualified won lost"`
	Value   null.Float64 `json:"value" validate:"omitempty,min=0"`
	Lat     null.Float64 `json:"lat" validate:"omitempty,latitude"`
	Lng     null.Float64 `json:"lng" validate:"omitempty,longitude"`
}

func (ul *UpdateLead) Validate() error {
	ul.Name = core.CleanString(ul.Name)
	ul.Status = core.CleanString(ul.Status, true /* lower */)
	return core.Validate.Struct(ul)
}

// BatchCreate is a bulk lead import request.
type BatchCreate struct {
	OrgID    int       `json:"-"`
	BranchID null.Int  `json:"-"`
	Leads    []NewLead `json:"leads" validate:"required,min=1,max=10000,dive"`
}

func (bc *BatchCreate) Validate() error {
	for i := range bc.Leads {
		bc.Leads[i].clean()
	}
	return core.Validate.Struct(bc)
}

// BatchChunkResult reports the outcome of one imported chunk: either all of
// its rows were committed, or the whole chunk rolled back with Error set.
type BatchChunkResult struct {
	FromIndex int    `json:"from_index"`
	ToIndex   int    `json:"to_index"` // exclusive
	Created   int    `json:"created"`
	Error     string `json:"error,omitempty"`
}

// BatchResult aggregates per-chunk outcomes; partial success is expected.
type BatchResult struct {
	BatchID string             `json:"batch_id"`
	Total   int                `json:"total"`
	Created int                `json:"created"`
	Failed  int                `json:"failed"`
	Chunks  []BatchChunkResult `json:"chunks"`
}

type QueryFilter struct {
	OrgID    int       `query:"-"`
	BranchID null.Int  `query:"branch_id"`
	OwnerID  null.Int  `query:"owner_id"`
	Search   string    `query:"search"`
	Status   string    `query:"status"`
	Source   string    `query:"source"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`

	core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Source = core.CleanString(qf.Source, true /* lower */)
	qf.Pagination.Clean()
}
