package org

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Organisation is the top-level tenancy unit; every other row is scoped to one.
type Organisation struct {
	ID        int          `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Slug      string       `json:"slug" db:"slug"`
	Timezone  string       `json:"timezone" db:"timezone"`
	Settings  core.JSONMap `json:"settings,omitempty" db:"settings"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

// Branch is an optional second tenancy level under an Organisation.
type Branch struct {
	ID        int          `json:"id" db:"id"`
	OrgID     int          `json:"org_id" db:"org_id"`
	Name      string       `json:"name" db:"name"`
	Address   core.JSONMap `json:"address,omitempty" db:"address"`
	Lat       null.Float64 `json:"lat,omitempty" db:"lat"`
	Lng       null.Float64 `json:"lng,omitempty" db:"lng"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

// NewOrganisation contains information needed to create a new Organisation.
type NewOrganisation struct {
	Name     string       `json:"name" validate:"required"`
	Slug     string       `json:"slug" validate:"required,slug"`
	Timezone string       `json:"timezone"`
	Settings core.JSONMap `json:"settings"`
}

func (no *NewOrganisation) Validate(svc ServiceInterface) error {
	no.Name = core.CleanString(no.Name)
	no.Slug = core.CleanString(no.Slug, true /* lower */)
	if no.Timezone == "" {
		no.Timezone = "UTC"
	}

	if err := core.Validate.Struct(no); err != nil {
		return err
	}
	return svc.CheckSlugUniqueness(no.Slug)
}

// UpdateOrganisation defines what information may be provided to modify an existing Organisation.
type UpdateOrganisation struct {
	Name     string       `json:"name"`
	Timezone string       `json:"timezone"`
	Settings core.JSONMap `json:"settings"`
	IsActive *bool        `json:"is_active"`
}

func (uo *UpdateOrganisation) Validate(orig Organisation) error {
	name := core.CleanString(uo.Name)
	if name != "" {
		uo.Name = name
	} else {
		uo.Name = orig.Name
	}
	if uo.Timezone == "" {
		uo.Timezone = orig.Timezone
	}
	return core.Validate.Struct(uo)
}

// NewBranch contains information needed to create a new Branch.
type NewBranch struct {
	OrgID   int          `json:"-"`
	Name    string       `json:"name" validate:"required"`
	Address core.JSONMap `json:"address"`
	Lat     null.Float64 `json:"lat" validate:"omitempty,latitude"`
	Lng     null.Float64 `json:"lng" validate:"omitempty,longitude"`
}

func (nb *NewBranch) Validate() error {
	nb.Name = core.CleanString(nb.Name)
	return core.Validate.Struct(nb)
}

// UpdateBranch defines what information may be provided to modify an existing Branch.
type UpdateBranch struct {
	Name     string       `json:"name"`
	Address  core.JSONMap `json:"address"`
	Lat      null.Float64 `json:"lat" validate:"omitempty,latitude"`
	Lng      null.Float64 `json:"lng" validate:"omitempty,longitude"`
	IsActive *bool        `json:"is_active"`
}

func (ub *UpdateBranch) Validate(orig Branch) error {
	name := core.CleanString(ub.Name)
	if name != "" {
		ub.Name = name
	} else {
		ub.Name = orig.Name
	}
	return core.Validate.Struct(ub)
}

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

var (
	slugTag  = "slug"
	slugText = "only lowercase letters, digits and hyphens are allowed"
)

func init() {
	_ = core.Validate.RegisterValidation(slugTag, slugValidation)
	core.RegisterCustomTranslation(slugTag, slugText)
}

// slugValidation only allows lowercase kebab-case identifiers.
func slugValidation(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}
