package org

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/kazi/core"
)

var (
	// errors
	ErrNotFound       = errors.New("organisation not found")
	ErrBranchNotFound = errors.New("branch not found")
	ErrSlugExists     = errors.New("an organisation with this slug already exists")
)

type (
	Repository interface {
		CheckSlugUniqueness(ctx context.Context, slug string) error
		CreateOrganisation(ctx context.Context, o Organisation) (Organisation, error)
		GetOrganisationByID(ctx context.Context, id int) (Organisation, error)
		GetOrganisationBySlug(ctx context.Context, slug string) (Organisation, error)
		FilterOrganisations(ctx context.Context, filter QueryFilter) ([]Organisation, error)
		UpdateOrganisation(ctx context.Context, o Organisation, isActive *bool) (Organisation, error)

		CreateBranch(ctx context.Context, b Branch) (Branch, error)
		GetBranchByID(ctx context.Context, orgID, id int) (Branch, error)
		FilterBranches(ctx context.Context, orgID int, filter QueryFilter) ([]Branch, error)
		UpdateBranch(ctx context.Context, b Branch, isActive *bool) (Branch, error)
	}

	ServiceInterface interface {
		CheckSlugUniqueness(slug string) error
		Create(ctx context.Context, no NewOrganisation) (Organisation, error)
		GetByID(ctx context.Context, id int) (Organisation, error)
		GetBySlug(ctx context.Context, slug string) (Organisation, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Organisation, error)
		Update(ctx context.Context, id int, uo UpdateOrganisation) (Organisation, error)

		CreateBranch(ctx context.Context, nb NewBranch) (Branch, error)
		GetBranchByID(ctx context.Context, orgID, id int) (Branch, error)
		FilterBranches(ctx context.Context, orgID int, filter QueryFilter) ([]Branch, error)
		UpdateBranch(ctx context.Context, orgID, id int, ub UpdateBranch) (Branch, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckSlugUniqueness(slug string) error {
	if err := svc.repo.CheckSlugUniqueness(context.Background(), slug); err != nil {
		if err == ErrSlugExists {
			return core.NewUniquenessError(err, "slug")
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, no NewOrganisation) (Organisation, error) {
	now := time.Now().UTC()
	o := Organisation{
		Name:      no.Name,
		Slug:      no.Slug,
		Timezone:  no.Timezone,
		Settings:  no.Settings,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateOrganisation(ctx, o)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Organisation, error) {
	return svc.repo.GetOrganisationByID(ctx, id)
}

func (svc *Service) GetBySlug(ctx context.Context, slug string) (Organisation, error) {
	return svc.repo.GetOrganisationBySlug(ctx, core.CleanString(slug, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Organisation, error) {
	return svc.repo.FilterOrganisations(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, uo UpdateOrganisation) (Organisation, error) {
	o := Organisation{
		ID:        id,
		Name:      uo.Name,
		Timezone:  uo.Timezone,
		Settings:  uo.Settings,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateOrganisation(ctx, o, uo.IsActive)
}

func (svc *Service) CreateBranch(ctx context.Context, nb NewBranch) (Branch, error) {
	now := time.Now().UTC()
	b := Branch{
		OrgID:     nb.OrgID,
		Name:      nb.Name,
		Address:   nb.Address,
		Lat:       nb.Lat,
		Lng:       nb.Lng,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBranch(ctx, b)
}

func (svc *Service) GetBranchByID(ctx context.Context, orgID, id int) (Branch, error) {
	return svc.repo.GetBranchByID(ctx, orgID, id)
}

func (svc *Service) FilterBranches(ctx context.Context, orgID int, filter QueryFilter) ([]Branch, error) {
	return svc.repo.FilterBranches(ctx, orgID, filter)
}

func (svc *Service) UpdateBranch(ctx context.Context, orgID, id int, ub UpdateBranch) (Branch, error) {
	b := Branch{
		ID:        id,
		OrgID:     orgID,
		Name:      ub.Name,
		Address:   ub.Address,
		Lat:       ub.Lat,
		Lng:       ub.Lng,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateBranch(ctx, b, ub.IsActive)
}
