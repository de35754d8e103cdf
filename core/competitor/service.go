package competitor

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/kazi/core"
)

// ErrNotFound is returned when no live Competitor matches.
var ErrNotFound = errors.New("competitor not found")

type (
	Repository interface {
		CreateCompetitor(ctx context.Context, c Competitor) (Competitor, error)
		GetCompetitorByID(ctx context.Context, orgID, id int) (Competitor, error)
		FilterCompetitors(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Competitor, int, error)
		UpdateCompetitor(ctx context.Context, c Competitor) (Competitor, error)
		SoftDeleteCompetitors(ctx context.Context, orgID int, ids ...int) error
		RestoreCompetitors(ctx context.Context, orgID int, ids ...int) error
		HardDeleteCompetitors(ctx context.Context, orgID int, ids ...int) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewCompetitor) (Competitor, error)
		GetByID(ctx context.Context, orgID, id int) (Competitor, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Competitor, int, error)
		Update(ctx context.Context, orgID, id int, uc UpdateCompetitor) (Competitor, error)
		Delete(ctx context.Context, orgID int, ids ...int) error
		Restore(ctx context.Context, orgID int, ids ...int) error
		HardDelete(ctx context.Context, orgID int, ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCompetitor) (Competitor, error) {
	now := time.Now().UTC()
	c := Competitor{
		OrgID:       nc.OrgID,
		BranchID:    nc.BranchID,
		Name:        nc.Name,
		Industry:    nc.Industry,
		Address:     nc.Address,
		SocialMedia: nc.SocialMedia,
		Pricing:     nc.Pricing,
		Notes:       nc.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCompetitor(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, orgID, id int) (Competitor, error) {
	return svc.repo.GetCompetitorByID(ctx, orgID, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Competitor, int, error) {
	return svc.repo.FilterCompetitors(ctx, filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, orgID, id int, uc UpdateCompetitor) (Competitor, error) {
	orig, err := svc.repo.GetCompetitorByID(ctx, orgID, id)
	if err != nil {
		return Competitor{}, err
	}
	if uc.Name != "" {
		orig.Name = uc.Name
	}
	if uc.Industry.Valid {
		orig.Industry = core.CleanString(uc.Industry.String)
	}
	if uc.Address != nil {
		orig.Address = uc.Address
	}
	if uc.SocialMedia != nil {
		orig.SocialMedia = uc.SocialMedia
	}
	if uc.Pricing != nil {
		orig.Pricing = uc.Pricing
	}
	if uc.Notes.Valid {
		orig.Notes = core.CleanString(uc.Notes.String)
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCompetitor(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.SoftDeleteCompetitors(ctx, orgID, ids...)
}

func (svc *Service) Restore(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.RestoreCompetitors(ctx, orgID, ids...)
}

func (svc *Service) HardDelete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.HardDeleteCompetitors(ctx, orgID, ids...)
}
