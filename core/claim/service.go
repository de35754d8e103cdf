package claim

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

var (
	// errors
	ErrNotFound        = errors.New("claim not found")
	ErrAlreadyReviewed = errors.New("claim has already been reviewed")
)

type (
	Repository interface {
		CreateClaim(ctx context.Context, c Claim) (Claim, error)
		GetClaimByID(ctx context.Context, orgID, id int) (Claim, error)
		FilterClaims(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Claim, int, error)
		UpdateClaim(ctx context.Context, c Claim) (Claim, error)
		SoftDeleteClaims(ctx context.Context, orgID int, ids ...int) error
		RestoreClaims(ctx context.Context, orgID int, ids ...int) error
		HardDeleteClaims(ctx context.Context, orgID int, ids ...int) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewClaim) (Claim, error)
		GetByID(ctx context.Context, orgID, id int) (Claim, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Claim, int, error)
		Update(ctx context.Context, orgID, id int, uc UpdateClaim) (Claim, error)
		Review(ctx context.Context, orgID, id int, rv Review) (Claim, error)
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

func (svc *Service) Create(ctx context.Context, nc NewClaim) (Claim, error) {
	now := time.Now().UTC()
	c := Claim{
		OrgID:       nc.OrgID,
		BranchID:    nc.BranchID,
		UserID:      nc.UserID,
		Category:    nc.Category,
		Amount:      nc.Amount,
		Currency:    nc.Currency,
		Description: nc.Description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateClaim(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, orgID, id int) (Claim, error) {
	return svc.repo.GetClaimByID(ctx, orgID, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Claim, int, error) {
	return svc.repo.FilterClaims(ctx, filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, orgID, id int, uc UpdateClaim) (Claim, error) {
	orig, err := svc.repo.GetClaimByID(ctx, orgID, id)
	if err != nil {
		return Claim{}, err
	}
	// only pending claims may be edited
	if !orig.IsPending() {
		return Claim{}, ErrAlreadyReviewed
	}
	if uc.Category != "" {
		orig.Category = uc.Category
	}
	if uc.Amount.Valid {
		orig.Amount = uc.Amount.Float64
	}
	if uc.Currency != "" {
		orig.Currency = uc.Currency
	}
	if uc.Description.Valid {
		orig.Description = core.CleanString(uc.Description.String)
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClaim(ctx, orig)
}

func (svc *Service) Review(ctx context.Context, orgID, id int, rv Review) (Claim, error) {
	orig, err := svc.repo.GetClaimByID(ctx, orgID, id)
	if err != nil {
		return Claim{}, err
	}
	if !orig.IsPending() {
		return Claim{}, ErrAlreadyReviewed
	}

	if rv.Approve {
		orig.Status = StatusApproved
	} else {
		orig.Status = StatusRejected
	}
	now := time.Now().UTC()
	orig.ReviewedBy = null.IntFrom(rv.ReviewerID)
	orig.ReviewedAt = null.TimeFrom(now)
	orig.ReviewNote = rv.Note
	orig.UpdatedAt = now
	return svc.repo.UpdateClaim(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.SoftDeleteClaims(ctx, orgID, ids...)
}

func (svc *Service) Restore(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.RestoreClaims(ctx, orgID, ids...)
}

func (svc *Service) HardDelete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.HardDeleteClaims(ctx, orgID, ids...)
}
