package journal

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/kazi/core"
)

// ErrNotFound is returned when no live Journal matches.
var ErrNotFound = errors.New("journal not found")

type (
	Repository interface {
		CreateJournal(ctx context.Context, j Journal) (Journal, error)
		GetJournalByID(ctx context.Context, orgID, id int) (Journal, error)
		FilterJournals(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Journal, int, error)
		UpdateJournal(ctx context.Context, j Journal) (Journal, error)
		SoftDeleteJournals(ctx context.Context, orgID int, ids ...int) error
		RestoreJournals(ctx context.Context, orgID int, ids ...int) error
		HardDeleteJournals(ctx context.Context, orgID int, ids ...int) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nj NewJournal) (Journal, error)
		GetByID(ctx context.Context, orgID, id int) (Journal, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Journal, int, error)
		Update(ctx context.Context, orgID, id int, uj UpdateJournal) (Journal, error)
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

func (svc *Service) Create(ctx context.Context, nj NewJournal) (Journal, error) {
	now := time.Now().UTC()
	j := Journal{
		OrgID:     nj.OrgID,
		BranchID:  nj.BranchID,
		UserID:    nj.UserID,
		Kind:      nj.Kind,
		Title:     nj.Title,
		Body:      nj.Body,
		Score:     nj.Score,
		Lat:       nj.Lat,
		Lng:       nj.Lng,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateJournal(ctx, j)
}

func (svc *Service) GetByID(ctx context.Context, orgID, id int) (Journal, error) {
	return svc.repo.GetJournalByID(ctx, orgID, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Journal, int, error) {
	return svc.repo.FilterJournals(ctx, filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, orgID, id int, uj UpdateJournal) (Journal, error) {
	orig, err := svc.repo.GetJournalByID(ctx, orgID, id)
	if err != nil {
		return Journal{}, err
	}
	if uj.Title != "" {
		orig.Title = uj.Title
	}
	if uj.Body.Valid {
		orig.Body = core.CleanString(uj.Body.String)
	}
	if uj.Score.Valid {
		if !orig.IsInspection() {
			return Journal{}, core.NewFieldError("score", "only inspections carry a score")
		}
		orig.Score = uj.Score
	}
	if uj.Lat.Valid {
		orig.Lat = uj.Lat
	}
	if uj.Lng.Valid {
		orig.Lng = uj.Lng
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateJournal(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.SoftDeleteJournals(ctx, orgID, ids...)
}

func (svc *Service) Restore(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.RestoreJournals(ctx, orgID, ids...)
}

func (svc *Service) HardDelete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.HardDeleteJournals(ctx, orgID, ids...)
}
