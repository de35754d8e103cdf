package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

var (
	// errors
	ErrNotFound      = errors.New("check-in not found")
	ErrAlreadyClosed = errors.New("check-in already checked out")
)

type (
	Repository interface {
		CreateCheckIn(ctx context.Context, c CheckIn) (CheckIn, error)
		GetCheckInByID(ctx context.Context, orgID, id int) (CheckIn, error)
		// FilterCheckIns applies AND operation on available QueryFilter fields;
		// soft-deleted rows are excluded. Also reports the unpaginated total.
		FilterCheckIns(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]CheckIn, int, error)
		UpdateCheckIn(ctx context.Context, c CheckIn) (CheckIn, error)
		SoftDeleteCheckIns(ctx context.Context, orgID int, ids ...int) error
		RestoreCheckIns(ctx context.Context, orgID int, ids ...int) error
		HardDeleteCheckIns(ctx context.Context, orgID int, ids ...int) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewCheckIn) (CheckIn, error)
		GetByID(ctx context.Context, orgID, id int) (CheckIn, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]CheckIn, int, error)
		Update(ctx context.Context, orgID, id int, uc UpdateCheckIn) (CheckIn, error)
		CheckOut(ctx context.Context, orgID, id int, co CheckOut) (CheckIn, error)
		Delete(ctx context.Context, orgID int, ids ...int) error
		Restore(ctx context.Context, orgID int, ids ...int) error
		HardDelete(ctx context.Context, orgID int, ids ...int) error
	}

	Service struct {
		repo     Repository
		geocoder core.Geocoder
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, geocoder core.Geocoder, logger core.Logger) *Service {
	return &Service{repo: repo, geocoder: geocoder, logger: logger}
}

func (svc *Service) Create(ctx context.Context, nc NewCheckIn) (CheckIn, error) {
	now := time.Now().UTC()
	c := CheckIn{
		OrgID:        nc.OrgID,
		BranchID:     nc.BranchID,
		UserID:       nc.UserID,
		Lat:          nc.Lat,
		Lng:          nc.Lng,
		Address:      nc.Address,
		ContactName:  nc.ContactName,
		ContactPhone: nc.ContactPhone,
		SaleAmount:   nc.SaleAmount,
		Notes:        nc.Notes,
		CheckedInAt:  nc.CheckedInAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// backfill the address; a geocoder outage never fails a check-in
	if !c.Address.Valid && svc.geocoder != nil {
		if addr, err := svc.geocoder.Reverse(ctx, c.Point()); err == nil && addr != "" {
			c.Address = null.StringFrom(addr)
		} else if err != nil {
			svc.logger.Warn("reverse geocoding check-in", err)
		}
	}
	return svc.repo.CreateCheckIn(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, orgID, id int) (CheckIn, error) {
	return svc.repo.GetCheckInByID(ctx, orgID, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]CheckIn, int, error) {
	return svc.repo.FilterCheckIns(ctx, filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, orgID, id int, uc UpdateCheckIn) (CheckIn, error) {
	orig, err := svc.repo.GetCheckInByID(ctx, orgID, id)
	if err != nil {
		return CheckIn{}, err
	}
	if uc.Address.Valid {
		orig.Address = uc.Address
	}
	if uc.ContactName.Valid {
		orig.ContactName = uc.ContactName
	}
	if uc.ContactPhone.Valid {
		orig.ContactPhone = uc.ContactPhone
	}
	if uc.SaleAmount.Valid {
		orig.SaleAmount = uc.SaleAmount
	}
	if uc.Notes.Valid {
		orig.Notes = core.CleanString(uc.Notes.String)
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCheckIn(ctx, orig)
}

func (svc *Service) CheckOut(ctx context.Context, orgID, id int, co CheckOut) (CheckIn, error) {
	orig, err := svc.repo.GetCheckInByID(ctx, orgID, id)
	if err != nil {
		return CheckIn{}, err
	}
	if orig.CheckedOutAt.Valid {
		return CheckIn{}, ErrAlreadyClosed
	}
	if err := co.Validate(orig); err != nil {
		return CheckIn{}, err
	}
	orig.CheckedOutAt = null.TimeFrom(co.CheckedOutAt.UTC())
	if co.SaleAmount.Valid {
		orig.SaleAmount = co.SaleAmount
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCheckIn(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.SoftDeleteCheckIns(ctx, orgID, ids...)
}

func (svc *Service) Restore(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.RestoreCheckIns(ctx, orgID, ids...)
}

func (svc *Service) HardDelete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.HardDeleteCheckIns(ctx, orgID, ids...)
}
