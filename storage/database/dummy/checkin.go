package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
)

type checkinRepository struct {
	db *checkinTable
}

var _ checkin.Repository = (*checkinRepository)(nil) // interface compliance check

func NewCheckInRepository(db *DB) checkin.Repository {
	return &checkinRepository{db: db.checkin}
}

func (repo *checkinRepository) CreateCheckIn(_ context.Context, c checkin.CheckIn) (checkin.CheckIn, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = nextPK()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *checkinRepository) GetCheckInByID(_ context.Context, orgID, id int) (checkin.CheckIn, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok && c.OrgID == orgID && !c.IsDeleted {
		return *c, nil
	}
	return checkin.CheckIn{}, checkin.ErrNotFound
}

func (repo *checkinRepository) FilterCheckIns(_ context.Context, filter checkin.QueryFilter, _ ...core.DBOrdering) ([]checkin.CheckIn, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	checkins := make([]checkin.CheckIn, 0)
	for _, c := range repo.db.table {
		if c.OrgID != filter.OrgID || c.IsDeleted {
			continue
		}
		if filter.BranchID.Valid && c.BranchID != filter.BranchID {
			continue
		}
		if filter.UserID.Valid && c.UserID != filter.UserID.Int {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Address.String), s) &&
				!strings.Contains(strings.ToLower(c.ContactName.String), s) &&
				!strings.Contains(strings.ToLower(c.Notes), s) {
				continue
			}
		}
		if filter.Open != nil && *filter.Open == c.CheckedOutAt.Valid {
			continue
		}
		if !filter.DateFrom.IsZero() && c.CheckedInAt.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && !c.CheckedInAt.Before(filter.DateTo) {
			continue
		}
		checkins = append(checkins, *c)
	}
	sort.Slice(checkins, func(i, j int) bool { return checkins[i].CheckedInAt.Before(checkins[j].CheckedInAt) })
	return paginate(checkins, filter.Pagination), len(checkins), nil
}

func (repo *checkinRepository) UpdateCheckIn(_ context.Context, c checkin.CheckIn) (checkin.CheckIn, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok || orig.OrgID != c.OrgID || orig.IsDeleted {
		return checkin.CheckIn{}, checkin.ErrNotFound
	}
	orig.Address = c.Address
	orig.ContactName = c.ContactName
	orig.ContactPhone = c.ContactPhone
	orig.SaleAmount = c.SaleAmount
	orig.Notes = c.Notes
	orig.CheckedOutAt = c.CheckedOutAt
	orig.UpdatedAt = c.UpdatedAt
	return *orig, nil
}

func (repo *checkinRepository) SoftDeleteCheckIns(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			c.IsDeleted = true
		}
	}
	return nil
}

func (repo *checkinRepository) RestoreCheckIns(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			c.IsDeleted = false
		}
	}
	return nil
}

func (repo *checkinRepository) HardDeleteCheckIns(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
