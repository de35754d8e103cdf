package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/claim"
)

type claimRepository struct {
	db *claimTable
}

var _ claim.Repository = (*claimRepository)(nil) // interface compliance check

func NewClaimRepository(db *DB) claim.Repository {
	return &claimRepository{db: db.claim}
}

func (repo *claimRepository) CreateClaim(_ context.Context, c claim.Claim) (claim.Claim, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = nextPK()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *claimRepository) GetClaimByID(_ context.Context, orgID, id int) (claim.Claim, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok && c.OrgID == orgID && !c.IsDeleted {
		return *c, nil
	}
	return claim.Claim{}, claim.ErrNotFound
}

func (repo *claimRepository) FilterClaims(_ context.Context, filter claim.QueryFilter, _ ...core.DBOrdering) ([]claim.Claim, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	claims := make([]claim.Claim, 0)
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
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if !filter.DateFrom.IsZero() && c.CreatedAt.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && !c.CreatedAt.Before(filter.DateTo) {
			continue
		}
		claims = append(claims, *c)
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].CreatedAt.After(claims[j].CreatedAt) })
	return paginate(claims, filter.Pagination), len(claims), nil
}

func (repo *claimRepository) UpdateClaim(_ context.Context, c claim.Claim) (claim.Claim, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok || orig.OrgID != c.OrgID || orig.IsDeleted {
		return claim.Claim{}, claim.ErrNotFound
	}
	orig.Category = c.Category
	orig.Amount = c.Amount
	orig.Currency = c.Currency
	orig.Description = c.Description
	orig.Status = c.Status
	orig.ReviewedBy = c.ReviewedBy
	orig.ReviewedAt = c.ReviewedAt
	orig.ReviewNote = c.ReviewNote
	orig.UpdatedAt = c.UpdatedAt
	return *orig, nil
}

func (repo *claimRepository) SoftDeleteClaims(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			c.IsDeleted = true
		}
	}
	return nil
}

func (repo *claimRepository) RestoreClaims(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			c.IsDeleted = false
		}
	}
	return nil
}

func (repo *claimRepository) HardDeleteClaims(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
