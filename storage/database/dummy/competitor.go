package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/competitor"
)

type competitorRepository struct {
	db *competitorTable
}

var _ competitor.Repository = (*competitorRepository)(nil) // interface compliance check

func NewCompetitorRepository(db *DB) competitor.Repository {
	return &competitorRepository{db: db.competitor}
}

func (repo *competitorRepository) CreateCompetitor(_ context.Context, c competitor.Competitor) (competitor.Competitor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = nextPK()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *competitorRepository) GetCompetitorByID(_ context.Context, orgID, id int) (competitor.Competitor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok && c.OrgID == orgID && !c.IsDeleted {
		return *c, nil
	}
	return competitor.Competitor{}, competitor.ErrNotFound
}

func (repo *competitorRepository) FilterCompetitors(_ context.Context, filter competitor.QueryFilter, _ ...core.DBOrdering) ([]competitor.Competitor, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	competitors := make([]competitor.Competitor, 0)
	for _, c := range repo.db.table {
		if c.OrgID != filter.OrgID || c.IsDeleted {
			continue
		}
		if filter.BranchID.Valid && c.BranchID != filter.BranchID {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Name), s) &&
				!strings.Contains(strings.ToLower(c.Notes), s) {
				continue
			}
		}
		if filter.Industry != "" && !strings.EqualFold(c.Industry, filter.Industry) {
			continue
		}
		competitors = append(competitors, *c)
	}
	sort.Slice(competitors, func(i, j int) bool { return competitors[i].Name < competitors[j].Name })
	return paginate(competitors, filter.Pagination), len(competitors), nil
}

func (repo *competitorRepository) UpdateCompetitor(_ context.Context, c competitor.Competitor) (competitor.Competitor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok || orig.OrgID != c.OrgID || orig.IsDeleted {
		return competitor.Competitor{}, competitor.ErrNotFound
	}
	orig.Name = c.Name
	orig.Industry = c.Industry
	orig.Address = c.Address
	orig.SocialMedia = c.SocialMedia
	orig.Pricing = c.Pricing
	orig.Notes = c.Notes
	orig.UpdatedAt = c.UpdatedAt
	return *orig, nil
}

func (repo *competitorRepository) SoftDeleteCompetitors(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			c.IsDeleted = true
		}
	}
	return nil
}

func (repo *competitorRepository) RestoreCompetitors(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			c.IsDeleted = false
		}
	}
	return nil
}

func (repo *competitorRepository) HardDeleteCompetitors(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if c, ok := repo.db.table[id]; ok && c.OrgID == orgID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
