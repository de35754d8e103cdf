package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/journal"
)

type journalRepository struct {
	db *journalTable
}

var _ journal.Repository = (*journalRepository)(nil) // interface compliance check

func NewJournalRepository(db *DB) journal.Repository {
	return &journalRepository{db: db.journal}
}

func (repo *journalRepository) CreateJournal(_ context.Context, j journal.Journal) (journal.Journal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	j.ID = nextPK()
	repo.db.table[j.ID] = &j
	return j, nil
}

func (repo *journalRepository) GetJournalByID(_ context.Context, orgID, id int) (journal.Journal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if j, ok := repo.db.table[id]; ok && j.OrgID == orgID && !j.IsDeleted {
		return *j, nil
	}
	return journal.Journal{}, journal.ErrNotFound
}

func (repo *journalRepository) FilterJournals(_ context.Context, filter journal.QueryFilter, _ ...core.DBOrdering) ([]journal.Journal, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	journals := make([]journal.Journal, 0)
	for _, j := range repo.db.table {
		if j.OrgID != filter.OrgID || j.IsDeleted {
			continue
		}
		if filter.BranchID.Valid && j.BranchID != filter.BranchID {
			continue
		}
		if filter.UserID.Valid && j.UserID != filter.UserID.Int {
			continue
		}
		if filter.Kind != "" && j.Kind != filter.Kind {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(j.Title), s) &&
				!strings.Contains(strings.ToLower(j.Body), s) {
				continue
			}
		}
		if !filter.DateFrom.IsZero() && j.CreatedAt.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && !j.CreatedAt.Before(filter.DateTo) {
			continue
		}
		journals = append(journals, *j)
	}
	sort.Slice(journals, func(i, j int) bool { return journals[i].CreatedAt.After(journals[j].CreatedAt) })
	return paginate(journals, filter.Pagination), len(journals), nil
}

func (repo *journalRepository) UpdateJournal(_ context.Context, j journal.Journal) (journal.Journal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[j.ID]
	if !ok || orig.OrgID != j.OrgID || orig.IsDeleted {
		return journal.Journal{}, journal.ErrNotFound
	}
	orig.Title = j.Title
	orig.Body = j.Body
	orig.Score = j.Score
	orig.Lat = j.Lat
	orig.Lng = j.Lng
	orig.UpdatedAt = j.UpdatedAt
	return *orig, nil
}

func (repo *journalRepository) SoftDeleteJournals(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if j, ok := repo.db.table[id]; ok && j.OrgID == orgID {
			j.IsDeleted = true
		}
	}
	return nil
}

func (repo *journalRepository) RestoreJournals(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if j, ok := repo.db.table[id]; ok && j.OrgID == orgID {
			j.IsDeleted = false
		}
	}
	return nil
}

func (repo *journalRepository) HardDeleteJournals(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if j, ok := repo.db.table[id]; ok && j.OrgID == orgID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
