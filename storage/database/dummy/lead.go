package dummydb

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/lead"
)

type leadRepository struct {
	db *leadTable

	// failNames trigger a rollback when present in a chunk; tests use this to
	// exercise partial batch imports.
	failNames map[string]bool
}

var _ lead.Repository = (*leadRepository)(nil) // interface compliance check

func NewLeadRepository(db *DB) lead.Repository {
	return &leadRepository{db: db.lead}
}

// NewFailingLeadRepository returns a repo whose CreateLeads fails for any
// chunk containing one of the given lead names.
func NewFailingLeadRepository(db *DB, failNames ...string) lead.Repository {
	repo := &leadRepository{db: db.lead, failNames: make(map[string]bool, len(failNames))}
	for _, name := range failNames {
		repo.failNames[name] = true
	}
	return repo
}

func (repo *leadRepository) CreateLead(_ context.Context, l lead.Lead) (lead.Lead, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	l.ID = nextPK()
	repo.db.table[l.ID] = &l
	return l, nil
}

func (repo *leadRepository) CreateLeads(_ context.Context, leads []lead.Lead) ([]lead.Lead, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// all-or-nothing: check before inserting anything
	for _, l := range leads {
		if repo.failNames[l.Name] {
			return nil, errors.New("insert failed")
		}
	}

	created := make([]lead.Lead, 0, len(leads))
	for _, l := range leads {
		l := l
		l.ID = nextPK()
		repo.db.table[l.ID] = &l
		created = append(created, l)
	}
	return created, nil
}

func (repo *leadRepository) GetLeadByID(_ context.Context, orgID, id int) (lead.Lead, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.table[id]; ok && l.OrgID == orgID && !l.IsDeleted {
		return *l, nil
	}
	return lead.Lead{}, lead.ErrNotFound
}

func (repo *leadRepository) FilterLeads(_ context.Context, filter lead.QueryFilter, _ ...core.DBOrdering) ([]lead.Lead, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	leads := make([]lead.Lead, 0)
	for _, l := range repo.db.table {
		if l.OrgID != filter.OrgID || l.IsDeleted {
			continue
		}
		if filter.BranchID.Valid && l.BranchID != filter.BranchID {
			continue
		}
		if filter.OwnerID.Valid && l.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(l.Name), s) &&
				!strings.Contains(strings.ToLower(l.Company), s) &&
				!strings.Contains(strings.ToLower(l.Email), s) {
				continue
			}
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		if !filter.DateFrom.IsZero() && l.CreatedAt.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && !l.CreatedAt.Before(filter.DateTo) {
			continue
		}
		leads = append(leads, *l)
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i].ID < leads[j].ID })
	return paginate(leads, filter.Pagination), len(leads), nil
}

func (repo *leadRepository) UpdateLead(_ context.Context, l lead.Lead) (lead.Lead, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[l.ID]
	if !ok || orig.OrgID != l.OrgID || orig.IsDeleted {
		return lead.Lead{}, lead.ErrNotFound
	}
	orig.BranchID = l.BranchID
	orig.OwnerID = l.OwnerID
	orig.Name = l.Name
	orig.Company = l.Company
	orig.Phone = l.Phone
	orig.Email = l.Email
	orig.Source = l.Source
	orig.Status = l.Status
	orig.Value = l.Value
	orig.Lat = l.Lat
	orig.Lng = l.Lng
	orig.UpdatedAt = l.UpdatedAt
	return *orig, nil
}

func (repo *leadRepository) SoftDeleteLeads(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if l, ok := repo.db.table[id]; ok && l.OrgID == orgID {
			l.IsDeleted = true
		}
	}
	return nil
}

func (repo *leadRepository) RestoreLeads(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if l, ok := repo.db.table[id]; ok && l.OrgID == orgID {
			l.IsDeleted = false
		}
	}
	return nil
}

func (repo *leadRepository) HardDeleteLeads(_ context.Context, orgID int, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if l, ok := repo.db.table[id]; ok && l.OrgID == orgID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
