package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/kazi/core/org"
)

type orgRepository struct {
	orgs     *orgTable
	branches *branchTable
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *DB) org.Repository {
	return &orgRepository{orgs: db.org, branches: db.branch}
}

func (repo *orgRepository) CheckSlugUniqueness(_ context.Context, slug string) error {
	repo.orgs.RLock()
	defer repo.orgs.RUnlock()

	for _, o := range repo.orgs.table {
		if o.Slug == slug {
			return org.ErrSlugExists
		}
	}
	return nil
}

func (repo *orgRepository) CreateOrganisation(_ context.Context, o org.Organisation) (org.Organisation, error) {
	repo.orgs.Lock()
	defer repo.orgs.Unlock()

	o.ID = nextPK()
	repo.orgs.table[o.ID] = &o
	return o, nil
}

func (repo *orgRepository) GetOrganisationByID(_ context.Context, id int) (org.Organisation, error) {
	repo.orgs.RLock()
	defer repo.orgs.RUnlock()

	if o, ok := repo.orgs.table[id]; ok {
		return *o, nil
	}
	return org.Organisation{}, org.ErrNotFound
}

func (repo *orgRepository) GetOrganisationBySlug(_ context.Context, slug string) (org.Organisation, error) {
	repo.orgs.RLock()
	defer repo.orgs.RUnlock()

	for _, o := range repo.orgs.table {
		if o.Slug == slug {
			return *o, nil
		}
	}
	return org.Organisation{}, org.ErrNotFound
}

func (repo *orgRepository) FilterOrganisations(_ context.Context, filter org.QueryFilter) ([]org.Organisation, error) {
	repo.orgs.RLock()
	defer repo.orgs.RUnlock()

	orgs := make([]org.Organisation, 0, len(repo.orgs.table))
	for _, o := range repo.orgs.table {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(o.Name), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(o.Slug), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.IsActive != nil && o.IsActive != *filter.IsActive {
			continue
		}
		orgs = append(orgs, *o)
	}
	return orgs, nil
}

func (repo *orgRepository) UpdateOrganisation(_ context.Context, o org.Organisation, isActive *bool) (org.Organisation, error) {
	repo.orgs.Lock()
	defer repo.orgs.Unlock()

	orig, ok := repo.orgs.table[o.ID]
	if !ok {
		return org.Organisation{}, org.ErrNotFound
	}
	orig.Name = o.Name
	orig.Timezone = o.Timezone
	orig.Settings = o.Settings
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = o.UpdatedAt
	return *orig, nil
}

func (repo *orgRepository) CreateBranch(_ context.Context, b org.Branch) (org.Branch, error) {
	repo.branches.Lock()
	defer repo.branches.Unlock()

	b.ID = nextPK()
	repo.branches.table[b.ID] = &b
	return b, nil
}

func (repo *orgRepository) GetBranchByID(_ context.Context, orgID, id int) (org.Branch, error) {
	repo.branches.RLock()
	defer repo.branches.RUnlock()

	if b, ok := repo.branches.table[id]; ok && b.OrgID == orgID {
		return *b, nil
	}
	return org.Branch{}, org.ErrBranchNotFound
}

func (repo *orgRepository) FilterBranches(_ context.Context, orgID int, filter org.QueryFilter) ([]org.Branch, error) {
	repo.branches.RLock()
	defer repo.branches.RUnlock()

	branches := make([]org.Branch, 0)
	for _, b := range repo.branches.table {
		if b.OrgID != orgID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.IsActive != nil && b.IsActive != *filter.IsActive {
			continue
		}
		branches = append(branches, *b)
	}
	return branches, nil
}

func (repo *orgRepository) UpdateBranch(_ context.Context, b org.Branch, isActive *bool) (org.Branch, error) {
	repo.branches.Lock()
	defer repo.branches.Unlock()

	orig, ok := repo.branches.table[b.ID]
	if !ok || orig.OrgID != b.OrgID {
		return org.Branch{}, org.ErrBranchNotFound
	}
	orig.Name = b.Name
	orig.Address = b.Address
	orig.Lat = b.Lat
	orig.Lng = b.Lng
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = b.UpdatedAt
	return *orig, nil
}
