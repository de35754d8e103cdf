package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kazi/core/org"
)

type orgRepository struct {
	db *sqlx.DB
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *sqlx.DB) org.Repository {
	return &orgRepository{db: db}
}

func (repo *orgRepository) CheckSlugUniqueness(ctx context.Context, slug string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM organisation WHERE slug = $1)`, slug)
	if err != nil {
		return err
	}
	if exists {
		return org.ErrSlugExists
	}
	return nil
}

func (repo *orgRepository) CreateOrganisation(ctx context.Context, o org.Organisation) (org.Organisation, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO organisation (name, slug, timezone, settings, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		o.Name, o.Slug, o.Timezone, o.Settings, o.IsActive, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	return o, err
}

func (repo *orgRepository) GetOrganisationByID(ctx context.Context, id int) (org.Organisation, error) {
	var o org.Organisation
	err := repo.db.GetContext(ctx, &o, `SELECT * FROM organisation WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return o, org.ErrNotFound
	}
	return o, err
}

func (repo *orgRepository) GetOrganisationBySlug(ctx context.Context, slug string) (org.Organisation, error) {
	var o org.Organisation
	err := repo.db.GetContext(ctx, &o, `SELECT * FROM organisation WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return o, org.ErrNotFound
	}
	return o, err
}

func (repo *orgRepository) FilterOrganisations(ctx context.Context, filter org.QueryFilter) ([]org.Organisation, error) {
	w := new(where)
	if filter.Search != "" {
		w.add(`(name ILIKE $%d OR slug ILIKE $%d)`, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.IsActive != nil {
		w.add(`is_active = $%d`, *filter.IsActive)
	}

	orgs := make([]org.Organisation, 0)
	err := repo.db.SelectContext(ctx, &orgs, `SELECT * FROM organisation`+w.String()+` ORDER BY name ASC`, w.args...)
	return orgs, err
}

func (repo *orgRepository) UpdateOrganisation(ctx context.Context, o org.Organisation, isActive *bool) (org.Organisation, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE organisation
		SET name = $1, timezone = $2, settings = $3,
		    is_active = COALESCE($4, is_active), updated_at = $5
		WHERE id = $6`,
		o.Name, o.Timezone, o.Settings, isActive, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return o, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return o, err
	} else if n == 0 {
		return o, org.ErrNotFound
	}
	return repo.GetOrganisationByID(ctx, o.ID)
}

func (repo *orgRepository) CreateBranch(ctx context.Context, b org.Branch) (org.Branch, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO branch (org_id, name, address, lat, lng, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		b.OrgID, b.Name, b.Address, b.Lat, b.Lng, b.IsActive, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	return b, err
}

func (repo *orgRepository) GetBranchByID(ctx context.Context, orgID, id int) (org.Branch, error) {
	var b org.Branch
	err := repo.db.GetContext(ctx, &b, `SELECT * FROM branch WHERE org_id = $1 AND id = $2`, orgID, id)
	if err == sql.ErrNoRows {
		return b, org.ErrBranchNotFound
	}
	return b, err
}

func (repo *orgRepository) FilterBranches(ctx context.Context, orgID int, filter org.QueryFilter) ([]org.Branch, error) {
	w := new(where)
	w.add(`org_id = $%d`, orgID)
	if filter.Search != "" {
		w.add(`name ILIKE $%d`, "%"+filter.Search+"%")
	}
	if filter.IsActive != nil {
		w.add(`is_active = $%d`, *filter.IsActive)
	}

	branches := make([]org.Branch, 0)
	err := repo.db.SelectContext(ctx, &branches, `SELECT * FROM branch`+w.String()+` ORDER BY name ASC`, w.args...)
	return branches, err
}

func (repo *orgRepository) UpdateBranch(ctx context.Context, b org.Branch, isActive *bool) (org.Branch, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE branch
		SET name = $1, address = $2, lat = $3, lng = $4,
		    is_active = COALESCE($5, is_active), updated_at = $6
		WHERE org_id = $7 AND id = $8`,
		b.Name, b.Address, b.Lat, b.Lng, isActive, b.UpdatedAt, b.OrgID, b.ID,
	)
	if err != nil {
		return b, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return b, err
	} else if n == 0 {
		return b, org.ErrBranchNotFound
	}
	return repo.GetBranchByID(ctx, b.OrgID, b.ID)
}
