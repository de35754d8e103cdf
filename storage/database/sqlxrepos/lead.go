package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/lead"
)

type leadRepository struct {
	db *sqlx.DB
}

var _ lead.Repository = (*leadRepository)(nil) // interface compliance check

func NewLeadRepository(db *sqlx.DB) lead.Repository {
	return &leadRepository{db: db}
}

const insertLeadQuery = `
	INSERT INTO lead (org_id, branch_id, owner_id, name, company, phone, email,
	                  source, status, value, lat, lng, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id`

func (repo *leadRepository) CreateLead(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	err := repo.db.QueryRowContext(ctx, insertLeadQuery,
		l.OrgID, l.BranchID, l.OwnerID, l.Name, l.Company, l.Phone, l.Email,
		l.Source, l.Status, l.Value, l.Lat, l.Lng, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
	return l, err
}

// CreateLeads inserts all rows in a single transaction; any failure rolls
// back the whole chunk.
func (repo *leadRepository) CreateLeads(ctx context.Context, leads []lead.Lead) ([]lead.Lead, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]lead.Lead, 0, len(leads))
	for _, l := range leads {
		if err = tx.QueryRowContext(ctx, insertLeadQuery,
			l.OrgID, l.BranchID, l.OwnerID, l.Name, l.Company, l.Phone, l.Email,
			l.Source, l.Status, l.Value, l.Lat, l.Lng, l.CreatedAt, l.UpdatedAt,
		).Scan(&l.ID); err != nil {
			return nil, err
		}
		created = append(created, l)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return created, nil
}

func (repo *leadRepository) GetLeadByID(ctx context.Context, orgID, id int) (lead.Lead, error) {
	var l lead.Lead
	err := repo.db.GetContext(ctx, &l,
		`SELECT * FROM lead WHERE org_id = $1 AND id = $2 AND NOT is_deleted`, orgID, id)
	if err == sql.ErrNoRows {
		return l, lead.ErrNotFound
	}
	return l, err
}

func (repo *leadRepository) FilterLeads(ctx context.Context, filter lead.QueryFilter, ordering ...core.DBOrdering) ([]lead.Lead, int, error) {
	w := new(where)
	w.add(`org_id = $%d`, filter.OrgID)
	w.add(`NOT is_deleted`)
	if filter.BranchID.Valid {
		w.add(`branch_id = $%d`, filter.BranchID)
	}
	if filter.OwnerID.Valid {
		w.add(`owner_id = $%d`, filter.OwnerID)
	}
	if filter.Search != "" {
		s := "%" + filter.Search + "%"
		w.add(`(name ILIKE $%d OR company ILIKE $%d OR email ILIKE $%d)`, s, s, s)
	}
	if filter.Status != "" {
		w.add(`status = $%d`, filter.Status)
	}
	if filter.Source != "" {
		w.add(`source = $%d`, filter.Source)
	}
	if !filter.DateFrom.IsZero() {
		w.add(`created_at >= $%d`, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		w.add(`created_at < $%d`, filter.DateTo)
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM lead`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}

	leads := make([]lead.Lead, 0)
	q := `SELECT * FROM lead` + w.String() + orderBy("created_at DESC", ordering) + paginate(filter.Pagination)
	if err := repo.db.SelectContext(ctx, &leads, q, w.args...); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (repo *leadRepository) UpdateLead(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE lead
		SET branch_id = $1, owner_id = $2, name = $3, company = $4, phone = $5,
		    email = $6, source = $7, status = $8, value = $9, lat = $10, lng = $11,
		    updated_at = $12
		WHERE org_id = $13 AND id = $14 AND NOT is_deleted`,
		l.BranchID, l.OwnerID, l.Name, l.Company, l.Phone, l.Email, l.Source,
		l.Status, l.Value, l.Lat, l.Lng, l.UpdatedAt, l.OrgID, l.ID,
	)
	if err != nil {
		return l, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return l, err
	} else if n == 0 {
		return l, lead.ErrNotFound
	}
	return repo.GetLeadByID(ctx, l.OrgID, l.ID)
}

func (repo *leadRepository) SoftDeleteLeads(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE lead SET is_deleted = TRUE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *leadRepository) RestoreLeads(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE lead SET is_deleted = FALSE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *leadRepository) HardDeleteLeads(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM lead WHERE org_id = $1 AND id = ANY ($2)`, orgID, pq.Array(ids))
	return err
}
