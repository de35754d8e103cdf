package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
)

type checkinRepository struct {
	db *sqlx.DB
}

var _ checkin.Repository = (*checkinRepository)(nil) // interface compliance check

func NewCheckInRepository(db *sqlx.DB) checkin.Repository {
	return &checkinRepository{db: db}
}

func (repo *checkinRepository) CreateCheckIn(ctx context.Context, c checkin.CheckIn) (checkin.CheckIn, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO checkin (org_id, branch_id, user_id, lat, lng, address, contact_name,
		                     contact_phone, sale_amount, notes, checked_in_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		c.OrgID, c.BranchID, c.UserID, c.Lat, c.Lng, c.Address, c.ContactName,
		c.ContactPhone, c.SaleAmount, c.Notes, c.CheckedInAt, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return c, err
}

func (repo *checkinRepository) GetCheckInByID(ctx context.Context, orgID, id int) (checkin.CheckIn, error) {
	var c checkin.CheckIn
	err := repo.db.GetContext(ctx, &c,
		`SELECT * FROM checkin WHERE org_id = $1 AND id = $2 AND NOT is_deleted`, orgID, id)
	if err == sql.ErrNoRows {
		return c, checkin.ErrNotFound
	}
	return c, err
}

func (repo *checkinRepository) FilterCheckIns(ctx context.Context, filter checkin.QueryFilter, ordering ...core.DBOrdering) ([]checkin.CheckIn, int, error) {
	w := new(where)
	w.add(`org_id = $%d`, filter.OrgID)
	w.add(`NOT is_deleted`)
	if filter.BranchID.Valid {
		w.add(`branch_id = $%d`, filter.BranchID)
	}
	if filter.UserID.Valid {
		w.add(`user_id = $%d`, filter.UserID)
	}
	if filter.Search != "" {
		s := "%" + filter.Search + "%"
		w.add(`(address ILIKE $%d OR contact_name ILIKE $%d OR notes ILIKE $%d)`, s, s, s)
	}
	if filter.Open != nil {
		if *filter.Open {
			w.add(`checked_out_at IS NULL`)
		} else {
			w.add(`checked_out_at IS NOT NULL`)
		}
	}
	if !filter.DateFrom.IsZero() {
		w.add(`checked_in_at >= $%d`, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		w.add(`checked_in_at < $%d`, filter.DateTo)
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM checkin`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}

	checkins := make([]checkin.CheckIn, 0)
	q := `SELECT * FROM checkin` + w.String() + orderBy("checked_in_at DESC", ordering) + paginate(filter.Pagination)
	if err := repo.db.SelectContext(ctx, &checkins, q, w.args...); err != nil {
		return nil, 0, err
	}
	return checkins, total, nil
}

func (repo *checkinRepository) UpdateCheckIn(ctx context.Context, c checkin.CheckIn) (checkin.CheckIn, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE checkin
		SET address = $1, contact_name = $2, contact_phone = $3, sale_amount = $4,
		    notes = $5, checked_out_at = $6, updated_at = $7
		WHERE org_id = $8 AND id = $9 AND NOT is_deleted`,
		c.Address, c.ContactName, c.ContactPhone, c.SaleAmount,
		c.Notes, c.CheckedOutAt, c.UpdatedAt, c.OrgID, c.ID,
	)
	if err != nil {
		return c, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return c, err
	} else if n == 0 {
		return c, checkin.ErrNotFound
	}
	return repo.GetCheckInByID(ctx, c.OrgID, c.ID)
}

func (repo *checkinRepository) SoftDeleteCheckIns(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE checkin SET is_deleted = TRUE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *checkinRepository) RestoreCheckIns(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE checkin SET is_deleted = FALSE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *checkinRepository) HardDeleteCheckIns(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM checkin WHERE org_id = $1 AND id = ANY ($2)`, orgID, pq.Array(ids))
	return err
}
