package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/claim"
)

type claimRepository struct {
	db *sqlx.DB
}

var _ claim.Repository = (*claimRepository)(nil) // interface compliance check

func NewClaimRepository(db *sqlx.DB) claim.Repository {
	return &claimRepository{db: db}
}

func (repo *claimRepository) CreateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO claim (org_id, branch_id, user_id, category, amount, currency,
		                   description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.OrgID, c.BranchID, c.UserID, c.Category, c.Amount, c.Currency,
		c.Description, c.Status, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return c, err
}

func (repo *claimRepository) GetClaimByID(ctx context.Context, orgID, id int) (claim.Claim, error) {
	var c claim.Claim
	err := repo.db.GetContext(ctx, &c,
		`SELECT * FROM claim WHERE org_id = $1 AND id = $2 AND NOT is_deleted`, orgID, id)
	if err == sql.ErrNoRows {
		return c, claim.ErrNotFound
	}
	return c, err
}

func (repo *claimRepository) FilterClaims(ctx context.Context, filter claim.QueryFilter, ordering ...core.DBOrdering) ([]claim.Claim, int, error) {
	w := new(where)
	w.add(`org_id = $%d`, filter.OrgID)
	w.add(`NOT is_deleted`)
	if filter.BranchID.Valid {
		w.add(`branch_id = $%d`, filter.BranchID)
	}
	if filter.UserID.Valid {
		w.add(`user_id = $%d`, filter.UserID)
	}
	if filter.Status != "" {
		w.add(`status = $%d`, filter.Status)
	}
	if filter.Category != "" {
		w.add(`category = $%d`, filter.Category)
	}
	if !filter.DateFrom.IsZero() {
		w.add(`created_at >= $%d`, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		w.add(`created_at < $%d`, filter.DateTo)
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM claim`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}

	claims := make([]claim.Claim, 0)
	q := `SELECT * FROM claim` + w.String() + orderBy("created_at DESC", ordering) + paginate(filter.Pagination)
	if err := repo.db.SelectContext(ctx, &claims, q, w.args...); err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

func (repo *claimRepository) UpdateClaim(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE claim
		SET category = $1, amount = $2, currency = $3, description = $4, status = $5,
		    reviewed_by = $6, reviewed_at = $7, review_note = $8, updated_at = $9
		WHERE org_id = $10 AND id = $11 AND NOT is_deleted`,
		c.Category, c.Amount, c.Currency, c.Description, c.Status,
		c.ReviewedBy, c.ReviewedAt, c.ReviewNote, c.UpdatedAt, c.OrgID, c.ID,
	)
	if err != nil {
		return c, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return c, err
	} else if n == 0 {
		return c, claim.ErrNotFound
	}
	return repo.GetClaimByID(ctx, c.OrgID, c.ID)
}

func (repo *claimRepository) SoftDeleteClaims(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE claim SET is_deleted = TRUE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *claimRepository) RestoreClaims(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE claim SET is_deleted = FALSE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *claimRepository) HardDeleteClaims(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM claim WHERE org_id = $1 AND id = ANY ($2)`, orgID, pq.Array(ids))
	return err
}
