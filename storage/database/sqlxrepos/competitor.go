package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/competitor"
)

type competitorRepository struct {
	db *sqlx.DB
}

var _ competitor.Repository = (*competitorRepository)(nil) // interface compliance check

func NewCompetitorRepository(db *sqlx.DB) competitor.Repository {
	return &competitorRepository{db: db}
}

func (repo *competitorRepository) CreateCompetitor(ctx context.Context, c competitor.Competitor) (competitor.Competitor, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO competitor (org_id, branch_id, name, industry, address, social_media,
		                        pricing, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.OrgID, c.BranchID, c.Name, c.Industry, c.Address, c.SocialMedia,
		c.Pricing, c.Notes, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return c, err
}

func (repo *competitorRepository) GetCompetitorByID(ctx context.Context, orgID, id int) (competitor.Competitor, error) {
	var c competitor.Competitor
	err := repo.db.GetContext(ctx, &c,
		`SELECT * FROM competitor WHERE org_id = $1 AND id = $2 AND NOT is_deleted`, orgID, id)
	if err == sql.ErrNoRows {
		return c, competitor.ErrNotFound
	}
	return c, err
}

func (repo *competitorRepository) FilterCompetitors(ctx context.Context, filter competitor.QueryFilter, ordering ...core.DBOrdering) ([]competitor.Competitor, int, error) {
	w := new(where)
	w.add(`org_id = $%d`, filter.OrgID)
	w.add(`NOT is_deleted`)
	if filter.BranchID.Valid {
		w.add(`branch_id = $%d`, filter.BranchID)
	}
	if filter.Search != "" {
		s := "%" + filter.Search + "%"
		w.add(`(name ILIKE $%d OR notes ILIKE $%d)`, s, s)
	}
	if filter.Industry != "" {
		w.add(`industry ILIKE $%d`, filter.Industry)
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM competitor`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}

	competitors := make([]competitor.Competitor, 0)
	q := `SELECT * FROM competitor` + w.String() + orderBy("name ASC", ordering) + paginate(filter.Pagination)
	if err := repo.db.SelectContext(ctx, &competitors, q, w.args...); err != nil {
		return nil, 0, err
	}
	return competitors, total, nil
}

func (repo *competitorRepository) UpdateCompetitor(ctx context.Context, c competitor.Competitor) (competitor.Competitor, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE competitor
		SET name = $1, industry = $2, address = $3, social_media = $4,
		    pricing = $5, notes = $6, updated_at = $7
		WHERE org_id = $8 AND id = $9 AND NOT is_deleted`,
		c.Name, c.Industry, c.Address, c.SocialMedia, c.Pricing, c.Notes,
		c.UpdatedAt, c.OrgID, c.ID,
	)
	if err != nil {
		return c, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return c, err
	} else if n == 0 {
		return c, competitor.ErrNotFound
	}
	return repo.GetCompetitorByID(ctx, c.OrgID, c.ID)
}

func (repo *competitorRepository) SoftDeleteCompetitors(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE competitor SET is_deleted = TRUE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *competitorRepository) RestoreCompetitors(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE competitor SET is_deleted = FALSE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *competitorRepository) HardDeleteCompetitors(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM competitor WHERE org_id = $1 AND id = ANY ($2)`, orgID, pq.Array(ids))
	return err
}
