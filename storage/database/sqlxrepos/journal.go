package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/journal"
)

type journalRepository struct {
	db *sqlx.DB
}

var _ journal.Repository = (*journalRepository)(nil) // interface compliance check

func NewJournalRepository(db *sqlx.DB) journal.Repository {
	return &journalRepository{db: db}
}

func (repo *journalRepository) CreateJournal(ctx context.Context, j journal.Journal) (journal.Journal, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO journal (org_id, branch_id, user_id, kind, title, body, score,
		                     lat, lng, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		j.OrgID, j.BranchID, j.UserID, j.Kind, j.Title, j.Body, j.Score,
		j.Lat, j.Lng, j.CreatedAt, j.UpdatedAt,
	).Scan(&j.ID)
	return j, err
}

func (repo *journalRepository) GetJournalByID(ctx context.Context, orgID, id int) (journal.Journal, error) {
	var j journal.Journal
	err := repo.db.GetContext(ctx, &j,
		`SELECT * FROM journal WHERE org_id = $1 AND id = $2 AND NOT is_deleted`, orgID, id)
	if err == sql.ErrNoRows {
		return j, journal.ErrNotFound
	}
	return j, err
}

func (repo *journalRepository) FilterJournals(ctx context.Context, filter journal.QueryFilter, ordering ...core.DBOrdering) ([]journal.Journal, int, error) {
	w := new(where)
	w.add(`org_id = $%d`, filter.OrgID)
	w.add(`NOT is_deleted`)
	if filter.BranchID.Valid {
		w.add(`branch_id = $%d`, filter.BranchID)
	}
	if filter.UserID.Valid {
		w.add(`user_id = $%d`, filter.UserID)
	}
	if filter.Kind != "" {
		w.add(`kind = $%d`, filter.Kind)
	}
	if filter.Search != "" {
		s := "%" + filter.Search + "%"
		w.add(`(title ILIKE $%d OR body ILIKE $%d)`, s, s)
	}
	if !filter.DateFrom.IsZero() {
		w.add(`created_at >= $%d`, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		w.add(`created_at < $%d`, filter.DateTo)
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM journal`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}

	journals := make([]journal.Journal, 0)
	q := `SELECT * FROM journal` + w.String() + orderBy("created_at DESC", ordering) + paginate(filter.Pagination)
	if err := repo.db.SelectContext(ctx, &journals, q, w.args...); err != nil {
		return nil, 0, err
	}
	return journals, total, nil
}

func (repo *journalRepository) UpdateJournal(ctx context.Context, j journal.Journal) (journal.Journal, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE journal
		SET title = $1, body = $2, score = $3, lat = $4, lng = $5, updated_at = $6
		WHERE org_id = $7 AND id = $8 AND NOT is_deleted`,
		j.Title, j.Body, j.Score, j.Lat, j.Lng, j.UpdatedAt, j.OrgID, j.ID,
	)
	if err != nil {
		return j, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return j, err
	} else if n == 0 {
		return j, journal.ErrNotFound
	}
	return repo.GetJournalByID(ctx, j.OrgID, j.ID)
}

func (repo *journalRepository) SoftDeleteJournals(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE journal SET is_deleted = TRUE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *journalRepository) RestoreJournals(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE journal SET is_deleted = FALSE, updated_at = now() WHERE org_id = $1 AND id = ANY ($2)`,
		orgID, pq.Array(ids))
	return err
}

func (repo *journalRepository) HardDeleteJournals(ctx context.Context, orgID int, ids ...int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM journal WHERE org_id = $1 AND id = ANY ($2)`, orgID, pq.Array(ids))
	return err
}
