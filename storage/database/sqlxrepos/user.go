package sqlxrepos

import (
	"context"
	"database/sql"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

// Roles live in a text[] column and need pq.Array, so this repo scans rows
// explicitly instead of via struct tags.
const userCols = `id, org_id, branch_id, name, username, email, is_active, roles,
	password_hash, monthly_target, last_login, created_at, updated_at`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s rowScanner) (user.User, error) {
	var usr user.User
	err := s.Scan(
		&usr.ID, &usr.OrgID, &usr.BranchID, &usr.Name, &usr.Username, &usr.Email,
		&usr.IsActive, pq.Array(&usr.Roles), &usr.PasswordHash, &usr.MonthlyTarget,
		&usr.LastLogin, &usr.CreatedAt, &usr.UpdatedAt,
	)
	return usr, err
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}
	sort.Ints(exclIDs)

	rows, err := repo.db.QueryContext(ctx, `
		SELECT username, email FROM "user"
		WHERE (username = $1 OR email = $2) AND NOT (id = ANY ($3))`,
		username, email, pq.Array(exclIDs),
	)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var uname, mail string
		if err = rows.Scan(&uname, &mail); err != nil {
			return err
		}
		if uname == username {
			return user.ErrUsernameExists
		}
		if mail == email {
			return user.ErrEmailExists
		}
	}
	return rows.Err()
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO "user" (org_id, branch_id, name, username, email, is_active, roles,
		                    password_hash, monthly_target, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		usr.OrgID, usr.BranchID, usr.Name, usr.Username, usr.Email, usr.IsActive,
		pq.Array(usr.Roles), usr.PasswordHash, usr.MonthlyTarget, usr.LastLogin,
		usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	return usr, err
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	usr, err := scanUser(repo.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM "user" WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return usr, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	usr, err := scanUser(repo.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM "user" WHERE username = $1 OR email = $1`, username))
	if err == sql.ErrNoRows {
		return usr, user.ErrNotFound
	}
	return usr, err
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	w := new(where)
	if filter.OrgID > 0 {
		w.add(`org_id = $%d`, filter.OrgID)
	}
	if filter.BranchID.Valid {
		w.add(`branch_id = $%d`, filter.BranchID)
	}
	if filter.Search != "" {
		s := "%" + filter.Search + "%"
		w.add(`(name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)`, s, s, s)
	}
	if len(filter.Roles) > 0 {
		// any role starting with one of the given prefixes
		prefixes := make([]string, 0, len(filter.Roles))
		for _, r := range filter.Roles {
			prefixes = append(prefixes, r+"%")
		}
		w.add(`EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE ANY ($%d))`, pq.Array(prefixes))
	}
	if filter.IsActive != nil {
		w.add(`is_active = $%d`, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		w.add(`created_at >= $%d`, filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		w.add(`created_at < $%d`, filter.CreatedTo)
	}

	q := `SELECT ` + userCols + ` FROM "user"` + w.String() + orderBy("created_at DESC", ordering)
	rows, err := repo.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	users := make([]user.User, 0)
	for rows.Next() {
		usr, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, rows.Err()
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE "user"
		SET branch_id = $1, name = $2, username = $3, email = $4, roles = $5,
		    password_hash = COALESCE($6, password_hash), monthly_target = $7,
		    is_active = COALESCE($8, is_active), updated_at = $9
		WHERE id = $10`,
		usr.BranchID, usr.Name, usr.Username, usr.Email, pq.Array(usr.Roles),
		usr.PasswordHash, usr.MonthlyTarget, isActive, usr.UpdatedAt, usr.ID,
	)
	if err != nil {
		return usr, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return usr, err
	} else if n == 0 {
		return usr, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.db.ExecContext(ctx,
		`UPDATE "user" SET last_login = $1 WHERE id = $2`, usr.LastLogin, usr.ID,
	); err != nil {
		return usr, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY ($1)`, pq.Array(ids))
	return err
}
