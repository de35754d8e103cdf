package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func Test_checkinRepository_CreateCheckIn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepository(db)

	now := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	c := checkin.CheckIn{
		OrgID:       1,
		BranchID:    null.IntFrom(2),
		UserID:      3,
		Lat:         -4.4419,
		Lng:         15.2663,
		Address:     null.StringFrom("12 Avenue de la Paix, Gombe"),
		Notes:       "restocked shelf",
		CheckedInAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO checkin`)).
		WithArgs(c.OrgID, c.BranchID, c.UserID, c.Lat, c.Lng, c.Address, c.ContactName,
			c.ContactPhone, c.SaleAmount, c.Notes, c.CheckedInAt, c.CreatedAt, c.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	c, err := repo.CreateCheckIn(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 7, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_checkinRepository_GetCheckInByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM checkin WHERE org_id = $1 AND id = $2 AND NOT is_deleted`)

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(1, 404).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetCheckInByID(ctx, 1, 404)
		assert.Equal(t, checkin.ErrNotFound, err)
	})

	t.Run("ok", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(1, 7).WillReturnRows(
			sqlmock.NewRows([]string{"id", "org_id", "user_id", "lat", "lng"}).
				AddRow(7, 1, 3, -4.4419, 15.2663),
		)

		c, err := repo.GetCheckInByID(ctx, 1, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, c.ID)
		assert.Equal(t, 3, c.UserID)
		assert.Equal(t, -4.4419, c.Lat)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_checkinRepository_FilterCheckIns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepository(db)

	filter := checkin.QueryFilter{
		OrgID:  1,
		UserID: null.IntFrom(3),
		Pagination: core.Pagination{
			Page:     1,
			PageSize: 2,
		},
	}

	where := regexp.QuoteMeta(`WHERE org_id = $1 AND NOT is_deleted AND user_id = $2`)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM checkin `+where).
		WithArgs(filter.OrgID, filter.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT \* FROM checkin `+where+regexp.QuoteMeta(` ORDER BY checked_in_at DESC LIMIT 2 OFFSET 0`)).
		WithArgs(filter.OrgID, filter.UserID).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "org_id", "user_id"}).
				AddRow(8, 1, 3).
				AddRow(7, 1, 3),
		)

	checkins, total, err := repo.FilterCheckIns(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, checkins, 2)
	assert.Equal(t, 8, checkins[0].ID)
	assert.Equal(t, 7, checkins[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_checkinRepository_UpdateCheckIn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepository(db)

	c := checkin.CheckIn{ID: 404, OrgID: 1}
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE checkin`)).
		WithArgs(c.Address, c.ContactName, c.ContactPhone, c.SaleAmount,
			c.Notes, c.CheckedOutAt, c.UpdatedAt, c.OrgID, c.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateCheckIn(context.Background(), c)
	assert.Equal(t, checkin.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_checkinRepository_SoftDeleteRestore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckInRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE checkin SET is_deleted = TRUE`)).
		WithArgs(1, pq.Array([]int{7, 8})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE checkin SET is_deleted = FALSE`)).
		WithArgs(1, pq.Array([]int{7})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDeleteCheckIns(ctx, 1, 7, 8))
	require.NoError(t, repo.RestoreCheckIns(ctx, 1, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
