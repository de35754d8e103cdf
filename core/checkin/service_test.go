package checkin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	dummydb "github.com/trezcool/kazi/storage/database/dummy"
)

type fakeGeocoder struct {
	addr string
	err  error
}

func (g fakeGeocoder) Reverse(context.Context, core.Point) (string, error) { return g.addr, g.err }

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(t *testing.T, geocoder core.Geocoder) *checkin.Service {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return checkin.NewService(dummydb.NewCheckInRepository(db), geocoder, nopLogger{})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("address backfilled from the geocoder", func(t *testing.T) {
		svc := newTestService(t, fakeGeocoder{addr: "12 Avenue Kasavubu, Kinshasa"})

		c, err := svc.Create(ctx, checkin.NewCheckIn{
			OrgID: 1, UserID: 1, Lat: -4.44, Lng: 15.26,
			CheckedInAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, "12 Avenue Kasavubu, Kinshasa", c.Address.String)
		assert.False(t, c.CheckedOutAt.Valid)
	})

	t.Run("provided address wins", func(t *testing.T) {
		svc := newTestService(t, fakeGeocoder{addr: "somewhere else"})

		c, err := svc.Create(ctx, checkin.NewCheckIn{
			OrgID: 1, UserID: 1, Lat: -4.44, Lng: 15.26,
			Address: null.StringFrom("Marché Central"), CheckedInAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, "Marché Central", c.Address.String)
	})

	t.Run("geocoder outage does not fail the check-in", func(t *testing.T) {
		svc := newTestService(t, fakeGeocoder{err: context.DeadlineExceeded})

		c, err := svc.Create(ctx, checkin.NewCheckIn{
			OrgID: 1, UserID: 1, Lat: -4.44, Lng: 15.26, CheckedInAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.False(t, c.Address.Valid)
	})
}

func TestService_CheckOut(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	in := time.Now().UTC().Add(-2 * time.Hour)
	c, err := svc.Create(ctx, checkin.NewCheckIn{
		OrgID: 1, UserID: 1, Lat: -4.44, Lng: 15.26, CheckedInAt: in,
	})
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		_, err := svc.CheckOut(ctx, 1, c.ID+999, checkin.CheckOut{})
		assert.Equal(t, checkin.ErrNotFound, err)
	})

	t.Run("wrong org reads as not found", func(t *testing.T) {
		_, err := svc.CheckOut(ctx, 2, c.ID, checkin.CheckOut{})
		assert.Equal(t, checkin.ErrNotFound, err)
	})

	t.Run("check-out before check-in rejected", func(t *testing.T) {
		_, err := svc.CheckOut(ctx, 1, c.ID, checkin.CheckOut{CheckedOutAt: in.Add(-time.Hour)})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("closes the visit and records the sale", func(t *testing.T) {
		out, err := svc.CheckOut(ctx, 1, c.ID, checkin.CheckOut{SaleAmount: null.Float64From(150)})
		require.NoError(t, err)
		require.True(t, out.CheckedOutAt.Valid)
		assert.Equal(t, 150.0, out.SaleAmount.Float64)
		assert.InDelta(t, 2*time.Hour, out.Duration(), float64(time.Minute))
	})

	t.Run("double check-out rejected", func(t *testing.T) {
		_, err := svc.CheckOut(ctx, 1, c.ID, checkin.CheckOut{})
		assert.Equal(t, checkin.ErrAlreadyClosed, err)
	})
}

func TestService_DeleteRestore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	c, err := svc.Create(ctx, checkin.NewCheckIn{
		OrgID: 1, UserID: 1, Lat: -4.44, Lng: 15.26, CheckedInAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, c.ID))
	_, err = svc.GetByID(ctx, 1, c.ID)
	assert.Equal(t, checkin.ErrNotFound, err)

	// soft-deleted rows come back
	require.NoError(t, svc.Restore(ctx, 1, c.ID))
	got, err := svc.GetByID(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	// restore is org scoped
	require.NoError(t, svc.Delete(ctx, 1, c.ID))
	require.NoError(t, svc.Restore(ctx, 2, c.ID))
	_, err = svc.GetByID(ctx, 1, c.ID)
	assert.Equal(t, checkin.ErrNotFound, err)

	require.NoError(t, svc.HardDelete(ctx, 1, c.ID))
	require.NoError(t, svc.Restore(ctx, 1, c.ID)) // gone for good
	_, err = svc.GetByID(ctx, 1, c.ID)
	assert.Equal(t, checkin.ErrNotFound, err)
}

func TestService_Filter(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	base := time.Date(2025, time.May, 5, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, checkin.NewCheckIn{
			OrgID: 1, UserID: 1 + i%2, Lat: -4.44, Lng: 15.26,
			CheckedInAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	t.Run("by user", func(t *testing.T) {
		got, total, err := svc.Filter(ctx, checkin.QueryFilter{OrgID: 1, UserID: null.IntFrom(1)})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, got, 3)
	})

	t.Run("date window", func(t *testing.T) {
		got, _, err := svc.Filter(ctx, checkin.QueryFilter{
			OrgID: 1, DateFrom: base.Add(time.Hour), DateTo: base.Add(3 * time.Hour),
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("pagination reports the full total", func(t *testing.T) {
		got, total, err := svc.Filter(ctx, checkin.QueryFilter{
			OrgID: 1, Pagination: core.Pagination{Page: 1, PageSize: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, got, 2)
	})

	t.Run("other org sees nothing", func(t *testing.T) {
		got, total, err := svc.Filter(ctx, checkin.QueryFilter{OrgID: 2})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, got)
	})
}
