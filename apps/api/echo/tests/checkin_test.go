package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/user"
)

func Test_checkinApi_create(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	b := env.createBranch(t, o, "Gombe")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true, b)

	agentToken := getToken(t, agent)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/check-ins")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		body := marchallObj(t, map[string]float64{"lat": 120, "lng": 15.26})
		req, rec := newAuthRequest(http.MethodPost, "/v1/check-ins", agentToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"lat": "lat must contain valid latitude coordinates"}),
		}, rec)
	})

	t.Run("tenancy stamped from token", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"lat": -4.4419, "lng": 15.2663, "notes": "first visit"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/check-ins", agentToken, body)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)

		var c checkin.CheckIn
		decodeData(t, rec, &c)
		if c.OrgID != o.ID {
			t.Errorf("failed! OrgID = %d; want %d", c.OrgID, o.ID)
		}
		if c.BranchID != null.IntFrom(b.ID) {
			t.Errorf("failed! BranchID = %v; want %d", c.BranchID, b.ID)
		}
		if c.UserID != agent.ID {
			t.Errorf("failed! UserID = %d; want %d", c.UserID, agent.ID)
		}
		// address backfilled by the geocoder
		if !c.Address.Valid || c.Address.String == "" {
			t.Errorf("failed! Address = %v; want backfilled", c.Address)
		}
		if c.CheckedOutAt.Valid {
			t.Error("failed! new check-in must be open")
		}
	})
}

func Test_checkinApi_query(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	o2 := env.createOrg(t, "Umoja", "umoja")
	manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)
	other := env.createUser(t, o, "Ben Kazadi", "benkazadi", "ben@acme.test", "", user.AgentRoles, true)
	outsider := env.createUser(t, o2, "Outsider", "outsider1", "out@umoja.test", "", user.AgentRoles, true)

	day := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	mkCheckin := func(usr user.User, at time.Time) checkin.CheckIn {
		c, err := env.checkinRepo.CreateCheckIn(context.Background(), checkin.CheckIn{
			OrgID: usr.OrgID, UserID: usr.ID, Lat: -4.44, Lng: 15.26,
			CheckedInAt: at, CreatedAt: at, UpdatedAt: at,
		})
		if err != nil {
			t.Fatalf("CreateCheckIn(): %v", err)
		}
		return c
	}
	c1 := mkCheckin(agent, day.Add(9*time.Hour))
	c2 := mkCheckin(agent, day.Add(11*time.Hour))
	c3 := mkCheckin(other, day.Add(10*time.Hour))
	_ = mkCheckin(outsider, day.Add(12*time.Hour))

	meta := func(total int) core.ListMeta { return core.ListMeta{Page: 1, PageSize: 50, Total: total} }

	tests := []httpTest{
		{name: "Auth required", path: "/v1/check-ins", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			// rows come back in visit order
			name: "agents only see their own visits", path: "/v1/check-ins", token: getToken(t, agent),
			wantCode: http.StatusOK, wantData: okList(t, []checkin.CheckIn{c1, c2}, meta(2)),
		},
		{
			name: "managers see the whole org", path: "/v1/check-ins", token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: okList(t, []checkin.CheckIn{c1, c3, c2}, meta(3)),
		},
		{
			name: "user filter", path: fmt.Sprintf("/v1/check-ins?user_id=%d", other.ID), token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: okList(t, []checkin.CheckIn{c3}, meta(1)),
		},
		{
			name: "pagination", path: "/v1/check-ins?page=1&page_size=2", token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: okList(t, []checkin.CheckIn{c1, c3}, core.ListMeta{Page: 1, PageSize: 2, Total: 3}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_checkinApi_checkOut(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)

	agentToken := getToken(t, agent)

	checkedIn := time.Now().UTC().Add(-2 * time.Hour)
	c, err := env.checkinRepo.CreateCheckIn(context.Background(), checkin.CheckIn{
		OrgID: o.ID, UserID: agent.ID, Lat: -4.44, Lng: 15.26,
		CheckedInAt: checkedIn, CreatedAt: checkedIn, UpdatedAt: checkedIn,
	})
	if err != nil {
		t.Fatalf("CreateCheckIn(): %v", err)
	}
	path := fmt.Sprintf("/v1/check-ins/%d/checkout", c.ID)

	t.Run("check-out must come after check-in", func(t *testing.T) {
		body := marchallObj(t, checkin.CheckOut{CheckedOutAt: checkedIn.Add(-time.Hour)})
		req, rec := newAuthRequest(http.MethodPost, path, agentToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"checked_out_at": "check-out must come after check-in"}),
		}, rec)
	})

	t.Run("closes the visit", func(t *testing.T) {
		body := marchallObj(t, checkin.CheckOut{SaleAmount: null.Float64From(150)})
		req, rec := newAuthRequest(http.MethodPost, path, agentToken, body)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var closed checkin.CheckIn
		decodeData(t, rec, &closed)
		if !closed.CheckedOutAt.Valid {
			t.Error("failed! CheckedOutAt not set")
		}
		if closed.SaleAmount != null.Float64From(150) {
			t.Errorf("failed! SaleAmount = %v; want 150", closed.SaleAmount)
		}
	})

	t.Run("cannot close twice", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, agentToken, marchallObj(t, checkin.CheckOut{}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: checkin.ErrAlreadyClosed.Error()}),
		}, rec)
	})

	t.Run("unknown check-in", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/check-ins/999/checkout", agentToken, marchallObj(t, checkin.CheckOut{}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: checkin.ErrNotFound.Error()}),
		}, rec)
	})
}

func Test_checkinApi_destroyRestorePurge(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	admin := env.createUser(t, o, "Admin", "acmeadmin", "admin@acme.test", "", []string{user.RoleAdmin}, true)
	manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)

	now := time.Now().UTC()
	c, err := env.checkinRepo.CreateCheckIn(context.Background(), checkin.CheckIn{
		OrgID: o.ID, UserID: agent.ID, Lat: -4.44, Lng: 15.26,
		CheckedInAt: now, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCheckIn(): %v", err)
	}

	detailPath := fmt.Sprintf("/v1/check-ins/%d", c.ID)
	idsBody := marchallObj(t, map[string][]int{"ids": {c.ID}})
	getCode := func(token string) int {
		req, rec := newAuthRequest(http.MethodGet, detailPath, token)
		env.app.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("agents cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/check-ins?id=%d", c.ID), getToken(t, agent))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("manager soft-deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/check-ins?id=%d", c.ID), getToken(t, manager))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)

		if code := getCode(getToken(t, manager)); code != http.StatusNotFound {
			t.Errorf("failed! deleted row still readable; code = %d", code)
		}
	})

	t.Run("agents cannot restore", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/check-ins/restore", getToken(t, agent), idsBody)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("manager restores", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/check-ins/restore", getToken(t, manager), idsBody)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)

		if code := getCode(getToken(t, manager)); code != http.StatusOK {
			t.Errorf("failed! restored row not readable; code = %d", code)
		}
	})

	t.Run("managers cannot purge", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/check-ins/purge?id=%d", c.ID), getToken(t, manager))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("admin purges for good", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/check-ins/purge?id=%d", c.ID), getToken(t, admin))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)

		// gone even after a restore attempt
		req, rec = newAuthRequest(http.MethodPost, "/v1/check-ins/restore", getToken(t, manager), idsBody)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)
		if code := getCode(getToken(t, manager)); code != http.StatusNotFound {
			t.Errorf("failed! purged row still readable; code = %d", code)
		}
	})
}
