package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/report"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
)

// seedActivity files two closed visits and a located lead for the agent on a
// fixed day, so report endpoints have deterministic input.
func seedActivity(t *testing.T, env *testEnv, agent user.User, day time.Time) {
	t.Helper()
	ctx := context.Background()

	mkCheckin := func(at time.Time, lat, lng, sale float64) {
		_, err := env.checkinRepo.CreateCheckIn(ctx, checkin.CheckIn{
			OrgID: agent.OrgID, BranchID: agent.BranchID, UserID: agent.ID,
			Lat: lat, Lng: lng, SaleAmount: null.Float64From(sale),
			CheckedInAt: at, CheckedOutAt: null.TimeFrom(at.Add(time.Hour)),
			CreatedAt: at, UpdatedAt: at,
		})
		if err != nil {
			t.Fatalf("CreateCheckIn(): %v", err)
		}
	}
	mkCheckin(day.Add(9*time.Hour), -4.4419, 15.2663, 100)
	mkCheckin(day.Add(11*time.Hour), -4.4033, 15.3032, 200)

	if _, err := env.leadRepo.CreateLead(ctx, lead.Lead{
		OrgID: agent.OrgID, BranchID: agent.BranchID, OwnerID: null.IntFrom(agent.ID),
		Name: "Kin Retail", Status: lead.StatusNew,
		Lat: null.Float64From(-4.43), Lng: null.Float64From(15.28),
		CreatedAt: day.Add(10 * time.Hour), UpdatedAt: day.Add(10 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateLead(): %v", err)
	}
}

func Test_reportApi_mapData(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	b := env.createBranch(t, o, "Gombe")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true, b)

	day := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	seedActivity(t, env, agent, day)

	path := fmt.Sprintf("/v1/reports/map-data?from=%s&to=%s",
		day.Format(time.RFC3339), day.Add(24*time.Hour).Format(time.RFC3339))

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, path)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("markers and trips", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, agent))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var rpt report.MapDataReport
		decodeData(t, rec, &rpt)
		if rpt.OrgID != o.ID {
			t.Errorf("failed! OrgID = %d; want %d", rpt.OrgID, o.ID)
		}
		if len(rpt.Markers) != 3 { // 2 check-ins + 1 located lead
			t.Errorf("failed! len(Markers) = %d; want 3", len(rpt.Markers))
		}
		if len(rpt.Trips) != 1 {
			t.Fatalf("failed! len(Trips) = %d; want 1", len(rpt.Trips))
		}
		if rpt.Trips[0].Stops != 2 {
			t.Errorf("failed! Stops = %d; want 2", rpt.Trips[0].Stops)
		}
	})
}

func Test_reportApi_orgActivity(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	b := env.createBranch(t, o, "Gombe")
	manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true, b)

	day := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	seedActivity(t, env, agent, day)

	path := fmt.Sprintf("/v1/reports/org-activity?from=%s&to=%s",
		day.Format(time.RFC3339), day.Add(24*time.Hour).Format(time.RFC3339))

	t.Run("managers only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, agent))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("org rollup", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, manager))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var rpt report.OrgActivityReport
		decodeData(t, rec, &rpt)
		if rpt.CheckIns != 2 || rpt.Leads != 1 {
			t.Errorf("failed! CheckIns/Leads = %d/%d; want 2/1", rpt.CheckIns, rpt.Leads)
		}
		if rpt.SalesSum != 300 {
			t.Errorf("failed! SalesSum = %v; want 300", rpt.SalesSum)
		}
		if len(rpt.Users) != 2 { // every org user gets a line
			t.Fatalf("failed! len(Users) = %d; want 2", len(rpt.Users))
		}
		var agentLine report.UserActivity
		for _, ua := range rpt.Users {
			if ua.UserID == agent.ID {
				agentLine = ua
			}
		}
		if agentLine.CheckIns != 2 || agentLine.SalesSum != 300 {
			t.Errorf("failed! agent line = %+v; want 2 check-ins and 300 in sales", agentLine)
		}
	})
}

func Test_reportApi_userDaily(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	b := env.createBranch(t, o, "Gombe")
	manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true, b)

	day := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	seedActivity(t, env, agent, day)

	dayParam := day.Add(12 * time.Hour).Format(time.RFC3339)
	path := func(userID int) string {
		if userID == 0 {
			return "/v1/reports/daily?day=" + dayParam
		}
		return fmt.Sprintf("/v1/reports/daily?day=%s&user_id=%d", dayParam, userID)
	}

	t.Run("own day by default", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(0), getToken(t, agent))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var rpt report.UserDailyReport
		decodeData(t, rec, &rpt)
		if rpt.UserID != agent.ID {
			t.Errorf("failed! UserID = %d; want %d", rpt.UserID, agent.ID)
		}
		if rpt.CheckIns != 2 || rpt.SalesSum != 300 {
			t.Errorf("failed! CheckIns/SalesSum = %d/%v; want 2/300", rpt.CheckIns, rpt.SalesSum)
		}
	})

	t.Run("agents cannot read a peer's day", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(manager.ID), getToken(t, agent))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("managers read any org user's day", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(agent.ID), getToken(t, manager))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var rpt report.UserDailyReport
		decodeData(t, rec, &rpt)
		if rpt.UserID != agent.ID {
			t.Errorf("failed! UserID = %d; want %d", rpt.UserID, agent.ID)
		}
	})

	t.Run("send mails the summary", func(t *testing.T) {
		emailsvc.SentMessages = nil // reset

		req, rec := newAuthRequest(http.MethodPost, "/v1/reports/daily/send?day="+dayParam, getToken(t, agent))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, httpErr{Message: "ok"})}, rec)

		if len(emailsvc.SentMessages) != 1 {
			t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
		}
		msg := emailsvc.SentMessages[0]
		if msg.To[0].Address != agent.Email {
			t.Errorf("failed! To = %v; want %s", msg.To[0], agent.Email)
		}
	})
}
