package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/volatiletech/null/v8"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/user"
)

func Test_leadApi_create(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	b := env.createBranch(t, o, "Gombe")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true, b)

	agentToken := getToken(t, agent)

	t.Run("required fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads", agentToken, marchallObj(t, lead.NewLead{}))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"name": "this field is required"}),
		}, rec)
	})

	t.Run("unknown status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads", agentToken,
			marchallObj(t, lead.NewLead{Name: "Kin Retail", Status: "hotlead"}))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("owner defaults to the caller", func(t *testing.T) {
		body := marchallObj(t, lead.NewLead{Name: "Kin Retail", Email: "SHOP@KINRETAIL.CD"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads", agentToken, body)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)

		var l lead.Lead
		decodeData(t, rec, &l)
		if l.OrgID != o.ID || l.BranchID != null.IntFrom(b.ID) {
			t.Errorf("failed! tenancy = org %d branch %v; want org %d branch %d", l.OrgID, l.BranchID, o.ID, b.ID)
		}
		if l.OwnerID != null.IntFrom(agent.ID) {
			t.Errorf("failed! OwnerID = %v; want %d", l.OwnerID, agent.ID)
		}
		if l.Status != lead.StatusNew {
			t.Errorf("failed! Status = %q; want %q", l.Status, lead.StatusNew)
		}
		if l.Email != "shop@kinretail.cd" {
			t.Errorf("failed! Email = %q; want lowercased", l.Email)
		}
	})
}

func Test_leadApi_batchCreate(t *testing.T) {
	newBatch := func(names ...string) []byte {
		leads := make([]lead.NewLead, 0, len(names))
		for _, name := range names {
			leads = append(leads, lead.NewLead{Name: name})
		}
		data, _ := json.Marshal(lead.BatchCreate{Leads: leads})
		return data
	}

	t.Run("managers only", func(t *testing.T) {
		env := newEnv(t)
		o := env.createOrg(t, "ACME", "acme")
		agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)

		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/batch", getToken(t, agent), newBatch("Kin Retail"))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("all rows imported", func(t *testing.T) {
		env := newEnv(t)
		o := env.createOrg(t, "ACME", "acme")
		manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)

		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/batch", getToken(t, manager),
			newBatch("Kin Retail", "Limete Wholesale", "Matonge Kiosk"))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)

		var res lead.BatchResult
		decodeData(t, rec, &res)
		if res.BatchID == "" {
			t.Error("failed! empty BatchID")
		}
		if res.Total != 3 || res.Created != 3 || res.Failed != 0 {
			t.Errorf("failed! total/created/failed = %d/%d/%d; want 3/3/0", res.Total, res.Created, res.Failed)
		}
	})

	t.Run("failed chunks are reported", func(t *testing.T) {
		env := newEnv(t, "Poison Pill") // chunks containing this lead roll back
		o := env.createOrg(t, "ACME", "acme")
		manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)

		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/batch", getToken(t, manager),
			newBatch("Kin Retail", "Poison Pill", "Matonge Kiosk"))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusMultiStatus)

		var res lead.BatchResult
		decodeData(t, rec, &res)
		if res.Created != 0 || res.Failed != 3 {
			t.Errorf("failed! created/failed = %d/%d; want 0/3", res.Created, res.Failed)
		}
		if len(res.Chunks) != 1 || res.Chunks[0].Error == "" {
			t.Errorf("failed! chunk errors not reported: %+v", res.Chunks)
		}
	})
}

func Test_leadApi_assign(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)

	managerToken := getToken(t, manager)

	// seed a lead through the API; it lands owned by the manager
	req, rec := newAuthRequest(http.MethodPost, "/v1/leads", managerToken,
		marchallObj(t, lead.NewLead{Name: "Kin Retail"}))
	env.app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusCreated)
	var l lead.Lead
	decodeData(t, rec, &l)

	path := fmt.Sprintf("/v1/leads/%d/assign", l.ID)

	t.Run("agents cannot assign", func(t *testing.T) {
		body := marchallObj(t, echoapi.AssignRequest{OwnerID: null.IntFrom(agent.ID)})
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, agent), body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("manager assigns", func(t *testing.T) {
		body := marchallObj(t, echoapi.AssignRequest{OwnerID: null.IntFrom(agent.ID)})
		req, rec := newAuthRequest(http.MethodPost, path, managerToken, body)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var assigned lead.Lead
		decodeData(t, rec, &assigned)
		if assigned.OwnerID != null.IntFrom(agent.ID) {
			t.Errorf("failed! OwnerID = %v; want %d", assigned.OwnerID, agent.ID)
		}
	})

	t.Run("manager unassigns", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, managerToken, []byte(`{"owner_id":null}`))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var unassigned lead.Lead
		decodeData(t, rec, &unassigned)
		if unassigned.OwnerID.Valid {
			t.Errorf("failed! OwnerID = %v; want unset", unassigned.OwnerID)
		}
	})

	t.Run("unknown lead", func(t *testing.T) {
		body := marchallObj(t, echoapi.AssignRequest{OwnerID: null.IntFrom(agent.ID)})
		req, rec := newAuthRequest(http.MethodPost, "/v1/leads/999/assign", managerToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: lead.ErrNotFound.Error()}),
		}, rec)
	})
}
