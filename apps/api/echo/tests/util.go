// Package tests exercises the HTTP API end to end against in-memory repositories.
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	. "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/claim"
	"github.com/trezcool/kazi/core/competitor"
	"github.com/trezcool/kazi/core/journal"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/report"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	dummydb "github.com/trezcool/kazi/storage/database/dummy"
)

var (
	errMissingToken = httpErr{Message: "missing or malformed jwt"}
	errForbidden    = httpErr{Message: "permission denied"}
	errNotFound     = httpErr{Message: "not found"}
)

// httpErr is the envelope an API error renders to.
type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

type testEnv struct {
	app Server

	orgRepo     org.Repository
	usrRepo     user.Repository
	checkinRepo checkin.Repository
	claimRepo   claim.Repository
	leadRepo    lead.Repository
}

// newEnv wires a full server on top of dummydb repositories. Lead names
// passed in failLeads make the lead repository reject any import chunk
// containing them, so batch rollbacks can be exercised.
func newEnv(t *testing.T, failLeads ...string) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}

	orgRepo := dummydb.NewOrgRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	checkinRepo := dummydb.NewCheckInRepository(db)
	claimRepo := dummydb.NewClaimRepository(db)
	competitorRepo := dummydb.NewCompetitorRepository(db)
	journalRepo := dummydb.NewJournalRepository(db)
	leadRepo := dummydb.NewLeadRepository(db)
	if len(failLeads) > 0 {
		leadRepo = dummydb.NewFailingLeadRepository(db, failLeads...)
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	logger := nopLogger{}
	geocoder := stubGeocoder{address: "12 Avenue de la Paix, Gombe"}

	app := NewServer(
		"", /* addr */
		&ServerDeps{
			Logger:        logger,
			UserSvc:       user.NewService(usrRepo, mailSvc),
			OrgSvc:        org.NewService(orgRepo),
			CheckInSvc:    checkin.NewService(checkinRepo, geocoder, logger),
			ClaimSvc:      claim.NewService(claimRepo),
			CompetitorSvc: competitor.NewService(competitorRepo),
			JournalSvc:    journal.NewService(journalRepo),
			LeadSvc:       lead.NewService(leadRepo, logger),
			ReportSvc: report.NewService(
				orgRepo, usrRepo, checkinRepo, claimRepo, journalRepo, leadRepo,
				geocoder, nil /* cache */, mailSvc, logger,
			),
			DisableReqLogs: true,
		},
	)

	return &testEnv{
		app:         app,
		orgRepo:     orgRepo,
		usrRepo:     usrRepo,
		checkinRepo: checkinRepo,
		claimRepo:   claimRepo,
		leadRepo:    leadRepo,
	}
}

func (env *testEnv) createOrg(t *testing.T, name, slug string) org.Organisation {
	t.Helper()
	now := time.Now().UTC()
	o, err := env.orgRepo.CreateOrganisation(context.Background(), org.Organisation{
		Name: name, Slug: slug, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateOrganisation(): %v", err)
	}
	return o
}

func (env *testEnv) createBranch(t *testing.T, o org.Organisation, name string) org.Branch {
	t.Helper()
	now := time.Now().UTC()
	b, err := env.orgRepo.CreateBranch(context.Background(), org.Branch{
		OrgID: o.ID, Name: name, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateBranch(): %v", err)
	}
	return b
}

func (env *testEnv) createUser(
	t *testing.T,
	o org.Organisation,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	branch ...org.Branch,
) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		OrgID:     o.ID,
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(branch) > 0 {
		usr.BranchID = null.IntFrom(branch[0].ID)
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

// okObj wraps data in the success envelope.
func okObj(t *testing.T, data interface{}) []byte {
	return marchallObj(t, Response{Message: "ok", Data: data})
}

// okList wraps a paginated collection in the success envelope.
func okList(t *testing.T, data interface{}, meta core.ListMeta) []byte {
	return marchallObj(t, Response{Message: "ok", Data: data, Meta: meta})
}

// vldErr wraps per-field errors the way the error handler renders them.
func vldErr(t *testing.T, fields map[string]string) []byte {
	return marchallObj(t, Response{Message: "validation error", Data: fields})
}

// decodeData unmarshals the envelope's data field into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var resp struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decodeData(): %v; body %s", err, rec.Body.String())
	}
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("decodeData(): %v; data %s", err, resp.Data)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) {
	t.Helper()
	if rec.Code != wantCode {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, wantCode, rec.Body.String())
	}
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type stubGeocoder struct {
	address string
}

func (g stubGeocoder) Reverse(context.Context, core.Point) (string, error) {
	return g.address, nil
}
