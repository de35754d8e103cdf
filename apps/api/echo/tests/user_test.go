package tests

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
)

func Test_userApi_login(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "LolC@t123", user.AgentRoles, true)
	naughty := env.createUser(t, o, "N Dog", "ndog1234", "ndog@acme.test", "LolC@t123", user.AgentRoles, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "nobody", Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Message: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: agent.Username, Password: "nope1234"}),
			wantData: marchallObj(t, httpErr{Message: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: naughty.Username, Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Message: "account deactivated"}),
		},
		{
			name: "login by username", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: agent.Username, Password: "LolC@t123"}),
		},
		{
			name: "login by email", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: agent.Email, Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				checkCode(t, rec, tt.wantCode)
				var respData echoapi.LoginResponse
				decodeData(t, rec, &respData)
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)
	naughty := env.createUser(t, o, "N Dog", "ndog1234", "ndog@acme.test", "", user.AgentRoles, false)

	now := time.Now()
	staleClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(agent.ID),
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     agent.Username,
		Email:        agent.Email,
		OrgID:        agent.OrgID,
		IsAgent:      true,
		Roles:        agent.Roles,
	}
	staleToken, err := echoapi.GenerateToken(staleClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: staleToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, agent), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				checkCode(t, rec, tt.wantCode)
				var respData echoapi.LoginResponse
				decodeData(t, rec, &respData)
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "LolC@t123", user.AgentRoles, true)

	successData := okObj(t, map[string]string{
		"detail": "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
	pathRegex := regexp.MustCompile("/password-reset/.+/.+")

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: vldErr(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@acme.test"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: agent.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: agent.Name, Address: agent.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if !extra.emailSent {
					if len(emailsvc.SentMessages) > 0 {
						t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
					}
					return
				}
				if len(emailsvc.SentMessages) != 1 {
					t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
				}
				msg := emailsvc.SentMessages[0]
				if msg.To[0] != extra.to {
					t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
				}
				if !strings.Contains(msg.TextContent, extra.to.Name) {
					t.Errorf("failed! text content does not contain recipient's name %q", extra.to.Name)
				}
				if !pathRegex.MatchString(msg.TextContent) {
					t.Errorf("failed! text content does not match pathRegex %v", pathRegex)
				}
				if !pathRegex.MatchString(msg.HTMLContent) {
					t.Errorf("failed! HTML content does not match pathRegex %v", pathRegex)
				}
			}
		})
	}
}

func Test_userApi_confirmPasswordReset(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "LolC@t123", user.AgentRoles, true)

	validUID := user.EncodeUID(agent)
	validToken, err := user.MakeToken(agent)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}

	// generate an expired token
	dayLate := core.Conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	user.NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := user.MakeToken(agent)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}
	user.NowFunc = time.Now // reset

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"token": reqMsg, "uid": reqMsg, "password": reqMsg, "password_confirm": reqMsg}),
		},
		{
			name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "LolC@t123", PasswordConfirm: "lol"}),
			wantData: vldErr(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "bG9s", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Message: "invalid uid"}),
		},
		{
			name: "user not found", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "OTk5", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Message: "invalid uid"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "HE4TS-sigsig-sig", UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Message: "invalid token"}),
		},
		{
			name: "expired token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: expiredToken, UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Message: "token expired"}),
		},
		{
			name: "valid token", wantCode: http.StatusOK,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: "NewC@t456", PasswordConfirm: "NewC@t456"}),
			wantData: okObj(t, map[string]string{"detail": "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := env.usrRepo.GetUserByID(context.Background(), agent.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, agent.PasswordHash) {
					t.Fatal("failed to update password")
				}
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	o2 := env.createOrg(t, "Umoja", "umoja")
	admin := env.createUser(t, o, "Admin", "acmeadmin", "admin@acme.test", "", []string{user.RoleAdmin}, true)
	manager := env.createUser(t, o, "Mado Ilunga", "madoilunga", "mado@acme.test", "", user.ManagerRoles, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)
	_ = env.createUser(t, o2, "Outsider", "outsider1", "out@umoja.test", "", []string{user.RoleAdmin}, true)

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, agent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "org users only", path: "/v1/users", token: adminToken,
			wantCode: http.StatusOK, wantData: okObj(t, []user.User{admin, manager, agent}),
		},
		{
			name: "search", path: "/v1/users?search=awa", token: adminToken,
			wantCode: http.StatusOK, wantData: okObj(t, []user.User{agent}),
		},
		{
			name: "search (unknown)", path: "/v1/users?search=zzz", token: adminToken,
			wantCode: http.StatusOK, wantData: okObj(t, []user.User{}),
		},
		{
			name: "role filter", path: "/v1/users?role=manager:", token: adminToken,
			wantCode: http.StatusOK, wantData: okObj(t, []user.User{manager}),
		},
		{
			name: "roles list", path: "/v1/users/roles", token: adminToken,
			wantCode: http.StatusOK, wantData: okObj(t, user.Roles),
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

func Test_userApi_create(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	admin := env.createUser(t, o, "Admin", "acmeadmin", "admin@acme.test", "", []string{user.RoleAdmin}, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)

	adminToken := getToken(t, admin)
	newUsr := func(name, uname, email string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{
			Name: name, Username: uname, Email: email,
			Password: "LolC@t123", PasswordConfirm: "LolC@t123", Roles: roles,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, agent),
			body:     newUsr("Ben Kazadi", "benkazadi", "ben@acme.test", user.RoleAgent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "duplicate email", token: adminToken,
			body:     newUsr("Awa Clone", "awaclone", agent.Email, user.RoleAgent),
			wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "cannot grant roles above own", token: adminToken,
			body:     newUsr("Big Boss", "bigboss1", "boss@acme.test", user.RoleAdminOwner),
			wantCode: http.StatusBadRequest,
			wantData: vldErr(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "created", token: adminToken,
			body:     newUsr("Ben Kazadi", "benkazadi", "ben@acme.test", user.RoleAgent),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				checkCode(t, rec, tt.wantCode)
				var usr user.User
				decodeData(t, rec, &usr)
				if usr.ID == 0 {
					t.Error("failed! user not persisted")
				}
				if usr.OrgID != o.ID {
					t.Errorf("failed! OrgID = %d; want %d", usr.OrgID, o.ID)
				}
				if !usr.IsActive {
					t.Error("failed! new user should be active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	env := newEnv(t)
	o := env.createOrg(t, "ACME", "acme")
	o2 := env.createOrg(t, "Umoja", "umoja")
	admin := env.createUser(t, o, "Admin", "acmeadmin", "admin@acme.test", "", []string{user.RoleAdmin}, true)
	agent := env.createUser(t, o, "Awa Mbayo", "awambayo", "awa@acme.test", "", user.AgentRoles, true)
	outsider := env.createUser(t, o2, "Outsider", "outsider1", "out@umoja.test", "", user.AgentRoles, true)

	adminToken := getToken(t, admin)
	agentToken := getToken(t, agent)
	path := func(id int) string { return fmt.Sprintf("/v1/users/%d", id) }

	t.Run("agent reads self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(agent.ID), agentToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: okObj(t, agent)}, rec)
	})

	t.Run("agent cannot read peer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(admin.ID), agentToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("admin reads peer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(agent.ID), adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: okObj(t, agent)}, rec)
	})

	t.Run("cross-org rows read as absent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(outsider.ID), adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("agent updates own name", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Awa M. Mbayo"})
		req, rec := newAuthRequest(http.MethodPut, path(agent.ID), agentToken, body)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var usr user.User
		decodeData(t, rec, &usr)
		if usr.Name != "Awa M. Mbayo" {
			t.Errorf("failed! Name = %q; want %q", usr.Name, "Awa M. Mbayo")
		}
	})

	t.Run("agent cannot self-promote", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"roles": []string{user.RoleAdmin}})
		req, rec := newAuthRequest(http.MethodPut, path(agent.ID), agentToken, body)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path(admin.ID), adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("bulk delete cannot include self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/users?id=%d&id=%d", agent.ID, admin.ID), adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("admin deletes agent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path(agent.ID), adminToken)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)

		if _, err := env.usrRepo.GetUserByID(context.Background(), agent.ID); err != user.ErrNotFound {
			t.Errorf("failed! err = %v; want %v", err, user.ErrNotFound)
		}
	})
}
