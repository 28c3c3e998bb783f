package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/studify/backend/apps/api/echo"
	"github.com/studify/backend/core/user"
)

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)

	tests := []httpTest{
		{
			name: "empty body", body: marchallObj(t, map[string]string{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username":         "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "password too short",
			body: marchallObj(t, map[string]string{
				"username": "kal", "email": "kal@test.cd",
				"password": "short", "password_confirm": "short",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "duplicate username",
			body: marchallObj(t, map[string]string{
				"username": "awe", "email": "new@test.cd",
				"password": "LePassw0rd", "password_confirm": "LePassw0rd",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "duplicate email",
			body: marchallObj(t, map[string]string{
				"username": "kal", "email": "awe@test.cd",
				"password": "LePassw0rd", "password_confirm": "LePassw0rd",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "registered",
			body: marchallObj(t, map[string]string{
				"username": "kal", "email": "kal@test.cd",
				"password": "LePassw0rd", "password_confirm": "LePassw0rd",
				"role": user.RoleAdmin, // ignored; self registration is never admin
			}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if usr.Role != user.RoleUser {
					t.Errorf("usr.Role = %s; want %s", usr.Role, user.RoleUser)
				}
				if !usr.IsActive {
					t.Error("new account should be active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	createUser(t, env.usrRepo, "ndog", "ndog@test.cd", "LePassw0rd", false, false) // 😂

	tests := []httpTest{
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: "awe", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, echoapi.LoginRequest{Username: "ndog", Password: "LePassw0rd"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: marchallObj(t, echoapi.LoginRequest{Username: "awe", Password: "LePassw0rd"}), wantCode: http.StatusOK},
		{name: "login with email", body: marchallObj(t, echoapi.LoginRequest{Username: "awe@test.cd", Password: "LePassw0rd"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				// a login opens the progression session
				if respData.Progress == nil || respData.Progress.Level != 1 || respData.Progress.NextLevelXP != 10000 {
					t.Errorf("failed! progress = %+v", respData.Progress)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	env := setup(t)

	student := createUser(t, env.usrRepo, "hero", "hero@test.cd", "LePassw0rd", false, true)
	naughty := createUser(t, env.usrRepo, "ndog", "ndog@test.cd", "LePassw0rd", false, false) // 😂

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    env.conf.AppName,
			Subject:   student.ID,
			Audience:  "Studify",
			ExpiresAt: now.Add(env.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * env.conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     student.Username,
		Email:        student.Email,
	}
	unrefreshableToken, err := echoapi.GenerateToken(env.conf, unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, env.conf, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, env.conf, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_logout(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	env.progSvc.Start(ctx, usr.ID)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/logout", getToken(t, env.conf, usr))
	env.app.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}
	// the progression session is gone
	if _, err := env.progSvc.Current(usr.ID); err == nil {
		t.Error("progression session still live after logout")
	}
}

func Test_userApi_userQuery(t *testing.T) {
	env := setup(t)

	path := func(params url.Values) string {
		return "/v1/users?" + params.Encode()
	}
	awe := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	kal := createUser(t, env.usrRepo, "kal", "kal@test.cd", "LePassw0rd", false, true)
	admin := createUser(t, env.usrRepo, "admin", "admin@test.cd", "LePassw0rd", true, true)
	naughty := createUser(t, env.usrRepo, "ndog", "ndog@test.cd", "LePassw0rd", false, false) // 😂

	adminToken := getToken(t, env.conf, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, env.conf, awe),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/v1/users", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, awe, kal, admin, naughty),
		},
		{
			name: "search (unknown)", path: path(url.Values{"search": {"lol"}}),
			token: adminToken, wantCode: http.StatusOK, wantData: empty,
		},
		{
			name: "search", path: path(url.Values{"search": {"KAL"}}),
			token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, kal),
		},
		{
			name: "role=admin", path: path(url.Values{"role": {user.RoleAdmin}}),
			token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, admin),
		},
		{
			name: "is_active=false", path: path(url.Values{"is_active": {"false"}}),
			token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, naughty),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userDetail(t *testing.T) {
	env := setup(t)

	awe := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	kal := createUser(t, env.usrRepo, "kal", "kal@test.cd", "LePassw0rd", false, true)
	admin := createUser(t, env.usrRepo, "admin", "admin@test.cd", "LePassw0rd", true, true)

	aweToken := getToken(t, env.conf, awe)
	adminToken := getToken(t, env.conf, admin)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/v1/users/" + awe.ID,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "own account", method: http.MethodGet, path: "/v1/users/" + awe.ID, token: aweToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, awe),
		},
		{
			name: "someone else's account", method: http.MethodGet, path: "/v1/users/" + kal.ID, token: aweToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "admin can read anyone", method: http.MethodGet, path: "/v1/users/" + kal.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, kal),
		},
		{
			name: "non-admin cannot change role", method: http.MethodPut, path: "/v1/users/" + awe.ID, token: aweToken,
			body:     marchallObj(t, map[string]string{"role": user.RoleAdmin}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "non-admin cannot deactivate", method: http.MethodPut, path: "/v1/users/" + awe.ID, token: aweToken,
			body:     marchallObj(t, map[string]bool{"is_active": false}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "non-admin cannot delete", method: http.MethodDelete, path: "/v1/users/" + awe.ID, token: aweToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("admin promotes a user", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"role": user.RoleAdmin})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+kal.ID, adminToken, body)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if respData.Role != user.RoleAdmin {
			t.Errorf("respData.Role = %s; want %s", respData.Role, user.RoleAdmin)
		}
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin deletes a user", func(t *testing.T) {
		env.progSvc.Start(context.Background(), awe.ID)

		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+awe.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}
		if _, err := env.usrRepo.GetUserByID(context.Background(), awe.ID); err != user.ErrNotFound {
			t.Errorf("GetUserByID() error = %v; want %v", err, user.ErrNotFound)
		}
		// the progression session is gone too
		if _, err := env.progSvc.Current(awe.ID); err == nil {
			t.Error("progression session still live after account deletion")
		}
	})
}
