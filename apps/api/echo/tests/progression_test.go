package tests

import (
	"context"
	"net/http"
	"testing"

	echoapi "github.com/studify/backend/apps/api/echo"
	"github.com/studify/backend/core/progression"
)

func Test_progressionApi_retrieve(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	token := getToken(t, env.conf, usr)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "lazy session start", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, progression.DefaultState()),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/progress"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_progressionApi_grantReward(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	token := getToken(t, env.conf, usr)
	env.progSvc.Start(ctx, usr.ID)

	coins := 0
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "negative exp rejected", token: token,
			body:     marchallObj(t, map[string]int{"exp": -1}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "coins default to exp", token: token,
			body:     marchallObj(t, echoapi.RewardRequest{Exp: 250}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.RewardResponse{
				State: progression.State{Level: 1, XP: 250, NextLevelXP: 10000, Coins: 250},
			}),
		},
		{
			name: "explicit coin gain", token: token,
			body:     marchallObj(t, echoapi.RewardRequest{Exp: 9750, Coins: &coins}),
			wantCode: http.StatusOK,
			// 10000 XP total crosses level 1; bonus 22
			wantData: marchallObj(t, echoapi.RewardResponse{
				State:        progression.State{Level: 2, XP: 0, NextLevelXP: 12000, Coins: 272},
				LevelsGained: 1,
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/progress/reward"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.name == "negative exp rejected" {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	env.progSvc.Flush()
}

func Test_progressionApi_refresh(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	token := getToken(t, env.conf, usr)

	state := env.progSvc.Start(ctx, usr.ID)
	env.progSvc.Flush()

	req, rec := newAuthRequest(http.MethodPost, "/v1/progress/refresh", token)
	env.app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, state)}
	checkCodeAndData(t, tt, rec)
}
