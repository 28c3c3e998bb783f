package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/studify/backend/core/report"
	"github.com/studify/backend/core/shop"
)

func Test_reportApi_summary(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	admin := createUser(t, env.usrRepo, "admin", "admin@test.cd", "LePassw0rd", true, true)
	adminToken := getToken(t, env.conf, admin)

	march := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	if _, err := env.shopRepo.CreateTransaction(ctx, shop.Transaction{
		UserID: usr.ID, ItemID: "crown", ItemName: "Crown",
		Type: shop.TxBuy, Price: 200, CreatedAt: march,
	}); err != nil {
		t.Fatalf("CreateTransaction() failed, %v", err)
	}

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/reports/summary",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", path: "/v1/reports/summary", token: getToken(t, env.conf, usr),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "invalid month", path: "/v1/reports/summary?month=13", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"month": "must be a number between 1 and 12"}),
		},
		{
			name: "garbage month", path: "/v1/reports/summary?month=lol", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"month": "must be a number between 1 and 12"}),
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

	t.Run("all time summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/summary", adminToken)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var summary report.Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(summary.Registrations) != 2 {
			t.Errorf("len(Registrations) = %d; want 2", len(summary.Registrations))
		}
		if len(summary.Sales) != 1 || summary.Sales[0].Revenue != 200 {
			t.Errorf("summary.Sales = %+v; want Crown with revenue 200", summary.Sales)
		}
	})

	t.Run("march only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/summary?month=3", adminToken)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var summary report.Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(summary.Sales) != 1 || summary.Sales[0].Count != 1 {
			t.Errorf("summary.Sales = %+v; want only the March purchase", summary.Sales)
		}
	})
}
