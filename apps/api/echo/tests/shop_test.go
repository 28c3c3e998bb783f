package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/studify/backend/apps/api/echo"
	"github.com/studify/backend/core/progression"
	"github.com/studify/backend/core/shop"
)

func createItem(t *testing.T, repo shop.Repository, name string, price int, available bool) shop.Item {
	t.Helper()

	item, err := repo.CreateItem(context.Background(), shop.Item{
		Name:      name,
		Price:     price,
		Available: available,
		ImageKey:  name,
	})
	if err != nil {
		t.Fatalf("CreateItem() failed, %v", err)
	}
	return item
}

func fundUser(t *testing.T, env *testEnv, userID string, coins int) {
	t.Helper()

	env.progSvc.Start(context.Background(), userID)
	if _, err := env.progSvc.OverrideCoins(context.Background(), userID, coins); err != nil {
		t.Fatalf("OverrideCoins() failed, %v", err)
	}
}

func Test_shopApi_catalog(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	crown := createItem(t, env.shopRepo, "Crown", 200, true)
	capItem := createItem(t, env.shopRepo, "Cap", 60, true)
	createItem(t, env.shopRepo, "Monocle", 150, false) // hidden

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "available items, sorted by name", token: getToken(t, env.conf, usr),
			wantCode: http.StatusOK, wantData: marchallList(t, capItem, crown),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/shop/items"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_shopApi_buySell(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	token := getToken(t, env.conf, usr)
	crown := createItem(t, env.shopRepo, "Crown", 200, true)
	monocle := createItem(t, env.shopRepo, "Monocle", 150, false)
	fundUser(t, env, usr.ID, 250)

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/shop/items/" + crown.ID + "/buy",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "unknown item", path: "/v1/shop/items/lol/buy", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "shop item not found"}),
		},
		{
			name: "unavailable item", path: "/v1/shop/items/" + monocle.ID + "/buy", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "shop item is not available"}),
		},
		{
			name: "sell unowned item", path: "/v1/shop/items/" + crown.ID + "/sell", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "item not owned"}),
		},
		{
			name: "buy", path: "/v1/shop/items/" + crown.ID + "/buy", token: token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.PurchaseResponse{
				State: progression.State{Level: 1, XP: 0, NextLevelXP: 10000, Coins: 50},
			}),
		},
		{
			name: "buy again", path: "/v1/shop/items/" + crown.ID + "/buy", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "item already owned"}),
		},
		{
			name: "sell", path: "/v1/shop/items/" + crown.ID + "/sell", token: token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.PurchaseResponse{
				State:     progression.State{Level: 1, XP: 0, NextLevelXP: 10000, Coins: 100},
				SellPrice: 50,
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	env.progSvc.Flush()
}

func Test_shopApi_manage(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrRepo, "awe", "awe@test.cd", "LePassw0rd", false, true)
	admin := createUser(t, env.usrRepo, "admin", "admin@test.cd", "LePassw0rd", true, true)
	adminToken := getToken(t, env.conf, admin)

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/shop/manage/items", getToken(t, env.conf, usr))
		env.app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	var created shop.Item
	t.Run("create item", func(t *testing.T) {
		body := marchallObj(t, shop.NewItem{Name: "Crown", Price: 200, ImageKey: "crown"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/shop/manage/items", adminToken, body)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if created.Name != "Crown" || created.Price != 200 || !created.Available {
			t.Errorf("created = %+v; want available Crown at 200", created)
		}
	})

	t.Run("create item: negative price rejected", func(t *testing.T) {
		body := marchallObj(t, shop.NewItem{Name: "Freebie", Price: -1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/shop/manage/items", adminToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("update item", func(t *testing.T) {
		price := 180
		body := marchallObj(t, shop.UpdateItem{Price: &price})
		req, rec := newAuthRequest(http.MethodPut, "/v1/shop/manage/items/"+created.ID, adminToken, body)
		env.app.ServeHTTP(rec, req)

		want := created
		want.Price = 180
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("transactions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/shop/manage/transactions", adminToken)
		env.app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete item", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/shop/manage/items/"+created.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/shop/manage/items", adminToken)
		env.app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}
		checkCodeAndData(t, tt, rec)
	})
}
