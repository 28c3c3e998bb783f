package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studify/backend/core/progression"
	"github.com/studify/backend/core/shop"
)

type shopApi struct {
	deps ServerDeps
}

func registerShopAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := shopApi{deps: deps}

	sg := g.Group("/shop", jwt)
	sg.GET("/items", api.catalog)
	sg.POST("/items/:id/buy", api.buy)
	sg.POST("/items/:id/sell", api.sell)

	// back office
	mg := sg.Group("/manage", adminMiddleware())
	mg.GET("/items", api.queryAll)
	mg.POST("/items", api.createItem)
	mg.PUT("/items/:id", api.updateItem)
	mg.DELETE("/items/:id", api.destroyItem)
	mg.GET("/transactions", api.transactions)
}

// Handlers

func (api *shopApi) catalog(ctx echo.Context) error {
	items, err := api.deps.ShopSvc.Catalog(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying catalog")
	}
	if items == nil {
		items = []shop.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *shopApi) buy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	state, err := api.deps.ShopSvc.Purchase(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "purchasing item")
	}
	return ctx.JSON(http.StatusOK, PurchaseResponse{State: state})
}

func (api *shopApi) sell(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	state, sellPrice, err := api.deps.ShopSvc.Sell(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "selling item")
	}
	return ctx.JSON(http.StatusOK, PurchaseResponse{State: state, SellPrice: sellPrice})
}

func (api *shopApi) queryAll(ctx echo.Context) error {
	items, err := api.deps.ShopSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying items")
	}
	if items == nil {
		items = []shop.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *shopApi) createItem(ctx echo.Context) error {
	var data shop.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	item, err := api.deps.ShopSvc.CreateItem(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *shopApi) updateItem(ctx echo.Context) error {
	var data shop.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	item, err := api.deps.ShopSvc.UpdateItem(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *shopApi) destroyItem(ctx echo.Context) error {
	if err := api.deps.ShopSvc.DeleteItem(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *shopApi) transactions(ctx echo.Context) error {
	txs, err := api.deps.ShopSvc.Transactions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying transactions")
	}
	if txs == nil {
		txs = []shop.Transaction{}
	}
	return ctx.JSON(http.StatusOK, txs)
}

type PurchaseResponse struct {
	State     progression.State `json:"state"`
	SellPrice int               `json:"sell_price,omitempty"`
}
