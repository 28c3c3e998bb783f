package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studify/backend/core/avatar"
)

type avatarApi struct {
	deps ServerDeps
}

func registerAvatarAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := avatarApi{deps: deps}

	ag := g.Group("/avatar", jwt)
	ag.GET("", api.retrieve)
	ag.PUT("", api.save)
}

func (api *avatarApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	profile, err := api.deps.AvatarSvc.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting avatar profile")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *avatarApi) save(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data avatar.Profile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Profile")
	}

	// the owned set is server-controlled; keep the persisted one
	current, err := api.deps.AvatarSvc.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting avatar profile")
	}
	data.Owned = current.Owned

	if err := api.deps.AvatarSvc.Save(ctx.Request().Context(), claims.Subject, data); err != nil {
		return errors.Wrap(err, "saving avatar profile")
	}
	return ctx.JSON(http.StatusOK, data)
}
