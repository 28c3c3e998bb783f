package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studify/backend/core/progression"
)

type progressionApi struct {
	deps ServerDeps
}

func registerProgressionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := progressionApi{deps: deps}

	pg := g.Group("/progress", jwt)
	pg.GET("", api.retrieve)
	pg.POST("/refresh", api.refresh)
	pg.POST("/reward", api.grantReward)
}

// retrieve returns the live snapshot, starting the session lazily if needed.
func (api *progressionApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	state := api.deps.ProgSvc.Start(ctx.Request().Context(), claims.Subject)
	return ctx.JSON(http.StatusOK, state)
}

// refresh re-reads the persisted snapshot (eg. after the app regains focus).
func (api *progressionApi) refresh(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	state := api.deps.ProgSvc.Refresh(ctx.Request().Context(), claims.Subject)
	return ctx.JSON(http.StatusOK, state)
}

// grantReward applies an ad-hoc reward (eg. a focus session completed while
// offline and reported later).
func (api *progressionApi) grantReward(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data RewardRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RewardRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	coins := data.Exp
	if data.Coins != nil {
		coins = *data.Coins
	}
	state, gained, err := api.deps.ProgSvc.GrantSessionReward(ctx.Request().Context(), claims.Subject, data.Exp, coins)
	if err != nil {
		return errors.Wrap(err, "granting reward")
	}
	return ctx.JSON(http.StatusOK, RewardResponse{State: state, LevelsGained: gained})
}

type (
	RewardRequest struct {
		Exp   int  `json:"exp" validate:"gte=0"`
		Coins *int `json:"coins" validate:"omitempty,gte=0"`
	}

	RewardResponse struct {
		State        progression.State `json:"state"`
		LevelsGained int               `json:"levels_gained"`
	}
)

func (rr *RewardRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
