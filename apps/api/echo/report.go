package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studify/backend/core"
	"github.com/studify/backend/core/report"
)

type reportApi struct {
	deps ServerDeps
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{deps: deps}

	rg := g.Group("/reports", jwt, adminMiddleware())
	rg.GET("/summary", api.summary)
}

// summary returns the back-office report, optionally narrowed to a calendar
// month via `?month=1..12`.
func (api *reportApi) summary(ctx echo.Context) error {
	month := report.AllTime
	if raw := ctx.QueryParam("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "must be a number between 1 and 12"})
		}
		month = m
	}

	summary, err := api.deps.ReportSvc.Summary(ctx.Request().Context(), time.Month(month))
	if err != nil {
		return errors.Wrap(err, "building summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}
