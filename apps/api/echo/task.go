package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studify/backend/core/progression"
	"github.com/studify/backend/core/task"
)

type taskApi struct {
	deps ServerDeps
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := taskApi{deps: deps}

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.GET("/:id/sessions", api.sessions)
	tg.POST("/:id/focus", api.completeFocus)
}

func taskID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *taskApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	tasks, err := api.deps.TaskSvc.QueryForUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := taskID(ctx)
	if err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Get(ctx.Request().Context(), claims.Subject, id)
	if err != nil {
		return errors.Wrap(err, "getting task")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := taskID(ctx)
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Update(ctx.Request().Context(), claims.Subject, id, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := taskID(ctx)
	if err != nil {
		return err
	}

	if err := api.deps.TaskSvc.Delete(ctx.Request().Context(), claims.Subject, id); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) sessions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := taskID(ctx)
	if err != nil {
		return err
	}

	sessions, err := api.deps.TaskSvc.Sessions(ctx.Request().Context(), claims.Subject, id)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []task.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

// completeFocus records a finished focus session and returns the task with
// the progression reward applied.
func (api *taskApi) completeFocus(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := taskID(ctx)
	if err != nil {
		return err
	}

	var data task.FocusResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FocusResult")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	t, state, gained, err := api.deps.TaskSvc.CompleteFocus(ctx.Request().Context(), claims.Subject, id, data)
	if err != nil {
		return errors.Wrap(err, "completing focus session")
	}
	return ctx.JSON(http.StatusOK, FocusResponse{Task: t, State: state, LevelsGained: gained})
}

type FocusResponse struct {
	Task         task.Task         `json:"task"`
	State        progression.State `json:"state"`
	LevelsGained int               `json:"levels_gained"`
}
