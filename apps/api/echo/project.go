package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core/project"
)

type projectApi struct {
	svc      *project.Service
	validate *validator.Validate
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := projectApi{
		svc:      deps.ProjectSvc,
		validate: deps.Validate,
	}

	pg := g.Group("/projects", jwt, staffMiddleware())
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.POST("/:id/tasks", api.addTask)
	pg.GET("/:id/tasks", api.queryTasks)
	pg.PUT("/:id/tasks/:taskID/move", api.moveTask)
	pg.DELETE("/:id/tasks/:taskID", api.removeTask)
}

// Handlers

func (api *projectApi) create(ctx echo.Context) error {
	var data project.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prj)
}

func (api *projectApi) query(ctx echo.Context) error {
	filter := new(project.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []project.Project{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	projects, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	prj, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) update(ctx echo.Context) error {
	var data project.UpdateProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prj, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) addTask(ctx echo.Context) error {
	var data project.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	data.ProjectID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	task, err := api.svc.AddTask(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, task)
}

func (api *projectApi) queryTasks(ctx echo.Context) error {
	tasks, err := api.svc.Tasks(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []project.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *projectApi) moveTask(ctx echo.Context) error {
	var data project.MoveTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MoveTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	task, err := api.svc.Move(ctx.Request().Context(), ctx.Param("taskID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, task)
}

func (api *projectApi) removeTask(ctx echo.Context) error {
	if err := api.svc.RemoveTask(ctx.Request().Context(), ctx.Param("taskID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
