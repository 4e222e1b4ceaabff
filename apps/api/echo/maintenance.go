package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
)

type maintenanceApi struct {
	svc      *maintenance.Service
	validate *validator.Validate
}

func registerMaintenanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := maintenanceApi{
		svc:      deps.MaintenanceSvc,
		validate: deps.Validate,
	}

	mg := g.Group("/maintenance", jwt)

	// schedule is readable by client-portal accounts (scoped to their client)
	mg.GET("/schedule", api.schedule)

	pg := mg.Group("/plans", staffMiddleware())
	pg.POST("", api.createPlan)
	pg.GET("", api.queryPlans)
	pg.GET("/:id", api.retrievePlan)
	pg.PUT("/:id", api.updatePlan)
	pg.DELETE("/:id", api.deactivatePlan)
	pg.GET("/:id/executions", api.queryExecutions)

	eg := mg.Group("/executions", staffMiddleware())
	eg.POST("", api.recordExecution)
	eg.GET("/:id", api.retrieveExecution)
	eg.DELETE("/:id", api.destroyExecution, adminMiddleware())

	cg := mg.Group("/checklist", staffMiddleware())
	cg.GET("", api.queryChecklist)
	cg.POST("", api.createChecklistItem, adminMiddleware())
	cg.PUT("/reorder", api.reorderChecklist, adminMiddleware())
	cg.PUT("/:id", api.updateChecklistItem, adminMiddleware())

	sg := mg.Group("/settings", adminMiddleware())
	sg.GET("", api.retrieveSettings)
	sg.PUT("", api.updateSettings)
}

// Handlers

func (api *maintenanceApi) createPlan(ctx echo.Context) error {
	var data maintenance.NewPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPlan")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	plan, err := api.svc.CreatePlan(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, plan)
}

func (api *maintenanceApi) queryPlans(ctx echo.Context) error {
	filter := new(maintenance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []maintenance.Plan{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	plans, err := api.svc.QueryPlans(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying plans")
	}
	if plans == nil {
		plans = []maintenance.Plan{}
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *maintenanceApi) retrievePlan(ctx echo.Context) error {
	plan, err := api.svc.GetPlan(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *maintenanceApi) updatePlan(ctx echo.Context) error {
	var data maintenance.UpdatePlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePlan")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	plan, err := api.svc.UpdatePlan(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *maintenanceApi) deactivatePlan(ctx echo.Context) error {
	plan, err := api.svc.DeactivatePlan(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, plan)
}

// schedule returns each plan with its derived status, next due date and
// latest execution. Client-portal accounts only see their own plans.
func (api *maintenanceApi) schedule(ctx echo.Context) error {
	filter := new(maintenance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []maintenance.PlanSchedule{})
	}
	filter.Clean()

	clientID, err := clientScope(ctx, filter.ClientID)
	if err != nil {
		return err
	}
	filter.ClientID = clientID

	ordering := new(Ordering)
	ordering.Bind(ctx)

	schedules, err := api.svc.Schedule(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "deriving schedule")
	}
	if schedules == nil {
		schedules = []maintenance.PlanSchedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *maintenanceApi) recordExecution(ctx echo.Context) error {
	var data maintenance.NewExecution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExecution")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.ExecutedBy == "" {
		if claims, err := getContextClaims(ctx); err == nil {
			data.ExecutedBy = claims.Subject
		}
	}

	result, err := api.svc.RecordExecution(ctx.Request().Context(), data)
	if err != nil {
		return err
	}

	resp := ExecutionResponse{Execution: result.Execution}
	if result.Warning != nil {
		resp.Warning = result.Warning.Error()
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *maintenanceApi) queryExecutions(ctx echo.Context) error {
	execs, err := api.svc.Executions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if execs == nil {
		execs = []maintenance.Execution{}
	}
	return ctx.JSON(http.StatusOK, execs)
}

func (api *maintenanceApi) retrieveExecution(ctx echo.Context) error {
	exec, err := api.svc.GetExecution(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exec)
}

func (api *maintenanceApi) destroyExecution(ctx echo.Context) error {
	if err := api.svc.DeleteExecution(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *maintenanceApi) queryChecklist(ctx echo.Context) error {
	items, err := api.svc.ChecklistItems(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying checklist items")
	}
	if items == nil {
		items = []maintenance.ChecklistItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *maintenanceApi) createChecklistItem(ctx echo.Context) error {
	var data maintenance.NewChecklistItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChecklistItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.CreateChecklistItem(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *maintenanceApi) updateChecklistItem(ctx echo.Context) error {
	var data maintenance.UpdateChecklistItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChecklistItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.UpdateChecklistItem(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *maintenanceApi) reorderChecklist(ctx echo.Context) error {
	var data ReorderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderRequest")
	}
	if err := api.svc.ReorderChecklist(ctx.Request().Context(), data.IDs); err != nil {
		return err
	}
	return api.queryChecklist(ctx)
}

func (api *maintenanceApi) retrieveSettings(ctx echo.Context) error {
	settings, err := api.svc.GetSettings(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *maintenanceApi) updateSettings(ctx echo.Context) error {
	var data maintenance.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	settings, err := api.svc.UpdateSettings(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}

type (
	// ExecutionResponse surfaces a recorded execution along with any
	// partial-failure warning (checklist outcomes or notification dispatch).
	ExecutionResponse struct {
		Execution maintenance.Execution `json:"execution"`
		Warning   string                `json:"warning,omitempty"`
	}

	ReorderRequest struct {
		IDs []string `json:"ids"`
	}
)
