package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core/billing"
)

type billingApi struct {
	svc      *billing.Service
	validate *validator.Validate
}

func registerBillingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := billingApi{
		svc:      deps.BillingSvc,
		validate: deps.Validate,
	}

	ig := g.Group("/invoices", jwt)
	// portal accounts may list their own invoices
	ig.GET("", api.query)
	ig.GET("/:id", api.retrieve)

	ig.POST("", api.create, staffMiddleware())
	ig.PUT("/:id", api.update, staffMiddleware())
	ig.DELETE("/:id", api.cancel, staffMiddleware())
	ig.POST("/:id/sync", api.syncPayment, staffMiddleware())
	ig.POST("/:id/remind", api.remind, staffMiddleware())
}

// Handlers

func (api *billingApi) create(ctx echo.Context) error {
	var data billing.NewInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvoice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inv, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *billingApi) query(ctx echo.Context) error {
	filter := new(billing.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []billing.Invoice{})
	}
	filter.Clean()

	clientID, err := clientScope(ctx, filter.ClientID)
	if err != nil {
		return err
	}
	filter.ClientID = clientID

	ordering := new(Ordering)
	ordering.Bind(ctx)

	invoices, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	return ctx.JSON(http.StatusOK, invoices)
}

func (api *billingApi) retrieve(ctx echo.Context) error {
	inv, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if _, err = clientScope(ctx, inv.ClientID); err != nil {
		return errHttpNotFound // do not reveal other clients' invoices
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *billingApi) update(ctx echo.Context) error {
	var data billing.UpdateInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInvoice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inv, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

// cancel voids an invoice; rows are kept for history.
func (api *billingApi) cancel(ctx echo.Context) error {
	inv, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *billingApi) syncPayment(ctx echo.Context) error {
	inv, err := api.svc.SyncPayment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *billingApi) remind(ctx echo.Context) error {
	rl, err := api.svc.RemindClient(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rl)
}
