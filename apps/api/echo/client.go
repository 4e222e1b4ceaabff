package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core/client"
)

type clientApi struct {
	svc      *client.Service
	validate *validator.Validate
}

func registerClientAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := clientApi{
		svc:      deps.ClientSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/clients", jwt, staffMiddleware())
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.deactivate)
	cg.POST("/:id/domains", api.addDomain)
	cg.GET("/:id/domains", api.queryDomains)
	cg.DELETE("/:id/domains/:domID", api.removeDomain)
}

// Handlers

func (api *clientApi) create(ctx echo.Context) error {
	var data client.NewClient
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClient")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	cl, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cl)
}

func (api *clientApi) query(ctx echo.Context) error {
	filter := new(client.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []client.Client{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	clients, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying clients")
	}
	if clients == nil {
		clients = []client.Client{}
	}
	return ctx.JSON(http.StatusOK, clients)
}

func (api *clientApi) retrieve(ctx echo.Context) error {
	cl, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cl)
}

func (api *clientApi) update(ctx echo.Context) error {
	cl, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data client.UpdateClient
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClient")
	}
	if err := data.Validate(cl, api.validate, api.svc); err != nil {
		return err
	}

	cl, err = api.svc.Update(ctx.Request().Context(), cl.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cl)
}

// deactivate retires a client instead of deleting it so plans, invoices and
// tickets keep their history.
func (api *clientApi) deactivate(ctx echo.Context) error {
	cl, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cl)
}

func (api *clientApi) addDomain(ctx echo.Context) error {
	var data client.NewDomain
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDomain")
	}
	data.ClientID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dom, err := api.svc.AddDomain(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dom)
}

func (api *clientApi) queryDomains(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	domains, err := api.svc.Domains(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying domains")
	}
	if domains == nil {
		domains = []client.Domain{}
	}
	return ctx.JSON(http.StatusOK, domains)
}

func (api *clientApi) removeDomain(ctx echo.Context) error {
	dom, err := api.svc.GetDomain(ctx.Request().Context(), ctx.Param("domID"))
	if err != nil {
		return err
	}
	if dom.ClientID != ctx.Param("id") {
		return errHttpNotFound
	}
	if err := api.svc.RemoveDomain(ctx.Request().Context(), dom.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
