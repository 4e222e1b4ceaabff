package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core/org"
)

type orgApi struct {
	svc      *org.Service
	validate *validator.Validate
}

func registerOrgAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := orgApi{
		svc:      deps.OrgSvc,
		validate: deps.Validate,
	}

	og := g.Group("/org", jwt)
	og.GET("", api.retrieve) // theme is read by every authenticated account
	og.PUT("", api.update, adminMiddleware())
}

// Handlers

func (api *orgApi) retrieve(ctx echo.Context) error {
	o, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, o)
}

func (api *orgApi) update(ctx echo.Context) error {
	var data org.UpdateOrg
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateOrg")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	o, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, o)
}
