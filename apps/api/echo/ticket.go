package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core/ticket"
)

type ticketApi struct {
	svc      *ticket.Service
	validate *validator.Validate
}

func registerTicketAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := ticketApi{
		svc:      deps.TicketSvc,
		validate: deps.Validate,
	}

	// client-portal accounts can open, read and reply on their own tickets
	tg := g.Group("/tickets", jwt)
	tg.POST("", api.open)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, staffMiddleware())
	tg.POST("/:id/comments", api.addComment)
	tg.GET("/:id/comments", api.queryComments)
}

// Handlers

func (api *ticketApi) open(ctx echo.Context) error {
	var data ticket.NewTicket
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTicket")
	}

	clientID, err := clientScope(ctx, data.ClientID)
	if err != nil {
		return err
	}
	data.ClientID = clientID

	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tk, err := api.svc.Open(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tk)
}

func (api *ticketApi) query(ctx echo.Context) error {
	filter := new(ticket.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []ticket.Ticket{})
	}
	filter.Clean()

	clientID, err := clientScope(ctx, filter.ClientID)
	if err != nil {
		return err
	}
	filter.ClientID = clientID

	ordering := new(Ordering)
	ordering.Bind(ctx)

	tickets, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying tickets")
	}
	if tickets == nil {
		tickets = []ticket.Ticket{}
	}
	return ctx.JSON(http.StatusOK, tickets)
}

// accessTicket loads a ticket and enforces portal scoping, hiding other
// clients' tickets behind a 404.
func (api *ticketApi) accessTicket(ctx echo.Context) (ticket.Ticket, error) {
	tk, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return ticket.Ticket{}, err
	}
	if _, err = clientScope(ctx, tk.ClientID); err != nil {
		return ticket.Ticket{}, errHttpNotFound
	}
	return tk, nil
}

func (api *ticketApi) retrieve(ctx echo.Context) error {
	tk, err := api.accessTicket(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tk)
}

func (api *ticketApi) update(ctx echo.Context) error {
	var data ticket.UpdateTicket
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTicket")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tk, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tk)
}

func (api *ticketApi) addComment(ctx echo.Context) error {
	tk, err := api.accessTicket(ctx)
	if err != nil {
		return err
	}

	var data ticket.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	cm, err := api.svc.AddComment(ctx.Request().Context(), tk.ID, claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cm)
}

func (api *ticketApi) queryComments(ctx echo.Context) error {
	tk, err := api.accessTicket(ctx)
	if err != nil {
		return err
	}
	comments, err := api.svc.Comments(ctx.Request().Context(), tk.ID)
	if err != nil {
		return errors.Wrap(err, "querying ticket comments")
	}
	if comments == nil {
		comments = []ticket.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}
