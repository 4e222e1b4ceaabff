package ticket

import (
	"context"
	"errors"
	"time"

	"github.com/website360/clientpulse-suite-sub003/core"
)

var (
	// errors
	ErrNotFound = errors.New("ticket not found")
)

type (
	Repository interface {
		CreateTicket(ctx context.Context, tk Ticket) (Ticket, error)
		GetTicket(ctx context.Context, id string) (Ticket, error)
		// QueryTickets applies AND operation on available QueryFilter fields.
		// Search does a case-insensitive match on Subject or Body.
		QueryTickets(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Ticket, error)
		UpdateTicket(ctx context.Context, tk Ticket) (Ticket, error)

		CreateComment(ctx context.Context, cm Comment) (Comment, error)
		QueryComments(ctx context.Context, ticketID string) ([]Comment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Open(ctx context.Context, nt NewTicket) (Ticket, error) {
	now := time.Now().UTC()
	priority := nt.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	tk := Ticket{
		ClientID:  nt.ClientID,
		Subject:   nt.Subject,
		Body:      nt.Body,
		Status:    StatusOpen,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTicket(ctx, tk)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Ticket, error) {
	return svc.repo.GetTicket(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Ticket, error) {
	return svc.repo.QueryTickets(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTicket) (Ticket, error) {
	tk, err := svc.repo.GetTicket(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if ut.Subject != "" {
		tk.Subject = ut.Subject
	}
	if ut.Status != "" {
		tk.Status = ut.Status
	}
	if ut.Priority != "" {
		tk.Priority = ut.Priority
	}
	if ut.AssigneeID != "" {
		tk.AssigneeID = ut.AssigneeID
	}
	tk.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTicket(ctx, tk)
}

func (svc *Service) AddComment(ctx context.Context, ticketID, authorID string, nc NewComment) (Comment, error) {
	if _, err := svc.repo.GetTicket(ctx, ticketID); err != nil {
		return Comment{}, err
	}
	cm := Comment{
		TicketID:  ticketID,
		AuthorID:  authorID,
		Body:      nc.Body,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateComment(ctx, cm)
}

func (svc *Service) Comments(ctx context.Context, ticketID string) ([]Comment, error) {
	if _, err := svc.repo.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return svc.repo.QueryComments(ctx, ticketID)
}
