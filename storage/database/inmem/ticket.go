package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/ticket"
)

type ticketRepository struct {
	db *DB
}

var _ ticket.Repository = (*ticketRepository)(nil)

func NewTicketRepository(db *DB) *ticketRepository {
	return &ticketRepository{db: db}
}

func (repo *ticketRepository) CreateTicket(_ context.Context, tk ticket.Ticket) (ticket.Ticket, error) {
	repo.db.ticket.mutex.Lock()
	defer repo.db.ticket.mutex.Unlock()

	tk.ID = uuid.New().String()
	repo.db.ticket.rows[tk.ID] = &tk
	return tk, nil
}

func (repo *ticketRepository) GetTicket(_ context.Context, id string) (ticket.Ticket, error) {
	repo.db.ticket.mutex.RLock()
	defer repo.db.ticket.mutex.RUnlock()

	if tk, ok := repo.db.ticket.rows[id]; ok {
		return *tk, nil
	}
	return ticket.Ticket{}, ticket.ErrNotFound
}

func (repo *ticketRepository) QueryTickets(_ context.Context, filter *ticket.QueryFilter, _ []core.DBOrdering) ([]ticket.Ticket, error) {
	repo.db.ticket.mutex.RLock()
	defer repo.db.ticket.mutex.RUnlock()

	var tickets []ticket.Ticket
	for _, tk := range repo.db.ticket.all() {
		if filter != nil && !filter.IsEmpty() {
			filter.Clean()
			if filter.ClientID != "" && tk.ClientID != filter.ClientID {
				continue
			}
			if filter.Status != "" && tk.Status != filter.Status {
				continue
			}
			if filter.Priority != "" && tk.Priority != filter.Priority {
				continue
			}
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(tk.Subject), search) &&
					!strings.Contains(strings.ToLower(tk.Body), search) {
					continue
				}
			}
		}
		tickets = append(tickets, tk)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return tickets, nil
}

func (repo *ticketRepository) UpdateTicket(_ context.Context, tk ticket.Ticket) (ticket.Ticket, error) {
	repo.db.ticket.mutex.Lock()
	defer repo.db.ticket.mutex.Unlock()

	if _, ok := repo.db.ticket.rows[tk.ID]; !ok {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	repo.db.ticket.rows[tk.ID] = &tk
	return tk, nil
}

func (repo *ticketRepository) CreateComment(_ context.Context, cm ticket.Comment) (ticket.Comment, error) {
	repo.db.comment.mutex.Lock()
	defer repo.db.comment.mutex.Unlock()

	cm.ID = uuid.New().String()
	repo.db.comment.rows[cm.ID] = &cm
	return cm, nil
}

func (repo *ticketRepository) QueryComments(_ context.Context, ticketID string) ([]ticket.Comment, error) {
	repo.db.comment.mutex.RLock()
	defer repo.db.comment.mutex.RUnlock()

	var comments []ticket.Comment
	for _, cm := range repo.db.comment.all() {
		if cm.TicketID == ticketID {
			comments = append(comments, cm)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}
