package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/ticket"
)

type ticketRepository struct {
	db *sqlx.DB
}

var _ ticket.Repository = (*ticketRepository)(nil) // interface compliance check

func NewTicketRepository(db *sqlx.DB) *ticketRepository {
	return &ticketRepository{db: db}
}

type ticketRow struct {
	ID         string      `db:"id"`
	ClientID   string      `db:"client_id"`
	Subject    string      `db:"subject"`
	Body       string      `db:"body"`
	Status     string      `db:"status"`
	Priority   string      `db:"priority"`
	AssigneeID null.String `db:"assignee_id"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func (r ticketRow) toTicket() ticket.Ticket {
	return ticket.Ticket{
		ID:         r.ID,
		ClientID:   r.ClientID,
		Subject:    r.Subject,
		Body:       r.Body,
		Status:     ticket.Status(r.Status),
		Priority:   ticket.Priority(r.Priority),
		AssigneeID: r.AssigneeID.String,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toTicketRow(tk ticket.Ticket) ticketRow {
	return ticketRow{
		ID:         tk.ID,
		ClientID:   tk.ClientID,
		Subject:    tk.Subject,
		Body:       tk.Body,
		Status:     string(tk.Status),
		Priority:   string(tk.Priority),
		AssigneeID: null.NewString(tk.AssigneeID, tk.AssigneeID != ""),
		CreatedAt:  tk.CreatedAt,
		UpdatedAt:  tk.UpdatedAt,
	}
}

type commentRow struct {
	ID        string    `db:"id"`
	TicketID  string    `db:"ticket_id"`
	AuthorID  string    `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

func (repo ticketRepository) CreateTicket(ctx context.Context, tk ticket.Ticket) (ticket.Ticket, error) {
	tk.ID = uuid.New().String()
	row := toTicketRow(tk)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO ticket (id, client_id, subject, body, status, priority, assignee_id, created_at, updated_at)
		VALUES (:id, :client_id, :subject, :body, :status, :priority, :assignee_id, :created_at, :updated_at)`, row)
	if err != nil {
		return ticket.Ticket{}, errors.Wrap(err, "inserting ticket")
	}
	return tk, nil
}

func (repo ticketRepository) GetTicket(ctx context.Context, id string) (ticket.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	var row ticketRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM ticket WHERE id = $1`, id); err != nil {
		return ticket.Ticket{}, trapNoRowsErr(err, ticket.ErrNotFound, "finding ticket by ID")
	}
	return row.toTicket(), nil
}

func (repo ticketRepository) QueryTickets(ctx context.Context, filter *ticket.QueryFilter, ordering []core.DBOrdering) ([]ticket.Ticket, error) {
	query := `SELECT * FROM ticket`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter != nil && !filter.IsEmpty() {
		filter.Clean()
		if filter.ClientID != "" {
			conds = append(conds, "client_id = "+arg(filter.ClientID))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(string(filter.Status)))
		}
		if filter.Priority != "" {
			conds = append(conds, "priority = "+arg(string(filter.Priority)))
		}
		if filter.Search != "" {
			ph := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(subject ILIKE %[1]s OR body ILIKE %[1]s)", ph))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var rows []ticketRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying tickets")
	}
	tickets := make([]ticket.Ticket, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, row.toTicket())
	}
	return tickets, nil
}

func (repo ticketRepository) UpdateTicket(ctx context.Context, tk ticket.Ticket) (ticket.Ticket, error) {
	row := toTicketRow(tk)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE ticket
		SET subject = :subject, body = :body, status = :status, priority = :priority,
		    assignee_id = :assignee_id, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return ticket.Ticket{}, errors.Wrap(err, "updating ticket")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	return tk, nil
}

func (repo ticketRepository) CreateComment(ctx context.Context, cm ticket.Comment) (ticket.Comment, error) {
	cm.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO ticket_comment (id, ticket_id, author_id, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		cm.ID, cm.TicketID, cm.AuthorID, cm.Body, cm.CreatedAt)
	if err != nil {
		return ticket.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return cm, nil
}

func (repo ticketRepository) QueryComments(ctx context.Context, ticketID string) ([]ticket.Comment, error) {
	var rows []commentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM ticket_comment WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]ticket.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, ticket.Comment{
			ID:        row.ID,
			TicketID:  row.TicketID,
			AuthorID:  row.AuthorID,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
		})
	}
	return comments, nil
}
