package ticket

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/website360/clientpulse-suite-sub003/core"
)

// Status is the lifecycle state of a support ticket. Transitions are plain
// updates; no state machine is enforced.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority orders the support queue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Ticket is one support request from a client.
type Ticket struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Status     Status    `json:"status"`
	Priority   Priority  `json:"priority"`
	AssigneeID string    `json:"assignee_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Comment is one reply in a ticket's thread.
type Comment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewTicket contains information needed to open a support ticket.
type NewTicket struct {
	ClientID string   `json:"client_id" validate:"required"`
	Subject  string   `json:"subject" validate:"required"`
	Body     string   `json:"body" validate:"required"`
	Priority Priority `json:"priority"`
}

func (nt *NewTicket) Validate(validate *validator.Validate) error {
	nt.ClientID = core.CleanString(nt.ClientID)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Body = core.CleanString(nt.Body)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	if nt.Priority != "" && !nt.Priority.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "priority", Error: "invalid priority"})
	}
	return nil
}

// UpdateTicket defines what may be modified on a ticket.
type UpdateTicket struct {
	Subject    string   `json:"subject"`
	Status     Status   `json:"status"`
	Priority   Priority `json:"priority"`
	AssigneeID string   `json:"assignee_id"`
}

func (ut *UpdateTicket) Validate(validate *validator.Validate) error {
	ut.Subject = core.CleanString(ut.Subject)
	if err := validate.Struct(ut); err != nil {
		return err
	}
	if ut.Status != "" && !ut.Status.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}
	if ut.Priority != "" && !ut.Priority.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "priority", Error: "invalid priority"})
	}
	return nil
}

// NewComment contains information needed to reply on a ticket.
type NewComment struct {
	Body string `json:"body" validate:"required"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Body = core.CleanString(nc.Body)
	return validate.Struct(nc)
}

// QueryFilter filters tickets.
type QueryFilter struct {
	ClientID string   `query:"client_id"`
	Status   Status   `query:"status"`
	Priority Priority `query:"priority"`
	Search   string   `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClientID == "" && qf.Status == "" && qf.Priority == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.ClientID = core.CleanString(qf.ClientID)
	qf.Search = core.CleanString(qf.Search)
}
