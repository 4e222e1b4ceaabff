package billing

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/website360/clientpulse-suite-sub003/core"
)

// InvoiceStatus is the lifecycle state of a receivable.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// Invoice is a receivable issued to a client. Amounts are integer cents.
type Invoice struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	Number      string        `json:"number"`
	Description string        `json:"description,omitempty"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      InvoiceStatus `json:"status"`
	IssuedAt    time.Time     `json:"issued_at"`
	DueDate     time.Time     `json:"due_date"`
	PaidAt      time.Time     `json:"paid_at,omitempty"`
	GatewayRef  string        `json:"gateway_ref,omitempty"` // payment-gateway charge reference
	CreatedAt   time.Time     `json:"created_at"`            // UTC
	UpdatedAt   time.Time     `json:"updated_at"`            // UTC
}

// ReminderLog records one payment-reminder dispatch for an invoice.
// Throttling looks this log up instead of keeping any in-process state.
type ReminderLog struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoice_id"`
	Channel   string    `json:"channel"` // "email" | "chat"
	SentAt    time.Time `json:"sent_at"` // UTC
}

// NewInvoice contains information needed to issue a new Invoice.
type NewInvoice struct {
	ClientID    string    `json:"client_id" validate:"required"`
	Number      string    `json:"number" validate:"required"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"omitempty,len=3"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	GatewayRef  string    `json:"gateway_ref"`
}

func (ni *NewInvoice) Validate(validate *validator.Validate) error {
	ni.ClientID = core.CleanString(ni.ClientID)
	ni.Number = core.CleanString(ni.Number)
	ni.Description = core.CleanString(ni.Description)
	ni.Currency = core.CleanString(ni.Currency, true /* lower */)
	ni.GatewayRef = core.CleanString(ni.GatewayRef)
	return validate.Struct(ni)
}

// UpdateInvoice defines what may be modified on a pending invoice.
type UpdateInvoice struct {
	Description string        `json:"description"`
	AmountCents int64         `json:"amount_cents" validate:"omitempty,gt=0"`
	DueDate     time.Time     `json:"due_date"`
	Status      InvoiceStatus `json:"status"`
	GatewayRef  string        `json:"gateway_ref"`
}

func (ui *UpdateInvoice) Validate(validate *validator.Validate) error {
	ui.Description = core.CleanString(ui.Description)
	ui.GatewayRef = core.CleanString(ui.GatewayRef)
	if err := validate.Struct(ui); err != nil {
		return err
	}
	if ui.Status != "" && !ui.Status.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid invoice status"})
	}
	return nil
}

// QueryFilter filters invoices.
type QueryFilter struct {
	ClientID string        `query:"client_id"`
	Status   InvoiceStatus `query:"status"`
	DueFrom  time.Time     `query:"due_from"`
	DueTo    time.Time     `query:"due_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClientID == "" && qf.Status == "" && qf.DueFrom.IsZero() && qf.DueTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.ClientID = core.CleanString(qf.ClientID)
}
