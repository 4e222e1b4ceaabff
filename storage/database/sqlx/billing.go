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
	"github.com/website360/clientpulse-suite-sub003/core/billing"
)

type billingRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *sqlx.DB) *billingRepository {
	return &billingRepository{db: db}
}

type invoiceRow struct {
	ID          string      `db:"id"`
	ClientID    string      `db:"client_id"`
	Number      string      `db:"number"`
	Description null.String `db:"description"`
	AmountCents int64       `db:"amount_cents"`
	Currency    string      `db:"currency"`
	Status      string      `db:"status"`
	IssuedAt    time.Time   `db:"issued_at"`
	DueDate     time.Time   `db:"due_date"`
	PaidAt      null.Time   `db:"paid_at"`
	GatewayRef  null.String `db:"gateway_ref"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r invoiceRow) toInvoice() billing.Invoice {
	return billing.Invoice{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Number:      r.Number,
		Description: r.Description.String,
		AmountCents: r.AmountCents,
		Currency:    r.Currency,
		Status:      billing.InvoiceStatus(r.Status),
		IssuedAt:    r.IssuedAt,
		DueDate:     r.DueDate,
		PaidAt:      r.PaidAt.Time,
		GatewayRef:  r.GatewayRef.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toInvoiceRow(inv billing.Invoice) invoiceRow {
	return invoiceRow{
		ID:          inv.ID,
		ClientID:    inv.ClientID,
		Number:      inv.Number,
		Description: null.NewString(inv.Description, inv.Description != ""),
		AmountCents: inv.AmountCents,
		Currency:    inv.Currency,
		Status:      string(inv.Status),
		IssuedAt:    inv.IssuedAt,
		DueDate:     inv.DueDate,
		PaidAt:      null.NewTime(inv.PaidAt, !inv.PaidAt.IsZero()),
		GatewayRef:  null.NewString(inv.GatewayRef, inv.GatewayRef != ""),
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

type reminderLogRow struct {
	ID        string    `db:"id"`
	InvoiceID string    `db:"invoice_id"`
	Channel   string    `db:"channel"`
	SentAt    time.Time `db:"sent_at"`
}

func (repo billingRepository) CreateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	inv.ID = uuid.New().String()
	row := toInvoiceRow(inv)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO invoice (id, client_id, number, description, amount_cents, currency, status,
		                     issued_at, due_date, paid_at, gateway_ref, created_at, updated_at)
		VALUES (:id, :client_id, :number, :description, :amount_cents, :currency, :status,
		        :issued_at, :due_date, :paid_at, :gateway_ref, :created_at, :updated_at)`, row)
	if err != nil {
		return billing.Invoice{}, errors.Wrap(err, "inserting invoice")
	}
	return inv, nil
}

func (repo billingRepository) GetInvoice(ctx context.Context, id string) (billing.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return billing.Invoice{}, billing.ErrNotFound
	}
	var row invoiceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM invoice WHERE id = $1`, id); err != nil {
		return billing.Invoice{}, trapNoRowsErr(err, billing.ErrNotFound, "finding invoice by ID")
	}
	return row.toInvoice(), nil
}

func (repo billingRepository) QueryInvoices(ctx context.Context, filter *billing.QueryFilter, ordering []core.DBOrdering) ([]billing.Invoice, error) {
	query := `SELECT * FROM invoice`
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
		if !filter.DueFrom.IsZero() {
			conds = append(conds, "due_date >= "+arg(filter.DueFrom))
		}
		if !filter.DueTo.IsZero() {
			conds = append(conds, "due_date <= "+arg(filter.DueTo))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "due_date")

	var rows []invoiceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}
	invoices := make([]billing.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, row.toInvoice())
	}
	return invoices, nil
}

func (repo billingRepository) UpdateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	row := toInvoiceRow(inv)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE invoice
		SET description = :description, amount_cents = :amount_cents, due_date = :due_date,
		    status = :status, paid_at = :paid_at, gateway_ref = :gateway_ref, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return billing.Invoice{}, errors.Wrap(err, "updating invoice")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return billing.Invoice{}, billing.ErrNotFound
	}
	return inv, nil
}

func (repo billingRepository) LatestReminder(ctx context.Context, invoiceID string) (billing.ReminderLog, error) {
	var row reminderLogRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM invoice_reminder_log WHERE invoice_id = $1 ORDER BY sent_at DESC LIMIT 1`, invoiceID)
	if err != nil {
		return billing.ReminderLog{}, trapNoRowsErr(err, billing.ErrNotFound, "finding latest reminder")
	}
	return billing.ReminderLog{ID: row.ID, InvoiceID: row.InvoiceID, Channel: row.Channel, SentAt: row.SentAt}, nil
}

func (repo billingRepository) CreateReminderLog(ctx context.Context, rl billing.ReminderLog) (billing.ReminderLog, error) {
	rl.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO invoice_reminder_log (id, invoice_id, channel, sent_at) VALUES ($1, $2, $3, $4)`,
		rl.ID, rl.InvoiceID, rl.Channel, rl.SentAt)
	if err != nil {
		return billing.ReminderLog{}, errors.Wrap(err, "inserting reminder log")
	}
	return rl, nil
}
