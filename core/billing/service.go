package billing

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/client"
)

// reminderThrottle is the minimum delay between two payment reminders for the
// same invoice. The dedup is a log lookup, not a lock: two concurrent requests
// may both pass the check. Accepted for single-operator usage.
const reminderThrottle = 7 * 24 * time.Hour

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("invoice not found")
	ErrNoGatewayRef     = errors.New("invoice has no payment gateway reference")
	ErrReminderThrottle = errors.New("a reminder was already sent for this invoice in the last 7 days")
)

type (
	// PaymentStatus is the gateway's view of a charge.
	PaymentStatus struct {
		Paid        bool
		PaidAt      time.Time
		AmountCents int64
	}

	// Gateway is the third-party payment collaborator. Its API semantics are
	// out of scope here; only the lookup this service needs is modelled.
	Gateway interface {
		PaymentStatus(ctx context.Context, ref string) (PaymentStatus, error)
	}

	// ChatSender posts a short text message to the agency chat channel.
	ChatSender interface {
		SendMessage(ctx context.Context, text string) error
	}

	Repository interface {
		CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		GetInvoice(ctx context.Context, id string) (Invoice, error)
		// QueryInvoices applies AND operation on available QueryFilter fields.
		QueryInvoices(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		UpdateInvoice(ctx context.Context, inv Invoice) (Invoice, error)

		// LatestReminder returns the most recent reminder log row for the
		// invoice; ErrNotFound when none was ever sent.
		LatestReminder(ctx context.Context, invoiceID string) (ReminderLog, error)
		CreateReminderLog(ctx context.Context, rl ReminderLog) (ReminderLog, error)
	}

	Service struct {
		repo      Repository
		clientSvc *client.Service
		gateway   Gateway
		mailSvc   core.EmailService
		chat      ChatSender
		logger    core.Logger
	}
)

func NewService(
	repo Repository,
	clientSvc *client.Service,
	gateway Gateway,
	mailSvc core.EmailService,
	chat ChatSender,
	logger core.Logger,
) *Service {
	return &Service{
		repo:      repo,
		clientSvc: clientSvc,
		gateway:   gateway,
		mailSvc:   mailSvc,
		chat:      chat,
		logger:    logger,
	}
}

func (svc *Service) Create(ctx context.Context, ni NewInvoice) (Invoice, error) {
	if _, err := svc.clientSvc.GetByID(ctx, ni.ClientID); err != nil {
		return Invoice{}, err
	}

	now := NowFunc().UTC()
	currency := ni.Currency
	if currency == "" {
		currency = "usd"
	}
	inv := Invoice{
		ClientID:    ni.ClientID,
		Number:      ni.Number,
		Description: ni.Description,
		AmountCents: ni.AmountCents,
		Currency:    currency,
		Status:      InvoicePending,
		IssuedAt:    now,
		DueDate:     ni.DueDate,
		GatewayRef:  ni.GatewayRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateInvoice(ctx, inv)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Invoice, error) {
	return svc.repo.GetInvoice(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error) {
	return svc.repo.QueryInvoices(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, ui UpdateInvoice) (Invoice, error) {
	inv, err := svc.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if ui.Description != "" {
		inv.Description = ui.Description
	}
	if ui.AmountCents != 0 {
		inv.AmountCents = ui.AmountCents
	}
	if !ui.DueDate.IsZero() {
		inv.DueDate = ui.DueDate
	}
	if ui.Status != "" {
		inv.Status = ui.Status
	}
	if ui.GatewayRef != "" {
		inv.GatewayRef = ui.GatewayRef
	}
	inv.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateInvoice(ctx, inv)
}

func (svc *Service) Cancel(ctx context.Context, id string) (Invoice, error) {
	return svc.Update(ctx, id, UpdateInvoice{Status: InvoiceCancelled})
}

// SyncPayment refreshes an invoice's status from the payment gateway.
// Only ever triggered manually by a user action; never retried automatically.
func (svc *Service) SyncPayment(ctx context.Context, id string) (Invoice, error) {
	inv, err := svc.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.GatewayRef == "" {
		return Invoice{}, ErrNoGatewayRef
	}

	status, err := svc.gateway.PaymentStatus(ctx, inv.GatewayRef)
	if err != nil {
		return Invoice{}, pkgerrors.Wrap(err, "querying payment gateway")
	}
	if !status.Paid {
		return inv, nil
	}

	inv.Status = InvoicePaid
	inv.PaidAt = status.PaidAt.UTC()
	if inv.PaidAt.IsZero() {
		inv.PaidAt = NowFunc().UTC()
	}
	inv.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateInvoice(ctx, inv)
}

// RemindClient sends a payment reminder over email and the chat webhook,
// throttled by reminder-log lookup: at most one reminder per invoice per
// 7 days. The email is the authoritative channel; a chat failure is logged
// and does not fail the operation.
func (svc *Service) RemindClient(ctx context.Context, id string) (ReminderLog, error) {
	inv, err := svc.repo.GetInvoice(ctx, id)
	if err != nil {
		return ReminderLog{}, err
	}
	if inv.Status == InvoicePaid || inv.Status == InvoiceCancelled {
		return ReminderLog{}, core.NewValidationError(
			errors.New("invoice is " + string(inv.Status) + "; no reminder needed"))
	}

	now := NowFunc().UTC()
	last, err := svc.repo.LatestReminder(ctx, inv.ID)
	switch pkgerrors.Cause(err) {
	case nil:
		if now.Sub(last.SentAt) < reminderThrottle {
			return ReminderLog{}, ErrReminderThrottle
		}
	case ErrNotFound:
	default:
		return ReminderLog{}, err
	}

	cl, err := svc.clientSvc.GetByID(ctx, inv.ClientID)
	if err != nil {
		return ReminderLog{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: cl.Name, Address: cl.Email}},
		Subject:      fmt.Sprintf("Payment reminder - invoice %s", inv.Number),
		TemplateName: "payment-reminder",
		TemplateData: struct {
			Client  client.Client
			Invoice Invoice
			Amount  string
		}{cl, inv, FormatAmount(inv.AmountCents, inv.Currency)},
	})

	channel := "email"
	text := fmt.Sprintf("Payment reminder sent to %s for invoice %s (%s), due %s",
		cl.Name, inv.Number, FormatAmount(inv.AmountCents, inv.Currency), inv.DueDate.Format("2006-01-02"))
	if err := svc.chat.SendMessage(ctx, text); err != nil {
		svc.logger.Warn("reminder chat dispatch failed", err)
	} else {
		channel += ",chat"
	}

	rl := ReminderLog{InvoiceID: inv.ID, Channel: channel, SentAt: now}
	return svc.repo.CreateReminderLog(ctx, rl)
}

// FormatAmount renders integer cents as a display amount, eg. "USD 12.50".
func FormatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", strings.ToUpper(currency), cents/100, cents%100)
}
