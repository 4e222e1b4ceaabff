package billing_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/billing"
	"github.com/website360/clientpulse-suite-sub003/core/client"
	emailsvc "github.com/website360/clientpulse-suite-sub003/services/email"
	logsvc "github.com/website360/clientpulse-suite-sub003/services/logger"
	notifsvc "github.com/website360/clientpulse-suite-sub003/services/notify"
	paysvc "github.com/website360/clientpulse-suite-sub003/services/payment"
	inmemdb "github.com/website360/clientpulse-suite-sub003/storage/database/inmem"
	testutil "github.com/website360/clientpulse-suite-sub003/tests"
)

type testDeps struct {
	svc        *billing.Service
	clientRepo client.Repository
	gateway    *paysvc.GatewayMock
	chat       *notifsvc.NotifierMock
}

func setup(t *testing.T) testDeps {
	t.Helper()

	db := inmemdb.Open()
	clientRepo := inmemdb.NewClientRepository(db)
	gateway := &paysvc.GatewayMock{Statuses: make(map[string]billing.PaymentStatus)}
	chat := notifsvc.NewNotifierMock()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	logger.Enable(false)

	svc := billing.NewService(
		inmemdb.NewBillingRepository(db),
		client.NewService(clientRepo),
		gateway,
		emailsvc.NewConsoleServiceMock(),
		chat,
		logger,
	)
	return testDeps{svc: svc, clientRepo: clientRepo, gateway: gateway, chat: chat}
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()

	orig := billing.NowFunc
	billing.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { billing.NowFunc = orig })
}

func newInvoice(t *testing.T, deps testDeps, cl client.Client, number, gatewayRef string) billing.Invoice {
	t.Helper()

	inv, err := deps.svc.Create(context.Background(), billing.NewInvoice{
		ClientID:    cl.ID,
		Number:      number,
		AmountCents: 12500,
		DueDate:     billing.NowFunc().UTC().AddDate(0, 0, 14),
		GatewayRef:  gatewayRef,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return inv
}

func TestService_Create(t *testing.T) {
	deps := setup(t)
	cl := testutil.CreateClient(t, deps.clientRepo, "Acme", "billing@acme.test")

	inv := newInvoice(t, deps, cl, "INV-001", "")
	if inv.Status != billing.InvoicePending {
		t.Errorf("Status = %s, want %s", inv.Status, billing.InvoicePending)
	}
	if inv.Currency != "usd" {
		t.Errorf("Currency = %s, want default usd", inv.Currency)
	}

	t.Run("unknown client", func(t *testing.T) {
		_, err := deps.svc.Create(context.Background(), billing.NewInvoice{
			ClientID:    "nope",
			Number:      "INV-002",
			AmountCents: 100,
			DueDate:     time.Now(),
		})
		if !errors.Is(err, client.ErrNotFound) {
			t.Errorf("Create() error = %v, want client.ErrNotFound", err)
		}
	})
}

func TestService_SyncPayment(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)

	cl := testutil.CreateClient(t, deps.clientRepo, "Acme", "billing@acme.test")
	paidAt := time.Date(2024, time.May, 30, 16, 45, 0, 0, time.UTC)
	deps.gateway.Statuses["ch_123"] = billing.PaymentStatus{Paid: true, PaidAt: paidAt, AmountCents: 12500}
	deps.gateway.Statuses["ch_456"] = billing.PaymentStatus{Paid: false}

	t.Run("paid charge marks invoice paid", func(t *testing.T) {
		inv := newInvoice(t, deps, cl, "INV-001", "ch_123")

		inv, err := deps.svc.SyncPayment(ctx, inv.ID)
		if err != nil {
			t.Fatalf("SyncPayment() failed: %v", err)
		}
		if inv.Status != billing.InvoicePaid {
			t.Errorf("Status = %s, want %s", inv.Status, billing.InvoicePaid)
		}
		if !inv.PaidAt.Equal(paidAt) {
			t.Errorf("PaidAt = %v, want the gateway's %v", inv.PaidAt, paidAt)
		}
	})

	t.Run("unpaid charge leaves invoice pending", func(t *testing.T) {
		inv := newInvoice(t, deps, cl, "INV-002", "ch_456")

		inv, err := deps.svc.SyncPayment(ctx, inv.ID)
		if err != nil {
			t.Fatalf("SyncPayment() failed: %v", err)
		}
		if inv.Status != billing.InvoicePending {
			t.Errorf("Status = %s, want %s", inv.Status, billing.InvoicePending)
		}
	})

	t.Run("no gateway ref", func(t *testing.T) {
		inv := newInvoice(t, deps, cl, "INV-003", "")

		_, err := deps.svc.SyncPayment(ctx, inv.ID)
		if !errors.Is(err, billing.ErrNoGatewayRef) {
			t.Errorf("SyncPayment() error = %v, want ErrNoGatewayRef", err)
		}
	})

	t.Run("gateway failure surfaces", func(t *testing.T) {
		inv := newInvoice(t, deps, cl, "INV-004", "ch_123")
		deps.gateway.Err = errors.New("gateway 500")
		t.Cleanup(func() { deps.gateway.Err = nil })

		if _, err := deps.svc.SyncPayment(ctx, inv.ID); err == nil {
			t.Error("SyncPayment() expected an error")
		}
	})
}

func TestService_RemindClient(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)

	cl := testutil.CreateClient(t, deps.clientRepo, "Acme", "billing@acme.test")
	inv := newInvoice(t, deps, cl, "INV-001", "")

	rl, err := deps.svc.RemindClient(ctx, inv.ID)
	if err != nil {
		t.Fatalf("RemindClient() failed: %v", err)
	}
	if rl.InvoiceID != inv.ID || rl.Channel != "email,chat" {
		t.Errorf("unexpected reminder log: %+v", rl)
	}
	if len(deps.chat.Messages) != 1 {
		t.Fatalf("got %d chat messages, want 1", len(deps.chat.Messages))
	}

	t.Run("throttled within 7 days", func(t *testing.T) {
		mockNow(t, now.Add(6*24*time.Hour))
		_, err := deps.svc.RemindClient(ctx, inv.ID)
		if !errors.Is(err, billing.ErrReminderThrottle) {
			t.Errorf("RemindClient() error = %v, want ErrReminderThrottle", err)
		}
	})

	t.Run("allowed after 7 days", func(t *testing.T) {
		mockNow(t, now.Add(8*24*time.Hour))
		if _, err := deps.svc.RemindClient(ctx, inv.ID); err != nil {
			t.Errorf("RemindClient() failed: %v", err)
		}
	})

	t.Run("chat failure does not fail the reminder", func(t *testing.T) {
		mockNow(t, now.Add(20*24*time.Hour))
		deps.chat.Err = errors.New("webhook down")
		t.Cleanup(func() { deps.chat.Err = nil })

		rl, err := deps.svc.RemindClient(ctx, inv.ID)
		if err != nil {
			t.Errorf("RemindClient() failed: %v", err)
		}
		if rl.Channel != "email" {
			t.Errorf("Channel = %q, want only the email channel logged", rl.Channel)
		}
	})

	t.Run("paid invoice needs no reminder", func(t *testing.T) {
		paid := newInvoice(t, deps, cl, "INV-005", "")
		if _, err := deps.svc.Update(ctx, paid.ID, billing.UpdateInvoice{Status: billing.InvoicePaid}); err != nil {
			t.Fatalf("Update() failed: %v", err)
		}

		_, err := deps.svc.RemindClient(ctx, paid.ID)
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("RemindClient() error = %v, want ValidationError", err)
		}
	})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents    int64
		currency string
		want     string
	}{
		{12500, "usd", "USD 125.00"},
		{5, "eur", "EUR 0.05"},
		{100, "GBP", "GBP 1.00"},
	}
	for _, tt := range tests {
		if got := billing.FormatAmount(tt.cents, tt.currency); got != tt.want {
			t.Errorf("FormatAmount(%d, %s) = %s, want %s", tt.cents, tt.currency, got, tt.want)
		}
	}
}
