package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/billing"
)

type billingRepository struct {
	db *DB
}

var _ billing.Repository = (*billingRepository)(nil)

func NewBillingRepository(db *DB) *billingRepository {
	return &billingRepository{db: db}
}

func (repo *billingRepository) CreateInvoice(_ context.Context, inv billing.Invoice) (billing.Invoice, error) {
	repo.db.invoice.mutex.Lock()
	defer repo.db.invoice.mutex.Unlock()

	inv.ID = uuid.New().String()
	repo.db.invoice.rows[inv.ID] = &inv
	return inv, nil
}

func (repo *billingRepository) GetInvoice(_ context.Context, id string) (billing.Invoice, error) {
	repo.db.invoice.mutex.RLock()
	defer repo.db.invoice.mutex.RUnlock()

	if inv, ok := repo.db.invoice.rows[id]; ok {
		return *inv, nil
	}
	return billing.Invoice{}, billing.ErrNotFound
}

func (repo *billingRepository) QueryInvoices(_ context.Context, filter *billing.QueryFilter, _ []core.DBOrdering) ([]billing.Invoice, error) {
	repo.db.invoice.mutex.RLock()
	defer repo.db.invoice.mutex.RUnlock()

	var invoices []billing.Invoice
	for _, inv := range repo.db.invoice.all() {
		if filter != nil && !filter.IsEmpty() {
			filter.Clean()
			if filter.ClientID != "" && inv.ClientID != filter.ClientID {
				continue
			}
			if filter.Status != "" && inv.Status != filter.Status {
				continue
			}
			if !filter.DueFrom.IsZero() && inv.DueDate.Before(filter.DueFrom) {
				continue
			}
			if !filter.DueTo.IsZero() && inv.DueDate.After(filter.DueTo) {
				continue
			}
		}
		invoices = append(invoices, inv)
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].DueDate.Before(invoices[j].DueDate) })
	return invoices, nil
}

func (repo *billingRepository) UpdateInvoice(_ context.Context, inv billing.Invoice) (billing.Invoice, error) {
	repo.db.invoice.mutex.Lock()
	defer repo.db.invoice.mutex.Unlock()

	if _, ok := repo.db.invoice.rows[inv.ID]; !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	repo.db.invoice.rows[inv.ID] = &inv
	return inv, nil
}

func (repo *billingRepository) LatestReminder(_ context.Context, invoiceID string) (billing.ReminderLog, error) {
	repo.db.reminderLog.mutex.RLock()
	defer repo.db.reminderLog.mutex.RUnlock()

	var latest *billing.ReminderLog
	for _, rl := range repo.db.reminderLog.all() {
		rl := rl
		if rl.InvoiceID != invoiceID {
			continue
		}
		if latest == nil || rl.SentAt.After(latest.SentAt) {
			latest = &rl
		}
	}
	if latest == nil {
		return billing.ReminderLog{}, billing.ErrNotFound
	}
	return *latest, nil
}

func (repo *billingRepository) CreateReminderLog(_ context.Context, rl billing.ReminderLog) (billing.ReminderLog, error) {
	repo.db.reminderLog.mutex.Lock()
	defer repo.db.reminderLog.mutex.Unlock()

	rl.ID = uuid.New().String()
	repo.db.reminderLog.rows[rl.ID] = &rl
	return rl, nil
}
