// Package inmemdb provides map-backed repositories used by service and API
// tests. Semantics mirror the Postgres repositories.
package inmemdb

import (
	"sync"

	"github.com/website360/clientpulse-suite-sub003/core/billing"
	"github.com/website360/clientpulse-suite-sub003/core/client"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
	"github.com/website360/clientpulse-suite-sub003/core/org"
	"github.com/website360/clientpulse-suite-sub003/core/project"
	"github.com/website360/clientpulse-suite-sub003/core/ticket"
	"github.com/website360/clientpulse-suite-sub003/core/user"
)

type (
	DB struct {
		user        *table[user.User]
		client      *table[client.Client]
		domain      *table[client.Domain]
		plan        *table[maintenance.Plan]
		execution   *table[maintenance.Execution]
		execItem    *table[maintenance.ExecutionItem]
		checklist   *table[maintenance.ChecklistItem]
		settings    *table[maintenance.Settings]
		invoice     *table[billing.Invoice]
		reminderLog *table[billing.ReminderLog]
		project     *table[project.Project]
		task        *table[project.Task]
		ticket      *table[ticket.Ticket]
		comment     *table[ticket.Comment]
		org         *table[org.Org]
	}

	table[T any] struct {
		rows  map[string]*T
		mutex sync.RWMutex
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) all() []T {
	res := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		res = append(res, *row)
	}
	return res
}

func Open() *DB {
	return &DB{
		user:        newTable[user.User](),
		client:      newTable[client.Client](),
		domain:      newTable[client.Domain](),
		plan:        newTable[maintenance.Plan](),
		execution:   newTable[maintenance.Execution](),
		execItem:    newTable[maintenance.ExecutionItem](),
		checklist:   newTable[maintenance.ChecklistItem](),
		settings:    newTable[maintenance.Settings](),
		invoice:     newTable[billing.Invoice](),
		reminderLog: newTable[billing.ReminderLog](),
		project:     newTable[project.Project](),
		task:        newTable[project.Task](),
		ticket:      newTable[ticket.Ticket](),
		comment:     newTable[ticket.Comment](),
		org:         newTable[org.Org](),
	}
}
