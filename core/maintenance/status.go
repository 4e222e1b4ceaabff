package maintenance

import "time"

// Status describes a plan's current-month compliance. Derived on every read,
// never persisted.
type Status string

const (
	StatusDone          Status = "done"
	StatusOverdue       Status = "overdue"
	StatusAwaitingFirst Status = "awaiting_first_maintenance"
	StatusAwaiting      Status = "awaiting_maintenance"
)

// RolloverPolicy decides what happens when a plan's monthly day exceeds the
// number of days in the target month (eg. day 31 in February).
type RolloverPolicy int

const (
	// RollForward lets native date arithmetic push the date into the next
	// month (Feb 31 -> Mar 3). Matches the historically observed behavior.
	RollForward RolloverPolicy = iota
	// ClampToMonthEnd pins the date to the last day of the target month
	// (Feb 31 -> Feb 28/29).
	ClampToMonthEnd
)

// Schedule is the derived scheduling state of a plan.
type Schedule struct {
	Status     Status    `json:"status"`
	NextDue    time.Time `json:"next_due"`
	CanExecute bool      `json:"can_execute"`
}

// ScheduledFor builds the due date for the given year/month at day under the
// given rollover policy.
func ScheduledFor(year int, month time.Month, day int, policy RolloverPolicy) time.Time {
	day = clampDay(day)
	if policy == ClampToMonthEnd {
		if last := daysIn(year, month); day > last {
			day = last
		}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextDueDate computes the following month's due date at monthlyDay, as fixed
// on an execution record at creation time.
func NextDueDate(today time.Time, monthlyDay int, policy RolloverPolicy) time.Time {
	next := today.AddDate(0, 1, 0)
	return ScheduledFor(next.Year(), next.Month(), monthlyDay, policy)
}

// Derive computes a plan's display status, next due date and whether an
// "Execute" action should be offered, from the plan's recurrence rule and its
// most recent execution (nil when none exists yet). today is injected so the
// derivation stays a pure function of its inputs; it never fails, applying
// defensive defaults instead (a missing monthly day falls back to day 1).
func Derive(plan Plan, latest *Execution, today time.Time, policy RolloverPolicy) Schedule {
	today = truncate(today)
	scheduled := ScheduledFor(today.Year(), today.Month(), plan.MonthlyDay, policy)

	var status Status
	switch {
	case latest == nil && today.After(scheduled):
		status = StatusOverdue
	case latest == nil:
		status = StatusAwaitingFirst
	case sameMonth(latest.ExecutedAt, today):
		status = StatusDone
	case today.After(scheduled):
		status = StatusOverdue
	default:
		status = StatusAwaiting
	}

	// one execution consumes the current month's obligation
	canExecute := latest == nil || !sameMonth(latest.ExecutedAt, today)

	var nextDue time.Time
	switch {
	case latest != nil && !latest.NextScheduledDate.IsZero():
		nextDue = latest.NextScheduledDate // fixed at execution-creation time
	case latest == nil && plan.StartDate.After(today):
		nextDue = truncate(plan.StartDate)
	default:
		nextDue = scheduled
	}

	return Schedule{Status: status, NextDue: nextDue, CanExecute: canExecute}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > 31 {
		return 31
	}
	return day
}
