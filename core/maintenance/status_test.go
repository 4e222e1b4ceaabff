package maintenance

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDerive(t *testing.T) {
	execOn := func(y int, m time.Month, d int) *Execution {
		return &Execution{ExecutedAt: date(y, m, d)}
	}

	tests := []struct {
		name       string
		plan       Plan
		latest     *Execution
		today      time.Time
		policy     RolloverPolicy
		wantStatus Status
		wantNext   time.Time
		wantExec   bool
	}{
		{
			name: "no history, before scheduled day", plan: Plan{MonthlyDay: 15},
			today:      date(2024, time.January, 10),
			wantStatus: StatusAwaitingFirst, wantNext: date(2024, time.January, 15), wantExec: true,
		},
		{
			name: "no history, past scheduled day", plan: Plan{MonthlyDay: 15},
			today:      date(2024, time.January, 20),
			wantStatus: StatusOverdue, wantNext: date(2024, time.January, 15), wantExec: true,
		},
		{
			name: "no history, on scheduled day", plan: Plan{MonthlyDay: 15},
			today:      date(2024, time.January, 15),
			wantStatus: StatusAwaitingFirst, wantNext: date(2024, time.January, 15), wantExec: true,
		},
		{
			name: "executed this month, even past scheduled day", plan: Plan{MonthlyDay: 5},
			latest: execOn(2024, time.March, 4), today: date(2024, time.March, 31),
			wantStatus: StatusDone, wantNext: date(2024, time.March, 5), wantExec: false,
		},
		{
			name: "executed prior month, past scheduled day", plan: Plan{MonthlyDay: 5},
			latest: execOn(2024, time.February, 4), today: date(2024, time.March, 10),
			wantStatus: StatusOverdue, wantNext: date(2024, time.March, 5), wantExec: true,
		},
		{
			name: "executed prior month, before scheduled day", plan: Plan{MonthlyDay: 5},
			latest: execOn(2024, time.February, 4), today: date(2024, time.March, 3),
			wantStatus: StatusAwaiting, wantNext: date(2024, time.March, 5), wantExec: true,
		},
		{
			name: "executed same month previous year", plan: Plan{MonthlyDay: 5},
			latest: execOn(2023, time.March, 4), today: date(2024, time.March, 3),
			wantStatus: StatusAwaiting, wantNext: date(2024, time.March, 5), wantExec: true,
		},
		{
			name: "precomputed next date wins", plan: Plan{MonthlyDay: 5},
			latest: &Execution{ExecutedAt: date(2024, time.February, 4), NextScheduledDate: date(2024, time.March, 5)},
			today:  date(2024, time.February, 20),
			wantStatus: StatusDone, wantNext: date(2024, time.March, 5), wantExec: false,
		},
		{
			name: "future start date honored when no history", plan: Plan{MonthlyDay: 5, StartDate: date(2024, time.April, 1)},
			today:      date(2024, time.March, 3),
			wantStatus: StatusAwaitingFirst, wantNext: date(2024, time.April, 1), wantExec: true,
		},
		{
			name: "past start date ignored", plan: Plan{MonthlyDay: 5, StartDate: date(2024, time.January, 1)},
			today:      date(2024, time.March, 3),
			wantStatus: StatusAwaitingFirst, wantNext: date(2024, time.March, 5), wantExec: true,
		},
		{
			name: "missing monthly day falls back to day 1", plan: Plan{},
			today:      date(2024, time.March, 3),
			wantStatus: StatusOverdue, wantNext: date(2024, time.March, 1), wantExec: true,
		},
		{
			name: "day 31 in february rolls forward", plan: Plan{MonthlyDay: 31},
			today:      date(2024, time.February, 29),
			wantStatus: StatusAwaitingFirst, wantNext: date(2024, time.March, 2), wantExec: true,
		},
		{
			name: "day 31 in february clamps to month end", plan: Plan{MonthlyDay: 31},
			today: date(2024, time.February, 20), policy: ClampToMonthEnd,
			wantStatus: StatusAwaitingFirst, wantNext: date(2024, time.February, 29), wantExec: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.plan, tt.latest, tt.today, tt.policy)
			if got.Status != tt.wantStatus {
				t.Errorf("Derive() status = %v, want %v", got.Status, tt.wantStatus)
			}
			if !got.NextDue.Equal(tt.wantNext) {
				t.Errorf("Derive() next due = %v, want %v", got.NextDue, tt.wantNext)
			}
			if got.CanExecute != tt.wantExec {
				t.Errorf("Derive() can execute = %v, want %v", got.CanExecute, tt.wantExec)
			}
		})
	}
}

func TestDeriveIsPure(t *testing.T) {
	plan := Plan{MonthlyDay: 15}
	latest := &Execution{ExecutedAt: date(2024, time.February, 4), NextScheduledDate: date(2024, time.March, 15)}
	today := date(2024, time.March, 10)

	first := Derive(plan, latest, today, RollForward)
	second := Derive(plan, latest, today, RollForward)
	if first != second {
		t.Errorf("Derive() is not deterministic: %+v != %+v", first, second)
	}
}

func TestScheduledFor(t *testing.T) {
	tests := []struct {
		name   string
		year   int
		month  time.Month
		day    int
		policy RolloverPolicy
		want   time.Time
	}{
		{name: "regular day", year: 2024, month: time.January, day: 15, want: date(2024, time.January, 15)},
		{name: "rolls into next month", year: 2023, month: time.February, day: 31, want: date(2023, time.March, 3)},
		{name: "rolls in leap year", year: 2024, month: time.February, day: 31, want: date(2024, time.March, 2)},
		{name: "clamps to month end", year: 2023, month: time.February, day: 31, policy: ClampToMonthEnd, want: date(2023, time.February, 28)},
		{name: "clamps in leap year", year: 2024, month: time.February, day: 31, policy: ClampToMonthEnd, want: date(2024, time.February, 29)},
		{name: "clamp keeps valid day", year: 2024, month: time.April, day: 30, policy: ClampToMonthEnd, want: date(2024, time.April, 30)},
		{name: "day below range defaults to 1", year: 2024, month: time.April, day: 0, want: date(2024, time.April, 1)},
		{name: "day above range clamps to 31", year: 2024, month: time.May, day: 99, want: date(2024, time.May, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScheduledFor(tt.year, tt.month, tt.day, tt.policy); !got.Equal(tt.want) {
				t.Errorf("ScheduledFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name   string
		today  time.Time
		day    int
		policy RolloverPolicy
		want   time.Time
	}{
		{name: "mid month", today: date(2024, time.March, 10), day: 5, want: date(2024, time.April, 5)},
		{name: "december wraps to january", today: date(2024, time.December, 20), day: 15, want: date(2025, time.January, 15)},
		{name: "rollover into march", today: date(2024, time.January, 10), day: 31, want: date(2024, time.March, 2)},
		{name: "clamped to february end", today: date(2024, time.January, 10), day: 31, policy: ClampToMonthEnd, want: date(2024, time.February, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextDueDate(tt.today, tt.day, tt.policy); !got.Equal(tt.want) {
				t.Errorf("NextDueDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
