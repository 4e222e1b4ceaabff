package maintenance_test

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
	logsvc "github.com/website360/clientpulse-suite-sub003/services/logger"
	notifsvc "github.com/website360/clientpulse-suite-sub003/services/notify"
	inmemdb "github.com/website360/clientpulse-suite-sub003/storage/database/inmem"
	testutil "github.com/website360/clientpulse-suite-sub003/tests"
)

func setup(t *testing.T, policy maintenance.RolloverPolicy) (*maintenance.Service, maintenance.Repository, *notifsvc.NotifierMock) {
	t.Helper()

	repo := inmemdb.NewMaintenanceRepository(inmemdb.Open())
	notifier := notifsvc.NewNotifierMock()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	logger.Enable(false)
	return maintenance.NewService(repo, notifier, logger, policy), repo, notifier
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()

	orig := maintenance.NowFunc
	maintenance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { maintenance.NowFunc = orig })
}

func TestService_CreatePlan(t *testing.T) {
	svc, repo, _ := setup(t, maintenance.RollForward)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, maintenance.NewPlan{ClientID: "cl1", DomainID: "dom1", MonthlyDay: 10})
	if err != nil {
		t.Fatalf("CreatePlan() failed: %v", err)
	}
	if plan.ID == "" {
		t.Error("expected plan to get an ID")
	}
	if !plan.Active() {
		t.Error("expected new plan to be active")
	}

	t.Run("duplicate client and domain rejected", func(t *testing.T) {
		_, err := svc.CreatePlan(ctx, maintenance.NewPlan{ClientID: "cl1", DomainID: "dom1", MonthlyDay: 5})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("CreatePlan() error = %v, want ValidationError", err)
		}
	})

	t.Run("duplicate survives deactivation", func(t *testing.T) {
		if _, err := svc.DeactivatePlan(ctx, plan.ID); err != nil {
			t.Fatalf("DeactivatePlan() failed: %v", err)
		}
		_, err := svc.CreatePlan(ctx, maintenance.NewPlan{ClientID: "cl1", DomainID: "dom1"})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("CreatePlan() error = %v, want ValidationError", err)
		}
	})

	t.Run("same client, different domain allowed", func(t *testing.T) {
		if _, err := svc.CreatePlan(ctx, maintenance.NewPlan{ClientID: "cl1", DomainID: "dom2"}); err != nil {
			t.Errorf("CreatePlan() failed: %v", err)
		}
	})

	t.Run("monthly day defaults from settings", func(t *testing.T) {
		if _, err := repo.UpdateSettings(ctx, maintenance.Settings{DefaultMonthlyDay: 12}); err != nil {
			t.Fatalf("UpdateSettings() failed: %v", err)
		}
		plan, err := svc.CreatePlan(ctx, maintenance.NewPlan{ClientID: "cl2"})
		if err != nil {
			t.Fatalf("CreatePlan() failed: %v", err)
		}
		if plan.MonthlyDay != 12 {
			t.Errorf("MonthlyDay = %d, want 12", plan.MonthlyDay)
		}
	})
}

func TestService_RecordExecution(t *testing.T) {
	svc, repo, notifier := setup(t, maintenance.RollForward)
	ctx := context.Background()
	now := time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)
	mockNow(t, now)

	plan := testutil.CreatePlan(t, repo, "cl1", "dom1", 10)
	item, err := repo.CreateChecklistItem(ctx, maintenance.ChecklistItem{Label: "Update plugins", Position: 1})
	if err != nil {
		t.Fatalf("CreateChecklistItem() failed: %v", err)
	}

	result, err := svc.RecordExecution(ctx, maintenance.NewExecution{
		PlanID:     plan.ID,
		ExecutedBy: "usr1",
		ItemStatuses: map[string]maintenance.ItemStatus{
			item.ID: maintenance.ItemDone,
		},
		ItemNotes: map[string]string{item.ID: "all good"},
	})
	if err != nil {
		t.Fatalf("RecordExecution() failed: %v", err)
	}
	if result.Warning != nil {
		t.Errorf("unexpected warning: %v", result.Warning)
	}

	exec := result.Execution
	if !exec.ExecutedAt.Equal(now) {
		t.Errorf("ExecutedAt = %v, want %v", exec.ExecutedAt, now)
	}
	if want := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC); !exec.NextScheduledDate.Equal(want) {
		t.Errorf("NextScheduledDate = %v, want %v", exec.NextScheduledDate, want)
	}
	if exec.NotificationSent {
		t.Error("no notification was requested")
	}
	if len(exec.Items) != 1 || exec.Items[0].Status != maintenance.ItemDone {
		t.Errorf("unexpected checklist outcomes: %+v", exec.Items)
	}
	if len(notifier.Messages) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.Messages)
	}

	t.Run("unknown plan", func(t *testing.T) {
		_, err := svc.RecordExecution(ctx, maintenance.NewExecution{PlanID: "nope"})
		if !errors.Is(err, maintenance.ErrPlanNotFound) {
			t.Errorf("RecordExecution() error = %v, want ErrPlanNotFound", err)
		}
	})
}

func TestService_RecordExecution_notification(t *testing.T) {
	svc, repo, notifier := setup(t, maintenance.RollForward)
	ctx := context.Background()
	now := time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)
	mockNow(t, now)

	if _, err := repo.UpdateSettings(ctx, maintenance.Settings{
		MessageTemplate: "Maintenance done for {client_id} on {executed_at}, next due {next_scheduled_date}. Unknown: {nope}",
	}); err != nil {
		t.Fatalf("UpdateSettings() failed: %v", err)
	}
	plan := testutil.CreatePlan(t, repo, "cl1", "", 10)

	result, err := svc.RecordExecution(ctx, maintenance.NewExecution{PlanID: plan.ID, SendNotification: true})
	if err != nil {
		t.Fatalf("RecordExecution() failed: %v", err)
	}
	if result.Warning != nil {
		t.Errorf("unexpected warning: %v", result.Warning)
	}
	if !result.Execution.NotificationSent {
		t.Error("expected NotificationSent to be set")
	}

	if len(notifier.Messages) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.Messages))
	}
	want := "Maintenance done for cl1 on 2024-03-10, next due 2024-04-10. Unknown: {nope}"
	if notifier.Messages[0] != want {
		t.Errorf("message = %q, want %q", notifier.Messages[0], want)
	}

	// flag must have been persisted too
	saved, err := repo.GetExecution(ctx, result.Execution.ID)
	if err != nil {
		t.Fatalf("GetExecution() failed: %v", err)
	}
	if !saved.NotificationSent {
		t.Error("expected persisted NotificationSent to be set")
	}
}

func TestService_RecordExecution_notificationFailure(t *testing.T) {
	svc, repo, notifier := setup(t, maintenance.RollForward)
	ctx := context.Background()
	mockNow(t, time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC))

	plan := testutil.CreatePlan(t, repo, "cl1", "", 10)
	notifier.Err = errors.New("webhook down")

	result, err := svc.RecordExecution(ctx, maintenance.NewExecution{PlanID: plan.ID, SendNotification: true})
	if err != nil {
		t.Fatalf("RecordExecution() failed: %v", err)
	}
	if result.Warning == nil {
		t.Fatal("expected a warning when notification dispatch fails")
	}
	if !strings.Contains(result.Warning.Error(), "webhook down") {
		t.Errorf("warning = %v, want it to wrap the dispatch error", result.Warning)
	}
	if result.Execution.NotificationSent {
		t.Error("NotificationSent must stay false on dispatch failure")
	}

	// the execution itself is authoritative and must be persisted
	if _, err := repo.GetExecution(ctx, result.Execution.ID); err != nil {
		t.Errorf("GetExecution() failed: %v", err)
	}
}

func TestService_Schedule(t *testing.T) {
	svc, repo, _ := setup(t, maintenance.RollForward)
	ctx := context.Background()
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)

	done := testutil.CreatePlan(t, repo, "cl1", "dom1", 10)
	overdue := testutil.CreatePlan(t, repo, "cl1", "dom2", 10)
	awaiting := testutil.CreatePlan(t, repo, "cl2", "", 25)

	if _, err := repo.CreateExecution(ctx, maintenance.Execution{
		PlanID:            done.ID,
		ExecutedAt:        time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		NextScheduledDate: time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
		CreatedAt:         now,
	}); err != nil {
		t.Fatalf("CreateExecution() failed: %v", err)
	}

	schedules, err := svc.Schedule(ctx, &maintenance.QueryFilter{}, nil)
	if err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}
	if len(schedules) != 3 {
		t.Fatalf("got %d schedules, want 3", len(schedules))
	}

	byPlan := make(map[string]maintenance.PlanSchedule, len(schedules))
	for _, s := range schedules {
		byPlan[s.Plan.ID] = s
	}

	if s := byPlan[done.ID]; s.Schedule.Status != maintenance.StatusDone {
		t.Errorf("executed plan status = %s, want %s", s.Schedule.Status, maintenance.StatusDone)
	} else if want := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC); !s.Schedule.NextDue.Equal(want) {
		t.Errorf("executed plan NextDue = %v, want the execution's precomputed %v", s.Schedule.NextDue, want)
	} else if s.LatestExecution == nil {
		t.Error("expected executed plan to carry its latest execution")
	}

	if s := byPlan[overdue.ID]; s.Schedule.Status != maintenance.StatusOverdue {
		t.Errorf("overdue plan status = %s, want %s", s.Schedule.Status, maintenance.StatusOverdue)
	}
	if s := byPlan[awaiting.ID]; s.Schedule.Status != maintenance.StatusAwaitingFirst {
		t.Errorf("fresh plan status = %s, want %s", s.Schedule.Status, maintenance.StatusAwaitingFirst)
	}
}

func TestService_UpdateSettings(t *testing.T) {
	svc, _, _ := setup(t, maintenance.RollForward)
	ctx := context.Background()

	// settings row is created on first update
	settings, err := svc.UpdateSettings(ctx, maintenance.UpdateSettings{DefaultMonthlyDay: 15})
	if err != nil {
		t.Fatalf("UpdateSettings() failed: %v", err)
	}
	if settings.DefaultMonthlyDay != 15 {
		t.Errorf("DefaultMonthlyDay = %d, want 15", settings.DefaultMonthlyDay)
	}

	settings, err = svc.UpdateSettings(ctx, maintenance.UpdateSettings{MessageTemplate: "done for {client_id}"})
	if err != nil {
		t.Fatalf("UpdateSettings() failed: %v", err)
	}
	if settings.DefaultMonthlyDay != 15 {
		t.Error("partial update must keep the existing monthly day")
	}
	if settings.MessageTemplate != "done for {client_id}" {
		t.Errorf("MessageTemplate = %q", settings.MessageTemplate)
	}

	got, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if got.ID != settings.ID {
		t.Error("expected a single settings row")
	}
}

func TestService_ReorderChecklist(t *testing.T) {
	svc, _, _ := setup(t, maintenance.RollForward)
	ctx := context.Background()

	a, err := svc.CreateChecklistItem(ctx, maintenance.NewChecklistItem{Label: "Backup", Position: 1})
	if err != nil {
		t.Fatalf("CreateChecklistItem() failed: %v", err)
	}
	b, err := svc.CreateChecklistItem(ctx, maintenance.NewChecklistItem{Label: "Update core", Position: 2})
	if err != nil {
		t.Fatalf("CreateChecklistItem() failed: %v", err)
	}

	if err := svc.ReorderChecklist(ctx, []string{b.ID, a.ID}); err != nil {
		t.Fatalf("ReorderChecklist() failed: %v", err)
	}

	items, err := svc.ChecklistItems(ctx)
	if err != nil {
		t.Fatalf("ChecklistItems() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != b.ID || items[1].ID != a.ID {
		t.Errorf("unexpected order: %s, %s", items[0].Label, items[1].Label)
	}
}
