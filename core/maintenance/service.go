package maintenance

import (
	"context"
	"errors"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrPlanNotFound          = errors.New("maintenance plan not found")
	ErrPlanExists            = errors.New("a maintenance plan for this client and domain already exists")
	ErrExecutionNotFound     = errors.New("maintenance execution not found")
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	ErrSettingsNotFound      = errors.New("maintenance settings not found")
)

type (
	Repository interface {
		// CheckPlanUniqueness returns ErrPlanExists when any plan (active or
		// not) already covers the same (client, domain) pair.
		CheckPlanUniqueness(ctx context.Context, clientID, domainID string, excludedPlans ...Plan) error
		CreatePlan(ctx context.Context, plan Plan) (Plan, error)
		GetPlan(ctx context.Context, id string) (Plan, error)
		// QueryPlans applies AND operation on available QueryFilter fields.
		QueryPlans(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Plan, error)
		UpdatePlan(ctx context.Context, plan Plan) (Plan, error)

		CreateExecution(ctx context.Context, exec Execution) (Execution, error)
		CreateExecutionItems(ctx context.Context, items []ExecutionItem) ([]ExecutionItem, error)
		// LatestExecution returns ErrExecutionNotFound when the plan has no history.
		LatestExecution(ctx context.Context, planID string) (Execution, error)
		QueryExecutions(ctx context.Context, planID string) ([]Execution, error)
		GetExecution(ctx context.Context, id string) (Execution, error)
		QueryExecutionItems(ctx context.Context, executionID string) ([]ExecutionItem, error)
		DeleteExecution(ctx context.Context, id string) error
		SetExecutionNotified(ctx context.Context, id string, sent bool) error

		QueryChecklistItems(ctx context.Context) ([]ChecklistItem, error)
		GetChecklistItem(ctx context.Context, id string) (ChecklistItem, error)
		CreateChecklistItem(ctx context.Context, item ChecklistItem) (ChecklistItem, error)
		UpdateChecklistItem(ctx context.Context, item ChecklistItem) (ChecklistItem, error)
		ReorderChecklistItems(ctx context.Context, ids []string) error

		GetSettings(ctx context.Context) (Settings, error)
		UpdateSettings(ctx context.Context, settings Settings) (Settings, error)
	}

	// Notifier dispatches a chat message about a recorded execution.
	// Delivery is best-effort: the caller treats failures as warnings.
	Notifier interface {
		NotifyExecution(ctx context.Context, executionID, message string) error
	}

	Service struct {
		repo     Repository
		notifier Notifier
		logger   core.Logger
		policy   RolloverPolicy
	}
)

func NewService(repo Repository, notifier Notifier, logger core.Logger, policy RolloverPolicy) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger, policy: policy}
}

// PlanSchedule pairs a plan with its derived scheduling state.
type PlanSchedule struct {
	Plan            Plan       `json:"plan"`
	Schedule        Schedule   `json:"schedule"`
	LatestExecution *Execution `json:"latest_execution,omitempty"`
}

// ExecutionResult is the outcome of recording an execution. The execution is
// authoritative; Warning carries any non-fatal follow-up failure (checklist
// outcomes or notification dispatch) for the caller to surface.
type ExecutionResult struct {
	Execution Execution
	Warning   error
}

func (svc *Service) CreatePlan(ctx context.Context, np NewPlan) (Plan, error) {
	if err := svc.repo.CheckPlanUniqueness(ctx, np.ClientID, np.DomainID); err != nil {
		if pkgerrors.Cause(err) == ErrPlanExists {
			return Plan{}, core.NewValidationError(err, core.FieldError{Field: "domain_id", Error: err.Error()})
		}
		return Plan{}, err
	}

	day := np.MonthlyDay
	if day == 0 {
		settings, err := svc.repo.GetSettings(ctx)
		if err != nil && pkgerrors.Cause(err) != ErrSettingsNotFound {
			return Plan{}, err
		}
		if day = settings.DefaultMonthlyDay; day == 0 {
			day = 1
		}
	}

	now := NowFunc().UTC()
	active := true
	plan := Plan{
		ClientID:   np.ClientID,
		DomainID:   np.DomainID,
		MonthlyDay: day,
		IsActive:   &active,
		StartDate:  np.StartDate,
		Notes:      np.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreatePlan(ctx, plan)
}

func (svc *Service) GetPlan(ctx context.Context, id string) (Plan, error) {
	return svc.repo.GetPlan(ctx, id)
}

func (svc *Service) QueryPlans(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Plan, error) {
	return svc.repo.QueryPlans(ctx, filter, ordering)
}

// UpdatePlan edits a plan in place. Identity cannot collide with itself so no
// uniqueness re-check is performed.
func (svc *Service) UpdatePlan(ctx context.Context, id string, up UpdatePlan) (Plan, error) {
	plan, err := svc.repo.GetPlan(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if up.MonthlyDay != 0 {
		plan.MonthlyDay = up.MonthlyDay
	}
	if up.IsActive != nil {
		plan.IsActive = up.IsActive
	}
	if !up.StartDate.IsZero() {
		plan.StartDate = up.StartDate
	}
	if up.Notes != "" {
		plan.Notes = up.Notes
	}
	plan.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdatePlan(ctx, plan)
}

// DeactivatePlan retires a plan without touching its execution history.
func (svc *Service) DeactivatePlan(ctx context.Context, id string) (Plan, error) {
	inactive := false
	return svc.UpdatePlan(ctx, id, UpdatePlan{IsActive: &inactive})
}

// Schedule lists plans with their derived status and next due date.
func (svc *Service) Schedule(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]PlanSchedule, error) {
	plans, err := svc.repo.QueryPlans(ctx, filter, ordering)
	if err != nil {
		return nil, err
	}

	today := NowFunc().UTC()
	schedules := make([]PlanSchedule, 0, len(plans))
	for _, plan := range plans {
		var latest *Execution
		exec, err := svc.repo.LatestExecution(ctx, plan.ID)
		switch pkgerrors.Cause(err) {
		case nil:
			latest = &exec
		case ErrExecutionNotFound:
		default:
			return nil, err
		}
		schedules = append(schedules, PlanSchedule{
			Plan:            plan,
			Schedule:        Derive(plan, latest, today, svc.policy),
			LatestExecution: latest,
		})
	}
	return schedules, nil
}

// RecordExecution persists an execution and its checklist outcomes, then
// optionally dispatches a notification. The execution insert is authoritative:
// follow-up failures are downgraded to ExecutionResult.Warning and never roll
// it back.
func (svc *Service) RecordExecution(ctx context.Context, ne NewExecution) (ExecutionResult, error) {
	plan, err := svc.repo.GetPlan(ctx, ne.PlanID)
	if err != nil {
		return ExecutionResult{}, err
	}

	now := NowFunc().UTC()
	exec := Execution{
		PlanID:            plan.ID,
		ExecutedAt:        now,
		ExecutedBy:        ne.ExecutedBy,
		NextScheduledDate: NextDueDate(now, plan.MonthlyDay, svc.policy),
		Notes:             ne.Notes,
		CreatedAt:         now,
	}
	exec, err = svc.repo.CreateExecution(ctx, exec)
	if err != nil {
		return ExecutionResult{}, pkgerrors.Wrap(err, "inserting execution")
	}

	result := ExecutionResult{Execution: exec}

	if items := ne.items(exec.ID); len(items) > 0 {
		saved, err := svc.repo.CreateExecutionItems(ctx, items)
		if err != nil {
			// execution already persisted; surface as partial-failure warning
			result.Warning = pkgerrors.Wrap(err, "recording checklist outcomes")
			svc.logger.Warn("execution saved but checklist outcomes failed", err)
		} else {
			result.Execution.Items = saved
		}
	}

	if ne.SendNotification {
		if err := svc.notify(ctx, plan, &result.Execution); err != nil {
			if result.Warning == nil {
				result.Warning = err
			}
			svc.logger.Warn("execution saved but notification failed", err)
		}
	}
	return result, nil
}

func (svc *Service) notify(ctx context.Context, plan Plan, exec *Execution) error {
	var tmpl string
	if settings, err := svc.repo.GetSettings(ctx); err == nil {
		tmpl = settings.MessageTemplate
	}
	message := core.FormatTemplate(tmpl, map[string]string{
		"client_id":           plan.ClientID,
		"domain_id":           plan.DomainID,
		"executed_at":         exec.ExecutedAt.Format("2006-01-02"),
		"next_scheduled_date": exec.NextScheduledDate.Format("2006-01-02"),
		"notes":               exec.Notes,
	})

	if err := svc.notifier.NotifyExecution(ctx, exec.ID, message); err != nil {
		return pkgerrors.Wrap(err, "dispatching execution notification")
	}
	// recorded for later reconciliation; delivery already happened
	if err := svc.repo.SetExecutionNotified(ctx, exec.ID, true); err != nil {
		return pkgerrors.Wrap(err, "flagging execution as notified")
	}
	exec.NotificationSent = true
	return nil
}

func (ne NewExecution) items(executionID string) []ExecutionItem {
	ids := make([]string, 0, len(ne.ItemStatuses))
	for id, status := range ne.ItemStatuses {
		if status != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	items := make([]ExecutionItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, ExecutionItem{
			ExecutionID:     executionID,
			ChecklistItemID: id,
			Status:          ne.ItemStatuses[id],
			Note:            ne.ItemNotes[id],
		})
	}
	return items
}

func (svc *Service) Executions(ctx context.Context, planID string) ([]Execution, error) {
	if _, err := svc.repo.GetPlan(ctx, planID); err != nil {
		return nil, err
	}
	return svc.repo.QueryExecutions(ctx, planID)
}

func (svc *Service) GetExecution(ctx context.Context, id string) (Execution, error) {
	exec, err := svc.repo.GetExecution(ctx, id)
	if err != nil {
		return Execution{}, err
	}
	items, err := svc.repo.QueryExecutionItems(ctx, id)
	if err != nil {
		return Execution{}, err
	}
	exec.Items = items
	return exec, nil
}

func (svc *Service) DeleteExecution(ctx context.Context, id string) error {
	return svc.repo.DeleteExecution(ctx, id)
}

func (svc *Service) ChecklistItems(ctx context.Context) ([]ChecklistItem, error) {
	return svc.repo.QueryChecklistItems(ctx)
}

func (svc *Service) CreateChecklistItem(ctx context.Context, nc NewChecklistItem) (ChecklistItem, error) {
	now := NowFunc().UTC()
	active := true
	item := ChecklistItem{
		Label:     nc.Label,
		Position:  nc.Position,
		IsActive:  &active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateChecklistItem(ctx, item)
}

func (svc *Service) UpdateChecklistItem(ctx context.Context, id string, uc UpdateChecklistItem) (ChecklistItem, error) {
	item, err := svc.repo.GetChecklistItem(ctx, id)
	if err != nil {
		return ChecklistItem{}, err
	}
	if uc.Label != "" {
		item.Label = uc.Label
	}
	if uc.IsActive != nil {
		item.IsActive = uc.IsActive
	}
	item.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateChecklistItem(ctx, item)
}

// ReorderChecklist re-assigns positions following the given id order.
// Historical execution outcomes are unaffected.
func (svc *Service) ReorderChecklist(ctx context.Context, ids []string) error {
	return svc.repo.ReorderChecklistItems(ctx, ids)
}

func (svc *Service) GetSettings(ctx context.Context) (Settings, error) {
	return svc.repo.GetSettings(ctx)
}

func (svc *Service) UpdateSettings(ctx context.Context, us UpdateSettings) (Settings, error) {
	settings, err := svc.repo.GetSettings(ctx)
	if err != nil && pkgerrors.Cause(err) != ErrSettingsNotFound {
		return Settings{}, err
	}
	if us.DefaultMonthlyDay != 0 {
		settings.DefaultMonthlyDay = us.DefaultMonthlyDay
	}
	if us.MessageTemplate != "" {
		settings.MessageTemplate = us.MessageTemplate
	}
	settings.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateSettings(ctx, settings)
}
