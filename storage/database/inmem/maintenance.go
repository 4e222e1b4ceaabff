package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
)

type maintenanceRepository struct {
	db *DB
}

var _ maintenance.Repository = (*maintenanceRepository)(nil)

func NewMaintenanceRepository(db *DB) *maintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (repo *maintenanceRepository) CheckPlanUniqueness(_ context.Context, clientID, domainID string, excludedPlans ...maintenance.Plan) error {
	repo.db.plan.mutex.RLock()
	defer repo.db.plan.mutex.RUnlock()

	for _, plan := range repo.db.plan.all() {
		if plan.ClientID != clientID || plan.DomainID != domainID {
			continue
		}
		excluded := false
		for _, excl := range excludedPlans {
			if excl.ID == plan.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return maintenance.ErrPlanExists
		}
	}
	return nil
}

func (repo *maintenanceRepository) CreatePlan(_ context.Context, plan maintenance.Plan) (maintenance.Plan, error) {
	repo.db.plan.mutex.Lock()
	defer repo.db.plan.mutex.Unlock()

	plan.ID = uuid.New().String()
	repo.db.plan.rows[plan.ID] = &plan
	return plan, nil
}

func (repo *maintenanceRepository) GetPlan(_ context.Context, id string) (maintenance.Plan, error) {
	repo.db.plan.mutex.RLock()
	defer repo.db.plan.mutex.RUnlock()

	if plan, ok := repo.db.plan.rows[id]; ok {
		return *plan, nil
	}
	return maintenance.Plan{}, maintenance.ErrPlanNotFound
}

func (repo *maintenanceRepository) QueryPlans(_ context.Context, filter *maintenance.QueryFilter, _ []core.DBOrdering) ([]maintenance.Plan, error) {
	repo.db.plan.mutex.RLock()
	defer repo.db.plan.mutex.RUnlock()

	var plans []maintenance.Plan
	for _, plan := range repo.db.plan.all() {
		if filter != nil {
			if filter.ClientID != "" && plan.ClientID != filter.ClientID {
				continue
			}
			if filter.DomainID != "" && plan.DomainID != filter.DomainID {
				continue
			}
			if filter.IsActive != nil && (plan.IsActive == nil || *plan.IsActive != *filter.IsActive) {
				continue
			}
		}
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
	return plans, nil
}

func (repo *maintenanceRepository) UpdatePlan(_ context.Context, plan maintenance.Plan) (maintenance.Plan, error) {
	repo.db.plan.mutex.Lock()
	defer repo.db.plan.mutex.Unlock()

	if _, ok := repo.db.plan.rows[plan.ID]; !ok {
		return maintenance.Plan{}, maintenance.ErrPlanNotFound
	}
	repo.db.plan.rows[plan.ID] = &plan
	return plan, nil
}

func (repo *maintenanceRepository) CreateExecution(_ context.Context, exec maintenance.Execution) (maintenance.Execution, error) {
	repo.db.execution.mutex.Lock()
	defer repo.db.execution.mutex.Unlock()

	exec.ID = uuid.New().String()
	repo.db.execution.rows[exec.ID] = &exec
	return exec, nil
}

func (repo *maintenanceRepository) CreateExecutionItems(_ context.Context, items []maintenance.ExecutionItem) ([]maintenance.ExecutionItem, error) {
	repo.db.execItem.mutex.Lock()
	defer repo.db.execItem.mutex.Unlock()

	for i := range items {
		items[i].ID = uuid.New().String()
		item := items[i]
		repo.db.execItem.rows[item.ID] = &item
	}
	return items, nil
}

func (repo *maintenanceRepository) LatestExecution(_ context.Context, planID string) (maintenance.Execution, error) {
	repo.db.execution.mutex.RLock()
	defer repo.db.execution.mutex.RUnlock()

	var latest *maintenance.Execution
	for _, exec := range repo.db.execution.all() {
		exec := exec
		if exec.PlanID != planID {
			continue
		}
		if latest == nil || exec.ExecutedAt.After(latest.ExecutedAt) {
			latest = &exec
		}
	}
	if latest == nil {
		return maintenance.Execution{}, maintenance.ErrExecutionNotFound
	}
	return *latest, nil
}

func (repo *maintenanceRepository) QueryExecutions(_ context.Context, planID string) ([]maintenance.Execution, error) {
	repo.db.execution.mutex.RLock()
	defer repo.db.execution.mutex.RUnlock()

	var execs []maintenance.Execution
	for _, exec := range repo.db.execution.all() {
		if exec.PlanID == planID {
			execs = append(execs, exec)
		}
	}
	sort.Slice(execs, func(i, j int) bool { return execs[i].ExecutedAt.After(execs[j].ExecutedAt) })
	return execs, nil
}

func (repo *maintenanceRepository) GetExecution(_ context.Context, id string) (maintenance.Execution, error) {
	repo.db.execution.mutex.RLock()
	defer repo.db.execution.mutex.RUnlock()

	if exec, ok := repo.db.execution.rows[id]; ok {
		return *exec, nil
	}
	return maintenance.Execution{}, maintenance.ErrExecutionNotFound
}

func (repo *maintenanceRepository) QueryExecutionItems(_ context.Context, executionID string) ([]maintenance.ExecutionItem, error) {
	repo.db.execItem.mutex.RLock()
	defer repo.db.execItem.mutex.RUnlock()

	var items []maintenance.ExecutionItem
	for _, item := range repo.db.execItem.all() {
		if item.ExecutionID == executionID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ChecklistItemID < items[j].ChecklistItemID })
	return items, nil
}

func (repo *maintenanceRepository) DeleteExecution(_ context.Context, id string) error {
	repo.db.execution.mutex.Lock()
	defer repo.db.execution.mutex.Unlock()

	if _, ok := repo.db.execution.rows[id]; !ok {
		return maintenance.ErrExecutionNotFound
	}
	delete(repo.db.execution.rows, id)

	repo.db.execItem.mutex.Lock()
	defer repo.db.execItem.mutex.Unlock()
	for itemID, item := range repo.db.execItem.rows {
		if item.ExecutionID == id {
			delete(repo.db.execItem.rows, itemID)
		}
	}
	return nil
}

func (repo *maintenanceRepository) SetExecutionNotified(_ context.Context, id string, sent bool) error {
	repo.db.execution.mutex.Lock()
	defer repo.db.execution.mutex.Unlock()

	exec, ok := repo.db.execution.rows[id]
	if !ok {
		return maintenance.ErrExecutionNotFound
	}
	exec.NotificationSent = sent
	return nil
}

func (repo *maintenanceRepository) QueryChecklistItems(_ context.Context) ([]maintenance.ChecklistItem, error) {
	repo.db.checklist.mutex.RLock()
	defer repo.db.checklist.mutex.RUnlock()

	items := repo.db.checklist.all()
	sort.Slice(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (repo *maintenanceRepository) GetChecklistItem(_ context.Context, id string) (maintenance.ChecklistItem, error) {
	repo.db.checklist.mutex.RLock()
	defer repo.db.checklist.mutex.RUnlock()

	if item, ok := repo.db.checklist.rows[id]; ok {
		return *item, nil
	}
	return maintenance.ChecklistItem{}, maintenance.ErrChecklistItemNotFound
}

func (repo *maintenanceRepository) CreateChecklistItem(_ context.Context, item maintenance.ChecklistItem) (maintenance.ChecklistItem, error) {
	repo.db.checklist.mutex.Lock()
	defer repo.db.checklist.mutex.Unlock()

	item.ID = uuid.New().String()
	repo.db.checklist.rows[item.ID] = &item
	return item, nil
}

func (repo *maintenanceRepository) UpdateChecklistItem(_ context.Context, item maintenance.ChecklistItem) (maintenance.ChecklistItem, error) {
	repo.db.checklist.mutex.Lock()
	defer repo.db.checklist.mutex.Unlock()

	if _, ok := repo.db.checklist.rows[item.ID]; !ok {
		return maintenance.ChecklistItem{}, maintenance.ErrChecklistItemNotFound
	}
	repo.db.checklist.rows[item.ID] = &item
	return item, nil
}

func (repo *maintenanceRepository) ReorderChecklistItems(_ context.Context, ids []string) error {
	repo.db.checklist.mutex.Lock()
	defer repo.db.checklist.mutex.Unlock()

	for pos, id := range ids {
		if item, ok := repo.db.checklist.rows[id]; ok {
			item.Position = pos
		}
	}
	return nil
}

func (repo *maintenanceRepository) GetSettings(_ context.Context) (maintenance.Settings, error) {
	repo.db.settings.mutex.RLock()
	defer repo.db.settings.mutex.RUnlock()

	for _, settings := range repo.db.settings.rows {
		return *settings, nil
	}
	return maintenance.Settings{}, maintenance.ErrSettingsNotFound
}

func (repo *maintenanceRepository) UpdateSettings(_ context.Context, settings maintenance.Settings) (maintenance.Settings, error) {
	repo.db.settings.mutex.Lock()
	defer repo.db.settings.mutex.Unlock()

	if settings.ID == "" {
		settings.ID = uuid.New().String()
		if settings.DefaultMonthlyDay == 0 {
			settings.DefaultMonthlyDay = 1
		}
	}
	repo.db.settings.rows[settings.ID] = &settings
	return settings, nil
}
