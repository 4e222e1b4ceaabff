package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
)

type maintenanceRepository struct {
	db *sqlx.DB
}

var _ maintenance.Repository = (*maintenanceRepository)(nil) // interface compliance check

func NewMaintenanceRepository(db *sqlx.DB) *maintenanceRepository {
	return &maintenanceRepository{db: db}
}

type planRow struct {
	ID         string      `db:"id"`
	ClientID   string      `db:"client_id"`
	DomainID   null.String `db:"domain_id"`
	MonthlyDay int         `db:"monthly_day"`
	IsActive   null.Bool   `db:"is_active"`
	StartDate  null.Time   `db:"start_date"`
	Notes      null.String `db:"notes"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func (r planRow) toPlan() maintenance.Plan {
	return maintenance.Plan{
		ID:         r.ID,
		ClientID:   r.ClientID,
		DomainID:   r.DomainID.String,
		MonthlyDay: r.MonthlyDay,
		IsActive:   r.IsActive.Ptr(),
		StartDate:  r.StartDate.Time,
		Notes:      r.Notes.String,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toPlanRow(p maintenance.Plan) planRow {
	return planRow{
		ID:         p.ID,
		ClientID:   p.ClientID,
		DomainID:   null.NewString(p.DomainID, p.DomainID != ""),
		MonthlyDay: p.MonthlyDay,
		IsActive:   null.BoolFromPtr(p.IsActive),
		StartDate:  null.NewTime(p.StartDate, !p.StartDate.IsZero()),
		Notes:      null.NewString(p.Notes, p.Notes != ""),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type executionRow struct {
	ID                string      `db:"id"`
	PlanID            string      `db:"plan_id"`
	ExecutedAt        time.Time   `db:"executed_at"`
	ExecutedBy        null.String `db:"executed_by"`
	NextScheduledDate null.Time   `db:"next_scheduled_date"`
	Notes             null.String `db:"notes"`
	NotificationSent  bool        `db:"notification_sent"`
	CreatedAt         time.Time   `db:"created_at"`
}

func (r executionRow) toExecution() maintenance.Execution {
	return maintenance.Execution{
		ID:                r.ID,
		PlanID:            r.PlanID,
		ExecutedAt:        r.ExecutedAt,
		ExecutedBy:        r.ExecutedBy.String,
		NextScheduledDate: r.NextScheduledDate.Time,
		Notes:             r.Notes.String,
		NotificationSent:  r.NotificationSent,
		CreatedAt:         r.CreatedAt,
	}
}

type checklistItemRow struct {
	ID        string    `db:"id"`
	Label     string    `db:"label"`
	Position  int       `db:"position"`
	IsActive  null.Bool `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r checklistItemRow) toItem() maintenance.ChecklistItem {
	return maintenance.ChecklistItem{
		ID:        r.ID,
		Label:     r.Label,
		Position:  r.Position,
		IsActive:  r.IsActive.Ptr(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type executionItemRow struct {
	ID              string      `db:"id"`
	ExecutionID     string      `db:"execution_id"`
	ChecklistItemID string      `db:"checklist_item_id"`
	Status          string      `db:"status"`
	Note            null.String `db:"note"`
}

func (r executionItemRow) toItem() maintenance.ExecutionItem {
	return maintenance.ExecutionItem{
		ID:              r.ID,
		ExecutionID:     r.ExecutionID,
		ChecklistItemID: r.ChecklistItemID,
		Status:          maintenance.ItemStatus(r.Status),
		Note:            r.Note.String,
	}
}

type settingsRow struct {
	ID                string      `db:"id"`
	DefaultMonthlyDay int         `db:"default_monthly_day"`
	MessageTemplate   null.String `db:"message_template"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

// trapNoRowsErr maps psql "no rows" err to the given sentinel
func trapNoRowsErr(err, sentinel error, msg string) error {
	if err == sql.ErrNoRows {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

func (repo maintenanceRepository) CheckPlanUniqueness(ctx context.Context, clientID, domainID string, excludedPlans ...maintenance.Plan) error {
	query := `SELECT EXISTS (SELECT 1 FROM client_maintenance_plan WHERE client_id = $1 AND domain_id IS NULL`
	args := []interface{}{clientID}
	if domainID != "" {
		query = `SELECT EXISTS (SELECT 1 FROM client_maintenance_plan WHERE client_id = $1 AND domain_id = $2`
		args = append(args, domainID)
	}
	if len(excludedPlans) > 0 {
		ids := make([]string, 0, len(excludedPlans))
		for _, p := range excludedPlans {
			ids = append(ids, p.ID)
		}
		query += fmt.Sprintf(" AND NOT (id = ANY($%d))", len(args)+1)
		args = append(args, pq.StringArray(ids))
	}
	query += ")"

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking plan uniqueness")
	}
	if exists {
		return maintenance.ErrPlanExists
	}
	return nil
}

func (repo maintenanceRepository) CreatePlan(ctx context.Context, plan maintenance.Plan) (maintenance.Plan, error) {
	plan.ID = uuid.New().String()
	row := toPlanRow(plan)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO client_maintenance_plan (id, client_id, domain_id, monthly_day, is_active, start_date, notes, created_at, updated_at)
		VALUES (:id, :client_id, :domain_id, :monthly_day, :is_active, :start_date, :notes, :created_at, :updated_at)`, row)
	if err != nil {
		return maintenance.Plan{}, errors.Wrap(err, "inserting plan")
	}
	return row.toPlan(), nil
}

func (repo maintenanceRepository) GetPlan(ctx context.Context, id string) (maintenance.Plan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return maintenance.Plan{}, maintenance.ErrPlanNotFound
	}
	var row planRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM client_maintenance_plan WHERE id = $1`, id); err != nil {
		return maintenance.Plan{}, trapNoRowsErr(err, maintenance.ErrPlanNotFound, "finding plan by ID")
	}
	return row.toPlan(), nil
}

func (repo maintenanceRepository) QueryPlans(ctx context.Context, filter *maintenance.QueryFilter, ordering []core.DBOrdering) ([]maintenance.Plan, error) {
	query := `SELECT * FROM client_maintenance_plan`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter != nil {
		if filter.ClientID != "" {
			conds = append(conds, "client_id = "+arg(filter.ClientID))
		}
		if filter.DomainID != "" {
			conds = append(conds, "domain_id = "+arg(filter.DomainID))
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = "+arg(*filter.IsActive))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var rows []planRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying plans")
	}
	plans := make([]maintenance.Plan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, row.toPlan())
	}
	return plans, nil
}

func (repo maintenanceRepository) UpdatePlan(ctx context.Context, plan maintenance.Plan) (maintenance.Plan, error) {
	row := toPlanRow(plan)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE client_maintenance_plan
		SET monthly_day = :monthly_day, is_active = :is_active, start_date = :start_date, notes = :notes, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return maintenance.Plan{}, errors.Wrap(err, "updating plan")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return maintenance.Plan{}, maintenance.ErrPlanNotFound
	}
	return row.toPlan(), nil
}

func (repo maintenanceRepository) CreateExecution(ctx context.Context, exec maintenance.Execution) (maintenance.Execution, error) {
	exec.ID = uuid.New().String()
	row := executionRow{
		ID:                exec.ID,
		PlanID:            exec.PlanID,
		ExecutedAt:        exec.ExecutedAt,
		ExecutedBy:        null.NewString(exec.ExecutedBy, exec.ExecutedBy != ""),
		NextScheduledDate: null.NewTime(exec.NextScheduledDate, !exec.NextScheduledDate.IsZero()),
		Notes:             null.NewString(exec.Notes, exec.Notes != ""),
		NotificationSent:  exec.NotificationSent,
		CreatedAt:         exec.CreatedAt,
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO maintenance_execution (id, plan_id, executed_at, executed_by, next_scheduled_date, notes, notification_sent, created_at)
		VALUES (:id, :plan_id, :executed_at, :executed_by, :next_scheduled_date, :notes, :notification_sent, :created_at)`, row)
	if err != nil {
		return maintenance.Execution{}, errors.Wrap(err, "inserting execution")
	}
	return exec, nil
}

func (repo maintenanceRepository) CreateExecutionItems(ctx context.Context, items []maintenance.ExecutionItem) ([]maintenance.ExecutionItem, error) {
	// sequential independent inserts; a mid-sequence failure leaves prior rows
	for i := range items {
		items[i].ID = uuid.New().String()
		row := executionItemRow{
			ID:              items[i].ID,
			ExecutionID:     items[i].ExecutionID,
			ChecklistItemID: items[i].ChecklistItemID,
			Status:          string(items[i].Status),
			Note:            null.NewString(items[i].Note, items[i].Note != ""),
		}
		_, err := repo.db.NamedExecContext(ctx, `
			INSERT INTO maintenance_execution_item (id, execution_id, checklist_item_id, status, note)
			VALUES (:id, :execution_id, :checklist_item_id, :status, :note)`, row)
		if err != nil {
			return nil, errors.Wrap(err, "inserting execution item")
		}
	}
	return items, nil
}

func (repo maintenanceRepository) LatestExecution(ctx context.Context, planID string) (maintenance.Execution, error) {
	var row executionRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM maintenance_execution WHERE plan_id = $1 ORDER BY executed_at DESC LIMIT 1`, planID)
	if err != nil {
		return maintenance.Execution{}, trapNoRowsErr(err, maintenance.ErrExecutionNotFound, "finding latest execution")
	}
	return row.toExecution(), nil
}

func (repo maintenanceRepository) QueryExecutions(ctx context.Context, planID string) ([]maintenance.Execution, error) {
	var rows []executionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM maintenance_execution WHERE plan_id = $1 ORDER BY executed_at DESC`, planID)
	if err != nil {
		return nil, errors.Wrap(err, "querying executions")
	}
	execs := make([]maintenance.Execution, 0, len(rows))
	for _, row := range rows {
		execs = append(execs, row.toExecution())
	}
	return execs, nil
}

func (repo maintenanceRepository) GetExecution(ctx context.Context, id string) (maintenance.Execution, error) {
	if _, err := uuid.Parse(id); err != nil {
		return maintenance.Execution{}, maintenance.ErrExecutionNotFound
	}
	var row executionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM maintenance_execution WHERE id = $1`, id); err != nil {
		return maintenance.Execution{}, trapNoRowsErr(err, maintenance.ErrExecutionNotFound, "finding execution by ID")
	}
	return row.toExecution(), nil
}

func (repo maintenanceRepository) QueryExecutionItems(ctx context.Context, executionID string) ([]maintenance.ExecutionItem, error) {
	var rows []executionItemRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT ei.* FROM maintenance_execution_item ei
		JOIN maintenance_checklist_item ci ON ci.id = ei.checklist_item_id
		WHERE ei.execution_id = $1 ORDER BY ci.position`, executionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying execution items")
	}
	items := make([]maintenance.ExecutionItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

func (repo maintenanceRepository) DeleteExecution(ctx context.Context, id string) error {
	// checklist outcomes cascade at the schema level
	res, err := repo.db.ExecContext(ctx, `DELETE FROM maintenance_execution WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting execution")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return maintenance.ErrExecutionNotFound
	}
	return nil
}

func (repo maintenanceRepository) SetExecutionNotified(ctx context.Context, id string, sent bool) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE maintenance_execution SET notification_sent = $2 WHERE id = $1`, id, sent)
	return errors.Wrap(err, "flagging execution notification")
}

func (repo maintenanceRepository) QueryChecklistItems(ctx context.Context) ([]maintenance.ChecklistItem, error) {
	var rows []checklistItemRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM maintenance_checklist_item ORDER BY position, created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying checklist items")
	}
	items := make([]maintenance.ChecklistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

func (repo maintenanceRepository) GetChecklistItem(ctx context.Context, id string) (maintenance.ChecklistItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return maintenance.ChecklistItem{}, maintenance.ErrChecklistItemNotFound
	}
	var row checklistItemRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM maintenance_checklist_item WHERE id = $1`, id); err != nil {
		return maintenance.ChecklistItem{}, trapNoRowsErr(err, maintenance.ErrChecklistItemNotFound, "finding checklist item")
	}
	return row.toItem(), nil
}

func (repo maintenanceRepository) CreateChecklistItem(ctx context.Context, item maintenance.ChecklistItem) (maintenance.ChecklistItem, error) {
	item.ID = uuid.New().String()
	row := checklistItemRow{
		ID:        item.ID,
		Label:     item.Label,
		Position:  item.Position,
		IsActive:  null.BoolFromPtr(item.IsActive),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO maintenance_checklist_item (id, label, position, is_active, created_at, updated_at)
		VALUES (:id, :label, :position, :is_active, :created_at, :updated_at)`, row)
	if err != nil {
		return maintenance.ChecklistItem{}, errors.Wrap(err, "inserting checklist item")
	}
	return item, nil
}

func (repo maintenanceRepository) UpdateChecklistItem(ctx context.Context, item maintenance.ChecklistItem) (maintenance.ChecklistItem, error) {
	row := checklistItemRow{
		ID:        item.ID,
		Label:     item.Label,
		Position:  item.Position,
		IsActive:  null.BoolFromPtr(item.IsActive),
		UpdatedAt: item.UpdatedAt,
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE maintenance_checklist_item
		SET label = :label, position = :position, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return maintenance.ChecklistItem{}, errors.Wrap(err, "updating checklist item")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return maintenance.ChecklistItem{}, maintenance.ErrChecklistItemNotFound
	}
	return item, nil
}

func (repo maintenanceRepository) ReorderChecklistItems(ctx context.Context, ids []string) error {
	for pos, id := range ids {
		_, err := repo.db.ExecContext(ctx,
			`UPDATE maintenance_checklist_item SET position = $2, updated_at = now() WHERE id = $1`, id, pos)
		if err != nil {
			return errors.Wrap(err, "reordering checklist items")
		}
	}
	return nil
}

func (repo maintenanceRepository) GetSettings(ctx context.Context) (maintenance.Settings, error) {
	var row settingsRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM maintenance_settings LIMIT 1`); err != nil {
		return maintenance.Settings{}, trapNoRowsErr(err, maintenance.ErrSettingsNotFound, "finding settings")
	}
	return maintenance.Settings{
		ID:                row.ID,
		DefaultMonthlyDay: row.DefaultMonthlyDay,
		MessageTemplate:   row.MessageTemplate.String,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

func (repo maintenanceRepository) UpdateSettings(ctx context.Context, settings maintenance.Settings) (maintenance.Settings, error) {
	if settings.ID == "" {
		settings.ID = uuid.New().String()
		if settings.DefaultMonthlyDay == 0 {
			settings.DefaultMonthlyDay = 1
		}
		_, err := repo.db.ExecContext(ctx, `
			INSERT INTO maintenance_settings (id, default_monthly_day, message_template, updated_at)
			VALUES ($1, $2, $3, $4)`,
			settings.ID, settings.DefaultMonthlyDay,
			null.NewString(settings.MessageTemplate, settings.MessageTemplate != ""), settings.UpdatedAt)
		if err != nil {
			return maintenance.Settings{}, errors.Wrap(err, "inserting settings")
		}
		return settings, nil
	}

	_, err := repo.db.ExecContext(ctx, `
		UPDATE maintenance_settings SET default_monthly_day = $2, message_template = $3, updated_at = $4 WHERE id = $1`,
		settings.ID, settings.DefaultMonthlyDay,
		null.NewString(settings.MessageTemplate, settings.MessageTemplate != ""), settings.UpdatedAt)
	if err != nil {
		return maintenance.Settings{}, errors.Wrap(err, "updating settings")
	}
	return settings, nil
}
