package maintenance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/website360/clientpulse-suite-sub003/core"
)

// ItemStatus is the recorded outcome of one checklist item during an execution.
type ItemStatus string

const (
	ItemDone      ItemStatus = "done"
	ItemNotNeeded ItemStatus = "not_needed"
	ItemSkipped   ItemStatus = "skipped"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemDone, ItemNotNeeded, ItemSkipped:
		return true
	}
	return false
}

// Plan is a recurring monthly maintenance obligation for a client,
// optionally scoped to a single domain.
type Plan struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	DomainID   string    `json:"domain_id,omitempty"` // empty: plan covers the whole client
	MonthlyDay int       `json:"monthly_day"`
	IsActive   *bool     `json:"is_active"`
	StartDate  time.Time `json:"start_date,omitempty"` // zero: starts immediately
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (p Plan) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// Execution records that a plan's maintenance was performed.
// Immutable once created, except for hard deletion (cascading to items).
type Execution struct {
	ID                string          `json:"id"`
	PlanID            string          `json:"plan_id"`
	ExecutedAt        time.Time       `json:"executed_at"` // UTC
	ExecutedBy        string          `json:"executed_by"`
	NextScheduledDate time.Time       `json:"next_scheduled_date"` // fixed at creation time
	Notes             string          `json:"notes,omitempty"`
	NotificationSent  bool            `json:"notification_sent"`
	CreatedAt         time.Time       `json:"created_at"` // UTC
	Items             []ExecutionItem `json:"items,omitempty"`
}

// ChecklistItem is a global, ordered maintenance task definition.
// Definitions are mutable and reorderable independent of execution history.
type ChecklistItem struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Position  int       `json:"position"`
	IsActive  *bool     `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// ExecutionItem is the recorded outcome of one checklist item at execution time.
// It keeps its recorded status regardless of later definition changes.
type ExecutionItem struct {
	ID              string     `json:"id"`
	ExecutionID     string     `json:"execution_id"`
	ChecklistItemID string     `json:"checklist_item_id"`
	Status          ItemStatus `json:"status"`
	Note            string     `json:"note,omitempty"`
}

// Settings is the single global maintenance configuration row.
type Settings struct {
	ID                string    `json:"id"`
	DefaultMonthlyDay int       `json:"default_monthly_day"`
	MessageTemplate   string    `json:"message_template"` // `{token}` placeholders, literal substitution
	UpdatedAt         time.Time `json:"updated_at"`       // UTC
}

// NewPlan contains information needed to create a new Plan.
type NewPlan struct {
	ClientID   string    `json:"client_id" validate:"required"`
	DomainID   string    `json:"domain_id"`
	MonthlyDay int       `json:"monthly_day" validate:"omitempty,dayofmonth"`
	StartDate  time.Time `json:"start_date"`
	Notes      string    `json:"notes"`
}

func (np *NewPlan) Validate(validate *validator.Validate) error {
	np.ClientID = core.CleanString(np.ClientID)
	np.DomainID = core.CleanString(np.DomainID)
	np.Notes = core.CleanString(np.Notes)
	return validate.Struct(np)
}

// UpdatePlan defines what information may be provided to modify an existing Plan.
type UpdatePlan struct {
	MonthlyDay int       `json:"monthly_day" validate:"omitempty,dayofmonth"`
	IsActive   *bool     `json:"is_active"`
	StartDate  time.Time `json:"start_date"`
	Notes      string    `json:"notes"`
}

func (up *UpdatePlan) Validate(validate *validator.Validate) error {
	up.Notes = core.CleanString(up.Notes)
	return validate.Struct(up)
}

// NewExecution contains the information needed to record a performed maintenance.
// Checklist items left untouched by the user are absent from ItemStatuses and
// are not recorded.
type NewExecution struct {
	PlanID           string                `json:"plan_id" validate:"required"`
	ExecutedBy       string                `json:"executed_by"`
	Notes            string                `json:"notes"`
	ItemStatuses     map[string]ItemStatus `json:"item_statuses"`
	ItemNotes        map[string]string     `json:"item_notes"`
	SendNotification bool                  `json:"send_notification"`
}

func (ne *NewExecution) Validate(validate *validator.Validate) error {
	ne.PlanID = core.CleanString(ne.PlanID)
	ne.Notes = core.CleanString(ne.Notes)
	if err := validate.Struct(ne); err != nil {
		return err
	}
	for id, status := range ne.ItemStatuses {
		if status == "" {
			delete(ne.ItemStatuses, id) // untouched items are not recorded
			continue
		}
		if !status.Valid() {
			return core.NewValidationError(nil, core.FieldError{
				Field: "item_statuses",
				Error: "invalid status " + string(status) + " for checklist item " + id,
			})
		}
	}
	return nil
}

// NewChecklistItem contains information needed to create a checklist item definition.
type NewChecklistItem struct {
	Label    string `json:"label" validate:"required"`
	Position int    `json:"position"`
}

func (nc *NewChecklistItem) Validate(validate *validator.Validate) error {
	nc.Label = core.CleanString(nc.Label)
	return validate.Struct(nc)
}

// UpdateChecklistItem defines what may be modified on a checklist item definition.
type UpdateChecklistItem struct {
	Label    string `json:"label"`
	IsActive *bool  `json:"is_active"`
}

func (uc *UpdateChecklistItem) Validate(validate *validator.Validate) error {
	uc.Label = core.CleanString(uc.Label)
	return validate.Struct(uc)
}

// UpdateSettings defines what may be modified on the global maintenance settings.
type UpdateSettings struct {
	DefaultMonthlyDay int    `json:"default_monthly_day" validate:"omitempty,dayofmonth"`
	MessageTemplate   string `json:"message_template"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// QueryFilter filters maintenance plans.
type QueryFilter struct {
	ClientID string `query:"client_id"`
	DomainID string `query:"domain_id"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClientID == "" && qf.DomainID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.ClientID = core.CleanString(qf.ClientID)
	qf.DomainID = core.CleanString(qf.DomainID)
}
