package project

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/website360/clientpulse-suite-sub003/core"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// Column is a kanban board column.
type Column string

const (
	ColumnBacklog    Column = "backlog"
	ColumnInProgress Column = "in_progress"
	ColumnReview     Column = "review"
	ColumnDone       Column = "done"
)

func (c Column) Valid() bool {
	switch c {
	case ColumnBacklog, ColumnInProgress, ColumnReview, ColumnDone:
		return true
	}
	return false
}

// Project tracks one engagement for a client. Start/end dates drive the
// gantt view; tasks drive the kanban view.
type Project struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	StartDate   time.Time     `json:"start_date,omitempty"`
	EndDate     time.Time     `json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"` // UTC
	UpdatedAt   time.Time     `json:"updated_at"` // UTC
}

// Task is one kanban card. Position orders cards within a column.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Column      Column    `json:"column"`
	Position    int       `json:"position"`
	DueDate     time.Time `json:"due_date,omitempty"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	ClientID    string    `json:"client_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.ClientID = core.CleanString(np.ClientID)
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	if err := validate.Struct(np); err != nil {
		return err
	}
	if !np.EndDate.IsZero() && !np.StartDate.IsZero() && np.EndDate.Before(np.StartDate) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date cannot precede start date"})
	}
	return nil
}

// UpdateProject defines what may be modified on an existing Project.
type UpdateProject struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
}

func (up *UpdateProject) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Description = core.CleanString(up.Description)
	if err := validate.Struct(up); err != nil {
		return err
	}
	if up.Status != "" && !up.Status.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid project status"})
	}
	return nil
}

// NewTask contains information needed to add a task to a project board.
type NewTask struct {
	ProjectID   string    `json:"project_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Column      Column    `json:"column"`
	DueDate     time.Time `json:"due_date"`
	AssigneeID  string    `json:"assignee_id"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.ProjectID = core.CleanString(nt.ProjectID)
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	if nt.Column != "" && !nt.Column.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "column", Error: "invalid board column"})
	}
	return nil
}

// MoveTask moves a task to a column/position on the board.
type MoveTask struct {
	Column   Column `json:"column" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

func (mt *MoveTask) Validate(validate *validator.Validate) error {
	if err := validate.Struct(mt); err != nil {
		return err
	}
	if !mt.Column.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "column", Error: "invalid board column"})
	}
	return nil
}

// QueryFilter filters projects.
type QueryFilter struct {
	ClientID string        `query:"client_id"`
	Status   ProjectStatus `query:"status"`
	Search   string        `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClientID == "" && qf.Status == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.ClientID = core.CleanString(qf.ClientID)
	qf.Search = core.CleanString(qf.Search)
}
