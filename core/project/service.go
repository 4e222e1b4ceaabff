package project

import (
	"context"
	"errors"
	"time"

	"github.com/website360/clientpulse-suite-sub003/core"
)

var (
	// errors
	ErrNotFound     = errors.New("project not found")
	ErrTaskNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateProject(ctx context.Context, prj Project) (Project, error)
		GetProject(ctx context.Context, id string) (Project, error)
		// QueryProjects applies AND operation on available QueryFilter fields.
		// Search does a case-insensitive match on Project.Name.
		QueryProjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error)
		UpdateProject(ctx context.Context, prj Project) (Project, error)

		CreateTask(ctx context.Context, task Task) (Task, error)
		GetTask(ctx context.Context, id string) (Task, error)
		// QueryTasks returns a project's tasks ordered by column then position.
		QueryTasks(ctx context.Context, projectID string) ([]Task, error)
		UpdateTask(ctx context.Context, task Task) (Task, error)
		// NextTaskPosition returns the next free position in the column.
		NextTaskPosition(ctx context.Context, projectID string, col Column) (int, error)
		DeleteTask(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewProject) (Project, error) {
	now := time.Now().UTC()
	prj := Project{
		ClientID:    np.ClientID,
		Name:        np.Name,
		Description: np.Description,
		Status:      ProjectActive,
		StartDate:   np.StartDate,
		EndDate:     np.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateProject(ctx, prj)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Project, error) {
	return svc.repo.GetProject(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error) {
	return svc.repo.QueryProjects(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, up UpdateProject) (Project, error) {
	prj, err := svc.repo.GetProject(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if up.Name != "" {
		prj.Name = up.Name
	}
	if up.Description != "" {
		prj.Description = up.Description
	}
	if up.Status != "" {
		prj.Status = up.Status
	}
	if !up.StartDate.IsZero() {
		prj.StartDate = up.StartDate
	}
	if !up.EndDate.IsZero() {
		prj.EndDate = up.EndDate
	}
	prj.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProject(ctx, prj)
}

func (svc *Service) AddTask(ctx context.Context, nt NewTask) (Task, error) {
	if _, err := svc.repo.GetProject(ctx, nt.ProjectID); err != nil {
		return Task{}, err
	}

	col := nt.Column
	if col == "" {
		col = ColumnBacklog
	}
	pos, err := svc.repo.NextTaskPosition(ctx, nt.ProjectID, col)
	if err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	task := Task{
		ProjectID:   nt.ProjectID,
		Title:       nt.Title,
		Description: nt.Description,
		Column:      col,
		Position:    pos,
		DueDate:     nt.DueDate,
		AssigneeID:  nt.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTask(ctx, task)
}

func (svc *Service) Tasks(ctx context.Context, projectID string) ([]Task, error) {
	if _, err := svc.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryTasks(ctx, projectID)
}

// Move places a task in a column at a position. Positions of other cards are
// not re-packed; ordering ties resolve by update time.
func (svc *Service) Move(ctx context.Context, taskID string, mt MoveTask) (Task, error) {
	task, err := svc.repo.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	task.Column = mt.Column
	task.Position = mt.Position
	task.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTask(ctx, task)
}

func (svc *Service) RemoveTask(ctx context.Context, id string) error {
	return svc.repo.DeleteTask(ctx, id)
}
