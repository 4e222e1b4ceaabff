package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/project"
)

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

type projectRow struct {
	ID          string      `db:"id"`
	ClientID    string      `db:"client_id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	Status      string      `db:"status"`
	StartDate   null.Time   `db:"start_date"`
	EndDate     null.Time   `db:"end_date"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r projectRow) toProject() project.Project {
	return project.Project{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Name:        r.Name,
		Description: r.Description.String,
		Status:      project.ProjectStatus(r.Status),
		StartDate:   r.StartDate.Time,
		EndDate:     r.EndDate.Time,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toProjectRow(prj project.Project) projectRow {
	return projectRow{
		ID:          prj.ID,
		ClientID:    prj.ClientID,
		Name:        prj.Name,
		Description: null.NewString(prj.Description, prj.Description != ""),
		Status:      string(prj.Status),
		StartDate:   null.NewTime(prj.StartDate, !prj.StartDate.IsZero()),
		EndDate:     null.NewTime(prj.EndDate, !prj.EndDate.IsZero()),
		CreatedAt:   prj.CreatedAt,
		UpdatedAt:   prj.UpdatedAt,
	}
}

type taskRow struct {
	ID          string      `db:"id"`
	ProjectID   string      `db:"project_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	BoardColumn string      `db:"board_column"`
	Position    int         `db:"position"`
	DueDate     null.Time   `db:"due_date"`
	AssigneeID  null.String `db:"assignee_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r taskRow) toTask() project.Task {
	return project.Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description.String,
		Column:      project.Column(r.BoardColumn),
		Position:    r.Position,
		DueDate:     r.DueDate.Time,
		AssigneeID:  r.AssigneeID.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toTaskRow(task project.Task) taskRow {
	return taskRow{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: null.NewString(task.Description, task.Description != ""),
		BoardColumn: string(task.Column),
		Position:    task.Position,
		DueDate:     null.NewTime(task.DueDate, !task.DueDate.IsZero()),
		AssigneeID:  null.NewString(task.AssigneeID, task.AssigneeID != ""),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (repo projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	prj.ID = uuid.New().String()
	row := toProjectRow(prj)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO project (id, client_id, name, description, status, start_date, end_date, created_at, updated_at)
		VALUES (:id, :client_id, :name, :description, :status, :start_date, :end_date, :created_at, :updated_at)`, row)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return prj, nil
}

func (repo projectRepository) GetProject(ctx context.Context, id string) (project.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return project.Project{}, project.ErrNotFound
	}
	var row projectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM project WHERE id = $1`, id); err != nil {
		return project.Project{}, trapNoRowsErr(err, project.ErrNotFound, "finding project by ID")
	}
	return row.toProject(), nil
}

func (repo projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter, ordering []core.DBOrdering) ([]project.Project, error) {
	query := `SELECT * FROM project`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter != nil && !filter.IsEmpty() {
		filter.Clean()
		if filter.ClientID != "" {
			conds = append(conds, "client_id = "+arg(filter.ClientID))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(string(filter.Status)))
		}
		if filter.Search != "" {
			conds = append(conds, "name ILIKE "+arg("%"+filter.Search+"%"))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	projects := make([]project.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.toProject())
	}
	return projects, nil
}

func (repo projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	row := toProjectRow(prj)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE project
		SET name = :name, description = :description, status = :status,
		    start_date = :start_date, end_date = :end_date, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "updating project")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return project.Project{}, project.ErrNotFound
	}
	return prj, nil
}

func (repo projectRepository) CreateTask(ctx context.Context, task project.Task) (project.Task, error) {
	task.ID = uuid.New().String()
	row := toTaskRow(task)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO project_task (id, project_id, title, description, board_column, position, due_date, assignee_id, created_at, updated_at)
		VALUES (:id, :project_id, :title, :description, :board_column, :position, :due_date, :assignee_id, :created_at, :updated_at)`, row)
	if err != nil {
		return project.Task{}, errors.Wrap(err, "inserting task")
	}
	return task, nil
}

func (repo projectRepository) GetTask(ctx context.Context, id string) (project.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return project.Task{}, project.ErrTaskNotFound
	}
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM project_task WHERE id = $1`, id); err != nil {
		return project.Task{}, trapNoRowsErr(err, project.ErrTaskNotFound, "finding task by ID")
	}
	return row.toTask(), nil
}

func (repo projectRepository) QueryTasks(ctx context.Context, projectID string) ([]project.Task, error) {
	var rows []taskRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM project_task WHERE project_id = $1
		ORDER BY board_column, position, updated_at`, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]project.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

func (repo projectRepository) UpdateTask(ctx context.Context, task project.Task) (project.Task, error) {
	row := toTaskRow(task)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE project_task
		SET title = :title, description = :description, board_column = :board_column,
		    position = :position, due_date = :due_date, assignee_id = :assignee_id, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return project.Task{}, errors.Wrap(err, "updating task")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return project.Task{}, project.ErrTaskNotFound
	}
	return task, nil
}

func (repo projectRepository) NextTaskPosition(ctx context.Context, projectID string, col project.Column) (int, error) {
	var max null.Int
	err := repo.db.GetContext(ctx, &max,
		`SELECT MAX(position) FROM project_task WHERE project_id = $1 AND board_column = $2`, projectID, string(col))
	if err != nil {
		return 0, errors.Wrap(err, "finding next task position")
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int + 1, nil
}

func (repo projectRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM project_task WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return project.ErrTaskNotFound
	}
	return nil
}
