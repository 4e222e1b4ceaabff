package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/project"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(_ context.Context, prj project.Project) (project.Project, error) {
	repo.db.project.mutex.Lock()
	defer repo.db.project.mutex.Unlock()

	prj.ID = uuid.New().String()
	repo.db.project.rows[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) GetProject(_ context.Context, id string) (project.Project, error) {
	repo.db.project.mutex.RLock()
	defer repo.db.project.mutex.RUnlock()

	if prj, ok := repo.db.project.rows[id]; ok {
		return *prj, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) QueryProjects(_ context.Context, filter *project.QueryFilter, _ []core.DBOrdering) ([]project.Project, error) {
	repo.db.project.mutex.RLock()
	defer repo.db.project.mutex.RUnlock()

	var projects []project.Project
	for _, prj := range repo.db.project.all() {
		if filter != nil && !filter.IsEmpty() {
			filter.Clean()
			if filter.ClientID != "" && prj.ClientID != filter.ClientID {
				continue
			}
			if filter.Status != "" && prj.Status != filter.Status {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(prj.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		projects = append(projects, prj)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}

func (repo *projectRepository) UpdateProject(_ context.Context, prj project.Project) (project.Project, error) {
	repo.db.project.mutex.Lock()
	defer repo.db.project.mutex.Unlock()

	if _, ok := repo.db.project.rows[prj.ID]; !ok {
		return project.Project{}, project.ErrNotFound
	}
	repo.db.project.rows[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) CreateTask(_ context.Context, task project.Task) (project.Task, error) {
	repo.db.task.mutex.Lock()
	defer repo.db.task.mutex.Unlock()

	task.ID = uuid.New().String()
	repo.db.task.rows[task.ID] = &task
	return task, nil
}

func (repo *projectRepository) GetTask(_ context.Context, id string) (project.Task, error) {
	repo.db.task.mutex.RLock()
	defer repo.db.task.mutex.RUnlock()

	if task, ok := repo.db.task.rows[id]; ok {
		return *task, nil
	}
	return project.Task{}, project.ErrTaskNotFound
}

func (repo *projectRepository) QueryTasks(_ context.Context, projectID string) ([]project.Task, error) {
	repo.db.task.mutex.RLock()
	defer repo.db.task.mutex.RUnlock()

	var tasks []project.Task
	for _, task := range repo.db.task.all() {
		if task.ProjectID == projectID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Column != tasks[j].Column {
			return tasks[i].Column < tasks[j].Column
		}
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].UpdatedAt.Before(tasks[j].UpdatedAt)
	})
	return tasks, nil
}

func (repo *projectRepository) UpdateTask(_ context.Context, task project.Task) (project.Task, error) {
	repo.db.task.mutex.Lock()
	defer repo.db.task.mutex.Unlock()

	if _, ok := repo.db.task.rows[task.ID]; !ok {
		return project.Task{}, project.ErrTaskNotFound
	}
	repo.db.task.rows[task.ID] = &task
	return task, nil
}

func (repo *projectRepository) NextTaskPosition(_ context.Context, projectID string, col project.Column) (int, error) {
	repo.db.task.mutex.RLock()
	defer repo.db.task.mutex.RUnlock()

	next := 0
	for _, task := range repo.db.task.all() {
		if task.ProjectID == projectID && task.Column == col && task.Position >= next {
			next = task.Position + 1
		}
	}
	return next, nil
}

func (repo *projectRepository) DeleteTask(_ context.Context, id string) error {
	repo.db.task.mutex.Lock()
	defer repo.db.task.mutex.Unlock()

	if _, ok := repo.db.task.rows[id]; !ok {
		return project.ErrTaskNotFound
	}
	delete(repo.db.task.rows, id)
	return nil
}
