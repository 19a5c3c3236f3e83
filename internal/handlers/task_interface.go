package handlers

import (
	"context"

	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	"github.com/llalegg/rd-tasks-sub000/internal/service"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, opts ...task.TaskOption) (*task.Task, error)
	ListTasks(ctx context.Context) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id string) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, opts ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type PersonService interface {
	CreatePerson(ctx context.Context, in service.CreatePersonInput) (*person.Person, error)
	GetPerson(ctx context.Context, id string) (*person.Person, error)
	ListPersons(ctx context.Context, role person.Role) ([]*person.Person, error)
}

var (
	_ TaskService   = (*service.TaskService)(nil)
	_ PersonService = (*service.PersonService)(nil)
)
