package service

import (
	"context"

	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	// Update writes the columns listed in changes plus updated_at, which must end
	// up strictly after the stored value. With changes.Athletes the related
	// athlete set is rewritten in the same transaction.
	Update(ctx context.Context, t *task.Task, changes task.Changes) error
	GetByID(context.Context, string) (*task.Task, error)
	List(context.Context) ([]*task.Task, error)
	Delete(context.Context, string) error
}

type PersonRepository interface {
	CreatePerson(context.Context, *person.Person) error
	GetPerson(context.Context, string) (*person.Person, error)
	// FindPersons returns the persons that exist among ids; unknown ids are skipped.
	FindPersons(context.Context, []string) ([]*person.Person, error)
	ListPersons(ctx context.Context, role person.Role) ([]*person.Person, error)
}
