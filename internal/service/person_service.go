package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	rep "github.com/llalegg/rd-tasks-sub000/internal/repository"
)

type PersonService struct {
	repo PersonRepository
	now  func() time.Time
}

func NewPersonService(repo PersonRepository) *PersonService {
	return &PersonService{repo: repo, now: time.Now}
}

type CreatePersonInput struct {
	Name     string
	Role     person.Role
	Sport    *string
	Team     *string
	Position *string
}

func (s *PersonService) CreatePerson(ctx context.Context, in CreatePersonInput) (*person.Person, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	role := person.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if !role.IsValid() {
		return nil, NewValidationError("role", fmt.Sprintf("unknown value %q", in.Role))
	}

	p := &person.Person{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	// sport, team and position only describe athletes
	if role == person.RoleAthlete {
		p.Sport, p.Team, p.Position = in.Sport, in.Team, in.Position
	}

	if err := s.repo.CreatePerson(ctx, p); err != nil {
		logger.Error("Service: create person", err)
		return nil, NewInternal("create person", err)
	}
	logger.Info("Service: person created", zap.String("person_id", p.ID), zap.String("role", string(role)))
	return p, nil
}

func (s *PersonService) GetPerson(ctx context.Context, id string) (*person.Person, error) {
	p, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourcePerson, id)
		}
		return nil, NewInternal("get person", err)
	}
	return p, nil
}

// ListPersons filters by role when one is given.
func (s *PersonService) ListPersons(ctx context.Context, role person.Role) ([]*person.Person, error) {
	if role != "" && !role.IsValid() {
		return nil, NewValidationError("role", fmt.Sprintf("unknown value %q", role))
	}
	persons, err := s.repo.ListPersons(ctx, role)
	if err != nil {
		return nil, NewInternal("list persons", err)
	}
	return persons, nil
}
