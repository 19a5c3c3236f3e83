package inmemory

import (
	"context"

	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	repo "github.com/llalegg/rd-tasks-sub000/internal/repository"
)

func (s *Storage) CreatePerson(ctx context.Context, p *person.Person) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.persons[p.ID]; exists {
		return repo.ErrAlreadyExists
	}
	stored := clonePerson(p)
	s.persons[p.ID] = stored
	s.personIDs = append(s.personIDs, p.ID)
	return nil
}

func (s *Storage) GetPerson(ctx context.Context, id string) (*person.Person, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clonePerson(p), nil
}

func (s *Storage) FindPersons(ctx context.Context, ids []string) ([]*person.Person, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*person.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.persons[id]; ok {
			res = append(res, clonePerson(p))
		}
	}
	return res, nil
}

func (s *Storage) ListPersons(ctx context.Context, role person.Role) ([]*person.Person, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*person.Person{}
	for _, id := range s.personIDs {
		p := s.persons[id]
		if role != "" && p.Role != role {
			continue
		}
		res = append(res, clonePerson(p))
	}
	return res, nil
}

func clonePerson(p *person.Person) *person.Person {
	c := *p
	c.Sport = cloneStr(p.Sport)
	c.Team = cloneStr(p.Team)
	c.Position = cloneStr(p.Position)
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
