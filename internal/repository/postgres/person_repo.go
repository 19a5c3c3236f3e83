package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	repo "github.com/llalegg/rd-tasks-sub000/internal/repository"
)

const uniqueViolation = "23505"

const selectPerson = `SELECT id, name, role, sport, team, position, created_at FROM persons`

func (s *Storage) CreatePerson(ctx context.Context, p *person.Person) error {
	start := time.Now()

	query := `INSERT INTO persons (id, name, role, sport, team, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query, p.ID, p.Name, p.Role, p.Sport, p.Team, p.Position, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: create person", err, zap.String("person_id", p.ID))
		return fmt.Errorf("create person: %w", err)
	}

	warnIfSlow("create person", start)
	return nil
}

func (s *Storage) GetPerson(ctx context.Context, id string) (*person.Person, error) {
	found, err := scanPerson(s.pool.QueryRow(ctx, selectPerson+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: get person", err, zap.String("person_id", id))
		return nil, fmt.Errorf("get person: %w", err)
	}
	return found, nil
}

// FindPersons returns the persons that exist among ids. Missing ids are skipped.
func (s *Storage) FindPersons(ctx context.Context, ids []string) ([]*person.Person, error) {
	if len(ids) == 0 {
		return []*person.Person{}, nil
	}
	return s.queryPersons(ctx, "find persons", selectPerson+` WHERE id = ANY($1) ORDER BY created_at, id`, ids)
}

func (s *Storage) ListPersons(ctx context.Context, role person.Role) ([]*person.Person, error) {
	if role == "" {
		return s.queryPersons(ctx, "list persons", selectPerson+` ORDER BY created_at, id`)
	}
	return s.queryPersons(ctx, "list persons", selectPerson+` WHERE role = $1 ORDER BY created_at, id`, role)
}

func (s *Storage) queryPersons(ctx context.Context, op, query string, args ...any) ([]*person.Person, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: "+op, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := []*person.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	warnIfSlow(op, start)
	return res, nil
}

func scanPerson(row pgx.Row) (*person.Person, error) {
	p := &person.Person{}
	if err := row.Scan(&p.ID, &p.Name, &p.Role, &p.Sport, &p.Team, &p.Position, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
