package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	repo "github.com/llalegg/rd-tasks-sub000/internal/repository"
)

const slowQuery = 100 * time.Millisecond

type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, cfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: parse connection string", err)
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = 5 * time.Minute
	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		config.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// selectTask aggregates the athlete join so each row is a complete task.
const selectTask = `SELECT
		t.id,
		t.name,
		t.description,
		t.type,
		t.status,
		t.priority,
		t.deadline,
		t.assignee_id,
		t.creator_id,
		t.created_at,
		t.updated_at,
		COALESCE(
			array_agg(ta.athlete_id ORDER BY ta.position) FILTER (WHERE ta.athlete_id IS NOT NULL),
			'{}'
		) AS related_athlete_ids
	FROM tasks t
	LEFT JOIN task_athletes ta ON ta.task_id = t.id`

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `INSERT INTO tasks
				(id, name, description, type, status, priority, deadline, assignee_id, creator_id, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		if _, err := tx.Exec(ctx, query,
			taskToCreate.ID,
			taskToCreate.Name,
			taskToCreate.Description,
			taskToCreate.Type,
			taskToCreate.Status,
			taskToCreate.Priority,
			taskToCreate.Deadline,
			taskToCreate.AssigneeID,
			taskToCreate.CreatorID,
			taskToCreate.CreatedAt,
			taskToCreate.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return insertAthletes(ctx, tx, taskToCreate.ID, taskToCreate.RelatedAthleteIDs)
	})
	if err != nil {
		logger.Error("Repository: create task", err, zap.Duration("ms", time.Since(start)))
		return err
	}

	warnIfSlow("create task", start)
	return nil
}

// Update writes only the changed columns. updated_at never moves backwards,
// even when two updates computed their stamp from the same prior read.
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task, changes task.Changes) error {
	start := time.Now()

	query, args := updateQuery(taskToUpdate, changes)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		if !changes.Athletes {
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM task_athletes WHERE task_id = $1`, taskToUpdate.ID); err != nil {
			return fmt.Errorf("clear task athletes: %w", err)
		}
		return insertAthletes(ctx, tx, taskToUpdate.ID, taskToUpdate.RelatedAthleteIDs)
	})
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			logger.Error("Repository: update task", err, zap.String("task_id", taskToUpdate.ID))
		}
		return err
	}

	warnIfSlow("update task", start)
	return nil
}

// updateQuery builds the SET list from the column constants, never from input.
func updateQuery(t *task.Task, changes task.Changes) (string, []any) {
	sets := make([]string, 0, len(changes.Columns)+1)
	args := make([]any, 0, len(changes.Columns)+2)
	for _, col := range changes.Columns {
		args = append(args, t.Value(col))
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, t.UpdatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = GREATEST($%d, updated_at + interval '1 microsecond')", len(args)))
	args = append(args, t.ID)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

func (s *Storage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	start := time.Now()

	query := selectTask + ` WHERE t.id = $1 GROUP BY t.id`
	found, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: get task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("get task: %w", err)
	}

	warnIfSlow("get task", start)
	return found, nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	query := selectTask + ` GROUP BY t.id ORDER BY t.created_at, t.id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: list tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterate tasks", err)
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	warnIfSlow("list tasks", start)
	return tasks, nil
}

// Delete removes join rows first, then the task.
func (s *Storage) Delete(ctx context.Context, id string) error {
	start := time.Now()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM task_athletes WHERE task_id = $1`, id); err != nil {
			return fmt.Errorf("delete task athletes: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Repository: delete task", err, zap.String("task_id", id))
	}

	warnIfSlow("delete task", start)
	return err
}

func insertAthletes(ctx context.Context, tx pgx.Tx, taskID string, athleteIDs []string) error {
	if len(athleteIDs) == 0 {
		return nil
	}
	query := `INSERT INTO task_athletes (task_id, athlete_id, position)
			SELECT $1, a.id, a.ord
			FROM unnest($2::text[]) WITH ORDINALITY AS a(id, ord)`
	if _, err := tx.Exec(ctx, query, taskID, athleteIDs); err != nil {
		return fmt.Errorf("insert task athletes: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Type,
		&t.Status,
		&t.Priority,
		&t.Deadline,
		&t.AssigneeID,
		&t.CreatorID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.RelatedAthleteIDs,
	)
	if err != nil {
		return nil, err
	}
	if t.Deadline != nil {
		d := t.Deadline.UTC()
		t.Deadline = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}
