package sqlite

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	repo "github.com/llalegg/rd-tasks-sub000/internal/repository"
)

// Storage is a single-file backend for running the tracker without a
// PostgreSQL server.
type Storage struct {
	db *gorm.DB
}

func New(dsn string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logger.Error("Repository: open sqlite", err, zap.String("dsn", dsn))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&personRecord{}, &taskRecord{}, &taskAthleteRecord{}); err != nil {
		logger.Error("Repository: sqlite migration failed", err)
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	logger.Info("Repository: connected to SQLite", zap.String("dsn", dsn))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Repository: SQLite closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sqlite handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	rec := toTaskRecord(taskToCreate)
	err := s.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrAlreadyExists
	}
	if err != nil {
		logger.Error("Repository: create task", err, zap.String("task_id", taskToCreate.ID))
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update writes only the changed columns, inside one transaction that also
// reads the stored updated_at so the new stamp is strictly after it.
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task, changes task.Changes) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current taskRecord
		err := tx.Select("updated_at").Where("id = ?", taskToUpdate.ID).Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}

		values := make(map[string]any, len(changes.Columns)+1)
		for _, col := range changes.Columns {
			values[string(col)] = taskToUpdate.Value(col)
		}
		values["updated_at"] = task.NextUpdatedAt(current.UpdatedAt, taskToUpdate.UpdatedAt)

		res := tx.Model(&taskRecord{}).Where("id = ?", taskToUpdate.ID).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		if !changes.Athletes {
			return nil
		}

		if err := tx.Where("task_id = ?", taskToUpdate.ID).Delete(&taskAthleteRecord{}).Error; err != nil {
			return err
		}
		athletes := athleteRecords(taskToUpdate.ID, taskToUpdate.RelatedAthleteIDs)
		if len(athletes) == 0 {
			return nil
		}
		return tx.Create(&athletes).Error
	})
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Repository: update task", err, zap.String("task_id", taskToUpdate.ID))
		return fmt.Errorf("update task: %w", err)
	}
	return err
}

func (s *Storage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	var rec taskRecord
	err := s.withAthletes(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		logger.Error("Repository: get task", err, zap.String("task_id", id))
		return nil, fmt.Errorf("get task: %w", err)
	}
	return rec.toTask(), nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	var recs []taskRecord
	if err := s.withAthletes(ctx).Order("created_at, id").Find(&recs).Error; err != nil {
		logger.Error("Repository: list tasks", err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*task.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.toTask())
	}
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&taskAthleteRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&taskRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Repository: delete task", err, zap.String("task_id", id))
		return fmt.Errorf("delete task: %w", err)
	}
	return err
}

func (s *Storage) withAthletes(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Athletes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func (s *Storage) CreatePerson(ctx context.Context, p *person.Person) error {
	rec := toPersonRecord(p)
	err := s.db.WithContext(ctx).Create(&rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrAlreadyExists
	}
	if err != nil {
		logger.Error("Repository: create person", err, zap.String("person_id", p.ID))
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *Storage) GetPerson(ctx context.Context, id string) (*person.Person, error) {
	var rec personRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return rec.toPerson(), nil
}

func (s *Storage) FindPersons(ctx context.Context, ids []string) ([]*person.Person, error) {
	if len(ids) == 0 {
		return []*person.Person{}, nil
	}
	return s.findPersons(s.db.WithContext(ctx).Where("id IN ?", ids))
}

func (s *Storage) ListPersons(ctx context.Context, role person.Role) ([]*person.Person, error) {
	q := s.db.WithContext(ctx)
	if role != "" {
		q = q.Where("role = ?", string(role))
	}
	return s.findPersons(q)
}

func (s *Storage) findPersons(q *gorm.DB) ([]*person.Person, error) {
	var recs []personRecord
	if err := q.Order("created_at, id").Find(&recs).Error; err != nil {
		logger.Error("Repository: query persons", err)
		return nil, fmt.Errorf("query persons: %w", err)
	}
	res := make([]*person.Person, 0, len(recs))
	for _, rec := range recs {
		res = append(res, rec.toPerson())
	}
	return res, nil
}
