package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	rep "github.com/llalegg/rd-tasks-sub000/internal/repository"
	"github.com/llalegg/rd-tasks-sub000/internal/service"
)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task, changes task.Changes) error {
	args := m.Called(ctx, t, changes)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) CreatePerson(ctx context.Context, p *person.Person) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPersonRepository) GetPerson(ctx context.Context, id string) (*person.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*person.Person), args.Error(1)
}

func (m *MockPersonRepository) FindPersons(ctx context.Context, ids []string) ([]*person.Person, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*person.Person), args.Error(1)
}

func (m *MockPersonRepository) ListPersons(ctx context.Context, role person.Role) ([]*person.Person, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*person.Person), args.Error(1)
}

var (
	_ service.TaskRepository   = (*MockTaskRepository)(nil)
	_ service.PersonRepository = (*MockPersonRepository)(nil)
)

func strPtr(s string) *string { return &s }

var (
	keepAthletes    = mock.MatchedBy(func(c task.Changes) bool { return !c.Athletes })
	replaceAthletes = mock.MatchedBy(func(c task.Changes) bool { return c.Athletes })
)

func athlete(id string) *person.Person {
	return &person.Person{ID: id, Name: id, Role: person.RoleAthlete}
}

func coach(id string) *person.Person {
	return &person.Person{ID: id, Name: id, Role: person.RoleCoach}
}

func fixedClock(t time.Time) service.Option {
	return service.WithClock(func() time.Time { return t })
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, code, busErr.Code)
}

func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo, new(MockPersonRepository))
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "service health check")
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		opts      []task.TaskOption
		setupMock func(*MockTaskRepository, *MockPersonRepository)
		wantCode  string
		check     func(*testing.T, *task.Task)
	}{
		{
			name: "success - defaults applied",
			opts: []task.TaskOption{task.WithName("  Knee scan  ")},
			setupMock: func(r *MockTaskRepository, _ *MockPersonRepository) {
				r.On("Create", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
					return t.Name == "Knee scan" && t.Status == task.StatusNew &&
						t.Priority == task.PriorityMedium && t.Type == task.TypeGeneralTodo
				})).Return(nil)
			},
			check: func(t *testing.T, got *task.Task) {
				assert.NotEmpty(t, got.ID)
				assert.Equal(t, now, got.CreatedAt)
				assert.Equal(t, now, got.UpdatedAt)
				assert.NotNil(t, got.RelatedAthleteIDs)
			},
		},
		{
			name: "success - athletes deduplicated and checked",
			opts: []task.TaskOption{
				task.WithName("Plan"),
				task.WithAssignee(strPtr("c1")),
				task.WithCreator(strPtr("c1")),
				task.WithRelatedAthletes([]string{"a1", "a2", "a1"}),
			},
			setupMock: func(r *MockTaskRepository, p *MockPersonRepository) {
				p.On("FindPersons", mock.Anything, []string{"c1", "a1", "a2"}).
					Return([]*person.Person{coach("c1"), athlete("a1"), athlete("a2")}, nil)
				r.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, got *task.Task) {
				assert.Equal(t, []string{"a1", "a2"}, got.RelatedAthleteIDs)
				assert.Equal(t, "c1", *got.CreatorID)
			},
		},
		{
			name:     "error - empty name",
			opts:     []task.TaskOption{task.WithName("   ")},
			wantCode: service.CodeValidation,
		},
		{
			name:     "error - unknown status",
			opts:     []task.TaskOption{task.WithName("x"), task.WithStatus("frobnicate")},
			wantCode: service.CodeValidation,
		},
		{
			name:     "error - unknown type",
			opts:     []task.TaskOption{task.WithName("x"), task.WithType("mystery")},
			wantCode: service.CodeValidation,
		},
		{
			name: "error - related person is not an athlete",
			opts: []task.TaskOption{task.WithName("x"), task.WithRelatedAthletes([]string{"c1"})},
			setupMock: func(_ *MockTaskRepository, p *MockPersonRepository) {
				p.On("FindPersons", mock.Anything, []string{"c1"}).Return([]*person.Person{coach("c1")}, nil)
			},
			wantCode: service.CodeValidation,
		},
		{
			name: "error - unknown assignee",
			opts: []task.TaskOption{task.WithName("x"), task.WithAssignee(strPtr("ghost"))},
			setupMock: func(_ *MockTaskRepository, p *MockPersonRepository) {
				p.On("FindPersons", mock.Anything, []string{"ghost"}).Return([]*person.Person{}, nil)
			},
			wantCode: service.CodeValidation,
		},
		{
			name: "error - storage failure",
			opts: []task.TaskOption{task.WithName("x")},
			setupMock: func(r *MockTaskRepository, _ *MockPersonRepository) {
				r.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			wantCode: service.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, persons := new(MockTaskRepository), new(MockPersonRepository)
			if tt.setupMock != nil {
				tt.setupMock(repo, persons)
			}

			svc := service.NewTaskService(repo, persons, fixedClock(now))
			got, err := svc.CreateTask(ctx, tt.opts...)

			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				tt.check(t, got)
			}
			repo.AssertExpectations(t)
			persons.AssertExpectations(t)
		})
	}
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	prev := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	existing := func() *task.Task {
		return &task.Task{
			ID:                "t1",
			Name:              "Old",
			Description:       "keep me",
			Type:              task.TypeInjury,
			Status:            task.StatusNew,
			Priority:          task.PriorityLow,
			CreatorID:         strPtr("c1"),
			RelatedAthleteIDs: []string{"a1", "a2"},
			CreatedAt:         prev,
			UpdatedAt:         prev,
		}
	}

	t.Run("success - partial update keeps other fields", func(t *testing.T) {
		repo, persons := new(MockTaskRepository), new(MockPersonRepository)
		stored := existing()
		repo.On("GetByID", mock.Anything, "t1").Return(stored, nil).Once()
		persons.On("FindPersons", mock.Anything, mock.Anything).
			Return([]*person.Person{coach("c1"), athlete("a1"), athlete("a2")}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return t.Name == "New" && t.Description == "keep me" && t.Priority == task.PriorityLow
		}), task.Changes{Columns: []task.Column{task.ColumnName}}).Return(nil)
		repo.On("GetByID", mock.Anything, "t1").Return(stored, nil).Once()

		svc := service.NewTaskService(repo, persons, fixedClock(prev.Add(time.Hour)))
		got, err := svc.UpdateTask(ctx, "t1", task.WithName("New"))

		require.NoError(t, err)
		assert.Equal(t, "New", got.Name)
		assert.Equal(t, "keep me", got.Description)
		assert.Equal(t, prev.Add(time.Hour), got.UpdatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("updatedAt strictly increases even when the clock does not", func(t *testing.T) {
		repo, persons := new(MockTaskRepository), new(MockPersonRepository)
		stored := existing()
		repo.On("GetByID", mock.Anything, "t1").Return(stored, nil)
		persons.On("FindPersons", mock.Anything, mock.Anything).
			Return([]*person.Person{coach("c1"), athlete("a1"), athlete("a2")}, nil)
		repo.On("Update", mock.Anything, mock.Anything, keepAthletes).Return(nil)

		// clock stuck behind the stored value
		svc := service.NewTaskService(repo, persons, fixedClock(prev.Add(-time.Minute)))
		first, err := svc.UpdateTask(ctx, "t1", task.WithStatus(task.StatusInProgress))
		require.NoError(t, err)
		assert.True(t, first.UpdatedAt.After(prev))

		firstStamp := first.UpdatedAt
		second, err := svc.UpdateTask(ctx, "t1", task.WithStatus(task.StatusCompleted))
		require.NoError(t, err)
		assert.True(t, second.UpdatedAt.After(firstStamp))
	})

	t.Run("athlete set replaced only when it changed", func(t *testing.T) {
		repo, persons := new(MockTaskRepository), new(MockPersonRepository)
		stored := existing()
		repo.On("GetByID", mock.Anything, "t1").Return(stored, nil)
		persons.On("FindPersons", mock.Anything, mock.Anything).
			Return([]*person.Person{coach("c1"), athlete("a2"), athlete("a3")}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return assert.ObjectsAreEqual([]string{"a2", "a3"}, t.RelatedAthleteIDs)
		}), replaceAthletes).Return(nil)

		svc := service.NewTaskService(repo, persons, fixedClock(prev.Add(time.Hour)))
		got, err := svc.UpdateTask(ctx, "t1", task.WithRelatedAthletes([]string{"a2", "a3"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"a2", "a3"}, got.RelatedAthleteIDs)
		repo.AssertExpectations(t)
	})

	t.Run("creator is immutable", func(t *testing.T) {
		repo, persons := new(MockTaskRepository), new(MockPersonRepository)
		stored := existing()
		repo.On("GetByID", mock.Anything, "t1").Return(stored, nil)
		persons.On("FindPersons", mock.Anything, mock.Anything).
			Return([]*person.Person{coach("c1"), coach("c2"), athlete("a1"), athlete("a2")}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return *t.CreatorID == "c1"
		}), keepAthletes).Return(nil)

		svc := service.NewTaskService(repo, persons, fixedClock(prev.Add(time.Hour)))
		_, err := svc.UpdateTask(ctx, "t1", task.WithCreator(strPtr("c2")))
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, rep.ErrNotFound)

		svc := service.NewTaskService(repo, new(MockPersonRepository))
		_, err := svc.UpdateTask(ctx, "missing", task.WithName("x"))
		assertCode(t, err, service.CodeNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - deleted between read and write", func(t *testing.T) {
		repo, persons := new(MockTaskRepository), new(MockPersonRepository)
		repo.On("GetByID", mock.Anything, "t1").Return(existing(), nil)
		persons.On("FindPersons", mock.Anything, mock.Anything).
			Return([]*person.Person{coach("c1"), athlete("a1"), athlete("a2")}, nil)
		repo.On("Update", mock.Anything, mock.Anything, keepAthletes).Return(rep.ErrNotFound)

		svc := service.NewTaskService(repo, persons)
		_, err := svc.UpdateTask(ctx, "t1", task.WithName("x"))
		assertCode(t, err, service.CodeNotFound)
	})

	t.Run("error - invalid priority", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("GetByID", mock.Anything, "t1").Return(existing(), nil)

		svc := service.NewTaskService(repo, new(MockPersonRepository))
		_, err := svc.UpdateTask(ctx, "t1", task.WithPriority("urgent"))
		assertCode(t, err, service.CodeValidation)
	})
}

func TestTaskService_GetTaskByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("GetByID", mock.Anything, "t1").Return(&task.Task{ID: "t1"}, nil)

		got, err := service.NewTaskService(repo, nil).GetTaskByID(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", got.ID)
	})

	t.Run("error - storage failure is internal", func(t *testing.T) {
		repo := new(MockTaskRepository)
		cause := errors.New("connection reset")
		repo.On("GetByID", mock.Anything, "t1").Return(nil, cause)

		_, err := service.NewTaskService(repo, nil).GetTaskByID(ctx, "t1")
		assertCode(t, err, service.CodeInternal)
		assert.ErrorIs(t, err, cause)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr bool
	}{
		{name: "success"},
		{name: "unknown id is not an error", repoErr: rep.ErrNotFound},
		{name: "storage failure", repoErr: errors.New("boom"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			repo.On("Delete", mock.Anything, "t1").Return(tt.repoErr)

			err := service.NewTaskService(repo, nil).DeleteTask(context.Background(), "t1")
			if tt.wantErr {
				assertCode(t, err, service.CodeInternal)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPersonService(t *testing.T) {
	ctx := context.Background()

	t.Run("create athlete keeps sport fields", func(t *testing.T) {
		repo := new(MockPersonRepository)
		repo.On("CreatePerson", mock.Anything, mock.MatchedBy(func(p *person.Person) bool {
			return p.Role == person.RoleAthlete && p.Sport != nil && *p.Sport == "rugby"
		})).Return(nil)

		got, err := service.NewPersonService(repo).CreatePerson(ctx, service.CreatePersonInput{
			Name: "Sam", Role: "Athlete", Sport: strPtr("rugby"),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("create coach drops sport fields", func(t *testing.T) {
		repo := new(MockPersonRepository)
		repo.On("CreatePerson", mock.Anything, mock.MatchedBy(func(p *person.Person) bool {
			return p.Sport == nil
		})).Return(nil)

		_, err := service.NewPersonService(repo).CreatePerson(ctx, service.CreatePersonInput{
			Name: "Alex", Role: person.RoleCoach, Sport: strPtr("rugby"),
		})
		require.NoError(t, err)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := service.NewPersonService(new(MockPersonRepository)).CreatePerson(ctx, service.CreatePersonInput{
			Name: "x", Role: "referee",
		})
		assertCode(t, err, service.CodeValidation)
	})

	t.Run("get missing person", func(t *testing.T) {
		repo := new(MockPersonRepository)
		repo.On("GetPerson", mock.Anything, "p1").Return(nil, rep.ErrNotFound)
		_, err := service.NewPersonService(repo).GetPerson(ctx, "p1")
		assertCode(t, err, service.CodeNotFound)
	})

	t.Run("list by role", func(t *testing.T) {
		repo := new(MockPersonRepository)
		repo.On("ListPersons", mock.Anything, person.RoleAthlete).Return([]*person.Person{athlete("a1")}, nil)
		got, err := service.NewPersonService(repo).ListPersons(ctx, person.RoleAthlete)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
