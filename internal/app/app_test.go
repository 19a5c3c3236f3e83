package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llalegg/rd-tasks-sub000/internal/app"
	"github.com/llalegg/rd-tasks-sub000/internal/config"
	"github.com/llalegg/rd-tasks-sub000/internal/handlers/dto"
)

func testConfig(repoType, url string) *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Port: "0", ShutdownTimeout: time.Second},
		Database:   config.DatabaseConfig{URL: url},
		Repository: config.RepositoryConfig{Type: repoType},
		Worker:     config.WorkerConfig{Interval: time.Minute},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func call(t *testing.T, h http.Handler, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestApp_TaskLifecycle(t *testing.T) {
	backends := map[string]*config.Config{
		"inmemory": testConfig(config.RepositoryInMemory, ""),
		"sqlite":   testConfig(config.RepositorySQLite, filepath.Join(t.TempDir(), "app.db")),
	}

	for name, cfg := range backends {
		t.Run(name, func(t *testing.T) {
			a := app.New(cfg)
			require.NoError(t, a.Init(context.Background()))
			h := a.Handler()

			assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/health", nil, nil))

			var coach, athlete dto.PersonResponse
			require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/persons",
				dto.CreatePersonRequest{Name: "Alex", Role: "coach"}, &coach))
			require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/persons",
				dto.CreatePersonRequest{Name: "Sam", Role: "athlete"}, &athlete))

			deadline := "2026-09-01"
			var created dto.TaskResponse
			require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/tasks", dto.CreateTaskRequest{
				Name:              "Shoulder assessment",
				Type:              "assessment",
				Deadline:          &deadline,
				AssigneeID:        &coach.ID,
				CreatorID:         &coach.ID,
				RelatedAthleteIDs: []string{athlete.ID},
			}, &created))
			assert.Equal(t, "new", created.Status)
			assert.Equal(t, []string{athlete.ID}, created.RelatedAthleteIDs)

			var updated dto.TaskResponse
			require.Equal(t, http.StatusOK, call(t, h, http.MethodPut, "/tasks/"+created.ID,
				dto.UpdateTaskRequest{Status: dto.Some("blocked"), AssigneeID: dto.Null[string]()}, &updated))
			assert.Equal(t, "blocked", updated.Status)
			assert.Nil(t, updated.AssigneeID)
			assert.Equal(t, created.Name, updated.Name)
			assert.Equal(t, []string{athlete.ID}, updated.RelatedAthleteIDs)
			assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

			var unknownAthlete map[string]any
			assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPut, "/tasks/"+created.ID,
				dto.UpdateTaskRequest{RelatedAthleteIDs: dto.Some([]string{coach.ID})}, &unknownAthlete))

			var list []dto.TaskResponse
			require.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/tasks", nil, &list))
			require.Len(t, list, 1)

			assert.Equal(t, http.StatusNoContent, call(t, h, http.MethodDelete, "/tasks/"+created.ID, nil, nil))
			assert.Equal(t, http.StatusNoContent, call(t, h, http.MethodDelete, "/tasks/"+created.ID, nil, nil))
			assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/tasks/"+created.ID, nil, nil))

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "tasktracker_http_requests_total")
		})
	}
}

func TestApp_InitFailsWithoutDatabase(t *testing.T) {
	cfg := testConfig(config.RepositoryPostgres, "postgres://nobody@127.0.0.1:1/none?connect_timeout=1")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Error(t, app.New(cfg).Init(ctx))
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(config.RepositoryInMemory, "")
	cfg.Server.Host = "127.0.0.1"
	a := app.New(cfg)
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
