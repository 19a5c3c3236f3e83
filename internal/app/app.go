package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/llalegg/rd-tasks-sub000/internal/config"
	"github.com/llalegg/rd-tasks-sub000/internal/handlers"
	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/metrics"
	"github.com/llalegg/rd-tasks-sub000/internal/middleware"
	"github.com/llalegg/rd-tasks-sub000/internal/repository/inmemory"
	"github.com/llalegg/rd-tasks-sub000/internal/repository/postgres"
	"github.com/llalegg/rd-tasks-sub000/internal/repository/sqlite"
	"github.com/llalegg/rd-tasks-sub000/internal/service"
	"github.com/llalegg/rd-tasks-sub000/internal/worker"
)

type storage interface {
	service.TaskRepository
	service.PersonRepository
}

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository storage
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	worker     *worker.DeadlineWorker
	shutdowns  []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init builds every dependency. On error the already opened resources are
// released before returning.
func (a *App) Init(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	if err := a.initRepository(ctx); err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	taskService := service.NewTaskService(a.repository, a.repository)
	personService := service.NewPersonService(a.repository)

	a.worker = worker.NewDeadlineWorker(taskService, a.metrics, a.config.Worker.Interval)
	a.router = a.buildRouter(handlers.NewTaskHandler(taskService), handlers.NewPersonHandler(personService))

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "tasktracker"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("App: initialised",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		db := a.config.Database
		store, err := postgres.New(ctx, db.URL, postgres.PoolConfig{
			MaxConns:        int32(db.MaxConnections),
			MinConns:        int32(db.MinConnections),
			MaxConnIdleTime: db.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, store.Close)
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		a.repository = store
	case config.RepositorySQLite:
		store, err := sqlite.New(a.config.Database.URL)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		a.shutdowns = append(a.shutdowns, store.Close)
		a.repository = store
	default:
		a.repository = inmemory.NewStorage()
	}
	return nil
}

func (a *App) buildRouter(tasks *handlers.TaskHandler, persons *handlers.PersonHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(a.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(a.config.RateLimit.RPM))
		handlers.Register(r, tasks, persons)
	})
	return r
}

// Handler exposes the routed handler without the tracing wrapper.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP and runs the deadline worker until ctx is cancelled or
// either of them fails.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.worker.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) close() {
	for _, fn := range slices.Backward(a.shutdowns) {
		fn()
	}
	a.shutdowns = nil
}
