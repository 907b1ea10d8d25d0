package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classon/classon/internal/config"
	"github.com/classon/classon/internal/database"
	"github.com/classon/classon/pkg/timetable"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	db     *pgxpool.Pool
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application from the configuration file at configPath,
// ready to Run().
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	db := openDatabase(ctx, cfg.Database)

	r := mux.NewRouter()

	deps := BuildDependencies(db, cfg)
	if err := seed(ctx, deps, cfg); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, deps: deps, router: r, srv: srv}, nil
}

// openDatabase returns nil when Postgres cannot be opened or migrated; the application then runs
// on memory storage.
func openDatabase(ctx context.Context, cfg config.Database) *pgxpool.Pool {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Warnf("database unavailable, data will only be kept in memory: %v", err)
		return nil
	}
	if err := database.Migrate(cfg); err != nil {
		log.Warnf("database migration failed, data will only be kept in memory: %v", err)
		db.Close()
		return nil
	}
	return db
}

func seed(ctx context.Context, deps *Dependencies, cfg config.Application) error {
	start, err := deps.SettingsService.WeekStart(ctx)
	if err != nil {
		return fmt.Errorf("failed to read week start: %w", err)
	}
	if _, err := deps.WeekdayService.EnsureDefaults(ctx, start); err != nil {
		return fmt.Errorf("failed to seed weekdays: %w", err)
	}

	periods := make([]timetable.PeriodDraft, 0, len(cfg.Timetable.DefaultPeriods))
	for _, p := range cfg.Timetable.DefaultPeriods {
		periods = append(periods, timetable.PeriodDraft{StartMinute: p.StartMinute, DurationMinutes: p.DurationMinutes})
	}
	if _, err := deps.TimetableService.EnsureDefaults(ctx, periods); err != nil {
		return fmt.Errorf("failed to seed periods: %w", err)
	}
	return nil
}

// Storage names where the data lives: "postgres" or "memory".
func (a *Application) Storage() string {
	if a.db == nil {
		return "memory"
	}
	return "postgres"
}

// Run starts the HTTP server and the reminder scheduler and blocks until SIGINT or SIGTERM.
func (a *Application) Run() error {
	if a.cfg.Reminder.Enabled {
		if err := a.deps.Reminder.Start(); err != nil {
			return err
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		a.close()
		return err
	case sig := <-quit:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.srv.Shutdown(ctx)
	a.close()
	return err
}

func (a *Application) close() {
	a.deps.Reminder.Stop()
	if a.db != nil {
		a.db.Close()
	}
}
