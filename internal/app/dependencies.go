package app

import (
	"time"

	"github.com/classon/classon/internal/config"
	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/classon/classon/pkg/export"
	"github.com/classon/classon/pkg/reminder"
	"github.com/classon/classon/pkg/schedule"
	"github.com/classon/classon/pkg/settings"
	"github.com/classon/classon/pkg/sharing"
	"github.com/classon/classon/pkg/subject"
	"github.com/classon/classon/pkg/timetable"
	"github.com/classon/classon/pkg/weekday"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	TimetableService *timetable.ServiceImpl
	TimetableHandler *timetable.Handler

	SubjectService *subject.ServiceImpl
	SubjectHandler *subject.Handler

	WeekdayService *weekday.ServiceImpl
	WeekdayHandler *weekday.Handler

	CategoryService *category.ServiceImpl
	CategoryHandler *category.Handler

	SettingsService *settings.ServiceImpl
	SettingsHandler *settings.Handler

	ScheduleService *schedule.ServiceImpl
	ScheduleHandler *schedule.Handler

	SharingService *sharing.ServiceImpl
	SharingHandler *sharing.Handler

	ExportService *export.ServiceImpl
	ExportHandler *export.Handler

	Reminder *reminder.Scheduler
}

type repositories struct {
	timetable timetable.Repository
	subject   subject.Repository
	weekday   weekday.Repository
	category  category.Repository
	settings  settings.Repository
}

func postgresRepositories(db *pgxpool.Pool) repositories {
	return repositories{
		timetable: timetable.NewRepo(db),
		subject:   subject.NewRepo(db),
		weekday:   weekday.NewRepo(db),
		category:  category.NewRepo(db),
		settings:  settings.NewRepo(db),
	}
}

func memoryRepositories() repositories {
	return repositories{
		timetable: timetable.NewMemoryRepository(),
		subject:   subject.NewMemoryRepository(),
		weekday:   weekday.NewMemoryRepository(),
		category:  category.NewMemoryRepository(),
		settings:  settings.NewMemoryRepository(),
	}
}

// BuildDependencies initializes and wires all application services and handlers. A nil db selects
// the in-memory repositories.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	repos := memoryRepositories()
	if db != nil {
		repos = postgresRepositories(db)
	}

	deps := &Dependencies{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = utils.SystemClock{Location: loadLocation(cfg.Timezone)}

	deps.TimetableService = timetable.NewService(repos.timetable)
	deps.TimetableHandler = timetable.NewHandler(deps.TimetableService)

	deps.SubjectService = subject.NewService(repos.subject, deps.EventBus)
	deps.SubjectHandler = subject.NewHandler(deps.SubjectService)

	deps.WeekdayService = weekday.NewService(repos.weekday, deps.SubjectService, deps.TimetableService, deps.EventBus)
	deps.WeekdayHandler = weekday.NewHandler(deps.WeekdayService)

	deps.CategoryService = category.NewService(repos.category)
	deps.CategoryHandler = category.NewHandler(deps.CategoryService)

	deps.SettingsService = settings.NewService(repos.settings, settings.Defaults(cfg.Settings), deps.EventBus)
	deps.SettingsHandler = settings.NewHandler(deps.SettingsService)

	deps.ScheduleService = schedule.NewService(deps.WeekdayService, deps.CategoryService, deps.SettingsService, deps.Clock)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService, deps.Clock)

	deps.SharingService = sharing.NewService(deps.SubjectService, deps.TimetableService)
	deps.SharingHandler = sharing.NewHandler(deps.SharingService)

	deps.ExportService = export.NewService(deps.WeekdayService, deps.CategoryService, deps.TimetableService, deps.Clock)
	deps.ExportHandler = export.NewHandler(deps.ExportService, deps.Clock)

	deps.Reminder = reminder.NewScheduler(deps.CategoryService, deps.EventBus, deps.Clock, cfg.Reminder.Cron)

	return deps
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("unknown timezone %q, using local time: %v", name, err)
		return time.Local
	}
	return location
}
