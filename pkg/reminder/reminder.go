package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/category"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// catchUp is how far back the first sweep looks for alarms missed while the service was down.
const catchUp = time.Hour

const sweepTimeout = 30 * time.Second

type AlarmStore interface {
	DueAlarms(ctx context.Context, from, to time.Time) ([]category.DueAlarm, error)
	MarkAlarmFired(ctx context.Context, id uuid.UUID) error
}

// Scheduler fires event alarms. Every sweep publishes the alarms due since the previous sweep and
// marks them fired.
type Scheduler struct {
	alarms   AlarmStore
	eventBus *event_bus.EventBus
	clock    utils.Clock
	spec     string

	mu      sync.Mutex
	lastRun time.Time
	cron    *cron.Cron
}

func NewScheduler(alarms AlarmStore, eventBus *event_bus.EventBus, clock utils.Clock, spec string) *Scheduler {
	return &Scheduler{
		alarms:   alarms,
		eventBus: eventBus,
		clock:    clock,
		spec:     spec,
		lastRun:  clock.Now().Add(-catchUp),
	}
}

// Sweep fires the alarms due in (lastRun, now] and returns how many were fired.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	due, err := s.alarms.DueAlarms(ctx, s.lastRun, now)
	if err != nil {
		return 0, fmt.Errorf("query due alarms: %w", err)
	}

	fired := 0
	for _, alarm := range due {
		log.Infof("Alarm %q of event %q is due at %s", alarm.Name, alarm.EventName, alarm.TriggerAt.Format(time.RFC3339))
		if s.eventBus != nil {
			err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.AlarmTriggeredType, event_bus.AlarmTriggered{
				AlarmId:   alarm.Id,
				EventId:   alarm.EventId,
				EventName: alarm.EventName,
				AlarmName: alarm.Name,
				TriggerAt: alarm.TriggerAt,
			}))
			if err != nil {
				log.Warnf("alarm %s was not delivered to every subscriber: %v", alarm.Id, err)
			}
		}
		if err := s.alarms.MarkAlarmFired(ctx, alarm.Id); err != nil {
			return fired, fmt.Errorf("mark alarm %s fired: %w", alarm.Id, err)
		}
		fired++
	}
	s.lastRun = now
	return fired, nil
}

// Start schedules the sweep with the configured cron spec.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.StandardLogger()))))
	_, err := c.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		fired, err := s.Sweep(ctx)
		if err != nil {
			log.Errorf("alarm sweep failed: %v", err)
			return
		}
		if fired > 0 {
			log.Debugf("Alarm sweep fired %d alarms", fired)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.spec, err)
	}
	s.cron = c
	c.Start()
	log.Infof("Reminder scheduler started (%s)", s.spec)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	log.Info("Reminder scheduler stopped")
}
