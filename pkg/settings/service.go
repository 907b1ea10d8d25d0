package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/validation"
	"github.com/classon/classon/pkg/weekday"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Get(ctx context.Context) (Settings, error)
	// Update stores the settings. Changing the week start renumbers the weekdays.
	Update(ctx context.Context, draft SettingsDraft) (Settings, error)
	WeekStart(ctx context.Context) (weekday.WeekStart, error)
}

type ServiceImpl struct {
	repo     Repository
	defaults Settings
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, defaults Settings, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, defaults: defaults, eventBus: eventBus}
}

func (s *ServiceImpl) Get(ctx context.Context) (Settings, error) {
	values, err := s.repo.Load(ctx)
	if err != nil {
		return Settings{}, err
	}
	return s.defaults.withValues(values), nil
}

func (s *ServiceImpl) WeekStart(ctx context.Context) (weekday.WeekStart, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return weekday.MondayFirst, err
	}
	return current.WeekStart, nil
}

func (s *ServiceImpl) Update(ctx context.Context, draft SettingsDraft) (Settings, error) {
	draft.WeekStart = strings.ToLower(strings.TrimSpace(draft.WeekStart))
	if err := validation.Struct(draft); err != nil {
		return Settings{}, err
	}
	previous, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	updated := Settings{
		WeekStart: weekday.ParseWeekStart(draft.WeekStart),
		Vacation:  draft.Vacation,
		Debug:     draft.Debug,
	}
	if err := s.repo.Save(ctx, updated.toValues()); err != nil {
		return Settings{}, err
	}

	if updated.WeekStart != previous.WeekStart && s.eventBus != nil {
		log.Debugf("Week start changed from %s to %s", previous.WeekStart, updated.WeekStart)
		err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.WeekStartChangedType, event_bus.WeekStartChanged{
			SundayFirst: updated.WeekStart == weekday.SundayFirst,
		}))
		if err != nil {
			if restoreErr := s.repo.Save(ctx, previous.toValues()); restoreErr != nil {
				log.Errorf("failed to restore settings after failed week start change: %v", restoreErr)
			}
			return Settings{}, fmt.Errorf("apply week start %s: %w", updated.WeekStart, err)
		}
	}
	return updated, nil
}
