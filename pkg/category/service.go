package category

import (
	"context"
	"slices"
	"time"

	"github.com/classon/classon/internal/validation"
	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (Category, error)
	AddCategory(ctx context.Context, draft CategoryDraft) (Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, draft CategoryDraft) (Category, error)
	// DeleteCategory deletes the category with all its events and returns how many events were removed.
	DeleteCategory(ctx context.Context, id uuid.UUID) (int, error)
	MoveCategory(ctx context.Context, id uuid.UUID, toPosition int) ([]Category, error)
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	AddEvent(ctx context.Context, categoryId uuid.UUID, draft EventDraft) (Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, draft EventDraft) (Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	DueAlarms(ctx context.Context, from, to time.Time) ([]DueAlarm, error)
	MarkAlarmFired(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *ServiceImpl) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func validateCategory(draft CategoryDraft) (CategoryDraft, color.RGB, error) {
	draft = draft.normalized()
	if err := validation.Struct(draft); err != nil {
		return draft, color.RGB{}, err
	}
	c, err := color.ParseHexOrDefault(draft.Color)
	if err != nil {
		return draft, color.RGB{}, validation.Fail("Color", "hexcolor")
	}
	return draft, c, nil
}

func (s *ServiceImpl) AddCategory(ctx context.Context, draft CategoryDraft) (Category, error) {
	draft, c, err := validateCategory(draft)
	if err != nil {
		return Category{}, err
	}
	var stored Category
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		last, err := repo.MaxCategoryPosition(ctx)
		if err != nil {
			return err
		}
		stored, err = repo.StoreCategory(ctx, Category{
			Name:        draft.Name,
			Position:    last + 1,
			Color:       c,
			Description: draft.Description,
		})
		return err
	})
	if err != nil {
		return Category{}, err
	}
	log.Debugf("Added category %s (%s) at position %d", stored.Id, stored.Name, stored.Position)
	return stored, nil
}

func (s *ServiceImpl) UpdateCategory(ctx context.Context, id uuid.UUID, draft CategoryDraft) (Category, error) {
	draft, c, err := validateCategory(draft)
	if err != nil {
		return Category{}, err
	}
	var updated Category
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		category, err := repo.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		category.Name = draft.Name
		category.Color = c
		category.Description = draft.Description
		if err := repo.UpdateCategory(ctx, category); err != nil {
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return Category{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteCategory(ctx context.Context, id uuid.UUID) (int, error) {
	var deleted int
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		deleted, err = repo.DeleteCategory(ctx, id)
		if err != nil {
			return err
		}
		categories, err := repo.ListCategories(ctx)
		if err != nil {
			return err
		}
		return repo.UpdateCategoryPositions(ctx, categoryIds(categories))
	})
	if err != nil {
		return 0, err
	}
	log.Debugf("Deleted category %s with %d events", id, deleted)
	return deleted, nil
}

func (s *ServiceImpl) MoveCategory(ctx context.Context, id uuid.UUID, toPosition int) ([]Category, error) {
	var result []Category
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		categories, err := repo.ListCategories(ctx)
		if err != nil {
			return err
		}
		from := slices.IndexFunc(categories, func(c Category) bool { return c.Id == id })
		if from < 0 {
			return ErrCategoryNotFound
		}
		if toPosition < 0 || toPosition >= len(categories) {
			return validation.Fail("ToPosition", "range")
		}
		moved := categories[from]
		categories = slices.Insert(slices.Delete(categories, from, from+1), toPosition, moved)
		if err := repo.UpdateCategoryPositions(ctx, categoryIds(categories)); err != nil {
			return err
		}
		result, err = repo.ListCategories(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ServiceImpl) ListEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListEvents(ctx)
}

func (s *ServiceImpl) GetEvent(ctx context.Context, id uuid.UUID) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func validateEvent(draft EventDraft) (EventDraft, error) {
	draft = draft.normalized()
	if err := validation.Struct(draft); err != nil {
		return draft, err
	}
	if _, err := color.ParseHexOrDefault(draft.Color); err != nil {
		return draft, validation.Fail("Color", "hexcolor")
	}
	return draft, nil
}

// eventFromDraft applies the draft to e. An empty color inherits the category color. Alarms that
// keep their name and trigger time keep their fired state.
func eventFromDraft(e Event, draft EventDraft, category Category) Event {
	e.Name = draft.Name
	e.Date = draft.Date
	e.AllDay = draft.AllDay
	e.DurationMinutes = draft.DurationMinutes
	e.NeedLoop = draft.NeedLoop
	e.LoopDays = draft.LoopDays
	e.Color = category.Color
	if draft.Color != "" {
		e.Color, _ = color.ParseHex(draft.Color)
	}
	e.Description = draft.Description
	e.Details = draft.Details
	e.IsReminder = draft.IsReminder
	e.Tags = draft.Tags
	if e.Tags == nil {
		e.Tags = []string{}
	}

	alarms := make([]Alarm, 0, len(draft.Alarms))
	for _, a := range draft.Alarms {
		fired := slices.ContainsFunc(e.Alarms, func(old Alarm) bool {
			return old.Fired && old.Name == a.Name && old.TriggerAt.Equal(a.TriggerAt)
		})
		alarms = append(alarms, Alarm{Name: a.Name, TriggerAt: a.TriggerAt, Fired: fired})
	}
	e.Alarms = alarms
	return e
}

func (s *ServiceImpl) AddEvent(ctx context.Context, categoryId uuid.UUID, draft EventDraft) (Event, error) {
	draft, err := validateEvent(draft)
	if err != nil {
		return Event{}, err
	}
	var stored Event
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		category, err := repo.GetCategory(ctx, categoryId)
		if err != nil {
			return err
		}
		event := eventFromDraft(Event{CategoryId: categoryId, Position: len(category.Events)}, draft, category)
		stored, err = repo.StoreEvent(ctx, event)
		return err
	})
	if err != nil {
		return Event{}, err
	}
	log.Debugf("Added event %s (%s) to category %s", stored.Id, stored.Name, categoryId)
	return stored, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, id uuid.UUID, draft EventDraft) (Event, error) {
	draft, err := validateEvent(draft)
	if err != nil {
		return Event{}, err
	}
	var updated Event
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		event, err := repo.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		category, err := repo.GetCategory(ctx, event.CategoryId)
		if err != nil {
			return err
		}
		updated, err = repo.UpdateEvent(ctx, eventFromDraft(event, draft, category))
		return err
	})
	if err != nil {
		return Event{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		event, err := repo.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteEvent(ctx, id); err != nil {
			return err
		}
		category, err := repo.GetCategory(ctx, event.CategoryId)
		if err != nil {
			return err
		}
		return repo.UpdateEventPositions(ctx, eventIds(category.Events))
	})
}

func (s *ServiceImpl) DueAlarms(ctx context.Context, from, to time.Time) ([]DueAlarm, error) {
	return s.repo.DueAlarms(ctx, from, to)
}

func (s *ServiceImpl) MarkAlarmFired(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAlarmFired(ctx, id)
}

func categoryIds(categories []Category) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.Id)
	}
	return ids
}

func eventIds(events []Event) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.Id)
	}
	return ids
}
