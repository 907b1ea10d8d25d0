package weekday

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/validation"
	"github.com/classon/classon/pkg/color"
	"github.com/classon/classon/pkg/subject"
	"github.com/classon/classon/pkg/timetable"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// EnsureDefaults renumbers the stored days for start and creates the missing ones. Monday to
	// Friday start as common days.
	EnsureDefaults(ctx context.Context, start WeekStart) (int, error)
	// Rebase renumbers the days for another week start convention.
	Rebase(ctx context.Context, start WeekStart) error
	ListWeekdays(ctx context.Context) ([]Weekday, error)
	GetWeekday(ctx context.Context, ordinal int) (Weekday, error)
	SetCommonDay(ctx context.Context, ordinal int, isCommonDay bool) (Weekday, error)
	// ClearDay deletes all classes of the day and returns how many were removed.
	ClearDay(ctx context.Context, ordinal int) (int, error)
	GetClass(ctx context.Context, id uuid.UUID) (Class, error)
	AddClass(ctx context.Context, ordinal int, draft ClassDraft) (Class, error)
	// AddClassFromPeriod creates a class named and colored after the subject, timed like the period.
	AddClassFromPeriod(ctx context.Context, ordinal int, req ClassFromPeriod) (Class, error)
	UpdateClass(ctx context.Context, id uuid.UUID, draft ClassDraft) (Class, error)
	DeleteClass(ctx context.Context, id uuid.UUID) error
	MoveClass(ctx context.Context, id uuid.UUID, toPosition int) ([]Class, error)
}

type ClassFromPeriod struct {
	SubjectId uuid.UUID
	PeriodId  uuid.UUID
	// TeacherId defaults to the first teacher of the subject.
	TeacherId   *uuid.UUID
	Description string
}

type SubjectReader interface {
	Get(ctx context.Context, id uuid.UUID) (subject.Subject, error)
	GetTeacher(ctx context.Context, id uuid.UUID) (subject.Teacher, error)
}

type PeriodReader interface {
	Get(ctx context.Context, id uuid.UUID) (timetable.Period, error)
}

type ServiceImpl struct {
	repo     Repository
	subjects SubjectReader
	periods  PeriodReader
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, subjects SubjectReader, periods PeriodReader, eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{repo: repo, subjects: subjects, periods: periods, eventBus: eventBus}
	if eventBus == nil {
		return service
	}
	event_bus.SubscribeTyped[event_bus.TeacherDeleted](
		eventBus,
		event_bus.TeacherDeletedType,
		func(e event_bus.EventT[event_bus.TeacherDeleted]) error {
			log.Debugf("received teacher deleted event: %v", e.Data)
			changed, err := service.repo.RemoveTeacher(e.Context(), e.Data.Id)
			if err != nil {
				log.Errorf("failed to remove teacher %s from classes: %v", e.Data.Id, err)
				return err
			}
			log.Debugf("removed teacher %s from %d classes", e.Data.Id, changed)
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.WeekStartChanged](
		eventBus,
		event_bus.WeekStartChangedType,
		func(e event_bus.EventT[event_bus.WeekStartChanged]) error {
			start := MondayFirst
			if e.Data.SundayFirst {
				start = SundayFirst
			}
			log.Debugf("received week start changed event: %s", start)
			return service.Rebase(e.Context(), start)
		},
	)
	return service
}

var allLabels = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func (s *ServiceImpl) EnsureDefaults(ctx context.Context, start WeekStart) (int, error) {
	created := 0
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		created = 0
		// Stored days may carry the ordinals of a previously configured week start.
		if err := rebase(ctx, repo, start); err != nil {
			return err
		}
		days, err := repo.ListWeekdays(ctx)
		if err != nil {
			return err
		}
		existing := make(map[time.Weekday]bool, len(days))
		for _, d := range days {
			existing[d.Label] = true
		}
		for _, label := range allLabels {
			if existing[label] {
				continue
			}
			_, err := repo.StoreWeekday(ctx, Weekday{
				Ordinal:     IndexFor(label, start),
				Label:       label,
				IsCommonDay: label != time.Saturday && label != time.Sunday,
			})
			if err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		log.Infof("Seeded %d weekdays (week starts on %s)", created, start)
	}
	return created, nil
}

func (s *ServiceImpl) Rebase(ctx context.Context, start WeekStart) error {
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		return rebase(ctx, repo, start)
	})
}

func rebase(ctx context.Context, repo Repository, start WeekStart) error {
	days, err := repo.ListWeekdays(ctx)
	if err != nil {
		return err
	}
	ordinals := make(map[uuid.UUID]int, len(days))
	for _, d := range days {
		if ordinal := IndexFor(d.Label, start); ordinal != d.Ordinal {
			ordinals[d.Id] = ordinal
		}
	}
	if len(ordinals) == 0 {
		return nil
	}
	log.Debugf("Rebasing %d weekdays to a week starting on %s", len(ordinals), start)
	return repo.UpdateOrdinals(ctx, ordinals)
}

func (s *ServiceImpl) ListWeekdays(ctx context.Context) ([]Weekday, error) {
	return s.repo.ListWeekdays(ctx)
}

func (s *ServiceImpl) GetWeekday(ctx context.Context, ordinal int) (Weekday, error) {
	if ordinal < 0 || ordinal >= DaysInWeek {
		return Weekday{}, ErrWeekdayNotFound
	}
	return s.repo.GetWeekday(ctx, ordinal)
}

func (s *ServiceImpl) SetCommonDay(ctx context.Context, ordinal int, isCommonDay bool) (Weekday, error) {
	var updated Weekday
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		day, err := repo.GetWeekday(ctx, ordinal)
		if err != nil {
			return err
		}
		if err := repo.SetCommonDay(ctx, day.Id, isCommonDay); err != nil {
			return err
		}
		day.IsCommonDay = isCommonDay
		updated = day
		return nil
	})
	if err != nil {
		return Weekday{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) ClearDay(ctx context.Context, ordinal int) (int, error) {
	var deleted int
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		day, err := repo.GetWeekday(ctx, ordinal)
		if err != nil {
			return err
		}
		deleted, err = repo.DeleteClassesOfWeekday(ctx, day.Id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *ServiceImpl) GetClass(ctx context.Context, id uuid.UUID) (Class, error) {
	return s.repo.GetClass(ctx, id)
}

// validateDraft checks the draft and that the referenced teachers exist.
func (s *ServiceImpl) validateDraft(ctx context.Context, draft ClassDraft) (ClassDraft, color.RGB, error) {
	draft = draft.normalized()
	if err := validation.Struct(draft); err != nil {
		return draft, color.RGB{}, err
	}
	c, err := color.ParseHexOrDefault(draft.Color)
	if err != nil {
		return draft, color.RGB{}, validation.Fail("Color", "hexcolor")
	}
	if draft.TeacherId != nil && s.subjects != nil {
		if _, err := s.subjects.GetTeacher(ctx, *draft.TeacherId); err != nil {
			if errors.Is(err, subject.ErrTeacherNotFound) {
				return draft, color.RGB{}, validation.Fail("TeacherId", "exists")
			}
			return draft, color.RGB{}, err
		}
	}
	return draft, c, nil
}

func classFromDraft(c Class, draft ClassDraft, rgb color.RGB) Class {
	c.Name = draft.Name
	c.StartMinute = draft.StartMinute
	c.DurationMinutes = draft.DurationMinutes
	c.Description = draft.Description
	c.Details = draft.Details
	c.Color = rgb
	c.TeacherId = draft.TeacherId
	c.SubjectTeacherIds = draft.SubjectTeacherIds
	if c.SubjectTeacherIds == nil {
		c.SubjectTeacherIds = []uuid.UUID{}
	}
	c.Tags = draft.Tags
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

func (s *ServiceImpl) AddClass(ctx context.Context, ordinal int, draft ClassDraft) (Class, error) {
	draft, rgb, err := s.validateDraft(ctx, draft)
	if err != nil {
		return Class{}, err
	}
	return s.appendClass(ctx, ordinal, classFromDraft(Class{}, draft, rgb))
}

func (s *ServiceImpl) appendClass(ctx context.Context, ordinal int, class Class) (Class, error) {
	var stored Class
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		day, err := repo.GetWeekday(ctx, ordinal)
		if err != nil {
			return err
		}
		class.WeekdayId = day.Id
		class.Position = len(day.Classes)
		stored, err = repo.StoreClass(ctx, class)
		return err
	})
	if err != nil {
		return Class{}, err
	}
	log.Debugf("Added class %s (%s) to weekday %d", stored.Id, stored.Name, ordinal)
	return stored, nil
}

func (s *ServiceImpl) AddClassFromPeriod(ctx context.Context, ordinal int, req ClassFromPeriod) (Class, error) {
	if s.subjects == nil || s.periods == nil {
		return Class{}, fmt.Errorf("subjects and periods are required to create a class from a period")
	}
	subj, err := s.subjects.Get(ctx, req.SubjectId)
	if err != nil {
		return Class{}, err
	}
	period, err := s.periods.Get(ctx, req.PeriodId)
	if err != nil {
		return Class{}, err
	}

	teacherIds := subj.TeacherIds()
	teacherId := req.TeacherId
	if teacherId == nil && len(teacherIds) > 0 {
		teacherId = &teacherIds[0]
	}
	if teacherId != nil && !slices.Contains(teacherIds, *teacherId) {
		return Class{}, validation.Fail("TeacherId", "oneof_subject_teachers")
	}

	return s.appendClass(ctx, ordinal, Class{
		Name:              subj.Name,
		StartMinute:       period.StartMinute,
		DurationMinutes:   period.DurationMinutes,
		Description:       req.Description,
		Details:           map[string]string{},
		Color:             subj.Color,
		TeacherId:         teacherId,
		SubjectTeacherIds: teacherIds,
		Tags:              []string{},
	})
}

func (s *ServiceImpl) UpdateClass(ctx context.Context, id uuid.UUID, draft ClassDraft) (Class, error) {
	draft, rgb, err := s.validateDraft(ctx, draft)
	if err != nil {
		return Class{}, err
	}
	var updated Class
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		class, err := repo.GetClass(ctx, id)
		if err != nil {
			return err
		}
		class = classFromDraft(class, draft, rgb)
		if err := repo.UpdateClass(ctx, class); err != nil {
			return err
		}
		updated = class
		return nil
	})
	if err != nil {
		return Class{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteClass(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		class, err := repo.GetClass(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteClass(ctx, id); err != nil {
			return err
		}
		return compactClasses(ctx, repo, class.WeekdayId)
	})
}

func compactClasses(ctx context.Context, repo Repository, weekdayId uuid.UUID) error {
	days, err := repo.ListWeekdays(ctx)
	if err != nil {
		return err
	}
	for _, d := range days {
		if d.Id == weekdayId {
			return repo.UpdateClassPositions(ctx, classIds(d.Classes))
		}
	}
	return ErrWeekdayNotFound
}

func (s *ServiceImpl) MoveClass(ctx context.Context, id uuid.UUID, toPosition int) ([]Class, error) {
	var result []Class
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		class, err := repo.GetClass(ctx, id)
		if err != nil {
			return err
		}
		days, err := repo.ListWeekdays(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(days, func(d Weekday) bool { return d.Id == class.WeekdayId })
		if idx < 0 {
			return ErrWeekdayNotFound
		}
		day := days[idx]
		if toPosition < 0 || toPosition >= len(day.Classes) {
			return validation.Fail("ToPosition", "range")
		}
		classes := day.Classes
		from := slices.IndexFunc(classes, func(c Class) bool { return c.Id == id })
		moved := classes[from]
		classes = slices.Insert(slices.Delete(classes, from, from+1), toPosition, moved)
		if err := repo.UpdateClassPositions(ctx, classIds(classes)); err != nil {
			return err
		}
		updated, err := repo.GetWeekday(ctx, day.Ordinal)
		if err != nil {
			return err
		}
		result = updated.Classes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func classIds(classes []Class) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.Id)
	}
	return ids
}
