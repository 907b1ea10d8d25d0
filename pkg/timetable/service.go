package timetable

import (
	"context"
	"slices"

	"github.com/classon/classon/internal/validation"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]Period, error)
	Get(ctx context.Context, id uuid.UUID) (Period, error)
	// Add appends a period at the end of the timetable.
	Add(ctx context.Context, draft PeriodDraft) (Period, error)
	Update(ctx context.Context, id uuid.UUID, draft PeriodDraft) (Period, error)
	// Delete removes a period and closes the gap in the indices.
	Delete(ctx context.Context, id uuid.UUID) error
	// Move places the period at toIndex and renumbers the whole timetable.
	Move(ctx context.Context, id uuid.UUID, toIndex int) ([]Period, error)
	// ReplaceAll drops the current timetable and stores drafts in the given order.
	ReplaceAll(ctx context.Context, drafts []PeriodDraft) ([]Period, error)
	// EnsureDefaults stores defaults when the timetable is empty and returns how many were created.
	EnsureDefaults(ctx context.Context, defaults []PeriodDraft) (int, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Period, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (Period, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Add(ctx context.Context, draft PeriodDraft) (Period, error) {
	if err := validation.Struct(draft); err != nil {
		return Period{}, err
	}
	var stored Period
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		periods, err := repo.List(ctx)
		if err != nil {
			return err
		}
		stored, err = repo.Store(ctx, Period{
			Index:           len(periods),
			StartMinute:     draft.StartMinute,
			DurationMinutes: draft.DurationMinutes,
		})
		return err
	})
	if err != nil {
		return Period{}, err
	}
	log.Debugf("Added period %s at index %d", stored.Id, stored.Index)
	return stored, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, draft PeriodDraft) (Period, error) {
	if err := validation.Struct(draft); err != nil {
		return Period{}, err
	}
	var updated Period
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		period, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		period.StartMinute = draft.StartMinute
		period.DurationMinutes = draft.DurationMinutes
		if err := repo.Update(ctx, period); err != nil {
			return err
		}
		updated = period
		return nil
	})
	if err != nil {
		return Period{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		periods, err := repo.List(ctx)
		if err != nil {
			return err
		}
		return repo.UpdatePositions(ctx, idsOf(periods))
	})
}

func (s *ServiceImpl) Move(ctx context.Context, id uuid.UUID, toIndex int) ([]Period, error) {
	var result []Period
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		periods, err := repo.List(ctx)
		if err != nil {
			return err
		}
		from := slices.IndexFunc(periods, func(p Period) bool { return p.Id == id })
		if from < 0 {
			return ErrPeriodNotFound
		}
		if toIndex < 0 || toIndex >= len(periods) {
			return validation.Fail("ToIndex", "range")
		}
		moved := periods[from]
		periods = slices.Delete(periods, from, from+1)
		periods = slices.Insert(periods, toIndex, moved)
		if err := repo.UpdatePositions(ctx, idsOf(periods)); err != nil {
			return err
		}
		result, err = repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ServiceImpl) ReplaceAll(ctx context.Context, drafts []PeriodDraft) ([]Period, error) {
	for _, draft := range drafts {
		if err := validation.Struct(draft); err != nil {
			return nil, err
		}
	}
	var result []Period
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		deleted, err := repo.DeleteAll(ctx)
		if err != nil {
			return err
		}
		log.Debugf("Replacing %d periods with %d imported ones", deleted, len(drafts))
		result = make([]Period, 0, len(drafts))
		for i, draft := range drafts {
			p, err := repo.Store(ctx, Period{Index: i, StartMinute: draft.StartMinute, DurationMinutes: draft.DurationMinutes})
			if err != nil {
				return err
			}
			result = append(result, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ServiceImpl) EnsureDefaults(ctx context.Context, defaults []PeriodDraft) (int, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(periods) > 0 {
		return 0, nil
	}
	created, err := s.ReplaceAll(ctx, defaults)
	if err != nil {
		return 0, err
	}
	log.Infof("Seeded %d default periods", len(created))
	return len(created), nil
}

func idsOf(periods []Period) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(periods))
	for _, p := range periods {
		ids = append(ids, p.Id)
	}
	return ids
}
