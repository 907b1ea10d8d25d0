package subject

import (
	"context"
	"errors"
	"slices"

	"github.com/classon/classon/internal/event_bus"
	"github.com/classon/classon/internal/validation"
	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]Subject, error)
	Get(ctx context.Context, id uuid.UUID) (Subject, error)
	Add(ctx context.Context, draft SubjectDraft) (Subject, error)
	Update(ctx context.Context, id uuid.UUID, draft SubjectDraft) (Subject, error)
	// Delete removes the subject only; its teachers and the classes created from it stay.
	Delete(ctx context.Context, id uuid.UUID) error
	Move(ctx context.Context, id uuid.UUID, toPosition int) ([]Subject, error)
	ListTeachers(ctx context.Context) ([]Teacher, error)
	GetTeacher(ctx context.Context, id uuid.UUID) (Teacher, error)
	DeleteTeacher(ctx context.Context, id uuid.UUID) error
	// Import appends subjects after the existing ones. Teachers are reused by name, subjects are not
	// deduplicated.
	Import(ctx context.Context, drafts []SubjectDraft) ([]Subject, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Subject, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (Subject, error) {
	return s.repo.Get(ctx, id)
}

func validateDraft(draft SubjectDraft) (SubjectDraft, color.RGB, error) {
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

func (s *ServiceImpl) Add(ctx context.Context, draft SubjectDraft) (Subject, error) {
	draft, c, err := validateDraft(draft)
	if err != nil {
		return Subject{}, err
	}
	var stored Subject
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		stored, err = storeAfterLast(ctx, repo, draft, c)
		return err
	})
	if err != nil {
		return Subject{}, err
	}
	log.Debugf("Added subject %s (%s) at position %d", stored.Id, stored.Name, stored.Position)
	return stored, nil
}

func storeAfterLast(ctx context.Context, repo Repository, draft SubjectDraft, c color.RGB) (Subject, error) {
	teachers, err := resolveTeachers(ctx, repo, draft.Teachers)
	if err != nil {
		return Subject{}, err
	}
	maxPosition, err := repo.MaxPosition(ctx)
	if err != nil {
		return Subject{}, err
	}
	return repo.Store(ctx, Subject{
		Name:     draft.Name,
		Position: maxPosition + 1,
		Color:    c,
		Teachers: teachers,
	})
}

// resolveTeachers maps names to stored teachers, creating the ones that do not exist yet.
func resolveTeachers(ctx context.Context, repo Repository, names []string) ([]Teacher, error) {
	teachers := make([]Teacher, 0, len(names))
	for _, name := range names {
		t, err := repo.FindTeacherByName(ctx, name)
		if errors.Is(err, ErrTeacherNotFound) {
			t, err = repo.StoreTeacher(ctx, Teacher{Name: name})
			if err == nil {
				log.Debugf("Created teacher %s (%s)", t.Id, t.Name)
			}
		}
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, draft SubjectDraft) (Subject, error) {
	draft, c, err := validateDraft(draft)
	if err != nil {
		return Subject{}, err
	}
	var updated Subject
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		subject, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		teachers, err := resolveTeachers(ctx, repo, draft.Teachers)
		if err != nil {
			return err
		}
		subject.Name = draft.Name
		subject.Color = c
		subject.Teachers = teachers
		if err := repo.Update(ctx, subject); err != nil {
			return err
		}
		updated = subject
		return nil
	})
	if err != nil {
		return Subject{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		subjects, err := repo.List(ctx)
		if err != nil {
			return err
		}
		return repo.UpdatePositions(ctx, idsOf(subjects))
	})
}

func (s *ServiceImpl) Move(ctx context.Context, id uuid.UUID, toPosition int) ([]Subject, error) {
	var result []Subject
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		subjects, err := repo.List(ctx)
		if err != nil {
			return err
		}
		from := slices.IndexFunc(subjects, func(s Subject) bool { return s.Id == id })
		if from < 0 {
			return ErrSubjectNotFound
		}
		if toPosition < 0 || toPosition >= len(subjects) {
			return validation.Fail("ToPosition", "range")
		}
		moved := subjects[from]
		subjects = slices.Insert(slices.Delete(subjects, from, from+1), toPosition, moved)
		if err := repo.UpdatePositions(ctx, idsOf(subjects)); err != nil {
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

func (s *ServiceImpl) ListTeachers(ctx context.Context) ([]Teacher, error) {
	return s.repo.ListTeachers(ctx)
}

func (s *ServiceImpl) GetTeacher(ctx context.Context, id uuid.UUID) (Teacher, error) {
	return s.repo.GetTeacher(ctx, id)
}

// DeleteTeacher removes the teacher from every subject and announces the deletion so classes can
// drop their references.
func (s *ServiceImpl) DeleteTeacher(ctx context.Context, id uuid.UUID) error {
	var deleted Teacher
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		t, err := repo.GetTeacher(ctx, id)
		if err != nil {
			return err
		}
		deleted = t
		return repo.DeleteTeacher(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Debugf("Deleted teacher %s (%s)", deleted.Id, deleted.Name)

	if s.eventBus == nil {
		return nil
	}
	event := event_bus.NewEvent(ctx, event_bus.TeacherDeletedType, event_bus.TeacherDeleted{Id: deleted.Id, Name: deleted.Name})
	if err := s.eventBus.Publish(event); err != nil {
		log.Errorf("teacher %s deleted but references were not cleared: %v", deleted.Id, err)
		return err
	}
	return nil
}

func (s *ServiceImpl) Import(ctx context.Context, drafts []SubjectDraft) ([]Subject, error) {
	type validDraft struct {
		draft SubjectDraft
		color color.RGB
	}
	valid := make([]validDraft, 0, len(drafts))
	for _, d := range drafts {
		d, c, err := validateDraft(d)
		if err != nil {
			return nil, err
		}
		valid = append(valid, validDraft{draft: d, color: c})
	}

	var imported []Subject
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		imported = make([]Subject, 0, len(valid))
		for _, v := range valid {
			stored, err := storeAfterLast(ctx, repo, v.draft, v.color)
			if err != nil {
				return err
			}
			imported = append(imported, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("Imported %d subjects", len(imported))
	return imported, nil
}

func idsOf(subjects []Subject) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.Id)
	}
	return ids
}
