package sharing

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/classon/classon/internal/validation"
	"github.com/classon/classon/pkg/color"
	"github.com/classon/classon/pkg/subject"
	"github.com/classon/classon/pkg/timetable"
	log "github.com/sirupsen/logrus"
)

type SubjectStore interface {
	List(ctx context.Context) ([]subject.Subject, error)
	Import(ctx context.Context, drafts []subject.SubjectDraft) ([]subject.Subject, error)
}

type PeriodStore interface {
	List(ctx context.Context) ([]timetable.Period, error)
	ReplaceAll(ctx context.Context, drafts []timetable.PeriodDraft) ([]timetable.Period, error)
}

type Service interface {
	ExportSubjects(ctx context.Context) ([]byte, error)
	// ImportSubjects appends the subjects of the payload. Teachers are merged by name.
	ImportSubjects(ctx context.Context, data []byte) ([]subject.Subject, error)
	ExportPeriods(ctx context.Context) ([]byte, error)
	// ImportPeriods replaces the whole timetable with the periods of the payload. A payload without
	// periods is malformed.
	ImportPeriods(ctx context.Context, data []byte) ([]timetable.Period, error)
}

type ServiceImpl struct {
	subjects SubjectStore
	periods  PeriodStore
}

func NewService(subjects SubjectStore, periods PeriodStore) *ServiceImpl {
	return &ServiceImpl{subjects: subjects, periods: periods}
}

func (s *ServiceImpl) ExportSubjects(ctx context.Context) ([]byte, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}
	shared := make([]SharedSubject, 0, len(subjects))
	for _, subj := range subjects {
		teachers := make([]string, 0, len(subj.Teachers))
		for _, t := range subj.Teachers {
			teachers = append(teachers, t.Name)
		}
		shared = append(shared, SharedSubject{Name: subj.Name, Teachers: teachers, ColorHex: subj.Color.Hex()})
	}
	return encode(shared)
}

func (s *ServiceImpl) ImportSubjects(ctx context.Context, data []byte) ([]subject.Subject, error) {
	shared, err := DecodeSubjects(data)
	if err != nil {
		log.Warnf("Rejected subject import: %v", err)
		return nil, err
	}
	drafts := make([]subject.SubjectDraft, 0, len(shared))
	for _, sh := range shared {
		c, err := color.ParseHexOrDefault(sh.ColorHex)
		if err != nil {
			log.Warnf("Rejected subject import, subject %q has color %q", sh.Name, sh.ColorHex)
			return nil, validation.Fail("ColorHex", "hexcolor")
		}
		drafts = append(drafts, subject.SubjectDraft{Name: sh.Name, Color: c.Hex(), Teachers: sh.Teachers})
	}
	imported, err := s.subjects.Import(ctx, drafts)
	if err != nil {
		log.Warnf("Rejected subject import: %v", err)
		return nil, err
	}
	return imported, nil
}

func (s *ServiceImpl) ExportPeriods(ctx context.Context) ([]byte, error) {
	periods, err := s.periods.List(ctx)
	if err != nil {
		return nil, err
	}
	shared := make([]SharedPeriod, 0, len(periods))
	for _, p := range periods {
		shared = append(shared, SharedPeriod{Index: p.Index, StartMinute: p.StartMinute, DurationMinutes: p.DurationMinutes})
	}
	return encode(shared)
}

func (s *ServiceImpl) ImportPeriods(ctx context.Context, data []byte) ([]timetable.Period, error) {
	shared, err := DecodePeriods(data)
	if err == nil && len(shared) == 0 {
		err = fmt.Errorf("%w: no periods", ErrMalformedPayload)
	}
	if err != nil {
		log.Warnf("Rejected period import: %v", err)
		return nil, err
	}
	slices.SortStableFunc(shared, func(a, b SharedPeriod) int { return cmp.Compare(a.Index, b.Index) })
	drafts := make([]timetable.PeriodDraft, 0, len(shared))
	for _, sh := range shared {
		drafts = append(drafts, timetable.PeriodDraft{StartMinute: sh.StartMinute, DurationMinutes: sh.DurationMinutes})
	}
	periods, err := s.periods.ReplaceAll(ctx, drafts)
	if err != nil {
		log.Warnf("Rejected period import: %v", err)
		return nil, err
	}
	return periods, nil
}
