package subject

import (
	"strings"

	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
)

type Teacher struct {
	Id   uuid.UUID
	Name string
}

type Subject struct {
	Id       uuid.UUID
	Name     string
	Position int
	Color    color.RGB
	Teachers []Teacher
}

func (s Subject) TeacherIds() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Teachers))
	for _, t := range s.Teachers {
		ids = append(ids, t.Id)
	}
	return ids
}

// SubjectDraft holds user input for a subject. Teachers are referenced by name and merged with
// existing teachers case-insensitively.
type SubjectDraft struct {
	Name     string   `validate:"required,max=200"`
	Color    string   `validate:"omitempty,hexcolor"`
	Teachers []string `validate:"dive,max=200"`
}

func (d SubjectDraft) normalized() SubjectDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Color = strings.TrimSpace(d.Color)
	seen := make(map[string]bool, len(d.Teachers))
	var teachers []string
	for _, name := range d.Teachers {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		teachers = append(teachers, name)
	}
	d.Teachers = teachers
	return d
}
