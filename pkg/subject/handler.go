package subject

import (
	"net/http"

	"github.com/classon/classon/internal/rest"
	"github.com/google/uuid"
)

type TeacherDTO struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type SubjectDTO struct {
	Id       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Position int          `json:"position"`
	Color    string       `json:"color"`
	Teachers []TeacherDTO `json:"teachers"`
}

type SubjectDraftDTO struct {
	Name     string   `json:"name"`
	Color    string   `json:"color,omitempty"`
	Teachers []string `json:"teachers,omitempty"`
}

type MoveDTO struct {
	Position int `json:"position"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.List(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(subjects))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "subjectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid subject id", err.Error())
		return
	}
	subject, err := h.service.Get(r.Context(), id)
	if err != nil {
		rest.WriteServiceError(w, err, ErrSubjectNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(subject))
}

// Create godoc
// @Summary Create a subject
// @Description Teachers are given by name; existing teachers are reused case-insensitively.
// @Tags Subject
// @Accept json
// @Produce json
// @Param subject body SubjectDraftDTO true "Subject"
// @Success 201 {object} SubjectDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/subject [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body SubjectDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	subject, err := h.service.Add(r.Context(), SubjectDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(subject))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "subjectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid subject id", err.Error())
		return
	}
	var body SubjectDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	subject, err := h.service.Update(r.Context(), id, SubjectDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err, ErrSubjectNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(subject))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "subjectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid subject id", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		rest.WriteServiceError(w, err, ErrSubjectNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "subjectId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid subject id", err.Error())
		return
	}
	var body MoveDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	subjects, err := h.service.Move(r.Context(), id, body.Position)
	if err != nil {
		rest.WriteServiceError(w, err, ErrSubjectNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(subjects))
}

func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.ListTeachers(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	dtos := make([]TeacherDTO, 0, len(teachers))
	for _, t := range teachers {
		dtos = append(dtos, TeacherDTO(t))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// DeleteTeacher godoc
// @Summary Delete a teacher
// @Description Removes the teacher from all subjects and clears it on classes. Classes are kept.
// @Tags Subject
// @Param teacherId path string true "Teacher ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/teacher/{teacherId} [delete]
func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "teacherId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid teacher id", err.Error())
		return
	}
	if err := h.service.DeleteTeacher(r.Context(), id); err != nil {
		rest.WriteServiceError(w, err, ErrTeacherNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ToDTO(s Subject) SubjectDTO {
	teachers := make([]TeacherDTO, 0, len(s.Teachers))
	for _, t := range s.Teachers {
		teachers = append(teachers, TeacherDTO(t))
	}
	return SubjectDTO{
		Id:       s.Id,
		Name:     s.Name,
		Position: s.Position,
		Color:    s.Color.Hex(),
		Teachers: teachers,
	}
}

func ToDTOs(subjects []Subject) []SubjectDTO {
	dtos := make([]SubjectDTO, 0, len(subjects))
	for _, s := range subjects {
		dtos = append(dtos, ToDTO(s))
	}
	return dtos
}
