package weekday

import (
	"net/http"
	"strconv"

	"github.com/classon/classon/internal/rest"
	"github.com/classon/classon/pkg/subject"
	"github.com/classon/classon/pkg/timetable"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ClassDTO struct {
	Id                uuid.UUID         `json:"id"`
	WeekdayId         uuid.UUID         `json:"weekdayId"`
	Position          int               `json:"position"`
	Name              string            `json:"name"`
	StartMinute       int               `json:"startMinute"`
	DurationMinutes   int               `json:"durationMinutes"`
	Start             string            `json:"start"`
	End               string            `json:"end"`
	Description       string            `json:"description,omitempty"`
	Details           map[string]string `json:"details,omitempty"`
	Color             string            `json:"color"`
	TeacherId         *uuid.UUID        `json:"teacherId,omitempty"`
	SubjectTeacherIds []uuid.UUID       `json:"subjectTeacherIds"`
	Tags              []string          `json:"tags"`
}

type WeekdayDTO struct {
	Id          uuid.UUID  `json:"id"`
	Ordinal     int        `json:"ordinal"`
	Label       string     `json:"label"`
	IsCommonDay bool       `json:"isCommonDay"`
	Classes     []ClassDTO `json:"classes"`
}

type ClassDraftDTO struct {
	Name              string            `json:"name"`
	StartMinute       int               `json:"startMinute"`
	DurationMinutes   int               `json:"durationMinutes"`
	Description       string            `json:"description"`
	Details           map[string]string `json:"details"`
	Color             string            `json:"color"`
	TeacherId         *uuid.UUID        `json:"teacherId"`
	SubjectTeacherIds []uuid.UUID       `json:"subjectTeacherIds"`
	Tags              []string          `json:"tags"`
}

type ClassFromPeriodDTO struct {
	SubjectId   uuid.UUID  `json:"subjectId"`
	PeriodId    uuid.UUID  `json:"periodId"`
	TeacherId   *uuid.UUID `json:"teacherId"`
	Description string     `json:"description"`
}

type CommonDayDTO struct {
	IsCommonDay bool `json:"isCommonDay"`
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

func pathOrdinal(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["ordinal"])
}

// ListWeekdays godoc
// @Summary List the seven weekdays with their classes
// @Tags Weekday
// @Produce json
// @Success 200 {array} WeekdayDTO
// @Router /api/weekday [get]
func (h *Handler) ListWeekdays(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.ListWeekdays(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	dtos := make([]WeekdayDTO, 0, len(days))
	for _, d := range days {
		dtos = append(dtos, WeekdayToDTO(d))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetWeekday(w http.ResponseWriter, r *http.Request) {
	ordinal, err := pathOrdinal(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid weekday ordinal", err.Error())
		return
	}
	day, err := h.service.GetWeekday(r.Context(), ordinal)
	if err != nil {
		rest.WriteServiceError(w, err, ErrWeekdayNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, WeekdayToDTO(day))
}

func (h *Handler) SetCommonDay(w http.ResponseWriter, r *http.Request) {
	ordinal, err := pathOrdinal(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid weekday ordinal", err.Error())
		return
	}
	var body CommonDayDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	day, err := h.service.SetCommonDay(r.Context(), ordinal, body.IsCommonDay)
	if err != nil {
		rest.WriteServiceError(w, err, ErrWeekdayNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, WeekdayToDTO(day))
}

func (h *Handler) ClearDay(w http.ResponseWriter, r *http.Request) {
	ordinal, err := pathOrdinal(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid weekday ordinal", err.Error())
		return
	}
	deleted, err := h.service.ClearDay(r.Context(), ordinal)
	if err != nil {
		rest.WriteServiceError(w, err, ErrWeekdayNotFound)
		return
	}
	log.Debugf("Cleared %d classes from weekday %d", deleted, ordinal)
	w.WriteHeader(http.StatusNoContent)
}

// AddClass godoc
// @Summary Add a class to a weekday
// @Tags Weekday
// @Accept json
// @Produce json
// @Param ordinal path int true "Weekday ordinal"
// @Param class body ClassDraftDTO true "Class"
// @Success 201 {object} ClassDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/weekday/{ordinal}/class [post]
func (h *Handler) AddClass(w http.ResponseWriter, r *http.Request) {
	ordinal, err := pathOrdinal(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid weekday ordinal", err.Error())
		return
	}
	var body ClassDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	class, err := h.service.AddClass(r.Context(), ordinal, ClassDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err, ErrWeekdayNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ClassToDTO(class))
}

func (h *Handler) AddClassFromPeriod(w http.ResponseWriter, r *http.Request) {
	ordinal, err := pathOrdinal(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid weekday ordinal", err.Error())
		return
	}
	var body ClassFromPeriodDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	class, err := h.service.AddClassFromPeriod(r.Context(), ordinal, ClassFromPeriod(body))
	if err != nil {
		rest.WriteServiceError(w, err, ErrWeekdayNotFound, subject.ErrSubjectNotFound, timetable.ErrPeriodNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ClassToDTO(class))
}

func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "classId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid class id", err.Error())
		return
	}
	class, err := h.service.GetClass(r.Context(), id)
	if err != nil {
		rest.WriteServiceError(w, err, ErrClassNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ClassToDTO(class))
}

func (h *Handler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "classId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid class id", err.Error())
		return
	}
	var body ClassDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	class, err := h.service.UpdateClass(r.Context(), id, ClassDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err, ErrClassNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ClassToDTO(class))
}

func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "classId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid class id", err.Error())
		return
	}
	if err := h.service.DeleteClass(r.Context(), id); err != nil {
		rest.WriteServiceError(w, err, ErrClassNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MoveClass(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "classId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid class id", err.Error())
		return
	}
	var body MoveDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	classes, err := h.service.MoveClass(r.Context(), id, body.Position)
	if err != nil {
		rest.WriteServiceError(w, err, ErrClassNotFound)
		return
	}
	dtos := make([]ClassDTO, 0, len(classes))
	for _, c := range classes {
		dtos = append(dtos, ClassToDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func WeekdayToDTO(d Weekday) WeekdayDTO {
	classes := make([]ClassDTO, 0, len(d.Classes))
	for _, c := range d.Classes {
		classes = append(classes, ClassToDTO(c))
	}
	return WeekdayDTO{
		Id:          d.Id,
		Ordinal:     d.Ordinal,
		Label:       d.Label.String(),
		IsCommonDay: d.IsCommonDay,
		Classes:     classes,
	}
}

func ClassToDTO(c Class) ClassDTO {
	return ClassDTO{
		Id:                c.Id,
		WeekdayId:         c.WeekdayId,
		Position:          c.Position,
		Name:              c.Name,
		StartMinute:       c.StartMinute,
		DurationMinutes:   c.DurationMinutes,
		Start:             timetable.ClockString(c.StartMinute),
		End:               timetable.ClockString(c.EndMinute()),
		Description:       c.Description,
		Details:           c.Details,
		Color:             c.Color.Hex(),
		TeacherId:         c.TeacherId,
		SubjectTeacherIds: c.SubjectTeacherIds,
		Tags:              c.Tags,
	}
}
