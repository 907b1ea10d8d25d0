package timetable

import (
	"net/http"

	"github.com/classon/classon/internal/rest"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type PeriodDTO struct {
	Id              uuid.UUID `json:"id"`
	Index           int       `json:"index"`
	StartMinute     int       `json:"startMinute"`
	DurationMinutes int       `json:"durationMinutes"`
	Start           string    `json:"start"`
	End             string    `json:"end"`
}

type PeriodDraftDTO struct {
	StartMinute     int `json:"startMinute"`
	DurationMinutes int `json:"durationMinutes"`
}

type MoveDTO struct {
	Index int `json:"index"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List the periods of the timetable
// @Tags Timetable
// @Produce json
// @Success 200 {array} PeriodDTO
// @Router /api/period [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.List(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(periods))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "periodId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid period id", err.Error())
		return
	}
	period, err := h.service.Get(r.Context(), id)
	if err != nil {
		rest.WriteServiceError(w, err, ErrPeriodNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(period))
}

// Create godoc
// @Summary Append a period to the timetable
// @Tags Timetable
// @Accept json
// @Produce json
// @Param period body PeriodDraftDTO true "Period"
// @Success 201 {object} PeriodDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/period [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body PeriodDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	period, err := h.service.Add(r.Context(), PeriodDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	log.Debugf("Created period %s", period.Id)
	rest.WriteJSON(w, http.StatusCreated, ToDTO(period))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "periodId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid period id", err.Error())
		return
	}
	var body PeriodDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	period, err := h.service.Update(r.Context(), id, PeriodDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err, ErrPeriodNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(period))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "periodId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid period id", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		rest.WriteServiceError(w, err, ErrPeriodNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Move godoc
// @Summary Move a period to another index and renumber the timetable
// @Tags Timetable
// @Accept json
// @Produce json
// @Param periodId path string true "Period ID"
// @Param position body MoveDTO true "Target index"
// @Success 200 {array} PeriodDTO
// @Router /api/period/{periodId}/position [put]
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "periodId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid period id", err.Error())
		return
	}
	var body MoveDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	periods, err := h.service.Move(r.Context(), id, body.Index)
	if err != nil {
		rest.WriteServiceError(w, err, ErrPeriodNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(periods))
}

func ToDTO(p Period) PeriodDTO {
	return PeriodDTO{
		Id:              p.Id,
		Index:           p.Index,
		StartMinute:     p.StartMinute,
		DurationMinutes: p.DurationMinutes,
		Start:           ClockString(p.StartMinute),
		End:             ClockString(p.EndMinute()),
	}
}

func ToDTOs(periods []Period) []PeriodDTO {
	dtos := make([]PeriodDTO, 0, len(periods))
	for _, p := range periods {
		dtos = append(dtos, ToDTO(p))
	}
	return dtos
}
