package schedule

import (
	"net/http"
	"time"

	"github.com/classon/classon/internal/rest"
	"github.com/classon/classon/internal/utils"
	"github.com/classon/classon/pkg/timetable"
	"github.com/google/uuid"
)

type AgendaItemDTO struct {
	Kind        Kind      `json:"kind"`
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	StartMinute int       `json:"startMinute"`
	EndMinute   int       `json:"endMinute"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	AllDay      bool      `json:"allDay"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
}

type AgendaDTO struct {
	Date         string          `json:"date"`
	WeekdayIndex int             `json:"weekdayIndex"`
	Items        []AgendaItemDTO `json:"items"`
	Next         *AgendaItemDTO  `json:"next,omitempty"`
}

func itemToDTO(item AgendaItem) AgendaItemDTO {
	dto := AgendaItemDTO{
		Kind:        item.Kind,
		StartMinute: item.StartMinute,
		EndMinute:   item.EndMinute,
		Start:       timetable.ClockString(item.StartMinute),
		End:         timetable.ClockString(item.EndMinute),
		AllDay:      item.AllDay,
	}
	switch {
	case item.Class != nil:
		dto.Id = item.Class.Id
		dto.Name = item.Class.Name
		dto.Color = item.Class.Color.Hex()
		dto.Description = item.Class.Description
	case item.Event != nil:
		dto.Id = item.Event.Id
		dto.Name = item.Event.Name
		dto.Color = item.Event.Color.Hex()
		dto.Description = item.Event.Description
	}
	return dto
}

func AgendaToDTO(agenda Agenda) AgendaDTO {
	items := make([]AgendaItemDTO, 0, len(agenda.Items))
	for _, item := range agenda.Items {
		items = append(items, itemToDTO(item))
	}
	dto := AgendaDTO{
		Date:         agenda.Date.Format(time.DateOnly),
		WeekdayIndex: agenda.WeekdayIndex,
		Items:        items,
	}
	if agenda.Next != nil {
		next := itemToDTO(*agenda.Next)
		dto.Next = &next
	}
	return dto
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// Agenda godoc
// @Summary Get the agenda of a day
// @Description Merges the classes of the day's weekday with the events occurring on that date.
// @Tags Schedule
// @Produce json
// @Param date query string false "Date as YYYY-MM-DD or RFC3339, defaults to today"
// @Success 200 {object} AgendaDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/agenda [get]
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	date := h.clock.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := parseDate(raw, date.Location())
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
			return
		}
		date = parsed
	}
	agenda, err := h.service.AgendaFor(r.Context(), date)
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, AgendaToDTO(agenda))
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if d, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}
