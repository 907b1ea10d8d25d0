package export

import (
	"errors"
	"net/http"
	"time"

	"github.com/classon/classon/internal/rest"
	"github.com/classon/classon/internal/utils"
)

const defaultRangeDays = 90

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

func (h *Handler) parseDay(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, fallback.Location())
}

// Calendar godoc
// @Summary Export the schedule as iCalendar
// @Description Events between from and to plus one weekly series per class. The range defaults to
// @Description the next 90 days.
// @Tags Export
// @Produce text/calendar
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Day after the last day, YYYY-MM-DD"
// @Success 200 {string} string
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/export/calendar.ics [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	today := utils.StartOfDay(h.clock.Now())
	from, err := h.parseDay(r.URL.Query().Get("from"), today)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from date", err.Error())
		return
	}
	to, err := h.parseDay(r.URL.Query().Get("to"), from.AddDate(0, 0, defaultRangeDays))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to date", err.Error())
		return
	}

	body, err := h.service.CalendarICS(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid range", err.Error())
			return
		}
		rest.WriteServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="classon.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) Timetable(w http.ResponseWriter, r *http.Request) {
	buf, err := h.service.TimetableWorkbook(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Disposition", `attachment; filename="timetable.xlsx"`)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
