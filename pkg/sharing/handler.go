package sharing

import (
	"errors"
	"io"
	"net/http"

	"github.com/classon/classon/internal/rest"
	"github.com/classon/classon/pkg/subject"
	"github.com/classon/classon/pkg/timetable"
)

const maxPayloadBytes = 1 << 20

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeRaw(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func readPayload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return nil, false
	}
	return data, true
}

func writeImportError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrMalformedPayload) {
		rest.WriteError(w, http.StatusBadRequest, "Malformed payload", err.Error())
		return
	}
	rest.WriteServiceError(w, err)
}

func (h *Handler) ExportSubjects(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportSubjects(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	writeRaw(w, data)
}

// ImportSubjects godoc
// @Summary Import shared subjects
// @Description Accepts a JSON array of subjects or a single subject. Teachers are reused by name.
// @Tags Sharing
// @Accept json
// @Produce json
// @Param payload body []SharedSubject true "Shared subjects"
// @Success 201 {array} subject.SubjectDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/share/subjects [post]
func (h *Handler) ImportSubjects(w http.ResponseWriter, r *http.Request) {
	data, ok := readPayload(w, r)
	if !ok {
		return
	}
	imported, err := h.service.ImportSubjects(r.Context(), data)
	if err != nil {
		writeImportError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, subject.ToDTOs(imported))
}

func (h *Handler) ExportPeriods(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportPeriods(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	writeRaw(w, data)
}

// ImportPeriods godoc
// @Summary Import a shared timetable
// @Description Replaces all periods with the periods of the payload, ordered by their index.
// @Tags Sharing
// @Accept json
// @Produce json
// @Param payload body []SharedPeriod true "Shared periods"
// @Success 200 {array} timetable.PeriodDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/share/periods [post]
func (h *Handler) ImportPeriods(w http.ResponseWriter, r *http.Request) {
	data, ok := readPayload(w, r)
	if !ok {
		return
	}
	periods, err := h.service.ImportPeriods(r.Context(), data)
	if err != nil {
		writeImportError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, timetable.ToDTOs(periods))
}
