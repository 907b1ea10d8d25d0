package settings

import (
	"net/http"

	"github.com/classon/classon/internal/rest"
)

type SettingsDTO struct {
	WeekStart string `json:"weekStart"`
	Vacation  bool   `json:"vacation"`
	Debug     bool   `json:"debug"`
}

func settingsToDTO(s Settings) SettingsDTO {
	return SettingsDTO{
		WeekStart: s.WeekStart.String(),
		Vacation:  s.Vacation,
		Debug:     s.Debug,
	}
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.service.Get(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, settingsToDTO(current))
}

// Update godoc
// @Summary Update the settings
// @Description Changing weekStart renumbers the weekdays so that the chosen day gets ordinal 0.
// @Tags Settings
// @Accept json
// @Produce json
// @Param settings body SettingsDTO true "Settings"
// @Success 200 {object} SettingsDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/settings [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var body SettingsDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	updated, err := h.service.Update(r.Context(), SettingsDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, settingsToDTO(updated))
}
