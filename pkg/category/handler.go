package category

import (
	"net/http"
	"time"

	"github.com/classon/classon/internal/rest"
	"github.com/google/uuid"
)

type AlarmDTO struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TriggerAt time.Time `json:"triggerAt"`
	Fired     bool      `json:"fired"`
}

type EventDTO struct {
	Id              uuid.UUID  `json:"id"`
	CategoryId      uuid.UUID  `json:"categoryId"`
	Position        int        `json:"position"`
	Name            string     `json:"name"`
	Date            time.Time  `json:"date"`
	AllDay          bool       `json:"allDay"`
	DurationMinutes int        `json:"durationMinutes"`
	NeedLoop        bool       `json:"needLoop"`
	LoopDays        int        `json:"loopDays"`
	Color           string     `json:"color"`
	Description     string     `json:"description"`
	Details         string     `json:"details"`
	IsReminder      bool       `json:"isReminder"`
	Tags            []string   `json:"tags"`
	Alarms          []AlarmDTO `json:"alarms"`
}

type CategoryDTO struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Position    int        `json:"position"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
	Events      []EventDTO `json:"events"`
}

type CategoryDraftDTO struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

type AlarmDraftDTO struct {
	Name      string    `json:"name"`
	TriggerAt time.Time `json:"triggerAt"`
}

type EventDraftDTO struct {
	Name            string          `json:"name"`
	Date            time.Time       `json:"date"`
	AllDay          bool            `json:"allDay"`
	DurationMinutes int             `json:"durationMinutes"`
	NeedLoop        bool            `json:"needLoop"`
	LoopDays        int             `json:"loopDays"`
	Color           string          `json:"color,omitempty"`
	Description     string          `json:"description,omitempty"`
	Details         string          `json:"details,omitempty"`
	IsReminder      bool            `json:"isReminder"`
	Tags            []string        `json:"tags,omitempty"`
	Alarms          []AlarmDraftDTO `json:"alarms,omitempty"`
}

type MoveDTO struct {
	Position int `json:"position"`
}

type DeletedDTO struct {
	DeletedEvents int `json:"deletedEvents"`
}

func EventToDTO(e Event) EventDTO {
	alarms := make([]AlarmDTO, 0, len(e.Alarms))
	for _, a := range e.Alarms {
		alarms = append(alarms, AlarmDTO{Id: a.Id, Name: a.Name, TriggerAt: a.TriggerAt, Fired: a.Fired})
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EventDTO{
		Id:              e.Id,
		CategoryId:      e.CategoryId,
		Position:        e.Position,
		Name:            e.Name,
		Date:            e.Date,
		AllDay:          e.AllDay,
		DurationMinutes: e.DurationMinutes,
		NeedLoop:        e.NeedLoop,
		LoopDays:        e.LoopDays,
		Color:           e.Color.Hex(),
		Description:     e.Description,
		Details:         e.Details,
		IsReminder:      e.IsReminder,
		Tags:            tags,
		Alarms:          alarms,
	}
}

func CategoryToDTO(c Category) CategoryDTO {
	events := make([]EventDTO, 0, len(c.Events))
	for _, e := range c.Events {
		events = append(events, EventToDTO(e))
	}
	return CategoryDTO{
		Id:          c.Id,
		Name:        c.Name,
		Position:    c.Position,
		Color:       c.Color.Hex(),
		Description: c.Description,
		Events:      events,
	}
}

func categoriesToDTOs(categories []Category) []CategoryDTO {
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryToDTO(c))
	}
	return dtos
}

func (d EventDraftDTO) toDraft() EventDraft {
	alarms := make([]AlarmDraft, 0, len(d.Alarms))
	for _, a := range d.Alarms {
		alarms = append(alarms, AlarmDraft(a))
	}
	return EventDraft{
		Name:            d.Name,
		Date:            d.Date,
		AllDay:          d.AllDay,
		DurationMinutes: d.DurationMinutes,
		NeedLoop:        d.NeedLoop,
		LoopDays:        d.LoopDays,
		Color:           d.Color,
		Description:     d.Description,
		Details:         d.Details,
		IsReminder:      d.IsReminder,
		Tags:            d.Tags,
		Alarms:          alarms,
	}
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, categoriesToDTOs(categories))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "categoryId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		rest.WriteServiceError(w, err, ErrCategoryNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, CategoryToDTO(category))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body CategoryDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	category, err := h.service.AddCategory(r.Context(), CategoryDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, CategoryToDTO(category))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "categoryId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}
	var body CategoryDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), id, CategoryDraft(body))
	if err != nil {
		rest.WriteServiceError(w, err, ErrCategoryNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, CategoryToDTO(category))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Deletes the category together with its events and their alarms.
// @Tags Category
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} DeletedDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/category/{categoryId} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "categoryId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}
	deleted, err := h.service.DeleteCategory(r.Context(), id)
	if err != nil {
		rest.WriteServiceError(w, err, ErrCategoryNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DeletedDTO{DeletedEvents: deleted})
}

func (h *Handler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "categoryId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}
	var body MoveDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	categories, err := h.service.MoveCategory(r.Context(), id, body.Position)
	if err != nil {
		rest.WriteServiceError(w, err, ErrCategoryNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, categoriesToDTOs(categories))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		rest.WriteServiceError(w, err)
		return
	}
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		rest.WriteServiceError(w, err, ErrEventNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(event))
}

// CreateEvent godoc
// @Summary Add an event to a category
// @Description An event without a color takes the color of its category.
// @Tags Category
// @Accept json
// @Produce json
// @Param categoryId path string true "Category ID"
// @Param event body EventDraftDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/category/{categoryId}/event [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	categoryId, err := rest.PathId(r, "categoryId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category id", err.Error())
		return
	}
	var body EventDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	event, err := h.service.AddEvent(r.Context(), categoryId, body.toDraft())
	if err != nil {
		rest.WriteServiceError(w, err, ErrCategoryNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	var body EventDraftDTO
	if !rest.DecodeJSON(w, r, &body) {
		return
	}
	event, err := h.service.UpdateEvent(r.Context(), id, body.toDraft())
	if err != nil {
		rest.WriteServiceError(w, err, ErrEventNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.PathId(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		rest.WriteServiceError(w, err, ErrEventNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
