package category

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*Handler, *ServiceImpl) {
	service := NewService(NewMemoryRepository())
	return NewHandler(service), service
}

func TestHandler_CreateEventInheritsCategoryColor(t *testing.T) {
	handler, service := setupHandlerTest(t)
	category, err := service.AddCategory(t.Context(), CategoryDraft{Name: "Health", Color: "#336699"})
	require.NoError(t, err)
	body, _ := json.Marshal(EventDraftDTO{
		Name:            "Dentist",
		Date:            time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Alarms:          []AlarmDraftDTO{{Name: "leave", TriggerAt: time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)}},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/category/x/event", bytes.NewBuffer(body))
	req = mux.SetURLVars(req, map[string]string{"categoryId": category.Id.String()})
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var event EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&event))
	assert.Equal(t, "#336699", event.Color)
	assert.Equal(t, category.Id, event.CategoryId)
	require.Len(t, event.Alarms, 1)
	assert.Equal(t, "leave", event.Alarms[0].Name)
	assert.Equal(t, []string{}, event.Tags)
}

func TestHandler_CreateEventInvalidLoop(t *testing.T) {
	handler, service := setupHandlerTest(t)
	category, err := service.AddCategory(t.Context(), CategoryDraft{Name: "Health"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/category/x/event",
		bytes.NewBufferString(`{"date":"2025-03-03T09:00:00Z","needLoop":true,"loopDays":0}`))
	req = mux.SetURLVars(req, map[string]string{"categoryId": category.Id.String()})
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteCategoryReportsEvents(t *testing.T) {
	handler, service := setupHandlerTest(t)
	category, err := service.AddCategory(t.Context(), CategoryDraft{Name: "Health"})
	require.NoError(t, err)
	_, err = service.AddEvent(t.Context(), category.Id, EventDraft{Date: time.Now()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/category/x", nil)
	req = mux.SetURLVars(req, map[string]string{"categoryId": category.Id.String()})
	w := httptest.NewRecorder()
	handler.DeleteCategory(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var deleted DeletedDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&deleted))
	assert.Equal(t, 1, deleted.DeletedEvents)
}

func TestHandler_GetEventNotFound(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/event/x", nil)
	req = mux.SetURLVars(req, map[string]string{"eventId": uuid.NewString()})
	w := httptest.NewRecorder()
	handler.GetEvent(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetCategoryInvalidId(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/category/x", nil)
	req = mux.SetURLVars(req, map[string]string{"categoryId": "not-a-uuid"})
	w := httptest.NewRecorder()
	handler.GetCategory(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
