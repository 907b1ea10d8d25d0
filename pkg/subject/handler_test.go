package subject

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classon/classon/internal/event_bus"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*Handler, *ServiceImpl) {
	service := NewService(NewMemoryRepository(), event_bus.NewEventBus())
	return NewHandler(service), service
}

func TestHandler_CreateAndList(t *testing.T) {
	handler, _ := setupHandlerTest(t)
	body, _ := json.Marshal(SubjectDraftDTO{Name: "Math", Color: "#00ff00", Teachers: []string{"Smith"}})

	req := httptest.NewRequest(http.MethodPost, "/api/subject", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/subject", nil)
	w = httptest.NewRecorder()
	handler.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var subjects []SubjectDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&subjects))
	require.Len(t, subjects, 1)
	assert.Equal(t, "#00FF00", subjects[0].Color)
	assert.Equal(t, "Smith", subjects[0].Teachers[0].Name)
}

func TestHandler_CreateInvalid(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/subject", bytes.NewBufferString(`{"name":""}`))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteTeacherNotFound(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/teacher/x", nil)
	req = mux.SetURLVars(req, map[string]string{"teacherId": uuid.NewString()})
	w := httptest.NewRecorder()
	handler.DeleteTeacher(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
