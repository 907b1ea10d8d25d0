package sharing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classon/classon/pkg/subject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ImportAndExportSubjects(t *testing.T) {
	s, _, _, _ := setupServiceTest(t)
	handler := NewHandler(s)

	req := httptest.NewRequest(http.MethodPost, "/api/share/subjects", bytes.NewBufferString(mathPayload))
	w := httptest.NewRecorder()
	handler.ImportSubjects(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var imported []subject.SubjectDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&imported))
	require.Len(t, imported, 1)
	assert.Len(t, imported[0].Teachers, 2)

	req = httptest.NewRequest(http.MethodGet, "/api/share/subjects", nil)
	w = httptest.NewRecorder()
	handler.ExportSubjects(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, mathPayload, w.Body.String())
}

func TestHandler_ImportMalformedPeriods(t *testing.T) {
	s, _, _, _ := setupServiceTest(t)
	handler := NewHandler(s)

	req := httptest.NewRequest(http.MethodPost, "/api/share/periods", bytes.NewBufferString(`{"index":`))
	w := httptest.NewRecorder()
	handler.ImportPeriods(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
