package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperr.NotFound("event not found"), http.StatusNotFound},
		{apperr.Conflict("already registered"), http.StatusConflict},
		{apperr.CapacityExceeded("event is full"), http.StatusConflict},
		{apperr.InvalidState("event already occurred"), http.StatusBadRequest},
		{apperr.InvalidArgument("bad input"), http.StatusBadRequest},
		{apperr.Forbidden("not yours"), http.StatusForbidden},
		{apperr.Unauthenticated("who are you"), http.StatusUnauthorized},
		{errors.New("pgx: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, tt.err)
		assert.Equal(t, tt.status, rec.Code, "error %v", tt.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestWriteErrorMasksInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"event_id":"e1","bogus":true}`))
	var req model.CreateRegistrationRequest
	err := decodeJSON(r, &req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"event_id":`))
	var req model.CreateRegistrationRequest
	err := decodeJSON(r, &req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestRequireAuthBlocksAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	actor := &model.User{ID: "u1", IsActive: true}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), actorKey, actor))
	rec = httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	})

	rec := httptest.NewRecorder()
	CORS(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/events", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
