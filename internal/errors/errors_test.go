package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Render(t *testing.T) {
	apiErr := NotFoundError("corpus 9")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/corpora/9", nil)
	require.NoError(t, render.Render(w, r, apiErr))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.ErrorCode)
	assert.Equal(t, "corpus 9 not found", body.Message)
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid parameter", InvalidParameter("corpus id", "abc"), http.StatusBadRequest, "INVALID_PARAMETER"},
		{"not found", NotFoundError("step"), http.StatusNotFound, "NOT_FOUND"},
		{"operation running", OperationRunning("tweets"), http.StatusConflict, "OPERATION_RUNNING"},
		{"plain", New(http.StatusTeapot, "TEAPOT", "short and stout"), http.StatusTeapot, "TEAPOT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"api error passes through", fmt.Errorf("wrap: %w", OperationRunning("x")), http.StatusConflict},
		{"validation", NewAppValidationError("bad"), http.StatusBadRequest},
		{"not found", NewNotFoundError("corpus"), http.StatusNotFound},
		{"conflict", NewConflictError("busy"), http.StatusConflict},
		{"network", NewNetworkError("yahoo", errors.New("eof")), http.StatusBadGateway},
		{"storage", NewStorageError("disk", nil), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, FromError(tt.err).StatusCode)
		})
	}
}

func newTestHandler(includeStack bool) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), includeStack)
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"conflict", NewConflictError("busy"), http.StatusConflict, TypeConflict},
		{"not found", NewNotFoundError("corpus 3"), http.StatusNotFound, TypeNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"internal", errors.New("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/operations/aggregate", nil)

			newTestHandler(false).HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/operations/aggregate", body["instance"])
			assert.Contains(t, body, "trace_id")
		})
	}
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	newTestHandler(false).HandleError(w, r, errors.New("secret path /etc/x"))

	assert.NotContains(t, decodeProblem(t, w), "details")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	h := newTestHandler(false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decodeProblem(t, w)["detail"], "DELETE")
}

func TestErrorHandler_Recoverer(t *testing.T) {
	h := newTestHandler(true)
	panicky := h.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	panicky.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, "kaboom", body["panic"])
	assert.Contains(t, body, "stack")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusConflict, TypeConflict, "Conflict", "", "").
		WithExtension("code", "OPERATION_RUNNING").
		WithExtension("status", "ignored")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(http.StatusConflict), body["status"], "standard members win over extensions")
	assert.Equal(t, "OPERATION_RUNNING", body["code"])
	assert.NotContains(t, body, "detail")
}
