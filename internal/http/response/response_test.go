package response

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/connectapp/connect-server/internal/errors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	JSON(w, http.StatusOK, []string{"a", "b"}, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `["a","b"]`, w.Body.String())
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusCreated, map[string]int{"n": 1}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()

	MethodNotAllowed(w, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        domainerrors.NotFoundf("user %d not found", 4),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "validation with details",
			err:        domainerrors.ValidationWithDetails("validation failed", map[string]string{"email": "is required"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "storage",
			err:        domainerrors.Storage(errors.New("disk"), "persist suggestions"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORAGE",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, slog.New(slog.DiscardHandler))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}
