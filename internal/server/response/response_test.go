package response_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos/internal/server/response"
	"github.com/kodepos-id/kodepos/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, map[string]string{"postal_code": "40161"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"postal_code": "40161"}, resp.Data)
}

func TestNoHTMLEscaping(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, "Gampong <Baro> & Co")
	assert.Contains(t, rec.Body.String(), "Gampong <Baro> & Co")
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NewNotFoundError("village", "9999999999"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("lookup: %w", errors.NewNotFoundError("village", "1")), http.StatusNotFound, "NOT_FOUND"},
		{"validation", errors.NewValidationError("code", "x", "must be digits"), http.StatusBadRequest, "BAD_REQUEST"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.ErrorFromType(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	response.InternalError(rec, errors.New("dsn password=secret"))
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	response.MethodNotAllowed(rec, http.MethodPost)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Details, "POST")
}
