package utils_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashion-store/services"
	"fashion-store/utils"
)

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not_found", err: services.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "forbidden", err: services.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "conflict", err: services.ErrConflict, wantStatus: http.StatusConflict},
		{name: "validation", err: services.ErrValidation, wantStatus: http.StatusBadRequest},
		{name: "insufficient_stock", err: services.ErrInsufficientStock, wantStatus: http.StatusBadRequest},
		{name: "insufficient_balance", err: services.ErrInsufficientBalance, wantStatus: http.StatusBadRequest},
		{name: "invalid_transition", err: services.ErrInvalidTransition, wantStatus: http.StatusBadRequest},
		{name: "wrapped_sentinel", err: fmt.Errorf("%w: shirt size M", services.ErrInsufficientStock), wantStatus: http.StatusBadRequest},
		{name: "unexpected", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			utils.RespondError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp utils.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.RespondError(rec, errors.New("dial tcp 10.0.0.3:27017: i/o timeout"))

	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestRespondData_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.RespondData(rec, http.StatusCreated, "created", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "created", resp.Message)
	assert.Equal(t, map[string]interface{}{"id": "abc"}, resp.Data)
}
