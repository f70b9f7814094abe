package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accu-registry/apperrors"
)

func TestHealthEndpoint(t *testing.T) {
	controller := &SystemController{}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	controller.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", apperrors.NewNotFoundError("batch", 7), http.StatusNotFound, "NotFound"},
		{"validation", apperrors.NewValidationError("bad serial range"), http.StatusBadRequest, "ValidationError"},
		{"mismatch", apperrors.NewClassificationMismatchError("inventory", "fvtpl"), http.StatusBadRequest, "ClassificationMismatch"},
		{"state", apperrors.NewInvalidStateTransitionError("loan", "repaid", "repay"), http.StatusConflict, "InvalidStateTransition"},
		{"collateral", apperrors.NewInsufficientCollateralError(500, 400), http.StatusConflict, "InsufficientCollateral"},
		{"conflict", apperrors.NewConflictError("duplicate batch number"), http.StatusConflict, "ConflictError"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.kind, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, body["message"], assert.AnError.Error())
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/batches/42", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "42"})

	id, err := pathID(req)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	_, err = pathID(req)
	require.Error(t, err)
	assert.Equal(t, "ValidationError", apperrors.Kind(err))
}

func TestQueryUint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/marketdata?entityId=3", nil)

	v, err := queryUint(req, "entityId")
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)

	v, err = queryUint(req, "missing")
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)

	req = httptest.NewRequest(http.MethodGet, "/marketdata?entityId=oops", nil)
	_, err = queryUint(req, "entityId")
	require.Error(t, err)
}
