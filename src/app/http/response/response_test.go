package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookoff/src/core/domain"
)

func TestFromDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.NewNotFoundError("round"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", domain.NewValidationError("score", "score must be between 1 and 10"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"duplicate submission", domain.NewDuplicateSubmissionError(), http.StatusConflict, "DUPLICATE_SUBMISSION"},
		{"duplicate rating", domain.NewDuplicateRatingError(), http.StatusConflict, "DUPLICATE_RATING"},
		{"self rating", domain.NewSelfRatingError(), http.StatusForbidden, "SELF_RATING_FORBIDDEN"},
		{"round not open", domain.NewRoundNotOpenError(domain.RoundFinalized), http.StatusConflict, "ROUND_NOT_OPEN"},
		{"conflict", domain.NewConflictError("another round is already open"), http.StatusConflict, "CONFLICT"},
		{"unauthorized", domain.NewUnauthorizedError("missing identity"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"store unavailable", domain.NewStoreError("list ratings", errors.New("connection refused")), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromDomainError(c, tt.err, "req-123")

			assert.Equal(t, tt.wantStatus, w.Code)

			var body Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "req-123", body.Error.RequestID)
		})
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromDomainError(c, domain.NewValidationError("display_name", "display name required"), "req-9")

	var body Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "display_name", body.Error.Field)
}
