package apperrors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHandler(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/jobs/1", nil)

	HandleError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleError_AppError(t *testing.T) {
	w, body := runHandler(t, ErrJobNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Job application not found", body["message"])
	assert.Equal(t, string(CodeNotFound), body["code"])
}

func TestHandleError_ValidationDetails(t *testing.T) {
	w, body := runHandler(t, ValidationError(map[string]string{"jobTitle": "This field is required"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "This field is required", errs["jobTitle"])
}

func TestHandleError_UnknownErrorHidesDetail(t *testing.T) {
	SetDebug(false)
	w, body := runHandler(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestHandleError_ExternalService(t *testing.T) {
	w, body := runHandler(t, ErrExternalService(errors.New("quota"), ServiceAI))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, string(CodeExternalServiceError), body["code"])
}

func TestWithDetailsDoesNotMutateShared(t *testing.T) {
	withDetails := ErrInvalidToken.WithDetails("expired")

	assert.Nil(t, ErrInvalidToken.Details)
	assert.Equal(t, "expired", withDetails.Details)
	assert.True(t, errors.Is(withDetails, ErrInvalidToken))
}
