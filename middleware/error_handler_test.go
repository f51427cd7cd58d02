package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/errors"
)

func serveError(t *testing.T, err error, errType gin.ErrorType) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandler())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err).SetType(errType)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	router.ServeHTTP(w, req)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorHandler_Taxonomy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedType   errors.ErrorType
		expectDetails  bool
	}{
		{"validation", errors.ValidationFailed("invalid activity", "start time is required"), http.StatusBadRequest, errors.ValidationError, true},
		{"timeout", errors.Timeout("places", context.DeadlineExceeded), http.StatusGatewayTimeout, errors.TimeoutError, true},
		{"service", errors.ServiceFailure("gemini", 503, "overloaded"), http.StatusBadGateway, errors.ServiceError, true},
		{"parse", errors.ParseFailed("gemini", stderrors.New("unexpected end of JSON input")), http.StatusUnprocessableEntity, errors.ParseError, true},
		{"not found", errors.NotFound("Trip", "t1"), http.StatusNotFound, errors.NotFoundError, true},
		{"conflict", errors.NewConflictError("request superseded", "newer request"), http.StatusConflict, errors.ConflictError, true},
		{"database", errors.NewDatabaseError(stderrors.New("pool closed")), http.StatusInternalServerError, errors.DatabaseError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serveError(t, tt.err, gin.ErrorTypePrivate)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, string(tt.expectedType), body.Type)
			assert.NotEmpty(t, body.Message)
			if tt.expectDetails {
				assert.NotEmpty(t, body.Details)
			} else {
				assert.Empty(t, body.Details)
			}
		})
	}
}

func TestErrorHandler_BindError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w, body := serveError(t, stderrors.New("Key: 'TripCreate.Destination' failed"), gin.ErrorTypeBind)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ValidationError), body.Type)
	assert.Equal(t, "Failed to bind request", body.Message)
}

func TestErrorHandler_UnknownError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w, body := serveError(t, stderrors.New("boom"), gin.ErrorTypePrivate)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(errors.ServerError), body.Type)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.Empty(t, body.Details)
}

func TestErrorHandler_NoError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/id", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "from-proxy")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "from-proxy", seen)
	assert.Equal(t, "from-proxy", w.Header().Get(RequestIDHeader))
}
