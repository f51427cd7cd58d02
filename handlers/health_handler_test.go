package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/services"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

func setupHealthRouter(check services.ComponentCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	hs := services.NewHealthService("1.2.3")
	hs.Register("store", check)
	h := NewHealthHandler(hs)

	r := gin.New()
	r.GET("/health", h.DetailedHealth)
	r.GET("/health/liveness", h.LivenessCheck)
	r.GET("/health/readiness", h.ReadinessCheck)
	return r
}

func staticCheck(status types.HealthStatus) services.ComponentCheck {
	return func(ctx context.Context) types.HealthComponent {
		return types.HealthComponent{Status: status}
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name              string
		status            types.HealthStatus
		readinessStatus   int
		detailedHTTPState int
	}{
		{"up", types.HealthStatusUp, http.StatusOK, http.StatusOK},
		{"degraded is still ready", types.HealthStatusDegraded, http.StatusOK, http.StatusOK},
		{"down", types.HealthStatusDown, http.StatusServiceUnavailable, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupHealthRouter(staticCheck(tt.status))

			w := doJSON(t, r, http.MethodGet, "/health/liveness", nil)
			assert.Equal(t, http.StatusOK, w.Code)

			w = doJSON(t, r, http.MethodGet, "/health/readiness", nil)
			assert.Equal(t, tt.readinessStatus, w.Code)

			w = doJSON(t, r, http.MethodGet, "/health", nil)
			require.Equal(t, tt.detailedHTTPState, w.Code)
			var body types.HealthCheck
			decode(t, w, &body)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Contains(t, body.Components, "store")
		})
	}
}
