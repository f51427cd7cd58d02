package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthStatusWorse(t *testing.T) {
	tests := []struct {
		a, b, want HealthStatus
	}{
		{HealthStatusUp, HealthStatusUp, HealthStatusUp},
		{HealthStatusUp, HealthStatusDegraded, HealthStatusDegraded},
		{HealthStatusDegraded, HealthStatusUp, HealthStatusDegraded},
		{HealthStatusDegraded, HealthStatusDown, HealthStatusDown},
		{HealthStatusDown, HealthStatusDegraded, HealthStatusDown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Worse(tt.b), "%s vs %s", tt.a, tt.b)
	}
}
