package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/internal/store/redisstore"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

func TestNewHealthService(t *testing.T) {
	service := NewHealthService("1.0.0")

	assert.NotNil(t, service)
	assert.Equal(t, "1.0.0", service.version)
	assert.NotNil(t, service.log)
	assert.True(t, time.Since(service.startTime) < time.Second)
	assert.Empty(t, service.Components())
}

func TestCheckHealth_AllUp(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")

	service := NewHealthService("1.0.0")
	service.Register("store", PingCheck("store", redisstore.NewTripStore(client, "")))
	service.Register("places", ConfiguredCheck(func() bool { return true }))

	health := service.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusUp, health.Status)
	assert.Equal(t, "1.0.0", health.Version)
	assert.Equal(t, types.HealthStatusUp, health.Components["store"].Status)
	assert.Equal(t, types.HealthStatusUp, health.Components["places"].Status)
	assert.NotEmpty(t, health.Timestamp)
	assert.NotEmpty(t, health.Uptime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckHealth_StoreDown(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	service := NewHealthService("1.0.0")
	service.Register("store", PingCheck("store", redisstore.NewTripStore(client, "")))
	service.Register("gemini", ConfiguredCheck(func() bool { return false }))

	health := service.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusDown, health.Status)
	assert.Equal(t, "store connection failed", health.Components["store"].Details)
	assert.Equal(t, types.HealthStatusDegraded, health.Components["gemini"].Status)
}

func TestCheckHealth_PostgresPing(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectPing()
	pool.ExpectPing().WillReturnError(errors.New("db gone"))

	service := NewHealthService("1.0.0")
	service.Register("store", PingCheck("store", pool))

	assert.Equal(t, types.HealthStatusUp, service.CheckHealth(context.Background()).Status)
	assert.Equal(t, types.HealthStatusDown, service.CheckHealth(context.Background()).Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestCheckHealth_Degraded(t *testing.T) {
	depth := 9
	service := NewHealthService("1.0.0")
	service.Register("persistence", QueueCheck(func() int { return depth }, 10))
	service.Register("places", ConfiguredCheck(func() bool { return true }))

	health := service.CheckHealth(context.Background())
	assert.Equal(t, types.HealthStatusDegraded, health.Status)
	assert.Equal(t, "Write queue near capacity", health.Components["persistence"].Details)

	depth = 2
	assert.Equal(t, types.HealthStatusUp, service.CheckHealth(context.Background()).Status)
}

func TestRegister_ReplacesByName(t *testing.T) {
	service := NewHealthService("1.0.0")
	service.Register("b", ConfiguredCheck(func() bool { return false }))
	service.Register("a", ConfiguredCheck(func() bool { return true }))
	service.Register("b", ConfiguredCheck(func() bool { return true }))

	assert.Equal(t, []string{"a", "b"}, service.Components())
	assert.Equal(t, types.HealthStatusUp, service.CheckHealth(context.Background()).Status)
}
