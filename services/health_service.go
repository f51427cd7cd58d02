package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is anything that can report whether its backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ComponentCheck reports the status of one component.
type ComponentCheck func(ctx context.Context) types.HealthComponent

type namedCheck struct {
	name  string
	check ComponentCheck
}

type HealthService struct {
	mu        sync.RWMutex
	checks    []namedCheck
	version   string
	startTime time.Time
	log       *zap.SugaredLogger
}

func NewHealthService(version string) *HealthService {
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger(),
	}
}

// Register adds a component check. A later check with the same name
// replaces the earlier one.
func (h *HealthService) Register(name string, check ComponentCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.checks {
		if h.checks[i].name == name {
			h.checks[i].check = check
			return
		}
	}
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// CheckHealth runs every registered check. The overall status is the worst
// component status.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	h.mu.RLock()
	checks := append([]namedCheck{}, h.checks...)
	h.mu.RUnlock()

	components := make(map[string]types.HealthComponent, len(checks))
	overallStatus := types.HealthStatusUp

	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		started := time.Now()
		status := c.check(checkCtx)
		status.LatencyMs = time.Since(started).Milliseconds()
		cancel()

		components[c.name] = status
		overallStatus = overallStatus.Worse(status.Status)
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

// Components lists the registered component names in order.
func (h *HealthService) Components() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.checks))
	for _, c := range h.checks {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// PingCheck reports DOWN when p does not answer.
func PingCheck(name string, p Pinger) ComponentCheck {
	log := logger.GetLogger()
	return func(ctx context.Context) types.HealthComponent {
		if err := p.Ping(ctx); err != nil {
			log.Errorw("Health check failed", "component", name, "error", err)
			return types.HealthComponent{
				Status:  types.HealthStatusDown,
				Details: name + " connection failed",
			}
		}
		return types.HealthComponent{Status: types.HealthStatusUp}
	}
}

// ConfiguredCheck reports DEGRADED for an optional adapter without
// credentials. The planner keeps working without it.
func ConfiguredCheck(enabled func() bool) ComponentCheck {
	return func(ctx context.Context) types.HealthComponent {
		if !enabled() {
			return types.HealthComponent{
				Status:  types.HealthStatusDegraded,
				Details: "not configured",
			}
		}
		return types.HealthComponent{Status: types.HealthStatusUp}
	}
}

// QueueCheck reports DEGRADED when a queue is more than 80% full.
func QueueCheck(depth func() int, capacity int) ComponentCheck {
	return func(ctx context.Context) types.HealthComponent {
		if capacity > 0 && float64(depth())/float64(capacity) > 0.8 {
			return types.HealthComponent{
				Status:  types.HealthStatusDegraded,
				Details: "Write queue near capacity",
			}
		}
		return types.HealthComponent{Status: types.HealthStatusUp}
	}
}
