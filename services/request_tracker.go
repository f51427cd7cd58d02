package services

import (
	"sync"

	"github.com/NomadCrew/nomad-crew-planner/errors"
)

// RequestTracker implements last-request-wins per key. Every request takes a
// token; only the holder of the latest token may apply its response.
type RequestTracker struct {
	mu      sync.Mutex
	seq     uint64
	current map[string]*trackedRequest
}

type trackedRequest struct {
	token uint64
	done  bool
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{current: make(map[string]*trackedRequest)}
}

// Begin issues a token for key and supersedes any earlier one.
func (t *RequestTracker) Begin(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current[key] = &trackedRequest{token: t.seq}
	return t.seq
}

// IsCurrent reports whether token is still the latest for key.
func (t *RequestTracker) IsCurrent(key string, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.current[key]
	return ok && r.token == token
}

// Finish marks the request done and reports whether it was still current.
// A superseded request leaves the in-flight state of its successor alone.
func (t *RequestTracker) Finish(key string, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.current[key]
	if !ok || r.token != token {
		return false
	}
	r.done = true
	return true
}

// InFlight reports whether the latest request for key has not finished.
func (t *RequestTracker) InFlight(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.current[key]
	return ok && !r.done
}

// Forget drops all state for key. Outstanding tokens become stale.
func (t *RequestTracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.current, key)
}

// errSuperseded is returned to a caller whose response arrived after a newer
// request for the same target was issued.
func errSuperseded(kind string) error {
	return errors.NewConflictError("request superseded", "a newer "+kind+" request replaced this one")
}
