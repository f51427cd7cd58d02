// Package services provides the adapters and background workers that sit
// between the trip model and the outside world.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/NomadCrew/nomad-crew-planner/config"
	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

type writeKind string

const (
	writeSave   writeKind = "save"
	writeDelete writeKind = "delete"
)

// pendingWrite is the latest unwritten state of one trip. A newer write for
// the same trip replaces an older one that has not started yet.
type pendingWrite struct {
	kind writeKind
	trip *types.Trip
}

// PersistenceWriter applies trip snapshots to the store in the background.
// Callers never wait for it: writes to one trip are serialized and coalesced,
// failures are logged and counted but not retried, and the in-memory state
// stays authoritative.
type PersistenceWriter struct {
	store   store.TripStore
	queue   chan string
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.SugaredLogger
	metrics *persistenceMetrics
	config  config.PersistenceConfig

	mu      sync.Mutex
	running bool
	closed  bool
	pending map[string]pendingWrite
	queued  map[string]bool
	writing map[string]bool
}

type persistenceMetrics struct {
	queueDepth    prometheus.Gauge
	writes        *prometheus.CounterVec
	droppedWrites prometheus.Counter
	writeDuration prometheus.Histogram
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	pwMetricsInstance *persistenceMetrics
	pwMetricsOnce     sync.Once
	pwDefaultRegistry = prometheus.DefaultRegisterer
)

func newPersistenceMetrics() *persistenceMetrics {
	pwMetricsOnce.Do(func() {
		pwMetricsInstance = &persistenceMetrics{
			queueDepth: promauto.With(pwDefaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "planner_persistence_queue_depth",
				Help: "Trips waiting to be written",
			}),
			writes: promauto.With(pwDefaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "planner_persistence_writes_total",
				Help: "Store writes by operation and outcome",
			}, []string{"op", "outcome"}),
			droppedWrites: promauto.With(pwDefaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "planner_persistence_dropped_writes_total",
				Help: "Writes submitted after shutdown",
			}),
			writeDuration: promauto.With(pwDefaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "planner_persistence_write_duration_seconds",
				Help:    "Time taken by a single store write",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}),
		}
	})
	return pwMetricsInstance
}

// resetPersistenceMetricsForTesting resets the metrics singleton for test isolation.
func resetPersistenceMetricsForTesting() {
	pwDefaultRegistry = prometheus.NewRegistry()
	pwMetricsInstance = nil
	pwMetricsOnce = sync.Once{}
}

// NewPersistenceWriter creates a writer for s. It must be started with
// Start before writes are applied.
func NewPersistenceWriter(s store.TripStore, cfg config.PersistenceConfig) *PersistenceWriter {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.WriteTimeoutSeconds <= 0 {
		cfg.WriteTimeoutSeconds = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PersistenceWriter{
		store:   s,
		queue:   make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.GetLogger().Named("persistence"),
		metrics: newPersistenceMetrics(),
		config:  cfg,
		pending: make(map[string]pendingWrite),
		queued:  make(map[string]bool),
		writing: make(map[string]bool),
	}
}

// Start launches the writer goroutines. Calling Start more than once is safe.
func (w *PersistenceWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.closed {
		w.logger.Warn("Persistence writer already started")
		return
	}
	w.running = true

	w.logger.Infow("Starting persistence writer",
		"maxWorkers", w.config.MaxWorkers,
		"queueSize", w.config.QueueSize)

	for i := 0; i < w.config.MaxWorkers; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}
}

// Save schedules a write of the trip snapshot. It never blocks.
func (w *PersistenceWriter) Save(trip *types.Trip) {
	if trip == nil || trip.ID == "" {
		return
	}
	w.submit(trip.ID, pendingWrite{kind: writeSave, trip: trip})
}

// Delete schedules removal of the trip. It never blocks.
func (w *PersistenceWriter) Delete(tripID string) {
	if tripID == "" {
		return
	}
	w.submit(tripID, pendingWrite{kind: writeDelete})
}

func (w *PersistenceWriter) submit(tripID string, op pendingWrite) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.metrics.droppedWrites.Inc()
		w.logger.Warnw("Write dropped - writer shut down", "tripID", tripID, "op", op.kind)
		return
	}

	w.pending[tripID] = op
	if w.queued[tripID] || w.writing[tripID] {
		return
	}

	select {
	case w.queue <- tripID:
		w.queued[tripID] = true
		w.metrics.queueDepth.Inc()
	default:
		// Stays pending; the next submit for this trip or Shutdown picks it up.
		w.logger.Warnw("Write queue full, deferring", "tripID", tripID, "queueSize", w.config.QueueSize)
	}
}

func (w *PersistenceWriter) worker(id int) {
	defer w.wg.Done()
	w.logger.Debugw("Writer started", "workerId", id)

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debugw("Writer stopping (context cancelled)", "workerId", id)
			return
		case tripID, ok := <-w.queue:
			if !ok {
				w.logger.Debugw("Writer stopping (channel closed)", "workerId", id)
				return
			}
			w.mu.Lock()
			w.queued[tripID] = false
			w.mu.Unlock()
			w.metrics.queueDepth.Dec()
			w.drain(tripID)
		}
	}
}

// drain writes the pending state of tripID until none is left. Only one
// goroutine drains a given trip at a time.
func (w *PersistenceWriter) drain(tripID string) {
	for {
		w.mu.Lock()
		op, ok := w.pending[tripID]
		if !ok || w.writing[tripID] {
			w.mu.Unlock()
			return
		}
		delete(w.pending, tripID)
		w.writing[tripID] = true
		w.mu.Unlock()

		w.apply(tripID, op)

		w.mu.Lock()
		delete(w.writing, tripID)
		w.mu.Unlock()
	}
}

func (w *PersistenceWriter) apply(tripID string, op pendingWrite) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(w.ctx, time.Duration(w.config.WriteTimeoutSeconds)*time.Second)
	defer cancel()

	var err error
	switch op.kind {
	case writeDelete:
		err = w.store.Delete(ctx, tripID)
	default:
		_, err = w.store.Save(ctx, op.trip)
	}

	w.metrics.writeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		w.metrics.writes.WithLabelValues(string(op.kind), "error").Inc()
		w.logger.Errorw("Trip write failed",
			"tripID", tripID,
			"op", op.kind,
			"error", err,
			"duration", time.Since(start))
		return
	}
	w.metrics.writes.WithLabelValues(string(op.kind), "ok").Inc()
	w.logger.Debugw("Trip written", "tripID", tripID, "op", op.kind, "duration", time.Since(start))
}

// Flush blocks until every submitted write has been applied or ctx ends.
func (w *PersistenceWriter) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if w.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.kick()
		}
	}
}

func (w *PersistenceWriter) idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) == 0 && len(w.writing) == 0
}

// kick requeues pending trips that could not be queued earlier.
func (w *PersistenceWriter) kick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	for tripID := range w.pending {
		if w.queued[tripID] || w.writing[tripID] {
			continue
		}
		select {
		case w.queue <- tripID:
			w.queued[tripID] = true
			w.metrics.queueDepth.Inc()
		default:
			return
		}
	}
}

// Shutdown stops accepting writes and waits for queued ones to finish.
// Writes still pending after the workers exit are applied inline. If ctx
// ends first, outstanding store calls are cancelled and ctx.Err is returned.
func (w *PersistenceWriter) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	wasRunning := w.running
	w.running = false
	close(w.queue)
	w.mu.Unlock()

	w.logger.Info("Initiating persistence writer shutdown...")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		if !wasRunning {
			for tripID := range w.queue {
				w.metrics.queueDepth.Dec()
				w.drain(tripID)
			}
		}
		for _, tripID := range w.pendingIDs() {
			w.drain(tripID)
		}
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		w.logger.Info("Persistence writer shutdown complete")
		return nil
	case <-ctx.Done():
		w.cancel()
		w.logger.Warn("Persistence writer shutdown timed out - pending writes abandoned")
		return ctx.Err()
	}
}

func (w *PersistenceWriter) pendingIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(w.pending))
	for id := range w.pending {
		ids = append(ids, id)
	}
	return ids
}

// QueueDepth returns the number of trips waiting in the queue.
func (w *PersistenceWriter) QueueDepth() int {
	return len(w.queue)
}

// IsRunning reports whether the writer is accepting work.
func (w *PersistenceWriter) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
