// Package service replays scenarios against a simulated player with the
// diagnostics logger installed, and keeps statistics for the HTTP surface.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/adapters/sink"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/record"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/plugin"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/scenario"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/metrics"
)

// Service runs replays one at a time. Stats are safe to read concurrently
// with a replay.
type Service struct {
	mu sync.RWMutex
	// runMu keeps deliveries from two replays from interleaving in the sink.
	runMu sync.Mutex

	// Configuration
	appName   string
	userAgent string
	callback  sink.Callback
	tracer    trace.Tracer

	// State
	started        bool
	runs           int
	records        int
	recordsByEvent map[string]int
	state          string
	lastRunID      string

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAppName sets the application name reported by the plugin.
func WithAppName(name string) Option {
	return func(s *Service) {
		s.appName = name
	}
}

// WithUserAgent overrides the user agent reported by the plugin.
func WithUserAgent(ua string) Option {
	return func(s *Service) {
		s.userAgent = ua
	}
}

// WithCallback sets where replayed records are delivered. Without it the
// plugin's default callback is used.
func WithCallback(cb sink.Callback) Option {
	return func(s *Service) {
		s.callback = cb
	}
}

// WithTracer sets the tracer used for record deliveries.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		recordsByEvent: make(map[string]int),
		logger:         nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start prepares the service for replays.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.started = true
	s.logger.Info(ctx, "replay service started", logger.String("appName", s.appName))
	return nil
}

// Stop marks the service stopped. Stats are kept.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "replay service stopped", logger.Int("runs", s.runs))
}

// Replay installs the plugin on a fresh player built from sc, applies every
// step, and returns how many records were delivered.
func (s *Service) Replay(ctx context.Context, sc *scenario.Scenario) (int, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return 0, ErrNotStarted
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	runID := uuid.NewString()
	log := s.logger.Named("replay")
	log.Info(ctx, "replaying scenario",
		logger.String("runId", runID),
		logger.String("scenario", sc.Name),
		logger.Int("steps", len(sc.Steps)),
	)

	delivered := 0
	byEvent := make(map[string]int)
	target := s.callback
	if target == nil {
		target = sink.Default(s.logger)
	}
	counting := func(rec record.Record) {
		delivered++
		byEvent[string(rec.EventID)]++
		target(rec)
	}

	p := sc.NewPlayer()
	pl := plugin.Install(ctx, p, plugin.Options{
		Callback:  counting,
		AppName:   s.appName,
		UserAgent: s.userAgent,
	}, plugin.WithLogger(s.logger), plugin.WithTracer(s.tracer))

	steps, err := sc.Apply(ctx, p)

	metrics.RecordReplayRun()
	s.mu.Lock()
	s.runs++
	s.records += delivered
	for id, n := range byEvent {
		s.recordsByEvent[id] += n
	}
	s.state = pl.State().String()
	s.lastRunID = runID
	s.mu.Unlock()

	if err != nil {
		metrics.RecordReplayError()
		log.Error(ctx, "replay failed",
			logger.String("runId", runID),
			logger.Int("steps", steps),
			logger.Error(err),
		)
		return delivered, fmt.Errorf("replay %s: %w", sc.Name, err)
	}

	log.Info(ctx, "replay finished",
		logger.String("runId", runID),
		logger.Int("records", delivered),
		logger.String("state", pl.State().String()),
	)
	return delivered, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byEvent := make(map[string]int, len(s.recordsByEvent))
	for id, n := range s.recordsByEvent {
		byEvent[id] = n
	}

	return map[string]interface{}{
		"started":        s.started,
		"runs":           s.runs,
		"records":        s.records,
		"recordsByEvent": byEvent,
		"state":          s.state,
		"lastRunId":      s.lastRunID,
	}
}
