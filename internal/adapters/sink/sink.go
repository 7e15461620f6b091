// Package sink delivers diagnostic records to a caller-supplied callback.
//
// Delivery is synchronous and unguarded: a panicking callback interrupts the
// current event dispatch, and the adapter never retries.
package sink

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/record"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/metrics"
)

const (
	tracerName      = "ampdiag/sink"
	deliverSpanName = "diagnostics.deliver"
	nanosPerMilli   = 1e6
)

// Callback receives one record per observed occurrence. It takes ownership of
// the record.
type Callback func(record.Record)

// Adapter holds the callback and delivers records to it.
type Adapter struct {
	cb     Callback
	logger logger.Logger
	tracer trace.Tracer
}

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used by the default callback.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTracer sets the tracer wrapping each delivery in a span.
func WithTracer(t trace.Tracer) Option {
	return func(a *Adapter) {
		if t != nil {
			a.tracer = t
		}
	}
}

// New creates an Adapter. A nil callback falls back to Default.
func New(cb Callback, opts ...Option) *Adapter {
	a := &Adapter{
		cb:     cb,
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logger.New(os.Stdout)
	}
	if a.cb == nil {
		a.cb = Default(a.logger)
	}
	return a
}

// Deliver invokes the callback exactly once with rec.
func (a *Adapter) Deliver(ctx context.Context, rec record.Record) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := a.tracer.Start(ctx, deliverSpanName, trace.WithAttributes(
		attribute.String("diagnostics.event_id", string(rec.EventID)),
		attribute.Int("diagnostics.level", int(rec.Level)),
	))
	defer span.End()

	metrics.RecordDelivered(string(rec.EventID), int(rec.Level))

	start := time.Now()
	a.cb(rec)
	metrics.RecordDeliveryLatency(float64(time.Since(start).Nanoseconds()) / nanosPerMilli)
}

// Default returns the fallback callback, which prints each record through l.
func Default(l logger.Logger) Callback {
	if l == nil {
		l = logger.New(os.Stdout)
	}
	return func(rec record.Record) {
		l.Info(context.Background(), "default diagnostics logger callback",
			logger.String("eventId", string(rec.EventID)),
			logger.Int("level", int(rec.Level)),
			logger.Any("data", map[string]any(rec.Data)),
		)
	}
}
