package plugin

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"
)

// Option applies an installation option.
type Option func(*installConfig)

type installConfig struct {
	logger logger.Logger
	tracer trace.Tracer
}

// WithLogger sets the logger used by the plugin.
func WithLogger(l logger.Logger) Option {
	return func(c *installConfig) {
		c.logger = l
	}
}

// WithTracer sets the tracer wrapping record deliveries.
func WithTracer(t trace.Tracer) Option {
	return func(c *installConfig) {
		c.tracer = t
	}
}
