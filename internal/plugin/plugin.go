// Package plugin installs the diagnostics logger on a player.
package plugin

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/adapters/sink"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/player"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/record"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/subscription"
)

// Name is the name the plugin registers under.
const Name = "diagnosticsLogger"

// Version is reported in the default user agent.
const Version = "1.0.0"

// Options is the caller-facing configuration.
type Options struct {
	// Callback receives every record. Nil selects the default callback.
	Callback sink.Callback
	AppName  string
	// UserAgent defaults to DefaultUserAgent when empty.
	UserAgent string
}

// ParseOptions reads options from a loosely typed map. Values of the wrong
// type are ignored, so a non-function callback silently selects the default.
func ParseOptions(raw map[string]any) Options {
	var o Options
	if raw == nil {
		return o
	}
	switch cb := raw["callback"].(type) {
	case sink.Callback:
		o.Callback = cb
	case func(record.Record):
		o.Callback = cb
	}
	if name, ok := raw["appName"].(string); ok {
		o.AppName = name
	}
	if ua, ok := raw["userAgent"].(string); ok {
		o.UserAgent = ua
	}
	return o
}

// DefaultUserAgent describes the running process the way a browser user agent
// describes the page host.
func DefaultUserAgent() string {
	return fmt.Sprintf("ampdiag/%s (%s; %s) %s", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// Plugin is an installed diagnostics logger.
type Plugin struct {
	manager *subscription.Manager
	adapter *sink.Adapter
}

// Install wires the logger to p. It only registers listeners; no I/O happens
// until the player emits.
func Install(ctx context.Context, p player.Player, opts Options, extra ...Option) *Plugin {
	var cfg installConfig
	for _, opt := range extra {
		opt(&cfg)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent()
	}

	adapter := sink.New(opts.Callback, sink.WithLogger(cfg.logger), sink.WithTracer(cfg.tracer))
	manager := subscription.NewManager(ctx, p, adapter,
		subscription.WithLogger(cfg.logger),
		subscription.WithAppName(opts.AppName),
		subscription.WithUserAgent(ua),
	)
	manager.Attach()

	return &Plugin{manager: manager, adapter: adapter}
}

// State returns the lifecycle state of the subscription.
func (p *Plugin) State() subscription.State { return p.manager.State() }

// Listeners returns how many listeners the plugin registered.
func (p *Plugin) Listeners() int { return p.manager.Listeners() }
