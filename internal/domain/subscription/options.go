package subscription

import "github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithLogger sets the logger for lifecycle diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithAppName sets the application name reported in InstanceCreated.
func WithAppName(name string) Option {
	return func(m *Manager) {
		m.appName = name
	}
}

// WithUserAgent sets the user agent reported in InstanceCreated.
func WithUserAgent(ua string) Option {
	return func(m *Manager) {
		m.userAgent = ua
	}
}
