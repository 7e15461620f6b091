package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/player"
)

// Factory instantiates a named plugin on a player.
type Factory func(ctx context.Context, p player.Player, raw map[string]any) (any, error)

// Registry maps plugin names to factories, like a player host's plugin table.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	name = strings.TrimSpace(name)
	if name == "" || f == nil {
		return fmt.Errorf("%w: %q", ErrInvalidPlugin, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}
	r.factories[name] = f
	return nil
}

// Instantiate runs the factory registered under name.
func (r *Registry) Instantiate(ctx context.Context, name string, p player.Player, raw map[string]any) (any, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	return f(ctx, p, raw)
}

// Names lists registered plugin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterDiagnostics registers the diagnostics logger under Name. The
// instance returned by Instantiate is a *Plugin.
func RegisterDiagnostics(r *Registry, opts ...Option) error {
	return r.Register(Name, func(ctx context.Context, p player.Player, raw map[string]any) (any, error) {
		return Install(ctx, p, ParseOptions(raw), opts...), nil
	})
}
