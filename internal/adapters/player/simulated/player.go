// Package simulated provides an in-memory media player that implements the
// player contract. It dispatches events synchronously on the caller's
// goroutine, in registration order, matching a single-threaded host loop.
package simulated

import (
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/player"
)

// State is the accessor-visible state of the player.
type State struct {
	Version    string
	Options    player.Options
	Source     string
	Position   float64
	Live       bool
	Duration   float64
	Tech       string
	Protection []player.ProtectionInfo
}

// bus is an ordered listener table shared by the player and its buffers.
type bus struct {
	listeners map[player.EventName][]player.Handler
}

func newBus() bus {
	return bus{listeners: make(map[player.EventName][]player.Handler)}
}

// AddEventListener implements player.EventTarget.
func (b *bus) AddEventListener(name player.EventName, h player.Handler) {
	if h == nil {
		return
	}
	b.listeners[name] = append(b.listeners[name], h)
}

// ListenerCount reports how many listeners are registered for name.
func (b *bus) ListenerCount(name player.EventName) int {
	return len(b.listeners[name])
}

// Emit dispatches ev to the listeners of name.
func (b *bus) Emit(name player.EventName, ev player.Event) {
	b.emit(name, ev)
}

func (b *bus) emit(name player.EventName, ev player.Event) {
	if ev.Type == "" {
		ev.Type = string(name)
	}
	// Snapshot so listeners added during dispatch fire from the next emission.
	hs := append([]player.Handler(nil), b.listeners[name]...)
	for _, h := range hs {
		h(ev)
	}
}

// Player is an in-memory player.
type Player struct {
	bus
	state   State
	ready   bool
	pending []func()
	err     *player.MediaError
	audio   *Buffer
	video   *Buffer
}

// Option applies a configuration option to the Player.
type Option func(*Player)

// WithState sets the initial accessor state.
func WithState(s State) Option {
	return func(p *Player) {
		p.state = s
	}
}

// WithAudioBuffer attaches an audio buffer source.
func WithAudioBuffer() Option {
	return func(p *Player) {
		p.audio = NewBuffer()
	}
}

// WithVideoBuffer attaches a video buffer source.
func WithVideoBuffer() Option {
	return func(p *Player) {
		p.video = NewBuffer()
	}
}

// New creates a Player that is not yet ready.
func New(opts ...Option) *Player {
	p := &Player{bus: newBus()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ready implements player.Player. Callbacks registered after the player
// became ready run immediately.
func (p *Player) Ready(fn func()) {
	if fn == nil {
		return
	}
	if p.ready {
		fn()
		return
	}
	p.pending = append(p.pending, fn)
}

// SignalReady marks the player ready and runs pending callbacks once.
func (p *Player) SignalReady() {
	if p.ready {
		return
	}
	p.ready = true
	pending := p.pending
	p.pending = nil
	for _, fn := range pending {
		fn()
	}
}

// IsReady reports whether SignalReady was called.
func (p *Player) IsReady() bool { return p.ready }

// LoadMetadata dispatches the loadedmetadata milestone.
func (p *Player) LoadMetadata() {
	p.emit(player.EventLoadedMetadata, player.Event{})
}

// Fail records err as the current error and dispatches an error event.
func (p *Player) Fail(code int, message string) {
	p.err = &player.MediaError{Code: code, Message: message}
	p.emit(player.EventError, player.Event{Message: message})
}

// ClearError drops the current error.
func (p *Player) ClearError() { p.err = nil }

// SetPosition moves the playhead.
func (p *Player) SetPosition(pos float64) { p.state.Position = pos }

// Audio returns the audio buffer, nil when absent.
func (p *Player) Audio() *Buffer { return p.audio }

// Video returns the video buffer, nil when absent.
func (p *Player) Video() *Buffer { return p.video }

// Version implements player.Player.
func (p *Player) Version() string { return p.state.Version }

// Options implements player.Player.
func (p *Player) Options() player.Options { return p.state.Options }

// CurrentSrc implements player.Player.
func (p *Player) CurrentSrc() string { return p.state.Source }

// CurrentTime implements player.Player.
func (p *Player) CurrentTime() float64 { return p.state.Position }

// IsLive implements player.Player.
func (p *Player) IsLive() bool { return p.state.Live }

// Duration implements player.Player.
func (p *Player) Duration() float64 { return p.state.Duration }

// CurrentTechName implements player.Player.
func (p *Player) CurrentTechName() string { return p.state.Tech }

// ProtectionInfo implements player.Player.
func (p *Player) ProtectionInfo() []player.ProtectionInfo {
	return append([]player.ProtectionInfo(nil), p.state.Protection...)
}

// Error implements player.Player.
func (p *Player) Error() (player.MediaError, bool) {
	if p.err == nil {
		return player.MediaError{}, false
	}
	return *p.err, true
}

// AudioBufferData implements player.Player.
func (p *Player) AudioBufferData() (player.BufferData, bool) {
	if p.audio == nil {
		return nil, false
	}
	return p.audio, true
}

// VideoBufferData implements player.Player.
func (p *Player) VideoBufferData() (player.BufferData, bool) {
	if p.video == nil {
		return nil, false
	}
	return p.video, true
}

// Buffer is an in-memory buffer-data source.
type Buffer struct {
	bus
	level  float64
	failed *player.DownloadFailure
}

// NewBuffer creates an empty buffer source.
func NewBuffer() *Buffer {
	return &Buffer{bus: newBus()}
}

// SetLevel sets the reported buffer level.
func (b *Buffer) SetLevel(level float64) { b.level = level }

// FailDownload records the failure and dispatches downloadfailed.
func (b *Buffer) FailDownload(url string, code int, message string) {
	b.failed = &player.DownloadFailure{Code: code, Message: message, Download: player.MediaDownload{URL: url}}
	b.emit(player.BufferEventDownloadFailed, player.Event{Message: message})
}

// BufferLevel implements player.BufferData.
func (b *Buffer) BufferLevel() float64 { return b.level }

// DownloadFailed implements player.BufferData.
func (b *Buffer) DownloadFailed() (player.DownloadFailure, bool) {
	if b.failed == nil {
		return player.DownloadFailure{}, false
	}
	return *b.failed, true
}

var (
	_ player.Player     = (*Player)(nil)
	_ player.BufferData = (*Buffer)(nil)
)
