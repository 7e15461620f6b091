// Package player declares the contract the diagnostics logger consumes from a
// media player host. The player is read-only from the logger's point of view:
// only listener registration and accessor calls are made.
package player

// EventName identifies an event on a player or buffer-data event bus.
type EventName string

// Player event names.
const (
	EventError                  EventName = "error"
	EventLoadedMetadata         EventName = "loadedmetadata"
	EventPlaybackBitrateChanged EventName = "playbackbitratechanged"
	EventDownloadBitrateChanged EventName = "downloadbitratechanged"
	EventPlay                   EventName = "play"
	EventPlaying                EventName = "playing"
	EventSeeking                EventName = "seeking"
	EventSeeked                 EventName = "seeked"
	EventPause                  EventName = "pause"
	EventWaiting                EventName = "waiting"
	EventFullscreenChange       EventName = "fullscreenchange"
	EventCanPlayThrough         EventName = "canplaythrough"
	EventEnded                  EventName = "ended"
)

// Buffer-data event names.
const (
	BufferEventDownloadFailed EventName = "downloadfailed"
)

// Event is the payload passed to listeners.
type Event struct {
	Type string
	// PresentationTimeInSec is nil when the player did not attach one.
	PresentationTimeInSec *float64
	Message               string
}

// Handler receives events from an EventTarget.
type Handler func(Event)

// EventTarget is a named event bus.
type EventTarget interface {
	AddEventListener(name EventName, h Handler)
}

// Options is the subset of player options the logger reports.
type Options struct {
	Autoplay         bool
	HeuristicProfile string
	TechOrder        []string
}

// MediaError is the player's current error.
type MediaError struct {
	Code    int
	Message string
}

// ProtectionInfo describes one content-protection descriptor.
type ProtectionInfo struct {
	Type string
}

// MediaDownload describes the segment a buffer tried to fetch.
type MediaDownload struct {
	URL string
}

// DownloadFailure is the last failed download of a buffer.
type DownloadFailure struct {
	Code     int
	Message  string
	Download MediaDownload
}

// BufferData is an optional audio or video buffer source.
type BufferData interface {
	EventTarget
	BufferLevel() float64
	// DownloadFailed reports the last failure, false when none is recorded.
	DownloadFailed() (DownloadFailure, bool)
}

// Player is the host player instance.
type Player interface {
	EventTarget

	// Ready runs fn once the player is ready. Players invoke fn at most once
	// per registration.
	Ready(fn func())

	Version() string
	Options() Options
	CurrentSrc() string
	CurrentTime() float64
	IsLive() bool
	Duration() float64
	CurrentTechName() string
	ProtectionInfo() []ProtectionInfo

	// Error reports the current error, false when the player holds none.
	Error() (MediaError, bool)

	// AudioBufferData and VideoBufferData report false when the current
	// technology exposes no such source.
	AudioBufferData() (BufferData, bool)
	VideoBufferData() (BufferData, bool)
}
