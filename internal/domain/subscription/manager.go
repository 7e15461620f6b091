// Package subscription drives listener registration on a player through its
// lifecycle milestones and turns each observed occurrence into a record.
//
// States advance Uninitialized -> Ready -> MetadataLoaded. Each milestone is
// honored once: a repeated ready or loadedmetadata signal is ignored, so the
// steady-state listeners are registered exactly once per player.
package subscription

import (
	"context"
	"io"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/player"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/record"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/metrics"
)

// State is a lifecycle state of the manager.
type State int

// Lifecycle states.
const (
	Uninitialized State = iota
	Ready
	MetadataLoaded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case MetadataLoaded:
		return "metadata_loaded"
	default:
		return "unknown"
	}
}

// Metric labels for registration targets and capabilities.
const (
	targetPlayer = "player"
	targetAudio  = "audio_buffer"
	targetVideo  = "video_buffer"
)

// Deliverer hands a finished record to the sink.
type Deliverer interface {
	Deliver(ctx context.Context, rec record.Record)
}

// steadyState maps each steady-state player event to the record kind it produces.
var steadyState = []struct {
	name player.EventName
	id   record.EventID
}{
	{player.EventPlaybackBitrateChanged, record.PlaybackBitrateChangedID},
	{player.EventDownloadBitrateChanged, record.DownloadBitrateChangedID},
	{player.EventPlay, record.PlayID},
	{player.EventPlaying, record.PlayingID},
	{player.EventSeeking, record.SeekingID},
	{player.EventSeeked, record.SeekedID},
	{player.EventPause, record.PausedID},
	{player.EventWaiting, record.WaitingID},
	{player.EventFullscreenChange, record.FullScreenChangeID},
	{player.EventCanPlayThrough, record.CanPlayThroughID},
	{player.EventEnded, record.EndedID},
}

// Manager subscribes to a player and emits records. It is not safe for
// concurrent use; all calls arrive on the player's dispatch loop.
type Manager struct {
	ctx       context.Context
	player    player.Player
	sink      Deliverer
	logger    logger.Logger
	appName   string
	userAgent string

	state     State
	attached  bool
	listeners int
}

// NewManager creates a Manager for p delivering to d.
func NewManager(ctx context.Context, p player.Player, d Deliverer, opts ...Option) *Manager {
	if ctx == nil {
		ctx = context.Background()
	}
	m := &Manager{
		ctx:    ctx,
		player: p,
		sink:   d,
		logger: logger.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach registers the readiness handler and the error listener. The error
// listener is active before readiness so early failures are reported.
// Calling Attach more than once has no effect.
func (m *Manager) Attach() {
	if m.attached {
		return
	}
	m.attached = true
	m.listen(m.player, targetPlayer, player.EventError, m.handleError)
	m.player.Ready(m.handleReady)
}

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// Listeners returns the number of listeners this manager registered.
func (m *Manager) Listeners() int { return m.listeners }

func (m *Manager) listen(t player.EventTarget, target string, name player.EventName, h player.Handler) {
	t.AddEventListener(name, h)
	m.listeners++
	metrics.RecordListenerRegistered(target, string(name))
}

func (m *Manager) transition(to State) {
	m.logger.Debug(m.ctx, "lifecycle transition",
		logger.String("from", m.state.String()),
		logger.String("to", to.String()),
	)
	m.state = to
	metrics.UpdateLifecycleState(int(to))
}

func (m *Manager) ignore(milestone string) {
	m.logger.Debug(m.ctx, "ignoring repeated milestone",
		logger.String("milestone", milestone),
		logger.String("state", m.state.String()),
	)
	metrics.RecordMilestoneIgnored(milestone)
}

func (m *Manager) handleReady() {
	if m.state != Uninitialized {
		m.ignore("ready")
		return
	}
	m.listen(m.player, targetPlayer, player.EventLoadedMetadata, m.handleLoadedMetadata)
	m.transition(Ready)

	opts := m.player.Options()
	m.deliver(record.InstanceCreated(record.InstanceInfo{
		Version:          m.player.Version(),
		AppName:          m.appName,
		UserAgent:        m.userAgent,
		Autoplay:         opts.Autoplay,
		HeuristicProfile: opts.HeuristicProfile,
		TechOrder:        opts.TechOrder,
	}))
}

func (m *Manager) handleError(player.Event) {
	info := record.ErrorInfo{}
	if err, ok := m.player.Error(); ok {
		info = record.ErrorInfo{Code: err.Code, Message: err.Message}
	}
	m.deliver(record.Error(m.playhead(), info))
}

func (m *Manager) handleLoadedMetadata(player.Event) {
	if m.state != Ready {
		m.ignore(string(player.EventLoadedMetadata))
		return
	}

	for _, s := range steadyState {
		m.listen(m.player, targetPlayer, s.name, m.playbackHandler(s.id))
	}
	if bd, ok := m.player.AudioBufferData(); ok {
		m.listen(bd, targetAudio, player.BufferEventDownloadFailed, m.downloadFailedHandler(bd))
	} else {
		m.missing(targetAudio)
	}
	if bd, ok := m.player.VideoBufferData(); ok {
		m.listen(bd, targetVideo, player.BufferEventDownloadFailed, m.downloadFailedHandler(bd))
	} else {
		m.missing(targetVideo)
	}
	m.transition(MetadataLoaded)

	m.deliver(record.PresentationInfo(record.Presentation{
		Source:          m.player.CurrentSrc(),
		Live:            m.player.IsLive(),
		Duration:        m.player.Duration(),
		Tech:            m.player.CurrentTechName(),
		ProtectionTypes: protectionTypes(m.player.ProtectionInfo()),
	}))
}

func (m *Manager) missing(capability string) {
	m.logger.Debug(m.ctx, "optional capability absent", logger.String("capability", capability))
	metrics.RecordCapabilityMissing(capability)
}

func (m *Manager) playbackHandler(id record.EventID) player.Handler {
	return func(ev player.Event) {
		rec, err := record.Playback(id, m.playhead(), record.Occurrence{
			Type:                  ev.Type,
			PresentationTimeInSec: ev.PresentationTimeInSec,
			Message:               ev.Message,
		})
		if err != nil {
			// steadyState only holds playback kinds.
			m.logger.Error(m.ctx, "failed to build playback record", logger.Error(err))
			return
		}
		m.deliver(rec)
	}
}

func (m *Manager) downloadFailedHandler(bd player.BufferData) player.Handler {
	return func(player.Event) {
		f := record.Failure{BufferLevel: bd.BufferLevel()}
		if df, ok := bd.DownloadFailed(); ok {
			f.URL = df.Download.URL
			f.Code = df.Code
			f.Message = df.Message
		}
		m.deliver(record.DownloadFailed(m.playhead(), f))
	}
}

func (m *Manager) playhead() record.Playhead {
	return record.Playhead{
		Source:   m.player.CurrentSrc(),
		Position: m.player.CurrentTime(),
		Live:     m.player.IsLive(),
	}
}

func (m *Manager) deliver(rec record.Record) {
	m.sink.Deliver(m.ctx, rec)
}

func protectionTypes(infos []player.ProtectionInfo) []string {
	if len(infos) == 0 {
		return nil
	}
	out := make([]string, len(infos))
	for i, pi := range infos {
		out[i] = pi.Type
	}
	return out
}
