package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ClearProtection is reported when the presentation has no protection descriptor.
const ClearProtection = "clear"

// InstanceInfo is the state captured when the player becomes ready.
type InstanceInfo struct {
	Version          string
	AppName          string
	UserAgent        string
	Autoplay         bool
	HeuristicProfile string
	TechOrder        []string
}

// Playhead is the common playback position context.
type Playhead struct {
	Source   string
	Position float64
	Live     bool
}

// ErrorInfo is the player error reported by an error event.
type ErrorInfo struct {
	Code    int
	Message string
}

// Presentation is the state captured on first metadata load.
type Presentation struct {
	Source   string
	Live     bool
	Duration float64
	Tech     string
	// ProtectionTypes lists descriptor types in player order; empty for clear content.
	ProtectionTypes []string
}

// Failure is a buffer download failure snapshot.
type Failure struct {
	BufferLevel float64
	URL         string
	Code        int
	Message     string
}

// Occurrence is the raw payload of a steady-state event.
type Occurrence struct {
	Type                  string
	PresentationTimeInSec *float64
	Message               string
}

var playbackLevels = map[EventID]Level{
	PlaybackBitrateChangedID: LevelInfo,
	DownloadBitrateChangedID: LevelInfo,
	WaitingID:                LevelError,
	PlayID:                   LevelInfo,
	PlayingID:                LevelInfo,
	SeekingID:                LevelInfo,
	SeekedID:                 LevelInfo,
	PausedID:                 LevelInfo,
	FullScreenChangeID:       LevelInfo,
	CanPlayThroughID:         LevelInfo,
	EndedID:                  LevelInfo,
}

// FormatCode renders an error code as lowercase hex with a 0x prefix.
func FormatCode(code int) string {
	return "0x" + strconv.FormatInt(int64(code), 16)
}

// IsPlayback reports whether id is built by Playback.
func IsPlayback(id EventID) bool {
	_, ok := playbackLevels[id]
	return ok
}

// PlaybackLevel returns the severity of a steady-state kind.
func PlaybackLevel(id EventID) (Level, bool) {
	lvl, ok := playbackLevels[id]
	return lvl, ok
}

// InstanceCreated builds the record emitted when the player becomes ready.
func InstanceCreated(info InstanceInfo) Record {
	return Record{
		EventID: InstanceCreatedID,
		Level:   LevelInfo,
		Data: Data{
			"ampVersion": info.Version,
			"appName":    info.AppName,
			"userAgent":  info.UserAgent,
			"options": Data{
				"autoplay":         info.Autoplay,
				"heuristicProfile": info.HeuristicProfile,
				"techOrder":        serializeOrder(info.TechOrder),
			},
		},
	}
}

// Error builds the record for a player error.
func Error(ph Playhead, err ErrorInfo) Record {
	return Record{
		EventID: ErrorID,
		Level:   LevelError,
		Data: Data{
			"sessionId":   ph.Source,
			"currentTime": ph.Position,
			"code":        FormatCode(err.Code),
			"message":     err.Message,
		},
	}
}

// PresentationInfo builds the record emitted on first metadata load.
func PresentationInfo(p Presentation) Record {
	protection := ClearProtection
	if len(p.ProtectionTypes) > 0 {
		protection = p.ProtectionTypes[0]
	}
	return Record{
		EventID: PresentationInfoID,
		Level:   LevelInfo,
		Data: Data{
			"sessionId":  p.Source,
			"isLive":     p.Live,
			"duration":   p.Duration,
			"tech":       p.Tech,
			"protection": protection,
		},
	}
}

// DownloadFailed builds the record for a failed audio or video download.
func DownloadFailed(ph Playhead, f Failure) Record {
	return Record{
		EventID: DownloadFailedID,
		Level:   LevelError,
		Data: Data{
			"sessionId":   ph.Source,
			"currentTime": ph.Position,
			"bufferLevel": f.BufferLevel,
			"url":         f.URL,
			"code":        FormatCode(f.Code),
			"message":     f.Message,
		},
	}
}

// Playback builds the record for a steady-state playback event.
func Playback(id EventID, ph Playhead, occ Occurrence) (Record, error) {
	lvl, ok := playbackLevels[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotPlayback, id)
	}
	data := Data{
		"sessionId":   ph.Source,
		"currentTime": ph.Position,
		"isLive":      ph.Live,
		"event":       occ.Type,
		"message":     occ.Message,
	}
	if occ.PresentationTimeInSec != nil {
		data["presentationTimeInSec"] = *occ.PresentationTimeInSec
	}
	return Record{EventID: id, Level: lvl, Data: data}, nil
}

// serializeOrder renders the technology order as a JSON array string.
func serializeOrder(order []string) string {
	b, err := json.Marshal(order)
	if err != nil {
		return "null"
	}
	return string(b)
}
