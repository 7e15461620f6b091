// Package record contains the diagnostic record model and the pure builders
// that shape player state into records.
package record

// EventID tags the kind of occurrence a record describes.
type EventID string

// Record kinds.
const (
	InstanceCreatedID        EventID = "InstanceCreated"
	ErrorID                  EventID = "Error"
	PresentationInfoID       EventID = "PresentationInfo"
	DownloadFailedID         EventID = "DownloadFailed"
	PlaybackBitrateChangedID EventID = "PlaybackBitrateChanged"
	DownloadBitrateChangedID EventID = "DownloadBitrateChanged"
	WaitingID                EventID = "Waiting"
	PlayID                   EventID = "Play"
	PlayingID                EventID = "Playing"
	SeekingID                EventID = "Seeking"
	SeekedID                 EventID = "Seeked"
	PausedID                 EventID = "Paused"
	FullScreenChangeID       EventID = "FullScreenChange"
	CanPlayThroughID         EventID = "CanPlayThrough"
	EndedID                  EventID = "Ended"
)

// Level is the severity of a record.
type Level int

// Severity levels.
const (
	LevelError Level = 0
	LevelInfo  Level = 1
)

// Data holds the extracted fields of a record. Values are primitives or
// nested Data, never player objects.
type Data map[string]any

// Record is a normalized diagnostic record.
type Record struct {
	EventID EventID `json:"eventId" msgpack:"eventId"`
	Level   Level   `json:"level" msgpack:"level"`
	Data    Data    `json:"data" msgpack:"data"`
}

var known = map[EventID]struct{}{
	InstanceCreatedID:  {},
	ErrorID:            {},
	PresentationInfoID: {},
	DownloadFailedID:   {},
}

func init() {
	for id := range playbackLevels {
		known[id] = struct{}{}
	}
}

// Valid reports whether id is one of the enumerated kinds.
func (id EventID) Valid() bool {
	_, ok := known[id]
	return ok
}

// String implements fmt.Stringer.
func (id EventID) String() string { return string(id) }
