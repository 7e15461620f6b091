// Package scenario reads replay scripts: a description of a simulated player
// and the ordered occurrences it goes through.
package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/adapters/player/simulated"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/player"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/metrics"
)

// Action is what a step does to the player.
type Action string

// Step actions.
const (
	ActionReady          Action = "ready"
	ActionMetadata       Action = "metadata"
	ActionEvent          Action = "event"
	ActionError          Action = "error"
	ActionDownloadFailed Action = "downloadfailed"
	ActionTime           Action = "time"
)

// Buffer tracks for downloadfailed steps.
const (
	TrackAudio = "audio"
	TrackVideo = "video"
)

// Scenario is a parsed replay script.
type Scenario struct {
	Name   string `yaml:"name" toml:"name"`
	Player Player `yaml:"player" toml:"player"`
	Steps  []Step `yaml:"steps" toml:"steps"`
}

// Player describes the simulated player's initial state.
type Player struct {
	Version          string   `yaml:"version" toml:"version"`
	Source           string   `yaml:"source" toml:"source"`
	Live             bool     `yaml:"live" toml:"live"`
	Duration         float64  `yaml:"duration" toml:"duration"`
	Tech             string   `yaml:"tech" toml:"tech"`
	Autoplay         bool     `yaml:"autoplay" toml:"autoplay"`
	HeuristicProfile string   `yaml:"heuristicProfile" toml:"heuristicProfile"`
	TechOrder        []string `yaml:"techOrder" toml:"techOrder"`
	Protection       []string `yaml:"protection" toml:"protection"`
	AudioBuffer      bool     `yaml:"audioBuffer" toml:"audioBuffer"`
	VideoBuffer      bool     `yaml:"videoBuffer" toml:"videoBuffer"`
}

// Step is one occurrence. CurrentTime, when set, moves the playhead before
// the action runs.
type Step struct {
	Action                Action   `yaml:"action" toml:"action"`
	Event                 string   `yaml:"event,omitempty" toml:"event,omitempty"`
	CurrentTime           *float64 `yaml:"currentTime,omitempty" toml:"currentTime,omitempty"`
	PresentationTimeInSec *float64 `yaml:"presentationTimeInSec,omitempty" toml:"presentationTimeInSec,omitempty"`
	Message               string   `yaml:"message,omitempty" toml:"message,omitempty"`
	Code                  int      `yaml:"code,omitempty" toml:"code,omitempty"`
	Track                 string   `yaml:"track,omitempty" toml:"track,omitempty"`
	BufferLevel           *float64 `yaml:"bufferLevel,omitempty" toml:"bufferLevel,omitempty"`
	URL                   string   `yaml:"url,omitempty" toml:"url,omitempty"`
}

// Load reads and validates the scenario at path. Files ending in .toml are
// decoded as TOML, everything else as YAML.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadScenario, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// ParseTOML decodes and validates a TOML scenario.
func ParseTOML(data []byte) (*Scenario, error) {
	var sc Scenario
	if _, err := toml.Decode(string(data), &sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step can be applied to the described player.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, st := range s.Steps {
		if err := s.validateStep(st); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Scenario) validateStep(st Step) error {
	switch st.Action {
	case ActionReady, ActionMetadata, ActionError:
		return nil
	case ActionEvent:
		if st.Event == "" {
			return fmt.Errorf("%w: event step without event name", ErrInvalidScenario)
		}
		return nil
	case ActionTime:
		if st.CurrentTime == nil {
			return fmt.Errorf("%w: time step without currentTime", ErrInvalidScenario)
		}
		return nil
	case ActionDownloadFailed:
		switch st.Track {
		case TrackAudio:
			if !s.Player.AudioBuffer {
				return fmt.Errorf("%w: player has no audio buffer", ErrInvalidScenario)
			}
		case TrackVideo:
			if !s.Player.VideoBuffer {
				return fmt.Errorf("%w: player has no video buffer", ErrInvalidScenario)
			}
		default:
			return fmt.Errorf("%w: unknown track %q", ErrInvalidScenario, st.Track)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
	}
}

// NewPlayer builds the simulated player. A scenario without a source gets a
// random urn:uuid source so records still carry a session id.
func (s *Scenario) NewPlayer() *simulated.Player {
	src := s.Player.Source
	if src == "" {
		src = uuid.New().URN()
	}

	protection := make([]player.ProtectionInfo, 0, len(s.Player.Protection))
	for _, t := range s.Player.Protection {
		protection = append(protection, player.ProtectionInfo{Type: t})
	}

	opts := []simulated.Option{simulated.WithState(simulated.State{
		Version:  s.Player.Version,
		Source:   src,
		Live:     s.Player.Live,
		Duration: s.Player.Duration,
		Tech:     s.Player.Tech,
		Options: player.Options{
			Autoplay:         s.Player.Autoplay,
			HeuristicProfile: s.Player.HeuristicProfile,
			TechOrder:        s.Player.TechOrder,
		},
		Protection: protection,
	})}
	if s.Player.AudioBuffer {
		opts = append(opts, simulated.WithAudioBuffer())
	}
	if s.Player.VideoBuffer {
		opts = append(opts, simulated.WithVideoBuffer())
	}
	return simulated.New(opts...)
}

// Apply runs the steps against p in order. It stops at the first step that
// cannot be applied or when ctx is done, and returns how many steps ran.
func (s *Scenario) Apply(ctx context.Context, p *simulated.Player) (int, error) {
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := apply(p, st); err != nil {
			return i, fmt.Errorf("step %d: %w", i+1, err)
		}
		metrics.RecordScenarioStep()
	}
	return len(s.Steps), nil
}

func apply(p *simulated.Player, st Step) error {
	if st.CurrentTime != nil {
		p.SetPosition(*st.CurrentTime)
	}

	switch st.Action {
	case ActionReady:
		p.SignalReady()
	case ActionMetadata:
		p.LoadMetadata()
	case ActionEvent:
		p.Emit(player.EventName(st.Event), player.Event{
			PresentationTimeInSec: st.PresentationTimeInSec,
			Message:               st.Message,
		})
	case ActionError:
		p.Fail(st.Code, st.Message)
	case ActionTime:
	case ActionDownloadFailed:
		b := p.Audio()
		if st.Track == TrackVideo {
			b = p.Video()
		}
		if b == nil {
			return fmt.Errorf("%w: no %s buffer", ErrInvalidScenario, st.Track)
		}
		if st.BufferLevel != nil {
			b.SetLevel(*st.BufferLevel)
		}
		b.FailDownload(st.URL, st.Code, st.Message)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
	}
	return nil
}
