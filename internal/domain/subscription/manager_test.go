package subscription_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/adapters/player/simulated"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/player"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/record"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/subscription"
)

type recorder struct {
	records []record.Record
}

func (r *recorder) Deliver(_ context.Context, rec record.Record) {
	r.records = append(r.records, rec)
}

func (r *recorder) ids() []record.EventID {
	out := make([]record.EventID, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.EventID
	}
	return out
}

func newPlayer(opts ...simulated.Option) *simulated.Player {
	base := []simulated.Option{simulated.WithState(simulated.State{
		Version:  "3.x",
		Source:   "http://example/manifest",
		Position: 0,
		Duration: 120,
		Tech:     "azureHtml5JS",
		Options: player.Options{
			Autoplay:         true,
			HeuristicProfile: "Quick Start",
			TechOrder:        []string{"azureHtml5JS", "flashSS"},
		},
	})}
	return simulated.New(append(base, opts...)...)
}

func TestLifecycle(t *testing.T) {
	Convey("Given a manager attached to a player", t, func() {
		p := newPlayer()
		rec := &recorder{}
		m := subscription.NewManager(context.Background(), p, rec,
			subscription.WithAppName("demo"),
			subscription.WithUserAgent("ua/1.0"),
		)
		m.Attach()

		Convey("Then only the error listener is registered before readiness", func() {
			So(m.State(), ShouldEqual, subscription.Uninitialized)
			So(p.ListenerCount(player.EventError), ShouldEqual, 1)
			So(p.ListenerCount(player.EventLoadedMetadata), ShouldEqual, 0)
			So(rec.records, ShouldBeEmpty)
		})

		Convey("When the player signals ready", func() {
			p.SignalReady()

			Convey("Then InstanceCreated is the first record", func() {
				So(m.State(), ShouldEqual, subscription.Ready)
				So(len(rec.records), ShouldEqual, 1)
				first := rec.records[0]
				So(first.EventID, ShouldEqual, record.InstanceCreatedID)
				So(first.Level, ShouldEqual, record.LevelInfo)
				So(first.Data["ampVersion"], ShouldEqual, "3.x")
				So(first.Data["appName"], ShouldEqual, "demo")
				So(first.Data["userAgent"], ShouldEqual, "ua/1.0")
				opts := first.Data["options"].(record.Data)
				So(opts["autoplay"], ShouldEqual, true)
				So(opts["heuristicProfile"], ShouldEqual, "Quick Start")
				So(p.ListenerCount(player.EventLoadedMetadata), ShouldEqual, 1)
			})

			Convey("And steady-state events before metadata are not observed", func() {
				p.Emit(player.EventPlay, player.Event{})
				So(len(rec.records), ShouldEqual, 1)
			})

			Convey("And metadata loads without protection info", func() {
				p.LoadMetadata()

				Convey("Then PresentationInfo reports clear content", func() {
					So(m.State(), ShouldEqual, subscription.MetadataLoaded)
					last := rec.records[len(rec.records)-1]
					So(last.EventID, ShouldEqual, record.PresentationInfoID)
					So(last.Data["protection"], ShouldEqual, "clear")
					So(last.Data["tech"], ShouldEqual, "azureHtml5JS")
					So(last.Data["duration"], ShouldEqual, 120.0)
				})

				Convey("Then each steady-state event yields one record in emission order", func() {
					rec.records = nil
					pt := 4.25
					p.Emit(player.EventPlay, player.Event{})
					p.Emit(player.EventPlaying, player.Event{PresentationTimeInSec: &pt})
					p.Emit(player.EventWaiting, player.Event{Message: "stall"})
					p.Emit(player.EventSeeking, player.Event{})
					p.Emit(player.EventSeeked, player.Event{})
					p.Emit(player.EventPause, player.Event{})
					p.Emit(player.EventPlaybackBitrateChanged, player.Event{})
					p.Emit(player.EventDownloadBitrateChanged, player.Event{})
					p.Emit(player.EventFullscreenChange, player.Event{})
					p.Emit(player.EventCanPlayThrough, player.Event{})
					p.Emit(player.EventEnded, player.Event{})

					So(rec.ids(), ShouldResemble, []record.EventID{
						record.PlayID, record.PlayingID, record.WaitingID, record.SeekingID,
						record.SeekedID, record.PausedID, record.PlaybackBitrateChangedID,
						record.DownloadBitrateChangedID, record.FullScreenChangeID,
						record.CanPlayThroughID, record.EndedID,
					})
					So(rec.records[1].Data["presentationTimeInSec"], ShouldEqual, 4.25)
					So(rec.records[2].Level, ShouldEqual, record.LevelError)
					So(rec.records[2].Data["message"], ShouldEqual, "stall")
					So(rec.records[0].Data["event"], ShouldEqual, "play")
				})

				Convey("Then a repeated metadata milestone registers nothing twice", func() {
					before := m.Listeners()
					p.LoadMetadata()
					So(m.Listeners(), ShouldEqual, before)
					So(p.ListenerCount(player.EventPlay), ShouldEqual, 1)

					rec.records = nil
					p.Emit(player.EventPlay, player.Event{})
					p.Emit(player.EventPause, player.Event{})
					So(rec.ids(), ShouldResemble, []record.EventID{record.PlayID, record.PausedID})
				})

				Convey("Then no buffer listener is registered without buffer sources", func() {
					// error + loadedmetadata + the steady-state set
					So(m.Listeners(), ShouldEqual, 13)
				})
			})
		})

		Convey("When the player fails before readiness", func() {
			p.Fail(2, "network")

			Convey("Then an Error record is delivered anyway", func() {
				So(len(rec.records), ShouldEqual, 1)
				errRec := rec.records[0]
				So(errRec.EventID, ShouldEqual, record.ErrorID)
				So(errRec.Level, ShouldEqual, record.LevelError)
				So(errRec.Data["code"], ShouldEqual, "0x2")
				So(errRec.Data["message"], ShouldEqual, "network")
				So(errRec.Data["sessionId"], ShouldEqual, "http://example/manifest")
			})
		})

		Convey("When an error event fires without error detail", func() {
			p.Emit(player.EventError, player.Event{})

			So(rec.records[0].Data["code"], ShouldEqual, "0x0")
			So(rec.records[0].Data["message"], ShouldEqual, "")
		})

		Convey("When Attach is called again", func() {
			m.Attach()
			So(p.ListenerCount(player.EventError), ShouldEqual, 1)
		})
	})
}

func TestRepeatedReady(t *testing.T) {
	Convey("Given a player that invokes ready callbacks twice", t, func() {
		p := &doubleReady{Player: newPlayer()}
		rec := &recorder{}
		m := subscription.NewManager(context.Background(), p, rec)
		m.Attach()

		p.fire()

		Convey("Then InstanceCreated is emitted once", func() {
			So(rec.ids(), ShouldResemble, []record.EventID{record.InstanceCreatedID})
			So(p.ListenerCount(player.EventLoadedMetadata), ShouldEqual, 1)
		})
	})
}

// doubleReady violates the single-fire ready contract.
type doubleReady struct {
	*simulated.Player
	fns []func()
}

func (d *doubleReady) Ready(fn func()) { d.fns = append(d.fns, fn) }

func (d *doubleReady) fire() {
	for _, fn := range d.fns {
		fn()
		fn()
	}
}

func TestBufferSources(t *testing.T) {
	Convey("Given a player with audio and video buffers", t, func() {
		p := newPlayer(simulated.WithAudioBuffer(), simulated.WithVideoBuffer())
		rec := &recorder{}
		subscription.NewManager(context.Background(), p, rec).Attach()
		p.SignalReady()
		p.LoadMetadata()
		rec.records = nil

		Convey("When the audio buffer fails a download", func() {
			p.SetPosition(9)
			p.Audio().SetLevel(0.4)
			p.Audio().FailDownload("http://x", 4, "timeout")

			Convey("Then a DownloadFailed record carries the buffer fields", func() {
				So(len(rec.records), ShouldEqual, 1)
				df := rec.records[0]
				So(df.EventID, ShouldEqual, record.DownloadFailedID)
				So(df.Level, ShouldEqual, record.LevelError)
				So(df.Data["bufferLevel"], ShouldEqual, 0.4)
				So(df.Data["url"], ShouldEqual, "http://x")
				So(df.Data["code"], ShouldEqual, "0x4")
				So(df.Data["message"], ShouldEqual, "timeout")
				So(df.Data["currentTime"], ShouldEqual, 9.0)
			})
		})

		Convey("When the video buffer fails a download", func() {
			p.Video().SetLevel(1.5)
			p.Video().FailDownload("http://v", 255, "gone")

			So(len(rec.records), ShouldEqual, 1)
			So(rec.records[0].Data["bufferLevel"], ShouldEqual, 1.5)
			So(rec.records[0].Data["code"], ShouldEqual, "0xff")
		})

		Convey("When downloadfailed fires without failure detail", func() {
			p.Audio().Emit(player.BufferEventDownloadFailed, player.Event{})

			So(len(rec.records), ShouldEqual, 1)
			So(rec.records[0].Data["url"], ShouldEqual, "")
			So(rec.records[0].Data["code"], ShouldEqual, "0x0")
		})
	})

	Convey("Given a player with protection descriptors", t, func() {
		p := simulated.New(simulated.WithState(simulated.State{
			Protection: []player.ProtectionInfo{{Type: "PlayReady"}, {Type: "Widevine"}},
		}))
		rec := &recorder{}
		subscription.NewManager(context.Background(), p, rec).Attach()
		p.SignalReady()
		p.LoadMetadata()

		So(rec.records[1].Data["protection"], ShouldEqual, "PlayReady")
	})
}

func TestStateString(t *testing.T) {
	Convey("Given lifecycle states", t, func() {
		So(subscription.Uninitialized.String(), ShouldEqual, "uninitialized")
		So(subscription.Ready.String(), ShouldEqual, "ready")
		So(subscription.MetadataLoaded.String(), ShouldEqual, "metadata_loaded")
		So(subscription.State(9).String(), ShouldEqual, "unknown")
	})
}
