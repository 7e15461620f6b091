package simulated_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/adapters/player/simulated"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/player"
)

func TestReady(t *testing.T) {
	Convey("Given a player that is not ready", t, func() {
		p := simulated.New()
		calls := 0
		p.Ready(func() { calls++ })

		So(calls, ShouldEqual, 0)

		Convey("When readiness is signalled twice", func() {
			p.SignalReady()
			p.SignalReady()

			Convey("Then pending callbacks run once", func() {
				So(calls, ShouldEqual, 1)
				So(p.IsReady(), ShouldBeTrue)
			})

			Convey("And late callbacks run immediately", func() {
				p.Ready(func() { calls++ })
				So(calls, ShouldEqual, 2)
			})
		})
	})
}

func TestEmit(t *testing.T) {
	Convey("Given listeners on the player", t, func() {
		p := simulated.New()
		var order []string
		p.AddEventListener(player.EventPlay, func(ev player.Event) { order = append(order, "a:"+ev.Type) })
		p.AddEventListener(player.EventPlay, func(ev player.Event) { order = append(order, "b:"+ev.Type) })
		p.AddEventListener(player.EventPlay, nil)

		Convey("When the event is emitted", func() {
			p.Emit(player.EventPlay, player.Event{})

			Convey("Then listeners run in registration order with the type filled in", func() {
				So(order, ShouldResemble, []string{"a:play", "b:play"})
				So(p.ListenerCount(player.EventPlay), ShouldEqual, 2)
			})
		})

		Convey("When a listener registers another during dispatch", func() {
			p.AddEventListener(player.EventPause, func(player.Event) {
				p.AddEventListener(player.EventPause, func(player.Event) { order = append(order, "late") })
			})
			p.Emit(player.EventPause, player.Event{})

			Convey("Then the new listener waits for the next emission", func() {
				So(order, ShouldBeEmpty)
				p.Emit(player.EventPause, player.Event{})
				So(order, ShouldResemble, []string{"late"})
			})
		})
	})
}

func TestAccessors(t *testing.T) {
	Convey("Given a player with state and buffers", t, func() {
		p := simulated.New(
			simulated.WithState(simulated.State{
				Version:    "2.3.1",
				Source:     "http://example/manifest",
				Duration:   60,
				Tech:       "azureHtml5JS",
				Protection: []player.ProtectionInfo{{Type: "PlayReady"}},
			}),
			simulated.WithAudioBuffer(),
		)

		So(p.Version(), ShouldEqual, "2.3.1")
		So(p.CurrentSrc(), ShouldEqual, "http://example/manifest")
		So(p.ProtectionInfo(), ShouldResemble, []player.ProtectionInfo{{Type: "PlayReady"}})

		_, hasAudio := p.AudioBufferData()
		_, hasVideo := p.VideoBufferData()
		So(hasAudio, ShouldBeTrue)
		So(hasVideo, ShouldBeFalse)

		Convey("When the player fails", func() {
			var seen player.Event
			p.AddEventListener(player.EventError, func(ev player.Event) { seen = ev })
			p.Fail(2, "network")

			err, ok := p.Error()
			So(ok, ShouldBeTrue)
			So(err, ShouldResemble, player.MediaError{Code: 2, Message: "network"})
			So(seen.Type, ShouldEqual, "error")

			p.ClearError()
			_, ok = p.Error()
			So(ok, ShouldBeFalse)
		})

		Convey("When the audio buffer fails a download", func() {
			buf := p.Audio()
			buf.SetLevel(0.4)
			fired := false
			buf.AddEventListener(player.BufferEventDownloadFailed, func(player.Event) { fired = true })
			buf.FailDownload("http://x", 4, "timeout")

			f, ok := buf.DownloadFailed()
			So(fired, ShouldBeTrue)
			So(ok, ShouldBeTrue)
			So(f.Download.URL, ShouldEqual, "http://x")
			So(buf.BufferLevel(), ShouldEqual, 0.4)
		})
	})
}
