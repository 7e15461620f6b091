package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerWriter(t *testing.T) {
	Convey("Given a logger initialized with a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info with fields", func() {
			Get().Info(ctx, "player ready", String("app", "demo"), Bool("autoplay", true))

			Convey("Then the message, fields and caller are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "player ready")
				So(out, ShouldContainSubstring, "app=demo")
				So(out, ShouldContainSubstring, "autoplay=true")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging at debug with the default level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.String(), ShouldBeEmpty)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible")

			Convey("Then debug records are written", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})

		Convey("When using a named logger", func() {
			Named("sink").Error(ctx, "failed", Error(errors.New("boom")))

			Convey("Then fields are grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "sink.error=boom")
			})
		})

		Reset(func() { SetLevel(0) })
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("info"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("warning"), ShouldBeNil)
		So(SetLevelString("error"), ShouldBeNil)
		So(SetLevelString("verbose"), ShouldNotBeNil)
		SetLevelString("info")
	})
}

func TestStandaloneLogger(t *testing.T) {
	Convey("Given a standalone logger", t, func() {
		var buf bytes.Buffer
		l := New(&buf)

		l.Info(context.Background(), "standalone", Int("n", 3))

		So(buf.String(), ShouldContainSubstring, "standalone")
		So(buf.String(), ShouldContainSubstring, "n=3")
	})

	Convey("Given a nil writer", t, func() {
		So(InitWithWriter(nil), ShouldNotBeNil)
		So(New(nil), ShouldNotBeNil)
	})
}
