package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/config"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/plugin"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/scenario"
)

var demoScenario = filepath.Join("..", "..", "scenarios", "demo.yaml")

func execute(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestReplayCommand(t *testing.T) {
	convey.Convey("Given the replay command", t, func() {
		_ = os.Unsetenv("AMPDIAG_CONFIG")
		_ = os.Unsetenv("AMPDIAG_FORMAT")
		_ = os.Unsetenv("AMPDIAG_APP_NAME")

		convey.Convey("When replaying the demo scenario as JSON", func() {
			out, logs, err := execute("replay", "--app-name", "cli", demoScenario)

			convey.Convey("Then one JSON record per line is written to stdout", func() {
				convey.So(err, convey.ShouldBeNil)

				var ids []string
				scanner := bufio.NewScanner(strings.NewReader(out))
				for scanner.Scan() {
					var rec map[string]any
					convey.So(json.Unmarshal(scanner.Bytes(), &rec), convey.ShouldBeNil)
					ids = append(ids, rec["eventId"].(string))
				}
				convey.So(ids, convey.ShouldResemble, []string{
					"InstanceCreated", "PresentationInfo", "Play", "Playing", "DownloadFailed", "Error",
				})
				convey.So(out, convey.ShouldContainSubstring, `"appName":"cli"`)
			})

			convey.Convey("And logs go to stderr", func() {
				convey.So(logs, convey.ShouldContainSubstring, "replay finished")
			})
		})

		convey.Convey("When replaying with the pretty format and color off", func() {
			out, _, err := execute("replay", "--format", "pretty", "--color", "off", demoScenario)

			convey.Convey("Then records are printed as text lines", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "InstanceCreated")
				convey.So(out, convey.ShouldContainSubstring, "code=0x4")
			})
		})

		convey.Convey("When the format is unknown", func() {
			_, _, err := execute("replay", "--format", "xml", demoScenario)

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the scenario file is missing", func() {
			_, _, err := execute("replay", filepath.Join("testdata", "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, scenario.ErrLoadScenario), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When no scenario is given", func() {
			_, _, err := execute("replay")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the color flag is invalid", func() {
			_, _, err := execute("replay", "--color", "sometimes", demoScenario)
			convey.So(errors.Is(err, errFlag), convey.ShouldBeTrue)
		})
	})
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("Given the version command", t, func() {
		out, _, err := execute("version")

		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldStartWith, plugin.Name+" "+plugin.Version)
		convey.So(out, convey.ShouldContainSubstring, plugin.DefaultUserAgent())
	})
}

func TestHTTPServer(t *testing.T) {
	convey.Convey("Given the HTTP server constructor", t, func() {
		srv := newHTTPServer(":0", nil)

		convey.So(srv.Addr, convey.ShouldEqual, ":0")
		convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
		convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
	})
}

func TestIsTerminal(t *testing.T) {
	convey.Convey("Given writers that are not terminals", t, func() {
		convey.So(isTerminal(&bytes.Buffer{}), convey.ShouldBeFalse)
	})
}
