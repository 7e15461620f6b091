package telemetry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"go.opentelemetry.io/otel"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/telemetry"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"
)

func TestInitTracer(t *testing.T) {
	convey.Convey("Given a tracer exporting to a buffer", t, func() {
		var spans, logs bytes.Buffer
		shutdown, err := telemetry.InitTracer("ampdiag-test", &spans, logger.New(&logs))
		convey.So(err, convey.ShouldBeNil)

		convey.So(logs.String(), convey.ShouldContainSubstring, "OpenTelemetry initialized")

		convey.Convey("When a span ends and the provider shuts down", func() {
			_, span := otel.Tracer("test").Start(context.Background(), "diagnostics.deliver")
			span.End()
			convey.So(shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then the span is written with the service name", func() {
				out := spans.String()
				convey.So(out, convey.ShouldContainSubstring, "diagnostics.deliver")
				convey.So(out, convey.ShouldContainSubstring, "ampdiag-test")
			})
		})
	})
}
