package tracing

import (
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("trainingapp-backend")

// HoneycombSetup configures the OpenTelemetry SDK through the honeycomb distro.
// With tracing disabled the global no-op provider stays in place and the returned
// shutdown func does nothing.
// Exporter settings come from the usual OTEL_* / HONEYCOMB_API_KEY env vars.
func HoneycombSetup(enabled bool, serviceName string) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	bsp := honeycomb.NewBaggageSpanProcessor()
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
		otelconfig.WithSpanProcessor(bsp),
	)
	if err != nil {
		return nil, err
	}

	log.Debugf("honeycomb tracing set up for service [%s]", serviceName)
	return otelShutdown, nil
}

// EndSpanWithErrCheck records err on the span (if any) and ends it.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
