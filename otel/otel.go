// Package otel sets up request tracing exported to Google Cloud Trace.
package otel

import (
	"fmt"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitTracer registers a global tracer provider sampling the given ratio
// of traces. The caller owns shutting the provider down.
func InitTracer(projectID string, sampleRatio float64) (*sdktrace.TracerProvider, error) {
	if projectID == "" {
		return nil, fmt.Errorf("tracing requires a project id")
	}

	exporter, err := texporter.New(texporter.WithProjectID(projectID))
	if err != nil {
		return nil, fmt.Errorf("could not create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}
