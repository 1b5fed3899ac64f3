// Package tracing wires OpenTelemetry for the scheduler. Until Init installs a
// provider every span is a no-op, so services can always call Start/End.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Kmaheshkanna2005/resource-management"

// Init installs a global tracer provider exporting to stdout ("stdout") or to
// the file at output. An empty output leaves tracing disabled. The returned
// func flushes and shuts the provider down.
func Init(serviceName, output string) (func(context.Context) error, error) {
	if output == "" {
		return func(context.Context) error { return nil }, nil
	}

	var w io.Writer = os.Stdout
	var f *os.File
	if output != "stdout" {
		var err error
		if f, err = os.Create(output); err != nil {
			return nil, err
		}
		w = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if f != nil {
			f.Close()
		}
		return err
	}, nil
}

// Start opens a span named name on the global provider.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
