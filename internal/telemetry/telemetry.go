// Package telemetry wires the gateway's request and upstream spans into
// OpenTelemetry.
//
// Grounded on digitallysavvy-go-ai/pkg/telemetry/settings.go: a Settings
// value controlling whether spans are recorded at all, and whether
// request/response content is attached to them.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Settings controls whether telemetry spans are recorded and how much
// request/response content they carry.
type Settings struct {
	IsEnabled     bool
	RecordInputs  bool
	RecordOutputs bool
	Tracer        trace.Tracer
}

// DefaultSettings enables tracing without recording message content, since
// the gateway has no consent model for what a client's prompts contain.
func DefaultSettings() *Settings {
	return &Settings{
		IsEnabled:     true,
		RecordInputs:  false,
		RecordOutputs: false,
	}
}

const tracerName = "github.com/elifarley/claudish"

// NewTracerProvider builds a minimal SDK tracer provider with no exporter
// wired: this gateway drops the otlp exporters for
// lack of a collector-endpoint config surface; see DESIGN.md). Spans are
// still created and can be inspected via in-process span processors in
// tests, or an exporter can be attached later without touching call sites.
func NewTracerProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider()
}

// StartRequestSpan opens the top-level `messages.translate` span for one
// inbound request.
func StartRequestSpan(ctx context.Context, s *Settings, model string, streaming bool) (context.Context, trace.Span) {
	if s == nil || !s.IsEnabled {
		return ctx, trace.SpanFromContext(ctx)
	}
	tracer := s.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return tracer.Start(ctx, "messages.translate", trace.WithAttributes(
		attribute.String("gateway.model", model),
		attribute.Bool("gateway.streaming", streaming),
	))
}

// StartUpstreamSpan opens a child span around the upstream HTTP call.
func StartUpstreamSpan(ctx context.Context, s *Settings) (context.Context, trace.Span) {
	if s == nil || !s.IsEnabled {
		return ctx, trace.SpanFromContext(ctx)
	}
	tracer := s.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return tracer.Start(ctx, "messages.upstream_call")
}

// StartStreamSpan opens a child span around the per-chunk translation loop.
func StartStreamSpan(ctx context.Context, s *Settings) (context.Context, trace.Span) {
	if s == nil || !s.IsEnabled {
		return ctx, trace.SpanFromContext(ctx)
	}
	tracer := s.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return tracer.Start(ctx, "messages.stream_loop")
}

// RecordError marks the span as failed, per the otel convention.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
