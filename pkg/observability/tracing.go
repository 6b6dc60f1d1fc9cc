package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name of the tracer for analysis operations.
	TracerName = "moodsense"
)

// Span attribute keys
const (
	AttrAnalysisID = "analysis_id"
	AttrStage      = "stage"
	AttrMessages   = "messages"
	AttrUsers      = "users"
	AttrBytes      = "input_bytes"
	AttrCached     = "cached"
	AttrErrorCode  = "error_code"
)

// Span names
const (
	SpanAnalyze = "moodsense.analyze"
	SpanDecrypt = "moodsense.decrypt"
)

// Tracer provides distributed tracing for analysis operations.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global OpenTelemetry provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// NewTracerWithProvider creates a tracer from a specific provider.
func NewTracerWithProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartAnalysisSpan starts the root span of one analysis.
func (t *Tracer) StartAnalysisSpan(ctx context.Context, analysisID string, inputBytes int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanAnalyze,
		trace.WithAttributes(
			attribute.String(AttrAnalysisID, analysisID),
			attribute.Int(AttrBytes, inputBytes),
		),
	)
}

// StartStageSpan starts a span for a pipeline stage.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "moodsense.stage."+stage,
		trace.WithAttributes(attribute.String(AttrStage, stage)),
	)
}

// StartDecryptSpan starts a span around envelope decryption.
func (t *Tracer) StartDecryptSpan(ctx context.Context) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanDecrypt)
}

// EndSpan records err (if any) on span and ends it.
func EndSpan(span trace.Span, err error, errorCode string) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errorCode != "" {
			span.SetAttributes(attribute.String(AttrErrorCode, errorCode))
		}
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
