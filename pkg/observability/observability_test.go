package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordHTTPRequest("POST", "/api/v1/analyze-conversation", "200", 0.2)
	m.RecordAnalysis("ok")
	m.RecordCacheLookup("miss")

	families, err := reg.Gather()
	assert.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["moodsense_http_requests_total"])
	assert.True(t, names["moodsense_analyses_total"])
	assert.True(t, names["moodsense_cache_lookups_total"])
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestRecordParse(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordParse(10, 2, map[string]int{"photo": 3, "audio": 1})

	assert.Equal(t, 10.0, testutil.ToFloat64(m.MessagesParsed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnresolvedHeaders))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MediaMessages.WithLabelValues("photo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MediaMessages.WithLabelValues("audio")))
}

func TestRecordRequestCost(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordRequestCost(0.5)
	m.RecordRequestCost(0.25)
	assert.InDelta(t, 0.75, testutil.ToFloat64(m.RequestCostEURTotal), 1e-12)
}

func TestRecordStage(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordStage("parse", 0.01)
	m.RecordStage("parse", 0.02)
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageSeconds))
}

func TestTracer_Spans(t *testing.T) {
	tr := NewTracerWithProvider(noop.NewTracerProvider())

	ctx, root := tr.StartAnalysisSpan(context.Background(), "an-1", 128)
	_, stage := tr.StartStageSpan(ctx, "parse")
	EndSpan(stage, nil, "")
	EndSpan(root, errors.New("boom"), "internal_error")

	// noop spans carry no trace ID
	assert.Equal(t, "", GetTraceID(ctx))
	assert.NotNil(t, NewTracer())
}
