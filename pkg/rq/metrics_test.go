package rq

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/reactive"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

type recordingProvider struct {
	noop.TracerProvider
	spans []recordedSpan
}

type recordedSpan struct {
	name  string
	attrs []attribute.KeyValue
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return &recordingTracer{p: p}
}

type recordingTracer struct {
	noop.Tracer
	p *recordingProvider
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	t.p.spans = append(t.p.spans, recordedSpan{name: name, attrs: cfg.Attributes()})
	return t.Tracer.Start(ctx, name, opts...)
}

func newTestRegistry(t *testing.T, markup string, opts ...Option) (*Registry, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatal(err)
	}
	base := []Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	r := NewRegistry(append(base, opts...)...)
	t.Cleanup(r.Close)
	return r, doc
}

func TestMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(
		WithRegisterer(reg),
		WithMetricsNamespace("app"),
		WithConstLabels(prometheus.Labels{"instance": "test"}),
	)
	m.clonesCreated.Inc()
	m.passes.WithLabelValues(strategyKeyed).Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
		if !strings.HasPrefix(mf.GetName(), "app_engine_") {
			t.Errorf("metric %q lacks the namespace", mf.GetName())
		}
		for _, metric := range mf.GetMetric() {
			found := false
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "instance" && lp.GetValue() == "test" {
					found = true
				}
			}
			if !found {
				t.Errorf("metric %q lacks the const label", mf.GetName())
			}
		}
	}
	if !names["app_engine_clones_created_total"] || !names["app_engine_list_passes_total"] {
		t.Errorf("gathered = %v", names)
	}
}

func TestMetrics_UnregisteredByDefault(t *testing.T) {
	// Two default collector sets must not collide.
	NewMetrics()
	NewMetrics()
}

func TestPassMetricsAndSpans(t *testing.T) {
	tp := &recordingProvider{}
	r, doc := newTestRegistry(t, `<ul rq-component="l"><li rq="item"></li></ul>`, WithTracerProvider(tp))
	items := reactive.NewSliceSignal([]string{"a", "b", "c"})

	_, err := r.Mount("l", doc.Root().QueryAttr(AttrComponent, "l", nil), func(c *Component) func() {
		ForKeyed(c.Query("item"), items.Get, func(s string) string { return s }, func(el *Element, s string) {})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	items.Set([]string{"c", "b", "a"})
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	items.Set([]string{"a", "a"})
	if err := r.Flush(); err == nil {
		t.Fatal("expected a duplicate key error")
	}

	m := r.metrics
	if got := metricCounterValue(t, m.passes.WithLabelValues(strategyKeyed)); got != 1 {
		t.Errorf("keyed passes = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.passes.WithLabelValues(strategyShuffle)); got != 1 {
		t.Errorf("shuffle passes = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.passDuration.WithLabelValues(strategyShuffle)); got != 1 {
		t.Errorf("shuffle durations = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.passErrors.WithLabelValues("E102")); got != 1 {
		t.Errorf("E102 errors = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.clonesCreated); got != 3 {
		t.Errorf("clones created = %v, want 3", got)
	}
	if got := metricCounterValue(t, m.setupRuns); got != 3 {
		t.Errorf("setup runs = %v, want 3", got)
	}
	if got := metricCounterValue(t, m.clonesMoved); got != 2 {
		t.Errorf("clones moved = %v, want 2", got)
	}

	if len(tp.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(tp.spans))
	}
	span := tp.spans[1]
	if span.name != "rq.list.pass" {
		t.Errorf("span name = %q", span.name)
	}
	want := map[attribute.Key]string{"rq.list": "item", "rq.strategy": strategyShuffle}
	for _, kv := range span.attrs {
		if v, ok := want[kv.Key]; ok && kv.Value.AsString() != v {
			t.Errorf("%s = %q, want %q", kv.Key, kv.Value.AsString(), v)
		}
		if kv.Key == "rq.items" && kv.Value.AsInt64() != 3 {
			t.Errorf("rq.items = %d, want 3", kv.Value.AsInt64())
		}
	}
}
