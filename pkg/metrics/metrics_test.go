package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounter(t *testing.T) {
	r := New()
	c := r.Counter("test_total", "A test counter")
	c.Inc()
	c.Add(5)
	if c.Value() != 6 {
		t.Fatalf("expected 6, got %d", c.Value())
	}
	if r.Counter("test_total", "") != c {
		t.Fatal("expected same counter instance")
	}
	if r.Counter(WithLabels("test_total", "source", "ikman"), "") == c {
		t.Fatal("labelled series should be distinct")
	}
}

func TestGauge(t *testing.T) {
	g := New().Gauge("in_flight", "")
	g.Set(2)
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != 1 {
		t.Fatalf("expected 1, got %d", g.Value())
	}
}

func TestHistogramCumulative(t *testing.T) {
	h := New().Histogram("d_seconds", "", []float64{1, 0.1, 0.5})
	for _, v := range []float64{0.05, 0.3, 0.8, 2.0} {
		h.Observe(v)
	}
	want := []uint64{1, 2, 3}
	for i, n := range want {
		if h.cumulative[i] != n {
			t.Fatalf("bucket %g: expected %d, got %d", h.bounds[i], n, h.cumulative[i])
		}
	}
	if h.Count() != 4 || h.sum != 0.05+0.3+0.8+2.0 {
		t.Fatalf("unexpected count/sum: %d %f", h.Count(), h.sum)
	}
}

func TestHistogramSince(t *testing.T) {
	h := New().Histogram("latency", "", nil)
	h.Since(time.Now().Add(-100 * time.Millisecond))
	if h.Count() != 1 {
		t.Fatal("expected 1 observation")
	}
}

func TestWithLabels(t *testing.T) {
	if got := WithLabels("foo_total", "source", "ikman", "kind", "list"); got != `foo_total{source="ikman",kind="list"}` {
		t.Fatalf("unexpected %q", got)
	}
	if got := WithLabels("foo", "path", `a"b`); got != `foo{path="a\"b"}` {
		t.Fatalf("expected escaped quote, got %q", got)
	}
	if WithLabels("bar") != "bar" || WithLabels("bar", "odd") != "bar" {
		t.Fatal("missing or odd labels should return name unchanged")
	}
}

func TestKindMismatchPanics(t *testing.T) {
	r := New()
	r.Counter("x", "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	r.Gauge("x", "")
}

func TestRender(t *testing.T) {
	r := New()
	r.Counter(WithLabels("pages_total", "source", "riyasewana"), "Pages fetched").Add(7)
	r.Counter(WithLabels("pages_total", "source", "ikman"), "").Add(3)
	r.Gauge("in_flight", "Scrapes in flight").Set(1)
	h := r.Histogram(WithLabels("run_seconds", "source", "ikman"), "Run time", []float64{0.1, 1})
	h.Observe(0.05)
	h.Observe(0.5)

	out := r.Render()
	for _, want := range []string{
		"# HELP pages_total Pages fetched",
		"# TYPE pages_total counter",
		`pages_total{source="ikman"} 3`,
		`pages_total{source="riyasewana"} 7`,
		"# TYPE in_flight gauge",
		"in_flight 1",
		"# TYPE run_seconds histogram",
		`run_seconds_bucket{source="ikman",le="0.1"} 1`,
		`run_seconds_bucket{source="ikman",le="1"} 2`,
		`run_seconds_bucket{source="ikman",le="+Inf"} 2`,
		`run_seconds_count{source="ikman"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, `source="ikman"} 3`) > strings.Index(out, `source="riyasewana"} 7`) {
		t.Error("series should be sorted by labels")
	}
	if strings.Index(out, "pages_total") > strings.Index(out, "in_flight") {
		t.Error("families should render in registration order")
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("test_total", "test").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "test_total 1") {
		t.Error("missing metric in handler output")
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, base, labels string }{
		{"foo_total", "foo_total", ""},
		{`foo_total{k="v"}`, "foo_total", `k="v"`},
		{`foo{a="1",b="2"}`, "foo", `a="1",b="2"`},
	}
	for _, tt := range tests {
		base, labels := splitName(tt.in)
		if base != tt.base || labels != tt.labels {
			t.Errorf("splitName(%q) = %q, %q", tt.in, base, labels)
		}
	}
}
