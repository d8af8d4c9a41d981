package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorRecordsInteractionEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDashboardCollector(reg)
	if err != nil {
		t.Fatalf("NewDashboardCollector: %v", err)
	}

	collector.RecordHighlight("map")
	collector.RecordHighlight("map")
	collector.RecordUnhighlight("map")
	collector.RecordHighlight("confirmed-chart")
	collector.RecordSelection("California")
	collector.RecordLookupMiss("map", "Atlantis")

	if got := testutil.ToFloat64(collector.HighlightEvents.WithLabelValues("highlight", "map")); got != 2 {
		t.Fatalf("highlight/map = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.HighlightEvents.WithLabelValues("unhighlight", "map")); got != 1 {
		t.Fatalf("unhighlight/map = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.HighlightEvents.WithLabelValues("highlight", "confirmed-chart")); got != 1 {
		t.Fatalf("highlight/confirmed-chart = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.SelectionEvents); got != 1 {
		t.Fatalf("dashboard_selection_events_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.LookupMisses.WithLabelValues("map")); got != 1 {
		t.Fatalf("dashboard_lookup_misses_total = %v, want 1", got)
	}
}

func TestCollectorRecordsLoadDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDashboardCollector(reg)
	if err != nil {
		t.Fatalf("NewDashboardCollector: %v", err)
	}

	collector.ObserveLoad("data", 30*time.Millisecond)
	collector.ObserveLoad("geometry", 70*time.Millisecond)

	if count := histogramSampleCount(t, reg, "dashboard_load_duration_seconds", map[string]string{
		"source": "data",
	}); count != 1 {
		t.Fatalf("dashboard_load_duration_seconds{source=data} sample_count = %d, want 1", count)
	}
	if count := histogramSampleCount(t, reg, "dashboard_load_duration_seconds", map[string]string{
		"source": "geometry",
	}); count != 1 {
		t.Fatalf("dashboard_load_duration_seconds{source=geometry} sample_count = %d, want 1", count)
	}
}

func TestMetricsHandlerExposesJoinGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDashboardCollector(reg)
	if err != nil {
		t.Fatalf("NewDashboardCollector: %v", err)
	}
	collector.SetJoinStats(51, 2, 1)
	collector.RecordHighlight("map")
	collector.ObserveLoad("data", 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"dashboard_highlight_events_total",
		"dashboard_load_duration_seconds",
		"dashboard_regions_loaded",
		"dashboard_unmatched_names",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, "dashboard_regions_loaded 51") {
		t.Fatalf("/metrics output missing regions gauge value: %s", body)
	}
}

func TestDoubleRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewDashboardCollector(reg)
	if err != nil {
		t.Fatalf("NewDashboardCollector: %v", err)
	}
	second, err := NewDashboardCollector(reg)
	if err != nil {
		t.Fatalf("second NewDashboardCollector: %v", err)
	}

	first.RecordSelection("California")
	second.RecordSelection("Texas")
	if got := testutil.ToFloat64(second.SelectionEvents); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
