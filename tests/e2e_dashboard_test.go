package tests

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/outbreaklabs/covid-dashboard/core"
	"github.com/outbreaklabs/covid-dashboard/internal/loader"
	"github.com/outbreaklabs/covid-dashboard/internal/logging"
	"github.com/outbreaklabs/covid-dashboard/internal/observability"
	"github.com/outbreaklabs/covid-dashboard/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const e2eCSV = `Province_State,Lat,Long_,Confirmed,Deaths,Recovered,Active
California,36.7,-119.4,100,10,80,10
Texas,31.9,-99.9,50,5,40,5
`

const e2eGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "California"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-124, 28], [-110, 28], [-110, 42], [-124, 42], [-124, 28]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Texas"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-110, 28], [-94, 28], [-94, 42], [-110, 42], [-110, 28]]]
      }
    }
  ]
}`

type dashboardEnv struct {
	ds        *core.Dataset
	coord     *core.Coordinator
	mapView   *core.MapView
	confirmed *core.AggregateChartView
	deaths    *core.AggregateChartView
	renderer  *render.Renderer
	collector *observability.DashboardCollector
}

// newDashboardEnv assembles the full pipeline the entrypoint builds: load
// and join from files, scales, coordinator, all three views and the
// renderer, with a private metrics registry.
func newDashboardEnv(t *testing.T) *dashboardEnv {
	t.Helper()

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "cases.csv")
	geoPath := filepath.Join(dir, "states.geojson")
	if err := os.WriteFile(dataPath, []byte(e2eCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := os.WriteFile(geoPath, []byte(e2eGeoJSON), 0o644); err != nil {
		t.Fatalf("write geojson: %v", err)
	}

	collector, err := observability.NewDashboardCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewDashboardCollector: %v", err)
	}

	log := logging.Noop()
	ds, err := loader.Load(context.Background(), dataPath, geoPath, log, collector)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := core.DefaultScaleConfig()
	scales := core.NewScaleRegistry(ds, cfg)
	coord := core.NewCoordinator(ds, log, collector)
	mv := core.NewMapView(ds, scales, 760, 500, 50*time.Millisecond)
	confirmed := core.NewAggregateChartView("confirmed-chart", ds, scales.Band, scales.Confirmed, core.ConfirmedValue, cfg.PlotHeight)
	deaths := core.NewAggregateChartView("death-chart", ds, scales.Band, scales.Deaths, core.DeathsValue, cfg.PlotHeight)
	mv.Bind(coord)
	confirmed.Bind(coord)
	deaths.Bind(coord)

	return &dashboardEnv{
		ds:        ds,
		coord:     coord,
		mapView:   mv,
		confirmed: confirmed,
		deaths:    deaths,
		renderer:  render.NewRenderer(mv, confirmed, deaths, coord, cfg.ChartWidth, cfg.PlotHeight),
		collector: collector,
	}
}

func (env *dashboardEnv) settle() {
	for env.mapView.Animating() {
		env.mapView.StepAnimation(10 * time.Millisecond)
	}
}

func TestDashboardEndToEnd(t *testing.T) {
	env := newDashboardEnv(t)

	// Loaded and joined: both regions present, no unmatched names.
	if got := len(env.ds.Records()); got != 2 {
		t.Fatalf("records = %d, want 2", got)
	}
	if n := len(env.ds.UnmatchedRecords()) + len(env.ds.UnmatchedGeometry()); n != 0 {
		t.Fatalf("unmatched names = %d, want 0", n)
	}

	// Aggregate charts reflect the data: California has twice the Texas
	// confirmed count, so twice the bar height on a shared baseline.
	bars := env.confirmed.Bars()
	if len(bars) != 2 {
		t.Fatalf("confirmed bars = %d, want 2", len(bars))
	}
	if math.Abs(bars[0].Height-2*bars[1].Height) > 1e-9 {
		t.Errorf("bar heights %v, %v; want a 2:1 ratio", bars[0].Height, bars[1].Height)
	}

	// Hovering a chart bar highlights the region everywhere.
	env.confirmed.HoverBar("Texas")
	if !env.mapView.Highlighted("Texas") {
		t.Errorf("chart hover did not reach the map")
	}
	env.confirmed.UnhoverBar("Texas")

	// Clicking California zooms the map to it and opens the detail view.
	env.mapView.ClickRegion("California")
	if !env.mapView.Animating() {
		t.Fatalf("click did not start the zoom animation")
	}
	env.settle()

	tr := env.mapView.Transform()
	if tr.Scale < 1 || tr.Scale > 8 {
		t.Errorf("settled zoom %v outside [1, 8]", tr.Scale)
	}
	d := env.coord.Detail()
	if d == nil || d.Region != "California" {
		t.Fatalf("detail = %+v, want California", d)
	}
	wantStats := []int{100, 10, 80, 10}
	for i, want := range wantStats {
		if d.Stats[i].Value != want || !d.Stats[i].Known {
			t.Errorf("stat %s = %+v, want value %d", d.Stats[i].Label, d.Stats[i], want)
		}
	}

	// The snapshot reflects the selection.
	var buf bytes.Buffer
	if err := env.renderer.Snapshot(&buf); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !strings.Contains(buf.String(), `data-stat="Confirmed"`) {
		t.Errorf("snapshot missing the detail panel")
	}

	// A detail chart renders for the selection.
	png, err := render.DetailChartPNG(d, 380, 200)
	if err != nil {
		t.Fatalf("DetailChartPNG: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatalf("detail chart is not a PNG")
	}

	// Background click resets the zoom and destroys the detail view.
	env.mapView.ClickBackground()
	env.settle()
	if env.coord.Detail() != nil {
		t.Errorf("detail view survived the background click")
	}
	if got, want := env.mapView.Transform(), env.mapView.CenteredIdentity(); got != want {
		t.Errorf("transform = %+v, want reset to %+v", got, want)
	}

	// The interaction trail landed in the metrics.
	if got := testutil.ToFloat64(env.collector.SelectionEvents); got != 1 {
		t.Errorf("selection events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(env.collector.HighlightEvents.WithLabelValues("highlight", "confirmed-chart")); got != 1 {
		t.Errorf("highlight events = %v, want 1", got)
	}
}

func TestDashboardLookupMissLeavesStateIntact(t *testing.T) {
	env := newDashboardEnv(t)

	env.mapView.ClickRegion("California")
	env.settle()
	before := env.coord.Detail()

	env.coord.Select("Atlantis")

	if env.coord.Detail() != before {
		t.Errorf("lookup miss replaced the detail view")
	}
	if name, _ := env.coord.Selected(); name != "California" {
		t.Errorf("selection = %q, want California preserved", name)
	}
	if got := testutil.ToFloat64(env.collector.LookupMisses.WithLabelValues("map")); got != 1 {
		t.Errorf("lookup misses = %v, want 1", got)
	}
}
