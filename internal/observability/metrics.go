package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DashboardCollector bundles Prometheus metrics for the dashboard's
// interaction pipeline and data loads. It implements the coordinator's
// EventRecorder interface.
type DashboardCollector struct {
	gatherer prometheus.Gatherer

	HighlightEvents *prometheus.CounterVec
	SelectionEvents prometheus.Counter
	LookupMisses    *prometheus.CounterVec
	LoadDuration    *prometheus.HistogramVec

	RegionsLoaded  prometheus.Gauge
	UnmatchedNames *prometheus.GaugeVec
}

// NewDashboardCollector registers dashboard metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewDashboardCollector(reg prometheus.Registerer) (*DashboardCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	highlights := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_highlight_events_total",
		Help: "Highlight and unhighlight events, labeled by action and source view.",
	}, []string{"action", "source"})
	highlights, err := registerCounterVec(reg, highlights, "dashboard_highlight_events_total")
	if err != nil {
		return nil, err
	}

	selections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_selection_events_total",
		Help: "Successful region selections.",
	})
	selections, err = registerCounter(reg, selections, "dashboard_selection_events_total")
	if err != nil {
		return nil, err
	}

	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_lookup_misses_total",
		Help: "Region name lookups with no matching record, labeled by view.",
	}, []string{"view"})
	misses, err = registerCounterVec(reg, misses, "dashboard_lookup_misses_total")
	if err != nil {
		return nil, err
	}

	loads := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_load_duration_seconds",
		Help:    "Startup load latency in seconds, labeled by source (data, geometry).",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"source"})
	loads, err = registerHistogramVec(reg, loads, "dashboard_load_duration_seconds")
	if err != nil {
		return nil, err
	}

	regions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_regions_loaded",
		Help: "Number of region records loaded.",
	})
	regions, err = registerGauge(reg, regions, "dashboard_regions_loaded")
	if err != nil {
		return nil, err
	}

	unmatched := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dashboard_unmatched_names",
		Help: "Region names present on only one side of the record/geometry join, labeled by side.",
	}, []string{"side"})
	unmatched, err = registerGaugeVec(reg, unmatched, "dashboard_unmatched_names")
	if err != nil {
		return nil, err
	}

	return &DashboardCollector{
		gatherer:        gatherer,
		HighlightEvents: highlights,
		SelectionEvents: selections,
		LookupMisses:    misses,
		LoadDuration:    loads,
		RegionsLoaded:   regions,
		UnmatchedNames:  unmatched,
	}, nil
}

// RecordHighlight implements core.EventRecorder.
func (c *DashboardCollector) RecordHighlight(source string) {
	c.HighlightEvents.WithLabelValues("highlight", source).Inc()
}

// RecordUnhighlight implements core.EventRecorder.
func (c *DashboardCollector) RecordUnhighlight(source string) {
	c.HighlightEvents.WithLabelValues("unhighlight", source).Inc()
}

// RecordSelection implements core.EventRecorder.
func (c *DashboardCollector) RecordSelection(string) {
	c.SelectionEvents.Inc()
}

// RecordLookupMiss implements core.EventRecorder.
func (c *DashboardCollector) RecordLookupMiss(view, _ string) {
	c.LookupMisses.WithLabelValues(view).Inc()
}

// ObserveLoad records one source's load duration.
func (c *DashboardCollector) ObserveLoad(source string, d time.Duration) {
	c.LoadDuration.WithLabelValues(source).Observe(d.Seconds())
}

// SetJoinStats publishes the load-time join summary.
func (c *DashboardCollector) SetJoinStats(records, unmatchedRecords, unmatchedGeometry int) {
	c.RegionsLoaded.Set(float64(records))
	c.UnmatchedNames.WithLabelValues("records").Set(float64(unmatchedRecords))
	c.UnmatchedNames.WithLabelValues("geometry").Set(float64(unmatchedGeometry))
}

// Handler exposes the collector's registry over HTTP.
func (c *DashboardCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, cv *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(cv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return cv, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

func registerHistogramVec(reg prometheus.Registerer, hv *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(hv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return hv, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return g, nil
}

func registerGaugeVec(reg prometheus.Registerer, gv *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(gv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return gv, nil
}
