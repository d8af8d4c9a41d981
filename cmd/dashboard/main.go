package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	"github.com/outbreaklabs/covid-dashboard/core"
	"github.com/outbreaklabs/covid-dashboard/internal/loader"
	"github.com/outbreaklabs/covid-dashboard/internal/logging"
	"github.com/outbreaklabs/covid-dashboard/internal/observability"
	"github.com/outbreaklabs/covid-dashboard/internal/render"
	"github.com/outbreaklabs/covid-dashboard/internal/ui"
)

func main() {
	dataPath := flag.String("data", "data/cases.csv", "per-region case records (CSV)")
	geoPath := flag.String("geo", "data/states.geojson", "region boundaries (GeoJSON)")
	mapWidth := flag.Int("map-width", 760, "map viewport width in pixels")
	mapHeight := flag.Int("map-height", 500, "map viewport height in pixels")
	exportPath := flag.String("export", "", "write a one-shot SVG snapshot to this path instead of opening a window")
	metricsAddr := flag.String("metrics-addr", "", "optional address for the Prometheus /metrics listener (e.g. :9090)")
	flag.Parse()

	// .env is optional; flags and real environment take precedence.
	_ = godotenv.Load()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	collector, err := observability.NewDashboardCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn(ctx, "metrics listener stopped", logging.String("error", err.Error()))
			}
		}()
	}

	tracer := otel.Tracer("github.com/outbreaklabs/covid-dashboard/cmd/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.startup")

	// Both loads must complete before any view exists; a failed load is
	// fatal, there is no partial dashboard.
	ds, err := loader.Load(ctx, *dataPath, *geoPath, log, collector)
	if err != nil {
		span.End()
		log.Error(ctx, "load failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	cfg := core.DefaultScaleConfig()
	scales := core.NewScaleRegistry(ds, cfg)

	coord := core.NewCoordinator(ds, log, collector)
	mapView := core.NewMapView(ds, scales, float64(*mapWidth), float64(*mapHeight), core.DefaultTweenDuration)
	confirmed := core.NewAggregateChartView("confirmed-chart", ds, scales.Band, scales.Confirmed, core.ConfirmedValue, cfg.PlotHeight)
	deaths := core.NewAggregateChartView("death-chart", ds, scales.Band, scales.Deaths, core.DeathsValue, cfg.PlotHeight)

	mapView.Bind(coord)
	confirmed.Bind(coord)
	deaths.Bind(coord)
	span.End()

	if *exportPath != "" {
		if err := exportSnapshot(mapView, confirmed, deaths, coord, cfg, *exportPath); err != nil {
			log.Error(ctx, "snapshot export failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info(ctx, "snapshot written", logging.String("path", *exportPath))
		return
	}

	app := ui.NewApp(mapView, confirmed, deaths, coord, cfg.ChartWidth, cfg.PlotHeight, log)
	if err := app.Run("COVID-19 Dashboard"); err != nil {
		log.Error(ctx, "ui exited with error", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

func exportSnapshot(mv *core.MapView, confirmed, deaths *core.AggregateChartView, coord *core.Coordinator, cfg core.ScaleConfig, path string) error {
	// Settle any pending animation so the snapshot is the final state.
	mv.StepAnimation(core.DefaultTweenDuration + time.Millisecond)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	r := render.NewRenderer(mv, confirmed, deaths, coord, cfg.ChartWidth, cfg.PlotHeight)
	return r.Snapshot(f)
}
