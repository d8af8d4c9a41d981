// Package loader reads the two startup inputs, the tabular case data and
// the region geometry, and joins them into the dataset every view renders
// from. The initial render is gated on both loads completing; either
// failure is fatal, there is no partial-dashboard fallback.
package loader

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/outbreaklabs/covid-dashboard/core"
	"github.com/outbreaklabs/covid-dashboard/internal/logging"
	"github.com/outbreaklabs/covid-dashboard/model"
)

const tracerName = "github.com/outbreaklabs/covid-dashboard/internal/loader"

// LoadObserver receives load timings and join statistics. The Prometheus
// collector implements it; a nil observer is tolerated.
type LoadObserver interface {
	ObserveLoad(source string, d time.Duration)
	SetJoinStats(records, unmatchedRecords, unmatchedGeometry int)
}

// Load reads the record CSV and the geometry GeoJSON concurrently, waits
// for both, derives the boundary mesh, and builds the joined dataset.
func Load(ctx context.Context, dataPath, geoPath string, log logging.Logger, obs LoadObserver) (*core.Dataset, error) {
	if log == nil {
		log = logging.Noop()
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "loader.Load")
	defer span.End()

	var (
		records []model.RegionRecord
		geoms   []model.RegionGeometry
	)

	// Both loads must finish before any view is constructed; the gate is
	// a join, not a race.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, span := tracer.Start(gctx, "loader.records")
		defer span.End()
		start := time.Now()

		f, err := os.Open(dataPath)
		if err != nil {
			return err
		}
		defer f.Close()

		records, err = LoadRecords(f)
		if err != nil {
			return err
		}
		if obs != nil {
			obs.ObserveLoad("data", time.Since(start))
		}
		return nil
	})
	g.Go(func() error {
		_, span := tracer.Start(gctx, "loader.geometry")
		defer span.End()
		start := time.Now()

		f, err := os.Open(geoPath)
		if err != nil {
			return err
		}
		defer f.Close()

		geoms, err = LoadGeometry(f)
		if err != nil {
			return err
		}
		if obs != nil {
			obs.ObserveLoad("geometry", time.Since(start))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	_, meshSpan := tracer.Start(ctx, "loader.join")
	mesh := DeriveMesh(geoms)
	ds, err := core.NewDataset(records, geoms, mesh)
	meshSpan.End()
	if err != nil {
		return nil, err
	}

	// Surface name mismatches once, at load time, instead of failing
	// silently per interaction.
	for _, name := range ds.UnmatchedGeometry() {
		log.Warn(ctx, "geometry has no matching record", logging.String("region", name))
	}
	for _, name := range ds.UnmatchedRecords() {
		log.Warn(ctx, "record has no matching geometry", logging.String("region", name))
	}
	log.Info(ctx, "dataset loaded",
		logging.Int("records", len(records)),
		logging.Int("geometries", len(geoms)),
		logging.Int("mesh_edges", len(mesh)),
		logging.Int("unmatched_geometry", len(ds.UnmatchedGeometry())),
		logging.Int("unmatched_records", len(ds.UnmatchedRecords())))

	if obs != nil {
		obs.SetJoinStats(len(records), len(ds.UnmatchedRecords()), len(ds.UnmatchedGeometry()))
	}
	return ds, nil
}
