package loader

import (
	"errors"
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"

	"github.com/outbreaklabs/covid-dashboard/model"
)

var (
	ErrNoFeatures     = errors.New("geometry source has no features")
	ErrUnnamedFeature = errors.New("geometry feature has no name property")
)

// nameProperties are the GeoJSON properties tried, in order, for the
// region display name.
var nameProperties = []string{"name", "NAME", "Name"}

// LoadGeometry parses region boundaries from a GeoJSON feature
// collection. Polygon and MultiPolygon features are accepted; other
// geometry types are ignored.
func LoadGeometry(r io.Reader) ([]model.RegionGeometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geometry: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoFeatures
	}

	geoms := make([]model.RegionGeometry, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := featureName(f)
		if name == "" {
			return nil, fmt.Errorf("%w: feature %d", ErrUnnamedFeature, i)
		}

		g := model.RegionGeometry{Name: name}
		switch {
		case f.Geometry == nil:
			continue
		case f.Geometry.IsPolygon():
			g.Polygons = append(g.Polygons, toPolygon(f.Geometry.Polygon))
		case f.Geometry.IsMultiPolygon():
			for _, poly := range f.Geometry.MultiPolygon {
				g.Polygons = append(g.Polygons, toPolygon(poly))
			}
		default:
			continue
		}
		geoms = append(geoms, g)
	}

	if len(geoms) == 0 {
		return nil, ErrNoFeatures
	}
	return geoms, nil
}

func featureName(f *geojson.Feature) string {
	for _, key := range nameProperties {
		if v, err := f.PropertyString(key); err == nil && v != "" {
			return v
		}
	}
	return ""
}

func toPolygon(rings [][][]float64) model.Polygon {
	poly := make(model.Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(model.Ring, 0, len(ring))
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			r = append(r, model.GeoPoint{Lng: pt[0], Lat: pt[1]})
		}
		poly = append(poly, r)
	}
	return poly
}

// DeriveMesh extracts the shared-edge boundary mesh: every boundary
// segment that appears in more than one ring across the geometry set,
// emitted once. Drawing the mesh instead of per-region outlines renders
// each interior border a single time.
func DeriveMesh(geoms []model.RegionGeometry) []model.Edge {
	type edgeKey struct {
		ax, ay, bx, by int64
	}
	const quantum = 1e6 // degrees quantized to ~0.1m so shared points compare equal

	quant := func(v float64) int64 { return int64(v * quantum) }
	keyOf := func(a, b model.GeoPoint) edgeKey {
		k := edgeKey{quant(a.Lng), quant(a.Lat), quant(b.Lng), quant(b.Lat)}
		// Normalize direction so A→B and B→A collide.
		if k.ax > k.bx || (k.ax == k.bx && k.ay > k.by) {
			k.ax, k.ay, k.bx, k.by = k.bx, k.by, k.ax, k.ay
		}
		return k
	}

	counts := make(map[edgeKey]int)
	first := make(map[edgeKey]model.Edge)
	for _, g := range geoms {
		for _, poly := range g.Polygons {
			for _, ring := range poly {
				n := len(ring)
				for i := 0; i < n; i++ {
					a, b := ring[i], ring[(i+1)%n]
					if a == b {
						continue
					}
					k := keyOf(a, b)
					counts[k]++
					if counts[k] == 1 {
						first[k] = model.Edge{A: a, B: b}
					}
				}
			}
		}
	}

	var mesh []model.Edge
	for k, c := range counts {
		if c >= 2 {
			mesh = append(mesh, first[k])
		}
	}
	return mesh
}
