package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/outbreaklabs/covid-dashboard/model"
)

const sampleGeoJSON = `{
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
      "properties": {"NAME": "Texas"},
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[-110, 28], [-94, 28], [-94, 42], [-110, 42], [-110, 28]]],
          [[[-93, 28], [-92, 28], [-92, 29], [-93, 29], [-93, 28]]]
        ]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Nowhere"},
      "geometry": {"type": "Point", "coordinates": [-100, 40]}
    }
  ]
}`

func TestLoadGeometry(t *testing.T) {
	geoms, err := LoadGeometry(strings.NewReader(sampleGeoJSON))
	if err != nil {
		t.Fatalf("LoadGeometry: %v", err)
	}
	if len(geoms) != 2 {
		t.Fatalf("got %d geometries, want 2 (point feature ignored)", len(geoms))
	}

	ca := geoms[0]
	if ca.Name != "California" || len(ca.Polygons) != 1 {
		t.Errorf("california = %+v", ca)
	}
	if got := len(ca.Polygons[0][0]); got != 5 {
		t.Errorf("california outer ring has %d points, want 5", got)
	}

	// MultiPolygon flattens to one geometry with two polygons, and the
	// uppercase NAME property is accepted.
	tx := geoms[1]
	if tx.Name != "Texas" || len(tx.Polygons) != 2 {
		t.Errorf("texas = %+v", tx)
	}
}

func TestLoadGeometry_Errors(t *testing.T) {
	if _, err := LoadGeometry(strings.NewReader(`{"type":"FeatureCollection","features":[]}`)); !errors.Is(err, ErrNoFeatures) {
		t.Errorf("empty collection: err = %v, want %v", err, ErrNoFeatures)
	}

	unnamed := `{"type":"FeatureCollection","features":[
      {"type":"Feature","properties":{},
       "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`
	if _, err := LoadGeometry(strings.NewReader(unnamed)); !errors.Is(err, ErrUnnamedFeature) {
		t.Errorf("unnamed feature: err = %v, want %v", err, ErrUnnamedFeature)
	}

	if _, err := LoadGeometry(strings.NewReader("not json")); err == nil {
		t.Errorf("malformed input did not fail")
	}
}

func TestDeriveMesh_SharedEdgeEmittedOnce(t *testing.T) {
	left := model.RegionGeometry{Name: "Left", Polygons: []model.Polygon{{
		model.Ring{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 0}, {Lng: 1, Lat: 1}, {Lng: 0, Lat: 1}},
	}}}
	// Shares the x=1 edge with Left, traversed in the opposite direction.
	right := model.RegionGeometry{Name: "Right", Polygons: []model.Polygon{{
		model.Ring{{Lng: 1, Lat: 0}, {Lng: 2, Lat: 0}, {Lng: 2, Lat: 1}, {Lng: 1, Lat: 1}},
	}}}

	mesh := DeriveMesh([]model.RegionGeometry{left, right})
	if len(mesh) != 1 {
		t.Fatalf("got %d mesh edges, want exactly the shared one", len(mesh))
	}
	e := mesh[0]
	if e.A.Lng != 1 || e.B.Lng != 1 {
		t.Errorf("mesh edge = %+v, want the x=1 border", e)
	}
}

func TestDeriveMesh_NoSharedEdges(t *testing.T) {
	island := model.RegionGeometry{Name: "Island", Polygons: []model.Polygon{{
		model.Ring{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 0}, {Lng: 1, Lat: 1}},
	}}}
	if mesh := DeriveMesh([]model.RegionGeometry{island}); len(mesh) != 0 {
		t.Errorf("isolated region produced %d mesh edges", len(mesh))
	}
}
