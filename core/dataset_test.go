package core

import (
	"errors"
	"testing"

	"github.com/outbreaklabs/covid-dashboard/model"
)

func TestNewDataset_JoinsByName(t *testing.T) {
	ds := testDataset(t)

	rec, ok := ds.Record("California")
	if !ok {
		t.Fatalf("California record not found")
	}
	if rec.Confirmed != 100 {
		t.Errorf("California confirmed = %d, want 100", rec.Confirmed)
	}

	if _, ok := ds.Geometry("Texas"); !ok {
		t.Errorf("Texas geometry not found")
	}

	if len(ds.UnmatchedGeometry()) != 0 || len(ds.UnmatchedRecords()) != 0 {
		t.Errorf("fully matched dataset reported unmatched names: %v / %v",
			ds.UnmatchedGeometry(), ds.UnmatchedRecords())
	}
}

func TestNewDataset_SurfacesUnmatchedNames(t *testing.T) {
	geoms := append(testGeometries(), model.RegionGeometry{
		Name: "Puerto Rico",
		Polygons: []model.Polygon{{
			model.Ring{{Lng: -67, Lat: 18}, {Lng: -65, Lat: 18}, {Lng: -65, Lat: 19}, {Lng: -67, Lat: 19}},
		}},
	})
	records := append(testRecords(), model.RegionRecord{Name: "Guam", Confirmed: 3})

	ds, err := NewDataset(records, geoms, nil)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	if got := ds.UnmatchedGeometry(); len(got) != 1 || got[0] != "Puerto Rico" {
		t.Errorf("unmatched geometry = %v, want [Puerto Rico]", got)
	}
	if got := ds.UnmatchedRecords(); len(got) != 1 || got[0] != "Guam" {
		t.Errorf("unmatched records = %v, want [Guam]", got)
	}

	// A near-miss name is an explicit unmatched case, never guessed.
	if _, ok := ds.Record("Puerto Rico"); ok {
		t.Errorf("Puerto Rico should have no record")
	}
}

func TestNewDataset_RejectsDuplicates(t *testing.T) {
	records := append(testRecords(), model.RegionRecord{Name: "California", Confirmed: 1})
	_, err := NewDataset(records, testGeometries(), nil)
	if !errors.Is(err, ErrDuplicateRegion) {
		t.Errorf("err = %v, want ErrDuplicateRegion", err)
	}
}

func TestNewDataset_RejectsEmptyInputs(t *testing.T) {
	if _, err := NewDataset(nil, testGeometries(), nil); !errors.Is(err, ErrNoRecords) {
		t.Errorf("empty records: err = %v, want ErrNoRecords", err)
	}
	if _, err := NewDataset(testRecords(), nil, nil); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("empty geometry: err = %v, want ErrNoGeometry", err)
	}
}

func TestDataset_NamesKeepLoadOrder(t *testing.T) {
	ds := testDataset(t)
	names := ds.Names()
	if len(names) != 2 || names[0] != "California" || names[1] != "Texas" {
		t.Errorf("names = %v, want [California Texas]", names)
	}
}

func TestDataset_Extents(t *testing.T) {
	ds := testDataset(t)
	if got := ds.MaxConfirmed(); got != 100 {
		t.Errorf("MaxConfirmed = %d, want 100", got)
	}
	if got := ds.MaxDeaths(); got != 10 {
		t.Errorf("MaxDeaths = %d, want 10", got)
	}
}
