package core

import (
	"errors"
	"fmt"

	"github.com/outbreaklabs/covid-dashboard/model"
)

var (
	ErrNoRecords       = errors.New("dataset has no records")
	ErrNoGeometry      = errors.New("dataset has no geometry")
	ErrDuplicateRegion = errors.New("duplicate region name")
)

// Dataset joins the case records with the region geometry by display name.
// The join happens once, at construction, so name mismatches between the
// two independently loaded sources are visible before any interaction.
//
// Records keep their load order; the band scale and both bar charts index
// regions in exactly this order.
type Dataset struct {
	records []model.RegionRecord
	geoms   []model.RegionGeometry
	mesh    []model.Edge

	byName     map[string]*model.RegionRecord
	geomByName map[string]*model.RegionGeometry

	// Names present on one side of the join only.
	unmatchedGeometry []string
	unmatchedRecords  []string
}

// NewDataset builds the name join. Duplicate record or geometry names are
// structural errors; one-sided names are tolerated and reported through
// UnmatchedGeometry / UnmatchedRecords.
func NewDataset(records []model.RegionRecord, geoms []model.RegionGeometry, mesh []model.Edge) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if len(geoms) == 0 {
		return nil, ErrNoGeometry
	}

	ds := &Dataset{
		records:    records,
		geoms:      geoms,
		mesh:       mesh,
		byName:     make(map[string]*model.RegionRecord, len(records)),
		geomByName: make(map[string]*model.RegionGeometry, len(geoms)),
	}

	for i := range records {
		name := records[i].Name
		if name == "" {
			return nil, fmt.Errorf("record %d: empty region name", i)
		}
		if _, exists := ds.byName[name]; exists {
			return nil, fmt.Errorf("%w: record %q", ErrDuplicateRegion, name)
		}
		ds.byName[name] = &ds.records[i]
	}

	for i := range geoms {
		name := geoms[i].Name
		if name == "" {
			return nil, fmt.Errorf("geometry %d: empty region name", i)
		}
		if _, exists := ds.geomByName[name]; exists {
			return nil, fmt.Errorf("%w: geometry %q", ErrDuplicateRegion, name)
		}
		ds.geomByName[name] = &ds.geoms[i]
	}

	// Near-miss names (e.g. "Washington" vs "Washington, D.C.") stay
	// unmatched; the join never guesses.
	for i := range geoms {
		if _, ok := ds.byName[geoms[i].Name]; !ok {
			ds.unmatchedGeometry = append(ds.unmatchedGeometry, geoms[i].Name)
		}
	}
	for i := range records {
		if _, ok := ds.geomByName[records[i].Name]; !ok {
			ds.unmatchedRecords = append(ds.unmatchedRecords, records[i].Name)
		}
	}

	return ds, nil
}

// Record returns the case record for a region name, if any.
func (ds *Dataset) Record(name string) (*model.RegionRecord, bool) {
	r, ok := ds.byName[name]
	return r, ok
}

// Geometry returns the boundary for a region name, if any.
func (ds *Dataset) Geometry(name string) (*model.RegionGeometry, bool) {
	g, ok := ds.geomByName[name]
	return g, ok
}

// Records returns all case records in load order.
func (ds *Dataset) Records() []model.RegionRecord { return ds.records }

// Geometries returns all region boundaries in load order.
func (ds *Dataset) Geometries() []model.RegionGeometry { return ds.geoms }

// Mesh returns the shared-edge boundary mesh.
func (ds *Dataset) Mesh() []model.Edge { return ds.mesh }

// Names returns the record names in load order. This is the canonical
// region ordering used by every view.
func (ds *Dataset) Names() []string {
	names := make([]string, len(ds.records))
	for i := range ds.records {
		names[i] = ds.records[i].Name
	}
	return names
}

// UnmatchedGeometry lists geometry names with no matching record.
func (ds *Dataset) UnmatchedGeometry() []string { return ds.unmatchedGeometry }

// UnmatchedRecords lists record names with no matching geometry.
func (ds *Dataset) UnmatchedRecords() []string { return ds.unmatchedRecords }

// MaxConfirmed returns the largest confirmed count across all records.
func (ds *Dataset) MaxConfirmed() int {
	max := 0
	for i := range ds.records {
		if ds.records[i].Confirmed > max {
			max = ds.records[i].Confirmed
		}
	}
	return max
}

// MaxDeaths returns the largest death count across all records.
func (ds *Dataset) MaxDeaths() int {
	max := 0
	for i := range ds.records {
		if ds.records[i].Deaths > max {
			max = ds.records[i].Deaths
		}
	}
	return max
}

// GeoBounds returns the bounding box of all region geometry.
func (ds *Dataset) GeoBounds() model.GeoBounds {
	return model.BoundsOf(ds.geoms)
}
