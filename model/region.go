package model

// RegionRecord is one per-region row of the case dataset. Records are
// immutable after load; optional fields are nil when the source row left
// them blank.
type RegionRecord struct {
	Name      string
	Confirmed int
	Deaths    int
	Recovered *int
	Active    *int
	Latitude  *float64
	Longitude *float64
}

// HasCoordinates reports whether both latitude and longitude are present.
func (r *RegionRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// GeoPoint is a geographic coordinate in degrees.
type GeoPoint struct {
	Lng float64
	Lat float64
}

// Ring is a closed sequence of geographic points. The first and last point
// may or may not coincide; consumers treat the ring as implicitly closed.
type Ring []GeoPoint

// Polygon is one outer ring followed by zero or more hole rings.
type Polygon []Ring

// RegionGeometry is the boundary of one region, keyed by display name.
// Geometry is joined to RegionRecord by exact name equality.
type RegionGeometry struct {
	Name     string
	Polygons []Polygon
}

// Edge is one shared-boundary segment of the adjacency mesh.
type Edge struct {
	A GeoPoint
	B GeoPoint
}

// GeoBounds is a geographic bounding box in degrees.
type GeoBounds struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// Extend grows the bounds to include p.
func (b *GeoBounds) Extend(p GeoPoint) {
	if p.Lng < b.MinLng {
		b.MinLng = p.Lng
	}
	if p.Lng > b.MaxLng {
		b.MaxLng = p.Lng
	}
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
}

// BoundsOf computes the geographic bounding box of a set of geometries.
func BoundsOf(geoms []RegionGeometry) GeoBounds {
	b := GeoBounds{MinLng: 180, MinLat: 90, MaxLng: -180, MaxLat: -90}
	for _, g := range geoms {
		for _, poly := range g.Polygons {
			for _, ring := range poly {
				for _, p := range ring {
					b.Extend(p)
				}
			}
		}
	}
	return b
}
