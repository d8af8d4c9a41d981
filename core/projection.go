package core

import (
	"math"

	"github.com/outbreaklabs/covid-dashboard/model"
)

// Projection maps geographic coordinates onto origin-centered projected
// space. The map's view transform then places projected space on screen,
// so the centered identity transform translate(w/2, h/2) scale(1) shows
// the whole projection centered in the viewport.
//
// The projection is equirectangular with the horizontal axis compressed by
// cos(midLat) so mid-latitude shapes keep a plausible aspect.
type Projection struct {
	midLng   float64
	midLat   float64
	scale    float64
	lngScale float64
}

// NewProjection fits the geographic bounds into a width x height viewport,
// leaving a small margin so boundary strokes are not clipped.
func NewProjection(b model.GeoBounds, width, height float64) *Projection {
	midLng := (b.MinLng + b.MaxLng) / 2
	midLat := (b.MinLat + b.MaxLat) / 2
	lngScale := math.Cos(midLat * math.Pi / 180)
	if lngScale < 0.1 {
		lngScale = 0.1
	}

	lngSpan := (b.MaxLng - b.MinLng) * lngScale
	latSpan := b.MaxLat - b.MinLat
	if lngSpan <= 0 {
		lngSpan = 1
	}
	if latSpan <= 0 {
		latSpan = 1
	}

	const margin = 0.95
	scale := math.Min(width*margin/lngSpan, height*margin/latSpan)

	return &Projection{midLng: midLng, midLat: midLat, scale: scale, lngScale: lngScale}
}

// Project maps (lat, lng) degrees into projected space. North is up.
func (p *Projection) Project(lat, lng float64) (x, y float64) {
	x = (lng - p.midLng) * p.lngScale * p.scale
	y = -(lat - p.midLat) * p.scale
	return x, y
}

// ProjectPoint maps a geographic point into projected space.
func (p *Projection) ProjectPoint(pt model.GeoPoint) (x, y float64) {
	return p.Project(pt.Lat, pt.Lng)
}
