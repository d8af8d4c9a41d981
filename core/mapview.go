package core

import (
	"image/color"
	"time"

	"github.com/outbreaklabs/covid-dashboard/model"
)

const (
	// MinZoom and MaxZoom bound the view-transform scale.
	MinZoom = 1.0
	MaxZoom = 8.0

	// InitialZoom is applied once at startup, not animated.
	InitialZoom = 0.8

	// zoomFitFactor leaves a margin around a region zoomed to fit.
	zoomFitFactor = 0.9

	baseStrokeWidth = 1.0
)

// Neutral and active fills for regions without data and for the selected
// region.
var (
	NeutralFill = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	ActiveFill  = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
)

// ScreenPoint is a point in projected map space.
type ScreenPoint struct {
	X float64
	Y float64
}

// projectedRegion caches a region's boundary in projected space together
// with its bounding box, for hit-testing and zoom-to-fit.
type projectedRegion struct {
	name     string
	polygons [][][]ScreenPoint // polygon -> ring -> points
	minX     float64
	minY     float64
	maxX     float64
	maxY     float64
}

// Marker is one death marker, in projected space. Records without
// coordinates get an off-canvas position rather than being skipped, so the
// marker count and ordering stay stable across re-renders.
type Marker struct {
	Name   string
	X      float64
	Y      float64
	Radius float64
}

// MapView renders the choropleth and owns the pan/zoom transform. All
// state here is last-rendered data plus the transform; cross-view state
// lives in the Coordinator.
type MapView struct {
	name   string
	width  float64
	height float64

	ds     *Dataset
	scales *ScaleRegistry
	proj   *Projection
	tween  *TransformTween

	regions []projectedRegion
	byName  map[string]*projectedRegion
	mesh    [][2]ScreenPoint
	markers []Marker

	highlighted  map[string]bool
	activeRegion string

	coord *Coordinator
}

// NewMapView projects the dataset geometry into a width x height viewport
// and starts at the initial transform: translated to the viewport center
// at 0.8 scale.
func NewMapView(ds *Dataset, scales *ScaleRegistry, width, height float64, tweenDuration time.Duration) *MapView {
	v := &MapView{
		name:        "map",
		width:       width,
		height:      height,
		ds:          ds,
		scales:      scales,
		proj:        NewProjection(ds.GeoBounds(), width, height),
		highlighted: make(map[string]bool),
		byName:      make(map[string]*projectedRegion),
	}
	v.tween = NewTransformTween(v.initialTransform(), tweenDuration)
	v.projectGeometry()
	v.projectMesh()
	v.buildMarkers()
	return v
}

// Bind attaches the view to the coordinator as both a highlight and a
// selection sink.
func (v *MapView) Bind(c *Coordinator) {
	v.coord = c
	c.RegisterHighlightSink(v)
	c.RegisterSelectionSink(v)
}

func (v *MapView) projectGeometry() {
	geoms := v.ds.Geometries()
	v.regions = make([]projectedRegion, 0, len(geoms))
	for i := range geoms {
		g := &geoms[i]
		pr := projectedRegion{
			name: g.Name,
			minX: v.width, minY: v.height,
			maxX: -v.width, maxY: -v.height,
		}
		for _, poly := range g.Polygons {
			rings := make([][]ScreenPoint, 0, len(poly))
			for _, ring := range poly {
				pts := make([]ScreenPoint, 0, len(ring))
				for _, p := range ring {
					x, y := v.proj.ProjectPoint(p)
					pts = append(pts, ScreenPoint{X: x, Y: y})
					if x < pr.minX {
						pr.minX = x
					}
					if x > pr.maxX {
						pr.maxX = x
					}
					if y < pr.minY {
						pr.minY = y
					}
					if y > pr.maxY {
						pr.maxY = y
					}
				}
				rings = append(rings, pts)
			}
			pr.polygons = append(pr.polygons, rings)
		}
		v.regions = append(v.regions, pr)
	}
	for i := range v.regions {
		v.byName[v.regions[i].name] = &v.regions[i]
	}
}

func (v *MapView) projectMesh() {
	for _, e := range v.ds.Mesh() {
		ax, ay := v.proj.ProjectPoint(e.A)
		bx, by := v.proj.ProjectPoint(e.B)
		v.mesh = append(v.mesh, [2]ScreenPoint{{X: ax, Y: ay}, {X: bx, Y: by}})
	}
}

func (v *MapView) buildMarkers() {
	records := v.ds.Records()
	v.markers = make([]Marker, 0, len(records))
	for i := range records {
		r := &records[i]
		m := Marker{Name: r.Name, Radius: v.scales.Radius.At(float64(r.Deaths))}
		if r.HasCoordinates() {
			m.X, m.Y = v.proj.Project(*r.Latitude, *r.Longitude)
		} else {
			// Off-canvas, far enough that no transform in the zoom
			// bounds brings it back into view.
			m.X = -v.width * 10
			m.Y = -v.height * 10
		}
		v.markers = append(v.markers, m)
	}
}

func (v *MapView) initialTransform() model.ViewTransform {
	return model.ViewTransform{TranslateX: v.width / 2, TranslateY: v.height / 2, Scale: InitialZoom}
}

// CenteredIdentity is the reset target: identity scale, projection origin
// at the viewport center.
func (v *MapView) CenteredIdentity() model.ViewTransform {
	return model.ViewTransform{TranslateX: v.width / 2, TranslateY: v.height / 2, Scale: 1}
}

// Transform returns the current view transform.
func (v *MapView) Transform() model.ViewTransform { return v.tween.Current() }

// StepAnimation advances any in-flight transform animation.
func (v *MapView) StepAnimation(dt time.Duration) model.ViewTransform {
	return v.tween.Step(dt)
}

// Animating reports whether a transform animation is in flight.
func (v *MapView) Animating() bool { return v.tween.Active() }

// ViewName implements HighlightSink.
func (v *MapView) ViewName() string { return v.name }

// SetHighlight implements HighlightSink.
func (v *MapView) SetHighlight(region string, on bool) {
	if on {
		v.highlighted[region] = true
	} else {
		delete(v.highlighted, region)
	}
}

// ShowSelection implements SelectionSink: the selected region gets the
// active fill, every other override is dropped.
func (v *MapView) ShowSelection(region string) { v.activeRegion = region }

// ClearSelection implements SelectionSink.
func (v *MapView) ClearSelection() { v.activeRegion = "" }

// Hover reports the pointer entering a region.
func (v *MapView) Hover(region string) {
	if v.coord != nil {
		v.coord.Highlight(region, v.name)
	}
}

// Unhover reports the pointer leaving a region.
func (v *MapView) Unhover(region string) {
	if v.coord != nil {
		v.coord.Unhighlight(region, v.name)
	}
}

// ClickRegion zooms the view to fit the clicked region and asks the
// coordinator to select it. The zoom scale is capped at MaxZoom and the
// region's bounding-box center lands on the viewport center when the
// animation completes.
func (v *MapView) ClickRegion(region string) {
	pr, ok := v.byName[region]
	if ok {
		v.tween.To(v.fitTransform(pr))
	}
	if v.coord != nil {
		v.coord.Select(region)
	}
}

// ClickBackground clears the selection and animates back to the centered
// identity transform.
func (v *MapView) ClickBackground() {
	v.tween.To(v.CenteredIdentity())
	if v.coord != nil {
		v.coord.Deselect()
	}
}

// fitTransform computes the zoom-to-bounds transform for a region.
func (v *MapView) fitTransform(pr *projectedRegion) model.ViewTransform {
	bw := pr.maxX - pr.minX
	bh := pr.maxY - pr.minY
	cx := (pr.minX + pr.maxX) / 2
	cy := (pr.minY + pr.maxY) / 2

	ratio := bw / v.width
	if hr := bh / v.height; hr > ratio {
		ratio = hr
	}
	k := MaxZoom
	if ratio > 0 {
		k = zoomFitFactor / ratio
		if k > MaxZoom {
			k = MaxZoom
		}
	}
	if k < MinZoom {
		k = MinZoom
	}

	return model.ViewTransform{
		TranslateX: v.width/2 - k*cx,
		TranslateY: v.height/2 - k*cy,
		Scale:      k,
	}
}

// ZoomGesture applies a gesture transform directly, cancelling any
// animation. Scale is clamped to [MinZoom, MaxZoom].
func (v *MapView) ZoomGesture(t model.ViewTransform) {
	if t.Scale < MinZoom {
		t.Scale = MinZoom
	}
	if t.Scale > MaxZoom {
		t.Scale = MaxZoom
	}
	v.tween.Jump(t)
}

// ZoomBy composes a wheel zoom about a screen focus point, so the map
// point under the cursor stays put.
func (v *MapView) ZoomBy(factor, focusX, focusY float64) {
	cur := v.tween.Current()
	k := cur.Scale * factor
	if k < MinZoom {
		k = MinZoom
	}
	if k > MaxZoom {
		k = MaxZoom
	}
	// Keep the projected point under (focusX, focusY) fixed.
	px, py := cur.Invert(focusX, focusY)
	v.tween.Jump(model.ViewTransform{
		TranslateX: focusX - k*px,
		TranslateY: focusY - k*py,
		Scale:      k,
	})
}

// StrokeWidth returns the boundary stroke width for the current zoom.
// Strokes scale by 1/k so borders look constant-width at any zoom.
func (v *MapView) StrokeWidth() float64 {
	return baseStrokeWidth / v.tween.Current().Scale
}

// RegionFill returns the fill for a region: the active override for the
// selected region, the color scale for regions with data, neutral for
// geometry with no matching record.
func (v *MapView) RegionFill(region string) color.RGBA {
	if region == v.activeRegion {
		return ActiveFill
	}
	if rec, ok := v.ds.Record(region); ok {
		return v.scales.Color.At(float64(rec.Confirmed))
	}
	return NeutralFill
}

// Highlighted reports whether the region carries the highlight class.
func (v *MapView) Highlighted(region string) bool { return v.highlighted[region] }

// Regions returns region names in geometry order.
func (v *MapView) Regions() []string {
	names := make([]string, len(v.regions))
	for i := range v.regions {
		names[i] = v.regions[i].name
	}
	return names
}

// RegionPolygons returns a region's boundary in projected space.
func (v *MapView) RegionPolygons(region string) ([][][]ScreenPoint, bool) {
	pr, ok := v.byName[region]
	if !ok {
		return nil, false
	}
	return pr.polygons, true
}

// MeshSegments returns the shared boundary mesh in projected space.
func (v *MapView) MeshSegments() [][2]ScreenPoint { return v.mesh }

// Markers returns every death marker in projected space, one per record.
func (v *MapView) Markers() []Marker { return v.markers }

// Size returns the viewport dimensions.
func (v *MapView) Size() (float64, float64) { return v.width, v.height }

// RegionAt hit-tests a screen point against the region boundaries under
// the current transform. Even-odd ray casting, holes subtract.
func (v *MapView) RegionAt(screenX, screenY float64) (string, bool) {
	px, py := v.tween.Current().Invert(screenX, screenY)
	for i := range v.regions {
		pr := &v.regions[i]
		if px < pr.minX || px > pr.maxX || py < pr.minY || py > pr.maxY {
			continue
		}
		for _, poly := range pr.polygons {
			if pointInPolygon(px, py, poly) {
				return pr.name, true
			}
		}
	}
	return "", false
}

func pointInPolygon(x, y float64, rings [][]ScreenPoint) bool {
	if len(rings) == 0 {
		return false
	}
	if !pointInRing(x, y, rings[0]) {
		return false
	}
	for i := 1; i < len(rings); i++ {
		if pointInRing(x, y, rings[i]) {
			return false
		}
	}
	return true
}

func pointInRing(x, y float64, ring []ScreenPoint) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi {
			inside = !inside
		}
	}
	return inside
}
