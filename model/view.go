package model

// ViewTransform is a pan/zoom transform applied to projected map
// coordinates: screen = translate + scale * point.
type ViewTransform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Apply maps a projected point into screen space.
func (t ViewTransform) Apply(x, y float64) (float64, float64) {
	return t.TranslateX + t.Scale*x, t.TranslateY + t.Scale*y
}

// Invert maps a screen point back into projected space. Scale must be
// non-zero; a zero-scale transform is never constructed by the map view.
func (t ViewTransform) Invert(sx, sy float64) (float64, float64) {
	return (sx - t.TranslateX) / t.Scale, (sy - t.TranslateY) / t.Scale
}

// DetailStat is one category of the per-region detail chart. Known is
// false when the underlying field was absent in the source data.
type DetailStat struct {
	Label string
	Value int
	Known bool
}
