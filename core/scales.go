package core

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorScale maps a confirmed-case count onto a sequential color ramp.
// Interpolation happens in Lab space so the ramp is perceptually even.
type ColorScale struct {
	low       colorful.Color
	high      colorful.Color
	domainMax float64
}

// NewColorScale builds a sequential scale over [0, domainMax]. A zero
// domainMax collapses the scale to the low color.
func NewColorScale(low, high colorful.Color, domainMax float64) ColorScale {
	return ColorScale{low: low, high: high, domainMax: domainMax}
}

// At returns the color for v. Values outside the domain clamp to the ends.
func (s ColorScale) At(v float64) color.RGBA {
	t := 0.0
	if s.domainMax > 0 {
		t = v / s.domainMax
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	c := s.low.BlendLab(s.high, t).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RadiusScale maps a death count onto a marker radius. The mapping is
// square-root shaped so marker area, not radius, is proportional to the
// value.
type RadiusScale struct {
	domainMax float64
	rangeMax  float64
}

// NewRadiusScale builds a sqrt scale from [0, domainMax] to [0, rangeMax].
func NewRadiusScale(domainMax, rangeMax float64) RadiusScale {
	return RadiusScale{domainMax: domainMax, rangeMax: rangeMax}
}

// At returns the radius for v; At(0) is always 0.
func (s RadiusScale) At(v float64) float64 {
	if v <= 0 || s.domainMax <= 0 {
		return 0
	}
	if v > s.domainMax {
		v = s.domainMax
	}
	return s.rangeMax * math.Sqrt(v/s.domainMax)
}

// BandScale assigns each region name a fixed-width slot along one axis,
// with fractional padding between slots. Slot order is the dataset's
// record order, so the same x position means the same region in every
// chart.
type BandScale struct {
	index   map[string]int
	n       int
	width   float64
	padding float64
}

// NewBandScale lays out names across width with the given padding
// fraction (0 ≤ padding < 1).
func NewBandScale(names []string, width, padding float64) BandScale {
	idx := make(map[string]int, len(names))
	for i, name := range names {
		idx[name] = i
	}
	return BandScale{index: idx, n: len(names), width: width, padding: padding}
}

// Step returns the distance between the starts of adjacent bands.
func (s BandScale) Step() float64 {
	if s.n == 0 {
		return 0
	}
	return s.width / float64(s.n)
}

// Bandwidth returns the drawable width of one band.
func (s BandScale) Bandwidth() float64 {
	return s.Step() * (1 - s.padding)
}

// Position returns the left edge of the band for name.
func (s BandScale) Position(name string) (float64, bool) {
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return float64(i)*s.Step() + s.Step()*s.padding/2, true
}

// LinearScale maps [0, domainMax] onto a pixel range. The chart scales use
// an inverted range [plotHeight, 0]: larger values map to smaller y.
type LinearScale struct {
	domainMax  float64
	rangeStart float64
	rangeEnd   float64
}

// NewLinearScale builds a linear scale with the domain max rounded up to a
// round number ("niced"), matching axis-tick conventions.
func NewLinearScale(domainMax, rangeStart, rangeEnd float64) LinearScale {
	return LinearScale{
		domainMax:  niceCeil(domainMax),
		rangeStart: rangeStart,
		rangeEnd:   rangeEnd,
	}
}

// At maps v into the pixel range, clamped to the domain.
func (s LinearScale) At(v float64) float64 {
	if s.domainMax <= 0 {
		return s.rangeStart
	}
	t := v / s.domainMax
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return s.rangeStart + t*(s.rangeEnd-s.rangeStart)
}

// DomainMax returns the niced upper bound of the domain.
func (s LinearScale) DomainMax() float64 { return s.domainMax }

// niceCeil rounds v up to the nearest 1, 2 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 0
	}
	exp := math.Floor(math.Log10(v))
	pow := math.Pow(10, exp)
	frac := v / pow
	var nice float64
	switch {
	case frac <= 1:
		nice = 1
	case frac <= 2:
		nice = 2
	case frac <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * pow
}

// ScaleRegistry bundles every scale derived from one dataset load. It is a
// pure function of the dataset: recomputed once per load, never mutated.
type ScaleRegistry struct {
	Color     ColorScale
	Radius    RadiusScale
	Band      BandScale
	Confirmed LinearScale
	Deaths    LinearScale
}

// ScaleConfig carries the layout inputs the scales depend on.
type ScaleConfig struct {
	ChartWidth  float64
	PlotHeight  float64
	BandPadding float64
	MaxRadius   float64
	LowColor    string // hex, e.g. "#fee5d9"
	HighColor   string // hex, e.g. "#a50f15"
}

// DefaultScaleConfig mirrors the dashboard's visual encoding defaults.
func DefaultScaleConfig() ScaleConfig {
	return ScaleConfig{
		ChartWidth:  380,
		PlotHeight:  200,
		BandPadding: 0.2,
		MaxRadius:   15,
		LowColor:    "#fee5d9",
		HighColor:   "#a50f15",
	}
}

// NewScaleRegistry derives all scales from the dataset extents. Absent
// optional fields never participate in an extent, so they cannot skew a
// domain.
func NewScaleRegistry(ds *Dataset, cfg ScaleConfig) *ScaleRegistry {
	low, err := colorful.Hex(cfg.LowColor)
	if err != nil {
		low = colorful.Color{R: 1, G: 0.9, B: 0.85}
	}
	high, err := colorful.Hex(cfg.HighColor)
	if err != nil {
		high = colorful.Color{R: 0.65, G: 0.06, B: 0.08}
	}

	return &ScaleRegistry{
		Color:     NewColorScale(low, high, float64(ds.MaxConfirmed())),
		Radius:    NewRadiusScale(float64(ds.MaxDeaths()), cfg.MaxRadius),
		Band:      NewBandScale(ds.Names(), cfg.ChartWidth, cfg.BandPadding),
		Confirmed: NewLinearScale(float64(ds.MaxConfirmed()), cfg.PlotHeight, 0),
		Deaths:    NewLinearScale(float64(ds.MaxDeaths()), cfg.PlotHeight, 0),
	}
}
