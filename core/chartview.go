package core

import (
	"github.com/outbreaklabs/covid-dashboard/model"
)

// ValueAccessor picks the charted value out of a record.
type ValueAccessor func(r *model.RegionRecord) float64

// ConfirmedValue accesses the confirmed-case count.
func ConfirmedValue(r *model.RegionRecord) float64 { return float64(r.Confirmed) }

// DeathsValue accesses the death count.
func DeathsValue(r *model.RegionRecord) float64 { return float64(r.Deaths) }

// Bar is one rendered bar of an aggregate chart, in plot coordinates.
type Bar struct {
	Name        string
	Value       float64
	X           float64
	Y           float64
	Width       float64
	Height      float64
	Highlighted bool
}

// AggregateChartView renders one bar per region. Both instances (confirmed
// and deaths) share the band scale, so a given x position is the same
// region in both charts; only the linear value scale differs.
type AggregateChartView struct {
	name       string
	ds         *Dataset
	band       BandScale
	value      LinearScale
	accessor   ValueAccessor
	plotHeight float64

	highlighted map[string]bool
	coord       *Coordinator
}

// NewAggregateChartView builds a chart over the dataset. name labels the
// view in coordinator events ("confirmed-chart", "death-chart").
func NewAggregateChartView(name string, ds *Dataset, band BandScale, value LinearScale, accessor ValueAccessor, plotHeight float64) *AggregateChartView {
	return &AggregateChartView{
		name:        name,
		ds:          ds,
		band:        band,
		value:       value,
		accessor:    accessor,
		plotHeight:  plotHeight,
		highlighted: make(map[string]bool),
	}
}

// Bind attaches the chart to the coordinator and registers it as a
// highlight sink.
func (v *AggregateChartView) Bind(c *Coordinator) {
	v.coord = c
	c.RegisterHighlightSink(v)
}

// ViewName implements HighlightSink.
func (v *AggregateChartView) ViewName() string { return v.name }

// SetHighlight implements HighlightSink.
func (v *AggregateChartView) SetHighlight(region string, on bool) {
	if on {
		v.highlighted[region] = true
	} else {
		delete(v.highlighted, region)
	}
}

// HoverBar reports a pointer entering the bar for region.
func (v *AggregateChartView) HoverBar(region string) {
	if v.coord != nil {
		v.coord.Highlight(region, v.name)
	}
}

// UnhoverBar reports a pointer leaving the bar for region.
func (v *AggregateChartView) UnhoverBar(region string) {
	if v.coord != nil {
		v.coord.Unhighlight(region, v.name)
	}
}

// Bars returns the bar geometry in region order. The value scale range is
// inverted ([plotHeight, 0]), so y is the scaled value and height is the
// remainder down to the baseline.
func (v *AggregateChartView) Bars() []Bar {
	records := v.ds.Records()
	bars := make([]Bar, 0, len(records))
	for i := range records {
		r := &records[i]
		x, ok := v.band.Position(r.Name)
		if !ok {
			continue
		}
		val := v.accessor(r)
		y := v.value.At(val)
		bars = append(bars, Bar{
			Name:        r.Name,
			Value:       val,
			X:           x,
			Y:           y,
			Width:       v.band.Bandwidth(),
			Height:      v.plotHeight - y,
			Highlighted: v.highlighted[r.Name],
		})
	}
	return bars
}

// BarAt returns the region name of the bar containing plot point (x, y),
// for pointer hit-testing.
func (v *AggregateChartView) BarAt(x, y float64) (string, bool) {
	for _, b := range v.Bars() {
		if x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height {
			return b.Name, true
		}
	}
	return "", false
}
