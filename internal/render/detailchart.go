package render

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/outbreaklabs/covid-dashboard/core"
)

// DetailChartPNG renders the four-category detail chart for one region as
// a PNG, for compositing into the interactive frontend. Unknown stats
// render as zero-height bars so the category axis stays stable.
func DetailChartPNG(d *core.DetailView, width, height int) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("nil detail view")
	}

	bars := make([]chart.Value, 0, len(d.Stats))
	for _, s := range d.Stats {
		bars = append(bars, chart.Value{
			Label: s.Label,
			Value: float64(s.Value),
		})
	}

	max := float64(d.MaxValue())
	if max <= 0 {
		max = 1
	}

	bc := chart.BarChart{
		Title:  d.Region,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 30, Left: 10, Right: 10, Bottom: 10},
		},
		BarWidth: width / (len(bars) + 2),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render detail chart: %w", err)
	}
	return buf.Bytes(), nil
}
