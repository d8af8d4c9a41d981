// Package render turns the views' current state into concrete output: a
// full-dashboard SVG snapshot for headless use, and a PNG detail chart for
// the interactive frontend.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/outbreaklabs/covid-dashboard/core"
)

const (
	chartGap     = 40
	chartMarginX = 20
	detailHeight = 160
)

// Renderer writes an SVG snapshot of the whole dashboard: map with
// markers and mesh, both aggregate charts, and the detail panel when a
// region is selected.
type Renderer struct {
	mapView    *core.MapView
	confirmed  *core.AggregateChartView
	deaths     *core.AggregateChartView
	coord      *core.Coordinator
	plotHeight float64
	chartWidth float64
}

// NewRenderer bundles the views for snapshotting.
func NewRenderer(mv *core.MapView, confirmed, deaths *core.AggregateChartView, coord *core.Coordinator, chartWidth, plotHeight float64) *Renderer {
	return &Renderer{
		mapView:    mv,
		confirmed:  confirmed,
		deaths:     deaths,
		coord:      coord,
		plotHeight: plotHeight,
		chartWidth: chartWidth,
	}
}

// Snapshot writes the dashboard as a single SVG document.
func (r *Renderer) Snapshot(w io.Writer) error {
	mapW, mapH := r.mapView.Size()
	totalW := int(mapW + r.chartWidth + 3*chartMarginX)
	totalH := int(mapH)
	if chartsH := int(2*(r.plotHeight+chartGap) + detailHeight); chartsH > totalH {
		totalH = chartsH
	}

	canvas := svg.New(w)
	canvas.Start(totalW, totalH)

	r.drawMap(canvas)

	chartX := int(mapW) + 2*chartMarginX
	r.drawChart(canvas, r.confirmed, "Confirmed", chartX, chartGap/2, rgb(color.RGBA{R: 0xde, G: 0x6a, B: 0x5a, A: 0xff}))
	r.drawChart(canvas, r.deaths, "Deaths", chartX, int(r.plotHeight)+chartGap+chartGap/2, rgb(color.RGBA{R: 0x5a, G: 0x5a, B: 0x5a, A: 0xff}))

	if d := r.coord.Detail(); d != nil {
		r.drawDetail(canvas, d, chartX, int(2*(r.plotHeight+chartGap)))
	}

	canvas.End()
	return nil
}

func (r *Renderer) drawMap(canvas *svg.SVG) {
	t := r.mapView.Transform()
	canvas.Gtransform(fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f)", t.TranslateX, t.TranslateY, t.Scale))

	stroke := r.mapView.StrokeWidth()
	for _, name := range r.mapView.Regions() {
		polys, _ := r.mapView.RegionPolygons(name)
		fill := r.mapView.RegionFill(name)
		attrs := fmt.Sprintf(`fill="%s" stroke="white" stroke-width="%.3f" data-region="%s"`, rgb(fill), stroke, escapeAttr(name))
		if r.mapView.Highlighted(name) {
			attrs += ` class="highlighted" opacity="0.75"`
		}
		for _, poly := range polys {
			canvas.Path(pathData(poly), attrs)
		}
	}

	// Shared borders drawn once, on top of the fills.
	meshAttrs := fmt.Sprintf(`stroke="#666" stroke-width="%.3f" fill="none"`, stroke)
	var b strings.Builder
	for _, seg := range r.mapView.MeshSegments() {
		fmt.Fprintf(&b, "M%.2f,%.2fL%.2f,%.2f", seg[0].X, seg[0].Y, seg[1].X, seg[1].Y)
	}
	if b.Len() > 0 {
		canvas.Path(b.String(), meshAttrs)
	}

	for _, m := range r.mapView.Markers() {
		canvas.Circle(int(m.X), int(m.Y), int(m.Radius),
			fmt.Sprintf(`fill="rgba(0,0,0,0.35)" data-region="%s"`, escapeAttr(m.Name)))
	}

	canvas.Gend()
}

func (r *Renderer) drawChart(canvas *svg.SVG, view *core.AggregateChartView, title string, ox, oy int, fill string) {
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", ox, oy))
	canvas.Text(0, -6, title, `font-size="13" font-family="sans-serif"`)
	for _, bar := range view.Bars() {
		attrs := fmt.Sprintf(`fill="%s" data-region="%s"`, fill, escapeAttr(bar.Name))
		if bar.Highlighted {
			attrs = fmt.Sprintf(`fill="%s" class="highlighted" data-region="%s"`, fill, escapeAttr(bar.Name))
		}
		canvas.Path(rectPath(bar.X, bar.Y, bar.Width, bar.Height), attrs)
	}
	// Baseline.
	canvas.Line(0, int(r.plotHeight), int(r.chartWidth), int(r.plotHeight), `stroke="#333" stroke-width="1"`)
	canvas.Gend()
}

func (r *Renderer) drawDetail(canvas *svg.SVG, d *core.DetailView, ox, oy int) {
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", ox, oy))
	canvas.Text(0, 14, d.Region, `font-size="14" font-family="sans-serif" font-weight="bold"`)

	scale := core.NewLinearScale(float64(d.MaxValue()), detailHeight-40, 0)
	step := r.chartWidth / float64(len(d.Stats))
	barW := step * 0.7
	for i, s := range d.Stats {
		x := float64(i)*step + step*0.15
		y := scale.At(float64(s.Value)) + 24
		h := (detailHeight - 40 + 24) - y
		fill := `fill="#4a7aa5"`
		if !s.Known {
			fill = `fill="#bbb"`
		}
		canvas.Path(rectPath(x, y, barW, h), fmt.Sprintf(`%s data-stat="%s"`, fill, s.Label))
		canvas.Text(int(x), detailHeight-2, s.Label, `font-size="11" font-family="sans-serif"`)
	}
	canvas.Gend()
}

// pathData flattens one polygon (outer ring plus holes) into an SVG path,
// each ring closed.
func pathData(poly [][]core.ScreenPoint) string {
	var b strings.Builder
	for _, ring := range poly {
		for i, p := range ring {
			if i == 0 {
				fmt.Fprintf(&b, "M%.2f,%.2f", p.X, p.Y)
			} else {
				fmt.Fprintf(&b, "L%.2f,%.2f", p.X, p.Y)
			}
		}
		b.WriteString("Z")
	}
	return b.String()
}

func rectPath(x, y, w, h float64) string {
	return fmt.Sprintf("M%.2f,%.2fh%.2fv%.2fh%.2fZ", x, y, w, h, -w)
}

func rgb(c color.RGBA) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return s
}
