// Package ui is the interactive frontend: an ebiten render loop that
// feeds pointer and key events into the map view and coordinator, and
// draws the linked views each frame.
package ui

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/outbreaklabs/covid-dashboard/core"
	"github.com/outbreaklabs/covid-dashboard/internal/logging"
	"github.com/outbreaklabs/covid-dashboard/internal/render"
	"github.com/outbreaklabs/covid-dashboard/model"
)

const (
	chartMarginX = 20
	chartGap     = 40
	detailW      = 380
	detailH      = 200
)

var (
	backgroundColor = color.RGBA{R: 0x10, G: 0x12, B: 0x16, A: 0xff}
	meshColor       = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	markerColor     = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x59}
	highlightStroke = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	confirmedBar    = color.RGBA{R: 0xde, G: 0x6a, B: 0x5a, A: 0xff}
	deathsBar       = color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}
	labelColor      = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
)

// hoverTarget identifies what the pointer was last over.
type hoverTarget struct {
	view   string
	region string
}

// App drives the dashboard. All event handling happens on ebiten's update
// goroutine, which is the single event-processing thread the coordinator
// assumes.
type App struct {
	mapView   *core.MapView
	confirmed *core.AggregateChartView
	deaths    *core.AggregateChartView
	coord     *core.Coordinator
	log       logging.Logger

	width  int
	height int
	mapW   int
	mapH   int

	chartX     int
	chartW     float64
	plotHeight float64

	base          *ebiten.Image
	baseTransform model.ViewTransform
	baseDirty     bool

	hovered   hoverTarget
	detailImg *ebiten.Image
}

// NewApp wires the views into an ebiten game. The coordinator must already
// have the views bound.
func NewApp(mv *core.MapView, confirmed, deaths *core.AggregateChartView, coord *core.Coordinator, chartW, plotHeight float64, log logging.Logger) *App {
	if log == nil {
		log = logging.Noop()
	}
	mw, mh := mv.Size()
	a := &App{
		mapView:    mv,
		confirmed:  confirmed,
		deaths:     deaths,
		coord:      coord,
		log:        log,
		mapW:       int(mw),
		mapH:       int(mh),
		chartX:     int(mw) + 2*chartMarginX,
		chartW:     chartW,
		plotHeight: plotHeight,
		baseDirty:  true,
	}
	a.width = a.chartX + int(chartW) + chartMarginX
	a.height = a.mapH
	if h := int(2*(plotHeight+chartGap)) + detailH; h > a.height {
		a.height = h
	}

	coord.OnDetailChange(a.onDetailChange)
	return a
}

// Run opens the window and blocks until the user closes it.
func (a *App) Run(title string) error {
	ebiten.SetWindowSize(a.width, a.height)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(a)
}

// Layout implements ebiten.Game.
func (a *App) Layout(_, _ int) (int, int) { return a.width, a.height }

// Update implements ebiten.Game: one tick of event processing.
func (a *App) Update() error {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = 60
	}
	dt := time.Second / time.Duration(tps)

	before := a.mapView.Transform()
	after := a.mapView.StepAnimation(dt)
	if before != after {
		a.baseDirty = true
	}

	mx, my := ebiten.CursorPosition()

	if a.inMap(mx, my) {
		if _, wy := ebiten.Wheel(); wy != 0 {
			a.mapView.ZoomBy(math.Pow(1.1, wy), float64(mx), float64(my))
			a.baseDirty = true
		}
	}

	a.updateHover(mx, my)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && a.inMap(mx, my) {
		if region, ok := a.mapView.RegionAt(float64(mx), float64(my)); ok {
			// Region click wins; the background handler never sees it.
			a.mapView.ClickRegion(region)
		} else {
			a.mapView.ClickBackground()
		}
		a.baseDirty = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.mapView.ClickBackground()
		a.baseDirty = true
	}

	return nil
}

func (a *App) inMap(x, y int) bool {
	return x >= 0 && x < a.mapW && y >= 0 && y < a.mapH
}

// updateHover translates pointer position into hover enter/leave events on
// whichever view the pointer is over.
func (a *App) updateHover(mx, my int) {
	next := hoverTarget{}
	if a.inMap(mx, my) {
		if region, ok := a.mapView.RegionAt(float64(mx), float64(my)); ok {
			next = hoverTarget{view: "map", region: region}
		}
	} else if region, view, ok := a.chartBarAt(mx, my); ok {
		next = hoverTarget{view: view, region: region}
	}

	if next == a.hovered {
		return
	}

	if a.hovered.region != "" {
		switch a.hovered.view {
		case "map":
			a.mapView.Unhover(a.hovered.region)
		case "confirmed-chart":
			a.confirmed.UnhoverBar(a.hovered.region)
		case "death-chart":
			a.deaths.UnhoverBar(a.hovered.region)
		}
	}
	if next.region != "" {
		switch next.view {
		case "map":
			a.mapView.Hover(next.region)
		case "confirmed-chart":
			a.confirmed.HoverBar(next.region)
		case "death-chart":
			a.deaths.HoverBar(next.region)
		}
	}
	a.hovered = next
}

func (a *App) chartBarAt(mx, my int) (region, view string, ok bool) {
	x := float64(mx - a.chartX)
	if x < 0 || x > a.chartW {
		return "", "", false
	}

	confirmedTop := float64(chartGap / 2)
	if y := float64(my) - confirmedTop; y >= 0 && y <= a.plotHeight {
		if name, hit := a.confirmed.BarAt(x, y); hit {
			return name, "confirmed-chart", true
		}
		return "", "", false
	}

	deathsTop := a.plotHeight + chartGap + chartGap/2
	if y := float64(my) - deathsTop; y >= 0 && y <= a.plotHeight {
		if name, hit := a.deaths.BarAt(x, y); hit {
			return name, "death-chart", true
		}
	}
	return "", "", false
}

func (a *App) onDetailChange(d *core.DetailView) {
	if d == nil {
		a.detailImg = nil
		return
	}
	data, err := render.DetailChartPNG(d, detailW, detailH)
	if err != nil {
		a.log.Error(context.Background(), "detail chart render failed",
			logging.String("region", d.Region),
			logging.String("error", err.Error()))
		return
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		a.log.Error(context.Background(), "detail chart decode failed",
			logging.String("error", err.Error()))
		return
	}
	a.detailImg = ebiten.NewImageFromImage(img)
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if a.baseDirty || a.base == nil {
		a.regenerateBase()
	}
	screen.DrawImage(a.base, nil)

	t := a.mapView.Transform()
	a.drawMarkers(screen, t)
	a.drawHighlightOutline(screen, t)
	a.drawChart(screen, a.confirmed, "Confirmed", float64(chartGap/2), confirmedBar)
	a.drawChart(screen, a.deaths, "Deaths", a.plotHeight+chartGap+chartGap/2, deathsBar)

	if a.detailImg != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(a.chartX), 2*(a.plotHeight+chartGap))
		screen.DrawImage(a.detailImg, op)
	}

	if a.hovered.region != "" {
		text.Draw(screen, a.hovered.region, basicfont.Face7x13, 10, a.mapH-10, labelColor)
	}
}

// regenerateBase rasterizes the choropleth fills and the boundary mesh
// into a CPU image under the current transform. Regenerated only when the
// transform or a fill changed, not per frame.
func (a *App) regenerateBase() {
	t := a.mapView.Transform()
	img := image.NewRGBA(image.Rect(0, 0, a.mapW, a.mapH))

	for _, name := range a.mapView.Regions() {
		polys, _ := a.mapView.RegionPolygons(name)
		fill := a.mapView.RegionFill(name)
		for _, poly := range polys {
			a.fillPolygon(img, poly, t, fill)
		}
	}

	for _, seg := range a.mapView.MeshSegments() {
		x1, y1 := t.Apply(seg[0].X, seg[0].Y)
		x2, y2 := t.Apply(seg[1].X, seg[1].Y)
		a.drawLine(img, int(x1), int(y1), int(x2), int(y2), meshColor)
	}

	a.base = ebiten.NewImageFromImage(img)
	a.baseTransform = t
	a.baseDirty = false
}

// fillPolygon scanline-fills one polygon (outer ring plus holes) in screen
// space. Even-odd rule, so holes subtract naturally.
func (a *App) fillPolygon(img *image.RGBA, poly [][]core.ScreenPoint, t model.ViewTransform, c color.RGBA) {
	type pt struct{ x, y float64 }
	rings := make([][]pt, 0, len(poly))
	minY, maxY := float64(a.mapH), 0.0
	for _, ring := range poly {
		sp := make([]pt, 0, len(ring))
		for _, p := range ring {
			x, y := t.Apply(p.X, p.Y)
			sp = append(sp, pt{x, y})
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
		rings = append(rings, sp)
	}

	for y := int(minY); y <= int(maxY); y++ {
		if y < 0 || y >= a.mapH {
			continue
		}
		fy := float64(y)
		var nodes []int
		for _, ring := range rings {
			n := len(ring)
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				if (ring[i].y < fy && ring[j].y >= fy) || (ring[j].y < fy && ring[i].y >= fy) {
					nodeX := ring[i].x + (fy-ring[i].y)/(ring[j].y-ring[i].y)*(ring[j].x-ring[i].x)
					nodes = append(nodes, int(nodeX))
				}
			}
		}
		sortInts(nodes)
		for i := 0; i+1 < len(nodes); i += 2 {
			xs, xe := nodes[i], nodes[i+1]
			if xs < 0 {
				xs = 0
			}
			if xe >= a.mapW {
				xe = a.mapW - 1
			}
			for x := xs; x < xe; x++ {
				off := y*img.Stride + x*4
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 0xff
			}
		}
	}
}

func (a *App) drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx, dy := math.Abs(float64(x2-x1)), math.Abs(float64(y2-y1))
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		if x1 >= 0 && x1 < a.mapW && y1 >= 0 && y1 < a.mapH {
			off := y1*img.Stride + x1*4
			img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 0xff
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (a *App) drawMarkers(screen *ebiten.Image, t model.ViewTransform) {
	for _, m := range a.mapView.Markers() {
		if m.Radius <= 0 {
			continue
		}
		sx, sy := t.Apply(m.X, m.Y)
		if sx < -50 || sx > float64(a.mapW)+50 || sy < -50 || sy > float64(a.mapH)+50 {
			continue
		}
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(m.Radius*t.Scale), markerColor, true)
	}
}

func (a *App) drawHighlightOutline(screen *ebiten.Image, t model.ViewTransform) {
	for _, name := range a.mapView.Regions() {
		if !a.mapView.Highlighted(name) {
			continue
		}
		polys, _ := a.mapView.RegionPolygons(name)
		for _, poly := range polys {
			for _, ring := range poly {
				n := len(ring)
				for i := 0; i < n; i++ {
					x1, y1 := t.Apply(ring[i].X, ring[i].Y)
					x2, y2 := t.Apply(ring[(i+1)%n].X, ring[(i+1)%n].Y)
					vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 2, highlightStroke, true)
				}
			}
		}
	}
}

func (a *App) drawChart(screen *ebiten.Image, view *core.AggregateChartView, title string, top float64, barColor color.RGBA) {
	ox := float64(a.chartX)
	text.Draw(screen, title, basicfont.Face7x13, a.chartX, int(top)-6, labelColor)
	for _, b := range view.Bars() {
		c := barColor
		if b.Highlighted {
			c = highlightStroke
		}
		vector.DrawFilledRect(screen, float32(ox+b.X), float32(top+b.Y), float32(b.Width), float32(b.Height), c, false)
	}
	vector.StrokeLine(screen, float32(ox), float32(top+a.plotHeight), float32(ox+a.chartW), float32(top+a.plotHeight), 1, labelColor, false)
}

// sortInts is a tiny insertion sort; scanline node lists are short.
func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
