package core

import (
	"context"

	"github.com/outbreaklabs/covid-dashboard/internal/logging"
)

// HighlightSink is a view that can show transient emphasis for one region.
// The map and both aggregate charts register as sinks.
type HighlightSink interface {
	// ViewName identifies the view in logs and metrics.
	ViewName() string
	// SetHighlight turns the highlight class for region on or off.
	SetHighlight(region string, on bool)
}

// SelectionSink is a view that reflects the sticky selection. The map view
// implements it with its per-region fill overrides.
type SelectionSink interface {
	ShowSelection(region string)
	ClearSelection()
}

// EventRecorder receives interaction events for observability. The
// coordinator falls back to a no-op recorder when none is supplied.
type EventRecorder interface {
	RecordHighlight(source string)
	RecordUnhighlight(source string)
	RecordSelection(region string)
	RecordLookupMiss(view, region string)
}

type nopRecorder struct{}

func (nopRecorder) RecordHighlight(string)          {}
func (nopRecorder) RecordUnhighlight(string)        {}
func (nopRecorder) RecordSelection(string)          {}
func (nopRecorder) RecordLookupMiss(string, string) {}

// Coordinator is the cross-view state machine. It owns the highlight set
// and the optional selection; the views own nothing beyond their
// last-rendered data. Every hover or click, whichever view it came from,
// funnels through here and is re-broadcast to all registered sinks, which
// is what keeps the map and both charts mutually synchronized.
//
// All methods run on the single event-processing goroutine; there is no
// internal locking.
type Coordinator struct {
	ds  *Dataset
	log logging.Logger
	rec EventRecorder

	highlighted map[string]bool

	selected     string
	hasSelection bool

	highlightSinks  []HighlightSink
	selectionSinks  []SelectionSink
	detail          *DetailView
	detailListeners []func(*DetailView)
}

// NewCoordinator builds a coordinator over the joined dataset. log and rec
// may be nil.
func NewCoordinator(ds *Dataset, log logging.Logger, rec EventRecorder) *Coordinator {
	if log == nil {
		log = logging.Noop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Coordinator{
		ds:          ds,
		log:         log,
		rec:         rec,
		highlighted: make(map[string]bool),
	}
}

// RegisterHighlightSink adds a view to the highlight broadcast set.
func (c *Coordinator) RegisterHighlightSink(s HighlightSink) {
	c.highlightSinks = append(c.highlightSinks, s)
}

// RegisterSelectionSink adds a view to the selection broadcast set.
func (c *Coordinator) RegisterSelectionSink(s SelectionSink) {
	c.selectionSinks = append(c.selectionSinks, s)
}

// OnDetailChange registers a callback invoked whenever the detail view is
// replaced or destroyed. The callback receives nil on destruction.
func (c *Coordinator) OnDetailChange(fn func(*DetailView)) {
	c.detailListeners = append(c.detailListeners, fn)
}

// Highlight marks a region highlighted and applies the highlight class in
// every registered view, regardless of which view the hover came from.
func (c *Coordinator) Highlight(region, source string) {
	c.highlighted[region] = true
	for _, s := range c.highlightSinks {
		s.SetHighlight(region, true)
	}
	c.rec.RecordHighlight(source)
}

// Unhighlight clears the highlight for a region in every view. It is
// unconditional: clearing an already-clear region is a no-op everywhere.
func (c *Coordinator) Unhighlight(region, source string) {
	delete(c.highlighted, region)
	for _, s := range c.highlightSinks {
		s.SetHighlight(region, false)
	}
	c.rec.RecordUnhighlight(source)
}

// Highlighted reports whether a region is currently in the highlight set.
func (c *Coordinator) Highlighted(region string) bool { return c.highlighted[region] }

// Select makes region the sticky selection. When a matching record exists,
// any existing detail view is destroyed and a fresh one is built from the
// record. When there is no record the selection and detail view are left
// untouched; the miss is logged and counted, not fatal.
func (c *Coordinator) Select(region string) {
	rec, ok := c.ds.Record(region)
	if !ok {
		c.log.Warn(context.Background(), "no data for region",
			logging.String("region", region))
		c.rec.RecordLookupMiss("map", region)
		return
	}

	c.selected = region
	c.hasSelection = true
	for _, s := range c.selectionSinks {
		s.ShowSelection(region)
	}

	c.detail = NewDetailView(rec)
	for _, fn := range c.detailListeners {
		fn(c.detail)
	}
	c.rec.RecordSelection(region)
	c.log.Info(context.Background(), "region selected",
		logging.String("region", region),
		logging.Int("confirmed", rec.Confirmed),
		logging.Int("deaths", rec.Deaths))
}

// Deselect destroys the detail view if present and restores every
// per-region fill override to its default.
func (c *Coordinator) Deselect() {
	c.selected = ""
	c.hasSelection = false
	for _, s := range c.selectionSinks {
		s.ClearSelection()
	}
	if c.detail != nil {
		c.detail = nil
		for _, fn := range c.detailListeners {
			fn(nil)
		}
	}
}

// Selected returns the current selection, if any.
func (c *Coordinator) Selected() (string, bool) { return c.selected, c.hasSelection }

// Detail returns the current detail view, or nil when nothing is selected.
func (c *Coordinator) Detail() *DetailView { return c.detail }
