package core

import (
	"github.com/outbreaklabs/covid-dashboard/model"
)

// DetailView is the data behind the per-region detail chart: a fixed set
// of four categories for exactly one record. It has no identity beyond
// "the current one"; each selection fully replaces the previous instance.
type DetailView struct {
	Region string
	Stats  []model.DetailStat
}

// NewDetailView builds the four-category stat set from a record. Absent
// recovered/active fields become zero-valued stats with Known=false, so
// the chart keeps a stable category count.
func NewDetailView(rec *model.RegionRecord) *DetailView {
	stats := []model.DetailStat{
		{Label: "Confirmed", Value: rec.Confirmed, Known: true},
		{Label: "Deaths", Value: rec.Deaths, Known: true},
		optStat("Recovered", rec.Recovered),
		optStat("Active", rec.Active),
	}
	return &DetailView{Region: rec.Name, Stats: stats}
}

// MaxValue returns the largest known stat value, for scaling the chart.
func (d *DetailView) MaxValue() int {
	max := 0
	for _, s := range d.Stats {
		if s.Known && s.Value > max {
			max = s.Value
		}
	}
	return max
}

func optStat(label string, v *int) model.DetailStat {
	if v == nil {
		return model.DetailStat{Label: label}
	}
	return model.DetailStat{Label: label, Value: *v, Known: true}
}
