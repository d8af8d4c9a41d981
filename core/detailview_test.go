package core

import (
	"testing"

	"github.com/outbreaklabs/covid-dashboard/model"
)

func TestDetailView_FourFixedCategories(t *testing.T) {
	rec := &model.RegionRecord{
		Name:      "California",
		Confirmed: 100,
		Deaths:    10,
		Recovered: intPtr(80),
		Active:    intPtr(10),
	}
	d := NewDetailView(rec)

	if d.Region != "California" {
		t.Errorf("region = %q, want California", d.Region)
	}
	want := []model.DetailStat{
		{Label: "Confirmed", Value: 100, Known: true},
		{Label: "Deaths", Value: 10, Known: true},
		{Label: "Recovered", Value: 80, Known: true},
		{Label: "Active", Value: 10, Known: true},
	}
	if len(d.Stats) != len(want) {
		t.Fatalf("got %d stats, want %d", len(d.Stats), len(want))
	}
	for i, w := range want {
		if d.Stats[i] != w {
			t.Errorf("stat %d = %+v, want %+v", i, d.Stats[i], w)
		}
	}
}

func TestDetailView_MissingOptionalCounts(t *testing.T) {
	rec := &model.RegionRecord{Name: "Guam", Confirmed: 5, Deaths: 0}
	d := NewDetailView(rec)

	if len(d.Stats) != 4 {
		t.Fatalf("got %d stats, want the full category list regardless of gaps", len(d.Stats))
	}
	for _, s := range d.Stats[2:] {
		if s.Known {
			t.Errorf("%s marked known with no underlying count", s.Label)
		}
		if s.Value != 0 {
			t.Errorf("%s value = %v, want 0 placeholder", s.Label, s.Value)
		}
	}
}

func TestDetailView_MaxValue(t *testing.T) {
	rec := &model.RegionRecord{Name: "Texas", Confirmed: 50, Deaths: 5, Recovered: intPtr(40), Active: intPtr(5)}
	if got := NewDetailView(rec).MaxValue(); got != 50 {
		t.Errorf("max = %v, want 50", got)
	}

	// Unknown categories never win the max.
	empty := &model.RegionRecord{Name: "Guam"}
	if got := NewDetailView(empty).MaxValue(); got != 0 {
		t.Errorf("max of all-zero record = %v, want 0", got)
	}
}
