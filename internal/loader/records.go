package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/outbreaklabs/covid-dashboard/model"
)

var (
	ErrNoHeader      = errors.New("record source has no header row")
	ErrMissingColumn = errors.New("record source missing required column")
)

// column aliases accepted in the header row. The JHU daily-report naming
// ("Province_State", "Long_") is the primary format.
var (
	nameColumns      = []string{"province_state", "name", "state", "region"}
	confirmedColumns = []string{"confirmed"}
	deathsColumns    = []string{"deaths"}
	recoveredColumns = []string{"recovered"}
	activeColumns    = []string{"active"}
	latColumns       = []string{"lat", "latitude"}
	lngColumns       = []string{"long_", "long", "lng", "longitude"}
)

// LoadRecords parses per-region case records from CSV. Confirmed and
// deaths are required per row; recovered, active and coordinates are
// optional and stay nil when the cell is blank. Rows with an empty region
// name are skipped.
func LoadRecords(r io.Reader) ([]model.RegionRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []model.RegionRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		name := strings.TrimSpace(row[cols.name])
		if name == "" {
			continue
		}

		confirmed, err := parseCount(row[cols.confirmed])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): confirmed: %w", line, name, err)
		}
		deaths, err := parseCount(row[cols.deaths])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): deaths: %w", line, name, err)
		}

		rec := model.RegionRecord{
			Name:      name,
			Confirmed: confirmed,
			Deaths:    deaths,
			Recovered: parseOptCount(row, cols.recovered),
			Active:    parseOptCount(row, cols.active),
			Latitude:  parseOptFloat(row, cols.lat),
			Longitude: parseOptFloat(row, cols.lng),
		}
		records = append(records, rec)
	}

	return records, nil
}

type columnIndex struct {
	name      int
	confirmed int
	deaths    int
	recovered int // -1 when absent
	active    int
	lat       int
	lng       int
}

func resolveColumns(header []string) (columnIndex, error) {
	lookup := make(map[string]int, len(header))
	for i, h := range header {
		lookup[strings.ToLower(strings.TrimSpace(h))] = i
	}

	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := lookup[a]; ok {
				return i
			}
		}
		return -1
	}

	cols := columnIndex{
		name:      find(nameColumns),
		confirmed: find(confirmedColumns),
		deaths:    find(deathsColumns),
		recovered: find(recoveredColumns),
		active:    find(activeColumns),
		lat:       find(latColumns),
		lng:       find(lngColumns),
	}

	if cols.name < 0 {
		return cols, fmt.Errorf("%w: region name", ErrMissingColumn)
	}
	if cols.confirmed < 0 {
		return cols, fmt.Errorf("%w: confirmed", ErrMissingColumn)
	}
	if cols.deaths < 0 {
		return cols, fmt.Errorf("%w: deaths", ErrMissingColumn)
	}
	return cols, nil
}

// parseCount parses a non-negative integer; a blank cell counts as zero.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// Some exports carry counts as floats ("123.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative count %v", f)
	}
	return int(f), nil
}

func parseOptCount(row []string, idx int) *int {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[idx])
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	n := int(f)
	return &n
}

func parseOptFloat(row []string, idx int) *float64 {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[idx])
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
