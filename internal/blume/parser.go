package blume

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

const (
	// RowSelector matches the rows of the daily values table.
	RowSelector = "table.datenhellgrauklein tr"
	// CellsPerRow is the sensor cell plus one cell per measurement field.
	CellsPerRow = 1 + models.ValueCount
	// SensorCodeLen is the length of a station code.
	SensorCodeLen = 3
)

var (
	numberRe     = regexp.MustCompile(`[-+]?([0-9]*\.[0-9]+|[0-9]+)`)
	sensorCodeRe = regexp.MustCompile(`^[0-9]{3}$`)
)

// SkipReason tells why a table row produced no measurement.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipCellCount
	SkipSensorCode
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipCellCount:
		return "cell_count"
	case SkipSensorCode:
		return "sensor_code"
	default:
		return fmt.Sprintf("SkipReason(%d)", int(r))
	}
}

// ParsedRow is a validated table row.
type ParsedRow struct {
	SensorCode string
	Values     models.Values
}

// RowResult is the outcome for one table row: either Row is set and Skip is
// SkipNone, or Row is nil and Skip names the reason.
type RowResult struct {
	Index int
	Row   *ParsedRow
	Skip  SkipReason
	Cells int
}

// Valid reports whether the row yielded a measurement candidate.
func (r RowResult) Valid() bool {
	return r.Skip == SkipNone && r.Row != nil
}

// ParseTable returns one result per row of the values table in html.
func ParseTable(html string) ([]RowResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var results []RowResult
	doc.Find(RowSelector).Each(func(i int, row *goquery.Selection) {
		results = append(results, parseRow(i, row.Find("td")))
	})
	return results, nil
}

func parseRow(index int, cells *goquery.Selection) RowResult {
	res := RowResult{Index: index, Cells: cells.Length()}
	if res.Cells != CellsPerRow {
		res.Skip = SkipCellCount
		return res
	}

	code, ok := SensorCode(cells.First().Text())
	if !ok {
		res.Skip = SkipSensorCode
		return res
	}

	values := make([]*float64, 0, models.ValueCount)
	cells.Slice(1, CellsPerRow).Each(func(_ int, cell *goquery.Selection) {
		values = append(values, ExtractNumber(cell.Text()))
	})

	res.Row = &ParsedRow{SensorCode: code, Values: models.ValuesFromSlice(values)}
	return res
}

// SensorCode takes the first three characters of a sensor cell and reports
// whether they form a station code.
func SensorCode(cellText string) (string, bool) {
	runes := []rune(strings.TrimSpace(cellText))
	if len(runes) < SensorCodeLen {
		return "", false
	}
	code := string(runes[:SensorCodeLen])
	return code, sensorCodeRe.MatchString(code)
}

// ExtractNumber returns the first number in text, or nil if there is none.
func ExtractNumber(text string) *float64 {
	match := numberRe.FindString(text)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}
