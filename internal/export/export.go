// Package export flattens measurements into the public record layout and
// renders them as JSON or CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// NoData is returned instead of an empty JSON array or CSV document.
const NoData = "No data available."

// MissingSensor stands in for the code of a measurement whose sensor is gone.
const MissingSensor = "null"

// Record is one flat export row. Field order matches models.FieldNames.
type Record struct {
	SensorID string `json:"sensor_id"`
	Date     string `json:"date"`
	models.Values
}

// Records converts measurements, keeping their order.
func Records(ms []models.Measurement) []Record {
	out := make([]Record, 0, len(ms))
	for _, m := range ms {
		code := m.SensorCode
		if code == "" {
			code = MissingSensor
		}
		out = append(out, Record{
			SensorID: code,
			Date:     m.Date.UTC().Format(models.DateLayout),
			Values:   m.Values,
		})
	}
	return out
}

// IsNoData reports whether body is the empty-result sentinel.
func IsNoData(body []byte) bool {
	return string(body) == NoData
}

// JSON renders ms as a JSON array of records.
func JSON(ms []models.Measurement) ([]byte, error) {
	if len(ms) == 0 {
		return []byte(NoData), nil
	}
	data, err := json.Marshal(Records(ms))
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return data, nil
}

// CSV renders ms with a header row; absent values become empty cells.
func CSV(ms []models.Measurement) ([]byte, error) {
	if len(ms) == 0 {
		return []byte(NoData), nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(models.FieldNames); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(models.FieldNames))
	for _, r := range Records(ms) {
		row[0] = r.SensorID
		row[1] = r.Date
		for i, v := range r.Values.Slice() {
			row[i+2] = formatValue(v)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
