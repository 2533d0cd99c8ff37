package db

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// ValueColumns are the measurement columns in models.Values order.
var ValueColumns = []string{
	"partikel_pm10_mittel",
	"partikel_pm10_ueberschreitungen",
	"russ_mittel",
	"russ_max3h",
	"stickstoffdioxid_mittel",
	"stickstoffdioxid_max1h",
	"benzol_mittel",
	"benzol_max1h",
	"kohlenmonoxid_mittel",
	"kohlenmonoxid_max8h_mittel",
	"ozon_max1h",
	"ozon_max8h_mittel",
	"schwefeldioxid_mittel",
	"schwefeldioxid_max1h",
}

// MeasurementQuery holds filters for retrieving measurements.
type MeasurementQuery struct {
	SensorCode string
	From       *time.Time // inclusive
	Until      *time.Time // exclusive
}

func measurementsBase() string {
	cols := make([]string, len(ValueColumns))
	for i, c := range ValueColumns {
		cols[i] = "m." + c
	}
	return `
    SELECT m.id, COALESCE(m.sensor_internal_id, ''), s.sensor_id, m.date, ` + strings.Join(cols, ", ") + `, m.created_at
    FROM blume.measurements m
    LEFT JOIN blume.sensors s ON s.internal_id = m.sensor_internal_id
    WHERE TRUE`
}

// FetchMeasurements returns measurements matching q ordered by date and station.
func (s *Store) FetchMeasurements(ctx context.Context, q MeasurementQuery) ([]models.Measurement, error) {
	args := []any{}
	clause := ""
	if q.SensorCode != "" {
		args = append(args, q.SensorCode)
		clause += " AND s.sensor_id = $" + strconv.Itoa(len(args))
	}
	if q.From != nil {
		args = append(args, *q.From)
		clause += " AND m.date >= $" + strconv.Itoa(len(args))
	}
	if q.Until != nil {
		args = append(args, *q.Until)
		clause += " AND m.date < $" + strconv.Itoa(len(args))
	}
	sql := measurementsBase() + clause + " ORDER BY m.date, s.sensor_id"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	measurements := make([]models.Measurement, 0)
	for rows.Next() {
		var m models.Measurement
		var code *string
		values := make([]*float64, models.ValueCount)

		dest := []any{&m.ID, &m.SensorInternalID, &code, &m.Date}
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &m.CreatedAt)

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if code != nil {
			m.SensorCode = *code
		}
		m.Values = models.ValuesFromSlice(values)
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

// MeasurementsForStation returns every measurement of the station.
func (s *Store) MeasurementsForStation(ctx context.Context, code string) ([]models.Measurement, error) {
	return s.FetchMeasurements(ctx, MeasurementQuery{SensorCode: code})
}

// MeasurementsForStationYear returns the station's measurements within year.
func (s *Store) MeasurementsForStationYear(ctx context.Context, code string, year int) ([]models.Measurement, error) {
	from, until := models.YearRange(year)
	return s.FetchMeasurements(ctx, MeasurementQuery{SensorCode: code, From: &from, Until: &until})
}

// MeasurementsForYear returns all stations' measurements within year.
func (s *Store) MeasurementsForYear(ctx context.Context, year int) ([]models.Measurement, error) {
	from, until := models.YearRange(year)
	return s.FetchMeasurements(ctx, MeasurementQuery{From: &from, Until: &until})
}

// MeasurementsForDate returns all stations' measurements on date.
func (s *Store) MeasurementsForDate(ctx context.Context, date time.Time) ([]models.Measurement, error) {
	from := date.UTC().Truncate(24 * time.Hour)
	until := from.AddDate(0, 0, 1)
	return s.FetchMeasurements(ctx, MeasurementQuery{From: &from, Until: &until})
}

// RecentMeasurements returns the measurements of the last days calendar days,
// counted back from the newest stored date.
func (s *Store) RecentMeasurements(ctx context.Context, days int) ([]models.Measurement, error) {
	var latest *time.Time
	if err := s.pool.QueryRow(ctx, `SELECT MAX(date) FROM blume.measurements`).Scan(&latest); err != nil {
		return nil, err
	}
	if latest == nil {
		return []models.Measurement{}, nil
	}
	from := models.RecentFrom(*latest, days)
	return s.FetchMeasurements(ctx, MeasurementQuery{From: &from})
}

func insertMeasurementSQL() string {
	placeholders := make([]string, 0, len(ValueColumns)+2)
	for i := 1; i <= len(ValueColumns)+2; i++ {
		placeholders = append(placeholders, "$"+strconv.Itoa(i))
	}
	return `INSERT INTO blume.measurements (sensor_internal_id, date, ` + strings.Join(ValueColumns, ", ") + `, created_at)
VALUES (` + strings.Join(placeholders, ",") + `, NOW())
ON CONFLICT (sensor_internal_id, date) DO NOTHING`
}

// InsertMeasurements writes measurements, leaving existing (sensor, date) rows untouched.
func (s *Store) InsertMeasurements(ctx context.Context, ms []models.Measurement) (int, error) {
	if len(ms) == 0 {
		return 0, nil
	}

	query := insertMeasurementSQL()
	batch := &pgx.Batch{}
	for _, m := range ms {
		args := []any{m.SensorInternalID, m.Date.UTC()}
		for _, v := range m.Values.Slice() {
			args = append(args, v)
		}
		batch.Queue(query, args...)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	inserted := 0
	for range ms {
		tag, err := res.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}
