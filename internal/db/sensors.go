package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// The no-op update makes RETURNING yield the existing row on conflict.
const upsertSensorSQL = `
INSERT INTO blume.sensors (internal_id, sensor_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (sensor_id) DO UPDATE
SET sensor_id = EXCLUDED.sensor_id
RETURNING internal_id, sensor_id, created_at`

// UpsertSensors makes sure a sensor row exists for every code and returns them keyed by code.
func (s *Store) UpsertSensors(ctx context.Context, codes []string) (map[string]models.Sensor, error) {
	result := make(map[string]models.Sensor, len(codes))
	if len(codes) == 0 {
		return result, nil
	}

	batch := &pgx.Batch{}
	for _, code := range codes {
		batch.Queue(upsertSensorSQL, uuid.NewString(), code)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range codes {
		var sensor models.Sensor
		if err := res.QueryRow().Scan(&sensor.InternalID, &sensor.SensorID, &sensor.CreatedAt); err != nil {
			return nil, err
		}
		result[sensor.SensorID] = sensor
	}

	return result, nil
}

const listSensorsSQL = `
    SELECT internal_id, sensor_id, created_at
    FROM blume.sensors
    ORDER BY sensor_id
`

// ListSensors returns all sensors ordered by code.
func (s *Store) ListSensors(ctx context.Context) ([]models.Sensor, error) {
	rows, err := s.pool.Query(ctx, listSensorsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sensors := make([]models.Sensor, 0)
	for rows.Next() {
		var sensor models.Sensor
		if err := rows.Scan(&sensor.InternalID, &sensor.SensorID, &sensor.CreatedAt); err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}
	return sensors, rows.Err()
}

// GetSensorByCode returns the sensor with the given code, or nil.
func (s *Store) GetSensorByCode(ctx context.Context, code string) (*models.Sensor, error) {
	query := `
		SELECT internal_id, sensor_id, created_at
		FROM blume.sensors
		WHERE sensor_id = $1
	`

	var sensor models.Sensor
	err := s.pool.QueryRow(ctx, query, code).Scan(&sensor.InternalID, &sensor.SensorID, &sensor.CreatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sensor, nil
}
