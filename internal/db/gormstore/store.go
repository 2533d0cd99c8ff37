// Package gormstore implements the measurement store on gorm for SQLite and
// MySQL deployments.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// Store wraps a gorm connection.
type Store struct {
	db *gorm.DB
}

// Connect opens a database for driver ("sqlite" or "mysql") and migrates the tables.
func Connect(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// GetPageByURL returns the stored page for url, or nil.
func (s *Store) GetPageByURL(ctx context.Context, url string) (*models.Page, error) {
	var row pageRow
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := row.model()
	return &p, nil
}

// UpsertPage creates the page for url or overwrites its content and download time.
func (s *Store) UpsertPage(ctx context.Context, url, content string, downloadedAt time.Time) (models.Page, error) {
	row := pageRow{URL: url, Content: content, DateDownload: downloadedAt.UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "date_download"}),
	}).Create(&row).Error
	if err != nil {
		return models.Page{}, err
	}

	page, err := s.GetPageByURL(ctx, url)
	if err != nil {
		return models.Page{}, err
	}
	if page == nil {
		return models.Page{}, fmt.Errorf("page %s vanished after upsert", url)
	}
	return *page, nil
}

// ListPageURLs returns the URLs of all stored pages in download order.
func (s *Store) ListPageURLs(ctx context.Context) ([]string, error) {
	urls := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&pageRow{}).Order("date_download, id").Pluck("url", &urls).Error
	return urls, err
}

// UpsertSensors makes sure a sensor row exists for every code and returns them keyed by code.
func (s *Store) UpsertSensors(ctx context.Context, codes []string) (map[string]models.Sensor, error) {
	result := make(map[string]models.Sensor, len(codes))
	if len(codes) == 0 {
		return result, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, code := range codes {
			row := sensorRow{InternalID: uuid.NewString(), SensorID: code}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "sensor_id"}},
				DoNothing: true,
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		var rows []sensorRow
		if err := tx.Where("sensor_id IN ?", codes).Find(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			result[r.SensorID] = r.model()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListSensors returns all sensors ordered by code.
func (s *Store) ListSensors(ctx context.Context) ([]models.Sensor, error) {
	var rows []sensorRow
	if err := s.db.WithContext(ctx).Order("sensor_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	sensors := make([]models.Sensor, 0, len(rows))
	for _, r := range rows {
		sensors = append(sensors, r.model())
	}
	return sensors, nil
}

// GetSensorByCode returns the sensor with the given code, or nil.
func (s *Store) GetSensorByCode(ctx context.Context, code string) (*models.Sensor, error) {
	var row sensorRow
	err := s.db.WithContext(ctx).Where("sensor_id = ?", code).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sensor := row.model()
	return &sensor, nil
}

// InsertMeasurements writes measurements, leaving existing (sensor, date) rows untouched.
func (s *Store) InsertMeasurements(ctx context.Context, ms []models.Measurement) (int, error) {
	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range ms {
			row := newMeasurementRow(m)
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			inserted += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *Store) measurements(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.Measurement, error) {
	var views []measurementView
	q := s.db.WithContext(ctx).
		Table("measurements AS m").
		Select("m.*, s.sensor_id AS sensor_code").
		Joins("LEFT JOIN sensors s ON s.internal_id = m.sensor_internal_id")
	if err := scope(q).Order("m.date, s.sensor_id").Scan(&views).Error; err != nil {
		return nil, err
	}

	out := make([]models.Measurement, 0, len(views))
	for _, v := range views {
		out = append(out, v.model())
	}
	return out, nil
}

func dateRange(from, until time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("m.date >= ? AND m.date < ?", from.UTC(), until.UTC())
	}
}

// MeasurementsForStation returns every measurement of the station.
func (s *Store) MeasurementsForStation(ctx context.Context, code string) ([]models.Measurement, error) {
	return s.measurements(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("s.sensor_id = ?", code)
	})
}

// MeasurementsForStationYear returns the station's measurements within year.
func (s *Store) MeasurementsForStationYear(ctx context.Context, code string, year int) ([]models.Measurement, error) {
	from, until := models.YearRange(year)
	return s.measurements(ctx, func(q *gorm.DB) *gorm.DB {
		return dateRange(from, until)(q.Where("s.sensor_id = ?", code))
	})
}

// MeasurementsForYear returns all stations' measurements within year.
func (s *Store) MeasurementsForYear(ctx context.Context, year int) ([]models.Measurement, error) {
	from, until := models.YearRange(year)
	return s.measurements(ctx, dateRange(from, until))
}

// MeasurementsForDate returns all stations' measurements on date.
func (s *Store) MeasurementsForDate(ctx context.Context, date time.Time) ([]models.Measurement, error) {
	from := date.UTC().Truncate(24 * time.Hour)
	return s.measurements(ctx, dateRange(from, from.AddDate(0, 0, 1)))
}

// RecentMeasurements returns the measurements of the last days calendar days,
// counted back from the newest stored date.
func (s *Store) RecentMeasurements(ctx context.Context, days int) ([]models.Measurement, error) {
	var latest MeasurementRow
	err := s.db.WithContext(ctx).Select("date").Order("date DESC").Take(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Measurement{}, nil
	}
	if err != nil {
		return nil, err
	}

	from := models.RecentFrom(latest.Date, days)
	return s.measurements(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("m.date >= ?", from.UTC())
	})
}
