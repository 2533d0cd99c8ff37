package db

import (
	"context"
	"fmt"
	"time"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/config"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/db/gormstore"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// Repository is the persistence surface shared by the Postgres and gorm stores.
// Lookups return a nil pointer and no error when nothing matches. Measurement
// queries are ordered by date, then station code.
type Repository interface {
	Ping(ctx context.Context) error
	Close() error

	GetPageByURL(ctx context.Context, url string) (*models.Page, error)
	UpsertPage(ctx context.Context, url, content string, downloadedAt time.Time) (models.Page, error)
	ListPageURLs(ctx context.Context) ([]string, error)

	UpsertSensors(ctx context.Context, codes []string) (map[string]models.Sensor, error)
	ListSensors(ctx context.Context) ([]models.Sensor, error)
	GetSensorByCode(ctx context.Context, code string) (*models.Sensor, error)

	// InsertMeasurements stores measurements whose (sensor, date) pair is not
	// taken yet and returns how many were written.
	InsertMeasurements(ctx context.Context, ms []models.Measurement) (int, error)

	MeasurementsForStation(ctx context.Context, code string) ([]models.Measurement, error)
	MeasurementsForStationYear(ctx context.Context, code string, year int) ([]models.Measurement, error)
	MeasurementsForYear(ctx context.Context, year int) ([]models.Measurement, error)
	MeasurementsForDate(ctx context.Context, date time.Time) ([]models.Measurement, error)
	RecentMeasurements(ctx context.Context, days int) ([]models.Measurement, error)
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*gormstore.Store)(nil)
)

// Open connects to the backend selected by cfg.DBDriver and ensures the schema exists.
func Open(ctx context.Context, cfg config.Config) (Repository, error) {
	switch cfg.DBDriver {
	case "postgres":
		store, err := New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.pool.Close()
			return nil, err
		}
		return store, nil
	case "sqlite", "mysql":
		return gormstore.Connect(cfg.DBDriver, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}
}
