//go:build integration

package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "blume",
			"POSTGRES_PASSWORD": "blume",
			"POSTGRES_DB":       "blume",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	return fmt.Sprintf("postgres://blume:blume@%s:%s/blume?sslmode=disable", host, port.Port())
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	store, err := New(ctx, startPostgres(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Applying the schema twice must be harmless.
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	return store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStoreRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	url := "http://example.test/20140513.html"
	first, err := s.UpsertPage(ctx, url, "one", day(2014, 5, 13))
	if err != nil {
		t.Fatalf("UpsertPage: %v", err)
	}
	second, err := s.UpsertPage(ctx, url, "two", day(2014, 5, 14))
	if err != nil {
		t.Fatalf("UpsertPage again: %v", err)
	}
	if first.ID != second.ID || second.Content != "two" {
		t.Errorf("page not updated in place: %+v -> %+v", first, second)
	}

	sensors, err := s.UpsertSensors(ctx, []string{"010", "042"})
	if err != nil {
		t.Fatalf("UpsertSensors: %v", err)
	}
	again, err := s.UpsertSensors(ctx, []string{"010"})
	if err != nil {
		t.Fatalf("UpsertSensors again: %v", err)
	}
	if again["010"].InternalID != sensors["010"].InternalID {
		t.Errorf("sensor internal id changed")
	}

	pm10 := 21.0
	ms := []models.Measurement{
		{SensorInternalID: sensors["042"].InternalID, Date: day(2014, 5, 13), Values: models.Values{PartikelPM10Mittel: &pm10}},
		{SensorInternalID: sensors["010"].InternalID, Date: day(2014, 5, 13)},
		{SensorInternalID: sensors["010"].InternalID, Date: day(2014, 5, 1)},
	}
	n, err := s.InsertMeasurements(ctx, ms)
	if err != nil {
		t.Fatalf("InsertMeasurements: %v", err)
	}
	if n != 3 {
		t.Errorf("inserted = %d; want 3", n)
	}
	n, err = s.InsertMeasurements(ctx, ms)
	if err != nil {
		t.Fatalf("InsertMeasurements again: %v", err)
	}
	if n != 0 {
		t.Errorf("second insert wrote %d rows; want 0", n)
	}

	date, err := s.MeasurementsForDate(ctx, day(2014, 5, 13))
	if err != nil {
		t.Fatalf("MeasurementsForDate: %v", err)
	}
	if len(date) != 2 || date[0].SensorCode != "010" || date[1].SensorCode != "042" {
		t.Errorf("unexpected date result: %+v", date)
	}
	if date[1].PartikelPM10Mittel == nil || *date[1].PartikelPM10Mittel != 21 {
		t.Errorf("pm10 not stored: %+v", date[1].Values)
	}

	recent, err := s.RecentMeasurements(ctx, 7)
	if err != nil {
		t.Fatalf("RecentMeasurements: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent = %d; want 2", len(recent))
	}

	year, err := s.MeasurementsForStationYear(ctx, "010", 2014)
	if err != nil {
		t.Fatalf("MeasurementsForStationYear: %v", err)
	}
	if len(year) != 2 || !year[0].Date.Equal(day(2014, 5, 1)) {
		t.Errorf("unexpected station year result: %+v", year)
	}

	missing, err := s.GetSensorByCode(ctx, "999")
	if err != nil || missing != nil {
		t.Errorf("GetSensorByCode(999) = %+v, %v", missing, err)
	}
}
