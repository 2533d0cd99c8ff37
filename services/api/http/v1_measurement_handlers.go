package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/blume"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// handleV1ListStations returns every known station code
// GET /api/v1/stations
func (s *Server) handleV1ListStations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sensors, err := s.store.ListSensors(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(sensors))
	for _, sensor := range sensors {
		out = append(out, gin.H{"sensor_id": sensor.SensorID})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/v1/stations/:station[/csv]
func (s *Server) handleV1Station(f format) gin.HandlerFunc {
	return func(c *gin.Context) {
		station := c.Param("station")
		s.serveMeasurements(c, f, func(ctx context.Context) ([]models.Measurement, error) {
			return s.store.MeasurementsForStation(ctx, station)
		})
	}
}

// GET /api/v1/stations/:station/sensordata/:year[/csv]
func (s *Server) handleV1StationYear(f format) gin.HandlerFunc {
	return func(c *gin.Context) {
		station := c.Param("station")
		year, ok := parseYear(c)
		if !ok {
			return
		}
		s.serveMeasurements(c, f, func(ctx context.Context) ([]models.Measurement, error) {
			return s.store.MeasurementsForStationYear(ctx, station, year)
		})
	}
}

// GET /api/v1/sensordata/yearly/:year[/csv]
func (s *Server) handleV1Year(f format) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := parseYear(c)
		if !ok {
			return
		}
		s.serveYear(c, f, year)
	}
}

func (s *Server) serveYear(c *gin.Context, f format, year int) {
	s.serveMeasurements(c, f, func(ctx context.Context) ([]models.Measurement, error) {
		return s.store.MeasurementsForYear(ctx, year)
	})
}

// GET /api/v1/sensordata/:date
func (s *Server) handleV1Date(f format) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := parseDateParam(c)
		if !ok {
			return
		}
		s.serveDate(c, f, date)
	}
}

func (s *Server) serveDate(c *gin.Context, f format, date time.Time) {
	s.serveMeasurements(c, f, func(ctx context.Context) ([]models.Measurement, error) {
		return s.store.MeasurementsForDate(ctx, date)
	})
}

// handleV1DateOrYearCSV serves /api/v1/sensordata/:date/csv. Keys of exactly
// four digits are years.
func (s *Server) handleV1DateOrYearCSV(c *gin.Context) {
	key := c.Param("date")
	if isYearKey(key) {
		year, _ := strconv.Atoi(key)
		s.serveYear(c, formatCSV, year)
		return
	}
	date, ok := parseDateParam(c)
	if !ok {
		return
	}
	s.serveDate(c, formatCSV, date)
}

// GET /api/v1/recent[/csv]
func (s *Server) handleV1Recent(f format) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.serveMeasurements(c, f, func(ctx context.Context) ([]models.Measurement, error) {
			return s.store.RecentMeasurements(ctx, s.cfg.RecentDays)
		})
	}
}

func isYearKey(key string) bool {
	if len(key) != 4 {
		return false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseYear(c *gin.Context) (int, bool) {
	raw := c.Param("year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year: " + raw})
		return 0, false
	}
	return year, true
}

func parseDateParam(c *gin.Context) (time.Time, bool) {
	raw := c.Param("date")
	date, err := blume.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date: " + raw})
		return time.Time{}, false
	}
	return date, true
}
