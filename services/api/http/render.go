package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/export"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

type format int

const (
	formatJSON format = iota
	formatCSV
)

const queryTimeout = 15 * time.Second

func (f format) contentType() string {
	if f == formatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

func (f format) render(ms []models.Measurement) ([]byte, error) {
	if f == formatCSV {
		return export.CSV(ms)
	}
	return export.JSON(ms)
}

type measurementQuery func(ctx context.Context) ([]models.Measurement, error)

// serveMeasurements runs query and writes the export in format f. An empty
// result is written as the no-data text with status 200.
func (s *Server) serveMeasurements(c *gin.Context, f format, query measurementQuery) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	ms, err := query(ctx)
	if err != nil {
		s.log.Error("measurement query failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body, err := f.render(ms)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, f.contentType(), body)
}
