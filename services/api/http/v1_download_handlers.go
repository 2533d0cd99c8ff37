package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// handleV1Download fetches the page of one day and parses it
// GET /api/v1/download/:date
func (s *Server) handleV1Download(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout+15*time.Second)
	defer cancel()

	page, stats, err := s.downloader.Download(ctx, date)
	if err != nil {
		s.log.Error("download failed", "date", date.Format(models.DateLayout), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.String(http.StatusOK, "downloaded %s (page %d): %s\n", page.URL, page.ID, stats)
}
