package ingest

import (
	"context"
	"fmt"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/blume"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// ParseStats counts what a parse saw and wrote.
type ParseStats struct {
	Pages             int
	PagesFailed       int
	Rows              int
	ValidRows         int
	SkippedCellCount  int
	SkippedSensorCode int
	Sensors           int
	Created           int
	Duplicates        int
}

// Add accumulates o into s.
func (s *ParseStats) Add(o ParseStats) {
	s.Pages += o.Pages
	s.PagesFailed += o.PagesFailed
	s.Rows += o.Rows
	s.ValidRows += o.ValidRows
	s.SkippedCellCount += o.SkippedCellCount
	s.SkippedSensorCode += o.SkippedSensorCode
	s.Sensors += o.Sensors
	s.Created += o.Created
	s.Duplicates += o.Duplicates
}

func (s ParseStats) String() string {
	return fmt.Sprintf("rows=%d valid=%d skipped_cell_count=%d skipped_sensor_code=%d sensors=%d created=%d duplicates=%d",
		s.Rows, s.ValidRows, s.SkippedCellCount, s.SkippedSensorCode, s.Sensors, s.Created, s.Duplicates)
}

// Parse extracts the measurements of page and stores the ones not yet known.
// Rows with the wrong shape are counted and logged, never returned as errors.
func (s *Service) Parse(ctx context.Context, page models.Page) (ParseStats, error) {
	stats := ParseStats{Pages: 1}

	date, err := blume.DateFromURL(page.URL)
	if err != nil {
		return stats, fmt.Errorf("page %s: %w", page.URL, err)
	}

	results, err := blume.ParseTable(page.Content)
	if err != nil {
		return stats, fmt.Errorf("page %s: %w", page.URL, err)
	}

	rows := make([]*blume.ParsedRow, 0, len(results))
	codes := make([]string, 0, len(results))
	seen := make(map[string]bool)
	for _, res := range results {
		stats.Rows++
		switch res.Skip {
		case blume.SkipCellCount:
			stats.SkippedCellCount++
		case blume.SkipSensorCode:
			stats.SkippedSensorCode++
		}
		if !res.Valid() {
			s.log.Debug("row skipped", "url", page.URL, "row", res.Index, "reason", res.Skip.String(), "cells", res.Cells)
			continue
		}
		stats.ValidRows++
		rows = append(rows, res.Row)
		if !seen[res.Row.SensorCode] {
			seen[res.Row.SensorCode] = true
			codes = append(codes, res.Row.SensorCode)
		}
	}
	stats.Sensors = len(codes)

	if len(rows) == 0 {
		s.log.Info("page parsed", "url", page.URL, "date", date.Format(models.DateLayout), "stats", stats.String())
		return stats, nil
	}

	if s.dryRun {
		for _, r := range rows {
			s.log.Info("dry-run: would insert measurement", "sensor", r.SensorCode, "date", date.Format(models.DateLayout))
		}
		return stats, nil
	}

	sensors, err := s.store.UpsertSensors(ctx, codes)
	if err != nil {
		return stats, fmt.Errorf("upsert sensors: %w", err)
	}

	ms := make([]models.Measurement, 0, len(rows))
	for _, r := range rows {
		sensor, ok := sensors[r.SensorCode]
		if !ok {
			return stats, fmt.Errorf("sensor %s missing after upsert", r.SensorCode)
		}
		ms = append(ms, models.Measurement{
			SensorInternalID: sensor.InternalID,
			SensorCode:       r.SensorCode,
			Date:             date,
			Values:           r.Values,
		})
	}

	created, err := s.store.InsertMeasurements(ctx, ms)
	if err != nil {
		return stats, fmt.Errorf("insert measurements: %w", err)
	}
	stats.Created = created
	stats.Duplicates = len(ms) - created

	s.log.Info("page parsed", "url", page.URL, "date", date.Format(models.DateLayout), "stats", stats.String())
	return stats, nil
}

// Reparse parses every stored page again. A page that fails is logged and
// counted; only listing or cancellation errors end the run.
func (s *Service) Reparse(ctx context.Context) (ParseStats, error) {
	var total ParseStats

	urls, err := s.store.ListPageURLs(ctx)
	if err != nil {
		return total, fmt.Errorf("list pages: %w", err)
	}

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		page, err := s.store.GetPageByURL(ctx, url)
		if err != nil || page == nil {
			total.Pages++
			total.PagesFailed++
			s.log.Warn("page unavailable", "url", url, "err", err)
			continue
		}
		stats, err := s.Parse(ctx, *page)
		total.Add(stats)
		if err != nil {
			total.PagesFailed++
			s.log.Warn("parse failed", "url", url, "err", err)
		}
	}

	s.log.Info("reparse finished", "pages", total.Pages, "failed", total.PagesFailed, "created", total.Created)
	return total, nil
}
