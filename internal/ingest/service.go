// Package ingest ties the BLUME client and parser to a store: it downloads
// daily pages, keeps them, and turns their tables into sensors and
// measurements.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/blume"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/config"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// Fetcher downloads a page and returns its decoded text.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Store is the part of the repository the pipeline writes to.
type Store interface {
	GetPageByURL(ctx context.Context, url string) (*models.Page, error)
	UpsertPage(ctx context.Context, url, content string, downloadedAt time.Time) (models.Page, error)
	ListPageURLs(ctx context.Context) ([]string, error)
	UpsertSensors(ctx context.Context, codes []string) (map[string]models.Sensor, error)
	InsertMeasurements(ctx context.Context, ms []models.Measurement) (int, error)
}

// Service runs fetches and parses against a store.
type Service struct {
	store   Store
	fetcher Fetcher
	log     *slog.Logger
	now     func() time.Time

	urlTemplate   string
	refetchWindow time.Duration
	dryRun        bool
}

// NewService wires a Service from its collaborators and cfg.
func NewService(store Store, fetcher Fetcher, cfg config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:         store,
		fetcher:       fetcher,
		log:           logger,
		now:           func() time.Time { return time.Now().UTC() },
		urlTemplate:   cfg.SourceURLTemplate,
		refetchWindow: cfg.RefetchWindow,
		dryRun:        cfg.DryRun,
	}
}

// URLFor returns the source URL of the page for date.
func (s *Service) URLFor(date time.Time) string {
	return blume.SourceURL(s.urlTemplate, date)
}

// Fetch downloads the page for date and creates or updates its stored copy.
func (s *Service) Fetch(ctx context.Context, date time.Time) (models.Page, error) {
	url := s.URLFor(date)

	existing, err := s.store.GetPageByURL(ctx, url)
	if err != nil {
		return models.Page{}, fmt.Errorf("lookup page %s: %w", url, err)
	}

	content, err := s.fetcher.FetchPage(ctx, url)
	if err != nil {
		return models.Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	downloadedAt := s.now()

	if s.dryRun {
		page := models.Page{URL: url, Content: content, DateDownload: downloadedAt}
		if existing != nil {
			page.ID = existing.ID
		}
		s.log.Info("dry-run: page not stored", "url", url, "bytes", len(content))
		return page, nil
	}

	page, err := s.store.UpsertPage(ctx, url, content, downloadedAt)
	if err != nil {
		return models.Page{}, fmt.Errorf("store page %s: %w", url, err)
	}

	action := "inserted"
	if existing != nil {
		action = "updated"
	}
	s.log.Info("page "+action, "url", url, "id", page.ID, "bytes", len(content))
	return page, nil
}

// FetchIfStale returns the stored page for date without touching the network
// when the page exists and date lies outside the refetch window before now.
// The second result reports whether a download happened.
func (s *Service) FetchIfStale(ctx context.Context, date, now time.Time) (models.Page, bool, error) {
	url := s.URLFor(date)

	existing, err := s.store.GetPageByURL(ctx, url)
	if err != nil {
		return models.Page{}, false, fmt.Errorf("lookup page %s: %w", url, err)
	}
	if existing != nil && !s.isRecent(date, now) {
		s.log.Debug("page already stored", "url", url, "id", existing.ID)
		return *existing, false, nil
	}

	page, err := s.Fetch(ctx, date)
	if err != nil {
		return models.Page{}, false, err
	}
	return page, true, nil
}

func (s *Service) isRecent(date, now time.Time) bool {
	today := now.UTC().Truncate(24 * time.Hour)
	return today.Sub(date.UTC().Truncate(24*time.Hour)) < s.refetchWindow
}

// Download fetches the page for date and parses it.
func (s *Service) Download(ctx context.Context, date time.Time) (models.Page, ParseStats, error) {
	page, err := s.Fetch(ctx, date)
	if err != nil {
		return models.Page{}, ParseStats{}, err
	}
	stats, err := s.Parse(ctx, page)
	if err != nil {
		return page, stats, err
	}
	return page, stats, nil
}
