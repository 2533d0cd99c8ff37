package ingest

import (
	"context"
	"time"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// CrawlSummary reports the outcome of a crawl.
type CrawlSummary struct {
	Days    int
	Fetched int
	Cached  int
	Failed  int
	Stats   ParseStats
}

// Crawl walks the days from..to (inclusive) in order, fetching stale pages and
// parsing each one. A failing day is logged and the crawl moves on. delay is
// waited between downloads.
func (s *Service) Crawl(ctx context.Context, from, to time.Time, delay time.Duration) (CrawlSummary, error) {
	var sum CrawlSummary
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Days++

		page, fetched, err := s.FetchIfStale(ctx, day, s.now())
		if err != nil {
			sum.Failed++
			s.log.Warn("crawl day failed", "date", day.Format(models.DateLayout), "err", err)
		} else {
			if fetched {
				sum.Fetched++
			} else {
				sum.Cached++
			}
			stats, err := s.Parse(ctx, page)
			sum.Stats.Add(stats)
			if err != nil {
				sum.Failed++
				s.log.Warn("crawl parse failed", "date", day.Format(models.DateLayout), "err", err)
			}
		}

		if (fetched || err != nil) && delay > 0 && day.Before(to) {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return sum, nil
}
