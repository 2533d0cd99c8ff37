package utils

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/blume"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/ingest"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

// FirstDay is the first day the BLUME archive publishes.
var FirstDay = time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseDay parses a day argument: "today", "yesterday", YYYY-MM-DD or YYYYMMDD.
func ParseDay(s string, now time.Time) (time.Time, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	day, err := blume.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (use YYYY-MM-DD, YYYYMMDD, today or yesterday)", s)
	}
	return day, nil
}

// DayCount returns the number of days from..to inclusive, or 0 when to is before from.
func DayCount(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// PrintStats writes a short coloured parse summary.
func PrintStats(w io.Writer, stats ingest.ParseStats) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	fmt.Fprintf(w, "%s %d measurements created, %d already stored\n",
		green.Sprint("✓"), stats.Created, stats.Duplicates)
	fmt.Fprintf(w, "  %s\n", faint.Sprintf("%d rows, %d valid, %d sensors", stats.Rows, stats.ValidRows, stats.Sensors))
	if skipped := stats.SkippedCellCount + stats.SkippedSensorCode; skipped > 0 {
		fmt.Fprintf(w, "  %s\n", yellow.Sprintf("%d rows skipped (%d cell count, %d sensor code)",
			skipped, stats.SkippedCellCount, stats.SkippedSensorCode))
	}
	if stats.PagesFailed > 0 {
		fmt.Fprintf(w, "  %s\n", color.New(color.FgRed).Sprintf("%d of %d pages failed", stats.PagesFailed, stats.Pages))
	}
}

// PrintCrawl writes the crawl summary followed by the parse summary.
func PrintCrawl(w io.Writer, from, to time.Time, sum ingest.CrawlSummary) {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s %s .. %s: %d days, %d fetched, %d from store",
		bold.Sprint("crawl"), from.Format(models.DateLayout), to.Format(models.DateLayout),
		sum.Days, sum.Fetched, sum.Cached)
	if sum.Failed > 0 {
		fmt.Fprintf(w, ", %s", color.New(color.FgRed).Sprintf("%d failed", sum.Failed))
	}
	fmt.Fprintln(w)
	PrintStats(w, sum.Stats)
}
