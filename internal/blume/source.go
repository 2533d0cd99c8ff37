// Package blume talks to the Berlin air quality network (BLUME) pages: it
// builds the daily page URLs, downloads them and parses the measurement table.
package blume

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// URLDateLayout is the date format embedded in daily page URLs.
const URLDateLayout = "20060102"

// ErrNoDate is returned when a page URL does not embed a YYYYMMDD date.
var ErrNoDate = errors.New("url carries no YYYYMMDD date")

var digitRunRe = regexp.MustCompile(`[0-9]+`)

// SourceURL formats date into template, which must contain one %s verb.
func SourceURL(template string, date time.Time) string {
	return fmt.Sprintf(template, date.Format(URLDateLayout))
}

// DateFromURL returns the date encoded in a page URL. The last run of exactly
// eight digits is used so digits elsewhere in the template do not interfere.
func DateFromURL(rawURL string) (time.Time, error) {
	runs := digitRunRe.FindAllString(rawURL, -1)
	for i := len(runs) - 1; i >= 0; i-- {
		if len(runs[i]) != len(URLDateLayout) {
			continue
		}
		date, err := time.Parse(URLDateLayout, runs[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrNoDate, rawURL, err)
		}
		return date, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrNoDate, rawURL)
}

// ParseDate accepts the date forms used on the API and the command line.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", URLDateLayout} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or YYYYMMDD", s)
}
