package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/config"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

type memStore struct {
	mu           sync.Mutex
	pages        map[string]models.Page
	pageOrder    []string
	nextPageID   int64
	sensors      map[string]models.Sensor
	measurements map[string]models.Measurement
}

func newMemStore() *memStore {
	return &memStore{
		pages:        make(map[string]models.Page),
		sensors:      make(map[string]models.Sensor),
		measurements: make(map[string]models.Measurement),
	}
}

func (m *memStore) GetPageByURL(_ context.Context, url string) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[url]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) UpsertPage(_ context.Context, url, content string, at time.Time) (models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[url]
	if !ok {
		m.nextPageID++
		p = models.Page{ID: m.nextPageID, URL: url}
		m.pageOrder = append(m.pageOrder, url)
	}
	p.Content = content
	p.DateDownload = at
	m.pages[url] = p
	return p, nil
}

func (m *memStore) ListPageURLs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pageOrder...), nil
}

func (m *memStore) UpsertSensors(_ context.Context, codes []string) (map[string]models.Sensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.Sensor, len(codes))
	for _, code := range codes {
		s, ok := m.sensors[code]
		if !ok {
			s = models.Sensor{InternalID: "id-" + code, SensorID: code}
			m.sensors[code] = s
		}
		out[code] = s
	}
	return out, nil
}

func (m *memStore) InsertMeasurements(_ context.Context, ms []models.Measurement) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, meas := range ms {
		key := meas.SensorInternalID + "/" + meas.Date.Format(models.DateLayout)
		if _, ok := m.measurements[key]; ok {
			continue
		}
		m.measurements[key] = meas
		n++
	}
	return n, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return "", errors.New("unexpected status 404 Not Found")
	}
	return body, nil
}

const testTemplate = "http://blume.test/download/%s.html"

func newTestService(store Store, fetcher Fetcher, dryRun bool) *Service {
	cfg := config.Config{
		SourceURLTemplate: testTemplate,
		RefetchWindow:     5 * 24 * time.Hour,
		DryRun:            dryRun,
	}
	return NewService(store, fetcher, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func urlFor(date string) string {
	return fmt.Sprintf(testTemplate, date)
}

func tableRow(cells ...string) string {
	return "<tr><td>" + strings.Join(cells, "</td><td>") + "</td></tr>"
}

func stationRow(code string) string {
	cells := []string{code + " Wedding"}
	for i := 1; i <= 14; i++ {
		cells = append(cells, fmt.Sprintf("%d", i*2))
	}
	return tableRow(cells...)
}

func blumePage(rows ...string) string {
	return `<html><body><table class="datenhellgrauklein">
<tr><th>Station</th><th>PM10</th></tr>
` + strings.Join(rows, "\n") + `
</table></body></html>`
}
