package ingest

import (
	"context"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFetchCreatesThenUpdates(t *testing.T) {
	store := newMemStore()
	fetcher := &fakeFetcher{pages: map[string]string{urlFor("20140513"): "first"}}
	svc := newTestService(store, fetcher, false)
	ctx := context.Background()

	first, err := svc.Fetch(ctx, day(2014, 5, 13))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if first.URL != urlFor("20140513") || first.Content != "first" {
		t.Fatalf("unexpected page: %+v", first)
	}

	fetcher.pages[urlFor("20140513")] = "second"
	second, err := svc.Fetch(ctx, day(2014, 5, 13))
	if err != nil {
		t.Fatalf("Fetch again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("page id changed: %d != %d", first.ID, second.ID)
	}
	if second.Content != "second" {
		t.Errorf("content = %q; want second", second.Content)
	}
	if len(store.pages) != 1 {
		t.Errorf("stored pages = %d; want 1", len(store.pages))
	}
}

func TestFetchErrorPropagates(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeFetcher{}, false)

	if _, err := svc.Fetch(context.Background(), day(2014, 5, 13)); err == nil {
		t.Fatal("expected fetch error")
	}
	if len(store.pages) != 0 {
		t.Errorf("page stored despite fetch error")
	}
}

func TestFetchDryRunDoesNotStore(t *testing.T) {
	store := newMemStore()
	fetcher := &fakeFetcher{pages: map[string]string{urlFor("20140513"): "body"}}
	svc := newTestService(store, fetcher, true)

	page, err := svc.Fetch(context.Background(), day(2014, 5, 13))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Content != "body" {
		t.Errorf("content = %q", page.Content)
	}
	if len(store.pages) != 0 {
		t.Errorf("dry run stored a page")
	}
}

func TestFetchIfStale(t *testing.T) {
	now := day(2014, 5, 20)
	tests := []struct {
		name        string
		date        time.Time
		stored      bool
		wantFetched bool
	}{
		{name: "missing page", date: day(2014, 5, 1), stored: false, wantFetched: true},
		{name: "old stored page", date: day(2014, 5, 1), stored: true, wantFetched: false},
		{name: "recent stored page", date: day(2014, 5, 18), stored: true, wantFetched: true},
		{name: "edge of window", date: day(2014, 5, 15), stored: true, wantFetched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			url := urlFor(tt.date.Format("20060102"))
			fetcher := &fakeFetcher{pages: map[string]string{url: "fresh"}}
			svc := newTestService(store, fetcher, false)
			ctx := context.Background()

			if tt.stored {
				if _, err := store.UpsertPage(ctx, url, "cached", tt.date); err != nil {
					t.Fatal(err)
				}
			}

			page, fetched, err := svc.FetchIfStale(ctx, tt.date, now)
			if err != nil {
				t.Fatalf("FetchIfStale: %v", err)
			}
			if fetched != tt.wantFetched {
				t.Errorf("fetched = %v; want %v", fetched, tt.wantFetched)
			}
			wantContent := "cached"
			if tt.wantFetched {
				wantContent = "fresh"
			}
			if page.Content != wantContent {
				t.Errorf("content = %q; want %q", page.Content, wantContent)
			}
		})
	}
}

func TestDownloadParsesFetchedPage(t *testing.T) {
	store := newMemStore()
	fetcher := &fakeFetcher{pages: map[string]string{
		urlFor("20140513"): blumePage(stationRow("010"), stationRow("042")),
	}}
	svc := newTestService(store, fetcher, false)

	page, stats, err := svc.Download(context.Background(), day(2014, 5, 13))
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if page.ID == 0 {
		t.Errorf("page not stored")
	}
	if stats.Created != 2 || stats.Sensors != 2 {
		t.Errorf("unexpected stats: %s", stats)
	}
	m, ok := store.measurements["id-010/2014-05-13"]
	if !ok {
		t.Fatalf("measurement for 010 missing")
	}
	if m.PartikelPM10Mittel == nil || *m.PartikelPM10Mittel != 2 {
		t.Errorf("pm10 = %v; want 2", m.PartikelPM10Mittel)
	}
	if m.SchwefeldioxidMax1h == nil || *m.SchwefeldioxidMax1h != 28 {
		t.Errorf("so2 max = %v; want 28", m.SchwefeldioxidMax1h)
	}
	if !m.Date.Equal(day(2014, 5, 13)) {
		t.Errorf("date = %v", m.Date)
	}
}
