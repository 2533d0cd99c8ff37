package ingest

import (
	"context"
	"testing"
)

func TestCrawlContinuesAfterFailedDay(t *testing.T) {
	store := newMemStore()
	fetcher := &fakeFetcher{pages: map[string]string{
		urlFor("20140511"): blumePage(stationRow("010")),
		urlFor("20140513"): blumePage(stationRow("010"), stationRow("042")),
	}}
	svc := newTestService(store, fetcher, false)

	sum, err := svc.Crawl(context.Background(), day(2014, 5, 11), day(2014, 5, 13), 0)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if sum.Days != 3 || sum.Fetched != 2 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.Stats.Created != 3 {
		t.Errorf("created = %d; want 3", sum.Stats.Created)
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("fetch calls = %d; want 3", len(fetcher.calls))
	}
}

func TestCrawlUsesStoredOldPages(t *testing.T) {
	store := newMemStore()
	fetcher := &fakeFetcher{pages: map[string]string{
		urlFor("20140511"): blumePage(stationRow("010")),
	}}
	svc := newTestService(store, fetcher, false)
	ctx := context.Background()

	if _, err := svc.Crawl(ctx, day(2014, 5, 11), day(2014, 5, 11), 0); err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	sum, err := svc.Crawl(ctx, day(2014, 5, 11), day(2014, 5, 11), 0)
	if err != nil {
		t.Fatalf("second Crawl: %v", err)
	}
	if sum.Cached != 1 || sum.Fetched != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("fetch calls = %d; want 1", len(fetcher.calls))
	}
}

func TestCrawlStopsOnCancel(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeFetcher{}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Crawl(ctx, day(2014, 5, 11), day(2014, 5, 13), 0); err == nil {
		t.Fatal("expected context error")
	}
}
