package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/sources"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>school threat USA - Google News</title>
<item>
  <title>Lincoln High School bomb threat prompts evacuation - WSB-TV</title>
  <link>https://news.google.com/rss/articles/abc?oc=5</link>
  <guid isPermaLink="false">CBMiabc</guid>
  <pubDate>Mon, 09 Mar 2026 13:00:00 GMT</pubDate>
  <description>&lt;a href="https://example.com/lincoln"&gt;Lincoln High School bomb threat&lt;/a&gt;&amp;nbsp;&lt;font color="#6f6f6f"&gt;WSB-TV&lt;/font&gt;</description>
</item>
<item>
  <title>Oak Ridge Elementary placed on lockdown</title>
  <link>https://example.com/oak</link>
  <guid>https://example.com/oak-canonical</guid>
  <pubDate>Tue, 10 Mar 2026 08:00:00 GMT</pubDate>
  <description>Plain snippet</description>
</item>
<item>
  <title>No link item</title>
</item>
</channel>
</rss>`

func newTestConfig(baseURL string) *sources.Config {
	return &sources.Config{
		UserAgent:      "TestBot/1.0",
		RequestTimeout: 5 * time.Second,
		GoogleNews: sources.GoogleNews{
			BaseURL: baseURL,
			Locale:  "en-US",
			Queries: []string{"school threat USA", "bomb threat school"},
		},
	}
}

func newRSSServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") != "TestBot/1.0" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchGoogleNewsDedupesAcrossQueries(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newRSSServer(t, &hits)
	fetcher := NewFetcher(newTestConfig(srv.URL), zerolog.Nop())

	articles, err := fetcher.FetchGoogleNews(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected one request per query, got %d", hits.Load())
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 unique articles, got %d", len(articles))
	}

	first := articles[0]
	if first.URL != "https://news.google.com/rss/articles/abc?oc=5" {
		t.Fatalf("expected non-URL guid to be ignored, got %q", first.URL)
	}
	if first.Published != "2026-03-09T13:00:00Z" {
		t.Fatalf("unexpected published %q", first.Published)
	}
	if first.Snippet != "Lincoln High School bomb threat WSB-TV" {
		t.Fatalf("expected markup to be stripped, got %q", first.Snippet)
	}
	if first.Source != "Google News RSS" || first.OtherSources == nil {
		t.Fatalf("unexpected article: %+v", first)
	}

	if articles[1].URL != "https://example.com/oak-canonical" {
		t.Fatalf("expected URL guid to win, got %q", articles[1].URL)
	}
}

func TestFetchRSS(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newRSSServer(t, &hits)
	fetcher := NewFetcher(newTestConfig(srv.URL), zerolog.Nop())

	articles, err := fetcher.FetchRSS(context.Background(), srv.URL+"/custom")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 2 || articles[1].Source != "RSS" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestFetchRSSReportsHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	fetcher := NewFetcher(newTestConfig(srv.URL), zerolog.Nop())
	if _, err := fetcher.FetchRSS(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected an error for a 502 response")
	}

	articles, err := fetcher.FetchGoogleNews(context.Background(), 2025)
	if err != nil {
		t.Fatalf("expected failing queries to be skipped, got %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(articles))
	}
}

func TestFetcherHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newRSSServer(t, &hits)
	cfg := newTestConfig(srv.URL)
	cfg.GoogleNews.RequestInterval = time.Hour
	fetcher := NewFetcher(cfg, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := fetcher.FetchGoogleNews(ctx, 0); err == nil {
		t.Fatalf("expected the second query to be cut off by the rate limiter")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one request before cancellation, got %d", hits.Load())
	}
}

func TestMergeByURL(t *testing.T) {
	t.Parallel()

	previous := []incident.Article{{URL: "https://a"}, {URL: "https://b"}}
	fresh := []incident.Article{{URL: " https://b "}, {URL: ""}, {URL: "https://c"}}
	merged, added := MergeByURL(previous, fresh)
	if added != 1 || len(merged) != 3 || merged[2].URL != "https://c" {
		t.Fatalf("unexpected merge: added=%d merged=%+v", added, merged)
	}
}

func TestAppendStatsKeepsRecentRuns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fetch_stats.json")
	now := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	for i := 0; i < maxStatsRuns+5; i++ {
		recorder := NewRunRecorder()
		recorder.Record(SourceGoogleNews, i, now)
		if err := AppendStats(path, recorder, now); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var doc StatsLog
	if err := datafile.ReadJSON(path, &doc); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Runs) != maxStatsRuns {
		t.Fatalf("expected %d runs, got %d", maxStatsRuns, len(doc.Runs))
	}
	if got := doc.Runs[0].Sources[SourceGoogleNews].ArticlesFetched; got != 5 {
		t.Fatalf("expected the oldest runs to be dropped, first run has %d", got)
	}
}
