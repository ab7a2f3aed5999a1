// Package feeds pulls news articles from RSS sources.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/reader"
	"horse.fit/threatwatch/internal/sources"
)

const (
	SourceGoogleNews = "google_news_rss"

	googleNewsLabel = "Google News RSS"
	customRSSLabel  = "RSS"

	maxSnippetRunes = 500
)

// Fetcher downloads and parses feeds. Each source has its own limiter so
// consecutive requests to one host are spaced by the configured interval.
type Fetcher struct {
	client    *http.Client
	userAgent string
	cfg       *sources.Config
	limiters  map[string]*rate.Limiter
	logger    zerolog.Logger
}

func NewFetcher(cfg *sources.Config, logger zerolog.Logger) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		userAgent: cfg.UserAgent,
		cfg:       cfg,
		limiters:  make(map[string]*rate.Limiter),
		logger:    logger,
	}
	f.SetInterval(SourceGoogleNews, cfg.GoogleNews.RequestInterval)
	f.SetInterval(cfg.CustomRSSName(), cfg.CustomRSS.RequestInterval)
	return f
}

// SetInterval sets the minimum spacing between requests for source. A
// non-positive interval disables limiting.
func (f *Fetcher) SetInterval(source string, interval time.Duration) {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	f.limiters[source] = rate.NewLimiter(limit, 1)
}

func (f *Fetcher) limiter(source string) *rate.Limiter {
	if l, ok := f.limiters[source]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Inf, 1)
	f.limiters[source] = l
	return l
}

// FetchGoogleNews runs every configured search query. Failed queries are
// logged and skipped. Links already seen in this run are dropped.
func (f *Fetcher) FetchGoogleNews(ctx context.Context, year int) ([]incident.Article, error) {
	seen := make(map[string]struct{})
	var out []incident.Article
	for _, query := range f.cfg.GoogleNews.Queries {
		if err := f.wait(ctx, SourceGoogleNews); err != nil {
			return out, err
		}
		items, err := f.fetch(ctx, f.cfg.SearchURL(query, year))
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			f.logger.Warn().Err(err).Str("query", query).Msg("google news query failed")
			continue
		}

		for _, item := range items {
			link := strings.TrimSpace(item.Link)
			if link == "" {
				continue
			}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			out = append(out, toArticle(item, googleNewsLabel))
		}
		f.logger.Info().Str("query", query).Int("items", len(items)).Msg("google news query fetched")
	}
	return out, nil
}

// FetchRSS reads a single RSS or Atom feed.
func (f *Fetcher) FetchRSS(ctx context.Context, feedURL string) ([]incident.Article, error) {
	if err := f.wait(ctx, f.cfg.CustomRSSName()); err != nil {
		return nil, err
	}
	items, err := f.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	out := make([]incident.Article, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Link) == "" {
			continue
		}
		out = append(out, toArticle(item, customRSSLabel))
	}
	return out, nil
}

func (f *Fetcher) wait(ctx context.Context, source string) error {
	if err := f.limiter(source).Wait(ctx); err != nil {
		return fmt.Errorf("wait for %s rate limit: %w", source, err)
	}
	return nil
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed.Items, nil
}

func toArticle(item *gofeed.Item, sourceLabel string) incident.Article {
	link := strings.TrimSpace(item.Link)
	// Google News links are redirects; the GUID is the real URL when it
	// looks like one.
	if guid := strings.TrimSpace(item.GUID); strings.HasPrefix(guid, "http") {
		link = guid
	}

	published := strings.TrimSpace(item.Published)
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC().Format(datafile.TimestampLayout)
	}

	snippet := item.Description
	if strings.TrimSpace(snippet) == "" {
		snippet = item.Content
	}

	return incident.Article{
		Title:        strings.TrimSpace(item.Title),
		URL:          link,
		Published:    published,
		Source:       sourceLabel,
		Snippet:      reader.Truncate(reader.StripMarkup(snippet), maxSnippetRunes),
		OtherSources: []string{},
	}
}

// MergeByURL appends fresh articles whose URL is not yet in previous. It
// returns the merged list and the number of articles added.
func MergeByURL(previous, fresh []incident.Article) ([]incident.Article, int) {
	merged := make([]incident.Article, 0, len(previous)+len(fresh))
	seen := make(map[string]struct{}, len(previous)+len(fresh))
	for _, article := range previous {
		merged = append(merged, article)
		if url := strings.TrimSpace(article.URL); url != "" {
			seen[url] = struct{}{}
		}
	}

	added := 0
	for _, article := range fresh {
		url := strings.TrimSpace(article.URL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		merged = append(merged, article)
		added++
	}
	return merged, added
}
