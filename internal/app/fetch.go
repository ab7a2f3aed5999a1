package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/cluster"
	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/feeds"
	"horse.fit/threatwatch/internal/globaltime"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/sources"
)

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	year := fs.Int("year", 0, "Restrict searches to one year and merge into the existing feed")
	sourcesFile := fs.String("sources", "", "Path to a sources YAML file (default THREATWATCH_SOURCES_FILE or built-in)")
	rssURL := fs.String("rss", "", "Custom RSS feed URL (default RSS_URL)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}
	if *year < 0 || (*year > 0 && *year < 2000) {
		fmt.Fprintln(os.Stderr, "--year must be a four-digit year")
		return 2
	}

	cfg, logger, ok := loadRuntime(envLoader, "fetch")
	if !ok {
		return 1
	}

	sourcesPath := strings.TrimSpace(*sourcesFile)
	if sourcesPath == "" {
		sourcesPath = cfg.SourcesFile
	}
	sourceCfg, err := sources.Load(sourcesPath)
	if err != nil {
		logger.Error().Err(err).Str("path", sourcesPath).Msg("fetch failed to load sources")
		fmt.Fprintf(os.Stderr, "Failed to load sources: %v\n", err)
		return 1
	}

	customFeed := strings.TrimSpace(*rssURL)
	if customFeed == "" {
		customFeed = strings.TrimSpace(cfg.CustomRSSURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := feeds.NewFetcher(sourceCfg, logger)
	recorder := feeds.NewRunRecorder()

	articles, err := fetcher.FetchGoogleNews(ctx, *year)
	if err != nil {
		logger.Error().Err(err).Msg("google news fetch interrupted")
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		return 1
	}
	recorder.Record(feeds.SourceGoogleNews, len(articles), globaltime.UTC())

	if customFeed != "" {
		custom, err := fetcher.FetchRSS(ctx, customFeed)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", ctx.Err())
				return 1
			}
			logger.Warn().Err(err).Str("url", customFeed).Msg("custom rss fetch failed")
		}
		recorder.Record(sourceCfg.CustomRSSName(), len(custom), globaltime.UTC())
		articles = append(articles, custom...)
	}

	fetched := len(articles)
	feedPath := cfg.Path(cfg.NewsFeedFile)
	if *year > 0 {
		previous, err := loadFeedOrEmpty(feedPath)
		if err != nil {
			logger.Error().Err(err).Str("path", feedPath).Msg("fetch failed to load existing feed")
			fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
			return 1
		}
		var added int
		articles, added = feeds.MergeByURL(previous, articles)
		logger.Info().Int("year", *year).Int("added", added).Int("existing", len(previous)).Msg("merged historical articles")
	}

	afterURLDedup, clustered := cluster.Run(articles)
	now := globaltime.UTC()
	if err := datafile.WriteJSON(feedPath, datafile.NewNewsFeed(now, afterURLDedup, clustered)); err != nil {
		logger.Error().Err(err).Str("path", feedPath).Msg("fetch failed to write news feed")
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		return 1
	}

	statsPath := cfg.Path(cfg.FetchStatsFile)
	if err := feeds.AppendStats(statsPath, recorder, now); err != nil {
		logger.Warn().Err(err).Str("path", statsPath).Msg("failed to record fetch stats")
	}

	logger.Info().
		Int("fetched", fetched).
		Int("after_url_dedup", afterURLDedup).
		Int("clusters", len(clustered)).
		Int("year", *year).
		Msg("fetch completed")
	fmt.Printf("fetch fetched=%d after_url_dedup=%d clusters=%d output=%s\n", fetched, afterURLDedup, len(clustered), feedPath)
	return 0
}

func loadFeedOrEmpty(path string) ([]incident.Article, error) {
	feed, _, err := datafile.LoadNewsFeed(path)
	if datafile.IsUpstreamMissing(err) {
		return []incident.Article{}, nil
	}
	if err != nil {
		return nil, err
	}
	return feed.Articles, nil
}
