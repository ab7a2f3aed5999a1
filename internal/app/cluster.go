package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/cluster"
	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/globaltime"
)

func runCluster(args []string) int {
	fs := flag.NewFlagSet("cluster", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

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

	cfg, logger, ok := loadRuntime(envLoader, "cluster")
	if !ok {
		return 1
	}

	feedPath := cfg.Path(cfg.NewsFeedFile)
	feed, invalid, err := datafile.LoadNewsFeed(feedPath)
	if err != nil {
		logger.Error().Err(err).Str("path", feedPath).Msg("cluster failed to load news feed")
		fmt.Fprintf(os.Stderr, "Cluster failed: %v\n", err)
		return 1
	}
	reportInvalid(logger, feedPath, invalid)

	afterURLDedup, clustered := cluster.Run(feed.Articles)
	if err := datafile.WriteJSON(feedPath, datafile.NewNewsFeed(globaltime.UTC(), afterURLDedup, clustered)); err != nil {
		logger.Error().Err(err).Str("path", feedPath).Msg("cluster failed to write news feed")
		fmt.Fprintf(os.Stderr, "Cluster failed: %v\n", err)
		return 1
	}

	logger.Info().
		Int("articles_in", len(feed.Articles)).
		Int("after_url_dedup", afterURLDedup).
		Int("clusters", len(clustered)).
		Msg("cluster completed")
	fmt.Printf("cluster articles=%d after_url_dedup=%d clusters=%d\n", len(feed.Articles), afterURLDedup, len(clustered))
	return 0
}
