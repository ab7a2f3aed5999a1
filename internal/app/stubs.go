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
	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/globaltime"
	"horse.fit/threatwatch/internal/reader"
	"horse.fit/threatwatch/internal/sources"
	"horse.fit/threatwatch/internal/stubs"
)

const dryRunPreview = 5

func runStubs(args []string) int {
	fs := flag.NewFlagSet("stubs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	merge := fs.Bool("merge", false, "Append new stubs to the incidents file instead of writing a stub batch")
	dryRun := fs.Bool("dry-run", false, "Print the stubs without writing any file")
	threshold := fs.Float64("threshold", 0, "High-confidence threshold override in [0.5, 1] (0 uses THREATWATCH_HIGH_CONFIDENCE)")
	enrich := fs.Bool("enrich", false, "Fetch the article page for details when the feed carries no snippet")
	lang := fs.String("language", "", "Two-letter headline language to keep (default THREATWATCH_HEADLINE_LANGUAGE, \"any\" disables)")

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
	if *threshold != 0 && (*threshold < 0.5 || *threshold > 1) {
		fmt.Fprintln(os.Stderr, "--threshold must be between 0.5 and 1")
		return 2
	}

	cfg, logger, ok := loadRuntime(envLoader, "stubs")
	if !ok {
		return 1
	}

	checker, err := newChecker(cfg, *threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid threshold: %v\n", err)
		return 2
	}

	language := strings.ToLower(strings.TrimSpace(*lang))
	if language == "" {
		language = strings.ToLower(strings.TrimSpace(cfg.HeadlineLanguage))
	}
	if language == "any" {
		language = ""
	}

	converter := stubs.Converter{
		Checker:  checker,
		Language: language,
		Logger:   logger,
	}
	if *enrich {
		sourceCfg, err := sources.Load(cfg.SourcesFile)
		if err != nil {
			logger.Error().Err(err).Msg("stubs failed to load sources file")
			fmt.Fprintf(os.Stderr, "Failed to load sources: %v\n", err)
			return 1
		}
		opts := reader.FetchOptions{Timeout: sourceCfg.RequestTimeout, UserAgent: sourceCfg.UserAgent}
		converter.Enrich = func(ctx context.Context, url string) (string, error) {
			return reader.ArticleText(ctx, url, opts)
		}
	}

	feedPath := cfg.Path(cfg.NewsFeedFile)
	feed, invalid, err := datafile.LoadNewsFeed(feedPath)
	if err != nil {
		logger.Error().Err(err).Str("path", feedPath).Msg("stubs failed to load news feed")
		fmt.Fprintf(os.Stderr, "Stubs failed: %v\n", err)
		return 1
	}
	reportInvalid(logger, feedPath, invalid)

	incidentsPath := cfg.Path(cfg.IncidentsFile)
	existing, err := loadIncidentsOrEmpty(logger, incidentsPath)
	if err != nil {
		logger.Error().Err(err).Str("path", incidentsPath).Msg("stubs failed to load incidents")
		fmt.Fprintf(os.Stderr, "Stubs failed: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := reviewStore(cfg)
	state, err := store.Load()
	if err != nil {
		logger.Error().Err(err).Msg("stubs failed to load review state")
		fmt.Fprintf(os.Stderr, "Stubs failed: %v\n", err)
		return 1
	}

	result := converter.Convert(ctx, state, feed.Articles, existing)

	logger.Info().
		Int("processed", result.Processed).
		Int("skipped_empty", result.SkippedEmpty).
		Int("skipped_language", result.SkippedLanguage).
		Int("skipped_non_us", result.SkippedNonUS).
		Int("skipped_duplicate", result.SkippedDuplicate).
		Int("sent_to_review", result.SentToReview).
		Int("stubs", len(result.Stubs)).
		Bool("dry_run", *dryRun).
		Msg("stub conversion completed")

	if *dryRun {
		printStubPreview(result)
		return 0
	}

	if err := store.Save(state); err != nil {
		logger.Error().Err(err).Msg("stubs failed to save review state")
		fmt.Fprintf(os.Stderr, "Stubs failed: %v\n", err)
		return 1
	}

	target := cfg.Path(cfg.StubsFile)
	if *merge {
		target = incidentsPath
		if _, err := datafile.AppendIncidents(incidentsPath, result.Stubs); err != nil {
			logger.Error().Err(err).Str("path", incidentsPath).Msg("stubs failed to merge into incidents")
			fmt.Fprintf(os.Stderr, "Stubs failed: %v\n", err)
			return 1
		}
	} else if err := datafile.WriteJSON(target, datafile.NewStubBatch(globaltime.UTC(), result.Stubs)); err != nil {
		logger.Error().Err(err).Str("path", target).Msg("stubs failed to write stub batch")
		fmt.Fprintf(os.Stderr, "Stubs failed: %v\n", err)
		return 1
	}

	fmt.Printf(
		"stubs processed=%d stubs=%d duplicates=%d review=%d non_us=%d language=%d empty=%d output=%s\n",
		result.Processed,
		len(result.Stubs),
		result.SkippedDuplicate,
		result.SentToReview,
		result.SkippedNonUS,
		result.SkippedLanguage,
		result.SkippedEmpty,
		target,
	)
	return 0
}

func printStubPreview(result stubs.Result) {
	fmt.Printf("dry run: %d stubs from %d articles (nothing written)\n", len(result.Stubs), result.Processed)
	for i, stub := range result.Stubs {
		if i == dryRunPreview {
			fmt.Printf("... and %d more\n", len(result.Stubs)-dryRunPreview)
			break
		}
		fmt.Printf("  [%d] %s | %s | %s | %s\n", stub.ID, stub.School, stub.State, stub.ThreatType, truncateForTable(stub.Source, 60))
	}
}

