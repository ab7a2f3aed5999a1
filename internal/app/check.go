package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/review"
)

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	threshold := fs.Float64("threshold", 0, "High-confidence threshold override in [0.5, 1] (0 uses THREATWATCH_HIGH_CONFIDENCE)")
	appendNew := fs.Bool("append-new", false, "Append candidates with no match to the incidents file")

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

	cfg, logger, ok := loadRuntime(envLoader, "check")
	if !ok {
		return 1
	}

	checker, err := newChecker(cfg, *threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid threshold: %v\n", err)
		return 2
	}

	stubsPath := cfg.Path(cfg.StubsFile)
	batch, invalidStubs, err := datafile.LoadStubBatch(stubsPath)
	if err != nil {
		logger.Error().Err(err).Str("path", stubsPath).Msg("check failed to load stub batch")
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		return 1
	}
	reportInvalid(logger, stubsPath, invalidStubs)

	incidentsPath := cfg.Path(cfg.IncidentsFile)
	existing, err := loadIncidentsOrEmpty(logger, incidentsPath)
	if err != nil {
		logger.Error().Err(err).Str("path", incidentsPath).Msg("check failed to load incidents")
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		return 1
	}

	var summary review.Summary
	store := reviewStore(cfg)
	err = store.Update(func(state *review.State) error {
		summary = checker.Check(state, batch.Stubs, existing)
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("check failed to save review state")
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		return 1
	}

	appended := 0
	if *appendNew && len(summary.New) > 0 {
		added, err := datafile.AppendIncidents(incidentsPath, summary.New)
		if err != nil {
			logger.Error().Err(err).Str("path", incidentsPath).Msg("check failed to append new incidents")
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			return 1
		}
		appended = len(added)
	}

	logger.Info().
		Int("checked", summary.Checked).
		Int("auto_duplicates", summary.AutoDuplicates).
		Int("pending_review", summary.PendingReview).
		Int("new", len(summary.New)).
		Int("appended", appended).
		Float64("high_confidence", checker.Policy.High).
		Msg("check completed")

	fmt.Printf(
		"check checked=%d auto_duplicates=%d pending_review=%d new=%d appended=%d\n",
		summary.Checked,
		summary.AutoDuplicates,
		summary.PendingReview,
		len(summary.New),
		appended,
	)
	return 0
}

// loadIncidentsOrEmpty treats a missing canonical store as an empty one so
// the first batch ever checked is all new.
func loadIncidentsOrEmpty(logger zerolog.Logger, path string) ([]incident.Record, error) {
	records, invalid, err := datafile.LoadIncidents(path)
	if datafile.IsUpstreamMissing(err) {
		return []incident.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	reportInvalid(logger, path, invalid)
	return records, nil
}
