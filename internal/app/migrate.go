package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/datafile"
)

func runMigrate(args []string) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Export timeout")

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

	cfg, logger, ok := loadRuntime(envLoader, "migrate")
	if !ok {
		return 1
	}

	incidentsPath := cfg.Path(cfg.IncidentsFile)
	records, invalid, err := datafile.LoadIncidents(incidentsPath)
	if err != nil {
		logger.Error().Err(err).Str("path", incidentsPath).Msg("migrate failed to load incidents")
		fmt.Fprintf(os.Stderr, "Migrate failed: %v\n", err)
		return 1
	}
	reportInvalid(logger, incidentsPath, invalid)

	state, err := reviewStore(cfg).Load()
	if err != nil {
		logger.Error().Err(err).Msg("migrate failed to load dedup log")
		fmt.Fprintf(os.Stderr, "Migrate failed: %v\n", err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(cfg, *timeout)
	if err != nil {
		logger.Error().Err(err).Msg("migrate failed to connect to database")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	result, err := pool.ReplaceAll(ctx, records, state.Log)
	if err != nil {
		logger.Error().Err(err).Msg("migrate failed")
		fmt.Fprintf(os.Stderr, "Migrate failed: %v\n", err)
		return 1
	}

	logger.Info().
		Int64("incidents", result.Incidents).
		Int64("dedup_decisions", result.Decisions).
		Int("skipped_invalid", len(invalid)).
		Msg("migrate completed")
	fmt.Printf("migrate incidents=%d dedup_decisions=%d skipped_invalid=%d\n", result.Incidents, result.Decisions, len(invalid))
	return 0
}
