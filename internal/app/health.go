package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/threatwatch/internal/cli"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, ok := loadRuntime(envLoader, "health")
	if !ok {
		return 1
	}

	ctx, cancel, pool, err := connectPool(cfg, *timeout)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	counts, err := pool.CountRows(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed to count rows")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	stats, err := pool.DecisionStats(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed to read decision stats")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	logger.Info().
		Dur("timeout", *timeout).
		Int64("incidents", counts.Incidents).
		Int64("dedup_decisions", counts.Decisions).
		Float64("false_positive_rate", stats.FalsePositiveRate).
		Msg("database health check passed")
	fmt.Printf(
		"ok: database ping successful incidents=%d dedup_decisions=%d false_positive_rate=%s\n",
		counts.Incidents,
		counts.Decisions,
		formatScore(stats.FalsePositiveRate),
	)
	return 0
}
