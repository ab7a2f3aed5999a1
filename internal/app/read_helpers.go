package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/config"
	"horse.fit/threatwatch/internal/db"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/logging"
	"horse.fit/threatwatch/internal/match"
	"horse.fit/threatwatch/internal/review"
	"horse.fit/threatwatch/internal/textsim"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

// loadRuntime loads the env file, config and logger shared by every
// command. It prints the failure and returns false when any step fails.
func loadRuntime(envLoader *cli.EnvLoader, command string) (*config.Config, zerolog.Logger, bool) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, zerolog.Nop(), false
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return nil, zerolog.Nop(), false
	}
	return cfg, logging.ForCommand(logger, command), true
}

func reviewStore(cfg *config.Config) review.FileStore {
	return review.NewFileStore(cfg.Path(cfg.ReviewQueueFile), cfg.Path(cfg.DedupLogFile))
}

// newChecker builds a Checker whose high-confidence threshold is override
// when set, or the configured default otherwise.
func newChecker(cfg *config.Config, override float64) (review.Checker, error) {
	high := cfg.HighConfidence
	if override != 0 {
		high = override
	}
	policy, err := review.DefaultPolicy().WithHigh(high)
	if err != nil {
		return review.Checker{}, err
	}
	return review.Checker{
		Scorer: match.NewScorer(textsim.Levenshtein{}),
		Policy: policy,
	}, nil
}

func reportInvalid(logger zerolog.Logger, path string, invalid []*incident.ValidationError) {
	for _, verr := range invalid {
		logger.Warn().Err(verr.Err).Str("path", path).Int("index", verr.Index).Msg("skipping invalid record")
	}
}

func parseMatchIDArg(args []string, command string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s requires exactly one match id", command)
	}
	id, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("match id must be a positive integer, got %q", args[0])
	}
	return id, nil
}

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func truncateForTable(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if maxLen <= 0 {
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}

	runes := []rune(trimmed)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func connectPool(cfg *config.Config, timeout time.Duration) (context.Context, context.CancelFunc, *db.Pool, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return ctx, cancel, pool, nil
}
