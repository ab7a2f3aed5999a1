package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/globaltime"
	"horse.fit/threatwatch/internal/review"
)

type reviewListOutput struct {
	Count int            `json:"count"`
	Items []review.Entry `json:"items"`
}

func runReview(args []string) int {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

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

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	cfg, logger, ok := loadRuntime(envLoader, "review")
	if !ok {
		return 1
	}

	state, err := reviewStore(cfg).Load()
	if err != nil {
		logger.Error().Err(err).Msg("review failed to load queue")
		fmt.Fprintf(os.Stderr, "Review failed: %v\n", err)
		return 1
	}

	pending := state.Pending()
	if outputFormat == outputFormatJSON {
		if err := printJSON(reviewListOutput{Count: len(pending), Items: pending}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	if len(pending) == 0 {
		fmt.Println("No matches pending review.")
		return 0
	}

	tableRows := make([][]string, 0, len(pending))
	for _, entry := range pending {
		tableRows = append(tableRows, []string{
			strconv.Itoa(entry.MatchID),
			formatScore(entry.Confidence),
			truncateForTable(entry.Candidate.School, 36),
			entry.Candidate.State,
			entry.Candidate.Date,
			strconv.Itoa(entry.Match.ExistingID),
			truncateForTable(entry.Match.ExistingSchool, 36),
			entry.Match.ExistingState,
			entry.Match.ExistingDate,
		})
	}
	if err := writeTable([]string{"MATCH", "CONF", "CANDIDATE", "STATE", "DATE", "EXISTING", "SCHOOL", "STATE", "DATE"}, tableRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	fmt.Printf("%d pending. Use \"threatwatch accept <id>\" or \"threatwatch reject <id>\".\n", len(pending))
	return 0
}

func runAccept(args []string) int {
	return runResolve("accept", args, (*review.State).Accept)
}

func runReject(args []string) int {
	return runResolve("reject", args, (*review.State).Reject)
}

func runResolve(command string, args []string, apply func(*review.State, int, time.Time) (review.Entry, error)) int {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	matchID, err := parseMatchIDArg(fs.Args(), command)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	cfg, logger, ok := loadRuntime(envLoader, command)
	if !ok {
		return 1
	}

	var resolved review.Entry
	err = reviewStore(cfg).Update(func(state *review.State) error {
		entry, applyErr := apply(state, matchID, globaltime.UTC())
		if applyErr != nil {
			return applyErr
		}
		resolved = entry
		return nil
	})

	var notFound *review.NotFoundError
	switch {
	case errors.As(err, &notFound):
		fmt.Fprintf(os.Stderr, "%v\n", notFound)
		return 1
	case err != nil:
		logger.Error().Err(err).Int("match_id", matchID).Msg("resolve failed")
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", command, err)
		return 1
	}

	logger.Info().
		Int("match_id", resolved.MatchID).
		Str("decision", string(resolved.Decision)).
		Msg("review entry resolved")
	fmt.Printf("match %d %s\n", resolved.MatchID, resolved.Decision)
	return 0
}

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

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

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	cfg, logger, ok := loadRuntime(envLoader, "stats")
	if !ok {
		return 1
	}

	state, err := reviewStore(cfg).Load()
	if err != nil {
		logger.Error().Err(err).Msg("stats failed to load dedup state")
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		return 1
	}

	stats := state.Stats()
	if outputFormat == outputFormatJSON {
		if err := printJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := [][]string{
		{"auto_duplicates", strconv.Itoa(stats.AutoDuplicates)},
		{"accepted_duplicates", strconv.Itoa(stats.Accepted)},
		{"rejected_not_duplicates", strconv.Itoa(stats.Rejected)},
		{"pending_review", strconv.Itoa(stats.Pending)},
		{"false_positive_rate", formatScore(stats.FalsePositiveRate)},
	}
	if err := writeTable([]string{"METRIC", "VALUE"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
