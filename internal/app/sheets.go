package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/globaltime"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/sheets"
	"horse.fit/threatwatch/internal/sources"
)

func runSheets(args []string) int {
	fs := flag.NewFlagSet("sheets", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	year := fs.Int("year", globaltime.UTC().Year(), "Spreadsheet year to import")
	file := fs.String("file", "", "Read a local CSV export instead of downloading")
	output := fs.String("output", "", "Output file, relative to the data dir unless absolute (default school_threats_<year>.json)")
	sourcesFile := fs.String("sources", "", "Path to a sources YAML file (default THREATWATCH_SOURCES_FILE or built-in)")

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

	cfg, logger, ok := loadRuntime(envLoader, "sheets")
	if !ok {
		return 1
	}

	var (
		records []incident.Record
		origin  string
		err     error
	)
	if localPath := strings.TrimSpace(*file); localPath != "" {
		origin = localPath
		records, err = parseSheetFile(localPath)
	} else {
		sourcesPath := strings.TrimSpace(*sourcesFile)
		if sourcesPath == "" {
			sourcesPath = cfg.SourcesFile
		}
		sourceCfg, loadErr := sources.Load(sourcesPath)
		if loadErr != nil {
			logger.Error().Err(loadErr).Str("path", sourcesPath).Msg("sheets failed to load sources")
			fmt.Fprintf(os.Stderr, "Failed to load sources: %v\n", loadErr)
			return 1
		}
		sheet, found := sourceCfg.Sheet(*year)
		if !found {
			fmt.Fprintf(os.Stderr, "No spreadsheet configured for %d\n", *year)
			return 1
		}
		origin = sheet.URL
		client := &http.Client{Timeout: sourceCfg.RequestTimeout}
		records, err = sheets.Download(context.Background(), client, sheet.URL, sourceCfg.UserAgent)
	}
	if err != nil {
		logger.Error().Err(err).Str("origin", origin).Msg("sheets import failed")
		fmt.Fprintf(os.Stderr, "Sheets import failed: %v\n", err)
		return 1
	}

	target := strings.TrimSpace(*output)
	if target == "" {
		target = fmt.Sprintf("school_threats_%d.json", *year)
	}
	target = cfg.Path(target)
	if err := datafile.WriteJSON(target, records); err != nil {
		logger.Error().Err(err).Str("path", target).Msg("sheets failed to write incidents")
		fmt.Fprintf(os.Stderr, "Sheets import failed: %v\n", err)
		return 1
	}

	logger.Info().
		Int("records", len(records)).
		Int("year", *year).
		Str("origin", origin).
		Str("output", target).
		Msg("sheets import completed")
	fmt.Printf("sheets records=%d year=%d output=%s\n", len(records), *year, target)
	return 0
}

func parseSheetFile(path string) ([]incident.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return sheets.Parse(f)
}
