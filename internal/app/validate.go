package app

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"horse.fit/threatwatch/internal/cli"
	"horse.fit/threatwatch/internal/config"
	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/incident"
)

const (
	kindIncidents = "incidents"
	kindStubs     = "stubs"
	kindFeed      = "feed"
)

type validateResult struct {
	Scanned int
	Valid   int
	Invalid int
}

func (r *validateResult) add(other validateResult) {
	r.Scanned += other.Scanned
	r.Valid += other.Valid
	r.Invalid += other.Invalid
}

func runValidate(args []string) int {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(flags, ".env", "Path to the .env file")
	kind := flags.String("kind", kindIncidents, "Document kind: incidents, stubs or feed")
	file := flags.String("file", "", "Document to validate (default: the configured file for --kind)")
	dir := flags.String("dir", "", "Validate every .json document of --kind under this directory instead")
	recursive := flags.Bool("recursive", true, "Recursively scan subdirectories with --dir")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", flags.Args())
		return 2
	}

	docKind := strings.ToLower(strings.TrimSpace(*kind))
	switch docKind {
	case kindIncidents, kindStubs, kindFeed:
	default:
		fmt.Fprintln(os.Stderr, "--kind must be incidents, stubs or feed")
		return 2
	}
	if strings.TrimSpace(*file) != "" && strings.TrimSpace(*dir) != "" {
		fmt.Fprintln(os.Stderr, "--file and --dir are mutually exclusive")
		return 2
	}

	cfg, _, ok := loadRuntime(envLoader, "validate")
	if !ok {
		return 1
	}

	var files []string
	if root := strings.TrimSpace(*dir); root != "" {
		collected, err := collectJSONFiles(root, *recursive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Validation setup failed: %v\n", err)
			return 1
		}
		if len(collected) == 0 {
			fmt.Fprintf(os.Stderr, "Validation failed: no .json files found under %s\n", root)
			return 1
		}
		files = collected
	} else {
		files = []string{documentPath(cfg, docKind, *file)}
	}

	result := validateResult{}
	for _, path := range files {
		fileResult, err := validateDocument(docKind, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", path, err)
			if len(files) == 1 {
				return 1
			}
			result.Invalid++
			continue
		}
		result.add(fileResult)
	}

	fmt.Printf(
		"validate kind=%s files=%d scanned=%d valid=%d invalid=%d\n",
		docKind,
		len(files),
		result.Scanned,
		result.Valid,
		result.Invalid,
	)

	if result.Invalid > 0 {
		return 1
	}
	return 0
}

func documentPath(cfg *config.Config, kind, override string) string {
	if path := strings.TrimSpace(override); path != "" {
		return path
	}
	switch kind {
	case kindStubs:
		return cfg.Path(cfg.StubsFile)
	case kindFeed:
		return cfg.Path(cfg.NewsFeedFile)
	default:
		return cfg.Path(cfg.IncidentsFile)
	}
}

// validateDocument checks every record in the document at path. The error
// is set only when the document itself cannot be read or decoded.
func validateDocument(kind, path string) (validateResult, error) {
	var (
		valid   int
		invalid []*incident.ValidationError
	)
	switch kind {
	case kindStubs:
		batch, bad, err := datafile.LoadStubBatch(path)
		if err != nil {
			return validateResult{}, err
		}
		valid, invalid = len(batch.Stubs), bad
	case kindFeed:
		feed, bad, err := datafile.LoadNewsFeed(path)
		if err != nil {
			return validateResult{}, err
		}
		valid, invalid = len(feed.Articles), bad
	default:
		records, bad, err := datafile.LoadIncidents(path)
		if err != nil {
			return validateResult{}, err
		}
		valid, invalid = len(records), bad
	}

	for _, verr := range invalid {
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", path, verr)
	}
	return validateResult{
		Scanned: valid + len(invalid),
		Valid:   valid,
		Invalid: len(invalid),
	}, nil
}

func collectJSONFiles(root string, recursive bool) ([]string, error) {
	cleanRoot := strings.TrimSpace(root)
	if cleanRoot == "" {
		return nil, fmt.Errorf("directory path is empty")
	}

	info, err := os.Stat(cleanRoot)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", cleanRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cleanRoot)
	}

	var files []string
	if !recursive {
		entries, err := os.ReadDir(cleanRoot)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", cleanRoot, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if strings.EqualFold(filepath.Ext(name), ".json") {
				files = append(files, filepath.Join(cleanRoot, name))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err = filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != cleanRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", cleanRoot, err)
	}

	sort.Strings(files)
	return files, nil
}
