package cli

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// OverrideVars name environment variables that point at an env file and
// win over the --env flag, in order.
var OverrideVars = []string{"THREATWATCH_ENV_FILE", "HORSE_ENV_FILE"}

// EnvLoader loads a .env file chosen by the --env flag.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers --env on fs and returns the loader bound to it.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	return &EnvLoader{
		value:       fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

type envCandidate struct {
	path     string
	label    string
	override bool
}

// candidates lists the files Load tries, most specific first. Override
// variables come first, then the flag value, its basename and the default.
func (l *EnvLoader) candidates() []envCandidate {
	var out []envCandidate
	seen := make(map[string]struct{})
	add := func(path, label string, override bool) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		out = append(out, envCandidate{path: path, label: label, override: override})
	}

	for _, name := range OverrideVars {
		add(os.Getenv(name), name, true)
	}

	requested := l.defaultPath
	if l.value != nil && strings.TrimSpace(*l.value) != "" {
		requested = strings.TrimSpace(*l.value)
	}
	add(requested, "--env", false)
	add(filepath.Base(requested), "basename fallback", false)
	add(l.defaultPath, "default", false)
	return out
}

// Load overlays the first readable candidate onto the process environment
// and returns its path. Values already exported are overwritten.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	log.SetOutput(os.Stderr)

	requested := l.defaultPath
	for _, candidate := range l.candidates() {
		if candidate.label == "--env" {
			requested = candidate.path
		}
		if err := godotenv.Overload(candidate.path); err != nil {
			if candidate.override {
				log.Printf("Warning: failed to load %s=%s", candidate.label, candidate.path)
			}
			continue
		}
		log.Printf("Loaded environment from %s: %s", candidate.label, candidate.path)
		return candidate.path, nil
	}
	return "", fmt.Errorf("failed to load env file from %s", requested)
}
