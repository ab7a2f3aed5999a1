// Package datafile reads and writes the whole-document JSON files the
// engine keeps under its data directory.
package datafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UpstreamMissingError reports that a required input document is absent.
type UpstreamMissingError struct {
	Path string
}

func (e *UpstreamMissingError) Error() string {
	return fmt.Sprintf("required input %s not found", e.Path)
}

// IsUpstreamMissing reports whether err wraps an UpstreamMissingError.
func IsUpstreamMissing(err error) bool {
	var target *UpstreamMissingError
	return errors.As(err, &target)
}

// ReadJSON decodes the document at path into dst. A missing file yields an
// UpstreamMissingError.
func ReadJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &UpstreamMissingError{Path: path}
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return decode(path, raw, dst)
}

// ReadJSONIfExists decodes the document at path into dst and reports false,
// leaving dst untouched, when the file does not exist.
func ReadJSONIfExists(path string, dst any) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := decode(path, raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// WriteJSON encodes v with two-space indentation and replaces path with
// the result through a temporary file in the same directory.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func decode(path string, raw []byte, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
