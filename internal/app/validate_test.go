package app

import (
	"os"
	"path/filepath"
	"testing"

	"horse.fit/threatwatch/internal/config"
)

func TestCollectJSONFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "school_threats_2025.json"), `[]`)
	mustWriteFile(t, filepath.Join(root, "notes.txt"), `x`)
	mustWriteFile(t, filepath.Join(root, ".backup.json"), `[]`)
	mustWriteFile(t, filepath.Join(root, "archive", "school_threats_2024.json"), `[]`)
	mustWriteFile(t, filepath.Join(root, ".git", "hidden.json"), `[]`)

	cases := []struct {
		recursive bool
		want      int
	}{
		{recursive: true, want: 2},
		{recursive: false, want: 1},
	}
	for _, tc := range cases {
		files, err := collectJSONFiles(root, tc.recursive)
		if err != nil {
			t.Fatalf("collectJSONFiles(recursive=%t): %v", tc.recursive, err)
		}
		if len(files) != tc.want {
			t.Fatalf("collectJSONFiles(recursive=%t) = %v, want %d files", tc.recursive, files, tc.want)
		}
	}

	if _, err := collectJSONFiles(filepath.Join(root, "notes.txt"), true); err == nil {
		t.Fatalf("expected an error for a file root")
	}
}

func TestValidateDocumentKinds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stubs := filepath.Join(dir, "stubs.json")
	mustWriteFile(t, stubs, `{"generated_at": "2026-03-10T09:00:00Z", "count": 2, "stubs": [{"id": 1}, {"id": "two"}]}`)
	feed := filepath.Join(dir, "feed.json")
	mustWriteFile(t, feed, `{"fetched_at": "2026-03-10T09:00:00Z", "articles": [{"title": "Bomb threat", "url": "https://a.example/1"}, {"title": "no url"}]}`)

	for _, tc := range []struct {
		kind, path string
	}{
		{kindStubs, stubs},
		{kindFeed, feed},
	} {
		result, err := validateDocument(tc.kind, tc.path)
		if err != nil {
			t.Fatalf("validateDocument(%s): %v", tc.kind, err)
		}
		if result.Scanned != 2 || result.Valid != 1 || result.Invalid != 1 {
			t.Fatalf("validateDocument(%s) = %+v", tc.kind, result)
		}
	}

	mustWriteFile(t, filepath.Join(dir, "broken.json"), `{not json`)
	if _, err := validateDocument(kindIncidents, filepath.Join(dir, "broken.json")); err == nil {
		t.Fatalf("expected malformed JSON to fail")
	}
}

func TestDocumentPath(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		DataDir:       "data",
		IncidentsFile: "school_threats_2026.json",
		StubsFile:     "stub_incidents_from_news.json",
		NewsFeedFile:  "news_feed.json",
	}
	if got := documentPath(cfg, kindFeed, ""); got != filepath.Join("data", "news_feed.json") {
		t.Fatalf("unexpected feed path %q", got)
	}
	if got := documentPath(cfg, kindIncidents, ""); got != filepath.Join("data", "school_threats_2026.json") {
		t.Fatalf("unexpected incidents path %q", got)
	}
	if got := documentPath(cfg, kindStubs, " other.json "); got != "other.json" {
		t.Fatalf("expected the override to win, got %q", got)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}
