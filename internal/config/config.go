package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DataDir          string  `envconfig:"THREATWATCH_DATA_DIR" default:"data"`
	IncidentsFile    string  `envconfig:"THREATWATCH_INCIDENTS_FILE" default:"school_threats_2026.json"`
	StubsFile        string  `envconfig:"THREATWATCH_STUBS_FILE" default:"stub_incidents_from_news.json"`
	NewsFeedFile     string  `envconfig:"THREATWATCH_NEWS_FEED_FILE" default:"news_feed.json"`
	ReviewQueueFile  string  `envconfig:"THREATWATCH_REVIEW_QUEUE_FILE" default:"review_queue.json"`
	DedupLogFile     string  `envconfig:"THREATWATCH_DEDUP_LOG_FILE" default:"dedup_log.json"`
	FetchStatsFile   string  `envconfig:"THREATWATCH_FETCH_STATS_FILE" default:"fetch_stats.json"`
	SourcesFile      string  `envconfig:"THREATWATCH_SOURCES_FILE" default:""`
	HighConfidence   float64 `envconfig:"THREATWATCH_HIGH_CONFIDENCE" default:"0.85"`
	HeadlineLanguage string  `envconfig:"THREATWATCH_HEADLINE_LANGUAGE" default:"en"`
	CustomRSSURL     string  `envconfig:"RSS_URL" default:""`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"THREATWATCH_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"THREATWATCH_DB_MAX_CONNS" default:"8"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("THREATWATCH_DATA_DIR is required")
	}
	files := map[string]string{
		"THREATWATCH_INCIDENTS_FILE":    c.IncidentsFile,
		"THREATWATCH_STUBS_FILE":        c.StubsFile,
		"THREATWATCH_NEWS_FEED_FILE":    c.NewsFeedFile,
		"THREATWATCH_REVIEW_QUEUE_FILE": c.ReviewQueueFile,
		"THREATWATCH_DEDUP_LOG_FILE":    c.DedupLogFile,
		"THREATWATCH_FETCH_STATS_FILE":  c.FetchStatsFile,
	}
	for name, value := range files {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.HighConfidence < 0.5 || c.HighConfidence > 1 {
		return fmt.Errorf("THREATWATCH_HIGH_CONFIDENCE must be between 0.5 and 1")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("THREATWATCH_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("THREATWATCH_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("THREATWATCH_DB_MIN_CONNS (%d) cannot exceed THREATWATCH_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// RequireDatabase reports an error when no database is configured. Only the
// database commands need one.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Path resolves a document file name against the data directory. Absolute
// names are returned unchanged.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
