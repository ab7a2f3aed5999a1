// Package sources describes where incident data is fetched from.
package sources

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"horse.fit/threatwatch/internal/language"
)

//go:embed default_sources.yaml
var defaultSourcesYAML []byte

// Config lists the feeds and spreadsheets the fetch commands read.
type Config struct {
	UserAgent      string        `yaml:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	GoogleNews     GoogleNews    `yaml:"google_news"`
	CustomRSS      CustomRSS     `yaml:"custom_rss"`
	Sheets         []Sheet       `yaml:"sheets"`
}

// GoogleNews configures Google News RSS search queries.
type GoogleNews struct {
	BaseURL         string        `yaml:"base_url"`
	Locale          string        `yaml:"locale"`
	RequestInterval time.Duration `yaml:"request_interval"`
	Queries         []string      `yaml:"queries"`
}

// CustomRSS configures the optional feed named by RSS_URL.
type CustomRSS struct {
	Name            string        `yaml:"name"`
	RequestInterval time.Duration `yaml:"request_interval"`
}

// Sheet is a published spreadsheet CSV export for one year.
type Sheet struct {
	Year int    `yaml:"year"`
	URL  string `yaml:"url"`
}

// Load reads the sources file at path, or the embedded defaults when path
// is empty.
func Load(path string) (*Config, error) {
	raw := defaultSourcesYAML
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read sources file: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sources validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user_agent is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0")
	}
	if len(c.GoogleNews.Queries) > 0 {
		if _, err := url.ParseRequestURI(c.GoogleNews.BaseURL); err != nil {
			return fmt.Errorf("google_news.base_url is not a valid URL: %w", err)
		}
		if _, ok := language.ParseLocale(c.GoogleNews.Locale); !ok {
			return fmt.Errorf("google_news.locale %q is not a valid locale", c.GoogleNews.Locale)
		}
	}
	if c.GoogleNews.RequestInterval < 0 || c.CustomRSS.RequestInterval < 0 {
		return fmt.Errorf("request_interval must be >= 0")
	}
	seen := make(map[int]struct{}, len(c.Sheets))
	for i, sheet := range c.Sheets {
		if sheet.Year < 1 {
			return fmt.Errorf("sheets[%d].year must be set", i)
		}
		if _, dup := seen[sheet.Year]; dup {
			return fmt.Errorf("sheets[%d].year %d is listed twice", i, sheet.Year)
		}
		seen[sheet.Year] = struct{}{}
		if _, err := url.ParseRequestURI(sheet.URL); err != nil {
			return fmt.Errorf("sheets[%d].url is not a valid URL: %w", i, err)
		}
	}
	return nil
}

// Locale returns the parsed Google News locale, defaulting to en-US.
func (c *Config) Locale() language.Locale {
	if locale, ok := language.ParseLocale(c.GoogleNews.Locale); ok {
		return locale
	}
	return language.Locale{Code: "en", Region: "US"}
}

// SearchURL builds the Google News RSS URL for query, biased toward year
// when year is non-zero.
func (c *Config) SearchURL(query string, year int) string {
	if year > 0 {
		query = query + " " + strconv.Itoa(year)
	}
	locale := c.Locale()
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", locale.Tag())
	if locale.Region != "" {
		params.Set("gl", locale.Region)
	}
	params.Set("ceid", locale.EditionID())
	return c.GoogleNews.BaseURL + "?" + params.Encode()
}

// Sheet returns the spreadsheet configured for year.
func (c *Config) Sheet(year int) (Sheet, bool) {
	for _, sheet := range c.Sheets {
		if sheet.Year == year {
			return sheet, true
		}
	}
	return Sheet{}, false
}

// CustomRSSName returns the stats key for the custom feed.
func (c *Config) CustomRSSName() string {
	if name := strings.TrimSpace(c.CustomRSS.Name); name != "" {
		return name
	}
	return "custom_rss"
}
