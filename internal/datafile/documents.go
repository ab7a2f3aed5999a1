package datafile

import (
	"encoding/json"
	"fmt"
	"time"

	"horse.fit/threatwatch/internal/incident"
	recordschema "horse.fit/threatwatch/schema"
)

// TimestampLayout is the UTC layout used for every timestamp the engine
// writes.
const TimestampLayout = "2006-01-02T15:04:05Z"

// StubBatch is the document produced by stub conversion and consumed by
// the check command.
type StubBatch struct {
	GeneratedAt string            `json:"generated_at"`
	Count       int               `json:"count"`
	Stubs       []incident.Record `json:"stubs"`
}

// NewsFeed is the clustered article document.
type NewsFeed struct {
	FetchedAt             string             `json:"fetched_at"`
	Count                 int                `json:"count"`
	ArticlesAfterURLDedup int                `json:"articles_after_url_dedup"`
	Articles              []incident.Article `json:"articles"`
}

func NewStubBatch(now time.Time, stubs []incident.Record) StubBatch {
	if stubs == nil {
		stubs = []incident.Record{}
	}
	return StubBatch{
		GeneratedAt: now.UTC().Format(TimestampLayout),
		Count:       len(stubs),
		Stubs:       stubs,
	}
}

func NewNewsFeed(now time.Time, afterURLDedup int, articles []incident.Article) NewsFeed {
	if articles == nil {
		articles = []incident.Article{}
	}
	return NewsFeed{
		FetchedAt:             now.UTC().Format(TimestampLayout),
		Count:                 len(articles),
		ArticlesAfterURLDedup: afterURLDedup,
		Articles:              articles,
	}
}

type rawStubBatch struct {
	GeneratedAt string            `json:"generated_at"`
	Stubs       []json.RawMessage `json:"stubs"`
}

type rawNewsFeed struct {
	FetchedAt             string            `json:"fetched_at"`
	ArticlesAfterURLDedup int               `json:"articles_after_url_dedup"`
	Articles              []json.RawMessage `json:"articles"`
}

// LoadIncidents reads the canonical incidents document. Records that fail
// validation are skipped and reported in the second return value.
func LoadIncidents(path string) ([]incident.Record, []*incident.ValidationError, error) {
	var raw []json.RawMessage
	if err := ReadJSON(path, &raw); err != nil {
		return nil, nil, err
	}
	records, invalid := validateIncidents(raw)
	return records, invalid, nil
}

// LoadStubBatch reads a stub batch document.
func LoadStubBatch(path string) (StubBatch, []*incident.ValidationError, error) {
	var raw rawStubBatch
	if err := ReadJSON(path, &raw); err != nil {
		return StubBatch{}, nil, err
	}
	stubs, invalid := validateIncidents(raw.Stubs)
	return StubBatch{GeneratedAt: raw.GeneratedAt, Count: len(stubs), Stubs: stubs}, invalid, nil
}

// LoadNewsFeed reads a news feed document.
func LoadNewsFeed(path string) (NewsFeed, []*incident.ValidationError, error) {
	var raw rawNewsFeed
	if err := ReadJSON(path, &raw); err != nil {
		return NewsFeed{}, nil, err
	}

	articles := make([]incident.Article, 0, len(raw.Articles))
	var invalid []*incident.ValidationError
	for i, item := range raw.Articles {
		article, err := recordschema.ValidateArticle(item)
		if err != nil {
			invalid = append(invalid, &incident.ValidationError{Index: i, Err: err})
			continue
		}
		articles = append(articles, article)
	}
	return NewsFeed{
		FetchedAt:             raw.FetchedAt,
		Count:                 len(articles),
		ArticlesAfterURLDedup: raw.ArticlesAfterURLDedup,
		Articles:              articles,
	}, invalid, nil
}

func validateIncidents(raw []json.RawMessage) ([]incident.Record, []*incident.ValidationError) {
	records := make([]incident.Record, 0, len(raw))
	var invalid []*incident.ValidationError
	for i, item := range raw {
		record, err := recordschema.ValidateIncident(item)
		if err != nil {
			invalid = append(invalid, &incident.ValidationError{Index: i, Err: err})
			continue
		}
		records = append(records, record)
	}
	return records, invalid
}

// MaxIncidentID returns the largest id in records, or zero.
func MaxIncidentID(records []incident.Record) int {
	maxID := 0
	for _, record := range records {
		if record.ID > maxID {
			maxID = record.ID
		}
	}
	return maxID
}

// AppendIncidents appends records to the canonical incidents document at
// path, renumbering them after the highest id already present. Existing
// entries are kept as they are, including ones that fail validation. It
// returns the records as appended.
func AppendIncidents(path string, records []incident.Record) ([]incident.Record, error) {
	var raw []json.RawMessage
	if _, err := ReadJSONIfExists(path, &raw); err != nil {
		return nil, err
	}

	nextID := 1
	for _, item := range raw {
		var head struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(item, &head); err == nil && head.ID >= nextID {
			nextID = head.ID + 1
		}
	}

	appended := make([]incident.Record, 0, len(records))
	for _, record := range records {
		record.ID = nextID
		nextID++
		encoded, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode incident %d: %w", record.ID, err)
		}
		raw = append(raw, encoded)
		appended = append(appended, record)
	}

	if raw == nil {
		raw = []json.RawMessage{}
	}
	if err := WriteJSON(path, raw); err != nil {
		return nil, err
	}
	return appended, nil
}
