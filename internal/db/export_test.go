package db

import (
	"context"
	"testing"

	"gorm.io/gorm/logger"

	"horse.fit/threatwatch/internal/config"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/match"
	"horse.fit/threatwatch/internal/review"
)

func TestIncidentFromRecord(t *testing.T) {
	t.Parallel()

	row := IncidentFromRecord(incident.Record{
		ID:                42,
		School:            "Tucker High School",
		State:             "Georgia",
		ThreatType:        "Bomb",
		AdditionalSources: "https://a.example",
	})
	if row.ID != 42 || row.School != "Tucker High School" || row.State != "Georgia" || row.AdditionalSources != "https://a.example" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.TableName() != "incidents" {
		t.Fatalf("unexpected table name %q", row.TableName())
	}
}

func TestDecisionFromEntry(t *testing.T) {
	t.Parallel()

	entry := review.Entry{
		MatchID:   3,
		Timestamp: "2026-03-09T14:00:00Z",
		Candidate: review.Candidate{School: "Lincoln High", State: "Ohio", Date: "9-Mar", ThreatType: "Bomb"},
		Match: review.MatchSummary{
			ExistingID: 11,
			Scores: match.Result{
				Components: match.Components{SchoolName: 0.9, State: 1, Date: 0.9, ThreatType: 1},
				Composite:  0.94,
			},
		},
		Confidence: 0.94,
		Decision:   review.DecisionAccepted,
		ReviewedAt: "2026-03-10T08:30:00Z",
	}

	row, err := DecisionFromEntry(entry)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if row.MatchID != 3 || row.ExistingIncidentID != 11 || row.Decision != "accepted_duplicate" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.DecidedAt.Hour() != 14 || row.ReviewedAt == nil || row.ReviewedAt.Hour() != 8 {
		t.Fatalf("unexpected timestamps: %+v", row)
	}
	if row.SchoolNameScore != 0.9 || row.ThreatTypeScore != 1 {
		t.Fatalf("unexpected component scores: %+v", row)
	}

	auto := entry
	auto.ReviewedAt = ""
	row, err = DecisionFromEntry(auto)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if row.ReviewedAt != nil {
		t.Fatalf("expected nil reviewed_at for an unreviewed entry")
	}

	broken := entry
	broken.Timestamp = "yesterday"
	if _, err := DecisionFromEntry(broken); err == nil {
		t.Fatalf("expected an error for an unparseable timestamp")
	}
}

func TestNewPoolRequiresDatabaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewPool(context.Background(), &config.Config{DBMaxConns: 1}); err == nil {
		t.Fatalf("expected an error without DATABASE_URL")
	}
	if _, err := NewPool(context.Background(), nil); err == nil {
		t.Fatalf("expected an error for a nil config")
	}
}

func TestResolveGormLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level, env string
		want       logger.LogLevel
	}{
		{"debug", "production", logger.Info},
		{"info", "production", logger.Warn},
		{"error", "local", logger.Error},
		{"silent", "local", logger.Silent},
		{"bogus", "local", logger.Warn},
		{"bogus", "production", logger.Error},
	}
	for _, tc := range cases {
		if got := resolveGormLogLevel(tc.level, tc.env); got != tc.want {
			t.Fatalf("resolveGormLogLevel(%q, %q) = %v, want %v", tc.level, tc.env, got, tc.want)
		}
	}
}

func TestUninitialisedPool(t *testing.T) {
	t.Parallel()

	var pool *Pool
	if err := pool.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping on a nil pool to fail")
	}
	if _, err := pool.BeginTx(context.Background()); err == nil {
		t.Fatalf("expected BeginTx on a nil pool to fail")
	}
	var n int
	if err := pool.QueryRow(context.Background(), "SELECT 1").Scan(&n); err != ErrNoRows {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("close on a nil pool: %v", err)
	}
	if _, err := pool.DecisionStats(context.Background()); err == nil {
		t.Fatalf("expected DecisionStats on a nil pool to fail")
	}
}
