package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"horse.fit/threatwatch/internal/datafile"
	"horse.fit/threatwatch/internal/incident"
	"horse.fit/threatwatch/internal/review"
)

const insertBatchSize = 200

// ExportResult counts the rows written by ReplaceAll.
type ExportResult struct {
	Incidents int64 `json:"incidents"`
	Decisions int64 `json:"dedup_decisions"`
}

// TableCounts is the current row count per exported table.
type TableCounts struct {
	Incidents int64 `json:"incidents"`
	Decisions int64 `json:"dedup_decisions"`
}

// IncidentFromRecord maps a canonical record onto its table row.
func IncidentFromRecord(r incident.Record) Incident {
	return Incident{
		ID:                int64(r.ID),
		ArticleDate:       r.ArticleDate,
		School:            r.School,
		SchoolType:        r.SchoolType,
		State:             r.State,
		Region:            r.Region,
		Source:            r.Source,
		OffenseDate:       r.OffenseDate,
		Time:              r.Time,
		LawEnforcement:    r.LawEnforcement,
		ThreatType:        r.ThreatType,
		Conveyance:        r.Conveyance,
		WhoThreatened:     r.WhoThreatened,
		IncidentDetails:   r.IncidentDetails,
		LockdownType:      r.LockdownType,
		Evacuation:        r.Evacuation,
		ClassesCancelled:  r.ClassesCancelled,
		Precautions:       r.Precautions,
		Weapons:           r.Weapons,
		Gender:            r.Gender,
		Charged:           r.Charged,
		Custody:           r.Custody,
		Charges:           r.Charges,
		Bond:              r.Bond,
		AdditionalSources: r.AdditionalSources,
	}
}

// DecisionFromEntry maps a dedup log entry onto its table row.
func DecisionFromEntry(e review.Entry) (DedupDecision, error) {
	decidedAt, err := time.Parse(datafile.TimestampLayout, strings.TrimSpace(e.Timestamp))
	if err != nil {
		return DedupDecision{}, fmt.Errorf("match %d: parse timestamp: %w", e.MatchID, err)
	}

	row := DedupDecision{
		MatchID:             int64(e.MatchID),
		DecidedAt:           decidedAt.UTC(),
		Decision:            string(e.Decision),
		Confidence:          e.Confidence,
		ExistingIncidentID:  int64(e.Match.ExistingID),
		CandidateSchool:     e.Candidate.School,
		CandidateState:      e.Candidate.State,
		CandidateDate:       e.Candidate.Date,
		CandidateThreatType: e.Candidate.ThreatType,
		CandidateDetails:    e.Candidate.Details,
		SchoolNameScore:     e.Match.Scores.Components.SchoolName,
		StateScore:          e.Match.Scores.Components.State,
		DateScore:           e.Match.Scores.Components.Date,
		ThreatTypeScore:     e.Match.Scores.Components.ThreatType,
	}

	if reviewed := strings.TrimSpace(e.ReviewedAt); reviewed != "" {
		ts, err := time.Parse(datafile.TimestampLayout, reviewed)
		if err != nil {
			return DedupDecision{}, fmt.Errorf("match %d: parse reviewed_at: %w", e.MatchID, err)
		}
		ts = ts.UTC()
		row.ReviewedAt = &ts
	}
	return row, nil
}

// ReplaceAll swaps the contents of both tables for the given records and
// log entries in one transaction.
func (p *Pool) ReplaceAll(ctx context.Context, records []incident.Record, entries []review.Entry) (ExportResult, error) {
	incidents := make([]Incident, 0, len(records))
	for _, r := range records {
		incidents = append(incidents, IncidentFromRecord(r))
	}
	decisions := make([]DedupDecision, 0, len(entries))
	for _, e := range entries {
		row, err := DecisionFromEntry(e)
		if err != nil {
			return ExportResult{}, err
		}
		decisions = append(decisions, row)
	}

	tx, err := p.BeginTx(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM dedup_decisions`); err != nil {
		return ExportResult{}, fmt.Errorf("clear dedup decisions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM incidents`); err != nil {
		return ExportResult{}, fmt.Errorf("clear incidents: %w", err)
	}

	var result ExportResult
	if len(incidents) > 0 {
		tag, err := tx.CreateInBatches(ctx, &incidents, insertBatchSize)
		if err != nil {
			return ExportResult{}, fmt.Errorf("insert incidents: %w", err)
		}
		result.Incidents = tag.RowsAffected()
	}
	if len(decisions) > 0 {
		tag, err := tx.CreateInBatches(ctx, &decisions, insertBatchSize)
		if err != nil {
			return ExportResult{}, fmt.Errorf("insert dedup decisions: %w", err)
		}
		result.Decisions = tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return ExportResult{}, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}

// CountRows returns the row count of each exported table.
func (p *Pool) CountRows(ctx context.Context) (TableCounts, error) {
	const q = `
SELECT
	(SELECT COUNT(*) FROM incidents)::BIGINT,
	(SELECT COUNT(*) FROM dedup_decisions)::BIGINT
`
	var counts TableCounts
	if err := p.QueryRow(ctx, q).Scan(&counts.Incidents, &counts.Decisions); err != nil {
		return TableCounts{}, fmt.Errorf("count rows: %w", err)
	}
	return counts, nil
}
