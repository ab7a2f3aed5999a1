package db

import (
	"context"
	"fmt"
)

// decisionStatsView mirrors the counts the stats command derives from the
// dedup log so dashboards can read them straight from the database.
const decisionStatsView = `
CREATE OR REPLACE VIEW dedup_decision_stats AS
SELECT
	COUNT(*) FILTER (WHERE decision = 'auto_duplicate')::BIGINT AS auto_duplicates,
	COUNT(*) FILTER (WHERE decision = 'accepted_duplicate')::BIGINT AS accepted_duplicates,
	COUNT(*) FILTER (WHERE decision = 'rejected_not_duplicate')::BIGINT AS rejected_not_duplicates,
	COALESCE(
		(COUNT(*) FILTER (WHERE decision = 'rejected_not_duplicate'))::DOUBLE PRECISION
			/ NULLIF(COUNT(*) FILTER (WHERE decision IN ('accepted_duplicate', 'rejected_not_duplicate')), 0),
		0
	) AS false_positive_rate
FROM dedup_decisions
`

// migrate brings the schema up to date: gorm creates the tables and
// indexes from the models, then the reporting view is replaced.
func (p *Pool) migrate(ctx context.Context) error {
	if p == nil || p.gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	db := p.gdb.WithContext(ctx)
	if err := db.AutoMigrate(autoMigrateModels()...); err != nil {
		return fmt.Errorf("gorm auto-migrate models: %w", err)
	}
	if err := db.Exec(decisionStatsView).Error; err != nil {
		return fmt.Errorf("create dedup_decision_stats view: %w", err)
	}
	return nil
}

// DecisionStats reads the dedup_decision_stats view.
type DecisionStats struct {
	AutoDuplicates    int64   `json:"auto_duplicates"`
	Accepted          int64   `json:"accepted_duplicates"`
	Rejected          int64   `json:"rejected_not_duplicates"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
}

func (p *Pool) DecisionStats(ctx context.Context) (DecisionStats, error) {
	const q = `
SELECT auto_duplicates, accepted_duplicates, rejected_not_duplicates, false_positive_rate
FROM dedup_decision_stats
`
	var stats DecisionStats
	if err := p.QueryRow(ctx, q).Scan(&stats.AutoDuplicates, &stats.Accepted, &stats.Rejected, &stats.FalsePositiveRate); err != nil {
		return DecisionStats{}, fmt.Errorf("read dedup_decision_stats: %w", err)
	}
	return stats, nil
}
