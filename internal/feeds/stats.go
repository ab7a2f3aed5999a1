package feeds

import (
	"time"

	"horse.fit/threatwatch/internal/datafile"
)

const maxStatsRuns = 100

// SourceStats records how many articles one source produced in a run.
type SourceStats struct {
	ArticlesFetched int    `json:"articles_fetched"`
	Timestamp       string `json:"timestamp"`
}

// StatsRun is one fetch run.
type StatsRun struct {
	Timestamp string                 `json:"timestamp"`
	Sources   map[string]SourceStats `json:"sources"`
}

// StatsLog is the fetch statistics document.
type StatsLog struct {
	Runs []StatsRun `json:"runs"`
}

// RunRecorder collects per-source counts for the current run.
type RunRecorder struct {
	sources map[string]SourceStats
}

func NewRunRecorder() *RunRecorder {
	return &RunRecorder{sources: make(map[string]SourceStats)}
}

func (r *RunRecorder) Record(source string, count int, now time.Time) {
	r.sources[source] = SourceStats{
		ArticlesFetched: count,
		Timestamp:       now.UTC().Format(datafile.TimestampLayout),
	}
}

// AppendStats adds the recorded run to the document at path, keeping the
// most recent runs only. An unreadable document is started over.
func AppendStats(path string, recorder *RunRecorder, now time.Time) error {
	var doc StatsLog
	if _, err := datafile.ReadJSONIfExists(path, &doc); err != nil {
		doc = StatsLog{}
	}

	doc.Runs = append(doc.Runs, StatsRun{
		Timestamp: now.UTC().Format(datafile.TimestampLayout),
		Sources:   recorder.sources,
	})
	if len(doc.Runs) > maxStatsRuns {
		doc.Runs = doc.Runs[len(doc.Runs)-maxStatsRuns:]
	}
	return datafile.WriteJSON(path, doc)
}
