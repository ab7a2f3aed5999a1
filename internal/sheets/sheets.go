// Package sheets parses published spreadsheet CSV exports into incident
// records.
package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"horse.fit/threatwatch/internal/incident"
)

// Column maps a spreadsheet header onto a record field.
type Column struct {
	Header string
	Set    func(*incident.Record, string)
}

// Columns is ordered: partial header matches take the first entry that
// fits.
var Columns = []Column{
	{"Article Date", func(r *incident.Record, v string) { r.ArticleDate = v }},
	{"School(s)", func(r *incident.Record, v string) { r.School = v }},
	{"Type of School", func(r *incident.Record, v string) { r.SchoolType = v }},
	{"State", func(r *incident.Record, v string) { r.State = v }},
	{"Region", func(r *incident.Record, v string) { r.Region = v }},
	{"Source(s)", func(r *incident.Record, v string) { r.Source = v }},
	{"Offense Date", func(r *incident.Record, v string) { r.OffenseDate = v }},
	{"Time", func(r *incident.Record, v string) { r.Time = v }},
	{"Law Enforcement Agency", func(r *incident.Record, v string) { r.LawEnforcement = v }},
	{"Type of Threat", func(r *incident.Record, v string) { r.ThreatType = v }},
	{"How Threat was Conveyed", func(r *incident.Record, v string) { r.Conveyance = v }},
	{"Who was Threatened?", func(r *incident.Record, v string) { r.WhoThreatened = v }},
	{"Incident Details", func(r *incident.Record, v string) { r.IncidentDetails = v }},
	{"Type of Lockdown", func(r *incident.Record, v string) { r.LockdownType = v }},
	{"Evacuation?", func(r *incident.Record, v string) { r.Evacuation = v }},
	{"Cancellations/Dismissals/Postponements", func(r *incident.Record, v string) { r.ClassesCancelled = v }},
	{"Precautions/Resources Available", func(r *incident.Record, v string) { r.Precautions = v }},
	{"Weapons?", func(r *incident.Record, v string) { r.Weapons = v }},
	{"Gender", func(r *incident.Record, v string) { r.Gender = v }},
	{"Person Responsible", func(r *incident.Record, v string) { r.Charged = v }},
	{"Custody Status/Disposition", func(r *incident.Record, v string) { r.Custody = v }},
	{"Charges", func(r *incident.Record, v string) { r.Charges = v }},
	{"Bond", func(r *incident.Record, v string) { r.Bond = v }},
	{"Additional Sources", func(r *incident.Record, v string) { r.AdditionalSources = v }},
}

// resolveColumn finds the column for a header: exact match first, then the
// first column whose name contains, or is contained in, the header.
func resolveColumn(header string) (Column, bool) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return Column{}, false
	}
	for _, col := range Columns {
		if col.Header == trimmed {
			return col, true
		}
	}
	lower := strings.ToLower(trimmed)
	for _, col := range Columns {
		name := strings.ToLower(col.Header)
		if strings.Contains(lower, name) || strings.Contains(name, lower) {
			return col, true
		}
	}
	return Column{}, false
}

// Parse reads a CSV export with a header row. Each data row becomes a
// record whose id is its 1-based row number; rows with no content are
// skipped without renumbering the rest.
func Parse(r io.Reader) ([]incident.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []incident.Record{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	setters := make([]func(*incident.Record, string), len(header))
	for i, h := range header {
		if col, ok := resolveColumn(h); ok {
			setters[i] = col.Set
		}
	}

	records := []incident.Record{}
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if blank(fields) {
			continue
		}

		record := incident.Record{ID: row}
		for i, value := range fields {
			if i < len(setters) && setters[i] != nil {
				setters[i](&record, strings.TrimSpace(value))
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Download fetches a published CSV export, following redirects.
func Download(ctx context.Context, client *http.Client, url, userAgent string) ([]incident.Record, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download sheet: status %d", resp.StatusCode)
	}
	return Parse(resp.Body)
}
