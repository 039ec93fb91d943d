// Package report aggregates normalized change records into a DiffResult and
// renders it for the action's consumers.
package report

import (
	"sort"

	"github.com/luipir/geodiff-action/internal/changeset"
	"github.com/luipir/geodiff-action/internal/types"
)

// Totals are the summed change counts across all tables.
type Totals struct {
	TotalChanges int `json:"total_changes"`
	Inserts      int `json:"inserts"`
	Updates      int `json:"updates"`
	Deletes      int `json:"deletes"`
}

// TableCounts is one table's contribution to the totals.
type TableCounts struct {
	Inserts int `json:"inserts"`
	Updates int `json:"updates"`
	Deletes int `json:"deletes"`
	Total   int `json:"total"`
}

// DiffResult is the full outcome of one run. Changes preserve the diff
// primitive's emission order; the result is immutable once aggregated.
type DiffResult struct {
	Base       types.FileReference      `json:"base_file"`
	Compare    types.FileReference      `json:"compare_file"`
	HasChanges bool                     `json:"has_changes"`
	Summary    Totals                   `json:"summary"`
	Tables     map[string]TableCounts   `json:"tables"`
	Changes    []changeset.ChangeRecord `json:"changes"`
	// Note carries an explanation for degraded runs, e.g. when no prior
	// revision exists to compare against.
	Note string `json:"note,omitempty"`
}

// Aggregate computes totals and the per-table breakdown from the normalized
// records in a single pass. It is a pure function of its input.
func Aggregate(base, compare types.FileReference, records []changeset.ChangeRecord) *DiffResult {
	result := &DiffResult{
		Base:    base,
		Compare: compare,
		Tables:  make(map[string]TableCounts),
		Changes: records,
	}

	for _, record := range records {
		counts := result.Tables[record.Table]
		switch record.Op {
		case changeset.OpInsert:
			counts.Inserts++
			result.Summary.Inserts++
		case changeset.OpUpdate:
			counts.Updates++
			result.Summary.Updates++
		case changeset.OpDelete:
			counts.Deletes++
			result.Summary.Deletes++
		}
		counts.Total++
		result.Tables[record.Table] = counts
		result.Summary.TotalChanges++
	}

	result.HasChanges = result.Summary.TotalChanges > 0
	return result
}

// SortedTables returns the affected table names in alphabetical order, the
// order used by every textual rendering.
func (r *DiffResult) SortedTables() []string {
	names := make([]string, 0, len(r.Tables))
	for name := range r.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
