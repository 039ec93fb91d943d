// Package changeset normalizes the diff primitive's raw output into the
// uniform change record model consumed by aggregation and reporting.
package changeset

import (
	"fmt"

	"github.com/luipir/geodiff-action/internal/geodiff"
)

// OpKind is the closed set of change operations.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// ChangeRecord is one atomic modification detected in one table. Key is
// opaque and preserved verbatim from the primitive.
type ChangeRecord struct {
	Table string `json:"table"`
	Op    OpKind `json:"op"`
	Key   string `json:"key"`
}

// MalformedChangesetError reports a contract violation by the diff
// primitive: an unrecognized operation tag or a missing table name.
// Coercing such entries to a default would corrupt the summary, so this is
// always fatal.
type MalformedChangesetError struct {
	Index  int
	Reason string
}

func (e *MalformedChangesetError) Error() string {
	return fmt.Sprintf("malformed changeset entry %d: %s", e.Index, e.Reason)
}

// Normalize walks the raw changeset exactly once, preserving the
// primitive's emission order, and maps each entry onto the closed operation
// enum.
func Normalize(raw *geodiff.RawChangeset) ([]ChangeRecord, error) {
	if raw == nil {
		return nil, nil
	}

	records := make([]ChangeRecord, 0, len(raw.Entries))
	for i, entry := range raw.Entries {
		if entry.Table == "" {
			return nil, &MalformedChangesetError{Index: i, Reason: "empty table name"}
		}

		var op OpKind
		switch entry.Operation {
		case geodiff.RawOpInsert:
			op = OpInsert
		case geodiff.RawOpUpdate:
			op = OpUpdate
		case geodiff.RawOpDelete:
			op = OpDelete
		default:
			return nil, &MalformedChangesetError{
				Index:  i,
				Reason: fmt.Sprintf("unrecognized operation %q for table %q", entry.Operation, entry.Table),
			}
		}

		records = append(records, ChangeRecord{Table: entry.Table, Op: op, Key: entry.Key})
	}
	return records, nil
}
