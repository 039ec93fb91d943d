// Package geodiff invokes the byte-level diff primitive for SQLite-family
// geospatial database files and exposes its raw per-table change output.
package geodiff

import "context"

// Raw operation tags emitted by the diff primitive.
const (
	RawOpInsert = "insert"
	RawOpUpdate = "update"
	RawOpDelete = "delete"
)

// RawEntry is one change as emitted by the diff primitive. Operation and Key
// are carried verbatim; interpretation happens in the changeset layer.
type RawEntry struct {
	Table     string
	Operation string
	Key       string
}

// RawChangeset is the ordered output of one diff invocation. Entry order is
// the primitive's own traversal order and must be preserved downstream.
type RawChangeset struct {
	Entries []RawEntry
}

// Differ is the diff primitive capability. Implementations compare two
// same-format database files and report per-table row changes describing
// basePath relative to comparePath (an insert is a row present only in
// basePath).
type Differ interface {
	Diff(ctx context.Context, basePath, comparePath string) (*RawChangeset, error)
}
