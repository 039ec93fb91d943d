package geodiff

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteDiffer is the production Differ. It compares two SQLite/GeoPackage
// files table by table at the row level, keying rows by their primary key
// (rowid when no single-column primary key exists).
type SQLiteDiffer struct{}

func NewSQLiteDiffer() *SQLiteDiffer {
	return &SQLiteDiffer{}
}

// Internal bookkeeping tables are not feature data and are excluded from the
// row diff: SQLite's own tables, GeoPackage metadata and R-tree spatial
// index shadow tables.
var internalTablePrefixes = []string{"sqlite_", "gpkg_", "rtree_"}

func isInternalTable(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range internalTablePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Diff compares basePath against comparePath and emits one entry per changed
// row. Tables are visited in alphabetical order; within a table, inserts and
// updates follow base key order, then deletes follow compare key order.
func (d *SQLiteDiffer) Diff(ctx context.Context, basePath, comparePath string) (*RawChangeset, error) {
	db, err := sql.Open("sqlite", basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", basePath, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, "ATTACH DATABASE ? AS cmp", comparePath); err != nil {
		return nil, fmt.Errorf("failed to attach database %s: %w", comparePath, err)
	}

	baseTables, err := listTables(ctx, db, "main")
	if err != nil {
		return nil, fmt.Errorf("failed to read tables from %s: %w", basePath, err)
	}
	cmpTables, err := listTables(ctx, db, "cmp")
	if err != nil {
		return nil, fmt.Errorf("failed to read tables from %s: %w", comparePath, err)
	}

	names := make(map[string]bool, len(baseTables)+len(cmpTables))
	for _, t := range baseTables {
		names[t] = true
	}
	for _, t := range cmpTables {
		names[t] = true
	}
	ordered := make([]string, 0, len(names))
	for t := range names {
		ordered = append(ordered, t)
	}
	sort.Strings(ordered)

	inBase := toSet(baseTables)
	inCmp := toSet(cmpTables)

	changeset := &RawChangeset{}
	for _, table := range ordered {
		switch {
		case inBase[table] && inCmp[table]:
			if err := d.diffTable(ctx, db, table, changeset); err != nil {
				return nil, err
			}
		case inBase[table]:
			// Whole table only exists in base: every row is an insert.
			if err := emitAllRows(ctx, db, "main", table, RawOpInsert, changeset); err != nil {
				return nil, err
			}
		default:
			if err := emitAllRows(ctx, db, "cmp", table, RawOpDelete, changeset); err != nil {
				return nil, err
			}
		}
	}
	return changeset, nil
}

func (d *SQLiteDiffer) diffTable(ctx context.Context, db *sql.DB, table string, changeset *RawChangeset) error {
	baseCols, err := tableColumns(ctx, db, "main", table)
	if err != nil {
		return err
	}
	cmpCols, err := tableColumns(ctx, db, "cmp", table)
	if err != nil {
		return err
	}
	if !equalColumns(baseCols, cmpCols) {
		return fmt.Errorf("table %q: schema mismatch between compared files", table)
	}

	baseRows, baseOrder, err := loadRows(ctx, db, "main", table, baseCols)
	if err != nil {
		return err
	}
	cmpRows, cmpOrder, err := loadRows(ctx, db, "cmp", table, cmpCols)
	if err != nil {
		return err
	}

	for _, key := range baseOrder {
		cmpDigest, exists := cmpRows[key]
		switch {
		case !exists:
			changeset.Entries = append(changeset.Entries, RawEntry{Table: table, Operation: RawOpInsert, Key: key})
		case cmpDigest != baseRows[key]:
			changeset.Entries = append(changeset.Entries, RawEntry{Table: table, Operation: RawOpUpdate, Key: key})
		}
	}
	for _, key := range cmpOrder {
		if _, exists := baseRows[key]; !exists {
			changeset.Entries = append(changeset.Entries, RawEntry{Table: table, Operation: RawOpDelete, Key: key})
		}
	}
	return nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

type column struct {
	Name string
	Type string
	PK   int
}

func listTables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	query := fmt.Sprintf("SELECT name FROM %s.sqlite_master WHERE type = 'table' ORDER BY name", schema)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if !isInternalTable(name) {
			tables = append(tables, name)
		}
	}
	return tables, rows.Err()
}

func tableColumns(ctx context.Context, db *sql.DB, schema, table string) ([]column, error) {
	query := fmt.Sprintf("PRAGMA %s.table_info(%s)", schema, quoteIdent(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of table %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []column
	for rows.Next() {
		var (
			cid        int
			col        column
			notNull    int
			defaultVal sql.NullString
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultVal, &col.PK); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q has no columns", table)
	}
	return cols, nil
}

func equalColumns(a, b []column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}

// keyExpr picks the row identity: the single-column primary key when the
// table declares one, rowid otherwise.
func keyExpr(cols []column) string {
	var pk []string
	for _, c := range cols {
		if c.PK > 0 {
			pk = append(pk, c.Name)
		}
	}
	if len(pk) == 1 {
		return quoteIdent(pk[0])
	}
	return "rowid"
}

// loadRows reads every row of a table, returning a key -> content digest map
// plus the keys in query order.
func loadRows(ctx context.Context, db *sql.DB, schema, table string, cols []column) (map[string]string, []string, error) {
	selects := make([]string, 0, len(cols)+1)
	selects = append(selects, keyExpr(cols))
	for _, c := range cols {
		selects = append(selects, quoteIdent(c.Name))
	}
	query := fmt.Sprintf("SELECT %s FROM %s.%s ORDER BY 1",
		strings.Join(selects, ", "), schema, quoteIdent(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows of table %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	digests := make(map[string]string)
	var order []string
	scan := make([]interface{}, len(cols)+1)
	values := make([]interface{}, len(cols)+1)
	for i := range scan {
		scan[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, nil, err
		}
		key := formatValue(values[0])
		var digest strings.Builder
		for _, v := range values[1:] {
			digest.WriteString(formatValue(v))
			digest.WriteByte(0x1f)
		}
		if _, dup := digests[key]; !dup {
			order = append(order, key)
		}
		digests[key] = digest.String()
	}
	return digests, order, rows.Err()
}

func emitAllRows(ctx context.Context, db *sql.DB, schema, table, op string, changeset *RawChangeset) error {
	cols, err := tableColumns(ctx, db, schema, table)
	if err != nil {
		return err
	}
	_, order, err := loadRows(ctx, db, schema, table, cols)
	if err != nil {
		return err
	}
	for _, key := range order {
		changeset.Entries = append(changeset.Entries, RawEntry{Table: table, Operation: op, Key: key})
	}
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case []byte:
		return fmt.Sprintf("blob:%x", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
