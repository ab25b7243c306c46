package repo

// RowScanner is the scanning surface shared by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Mapper binds one entity type to its table. The generic repositories
// build all SQL from this metadata, so the locking and version protocols
// stay entity-agnostic.
//
// Column conventions the repositories rely on:
//   - the surrogate key column is "id"
//   - audit columns are "created", "created_by", "modified", "modified_by"
//   - automatic-optimistic tables carry "row_version", advanced by the
//     store inside the conditional UPDATE/DELETE; it must not appear in
//     UpdateColumns
//   - manual version counters are ordinary data columns and do appear in
//     InsertColumns/UpdateColumns
type Mapper[T any] interface {
	// Table is the table name.
	Table() string

	// SelectColumns lists every column read back for the entity, in the
	// order ScanRow consumes them.
	SelectColumns() []string

	// ScanRow populates a fresh entity from one row.
	ScanRow(s RowScanner) (T, error)

	// InsertColumns lists the columns written on insert (no id).
	InsertColumns() []string

	// InsertValues returns the values matching InsertColumns.
	InsertValues(e T) []any

	// UpdateColumns lists the columns overwritten on update (no id, no
	// audit columns; those are appended by the repositories).
	UpdateColumns() []string

	// UpdateValues returns the values matching UpdateColumns.
	UpdateValues(e T) []any
}
