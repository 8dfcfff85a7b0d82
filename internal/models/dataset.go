package models

// TabularDataset is a grid extracted from an assistant reply. Columns keep the
// key order of the first row as it appeared in the payload.
type TabularDataset struct {
	Columns []string
	Rows    []map[string]any
	Total   int
}

// ColumnInfo describes a single column of a backend table.
type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
	Key      string
	Default  any
}

// TableSchema describes one backend table.
type TableSchema struct {
	Name    string
	Columns []ColumnInfo
}
