// Package domain defines core types, interfaces, and errors for looksee.
package domain

import (
	"encoding/json"
	"strings"
)

// Source describes a dataset to ingest: a storage location (local path, URL,
// or temp-file path) plus the originally-declared file name. DeclaredName is
// used only to recover the true extension when Location is a sanitized temp
// path with a generic name.
type Source struct {
	Location     string `json:"location"`
	DeclaredName string `json:"declared_name,omitempty"`
}

// TypeFamily is the coarse bucket used to select which aggregate statistics
// apply to a column.
type TypeFamily int

const (
	FamilyOther TypeFamily = iota
	FamilyNumeric
	FamilyTemporal
)

func (f TypeFamily) String() string {
	switch f {
	case FamilyNumeric:
		return "numeric"
	case FamilyTemporal:
		return "temporal"
	default:
		return "other"
	}
}

// FamilyOf classifies a DuckDB type name into a type family.
// Parameterized types (DECIMAL(18,3), TIMESTAMP WITH TIME ZONE) are
// classified by their base name.
func FamilyOf(dataType string) TypeFamily {
	base := strings.ToUpper(dataType)
	if i := strings.IndexAny(base, "( "); i > 0 {
		base = base[:i]
	}
	switch base {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "UHUGEINT",
		"FLOAT", "REAL", "DOUBLE", "DECIMAL", "NUMERIC":
		return FamilyNumeric
	case "DATE", "TIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMETZ", "DATETIME":
		return FamilyTemporal
	default:
		return FamilyOther
	}
}

// Column describes one column of the analytical table as reported by the
// engine catalog. Never cached across an ingestion event.
type Column struct {
	Name string `json:"column_name"`
	Type string `json:"data_type"`
}

// Family returns the column's type family.
func (c Column) Family() TypeFamily { return FamilyOf(c.Type) }

// ColumnMetadata is one metadata record produced by the extractor.
type ColumnMetadata struct {
	Name        string `json:"column_name"`
	DataType    string `json:"data_type"`
	TotalRows   int64  `json:"total_rows"`
	NullCount   int64  `json:"null_count"`
	UniqueCount int64  `json:"unique_count"`
}

// DistinctValueLimit is the cardinality at or below which Summarize attaches
// the distinct values themselves.
const DistinctValueLimit = 5

// Summary holds on-demand summary statistics for a single column.
// Min/Max/Mean/StdDev are only meaningful for the numeric and temporal
// families; MarshalJSON emits their keys per family so that a textual
// column's summary carries only unique_count and null_count. Aggregates
// over an empty table surface as JSON null, never zero.
type Summary struct {
	Column         string
	DataType       string
	Family         TypeFamily
	Min            any
	Max            any
	Mean           *float64
	StdDev         *float64
	UniqueCount    int64
	NullCount      int64
	DistinctValues []any // set when UniqueCount <= DistinctValueLimit
}

// MarshalJSON emits the key set appropriate to the column's type family.
func (s Summary) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"column_name":  s.Column,
		"data_type":    s.DataType,
		"unique_count": s.UniqueCount,
		"null_count":   s.NullCount,
	}
	switch s.Family {
	case FamilyNumeric:
		out["min_value"] = s.Min
		out["max_value"] = s.Max
		out["mean_value"] = s.Mean
		out["std_dev"] = s.StdDev
	case FamilyTemporal:
		out["min_value"] = s.Min
		out["max_value"] = s.Max
	}
	if s.DistinctValues != nil {
		out["distinct_values"] = s.DistinctValues
	}
	return json.Marshal(out)
}

// ValidationFinding reports a column whose values do not cleanly round-trip
// through the type the engine inferred for it during ingestion.
type ValidationFinding struct {
	Column        string `json:"column_name"`
	DeclaredType  string `json:"declared_type"`
	MismatchCount int64  `json:"mismatched_row_count"`
}

// Dataset is one entry of the demo-dataset catalog.
type Dataset struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
}
