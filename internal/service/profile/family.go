package profile

import (
	"database/sql"

	"looksee/internal/domain"
)

// familySpec is one variant of the closed {numeric, temporal, other} set.
// Each variant carries its own aggregate column list (with $c standing for
// the quoted column) and knows how to scan the single result row. Aggregates
// over an empty table come back as engine nulls and are passed through.
type familySpec struct {
	aggregates string
	scan       func(row *sql.Row, out *domain.Summary) error
}

var (
	numericSpec = familySpec{
		aggregates: "MIN($c), MAX($c), AVG($c), STDDEV($c), COUNT(DISTINCT $c), COUNT(*) - COUNT($c)",
		scan: func(row *sql.Row, out *domain.Summary) error {
			var minV, maxV any
			var mean, stddev sql.NullFloat64
			if err := row.Scan(&minV, &maxV, &mean, &stddev, &out.UniqueCount, &out.NullCount); err != nil {
				return err
			}
			out.Min, out.Max = normalize(minV), normalize(maxV)
			if mean.Valid {
				out.Mean = &mean.Float64
			}
			if stddev.Valid {
				out.StdDev = &stddev.Float64
			}
			return nil
		},
	}

	// No mean or standard deviation for temporal columns; undefined for dates.
	temporalSpec = familySpec{
		aggregates: "MIN($c), MAX($c), COUNT(DISTINCT $c), COUNT(*) - COUNT($c)",
		scan: func(row *sql.Row, out *domain.Summary) error {
			var minV, maxV any
			if err := row.Scan(&minV, &maxV, &out.UniqueCount, &out.NullCount); err != nil {
				return err
			}
			out.Min, out.Max = normalize(minV), normalize(maxV)
			return nil
		},
	}

	otherSpec = familySpec{
		aggregates: "COUNT(DISTINCT $c), COUNT(*) - COUNT($c)",
		scan: func(row *sql.Row, out *domain.Summary) error {
			return row.Scan(&out.UniqueCount, &out.NullCount)
		},
	}
)

func specFor(f domain.TypeFamily) familySpec {
	switch f {
	case domain.FamilyNumeric:
		return numericSpec
	case domain.FamilyTemporal:
		return temporalSpec
	default:
		return otherSpec
	}
}
