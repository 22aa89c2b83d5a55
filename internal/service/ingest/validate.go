package ingest

import (
	"context"
	"fmt"
	"regexp"

	"looksee/internal/domain"
	"looksee/internal/engine"
)

// typePattern limits the catalog-reported type text that may be interpolated
// into a validation query. The names come from the engine's own catalog, but
// they are still checked rather than trusted.
var typePattern = regexp.MustCompile(`^[A-Za-z0-9_,() ]+$`)

// Validate checks, for every column of the table, whether the type the
// engine inferred during ingestion actually admits every present value: it
// counts rows where casting the column to its own declared type yields null
// while the original value is non-null. Findings are diagnostic; they never
// block ingestion.
func Validate(ctx context.Context, db engine.Querier, table string) ([]domain.ValidationFinding, error) {
	cols, err := engine.ListColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}

	var findings []domain.ValidationFinding
	for _, col := range cols {
		if !typePattern.MatchString(col.Type) {
			// Bracketed types (INTEGER[], VARCHAR[]) are skipped; a cast
			// between a value and its own list type adds nothing diagnostic.
			continue
		}
		var n int64
		if err := db.QueryRowContext(ctx, validationQuery(table, col)).Scan(&n); err != nil {
			return nil, fmt.Errorf("validate column %q: %w", col.Name, err)
		}
		if n > 0 {
			findings = append(findings, domain.ValidationFinding{
				Column:        col.Name,
				DeclaredType:  col.Type,
				MismatchCount: n,
			})
		}
	}
	return findings, nil
}

func validationQuery(table string, col domain.Column) string {
	c := engine.QuoteIdent(col.Name)
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND TRY_CAST(%s AS %s) IS NULL",
		engine.QuoteIdent(table), c, c, col.Type)
}
