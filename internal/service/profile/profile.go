// Package profile computes per-column metadata and on-demand summary
// statistics over the analytical table. All aggregation is delegated to the
// engine; this layer only builds and dispatches the right query per column
// type family.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"looksee/internal/domain"
	"looksee/internal/engine"
)

// Service extracts column metadata and summary statistics for the analytical
// table it is bound to. Column descriptors are re-read from the engine
// catalog on every call, never cached across an ingestion.
type Service struct {
	db    engine.Querier
	table string
	log   *slog.Logger

	mu   sync.Mutex
	last []domain.ColumnMetadata
}

// New creates a profile service for the named analytical table.
func New(db engine.Querier, table string, log *slog.Logger) *Service {
	return &Service{db: db, table: table, log: log}
}

// Columns enumerates the column names of the analytical table.
func (s *Service) Columns(ctx context.Context) ([]string, error) {
	cols, err := engine.ListColumns(ctx, s.db, s.table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names, nil
}

// ExtractMetadata computes a fresh metadata record for every column,
// replacing the previously held result. Total, null, and distinct counts are
// computed per column independently. Any engine failure yields an empty list
// and a log entry; extraction never raises to the caller.
func (s *Service) ExtractMetadata(ctx context.Context) []domain.ColumnMetadata {
	records, err := s.extract(ctx)
	if err != nil {
		s.log.Error("metadata extraction failed", "table", s.table, "error", err)
		records = nil
	} else {
		s.log.Info("metadata extracted", "table", s.table, "columns", len(records))
	}
	s.mu.Lock()
	s.last = records
	s.mu.Unlock()
	if records == nil {
		return []domain.ColumnMetadata{}
	}
	return records
}

// Metadata returns the result of the last extraction without recomputing.
func (s *Service) Metadata() []domain.ColumnMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return []domain.ColumnMetadata{}
	}
	return s.last
}

func (s *Service) extract(ctx context.Context) ([]domain.ColumnMetadata, error) {
	cols, err := engine.ListColumns(ctx, s.db, s.table)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ColumnMetadata, 0, len(cols))
	for _, col := range cols {
		c := engine.QuoteIdent(col.Name)
		q := fmt.Sprintf(
			"SELECT COUNT(*), COUNT(%s), COUNT(DISTINCT %s) FROM %s",
			c, c, engine.QuoteIdent(s.table))

		var total, nonNull, unique int64
		if err := s.db.QueryRowContext(ctx, q).Scan(&total, &nonNull, &unique); err != nil {
			return nil, fmt.Errorf("aggregate column %q: %w", col.Name, err)
		}
		records = append(records, domain.ColumnMetadata{
			Name:        col.Name,
			DataType:    col.Type,
			TotalRows:   total,
			NullCount:   total - nonNull,
			UniqueCount: unique,
		})
	}
	return records, nil
}

// Summarize computes summary statistics for one column, branching once on
// its type family. An unknown column or engine failure yields an empty
// record and a log entry, never an error to the caller.
func (s *Service) Summarize(ctx context.Context, column string) domain.Summary {
	summary, err := s.summarize(ctx, column)
	if err != nil {
		s.log.Error("column summary failed", "table", s.table, "column", column, "error", err)
		return domain.Summary{Column: column}
	}
	return summary
}

func (s *Service) summarize(ctx context.Context, column string) (domain.Summary, error) {
	col, err := engine.LookupColumn(ctx, s.db, s.table, column)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{Column: col.Name, DataType: col.Type, Family: col.Family()}
	spec := specFor(col.Family())

	c := engine.QuoteIdent(col.Name)
	q := fmt.Sprintf("SELECT %s FROM %s",
		strings.ReplaceAll(spec.aggregates, "$c", c), engine.QuoteIdent(s.table))

	if err := spec.scan(s.db.QueryRowContext(ctx, q), &summary); err != nil {
		return domain.Summary{}, fmt.Errorf("aggregate %q: %w", col.Name, err)
	}

	if summary.UniqueCount <= domain.DistinctValueLimit {
		values, err := s.distinctValues(ctx, c)
		if err != nil {
			return domain.Summary{}, fmt.Errorf("distinct values of %q: %w", col.Name, err)
		}
		summary.DistinctValues = values
	}
	return summary, nil
}

// distinctValues fetches the up-to-5 distinct non-null values of a
// low-cardinality column, ascending.
func (s *Service) distinctValues(ctx context.Context, quotedColumn string) ([]any, error) {
	q := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s LIMIT %d",
		quotedColumn, engine.QuoteIdent(s.table), quotedColumn, quotedColumn,
		domain.DistinctValueLimit)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	values := []any{}
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, normalize(v))
	}
	return values, rows.Err()
}

// normalize converts driver-specific scan results into JSON-friendly values.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
