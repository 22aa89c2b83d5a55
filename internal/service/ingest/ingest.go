// Package ingest implements dataset ingestion into the analytical table:
// extension dispatch, engine loading with bounded type-inference sampling,
// post-ingestion type validation, and source-level result caching.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"looksee/internal/config"
	"looksee/internal/domain"
	"looksee/internal/engine"
)

// Service is the ingestion controller. It owns the single analytical table
// under its configured name; all other components reference the table by
// name only.
type Service struct {
	db         engine.Querier
	table      string
	dispatch   map[string]string // lower-cased extension -> read function
	options    map[string]string // lower-cased extension -> extra read options
	sampleRows int
	log        *slog.Logger

	cache *sourceCache
	group singleflight.Group

	mu       sync.Mutex
	findings []domain.ValidationFinding
}

// New creates an ingestion service bound to the given table name. The
// dispatch table comes from configuration, never from hard-coded logic.
func New(db engine.Querier, cfg *config.Config, table string, log *slog.Logger) *Service {
	dispatch := make(map[string]string, len(cfg.ReadFunctions))
	for ext, fn := range cfg.ReadFunctions {
		dispatch[strings.ToLower(ext)] = fn
	}
	options := make(map[string]string, len(cfg.ReadOptions))
	for ext, opt := range cfg.ReadOptions {
		options[strings.ToLower(ext)] = opt
	}
	return &Service{
		db:         db,
		table:      table,
		dispatch:   dispatch,
		options:    options,
		sampleRows: cfg.Settings.SampleRows,
		log:        log,
		cache:      newSourceCache(defaultCacheSize),
	}
}

// Table returns the name of the analytical table this service manages.
func (s *Service) Table() string { return s.table }

// LastFindings returns the validation findings from the most recent
// successful ingestion.
func (s *Service) LastFindings() []domain.ValidationFinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findings
}

// InvalidateCache drops all cached ingestion results.
func (s *Service) InvalidateCache() { s.cache.reset() }

// Ingest loads the source into the analytical table, replacing any prior
// table of the same name, and returns whether ingestion succeeded. Failures
// are logged with their underlying cause and never raised to the caller.
//
// Repeated calls for an unchanged source hit the cache and return the
// previous result without re-invoking the engine; concurrent calls for the
// same source are collapsed into one engine invocation.
func (s *Service) Ingest(ctx context.Context, src domain.Source) bool {
	key := s.cache.key(src)
	if ok, hit := s.cache.get(key); hit {
		s.log.Debug("ingest cache hit", "location", src.Location, "ok", ok)
		return ok
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		err := s.ingest(ctx, src)
		if err != nil {
			s.log.Error("ingestion failed", "location", src.Location, "declared_name", src.DeclaredName, "error", err)
		} else {
			s.log.Info("data ingested", "location", src.Location, "table", s.table)
		}
		s.cache.put(key, err == nil)
		return err == nil, nil
	})
	ok, _ := v.(bool)
	return ok
}

// ingest performs one uncached ingestion attempt.
func (s *Service) ingest(ctx context.Context, src domain.Source) error {
	ext := resolveExtension(src)
	if ext == "" {
		return domain.ErrUnsupportedFormat("source %q has no file extension", src.Location)
	}
	fn, ok := s.dispatch[ext]
	if !ok {
		return domain.ErrUnsupportedFormat("unsupported file format: %s", ext)
	}

	// The prior table is dropped only after a successful dispatch lookup, so
	// a bad source leaves the previous dataset untouched.
	if err := engine.DropTable(ctx, s.db, s.table); err != nil {
		return domain.ErrIngestion("replace table: %v", err)
	}

	q := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s",
		engine.QuoteIdent(s.table), s.readCall(fn, ext, src.Location))
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return domain.ErrIngestion("engine rejected %q: %v", src.Location, err)
	}

	findings, err := Validate(ctx, s.db, s.table)
	if err != nil {
		// Validation is diagnostic only; a failed validation pass does not
		// undo a successful ingest.
		s.log.Warn("type validation failed", "table", s.table, "error", err)
		findings = nil
	}
	for _, f := range findings {
		s.log.Warn("type mismatch",
			"column", f.Column, "declared_type", f.DeclaredType, "rows", f.MismatchCount)
	}
	s.mu.Lock()
	s.findings = findings
	s.mu.Unlock()
	return nil
}

// readCall renders the engine read-function invocation for a source,
// injecting the bounded sampling options that keep type inference latency
// flat on large sources.
func (s *Service) readCall(fn, ext, location string) string {
	args := []string{engine.QuoteLiteral(location)}
	switch {
	case strings.Contains(fn, "csv"):
		args = append(args, fmt.Sprintf("sample_size=%d", s.sampleRows), "all_varchar=false")
	case strings.Contains(fn, "json"):
		args = append(args, fmt.Sprintf("sample_size=%d", s.sampleRows))
	}
	if opt := s.options[ext]; opt != "" {
		args = append(args, opt)
	}
	return fn + "(" + strings.Join(args, ", ") + ")"
}

// resolveExtension prefers the extension embedded in the declared name, so
// uploads written to generically-named temp files still dispatch on their
// original format. Query strings on URL locations are ignored.
func resolveExtension(src domain.Source) string {
	if ext := extensionOf(src.DeclaredName); ext != "" {
		return ext
	}
	return extensionOf(src.Location)
}

func extensionOf(location string) string {
	loc, _, _ := strings.Cut(location, "?")
	ext := path.Ext(path.Base(strings.ReplaceAll(loc, "\\", "/")))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
