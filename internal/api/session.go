package api

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"looksee/internal/config"
	"looksee/internal/engine"
	"looksee/internal/service/ingest"
	"looksee/internal/service/profile"
)

// session owns one caller's analytical table plus the services bound to it.
// Tables, ingestion caches, and metadata state are never shared across
// sessions.
type session struct {
	id       string
	ingest   *ingest.Service
	profile  *profile.Service
	lastSeen time.Time
}

// SessionManager scopes the single-table profiling model to concurrent
// callers by giving each session its own table name derived from the
// configured default. Idle sessions are evicted and their tables dropped.
type SessionManager struct {
	db  engine.Querier
	cfg *config.Config
	log *slog.Logger
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionManager creates a session manager with the configured idle TTL.
func NewSessionManager(db engine.Querier, cfg *config.Config, log *slog.Logger) *SessionManager {
	return &SessionManager{
		db:       db,
		cfg:      cfg,
		log:      log,
		ttl:      time.Duration(cfg.Settings.SessionTTLMins) * time.Minute,
		sessions: make(map[string]*session),
	}
}

// NewID mints a fresh session identifier.
func (m *SessionManager) NewID() string { return uuid.New().String() }

// acquire returns the session for id, creating it on first use, and evicts
// idle sessions as a side effect.
func (m *SessionManager) acquire(ctx context.Context, id string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(ctx)

	s, ok := m.sessions[id]
	if !ok {
		table := m.tableNameFor(id)
		log := m.log.With("session", id)
		s = &session{
			id:      id,
			ingest:  ingest.New(m.db, m.cfg, table, log.With("component", "ingest")),
			profile: profile.New(m.db, table, log.With("component", "profile")),
		}
		m.sessions[id] = s
		m.log.Info("session created", "session", id, "table", table)
	}
	s.lastSeen = time.Now()
	return s
}

// tableNameFor derives an isolated table name from the configured default
// and an 8-hex-digit digest of the full session id. Hashing the whole id
// keeps distinct sessions on distinct tables even when a caller supplies
// ids sharing a long common prefix.
func (m *SessionManager) tableNameFor(id string) string {
	sum := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%s_%x", m.cfg.Settings.DefaultTableName, sum[:4])
}

func (m *SessionManager) pruneLocked(ctx context.Context) {
	cutoff := time.Now().Add(-m.ttl)
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			if err := engine.DropTable(ctx, m.db, s.ingest.Table()); err != nil {
				m.log.Warn("drop expired session table", "session", id, "error", err)
			}
			delete(m.sessions, id)
			m.log.Info("session expired", "session", id)
		}
	}
}
