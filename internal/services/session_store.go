package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardstack-tools/deckmatcher/internal/models"
)

// ResolutionSession is one decklist resolution pass: the parsed entries with
// their match results, pinned to the catalog snapshot they were resolved
// against so manual selections stay consistent with what the user saw.
type ResolutionSession struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	Config    models.MatchConfig      `json:"config"`
	Matches   []models.DeckEntryMatch `json:"matches"`

	catalog *Catalog
}

// Catalog returns the snapshot this session was resolved against.
func (s *ResolutionSession) Catalog() *Catalog {
	return s.catalog
}

// clone deep-copies the session so callers can serialize it without holding
// the store lock while Select mutates the original.
func (s *ResolutionSession) clone() *ResolutionSession {
	out := &ResolutionSession{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Config:    s.Config,
		Matches:   make([]models.DeckEntryMatch, len(s.Matches)),
		catalog:   s.catalog,
	}
	for i, m := range s.Matches {
		if m.Selected != nil {
			selected := *m.Selected
			m.Selected = &selected
		}
		m.Candidates = append([]models.MatchCandidate(nil), m.Candidates...)
		out.Matches[i] = m
	}
	return out
}

// SessionStore keeps resolution sessions in memory. Sessions are short-lived
// working state for the UI; they are not persisted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ResolutionSession
	maxAge   time.Duration
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*ResolutionSession),
		maxAge:   24 * time.Hour,
	}
}

// Create stores a new session for the given match results.
func (s *SessionStore) Create(matches []models.DeckEntryMatch, config models.MatchConfig, catalog *Catalog) *ResolutionSession {
	session := &ResolutionSession{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Config:    config,
		Matches:   matches,
		catalog:   catalog,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.sessions[session.ID] = session
	return session.clone()
}

// Get returns a copy of the session, detached from later selections.
func (s *SessionStore) Get(id string) (*ResolutionSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return session.clone(), true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Select applies a manual candidate selection or a forced override to one
// entry of a session.
func (s *SessionStore) Select(id string, entryIndex int, sku string, override *models.ManualOverride) (*ResolutionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q not found", id)
	}
	if entryIndex < 0 || entryIndex >= len(session.Matches) {
		return nil, fmt.Errorf("entry index %d out of range (session has %d entries)", entryIndex, len(session.Matches))
	}

	match := &session.Matches[entryIndex]
	if override != nil {
		ApplyOverride(match, *override, session.catalog)
		return session.clone(), nil
	}
	if err := SelectCandidate(match, sku); err != nil {
		return nil, err
	}
	return session.clone(), nil
}

// pruneLocked drops sessions past maxAge. Caller holds the write lock.
func (s *SessionStore) pruneLocked() {
	cutoff := time.Now().Add(-s.maxAge)
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
