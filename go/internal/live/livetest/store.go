// Package livetest provides an in-memory live.Store for tests.
package livetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// Store keeps workshops, sessions, pointers and timers in maps. It follows
// the Postgres repository's semantics, including timer versioning.
type Store struct {
	txMu sync.Mutex

	mu        sync.Mutex
	workshops map[uuid.UUID]models.Workshop
	sessions  map[uuid.UUID]models.Session
	pointers  map[uuid.UUID]models.WorkshopPointer
	timers    map[uuid.UUID]models.SessionTimer
}

var _ live.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		workshops: make(map[uuid.UUID]models.Workshop),
		sessions:  make(map[uuid.UUID]models.Session),
		pointers:  make(map[uuid.UUID]models.WorkshopPointer),
		timers:    make(map[uuid.UUID]models.SessionTimer),
	}
}

// AddWorkshop stores w, its sessions and a default pointer.
func (s *Store) AddWorkshop(w models.Workshop, sessions ...models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workshops[w.ID] = w
	for _, session := range sessions {
		session.WorkshopID = w.ID
		s.sessions[session.ID] = session
	}
	if _, ok := s.pointers[w.ID]; !ok {
		s.pointers[w.ID] = models.WorkshopPointer{
			WorkshopID:  w.ID,
			DisplayMode: models.DisplayModeStandard,
			UpdatedAt:   w.CreatedAt,
		}
	}
}

// PutTimer overwrites a timer as-is, bypassing version checks.
func (s *Store) PutTimer(t models.SessionTimer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Version == 0 {
		t.Version = 1
	}
	s.timers[t.SessionID] = t
}

// Timer returns the stored timer without going through the Store interface.
func (s *Store) Timer(sessionID uuid.UUID) (models.SessionTimer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[sessionID]
	return t, ok
}

func (s *Store) GetWorkshop(_ context.Context, id uuid.UUID) (*models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[id]
	if !ok {
		return nil, fmt.Errorf("%w: workshop %s", live.ErrNotFound, id)
	}
	return &w, nil
}

func (s *Store) ListSessions(_ context.Context, workshopID uuid.UUID) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, session := range s.sessions {
		if session.WorkshopID == workshopID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Store) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", live.ErrNotFound, id)
	}
	return &session, nil
}

func (s *Store) GetPointer(_ context.Context, workshopID uuid.UUID) (*models.WorkshopPointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pointers[workshopID]
	if !ok {
		return nil, fmt.Errorf("%w: workshop pointer %s", live.ErrNotFound, workshopID)
	}
	if p.ActiveSessionID != nil {
		id := *p.ActiveSessionID
		p.ActiveSessionID = &id
	}
	return &p, nil
}

func (s *Store) SavePointer(_ context.Context, p *models.WorkshopPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *p
	if p.ActiveSessionID != nil {
		id := *p.ActiveSessionID
		stored.ActiveSessionID = &id
	}
	s.pointers[p.WorkshopID] = stored
	return nil
}

func (s *Store) GetTimer(_ context.Context, sessionID uuid.UUID) (*models.SessionTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: timer for session %s", live.ErrNotFound, sessionID)
	}
	return &t, nil
}

func (s *Store) SaveTimer(_ context.Context, t *models.SessionTimer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.timers[t.SessionID]
	switch {
	case t.Version == 0 && exists:
		return fmt.Errorf("%w: timer for session %s already exists", live.ErrConflict, t.SessionID)
	case t.Version > 0 && (!exists || current.Version != t.Version):
		return fmt.Errorf("%w: timer for session %s changed since version %d", live.ErrConflict, t.SessionID, t.Version)
	}

	t.Version++
	s.timers[t.SessionID] = *t
	return nil
}

// WithinTx serializes transactions and restores the previous contents when
// fn fails.
func (s *Store) WithinTx(_ context.Context, fn func(live.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	pointers := make(map[uuid.UUID]models.WorkshopPointer, len(s.pointers))
	for k, v := range s.pointers {
		pointers[k] = v
	}
	timers := make(map[uuid.UUID]models.SessionTimer, len(s.timers))
	for k, v := range s.timers {
		timers[k] = v
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.pointers, s.timers = pointers, timers
		s.mu.Unlock()
		return err
	}
	return nil
}
