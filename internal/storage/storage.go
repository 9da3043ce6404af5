package storage

import (
	"sync"
	"time"

	"github.com/palletlog/palletlog/internal/models"
)

// SessionStore holds in-flight pallet sessions in memory. Nothing here
// survives a restart.
type SessionStore struct {
	sessions map[string]*models.PalletSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.PalletSession),
	}
}

func (s *SessionStore) Get(sessionID string) (*models.PalletSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *models.PalletSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) GetAll() map[string]*models.PalletSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.PalletSession, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

// Take removes and returns a session so only one confirm can use it
func (s *SessionStore) Take(sessionID string) (*models.PalletSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if exists {
		delete(s.sessions, sessionID)
	}
	return session, exists
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Prune drops sessions created before now-maxAge and returns how many
func (s *SessionStore) Prune(now time.Time, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-maxAge)
	pruned := 0
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned
}
