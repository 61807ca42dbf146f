package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.AttemptSession
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		sessions: make(map[string]*app.AttemptSession),
	}
}

func (s *AttemptStore) Put(_ context.Context, session *app.AttemptSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	return nil
}

func (s *AttemptStore) Get(_ context.Context, attemptID string) (*app.AttemptSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[attemptID]
	return session, ok
}

// Active returns the sessions still counting down; finished attempts are
// skipped so the watchdog does not churn over them.
func (s *AttemptStore) Active(_ context.Context) []*app.AttemptSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := make([]*app.AttemptSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.Snapshot().Status == domain.AttemptInProgress {
			active = append(active, session)
		}
	}
	return active
}

func (s *AttemptStore) Delete(_ context.Context, attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, attemptID)
}
