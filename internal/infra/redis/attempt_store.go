package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// AttemptStore is a Redis-backed implementation of app.AttemptRepository.
// Notes:
//   - It keeps a local in-memory map of live sessions so the in-process
//     subscriber fan-out keeps working.
//   - Every Put writes the full state snapshot to Redis with a TTL, so an
//     attempt survives a process restart: Get rehydrates from the snapshot
//     (refetching the definition through the quiz repository) on a local miss.
type AttemptStore struct {
	client  *redis.Client
	quizzes app.QuizRepository
	ttl     time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.AttemptSession
}

func NewAttemptStore(client *redis.Client, quizzes app.QuizRepository, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		quizzes:  quizzes,
		ttl:      ttl,
		sessions: make(map[string]*app.AttemptSession),
	}
}

func (s *AttemptStore) Put(ctx context.Context, session *app.AttemptSession) error {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	raw, err := json.Marshal(session.Snapshot())
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.ID()), raw, s.ttl).Err()
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (*app.AttemptSession, bool) {
	s.mu.RLock()
	session, ok := s.sessions[attemptID]
	s.mu.RUnlock()
	if ok {
		return session, true
	}

	raw, err := s.client.Get(ctx, s.key(attemptID)).Bytes()
	if err != nil {
		return nil, false
	}
	var state domain.AttemptState
	if err := json.Unmarshal(raw, &state); err != nil {
		log.Printf("attempt %s: corrupt snapshot: %v", attemptID, err)
		return nil, false
	}
	quiz, err := s.quizzes.GetQuiz(ctx, state.QuizID)
	if err != nil {
		log.Printf("attempt %s: rehydrate quiz %s: %v", attemptID, state.QuizID, err)
		return nil, false
	}

	session = app.RestoreAttemptSession(state, quiz)
	s.mu.Lock()
	// Another goroutine may have rehydrated concurrently; keep the first.
	if existing, ok := s.sessions[attemptID]; ok {
		session = existing
	} else {
		s.sessions[attemptID] = session
	}
	s.mu.Unlock()
	return session, true
}

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

func (s *AttemptStore) Delete(ctx context.Context, attemptID string) {
	s.mu.Lock()
	delete(s.sessions, attemptID)
	s.mu.Unlock()
	_ = s.client.Del(ctx, s.key(attemptID)).Err()
}

func (s *AttemptStore) key(attemptID string) string {
	return "attempt:" + attemptID
}
