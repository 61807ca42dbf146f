package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// SubmissionStore is an in-memory implementation of app.SubmissionRepository.
// Records are write-once: saving an ID twice keeps the first record, matching
// the ON CONFLICT DO NOTHING semantics of the Postgres store.
type SubmissionStore struct {
	mu      sync.RWMutex
	records map[string]domain.Submission
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		records: make(map[string]domain.Submission),
	}
}

func (s *SubmissionStore) Save(_ context.Context, submission domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[submission.ID]; ok {
		return nil
	}
	s.records[submission.ID] = submission
	return nil
}

func (s *SubmissionStore) CountForUser(_ context.Context, quizID, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.records {
		if record.QuizID == quizID && record.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *SubmissionStore) FindByAttempt(_ context.Context, quizID, userID string, attemptNumber int) (domain.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.QuizID == quizID && record.UserID == userID && record.AttemptNumber == attemptNumber {
			return record, true, nil
		}
	}
	return domain.Submission{}, false, nil
}

// All returns every stored submission; handy in tests.
func (s *SubmissionStore) All() []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.Submission, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	return records
}
