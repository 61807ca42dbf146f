package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/domain"
)

// SubmissionStore persists submission records in Postgres. Records are
// write-once: the insert ignores conflicts on the primary key, so replaying a
// save never overwrites a scored result.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) Save(ctx context.Context, submission domain.Submission) error {
	data, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO submissions (id, quiz_id, user_id, attempt_number, submitted_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		submission.ID, submission.QuizID, submission.UserID, submission.AttemptNumber, submission.SubmittedAt, data)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *SubmissionStore) FindByAttempt(ctx context.Context, quizID, userID string, attemptNumber int) (domain.Submission, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM submissions WHERE quiz_id=$1 AND user_id=$2 AND attempt_number=$3`,
		quizID, userID, attemptNumber).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, false, nil
	}
	if err != nil {
		return domain.Submission{}, false, fmt.Errorf("find submission: %w", err)
	}
	var submission domain.Submission
	if err := json.Unmarshal(raw, &submission); err != nil {
		return domain.Submission{}, false, fmt.Errorf("unmarshal submission: %w", err)
	}
	return submission, true, nil
}

func (s *SubmissionStore) CountForUser(ctx context.Context, quizID, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE quiz_id=$1 AND user_id=$2`,
		quizID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}
