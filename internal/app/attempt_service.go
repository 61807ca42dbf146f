package app

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/domain"
)

// AttemptRepository abstracts how live attempt sessions are tracked
// (in-memory, Redis-snapshotted, etc). Put is called after every mutation so
// durable implementations can persist the latest snapshot.
type AttemptRepository interface {
	Put(ctx context.Context, session *AttemptSession) error
	Get(ctx context.Context, attemptID string) (*AttemptSession, bool)
	Active(ctx context.Context) []*AttemptSession
	Delete(ctx context.Context, attemptID string)
}

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SubmissionRepository persists write-once submission records and answers
// attempt-limit and duplicate-submit queries.
type SubmissionRepository interface {
	Save(ctx context.Context, submission domain.Submission) error
	CountForUser(ctx context.Context, quizID, userID string) (int, error)
	FindByAttempt(ctx context.Context, quizID, userID string, attemptNumber int) (domain.Submission, bool, error)
}

// AttemptService contains the attempt lifecycle use cases: start, mutate,
// tick, submit and score.
type AttemptService struct {
	attempts    AttemptRepository
	quizzes     QuizRepository
	submissions SubmissionRepository
	newID       func() string
}

func NewAttemptService(attempts AttemptRepository, quizzes QuizRepository, submissions SubmissionRepository) *AttemptService {
	return &AttemptService{
		attempts:    attempts,
		quizzes:     quizzes,
		submissions: submissions,
		newID:       uuid.NewString,
	}
}

// Start creates a new in_progress attempt after checking the quiz's attempt
// policy against the user's prior submissions.
func (s *AttemptService) Start(ctx context.Context, quizID, userID string) (domain.AttemptState, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptState{}, err
	}

	prior, err := s.submissions.CountForUser(ctx, quizID, userID)
	if err != nil {
		return domain.AttemptState{}, fmt.Errorf("count attempts: %w", err)
	}
	if !allowsAttempt(quiz, prior) {
		return domain.AttemptState{}, domain.ErrAttemptLimitReached
	}

	session := NewAttemptSession(s.newID(), quiz, userID, prior+1)
	if err := s.attempts.Put(ctx, session); err != nil {
		return domain.AttemptState{}, fmt.Errorf("persist attempt: %w", err)
	}
	return session.Snapshot(), nil
}

func allowsAttempt(quiz domain.Quiz, prior int) bool {
	if prior == 0 {
		return true
	}
	if !quiz.AllowMultipleAttempts {
		return false
	}
	// MaxAttempts of zero means unlimited retakes.
	return quiz.MaxAttempts <= 0 || prior < quiz.MaxAttempts
}

// Resume returns the current state of an existing attempt.
func (s *AttemptService) Resume(ctx context.Context, attemptID string) (domain.AttemptState, error) {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return domain.AttemptState{}, domain.ErrAttemptNotFound
	}
	return session.Snapshot(), nil
}

// SelectAnswer upserts the selected option for a question. Repeated calls
// overwrite; the last selection wins.
func (s *AttemptService) SelectAnswer(ctx context.Context, attemptID, questionID, optionID string) error {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if err := session.selectAnswer(questionID, optionID); err != nil {
		return err
	}
	return s.attempts.Put(ctx, session)
}

// ClearAnswer records the explicit cleared sentinel for a question.
func (s *AttemptService) ClearAnswer(ctx context.Context, attemptID, questionID string) error {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if err := session.clearAnswer(questionID); err != nil {
		return err
	}
	return s.attempts.Put(ctx, session)
}

// ToggleReview flips the review flag on a question index.
func (s *AttemptService) ToggleReview(ctx context.Context, attemptID string, questionIndex int) error {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if err := session.toggleReview(questionIndex); err != nil {
		return err
	}
	return s.attempts.Put(ctx, session)
}

// Navigate moves the current question pointer. Out-of-range targets are
// rejected and leave the state unchanged.
func (s *AttemptService) Navigate(ctx context.Context, attemptID string, targetIndex int) error {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if err := session.navigate(targetIndex); err != nil {
		return err
	}
	return s.attempts.Put(ctx, session)
}

// Tick advances an attempt's countdown by one second and auto-submits when it
// reaches zero. An attempt must never stay in_progress past its deadline.
func (s *AttemptService) Tick(ctx context.Context, attemptID string) error {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return domain.ErrAttemptNotFound
	}
	return s.tickSession(ctx, session)
}

func (s *AttemptService) tickSession(ctx context.Context, session *AttemptSession) error {
	if !session.tick() {
		// Refresh the stored snapshot so durable stores track the countdown.
		return s.attempts.Put(ctx, session)
	}
	log.Printf("attempt %s timed out, auto-submitting", session.ID())
	_, err := s.submit(ctx, session)
	return err
}

// Submit finalizes and scores an attempt. Calling it twice yields the stored
// result without writing a second submission record. A failed persistence
// call rolls the attempt back to in_progress so the answers are not lost.
func (s *AttemptService) Submit(ctx context.Context, attemptID string) (domain.Submission, error) {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return domain.Submission{}, domain.ErrAttemptNotFound
	}
	return s.submit(ctx, session)
}

func (s *AttemptService) submit(ctx context.Context, session *AttemptSession) (domain.Submission, error) {
	if !session.finalize() {
		if result, ok := session.storedResult(); ok {
			return result, nil
		}
		// A session rehydrated from a snapshot loses the in-process result;
		// fall back to the durable record so duplicate submits stay
		// idempotent across restarts.
		snap := session.Snapshot()
		result, ok, err := s.submissions.FindByAttempt(ctx, snap.QuizID, snap.UserID, snap.AttemptNumber)
		if err != nil {
			return domain.Submission{}, fmt.Errorf("lookup submission: %w", err)
		}
		if ok {
			session.rememberResult(result)
			return result, nil
		}
		return domain.Submission{}, domain.ErrInvalidTransition
	}

	submission := Score(session.Snapshot(), session.Quiz())
	submission.ID = s.newID()
	for _, warning := range submission.Warnings {
		log.Printf("attempt %s: %s", session.ID(), warning)
	}

	if err := s.submissions.Save(ctx, submission); err != nil {
		session.abortSubmit()
		return domain.Submission{}, fmt.Errorf("save submission: %w", err)
	}

	session.markEvaluated(submission)
	if err := s.attempts.Put(ctx, session); err != nil {
		// The submission record is already durable; losing the final snapshot
		// only affects resume views.
		log.Printf("attempt %s: persist final snapshot: %v", session.ID(), err)
	}
	return submission, nil
}

// Subscribe returns a channel receiving attempt-state snapshots after every
// mutation and tick. The caller must invoke cancel to avoid leaks.
func (s *AttemptService) Subscribe(ctx context.Context, attemptID string) (<-chan domain.AttemptState, func(), error) {
	session, ok := s.attempts.Get(ctx, attemptID)
	if !ok {
		return nil, nil, domain.ErrAttemptNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// activeSessions exposes the live set to the watchdog.
func (s *AttemptService) activeSessions(ctx context.Context) []*AttemptSession {
	return s.attempts.Active(ctx)
}
