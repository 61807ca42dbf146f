package app

import (
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
)

// AttemptSession is the in-memory state machine for one user's attempt at a
// quiz. All mutations are rejected once the attempt leaves in_progress; the
// status only ever moves forward (in_progress -> submitted -> evaluated),
// except for the submit rollback when persisting the result fails.
type AttemptSession struct {
	mu     sync.RWMutex
	now    func() time.Time
	quiz   domain.Quiz
	state  domain.AttemptState
	result *domain.Submission

	subscribers map[chan domain.AttemptState]struct{}
}

// NewAttemptSession builds a fresh in_progress session for the given quiz.
func NewAttemptSession(id string, quiz domain.Quiz, userID string, attemptNumber int) *AttemptSession {
	return NewAttemptSessionWithClock(id, quiz, userID, attemptNumber, time.Now)
}

// NewAttemptSessionWithClock allows deterministic timestamps in tests.
func NewAttemptSessionWithClock(id string, quiz domain.Quiz, userID string, attemptNumber int, now func() time.Time) *AttemptSession {
	return &AttemptSession{
		now:  now,
		quiz: quiz,
		state: domain.AttemptState{
			ID:               id,
			QuizID:           quiz.ID,
			UserID:           userID,
			AttemptNumber:    attemptNumber,
			StartedAt:        now(),
			RemainingSeconds: quiz.DurationMinutes * 60,
			Answers:          make(map[string]*string),
			MarkedForReview:  []int{},
			Status:           domain.AttemptInProgress,
		},
		subscribers: make(map[chan domain.AttemptState]struct{}),
	}
}

// RestoreAttemptSession rebuilds a session from a persisted snapshot. Used by
// stores that rehydrate attempts after a restart.
func RestoreAttemptSession(state domain.AttemptState, quiz domain.Quiz) *AttemptSession {
	if state.Answers == nil {
		state.Answers = make(map[string]*string)
	}
	if state.MarkedForReview == nil {
		state.MarkedForReview = []int{}
	}
	return &AttemptSession{
		now:         time.Now,
		quiz:        quiz,
		state:       state,
		subscribers: make(map[chan domain.AttemptState]struct{}),
	}
}

// ID returns the attempt identifier.
func (a *AttemptSession) ID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.ID
}

// Quiz returns the definition this attempt runs against.
func (a *AttemptSession) Quiz() domain.Quiz {
	return a.quiz
}

// Snapshot returns a deep copy of the current attempt state.
func (a *AttemptSession) Snapshot() domain.AttemptState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

func (a *AttemptSession) snapshotLocked() domain.AttemptState {
	snap := a.state
	snap.Answers = make(map[string]*string, len(a.state.Answers))
	for questionID, optionID := range a.state.Answers {
		if optionID == nil {
			snap.Answers[questionID] = nil
			continue
		}
		v := *optionID
		snap.Answers[questionID] = &v
	}
	snap.MarkedForReview = append([]int{}, a.state.MarkedForReview...)
	if a.state.SubmittedAt != nil {
		t := *a.state.SubmittedAt
		snap.SubmittedAt = &t
	}
	return snap
}

func (a *AttemptSession) selectAnswer(questionID, optionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptInProgress {
		return domain.ErrInvalidTransition
	}
	question, ok := a.quiz.QuestionByID(questionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if _, ok := question.Option(optionID); !ok {
		return domain.ErrOptionNotFound
	}
	// Last write wins; no selection history is kept.
	a.state.Answers[questionID] = &optionID
	a.broadcastLocked()
	return nil
}

// clearAnswer records the explicit nil sentinel so "cleared" survives
// serialization as something other than a missing key.
func (a *AttemptSession) clearAnswer(questionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptInProgress {
		return domain.ErrInvalidTransition
	}
	if _, ok := a.quiz.QuestionByID(questionID); !ok {
		return domain.ErrQuestionNotFound
	}
	a.state.Answers[questionID] = nil
	a.broadcastLocked()
	return nil
}

func (a *AttemptSession) toggleReview(questionIndex int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptInProgress {
		return domain.ErrInvalidTransition
	}
	if questionIndex < 0 || questionIndex >= a.quiz.TotalQuestions() {
		return domain.ErrInvalidIndex
	}
	for i, idx := range a.state.MarkedForReview {
		if idx == questionIndex {
			a.state.MarkedForReview = append(a.state.MarkedForReview[:i], a.state.MarkedForReview[i+1:]...)
			a.broadcastLocked()
			return nil
		}
	}
	a.state.MarkedForReview = append(a.state.MarkedForReview, questionIndex)
	a.broadcastLocked()
	return nil
}

func (a *AttemptSession) navigate(targetIndex int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptInProgress {
		return domain.ErrInvalidTransition
	}
	if targetIndex < 0 || targetIndex >= a.quiz.TotalQuestions() {
		return domain.ErrInvalidIndex
	}
	a.state.CurrentQuestionIndex = targetIndex
	a.broadcastLocked()
	return nil
}

// tick advances the countdown by one second. It returns true exactly when the
// countdown reaches zero, so the caller can trigger the auto-submit; once the
// attempt is no longer in_progress further ticks are no-ops.
func (a *AttemptSession) tick() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptInProgress {
		return false
	}
	if a.state.RemainingSeconds <= 0 {
		// Still in_progress at zero means a previous auto-submit failed to
		// persist and was rolled back; keep reporting expiry so the caller
		// retries the submit.
		return true
	}
	a.state.TimeSpentSeconds++
	a.state.RemainingSeconds--
	expired := a.state.RemainingSeconds == 0
	a.broadcastLocked()
	return expired
}

// finalize moves in_progress -> submitted, freezing the elapsed time. The
// bool reports whether this call performed the transition; a second call is
// the idempotent no-op the submit guard relies on.
func (a *AttemptSession) finalize() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptInProgress {
		return false
	}
	now := a.now()
	a.state.Status = domain.AttemptSubmitted
	a.state.SubmittedAt = &now
	a.broadcastLocked()
	return true
}

// abortSubmit rolls a submitted-but-unsaved attempt back to in_progress so a
// failed persistence call never loses the user's answers.
func (a *AttemptSession) abortSubmit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptSubmitted {
		return
	}
	a.state.Status = domain.AttemptInProgress
	a.state.SubmittedAt = nil
	a.broadcastLocked()
}

// markEvaluated records the scored result and moves the attempt to its
// terminal state.
func (a *AttemptSession) markEvaluated(result domain.Submission) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Status != domain.AttemptSubmitted {
		return
	}
	a.state.Status = domain.AttemptEvaluated
	a.result = &result
	a.broadcastLocked()
}

// rememberResult caches a durably stored submission on a session that lost
// its in-process result (rehydrated from a snapshot).
func (a *AttemptSession) rememberResult(result domain.Submission) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.result == nil {
		a.result = &result
	}
	if a.state.Status == domain.AttemptSubmitted {
		a.state.Status = domain.AttemptEvaluated
	}
}

// storedResult returns the submission recorded by a completed evaluation.
func (a *AttemptSession) storedResult() (domain.Submission, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.result == nil {
		return domain.Submission{}, false
	}
	return *a.result, true
}

func (a *AttemptSession) subscribe() (<-chan domain.AttemptState, func()) {
	ch := make(chan domain.AttemptState, 8)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	initial := a.snapshotLocked()
	a.mu.Unlock()

	ch <- initial

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *AttemptSession) broadcastLocked() {
	snap := a.snapshotLocked()
	for ch := range a.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks mutations.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
