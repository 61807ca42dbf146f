package domain

import "time"

// AttemptStatus is the one-directional lifecycle of an attempt:
// in_progress -> submitted -> evaluated.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptEvaluated  AttemptStatus = "evaluated"
)

// AttemptState is a serializable snapshot of one user's attempt. Answers map
// question IDs to the selected option ID; a nil value is the explicit
// "cleared" sentinel, distinct from an absent key, and both score as
// unattempted. MarkedForReview is UI metadata and never feeds scoring.
type AttemptState struct {
	ID                   string             `json:"id"`
	QuizID               string             `json:"quizId"`
	UserID               string             `json:"userId"`
	AttemptNumber        int                `json:"attemptNumber"`
	StartedAt            time.Time          `json:"startedAt"`
	SubmittedAt          *time.Time         `json:"submittedAt,omitempty"`
	TimeSpentSeconds     int                `json:"timeSpentSeconds"`
	RemainingSeconds     int                `json:"remainingSeconds"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	Answers              map[string]*string `json:"answers"`
	MarkedForReview      []int              `json:"markedForReview"`
	Status               AttemptStatus      `json:"status"`
}

// AnswerResult is the scored outcome for a single question. Correct is nil
// for unattempted questions; they contribute zero marks and are never
// counted as wrong.
type AnswerResult struct {
	QuestionID       string  `json:"questionId"`
	SelectedOptionID *string `json:"selectedOptionId"`
	Correct          *bool   `json:"correct"`
	MarksAwarded     float64 `json:"marksAwarded"`
}

// Submission is the write-once record produced by scoring a submitted
// attempt. TotalMarksObtained may be negative under negative marking (unless
// the quiz floors it); PercentageScore is always clamped at zero.
type Submission struct {
	ID                 string         `json:"id"`
	QuizID             string         `json:"quizId"`
	UserID             string         `json:"userId"`
	AttemptNumber      int            `json:"attemptNumber"`
	StartedAt          time.Time      `json:"startedAt"`
	SubmittedAt        time.Time      `json:"submittedAt"`
	TimeSpentSeconds   int            `json:"timeSpentSeconds"`
	Answers            []AnswerResult `json:"answers"`
	TotalMarksObtained float64        `json:"totalMarksObtained"`
	TotalMarksMaximum  float64        `json:"totalMarksMaximum"`
	PercentageScore    float64        `json:"percentageScore"`
	CorrectCount       int            `json:"correctAnswersCount"`
	WrongCount         int            `json:"wrongAnswersCount"`
	UnattemptedCount   int            `json:"unattemptedCount"`
	MarkedForReview    []int          `json:"markedForReview,omitempty"`
	Status             AttemptStatus  `json:"status"`
	Warnings           []string       `json:"warnings,omitempty"`
}
