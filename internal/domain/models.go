package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// QuestionType discriminates the closed set of supported question kinds.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "MCQ"
	QuestionTrueFalse QuestionType = "TRUE_FALSE"
)

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id" validate:"required"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a question with exactly one correct option.
type Question struct {
	ID         string       `json:"id" validate:"required"`
	Prompt     string       `json:"prompt"`
	Type       QuestionType `json:"type,omitempty"`
	Options    []Option     `json:"options" validate:"min=2,dive"`
	Marks      float64      `json:"marks" validate:"gte=0"` // defaults to 1 if zero
	Difficulty string       `json:"difficulty,omitempty"`
}

// CorrectOptionID returns the ID of the option marked correct. The second
// return is false when the definition carries no correct marker, which the
// scoring engine treats as a data-integrity warning rather than a failure.
func (q Question) CorrectOptionID() (string, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID, true
		}
	}
	return "", false
}

// Option returns the option with the given ID.
func (q Question) Option(optionID string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// NegativeMarking configures the deduction applied to wrong answers.
// Unattempted questions are never penalized.
type NegativeMarking struct {
	Enabled       bool    `json:"enabled"`
	MarksPerWrong float64 `json:"marksPerWrong" validate:"gte=0"`
}

// Quiz is the static definition an attempt runs against: ordered questions,
// timing and marking policy. It is read-only for the lifetime of an attempt.
type Quiz struct {
	ID                    string          `json:"id" validate:"required"`
	Title                 string          `json:"title"`
	Questions             []Question      `json:"questions" validate:"required,min=1,dive"`
	DurationMinutes       int             `json:"durationMinutes" validate:"gt=0"`
	MarksPerQuestion      float64         `json:"marksPerQuestion" validate:"gte=0"` // 0 means use per-question marks
	TotalMarks            float64         `json:"totalMarks" validate:"gte=0"`       // 0 means derive from questions
	Negative              NegativeMarking `json:"negativeMarking"`
	AllowMultipleAttempts bool            `json:"allowMultipleAttempts"`
	MaxAttempts           int             `json:"maxAttempts"` // 0 means a single attempt unless AllowMultipleAttempts
	FloorTotalAtZero      bool            `json:"floorTotalAtZero"`
}

// TotalQuestions returns the number of questions in the definition.
func (q Quiz) TotalQuestions() int {
	return len(q.Questions)
}

// QuestionByID returns the question with the given ID.
func (q Quiz) QuestionByID(questionID string) (Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return q.Questions[i], true
		}
	}
	return Question{}, false
}

// QuestionMarks resolves the marks a question is worth: the uniform
// per-question value when set, otherwise the question's own marks, with 1 as
// the fallback.
func (q Quiz) QuestionMarks(question Question) float64 {
	if q.MarksPerQuestion > 0 {
		return q.MarksPerQuestion
	}
	if question.Marks > 0 {
		return question.Marks
	}
	return 1
}

// MaximumMarks returns the declared total, or the sum over questions when the
// definition does not declare one.
func (q Quiz) MaximumMarks() float64 {
	if q.TotalMarks > 0 {
		return q.TotalMarks
	}
	var total float64
	for i := range q.Questions {
		total += q.QuestionMarks(q.Questions[i])
	}
	return total
}

var validate = validator.New()

// Validate checks the structural invariants of a quiz definition. Beyond tag
// validation it enforces exactly one correct option per question.
func (q Quiz) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("quiz %s: %w", q.ID, err)
	}
	for i := range q.Questions {
		correct := 0
		for _, opt := range q.Questions[i].Options {
			if opt.Correct {
				correct++
			}
		}
		if correct > 1 {
			return fmt.Errorf("quiz %s: question %s has %d correct options, want at most 1", q.ID, q.Questions[i].ID, correct)
		}
	}
	return nil
}
