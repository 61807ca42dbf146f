package app

import (
	"fmt"
	"math"

	"quiz-attempt-service/internal/domain"
)

// Score evaluates a submitted attempt against its quiz definition. It is a
// pure function and never fails: a question whose definition carries no
// correct-option marker scores as unattempted and surfaces a warning on the
// submission instead of blocking the user-facing flow.
func Score(state domain.AttemptState, quiz domain.Quiz) domain.Submission {
	maximum := quiz.MaximumMarks()
	answers := make([]domain.AnswerResult, 0, quiz.TotalQuestions())

	var total float64
	var correct, wrong, unattempted int
	var warnings []string

	for i := range quiz.Questions {
		question := quiz.Questions[i]
		result := domain.AnswerResult{QuestionID: question.ID}
		selected, present := state.Answers[question.ID]
		correctID, hasKey := question.CorrectOptionID()

		switch {
		case !present || selected == nil:
			// Absent key and the explicit cleared sentinel score identically.
			unattempted++
		case !hasKey:
			result.SelectedOptionID = selected
			unattempted++
			warnings = append(warnings, fmt.Sprintf("question %s has no correct option marked; scored as unattempted", question.ID))
		case *selected == correctID:
			result.SelectedOptionID = selected
			isCorrect := true
			result.Correct = &isCorrect
			result.MarksAwarded = quiz.QuestionMarks(question)
			correct++
		default:
			result.SelectedOptionID = selected
			isCorrect := false
			result.Correct = &isCorrect
			if quiz.Negative.Enabled {
				result.MarksAwarded = -quiz.Negative.MarksPerWrong
			}
			wrong++
		}

		total += result.MarksAwarded
		answers = append(answers, result)
	}

	if quiz.FloorTotalAtZero && total < 0 {
		total = 0
	}

	// The displayed percentage clamps at zero; the raw total does not unless
	// the quiz opts into flooring.
	var percentage float64
	if maximum > 0 {
		percentage = round1(100 * math.Max(total, 0) / maximum)
	}

	submittedAt := state.StartedAt
	if state.SubmittedAt != nil {
		submittedAt = *state.SubmittedAt
	}

	return domain.Submission{
		QuizID:             state.QuizID,
		UserID:             state.UserID,
		AttemptNumber:      state.AttemptNumber,
		StartedAt:          state.StartedAt,
		SubmittedAt:        submittedAt,
		TimeSpentSeconds:   state.TimeSpentSeconds,
		Answers:            answers,
		TotalMarksObtained: total,
		TotalMarksMaximum:  maximum,
		PercentageScore:    percentage,
		CorrectCount:       correct,
		WrongCount:         wrong,
		UnattemptedCount:   unattempted,
		MarkedForReview:    state.MarkedForReview,
		Status:             domain.AttemptEvaluated,
		Warnings:           warnings,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
