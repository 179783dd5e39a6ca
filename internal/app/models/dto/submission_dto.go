package dto

import (
	"time"

	"github.com/yigit/engageportal/internal/app/models"
)

// IdempotencyHeader carries the client's submission key, and is forwarded upstream
const IdempotencyHeader = "Idempotency-Key"

// AnswerInput is one answer of a submission
type AnswerInput struct {
	QuestionID    string   `json:"questionId" validate:"required"`
	AnswerText    *string  `json:"answerText,omitempty"`
	AnswerOptions []string `json:"answerOptions,omitempty"`
}

// SubmitAnswersRequest is the body of POST /surveys/:id/answers
type SubmitAnswersRequest struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
}

// ToAnswers converts the inputs to model answers
func (r SubmitAnswersRequest) ToAnswers() []models.Answer {
	answers := make([]models.Answer, 0, len(r.Answers))
	for _, in := range r.Answers {
		answers = append(answers, models.Answer{
			QuestionID:    in.QuestionID,
			AnswerText:    in.AnswerText,
			AnswerOptions: in.AnswerOptions,
		})
	}
	return answers
}

// SubmissionResult is the outcome of a submission. Replayed is set when the
// response came from the idempotency ledger instead of a new upstream POST.
type SubmissionResult struct {
	Response       models.Response `json:"response"`
	IdempotencyKey string          `json:"idempotencyKey"`
	Replayed       bool            `json:"replayed"`
}

// NoAnswerProvided is the review placeholder for unanswered questions
const NoAnswerProvided = "No answer provided"

// ReviewRow pairs a question with its answer
type ReviewRow struct {
	QuestionID    string              `json:"questionId"`
	QuestionTitle string              `json:"questionTitle"`
	QuestionType  models.QuestionType `json:"questionType"`
	Required      bool                `json:"required"`
	Answered      bool                `json:"answered"`
	Answer        string              `json:"answer"`
	AnswerOptions []string            `json:"answerOptions,omitempty"`
}

// ResponseReview is a response joined with its survey's questions, in question order
type ResponseReview struct {
	ResponseID  string      `json:"responseId"`
	SurveyID    string      `json:"surveyId"`
	SurveyTitle string      `json:"surveyTitle"`
	UserID      string      `json:"userId"`
	UserName    string      `json:"userName,omitempty"`
	SubmittedAt time.Time   `json:"submittedAt"`
	Rows        []ReviewRow `json:"rows"`
}
