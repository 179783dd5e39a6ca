package models

import (
	"strings"
	"time"
)

// Answer is one question's answer inside a response
type Answer struct {
	QuestionID    string   `json:"questionId"`
	AnswerText    *string  `json:"answerText"`
	AnswerOptions []string `json:"answerOptions"`
}

// Text returns the trimmed answer text, empty when absent
func (a Answer) Text() string {
	if a.AnswerText == nil {
		return ""
	}
	return strings.TrimSpace(*a.AnswerText)
}

// IsEmpty reports whether the answer carries neither non-blank text nor options
func (a Answer) IsEmpty() bool {
	return a.Text() == "" && len(a.AnswerOptions) == 0
}

// Response is one user's submission for one survey
type Response struct {
	ID        string    `json:"id"`
	SurveyID  string    `json:"surveyId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Answers   []Answer  `json:"answers"`

	// Present when fetched through GET /responses/:id
	Survey *Survey `json:"survey,omitempty"`
	User   *User   `json:"user,omitempty"`
}

// AnswersByQuestion indexes answers by question id. When a question was answered
// twice the last answer wins.
func (r *Response) AnswersByQuestion() map[string]Answer {
	index := make(map[string]Answer, len(r.Answers))
	for _, a := range r.Answers {
		index[a.QuestionID] = a
	}
	return index
}
