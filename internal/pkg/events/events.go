// Package events publishes domain events for other services (analytics,
// reporting) to consume.
package events

import (
	"context"
	"time"
)

// Event subjects, relative to the configured prefix
const (
	SubjectResponseSubmitted = "survey.response.submitted"
	SubjectSurveyStatus      = "survey.status.changed"
)

// Event is one published domain event
type Event struct {
	// ID deduplicates redeliveries of the same event
	ID      string
	Subject string
	Payload interface{}
}

// ResponseSubmitted is published after a submission is accepted upstream
type ResponseSubmitted struct {
	ResponseID     string    `json:"response_id"`
	SurveyID       string    `json:"survey_id"`
	SurveyType     string    `json:"survey_type"`
	UserID         string    `json:"user_id"`
	AnswerCount    int       `json:"answer_count"`
	IdempotencyKey string    `json:"idempotency_key"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// SurveyStatusChanged is published after a status transition is accepted upstream
type SurveyStatusChanged struct {
	SurveyID  string    `json:"survey_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// Publisher delivers events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event, for deployments without a broker
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher
func (NopPublisher) Close() error { return nil }
