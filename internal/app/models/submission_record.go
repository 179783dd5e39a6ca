package models

import "time"

// SubmissionRecord is an idempotency-ledger row: the response produced by the
// first successful submission under a key
type SubmissionRecord struct {
	IdempotencyKey string    `json:"idempotencyKey" db:"idempotency_key"`
	SurveyID       string    `json:"surveyId" db:"survey_id"`
	UserID         string    `json:"userId" db:"user_id"`
	ResponseID     string    `json:"responseId" db:"response_id"`
	Payload        []byte    `json:"-" db:"response_payload"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
