package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
)

// ListSurveys calls GET /surveys
func (c *Client) ListSurveys(ctx context.Context, actor *models.Actor, query url.Values) (*dto.ListEnvelope[models.Survey], error) {
	var env dto.ListEnvelope[models.Survey]
	if err := c.do(ctx, actor, request{method: http.MethodGet, path: "/surveys", query: query}, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// GetSurvey calls GET /surveys/:id
func (c *Client) GetSurvey(ctx context.Context, actor *models.Actor, id string) (*models.Survey, error) {
	var env dto.ItemEnvelope[models.Survey]
	if err := c.do(ctx, actor, request{method: http.MethodGet, path: resourcePath("surveys", id)}, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

// CreateSurvey calls POST /surveys
func (c *Client) CreateSurvey(ctx context.Context, actor *models.Actor, payload dto.SurveyRequest) (*models.Survey, error) {
	var env dto.ItemEnvelope[models.Survey]
	if err := c.do(ctx, actor, request{method: http.MethodPost, path: "/surveys", body: payload}, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

// UpdateSurvey calls PUT /surveys/:id
func (c *Client) UpdateSurvey(ctx context.Context, actor *models.Actor, id string, payload dto.SurveyRequest) (*models.Survey, error) {
	var env dto.ItemEnvelope[models.Survey]
	if err := c.do(ctx, actor, request{method: http.MethodPut, path: resourcePath("surveys", id), body: payload}, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

// DeleteSurvey calls DELETE /surveys/:id
func (c *Client) DeleteSurvey(ctx context.Context, actor *models.Actor, id string) error {
	return c.do(ctx, actor, request{method: http.MethodDelete, path: resourcePath("surveys", id)}, nil)
}

// UpdateSurveyStatus calls PATCH /surveys/:id/status
func (c *Client) UpdateSurveyStatus(ctx context.Context, actor *models.Actor, id string, status models.SurveyStatus) (*models.Survey, error) {
	var env dto.ItemEnvelope[models.Survey]
	r := request{
		method: http.MethodPatch,
		path:   resourcePath("surveys", id, "status"),
		body:   dto.UpdateStatusRequest{Status: status},
	}
	if err := c.do(ctx, actor, r, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

type answerPayload struct {
	QuestionID    string   `json:"questionId"`
	AnswerText    *string  `json:"answerText,omitempty"`
	AnswerOptions []string `json:"answerOptions,omitempty"`
	UserID        string   `json:"userId,omitempty"`
}

type submitPayload struct {
	Answers []answerPayload `json:"answers"`
}

// SubmitAnswers calls POST /surveys/:id/answers, forwarding the idempotency key
func (c *Client) SubmitAnswers(ctx context.Context, actor *models.Actor, surveyID string, answers []models.Answer, idempotencyKey string) (*models.Response, error) {
	payload := submitPayload{Answers: make([]answerPayload, 0, len(answers))}
	for _, a := range answers {
		payload.Answers = append(payload.Answers, answerPayload{
			QuestionID:    a.QuestionID,
			AnswerText:    a.AnswerText,
			AnswerOptions: a.AnswerOptions,
			UserID:        actor.UserID,
		})
	}

	r := request{
		method: http.MethodPost,
		path:   resourcePath("surveys", surveyID, "answers"),
		body:   payload,
	}
	if idempotencyKey != "" {
		r.headers = map[string]string{dto.IdempotencyHeader: idempotencyKey}
	}

	var env dto.ItemEnvelope[models.Response]
	if err := c.do(ctx, actor, r, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

// GetResponse calls GET /responses/:id
func (c *Client) GetResponse(ctx context.Context, actor *models.Actor, id string) (*models.Response, error) {
	var env dto.ItemEnvelope[models.Response]
	if err := c.do(ctx, actor, request{method: http.MethodGet, path: resourcePath("responses", id)}, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}
