package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/app/auth"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/app/repositories"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/cache"
	"github.com/yigit/engageportal/internal/pkg/events"
	"github.com/yigit/engageportal/internal/pkg/validation"
	"golang.org/x/sync/singleflight"
)

// SubmissionService defines the interface for submitting survey answers
type SubmissionService interface {
	Submit(ctx context.Context, actor *models.Actor, surveyID string, req dto.SubmitAnswersRequest, idempotencyKey string) (*dto.SubmissionResult, error)
}

// submissionServiceImpl implements SubmissionService
type submissionServiceImpl struct {
	surveys   SurveyService
	backend   ResponseBackend
	ledger    repositories.SubmissionLedger
	cache     *cache.Cache
	authz     *auth.AuthorizationService
	publisher events.Publisher
	notifier  Notifier
	inflight  singleflight.Group
	logger    zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	surveys SurveyService,
	backend ResponseBackend,
	ledger repositories.SubmissionLedger,
	c *cache.Cache,
	authz *auth.AuthorizationService,
	publisher events.Publisher,
	notifier Notifier,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionServiceImpl{
		surveys:   surveys,
		backend:   backend,
		ledger:    ledger,
		cache:     c,
		authz:     authz,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Submit checks the answers locally, then posts them upstream exactly once per
// idempotency key. A key that already produced a response replays it.
func (s *submissionServiceImpl) Submit(ctx context.Context, actor *models.Actor, surveyID string, req dto.SubmitAnswersRequest, idempotencyKey string) (*dto.SubmissionResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	if len(key) > submissionKeyMaxLength {
		return nil, apperrors.NewBadRequestError(
			fmt.Sprintf("%s must be at most %d characters", dto.IdempotencyHeader, submissionKeyMaxLength))
	}

	// concurrent requests with the same key share one upstream POST
	flight := strings.Join([]string{actor.UserID, surveyID, key}, "\x00")
	// Do runs the function on the caller that started the flight; everyone
	// else waiting on it receives a replay
	leader := false
	v, err, _ := s.inflight.Do(flight, func() (interface{}, error) {
		leader = true
		return s.submitOnce(ctx, actor, surveyID, req.ToAnswers(), key)
	})
	if err != nil {
		return nil, err
	}

	result := *v.(*dto.SubmissionResult)
	if !leader {
		result.Replayed = true
	}
	return &result, nil
}

func (s *submissionServiceImpl) submitOnce(ctx context.Context, actor *models.Actor, surveyID string, answers []models.Answer, key string) (*dto.SubmissionResult, error) {
	if replay, err := s.replay(ctx, actor, surveyID, key); err != nil || replay != nil {
		return replay, err
	}

	survey, err := s.surveys.GetByID(ctx, actor, surveyID)
	if err != nil {
		return nil, err
	}
	if err := CheckSubmission(survey, answers); err != nil {
		s.logger.Debug().Err(err).Str("surveyID", surveyID).Str("userID", actor.UserID).Msg("Submission rejected locally")
		return nil, err
	}
	if err := s.authz.RequireRespondent(actor, survey); err != nil {
		return nil, err
	}

	response, err := s.backend.SubmitAnswers(ctx, actor, surveyID, answers, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewCustomError(apperrors.ErrAlreadySubmitted,
				apperrors.UserMessage(err, "you have already submitted this survey"))
		}
		return nil, fmt.Errorf("submit answers to survey %s: %w", surveyID, err)
	}
	if response.SurveyID == "" {
		response.SurveyID = surveyID
	}
	if response.UserID == "" {
		response.UserID = actor.UserID
	}

	s.record(ctx, key, response)

	if err := s.cache.Invalidate(ctx, NamespaceResponses, NamespaceSurveys); err != nil {
		s.logger.Warn().Err(err).Msg("Cache invalidation after submission incomplete")
	}
	s.notifier.NotifyUser(actor.UserID, NamespaceResponses, NamespaceSurveys)

	if err := s.publisher.Publish(ctx, events.Event{
		ID:      key,
		Subject: events.SubjectResponseSubmitted,
		Payload: events.ResponseSubmitted{
			ResponseID:     response.ID,
			SurveyID:       surveyID,
			SurveyType:     string(survey.SurveyType),
			UserID:         actor.UserID,
			AnswerCount:    len(answers),
			IdempotencyKey: key,
			SubmittedAt:    response.CreatedAt,
		},
	}); err != nil {
		s.logger.Error().Err(err).Str("responseID", response.ID).Msg("Failed to publish submission event")
	}

	s.logger.Info().
		Str("surveyID", surveyID).
		Str("responseID", response.ID).
		Str("userID", actor.UserID).
		Msg("Survey response submitted")

	return &dto.SubmissionResult{Response: *response, IdempotencyKey: key}, nil
}

// replay returns the recorded result for key, nil when there is none
func (s *submissionServiceImpl) replay(ctx context.Context, actor *models.Actor, surveyID, key string) (*dto.SubmissionResult, error) {
	rec, err := s.ledger.FindByKey(ctx, key)
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up idempotency key: %w", err)
	}
	if rec.SurveyID != surveyID || rec.UserID != actor.UserID {
		return nil, apperrors.NewConflictError(dto.IdempotencyHeader + " was already used for a different submission")
	}

	var response models.Response
	if err := json.Unmarshal(rec.Payload, &response); err != nil {
		return nil, fmt.Errorf("decode recorded submission: %w", err)
	}

	s.logger.Info().Str("surveyID", surveyID).Str("responseID", rec.ResponseID).Msg("Replaying recorded submission")
	return &dto.SubmissionResult{Response: response, IdempotencyKey: key, Replayed: true}, nil
}

// record stores the outcome under key. The response already exists upstream,
// so a ledger failure is logged rather than reported to the caller.
func (s *submissionServiceImpl) record(ctx context.Context, key string, response *models.Response) {
	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Error().Err(err).Str("responseID", response.ID).Msg("Failed to encode response for ledger")
		return
	}
	err = s.ledger.Save(ctx, &models.SubmissionRecord{
		IdempotencyKey: key,
		SurveyID:       response.SurveyID,
		UserID:         response.UserID,
		ResponseID:     response.ID,
		Payload:        payload,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Str("responseID", response.ID).Msg("Failed to record submission")
	}
}

// MissingRequired lists the titles of required questions without a non-empty answer
func MissingRequired(questions []models.Question, answers []models.Answer) []string {
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		if !a.IsEmpty() {
			answered[a.QuestionID] = true
		}
	}

	var missing []string
	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			title := strings.TrimSpace(q.Title)
			if title == "" {
				title = q.ID
			}
			missing = append(missing, title)
		}
	}
	return missing
}

// CheckSubmission runs every local check on a submission: the survey must be
// accepting responses, required questions must be answered and each answer
// must fit its question.
func CheckSubmission(survey *models.Survey, answers []models.Answer) error {
	if survey.Status != models.SurveyStatusActive {
		return apperrors.NewCustomError(apperrors.ErrSurveyNotAccepting, "survey is not accepting responses")
	}

	if missing := MissingRequired(survey.QuestionItems, answers); len(missing) > 0 {
		return &apperrors.ValidationError{MissingQuestions: missing}
	}

	questions := make(map[string]models.Question, len(survey.QuestionItems))
	for _, q := range survey.QuestionItems {
		questions[q.ID] = q
	}

	verr := &apperrors.ValidationError{}
	for i, a := range answers {
		field := fmt.Sprintf("answers[%d]", i)
		q, ok := questions[a.QuestionID]
		if !ok {
			verr.AddField(field+".questionId", "does not belong to this survey")
			continue
		}
		if a.IsEmpty() {
			continue
		}
		checkAnswerShape(verr, field, q, a)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func checkAnswerShape(verr *apperrors.ValidationError, field string, q models.Question, a models.Answer) {
	switch {
	case q.Type.IsChoice():
		if q.Type == models.QuestionSingleChoice && len(a.AnswerOptions) > 1 {
			verr.AddField(field+".answerOptions", "only one option may be selected")
		}
		for _, opt := range a.AnswerOptions {
			if !q.HasOption(opt) {
				verr.AddField(field+".answerOptions", fmt.Sprintf("%q is not an option of this question", opt))
			}
		}
	case q.Type == models.QuestionRating && len(q.Options) > 0:
		// labelled ratings are answered with one of their labels
		if len(a.AnswerOptions) > 1 {
			verr.AddField(field+".answerOptions", "only one option may be selected")
			return
		}
		value := a.Text()
		if len(a.AnswerOptions) == 1 {
			value = a.AnswerOptions[0]
		}
		if !q.HasOption(value) {
			verr.AddField(field+".answerOptions", fmt.Sprintf("%q is not an option of this question", value))
		}
	case q.Type.IsScale():
		value := a.Text()
		if value == "" && len(a.AnswerOptions) == 1 {
			value = strings.TrimSpace(a.AnswerOptions[0])
		}
		n, err := strconv.Atoi(value)
		min, max := q.Bounds()
		if err != nil || n < min || n > max {
			verr.AddField(field+".answerText", fmt.Sprintf("must be a whole number between %d and %d", min, max))
		}
	}
}
