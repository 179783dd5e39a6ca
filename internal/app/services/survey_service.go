package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/app/auth"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/cache"
	"github.com/yigit/engageportal/internal/pkg/events"
	"github.com/yigit/engageportal/internal/pkg/helpers"
	"github.com/yigit/engageportal/internal/pkg/validation"
)

// SurveyService defines the interface for survey definition operations
type SurveyService interface {
	List(ctx context.Context, actor *models.Actor, params dto.ListSurveysParams) (*dto.ListEnvelope[models.Survey], error)
	ListAll(ctx context.Context, actor *models.Actor, params dto.ListSurveysParams) ([]models.Survey, error)
	GetByID(ctx context.Context, actor *models.Actor, id string) (*models.Survey, error)
	Detail(ctx context.Context, actor *models.Actor, id string) (*dto.SurveyDetail, error)
	Create(ctx context.Context, actor *models.Actor, req dto.SurveyRequest) (*models.Survey, error)
	Update(ctx context.Context, actor *models.Actor, id string, req dto.SurveyRequest) (*models.Survey, error)
	Remove(ctx context.Context, actor *models.Actor, id string) error
	UpdateStatus(ctx context.Context, actor *models.Actor, id string, target models.SurveyStatus) (*models.Survey, error)
}

// surveyServiceImpl implements SurveyService
type surveyServiceImpl struct {
	backend     SurveyBackend
	cache       *cache.Cache
	authz       *auth.AuthorizationService
	publisher   events.Publisher
	notifier    Notifier
	maxPageWalk int
	now         func() time.Time
	logger      zerolog.Logger
}

// SurveyServiceOption customizes a SurveyService
type SurveyServiceOption func(*surveyServiceImpl)

// WithMaxPageWalk bounds how many pages ListAll fetches
func WithMaxPageWalk(pages int) SurveyServiceOption {
	return func(s *surveyServiceImpl) {
		if pages > 0 {
			s.maxPageWalk = pages
		}
	}
}

// WithClock replaces time.Now, for window-state computation
func WithClock(now func() time.Time) SurveyServiceOption {
	return func(s *surveyServiceImpl) { s.now = now }
}

// NewSurveyService creates a new SurveyService
func NewSurveyService(
	backend SurveyBackend,
	c *cache.Cache,
	authz *auth.AuthorizationService,
	publisher events.Publisher,
	notifier Notifier,
	logger zerolog.Logger,
	opts ...SurveyServiceOption,
) SurveyService {
	s := &surveyServiceImpl{
		backend:     backend,
		cache:       c,
		authz:       authz,
		publisher:   publisher,
		notifier:    notifier,
		maxPageWalk: defaultMaxPageWalk,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of surveys visible to the actor. Identical params with
// no intervening write are served from the cache.
func (s *surveyServiceImpl) List(ctx context.Context, actor *models.Actor, params dto.ListSurveysParams) (*dto.ListEnvelope[models.Survey], error) {
	if err := validation.Struct(params); err != nil {
		return nil, err
	}
	params.Page, params.Limit = pageParams(params.Page, params.Limit)
	query := params.Values()

	key := cache.Key(NamespaceSurveys, "list", actor.UserID, cache.ParamsPart(query))
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*dto.ListEnvelope[models.Survey], error) {
		s.logger.Debug().Str("userID", actor.UserID).Str("query", query.Encode()).Msg("Loading surveys from upstream")

		env, err := s.backend.ListSurveys(ctx, actor, query)
		if err != nil {
			return nil, fmt.Errorf("list surveys: %w", err)
		}
		normalizeEnvelope(env, params.Page, params.Limit)
		return env, nil
	})
}

// ListAll walks the pages of a listing, up to the configured bound
func (s *surveyServiceImpl) ListAll(ctx context.Context, actor *models.Actor, params dto.ListSurveysParams) ([]models.Survey, error) {
	params.Limit = helpers.MaxPageSize

	var all []models.Survey
	for page := 1; page <= s.maxPageWalk; page++ {
		params.Page = page
		env, err := s.List(ctx, actor, params)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Result...)
		if page >= env.TotalPages || len(env.Result) == 0 {
			return all, nil
		}
	}

	s.logger.Warn().
		Str("userID", actor.UserID).
		Int("maxPageWalk", s.maxPageWalk).
		Msg("Survey listing truncated at page walk bound")
	return all, nil
}

// GetByID returns one survey through the cache
func (s *surveyServiceImpl) GetByID(ctx context.Context, actor *models.Actor, id string) (*models.Survey, error) {
	if id == "" {
		return nil, apperrors.NewBadRequestError("survey id is required")
	}

	key := cache.Key(NamespaceSurveys, "item", actor.UserID, id)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*models.Survey, error) {
		survey, err := s.backend.GetSurvey(ctx, actor, id)
		if err != nil {
			return nil, fmt.Errorf("get survey %s: %w", id, err)
		}
		return survey, nil
	})
}

// Detail returns a survey with its action menu and window state
func (s *surveyServiceImpl) Detail(ctx context.Context, actor *models.Actor, id string) (*dto.SurveyDetail, error) {
	survey, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	detail := &dto.SurveyDetail{
		Survey:      *survey,
		Actions:     []models.SurveyAction{models.ActionView},
		WindowState: WindowState(survey, s.now()),
	}
	if s.authz.CanManage(actor) {
		detail.Actions = survey.Actions()
	}
	return detail, nil
}

// Create validates the payload and creates the survey upstream
func (s *surveyServiceImpl) Create(ctx context.Context, actor *models.Actor, req dto.SurveyRequest) (*models.Survey, error) {
	if err := s.authz.RequireManager(actor); err != nil {
		return nil, err
	}
	if err := ValidateSurveyRequest(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = models.SurveyStatusDraft
	}

	survey, err := s.backend.CreateSurvey(ctx, actor, req)
	if err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}

	s.logger.Info().Str("surveyID", survey.ID).Str("userID", actor.UserID).Msg("Survey created")
	s.afterWrite(ctx)
	return survey, nil
}

// Update validates the payload and replaces the survey upstream
func (s *surveyServiceImpl) Update(ctx context.Context, actor *models.Actor, id string, req dto.SurveyRequest) (*models.Survey, error) {
	if err := s.authz.RequireManager(actor); err != nil {
		return nil, err
	}
	if err := ValidateSurveyRequest(req); err != nil {
		return nil, err
	}

	survey, err := s.backend.UpdateSurvey(ctx, actor, id, req)
	if err != nil {
		return nil, fmt.Errorf("update survey %s: %w", id, err)
	}

	s.logger.Info().Str("surveyID", id).Str("userID", actor.UserID).Msg("Survey updated")
	s.afterWrite(ctx)
	return survey, nil
}

// Remove deletes the survey upstream
func (s *surveyServiceImpl) Remove(ctx context.Context, actor *models.Actor, id string) error {
	if err := s.authz.RequireManager(actor); err != nil {
		return err
	}
	if err := s.backend.DeleteSurvey(ctx, actor, id); err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}

	s.logger.Info().Str("surveyID", id).Str("userID", actor.UserID).Msg("Survey deleted")
	s.afterWrite(ctx)
	return nil
}

// UpdateStatus moves a survey along its status graph. The current status is
// read fresh from upstream; illegal moves are rejected without a PATCH.
func (s *surveyServiceImpl) UpdateStatus(ctx context.Context, actor *models.Actor, id string, target models.SurveyStatus) (*models.Survey, error) {
	if err := s.authz.RequireManager(actor); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, (&apperrors.ValidationError{}).AddField("status", "must be one of: draft active paused archived")
	}

	current, err := s.backend.GetSurvey(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("get survey %s: %w", id, err)
	}
	if current.Status == target {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("survey is already %s", target))
	}
	if !current.CanTransition(target) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("cannot change survey status from %s to %s", current.Status, target)).
			WithDetails(map[string]interface{}{"allowed": current.NextStatuses()})
	}

	updated, err := s.backend.UpdateSurveyStatus(ctx, actor, id, target)
	if err != nil {
		return nil, fmt.Errorf("update survey %s status: %w", id, err)
	}

	s.logger.Info().
		Str("surveyID", id).
		Str("from", string(current.Status)).
		Str("to", string(target)).
		Str("userID", actor.UserID).
		Msg("Survey status changed")

	s.afterWrite(ctx)
	s.publish(ctx, events.Event{
		ID:      uuid.NewString(),
		Subject: events.SubjectSurveyStatus,
		Payload: events.SurveyStatusChanged{
			SurveyID:  id,
			From:      string(current.Status),
			To:        string(target),
			ChangedBy: actor.UserID,
			ChangedAt: s.now().UTC(),
		},
	})
	return updated, nil
}

// afterWrite drops every cached survey and response view and tells clients to re-fetch
func (s *surveyServiceImpl) afterWrite(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, NamespaceSurveys, NamespaceResponses); err != nil {
		s.logger.Warn().Err(err).Msg("Survey cache invalidation incomplete")
	}
	s.notifier.Broadcast(NamespaceSurveys, NamespaceResponses)
}

func (s *surveyServiceImpl) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("subject", event.Subject).Msg("Failed to publish event")
	}
}

// ValidateSurveyRequest checks tags and the cross-field rules of a survey payload
func ValidateSurveyRequest(req dto.SurveyRequest) error {
	verr := &apperrors.ValidationError{}
	if err := validation.Struct(req); err != nil {
		if tagErr, ok := err.(*apperrors.ValidationError); ok {
			verr = tagErr
		} else {
			return err
		}
	}

	ids := make(map[string]bool, len(req.QuestionItems))
	for i, q := range req.QuestionItems {
		field := fmt.Sprintf("questionItems[%d]", i)
		if q.ID != "" {
			if ids[q.ID] {
				verr.AddField(field+".id", "duplicates another question id")
			}
			ids[q.ID] = true
		}
		if q.Type.IsChoice() && len(q.Options) < 2 {
			verr.AddField(field+".options", "choice questions need at least 2 options")
		}
		if q.Type.IsScale() && q.MinValue != nil && q.MaxValue != nil && *q.MinValue >= *q.MaxValue {
			verr.AddField(field+".maxValue", "must be greater than minValue")
		}
	}

	if req.SurveyType == models.SurveyTypeRapidEnquiry {
		if req.StartAt != nil && req.EndAt != nil && !req.EndAt.After(*req.StartAt) {
			verr.AddField("endAt", "must be after startAt")
		}
	} else if req.StartAt != nil || req.EndAt != nil {
		verr.AddField("startAt", "only rapid-enquiry surveys have a response window")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
