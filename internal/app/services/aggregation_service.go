package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/app/auth"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/cache"
	"golang.org/x/sync/errgroup"
)

// AggregationService derives the per-user views built on top of survey and response data
type AggregationService interface {
	Partition(ctx context.Context, actor *models.Actor, surveyType models.SurveyType) (*dto.SurveyPartition, error)
	Review(ctx context.Context, actor *models.Actor, responseID string) (*dto.ResponseReview, error)
}

// aggregationServiceImpl implements AggregationService
type aggregationServiceImpl struct {
	surveys   SurveyService
	responses ResponseBackend
	cache     *cache.Cache
	authz     *auth.AuthorizationService
	logger    zerolog.Logger
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(
	surveys SurveyService,
	responses ResponseBackend,
	c *cache.Cache,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) AggregationService {
	return &aggregationServiceImpl{
		surveys:   surveys,
		responses: responses,
		cache:     c,
		authz:     authz,
		logger:    logger,
	}
}

// Partition splits the actor's eligible active surveys into those still
// available and those already answered
func (s *aggregationServiceImpl) Partition(ctx context.Context, actor *models.Actor, surveyType models.SurveyType) (*dto.SurveyPartition, error) {
	if surveyType != "" && !surveyType.Valid() {
		return nil, (&apperrors.ValidationError{}).AddField("surveyType", "must be one of: general report-form rapid-enquiry")
	}

	var completed, active []models.Survey
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		completed, err = s.surveys.ListAll(gctx, actor, dto.ListSurveysParams{
			SurveyType: surveyType,
			Responded:  dto.Bool(true),
		})
		return err
	})
	g.Go(func() error {
		var err error
		active, err = s.surveys.ListAll(gctx, actor, dto.ListSurveysParams{
			Status:     models.SurveyStatusActive,
			SurveyType: surveyType,
			Allowed:    dto.Bool(true),
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available := AvailableSurveys(active, completed)
	s.logger.Debug().
		Str("userID", actor.UserID).
		Str("surveyType", string(surveyType)).
		Int("available", len(available)).
		Int("completed", len(completed)).
		Msg("Survey partition computed")

	if completed == nil {
		completed = []models.Survey{}
	}
	return &dto.SurveyPartition{Available: available, Completed: completed}, nil
}

// Review joins a response with its survey's questions
func (s *aggregationServiceImpl) Review(ctx context.Context, actor *models.Actor, responseID string) (*dto.ResponseReview, error) {
	if responseID == "" {
		return nil, apperrors.NewBadRequestError("response id is required")
	}

	key := cache.Key(NamespaceResponses, "item", actor.UserID, responseID)
	response, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*models.Response, error) {
		r, err := s.responses.GetResponse(ctx, actor, responseID)
		if err != nil {
			return nil, fmt.Errorf("get response %s: %w", responseID, err)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if !s.authz.CanViewResponse(actor, response) {
		return nil, apperrors.NewForbiddenError("you cannot review this response")
	}

	survey := response.Survey
	if survey == nil || len(survey.QuestionItems) == 0 {
		survey, err = s.surveys.GetByID(ctx, actor, response.SurveyID)
		if err != nil {
			return nil, err
		}
	}

	review := BuildReview(survey, response)
	return &review, nil
}
