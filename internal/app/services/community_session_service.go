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
	"github.com/yigit/engageportal/internal/pkg/validation"
)

// CommunitySessionService defines the interface for community session operations
type CommunitySessionService interface {
	List(ctx context.Context, actor *models.Actor, params dto.ListSessionsParams) (*dto.ListEnvelope[models.CommunitySession], error)
	GetByID(ctx context.Context, actor *models.Actor, id string) (*models.CommunitySession, error)
	Create(ctx context.Context, actor *models.Actor, req dto.CreateSessionRequest) (*models.CommunitySession, error)
	Remove(ctx context.Context, actor *models.Actor, id string) error
}

// communitySessionServiceImpl implements CommunitySessionService
type communitySessionServiceImpl struct {
	backend  CommunitySessionBackend
	cache    *cache.Cache
	authz    *auth.AuthorizationService
	notifier Notifier
	logger   zerolog.Logger
}

// NewCommunitySessionService creates a new CommunitySessionService
func NewCommunitySessionService(
	backend CommunitySessionBackend,
	c *cache.Cache,
	authz *auth.AuthorizationService,
	notifier Notifier,
	logger zerolog.Logger,
) CommunitySessionService {
	return &communitySessionServiceImpl{
		backend:  backend,
		cache:    c,
		authz:    authz,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns one page of sessions
func (s *communitySessionServiceImpl) List(ctx context.Context, actor *models.Actor, params dto.ListSessionsParams) (*dto.ListEnvelope[models.CommunitySession], error) {
	if err := validation.Struct(params); err != nil {
		return nil, err
	}
	params.Page, params.Limit = pageParams(params.Page, params.Limit)
	query := params.Values()

	key := cache.Key(NamespaceSessions, "list", actor.UserID, cache.ParamsPart(query))
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*dto.ListEnvelope[models.CommunitySession], error) {
		env, err := s.backend.ListCommunitySessions(ctx, actor, query)
		if err != nil {
			return nil, fmt.Errorf("list community sessions: %w", err)
		}
		normalizeEnvelope(env, params.Page, params.Limit)
		return env, nil
	})
}

// GetByID returns one session
func (s *communitySessionServiceImpl) GetByID(ctx context.Context, actor *models.Actor, id string) (*models.CommunitySession, error) {
	if id == "" {
		return nil, apperrors.NewBadRequestError("session id is required")
	}

	key := cache.Key(NamespaceSessions, "item", actor.UserID, id)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*models.CommunitySession, error) {
		session, err := s.backend.GetCommunitySession(ctx, actor, id)
		if err != nil {
			return nil, fmt.Errorf("get community session %s: %w", id, err)
		}
		return session, nil
	})
}

// Create records a new session
func (s *communitySessionServiceImpl) Create(ctx context.Context, actor *models.Actor, req dto.CreateSessionRequest) (*models.CommunitySession, error) {
	if err := s.authz.RequireManager(actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	session, err := s.backend.CreateCommunitySession(ctx, actor, req)
	if err != nil {
		return nil, fmt.Errorf("create community session: %w", err)
	}

	s.logger.Info().Str("sessionID", session.ID).Str("userID", actor.UserID).Msg("Community session created")
	s.afterWrite(ctx)
	return session, nil
}

// Remove deletes a session
func (s *communitySessionServiceImpl) Remove(ctx context.Context, actor *models.Actor, id string) error {
	if err := s.authz.RequireManager(actor); err != nil {
		return err
	}
	if err := s.backend.DeleteCommunitySession(ctx, actor, id); err != nil {
		return fmt.Errorf("delete community session %s: %w", id, err)
	}

	s.logger.Info().Str("sessionID", id).Str("userID", actor.UserID).Msg("Community session deleted")
	s.afterWrite(ctx)
	return nil
}

func (s *communitySessionServiceImpl) afterWrite(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, NamespaceSessions); err != nil {
		s.logger.Warn().Err(err).Msg("Session cache invalidation incomplete")
	}
	s.notifier.Broadcast(NamespaceSessions)
}
