package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/cache"
	"github.com/yigit/engageportal/internal/pkg/validation"
)

// NotificationService defines the interface for the notification feed
type NotificationService interface {
	List(ctx context.Context, actor *models.Actor, params dto.ListNotificationsParams) (*dto.MetaEnvelope[models.Notification], error)
	MarkRead(ctx context.Context, actor *models.Actor, id string) (*models.Notification, error)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	backend  NotificationBackend
	cache    *cache.Cache
	notifier Notifier
	logger   zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(backend NotificationBackend, c *cache.Cache, notifier Notifier, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		backend:  backend,
		cache:    c,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns one page of the feed. meta.hasMore drives infinite scroll.
func (s *notificationServiceImpl) List(ctx context.Context, actor *models.Actor, params dto.ListNotificationsParams) (*dto.MetaEnvelope[models.Notification], error) {
	if err := validation.Struct(params); err != nil {
		return nil, err
	}
	params.Page, params.Limit = pageParams(params.Page, params.Limit)
	query := params.Values()

	key := cache.Key(NamespaceNotifications, "list", actor.UserID, cache.ParamsPart(query))
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*dto.MetaEnvelope[models.Notification], error) {
		env, err := s.backend.ListNotifications(ctx, actor, query)
		if err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		normalizeMeta(env, params.Page, params.Limit)
		return env, nil
	})
}

// normalizeMeta fills meta fields the upstream omitted
func normalizeMeta(env *dto.MetaEnvelope[models.Notification], requestedPage, requestedLimit int) {
	if env.Result == nil {
		env.Result = []models.Notification{}
	}
	meta := &env.Meta
	info := resolvePage(meta.Total, meta.Page, meta.Limit, requestedPage, requestedLimit, len(env.Result))
	meta.Total = info.Total
	meta.Page = info.Page
	meta.Limit = info.Limit
	meta.TotalPages = info.TotalPages
	meta.HasMore = meta.Page < meta.TotalPages
}

// MarkRead marks one notification read and refreshes the user's feed
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor *models.Actor, id string) (*models.Notification, error) {
	if id == "" {
		return nil, apperrors.NewBadRequestError("notification id is required")
	}

	notification, err := s.backend.MarkNotificationRead(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("mark notification %s read: %w", id, err)
	}
	if notification.ID == "" {
		notification.ID = id
		notification.IsRead = true
	}

	if err := s.cache.Invalidate(ctx, NamespaceNotifications); err != nil {
		s.logger.Warn().Err(err).Msg("Notification cache invalidation incomplete")
	}
	s.notifier.NotifyUser(actor.UserID, NamespaceNotifications)
	return notification, nil
}
