package services

import (
	"context"
	"net/url"

	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/helpers"
)

// Cache namespaces. A write invalidates whole namespaces; nothing is patched.
const (
	NamespaceSurveys       = "surveys"
	NamespaceResponses     = "responses"
	NamespaceSessions      = "community-sessions"
	NamespaceNotifications = "notifications"
	defaultMaxPageWalk     = 20
	submissionKeyMaxLength = 128
)

// SurveyBackend is the upstream surface used for survey definitions
type SurveyBackend interface {
	ListSurveys(ctx context.Context, actor *models.Actor, query url.Values) (*dto.ListEnvelope[models.Survey], error)
	GetSurvey(ctx context.Context, actor *models.Actor, id string) (*models.Survey, error)
	CreateSurvey(ctx context.Context, actor *models.Actor, payload dto.SurveyRequest) (*models.Survey, error)
	UpdateSurvey(ctx context.Context, actor *models.Actor, id string, payload dto.SurveyRequest) (*models.Survey, error)
	DeleteSurvey(ctx context.Context, actor *models.Actor, id string) error
	UpdateSurveyStatus(ctx context.Context, actor *models.Actor, id string, status models.SurveyStatus) (*models.Survey, error)
}

// ResponseBackend is the upstream surface used for submissions and reviews
type ResponseBackend interface {
	SubmitAnswers(ctx context.Context, actor *models.Actor, surveyID string, answers []models.Answer, idempotencyKey string) (*models.Response, error)
	GetResponse(ctx context.Context, actor *models.Actor, id string) (*models.Response, error)
}

// CommunitySessionBackend is the upstream surface used for community sessions
type CommunitySessionBackend interface {
	ListCommunitySessions(ctx context.Context, actor *models.Actor, query url.Values) (*dto.ListEnvelope[models.CommunitySession], error)
	GetCommunitySession(ctx context.Context, actor *models.Actor, id string) (*models.CommunitySession, error)
	CreateCommunitySession(ctx context.Context, actor *models.Actor, payload dto.CreateSessionRequest) (*models.CommunitySession, error)
	DeleteCommunitySession(ctx context.Context, actor *models.Actor, id string) error
}

// NotificationBackend is the upstream surface used for notifications
type NotificationBackend interface {
	ListNotifications(ctx context.Context, actor *models.Actor, query url.Values) (*dto.MetaEnvelope[models.Notification], error)
	MarkNotificationRead(ctx context.Context, actor *models.Actor, id string) (*models.Notification, error)
}

// Notifier pushes invalidation hints to connected SPAs
type Notifier interface {
	NotifyUser(userID string, namespaces ...string)
	Broadcast(namespaces ...string)
}

// NopNotifier is used when realtime delivery is disabled
type NopNotifier struct{}

// NotifyUser implements Notifier
func (NopNotifier) NotifyUser(string, ...string) {}

// Broadcast implements Notifier
func (NopNotifier) Broadcast(...string) {}

// normalizeEnvelope fills pagination fields the upstream omitted, recomputes
// totalPages as ceil(total/limit) and clamps the page into [1, totalPages]
func normalizeEnvelope[T any](env *dto.ListEnvelope[T], requestedPage, requestedLimit int) {
	if env.Result == nil {
		env.Result = []T{}
	}
	env.Apply(resolvePage(env.Total, env.Page, env.Limit, requestedPage, requestedLimit, len(env.Result)))
}

// resolvePage builds pagination for a page of n items. A missing total is
// estimated from the items seen so far; a full page counts one extra item
// so callers still find the next page.
func resolvePage(total int64, page, limit, requestedPage, requestedLimit, n int) dto.PaginationInfo {
	if limit <= 0 {
		limit = requestedLimit
	}
	if page <= 0 {
		page = requestedPage
	}
	if page < helpers.DefaultPage {
		page = helpers.DefaultPage
	}
	limit = helpers.NormalizeLimit(limit)

	if total <= 0 && n > 0 {
		total = int64((page-1)*limit + n)
		if n >= limit {
			total++
		}
	}
	return helpers.NewPaginationInfo(total, page, limit)
}

// pageParams applies defaults to requested pagination
func pageParams(page, limit int) (int, int) {
	if page < helpers.DefaultPage {
		page = helpers.DefaultPage
	}
	return page, helpers.NormalizeLimit(limit)
}
