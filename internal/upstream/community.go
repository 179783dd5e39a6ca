package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
)

// ListCommunitySessions calls GET /community-sessions
func (c *Client) ListCommunitySessions(ctx context.Context, actor *models.Actor, query url.Values) (*dto.ListEnvelope[models.CommunitySession], error) {
	var env dto.ListEnvelope[models.CommunitySession]
	if err := c.do(ctx, actor, request{method: http.MethodGet, path: "/community-sessions", query: query}, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// GetCommunitySession calls GET /community-sessions/:id
func (c *Client) GetCommunitySession(ctx context.Context, actor *models.Actor, id string) (*models.CommunitySession, error) {
	var env dto.ItemEnvelope[models.CommunitySession]
	if err := c.do(ctx, actor, request{method: http.MethodGet, path: resourcePath("community-sessions", id)}, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

// CreateCommunitySession calls POST /community-sessions
func (c *Client) CreateCommunitySession(ctx context.Context, actor *models.Actor, payload dto.CreateSessionRequest) (*models.CommunitySession, error) {
	var env dto.ItemEnvelope[models.CommunitySession]
	if err := c.do(ctx, actor, request{method: http.MethodPost, path: "/community-sessions", body: payload}, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

// DeleteCommunitySession calls DELETE /community-sessions/:id
func (c *Client) DeleteCommunitySession(ctx context.Context, actor *models.Actor, id string) error {
	return c.do(ctx, actor, request{method: http.MethodDelete, path: resourcePath("community-sessions", id)}, nil)
}

// ListNotifications calls GET /notifications
func (c *Client) ListNotifications(ctx context.Context, actor *models.Actor, query url.Values) (*dto.MetaEnvelope[models.Notification], error) {
	var env dto.MetaEnvelope[models.Notification]
	if err := c.do(ctx, actor, request{method: http.MethodGet, path: "/notifications", query: query}, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// MarkNotificationRead calls PATCH /notifications/:id/read
func (c *Client) MarkNotificationRead(ctx context.Context, actor *models.Actor, id string) (*models.Notification, error) {
	var env dto.ItemEnvelope[models.Notification]
	if err := c.do(ctx, actor, request{method: http.MethodPatch, path: resourcePath("notifications", id, "read")}, &env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}
