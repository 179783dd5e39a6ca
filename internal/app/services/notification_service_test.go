package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
)

func TestNotificationMetaHasMore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	env, err := f.feed.List(ctx, worker("u1"), dto.ListNotificationsParams{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, env.Meta.TotalPages)
	assert.True(t, env.Meta.HasMore)
	assert.NotNil(t, env.Result)

	env, err = f.feed.List(ctx, worker("u1"), dto.ListNotificationsParams{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, env.Meta.Page)
	assert.False(t, env.Meta.HasMore)
}

func TestNotificationMetaWithoutTotal(t *testing.T) {
	full := &dto.MetaEnvelope[models.Notification]{
		Result: make([]models.Notification, 10),
		Meta:   dto.NotificationMeta{Page: 2, Limit: 10},
	}
	normalizeMeta(full, 2, 10)
	assert.Equal(t, int64(21), full.Meta.Total)
	assert.Equal(t, 3, full.Meta.TotalPages)
	assert.Equal(t, 2, full.Meta.Page)
	assert.True(t, full.Meta.HasMore)

	last := &dto.MetaEnvelope[models.Notification]{Result: make([]models.Notification, 4)}
	normalizeMeta(last, 3, 10)
	assert.Equal(t, int64(24), last.Meta.Total)
	assert.Equal(t, 3, last.Meta.Page)
	assert.Equal(t, 10, last.Meta.Limit)
	assert.False(t, last.Meta.HasMore)

	empty := &dto.MetaEnvelope[models.Notification]{}
	normalizeMeta(empty, 5, 10)
	assert.NotNil(t, empty.Result)
	assert.Equal(t, 1, empty.Meta.Page)
	assert.False(t, empty.Meta.HasMore)
}

func TestMarkReadInvalidatesFeed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	params := dto.ListNotificationsParams{}

	_, err := f.feed.List(ctx, worker("u1"), params)
	require.NoError(t, err)
	_, err = f.feed.List(ctx, worker("u1"), params)
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.notificationCalls)

	n, err := f.feed.MarkRead(ctx, worker("u1"), "n1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	assert.Equal(t, []string{"u1"}, f.notifier.users)

	_, err = f.feed.List(ctx, worker("u1"), params)
	require.NoError(t, err)
	assert.Equal(t, 2, f.backend.notificationCalls)
}
