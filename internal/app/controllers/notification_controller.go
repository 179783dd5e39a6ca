package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/app/services"
	"github.com/yigit/engageportal/internal/middleware"
)

// NotificationController handles the notification feed
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetNotifications handles GET /notifications
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var params dto.ListNotificationsParams
	if !middleware.BindQuery(ctx, &params) {
		return
	}

	env, err := c.notificationService.List(ctx.Request.Context(), actor, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, env)
}

// MarkRead handles PATCH /notifications/:id/read
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	notification, err := c.notificationService.MarkRead(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusOK, "Notification marked as read", notification)
}
