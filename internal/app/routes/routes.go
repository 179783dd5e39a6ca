package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/app/controllers"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Survey           *controllers.SurveyController
	Response         *controllers.ResponseController
	CommunitySession *controllers.CommunitySessionController
	Notification     *controllers.NotificationController
	Realtime         *controllers.RealtimeController
	Health           *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", c.Health.Ping)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", c.Health.Health)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	manage := authMiddleware.RoleRequired(models.ManagementRoles...)
	{
		surveys := authenticated.Group("/surveys")
		{
			surveys.GET("", c.Survey.GetAllSurveys)
			surveys.POST("", manage, c.Survey.CreateSurvey)
			surveys.GET("/partition", c.Survey.GetPartition)
			surveys.GET("/:id", c.Survey.GetSurveyByID)
			surveys.PUT("/:id", manage, c.Survey.UpdateSurvey)
			surveys.DELETE("/:id", manage, c.Survey.DeleteSurvey)
			surveys.PATCH("/:id/status", manage, c.Survey.UpdateSurveyStatus)
			surveys.POST("/:id/answers", c.Survey.SubmitAnswers)
		}

		authenticated.GET("/responses/:id/review", c.Response.GetResponseReview)

		sessions := authenticated.Group("/community-sessions")
		{
			sessions.GET("", c.CommunitySession.GetAllSessions)
			sessions.POST("", manage, c.CommunitySession.CreateSession)
			sessions.GET("/:id", c.CommunitySession.GetSessionByID)
			sessions.DELETE("/:id", manage, c.CommunitySession.DeleteSession)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", c.Notification.GetNotifications)
			notifications.PATCH("/:id/read", c.Notification.MarkRead)
		}

		if c.Realtime != nil {
			authenticated.GET("/realtime", c.Realtime.Connect)
		}
	}
}
