package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/app/services"
	"github.com/yigit/engageportal/internal/middleware"
)

// CommunitySessionController handles community session operations
type CommunitySessionController struct {
	sessionService services.CommunitySessionService
}

// NewCommunitySessionController creates a new CommunitySessionController
func NewCommunitySessionController(sessionService services.CommunitySessionService) *CommunitySessionController {
	return &CommunitySessionController{sessionService: sessionService}
}

// GetAllSessions handles GET /community-sessions
func (c *CommunitySessionController) GetAllSessions(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var params dto.ListSessionsParams
	if !middleware.BindQuery(ctx, &params) {
		return
	}

	env, err := c.sessionService.List(ctx.Request.Context(), actor, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if env.Message == "" {
		env.Message = "Community sessions retrieved successfully"
	}
	ctx.JSON(http.StatusOK, env)
}

// GetSessionByID handles GET /community-sessions/:id
func (c *CommunitySessionController) GetSessionByID(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	session, err := c.sessionService.GetByID(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusOK, "Community session retrieved successfully", session)
}

// CreateSession handles POST /community-sessions
func (c *CommunitySessionController) CreateSession(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, badJSON(err))
		return
	}

	session, err := c.sessionService.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusCreated, "Community session created successfully", session)
}

// DeleteSession handles DELETE /community-sessions/:id
func (c *CommunitySessionController) DeleteSession(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	if err := c.sessionService.Remove(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Community session deleted successfully")
}
