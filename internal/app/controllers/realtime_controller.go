package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/pkg/websocket"
)

// RealtimeController upgrades authenticated requests to the invalidation channel
type RealtimeController struct {
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

// NewRealtimeController creates a new RealtimeController
func NewRealtimeController(upgrader *websocket.Upgrader, logger zerolog.Logger) *RealtimeController {
	return &RealtimeController{upgrader: upgrader, logger: logger}
}

// Connect handles GET /realtime
func (c *RealtimeController) Connect(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	// on failure the upgrader has already answered the request
	if err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, actor.UserID); err != nil {
		c.logger.Warn().Err(err).Str("userID", actor.UserID).Msg("WebSocket upgrade failed")
	}
}
