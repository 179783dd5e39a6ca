package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/middleware"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
)

// requireActor returns the authenticated actor or writes a 401
func requireActor(ctx *gin.Context) (*models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrUnauthorized, "Authentication required"))
		return nil, false
	}
	return actor, true
}

// respondItem writes a {message, result} envelope
func respondItem[T any](ctx *gin.Context, status int, message string, result T) {
	ctx.JSON(status, dto.ItemEnvelope[T]{Message: message, Result: result})
}

// respondMessage writes a body carrying only a message
func respondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: message})
}

// badJSON wraps a body decoding failure
func badJSON(err error) error {
	return apperrors.NewBadRequestError("Invalid request format: " + err.Error())
}
