package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/app/services"
	"github.com/yigit/engageportal/internal/middleware"
)

// ResponseController handles submitted responses
type ResponseController struct {
	aggregationService services.AggregationService
}

// NewResponseController creates a new ResponseController
func NewResponseController(aggregationService services.AggregationService) *ResponseController {
	return &ResponseController{aggregationService: aggregationService}
}

// GetResponseReview handles GET /responses/:id/review
func (c *ResponseController) GetResponseReview(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	review, err := c.aggregationService.Review(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusOK, "Response retrieved successfully", review)
}
