package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/app/services"
	"github.com/yigit/engageportal/internal/middleware"
)

// SurveyController handles survey definitions, submissions and the partition view
type SurveyController struct {
	surveyService      services.SurveyService
	submissionService  services.SubmissionService
	aggregationService services.AggregationService
}

// NewSurveyController creates a new SurveyController
func NewSurveyController(
	surveyService services.SurveyService,
	submissionService services.SubmissionService,
	aggregationService services.AggregationService,
) *SurveyController {
	return &SurveyController{
		surveyService:      surveyService,
		submissionService:  submissionService,
		aggregationService: aggregationService,
	}
}

// GetAllSurveys handles GET /surveys
func (c *SurveyController) GetAllSurveys(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var params dto.ListSurveysParams
	if !middleware.BindQuery(ctx, &params) {
		return
	}

	env, err := c.surveyService.List(ctx.Request.Context(), actor, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if env.Message == "" {
		env.Message = "Surveys retrieved successfully"
	}
	ctx.JSON(http.StatusOK, env)
}

// GetPartition handles GET /surveys/partition and splits the caller's eligible
// surveys into available and completed
func (c *SurveyController) GetPartition(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	surveyType := models.SurveyType(ctx.Query("surveyType"))
	partition, err := c.aggregationService.Partition(ctx.Request.Context(), actor, surveyType)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusOK, "Surveys partitioned successfully", partition)
}

// GetSurveyByID handles GET /surveys/:id
func (c *SurveyController) GetSurveyByID(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	detail, err := c.surveyService.Detail(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusOK, "Survey retrieved successfully", detail)
}

// CreateSurvey handles POST /surveys
func (c *SurveyController) CreateSurvey(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.SurveyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, badJSON(err))
		return
	}

	survey, err := c.surveyService.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusCreated, "Survey created successfully", survey)
}

// UpdateSurvey handles PUT /surveys/:id
func (c *SurveyController) UpdateSurvey(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.SurveyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, badJSON(err))
		return
	}

	survey, err := c.surveyService.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusOK, "Survey updated successfully", survey)
}

// DeleteSurvey handles DELETE /surveys/:id
func (c *SurveyController) DeleteSurvey(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	if err := c.surveyService.Remove(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Survey deleted successfully")
}

// UpdateSurveyStatus handles PATCH /surveys/:id/status
func (c *SurveyController) UpdateSurveyStatus(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	survey, err := c.surveyService.UpdateStatus(ctx.Request.Context(), actor, ctx.Param("id"), req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondItem(ctx, http.StatusOK, "Survey status updated successfully", survey)
}

// SubmitAnswers handles POST /surveys/:id/answers. The Idempotency-Key header
// makes retries of the same submission safe.
func (c *SurveyController) SubmitAnswers(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.SubmitAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, badJSON(err))
		return
	}

	result, err := c.submissionService.Submit(ctx.Request.Context(), actor, ctx.Param("id"), req, ctx.GetHeader(dto.IdempotencyHeader))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header(dto.IdempotencyHeader, result.IdempotencyKey)
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	respondItem(ctx, status, "Survey submitted successfully", result)
}
