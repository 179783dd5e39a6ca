package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/logger"
)

// clearSiteData is sent with every 401 so the SPA forgets its session
const clearSiteData = `"cache", "storage"`

// apiError is the resolved status, code and fallback message for an error
type apiError struct {
	status   int
	code     dto.ErrorCode
	fallback string
}

// classify maps the error taxonomy onto HTTP
func classify(err error) apiError {
	var upstreamErr *apperrors.UpstreamError

	switch {
	case errors.Is(err, apperrors.ErrAlreadySubmitted):
		return apiError{http.StatusConflict, dto.ErrorCodeAlreadySubmitted, "You have already submitted this survey"}
	case errors.Is(err, apperrors.ErrSurveyNotAccepting):
		return apiError{http.StatusUnprocessableEntity, dto.ErrorCodeNotAccepting, "Survey is not accepting responses"}
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return apiError{http.StatusUnprocessableEntity, dto.ErrorCodeInvalidTransition, "Invalid status change"}
	case errors.Is(err, apperrors.ErrValidationFailed):
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) && len(verr.MissingQuestions) > 0 {
			return apiError{http.StatusBadRequest, dto.ErrorCodeMissingAnswers, "Please answer all required questions"}
		}
		return apiError{http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"}
	case errors.Is(err, apperrors.ErrBadRequest):
		return apiError{http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"}
	case errors.Is(err, apperrors.ErrTokenExpired):
		return apiError{http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"}
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return apiError{http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apiError{http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Your session has ended, please sign in again"}
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return apiError{http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"}
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return apiError{http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"}
	case errors.Is(err, apperrors.ErrConflict):
		return apiError{http.StatusConflict, dto.ErrorCodeConflict, "Conflict"}
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		return apiError{http.StatusBadGateway, dto.ErrorCodeUpstreamUnavailable, "Service is unreachable, please try again"}
	case errors.As(err, &upstreamErr):
		status := upstreamErr.Status
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		return apiError{status, dto.ErrorCodeUpstreamRejected, "Request was rejected"}
	default:
		return apiError{http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"}
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	resolved := classify(err)

	errorDetail := dto.NewErrorDetail(resolved.code, apperrors.UserMessage(err, resolved.fallback))

	var verr *apperrors.ValidationError
	var customErr *apperrors.CustomError
	switch {
	case errors.As(err, &verr):
		if len(verr.MissingQuestions) > 0 {
			errorDetail.WithDetails(gin.H{"missingQuestions": verr.MissingQuestions})
		} else if len(verr.Fields) > 0 {
			errorDetail.WithField(verr.Fields[0].Field).WithDetails(verr.Fields)
		}
	case errors.As(err, &customErr) && customErr.Details != nil:
		errorDetail.WithDetails(customErr.Details)
	}

	event := requestLogger(c).Warn()
	if resolved.status >= http.StatusInternalServerError {
		event = requestLogger(c).Error()
		errorDetail.WithSeverity(dto.ErrorSeverityCritical)
	}
	event.Err(err).Int("status", resolved.status).Str("code", string(resolved.code)).Msg("Request failed")

	if apperrors.Is(err, apperrors.ErrUnauthorized, apperrors.ErrTokenExpired, apperrors.ErrTokenInvalid) {
		c.Header("Clear-Site-Data", clearSiteData)
	}
	c.AbortWithStatusJSON(resolved.status, dto.NewErrorResponse(errorDetail))
}

// requestLogger returns the logger RequestLogger attached to the request
func requestLogger(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(contextLoggerKey); ok {
		if l, ok := v.(zerolog.Logger); ok {
			return &l
		}
	}
	l := logger.Default()
	return &l
}
