package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/validation"
)

// BindJSON decodes the request body into obj and validates it. On failure the
// error response is written and false is returned.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleAPIError(c, apperrors.NewBadRequestError("Invalid request format: "+err.Error()))
		return false
	}
	return validate(c, obj)
}

// BindQuery decodes the query string into obj and validates it
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		HandleAPIError(c, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return false
	}
	return validate(c, obj)
}

func validate(c *gin.Context, obj interface{}) bool {
	if err := validation.Struct(obj); err != nil {
		HandleAPIError(c, err)
		return false
	}
	return true
}
