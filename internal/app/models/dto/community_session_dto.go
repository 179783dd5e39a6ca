package dto

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/yigit/engageportal/internal/app/models"
)

// ListSessionsParams are the filters of GET /community-sessions
type ListSessionsParams struct {
	Page     int                         `form:"page" json:"page" validate:"gte=0"`
	Limit    int                         `form:"limit" json:"limit" validate:"gte=0,lte=100"`
	Type     models.CommunitySessionType `form:"type" json:"type" validate:"omitempty,oneof=video audio image text"`
	IsActive *bool                       `form:"isActive" json:"isActive"`
	Allowed  *bool                       `form:"allowed" json:"allowed"`
	Search   string                      `form:"search" json:"search" validate:"max=200"`
}

// Values encodes the params as an upstream query string
func (p ListSessionsParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Type != "" {
		v.Set("type", string(p.Type))
	}
	if p.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*p.IsActive))
	}
	if p.Allowed != nil {
		v.Set("allowed", strconv.FormatBool(*p.Allowed))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

// CreateSessionRequest is the body of POST /community-sessions. Media is
// uploaded elsewhere; only its URL is recorded here.
type CreateSessionRequest struct {
	Title        string                      `json:"title" validate:"required,notblank,min=3,max=200"`
	Description  string                      `json:"description,omitempty" validate:"max=5000"`
	Type         models.CommunitySessionType `json:"type" validate:"required,oneof=video audio image text"`
	FileURL      string                      `json:"fileUrl,omitempty" validate:"omitempty,url"`
	IsActive     bool                        `json:"isActive"`
	AllowedRoles []string                    `json:"allowedRoles,omitempty" validate:"omitempty,unique,dive,required"`
}
