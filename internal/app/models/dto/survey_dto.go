package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yigit/engageportal/internal/app/models"
)

// Survey list owner filters
const (
	OwnerMe  = "me"
	OwnerAny = "any"
)

// ListSurveysParams are the filters of GET /surveys
type ListSurveysParams struct {
	Page       int                 `form:"page" json:"page" validate:"gte=0"`
	Limit      int                 `form:"limit" json:"limit" validate:"gte=0,lte=100"`
	Status     models.SurveyStatus `form:"status" json:"status" validate:"omitempty,oneof=draft active paused archived"`
	SurveyType models.SurveyType   `form:"surveyType" json:"surveyType" validate:"omitempty,oneof=general report-form rapid-enquiry"`
	Allowed    *bool               `form:"allowed" json:"allowed"`
	Owner      string              `form:"owner" json:"owner" validate:"omitempty,oneof=me any"`
	Responded  *bool               `form:"responded" json:"responded"`
	Search     string              `form:"search" json:"search" validate:"max=200"`
}

// Values encodes the params as an upstream query string. Unset filters are omitted.
func (p ListSurveysParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	if p.SurveyType != "" {
		v.Set("surveyType", string(p.SurveyType))
	}
	if p.Allowed != nil {
		v.Set("allowed", strconv.FormatBool(*p.Allowed))
	}
	if p.Owner != "" {
		v.Set("owner", p.Owner)
	}
	if p.Responded != nil {
		v.Set("responded", strconv.FormatBool(*p.Responded))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

// Bool returns a pointer to b, for tri-state filters
func Bool(b bool) *bool {
	return &b
}

// QuestionInput is one question of a create/update payload
type QuestionInput struct {
	ID          string              `json:"id,omitempty"`
	Title       string              `json:"title" validate:"required,notblank,max=500"`
	Description string              `json:"description,omitempty" validate:"max=2000"`
	Type        models.QuestionType `json:"type" validate:"required,oneof=single_choice multiple_choice text_input textarea file_upload rating linear_scale"`
	Required    bool                `json:"required"`
	Options     []string            `json:"options,omitempty" validate:"omitempty,unique,dive,required"`
	MinValue    *int                `json:"minValue,omitempty"`
	MaxValue    *int                `json:"maxValue,omitempty"`
	MinLabel    string              `json:"minLabel,omitempty" validate:"max=100"`
	MaxLabel    string              `json:"maxLabel,omitempty" validate:"max=100"`
}

// SurveyRequest is the body of POST /surveys and PUT /surveys/:id
type SurveyRequest struct {
	Title         string              `json:"title" validate:"required,notblank,min=3,max=200"`
	Description   string              `json:"description,omitempty" validate:"max=5000"`
	SurveyType    models.SurveyType   `json:"surveyType" validate:"required,oneof=general report-form rapid-enquiry"`
	Status        models.SurveyStatus `json:"status,omitempty" validate:"omitempty,oneof=draft active"`
	EstimatedTime int                 `json:"estimatedTime" validate:"gte=0,lte=600"`
	AllowedRoles  []string            `json:"allowedRoles,omitempty" validate:"omitempty,unique,dive,required"`
	QuestionItems []QuestionInput     `json:"questionItems" validate:"required,min=1,dive"`
	StartAt       *time.Time          `json:"startAt,omitempty"`
	EndAt         *time.Time          `json:"endAt,omitempty"`
	Project       string              `json:"project,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /surveys/:id/status
type UpdateStatusRequest struct {
	Status models.SurveyStatus `json:"status" validate:"required,oneof=draft active paused archived"`
}

// SurveyDetail is a survey with its action menu and rapid-enquiry window state
type SurveyDetail struct {
	models.Survey
	Actions     []models.SurveyAction `json:"actions"`
	WindowState models.WindowState    `json:"windowState"`
}

// SurveyPartition splits a user's eligible surveys into available and completed
type SurveyPartition struct {
	Available []models.Survey `json:"available"`
	Completed []models.Survey `json:"completed"`
}
