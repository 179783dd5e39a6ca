package models

import (
	"strings"
	"time"
)

// SurveyType distinguishes general surveys, report forms and rapid enquiries
type SurveyType string

const (
	SurveyTypeGeneral      SurveyType = "general"
	SurveyTypeReportForm   SurveyType = "report-form"
	SurveyTypeRapidEnquiry SurveyType = "rapid-enquiry"
)

// Valid reports whether t is a known survey type
func (t SurveyType) Valid() bool {
	switch t {
	case SurveyTypeGeneral, SurveyTypeReportForm, SurveyTypeRapidEnquiry:
		return true
	}
	return false
}

// SurveyStatus is the lifecycle state of a survey
type SurveyStatus string

const (
	SurveyStatusDraft    SurveyStatus = "draft"
	SurveyStatusActive   SurveyStatus = "active"
	SurveyStatusPaused   SurveyStatus = "paused"
	SurveyStatusArchived SurveyStatus = "archived"
)

// Valid reports whether s is a known status
func (s SurveyStatus) Valid() bool {
	switch s {
	case SurveyStatusDraft, SurveyStatusActive, SurveyStatusPaused, SurveyStatusArchived:
		return true
	}
	return false
}

// QuestionType is the input kind of a question
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTextInput      QuestionType = "text_input"
	QuestionTextarea       QuestionType = "textarea"
	QuestionFileUpload     QuestionType = "file_upload"
	QuestionRating         QuestionType = "rating"
	QuestionLinearScale    QuestionType = "linear_scale"
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionTextInput, QuestionTextarea,
		QuestionFileUpload, QuestionRating, QuestionLinearScale:
		return true
	}
	return false
}

// IsChoice reports whether answers pick from the declared options
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice
}

// IsScale reports whether answers are a number inside [minValue, maxValue]
func (t QuestionType) IsScale() bool {
	return t == QuestionRating || t == QuestionLinearScale
}

// Question is one item of a survey's questionnaire
type Question struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Type        QuestionType `json:"type"`
	Required    bool         `json:"required"`
	Options     []string     `json:"options,omitempty"`
	MinValue    *int         `json:"minValue,omitempty"`
	MaxValue    *int         `json:"maxValue,omitempty"`
	MinLabel    string       `json:"minLabel,omitempty"`
	MaxLabel    string       `json:"maxLabel,omitempty"`
}

// HasOption reports whether option is one of the declared options
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Bounds returns the numeric range for scale questions. Ratings without explicit
// bounds default to 1..5.
func (q Question) Bounds() (min, max int) {
	min, max = 1, 5
	if q.Type == QuestionLinearScale {
		min, max = 1, 10
	}
	if q.MinValue != nil {
		min = *q.MinValue
	}
	if q.MaxValue != nil {
		max = *q.MaxValue
	}
	return min, max
}

// Project is the owning project reference of a survey
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Survey is a questionnaire definition
type Survey struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	SurveyType    SurveyType   `json:"surveyType"`
	Status        SurveyStatus `json:"status"`
	EstimatedTime int          `json:"estimatedTime,omitempty"` // minutes
	AllowedRoles  []string     `json:"allowedRoles,omitempty"`
	QuestionItems []Question   `json:"questionItems,omitempty"`
	StartAt       *time.Time   `json:"startAt,omitempty"`
	EndAt         *time.Time   `json:"endAt,omitempty"`
	Project       *Project     `json:"project,omitempty"`
	CreatedBy     string       `json:"createdBy,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Survey status graphs. Rapid enquiries only toggle between draft and active.
var (
	surveyTransitions = map[SurveyStatus][]SurveyStatus{
		SurveyStatusDraft:  {SurveyStatusActive},
		SurveyStatusActive: {SurveyStatusPaused, SurveyStatusArchived},
		SurveyStatusPaused: {SurveyStatusActive, SurveyStatusArchived},
	}
	rapidEnquiryTransitions = map[SurveyStatus][]SurveyStatus{
		SurveyStatusDraft:  {SurveyStatusActive},
		SurveyStatusActive: {SurveyStatusDraft},
	}
)

// NextStatuses lists the statuses the survey may move to from its current one
func (s *Survey) NextStatuses() []SurveyStatus {
	graph := surveyTransitions
	if s.SurveyType == SurveyTypeRapidEnquiry {
		graph = rapidEnquiryTransitions
	}
	return graph[s.Status]
}

// CanTransition reports whether moving to target is legal. Staying in the
// current status is not a transition.
func (s *Survey) CanTransition(target SurveyStatus) bool {
	for _, next := range s.NextStatuses() {
		if next == target {
			return true
		}
	}
	return false
}

// IsAllowedFor reports whether a holder of roles may view and respond. An empty
// allowedRoles list admits everyone.
func (s *Survey) IsAllowedFor(roles []string) bool {
	if len(s.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range s.AllowedRoles {
		for _, r := range roles {
			if strings.EqualFold(allowed, r) {
				return true
			}
		}
	}
	return false
}

// SurveyAction is an entry of the survey action menu
type SurveyAction string

const (
	ActionView          SurveyAction = "view"
	ActionEdit          SurveyAction = "edit"
	ActionViewResponses SurveyAction = "view-responses"
	ActionActivate      SurveyAction = "activate"
	ActionPause         SurveyAction = "pause"
	ActionArchive       SurveyAction = "archive"
	ActionDeactivate    SurveyAction = "deactivate"
	ActionDelete        SurveyAction = "delete"
)

var transitionActions = map[SurveyStatus]SurveyAction{
	SurveyStatusActive:   ActionActivate,
	SurveyStatusPaused:   ActionPause,
	SurveyStatusArchived: ActionArchive,
	SurveyStatusDraft:    ActionDeactivate,
}

// Actions builds the action menu for the survey's current status. Status
// actions come straight from NextStatuses, so a terminal survey offers none.
func (s *Survey) Actions() []SurveyAction {
	actions := []SurveyAction{ActionView}

	switch s.Status {
	case SurveyStatusDraft, SurveyStatusPaused:
		actions = append(actions, ActionEdit)
	}
	if s.Status != SurveyStatusDraft {
		actions = append(actions, ActionViewResponses)
	}
	for _, next := range s.NextStatuses() {
		actions = append(actions, transitionActions[next])
	}
	switch s.Status {
	case SurveyStatusDraft, SurveyStatusArchived:
		actions = append(actions, ActionDelete)
	}
	return actions
}

// WindowState is the advisory position of now relative to a rapid enquiry's window
type WindowState string

const (
	WindowNone     WindowState = "none"
	WindowUpcoming WindowState = "upcoming"
	WindowOpen     WindowState = "open"
	WindowClosed   WindowState = "closed"
)
