package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name       string
		surveyType SurveyType
		from       SurveyStatus
		to         SurveyStatus
		want       bool
	}{
		{"draft activates", SurveyTypeGeneral, SurveyStatusDraft, SurveyStatusActive, true},
		{"active archives", SurveyTypeGeneral, SurveyStatusActive, SurveyStatusArchived, true},
		{"active pauses", SurveyTypeReportForm, SurveyStatusActive, SurveyStatusPaused, true},
		{"paused resumes", SurveyTypeGeneral, SurveyStatusPaused, SurveyStatusActive, true},
		{"archived is terminal", SurveyTypeGeneral, SurveyStatusArchived, SurveyStatusActive, false},
		{"draft cannot archive", SurveyTypeGeneral, SurveyStatusDraft, SurveyStatusArchived, false},
		{"same status is not a transition", SurveyTypeGeneral, SurveyStatusActive, SurveyStatusActive, false},
		{"rapid enquiry back to draft", SurveyTypeRapidEnquiry, SurveyStatusActive, SurveyStatusDraft, true},
		{"rapid enquiry cannot pause", SurveyTypeRapidEnquiry, SurveyStatusActive, SurveyStatusPaused, false},
		{"general cannot return to draft", SurveyTypeGeneral, SurveyStatusActive, SurveyStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Survey{SurveyType: tt.surveyType, Status: tt.from}
			assert.Equal(t, tt.want, s.CanTransition(tt.to))
		})
	}
}

func TestArchivedActionsNeverOfferActivate(t *testing.T) {
	s := &Survey{SurveyType: SurveyTypeGeneral, Status: SurveyStatusArchived}
	actions := s.Actions()

	assert.NotContains(t, actions, ActionActivate)
	assert.Equal(t, []SurveyAction{ActionView, ActionViewResponses, ActionDelete}, actions)
}

func TestActionsPerStatus(t *testing.T) {
	draft := &Survey{SurveyType: SurveyTypeGeneral, Status: SurveyStatusDraft}
	assert.Equal(t, []SurveyAction{ActionView, ActionEdit, ActionActivate, ActionDelete}, draft.Actions())

	active := &Survey{SurveyType: SurveyTypeGeneral, Status: SurveyStatusActive}
	assert.Equal(t, []SurveyAction{ActionView, ActionViewResponses, ActionPause, ActionArchive}, active.Actions())

	paused := &Survey{SurveyType: SurveyTypeGeneral, Status: SurveyStatusPaused}
	assert.Equal(t, []SurveyAction{ActionView, ActionEdit, ActionViewResponses, ActionActivate, ActionArchive}, paused.Actions())

	rapid := &Survey{SurveyType: SurveyTypeRapidEnquiry, Status: SurveyStatusActive}
	assert.Equal(t, []SurveyAction{ActionView, ActionViewResponses, ActionDeactivate}, rapid.Actions())
}

func TestIsAllowedFor(t *testing.T) {
	open := &Survey{}
	assert.True(t, open.IsAllowedFor(nil))

	restricted := &Survey{AllowedRoles: []string{RoleHealthWorker, RoleVolunteer}}
	assert.True(t, restricted.IsAllowedFor([]string{"Volunteer"}))
	assert.False(t, restricted.IsAllowedFor([]string{RoleCommunity}))
}

func TestQuestionBounds(t *testing.T) {
	min, max := Question{Type: QuestionRating}.Bounds()
	assert.Equal(t, 1, min)
	assert.Equal(t, 5, max)

	lo, hi := 0, 7
	min, max = Question{Type: QuestionLinearScale, MinValue: &lo, MaxValue: &hi}.Bounds()
	assert.Equal(t, 0, min)
	assert.Equal(t, 7, max)
}

func TestAnswerIsEmpty(t *testing.T) {
	blank := "   "
	text := " yes "

	assert.True(t, Answer{}.IsEmpty())
	assert.True(t, Answer{AnswerText: &blank}.IsEmpty())
	assert.True(t, Answer{AnswerOptions: []string{}}.IsEmpty())
	assert.False(t, Answer{AnswerText: &text}.IsEmpty())
	assert.Equal(t, "yes", Answer{AnswerText: &text}.Text())
	assert.False(t, Answer{AnswerOptions: []string{"A"}}.IsEmpty())
}

func TestActorCanManage(t *testing.T) {
	assert.True(t, (&Actor{Roles: []string{"Admin"}}).CanManage())
	assert.True(t, (&Actor{Roles: []string{RoleVolunteer, RoleManager}}).CanManage())
	assert.False(t, (&Actor{Roles: []string{RoleVolunteer}}).CanManage())
}
