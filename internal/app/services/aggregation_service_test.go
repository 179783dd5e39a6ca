package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
)

func TestAvailableSurveysIsSetDifference(t *testing.T) {
	active := []models.Survey{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	completed := []models.Survey{{ID: "b"}, {ID: "x"}, {ID: "d"}}

	got := AvailableSurveys(active, completed)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	assert.Empty(t, AvailableSurveys(nil, completed))
	assert.NotNil(t, AvailableSurveys(nil, nil))
}

func TestAvailableFromResponses(t *testing.T) {
	active := []models.Survey{{ID: "a"}, {ID: "b"}}
	responses := []models.Response{{ID: "r1", SurveyID: "a"}}

	got := AvailableFromResponses(active, responses)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestPartitionAfterSubmission(t *testing.T) {
	second := householdSurvey()
	second.ID = "s2"
	second.Title = "Sanitation"
	draft := householdSurvey()
	draft.ID = "s3"
	draft.Status = models.SurveyStatusDraft
	f := newFixture(householdSurvey(), second, draft)
	ctx := context.Background()

	before, err := f.aggregation.Partition(ctx, worker("u1"), models.SurveyTypeGeneral)
	require.NoError(t, err)
	assert.Len(t, before.Available, 2)
	assert.Empty(t, before.Completed)

	_, err = f.submissions.Submit(ctx, worker("u1"), "s1", completeAnswers(), "")
	require.NoError(t, err)

	after, err := f.aggregation.Partition(ctx, worker("u1"), models.SurveyTypeGeneral)
	require.NoError(t, err)
	require.Len(t, after.Available, 1)
	assert.Equal(t, "s2", after.Available[0].ID)
	require.Len(t, after.Completed, 1)
	assert.Equal(t, "s1", after.Completed[0].ID)
}

func TestPartitionRejectsUnknownType(t *testing.T) {
	f := newFixture()
	_, err := f.aggregation.Partition(context.Background(), worker("u1"), models.SurveyType("poll"))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestBuildReviewHasOneRowPerQuestion(t *testing.T) {
	survey := householdSurvey()
	response := &models.Response{
		ID:       "r1",
		SurveyID: "s1",
		UserID:   "u1",
		Answers: []models.Answer{
			{QuestionID: "q1", AnswerOptions: []string{"Tap", "Well"}},
			{QuestionID: "q3", AnswerText: text(" 5 ")},
			{QuestionID: "q9", AnswerText: text("orphan")},
		},
		User: &models.User{Name: "Achieng"},
	}

	review := BuildReview(&survey, response)
	require.Len(t, review.Rows, len(survey.QuestionItems))
	assert.Equal(t, "Achieng", review.UserName)

	assert.Equal(t, "Tap, Well", review.Rows[0].Answer)
	assert.True(t, review.Rows[0].Answered)
	assert.Equal(t, dto.NoAnswerProvided, review.Rows[1].Answer)
	assert.False(t, review.Rows[1].Answered)
	assert.Equal(t, "5", review.Rows[2].Answer)
}

func TestReviewAccess(t *testing.T) {
	f := newFixture(householdSurvey())
	ctx := context.Background()

	result, err := f.submissions.Submit(ctx, worker("u1"), "s1", completeAnswers(), "")
	require.NoError(t, err)

	review, err := f.aggregation.Review(ctx, worker("u1"), result.Response.ID)
	require.NoError(t, err)
	assert.Len(t, review.Rows, 3)
	assert.Equal(t, "Household water access", review.SurveyTitle)

	_, err = f.aggregation.Review(ctx, manager(), result.Response.ID)
	assert.NoError(t, err)

	_, err = f.aggregation.Review(ctx, worker("u2"), result.Response.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestWindowState(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	rapid := &models.Survey{SurveyType: models.SurveyTypeRapidEnquiry, StartAt: &start, EndAt: &end}

	assert.Equal(t, models.WindowUpcoming, WindowState(rapid, start.Add(-time.Hour)))
	assert.Equal(t, models.WindowOpen, WindowState(rapid, start.Add(time.Hour)))
	assert.Equal(t, models.WindowClosed, WindowState(rapid, end.Add(time.Hour)))
	assert.Equal(t, models.WindowNone, WindowState(&models.Survey{SurveyType: models.SurveyTypeGeneral}, start))
}
