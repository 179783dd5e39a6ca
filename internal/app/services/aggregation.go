package services

import (
	"strings"
	"time"

	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/helpers"
)

// AvailableSurveys returns the active surveys whose id is not among the completed
// ones, in the order they were given.
func AvailableSurveys(active, completed []models.Survey) []models.Survey {
	done := make(map[string]struct{}, len(completed))
	for _, s := range completed {
		done[s.ID] = struct{}{}
	}
	return excluding(active, done)
}

// AvailableFromResponses is AvailableSurveys keyed by the responses' survey ids
func AvailableFromResponses(active []models.Survey, responses []models.Response) []models.Survey {
	done := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		done[r.SurveyID] = struct{}{}
	}
	return excluding(active, done)
}

func excluding(surveys []models.Survey, ids map[string]struct{}) []models.Survey {
	out := make([]models.Survey, 0, len(surveys))
	for _, s := range surveys {
		if _, ok := ids[s.ID]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// BuildReview pairs every question of the survey, in order, with the response's
// answer to it. Unanswered questions get a placeholder row, so there is always
// exactly one row per question.
func BuildReview(survey *models.Survey, response *models.Response) dto.ResponseReview {
	review := dto.ResponseReview{
		ResponseID:  response.ID,
		SurveyID:    survey.ID,
		SurveyTitle: survey.Title,
		UserID:      response.UserID,
		SubmittedAt: response.CreatedAt,
		Rows:        make([]dto.ReviewRow, 0, len(survey.QuestionItems)),
	}
	if response.User != nil {
		review.UserName = response.User.Name
	}

	answers := response.AnswersByQuestion()
	for _, q := range survey.QuestionItems {
		row := dto.ReviewRow{
			QuestionID:    q.ID,
			QuestionTitle: q.Title,
			QuestionType:  q.Type,
			Required:      q.Required,
			Answer:        dto.NoAnswerProvided,
		}
		if a, ok := answers[q.ID]; ok && !a.IsEmpty() {
			row.Answered = true
			if len(a.AnswerOptions) > 0 {
				row.AnswerOptions = a.AnswerOptions
				row.Answer = strings.Join(a.AnswerOptions, ", ")
			} else {
				row.Answer = a.Text()
			}
		}
		review.Rows = append(review.Rows, row)
	}
	return review
}

// WindowState places now relative to a rapid enquiry's [startAt, endAt] window.
// It is informational; status is never changed because of it.
func WindowState(survey *models.Survey, now time.Time) models.WindowState {
	if survey.SurveyType != models.SurveyTypeRapidEnquiry || (survey.StartAt == nil && survey.EndAt == nil) {
		return models.WindowNone
	}
	if helpers.Within(now, survey.StartAt, survey.EndAt) {
		return models.WindowOpen
	}
	if survey.StartAt != nil && now.Before(*survey.StartAt) {
		return models.WindowUpcoming
	}
	return models.WindowClosed
}
