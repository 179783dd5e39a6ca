package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullSubject(t *testing.T) {
	assert.Equal(t, "engage.survey.response.submitted", fullSubject("engage", SubjectResponseSubmitted))
	assert.Equal(t, SubjectSurveyStatus, fullSubject("", SubjectSurveyStatus))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Subject: SubjectResponseSubmitted}))
	assert.NoError(t, p.Close())
}
