package services

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/app/auth"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/app/repositories"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/cache"
	"github.com/yigit/engageportal/internal/pkg/events"
)

// fakeBackend stands in for the upstream REST backend and counts calls
type fakeBackend struct {
	mu            sync.Mutex
	surveys       map[string]*models.Survey
	order         []string
	responded     map[string]bool
	responses     map[string]*models.Response
	sessions      []models.CommunitySession
	notifications []models.Notification
	submitErr     error

	listCalls         int
	getCalls          int
	submitCalls       int
	statusCalls       int
	sessionListCalls  int
	notificationCalls int
}

func newFakeBackend(surveys ...models.Survey) *fakeBackend {
	b := &fakeBackend{
		surveys:   map[string]*models.Survey{},
		responded: map[string]bool{},
		responses: map[string]*models.Response{},
	}
	for i := range surveys {
		s := surveys[i]
		b.surveys[s.ID] = &s
		b.order = append(b.order, s.ID)
	}
	return b
}

func (b *fakeBackend) ListSurveys(_ context.Context, _ *models.Actor, query url.Values) (*dto.ListEnvelope[models.Survey], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++

	var matched []models.Survey
	for _, id := range b.order {
		s := b.surveys[id]
		if status := query.Get("status"); status != "" && string(s.Status) != status {
			continue
		}
		if query.Get("responded") == "true" && !b.responded[id] {
			continue
		}
		matched = append(matched, *s)
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return &dto.ListEnvelope[models.Survey]{
		Result: matched[start:end],
		Total:  int64(len(matched)),
		Page:   page,
		Limit:  limit,
	}, nil
}

func (b *fakeBackend) GetSurvey(_ context.Context, _ *models.Actor, id string) (*models.Survey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.getCalls++
	s, ok := b.surveys[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("survey not found")
	}
	cp := *s
	return &cp, nil
}

func (b *fakeBackend) CreateSurvey(_ context.Context, _ *models.Actor, payload dto.SurveyRequest) (*models.Survey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := "s" + strconv.Itoa(len(b.order)+1)
	s := &models.Survey{ID: id, Title: payload.Title, SurveyType: payload.SurveyType, Status: payload.Status}
	b.surveys[id] = s
	b.order = append(b.order, id)
	cp := *s
	return &cp, nil
}

func (b *fakeBackend) UpdateSurvey(_ context.Context, _ *models.Actor, id string, payload dto.SurveyRequest) (*models.Survey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surveys[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("survey not found")
	}
	s.Title = payload.Title
	cp := *s
	return &cp, nil
}

func (b *fakeBackend) DeleteSurvey(_ context.Context, _ *models.Actor, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.surveys, id)
	return nil
}

func (b *fakeBackend) UpdateSurveyStatus(_ context.Context, _ *models.Actor, id string, status models.SurveyStatus) (*models.Survey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusCalls++
	s := b.surveys[id]
	s.Status = status
	cp := *s
	return &cp, nil
}

func (b *fakeBackend) SubmitAnswers(_ context.Context, actor *models.Actor, surveyID string, answers []models.Answer, _ string) (*models.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitCalls++
	if b.submitErr != nil {
		return nil, b.submitErr
	}
	r := &models.Response{
		ID:        "r" + strconv.Itoa(b.submitCalls),
		SurveyID:  surveyID,
		UserID:    actor.UserID,
		Answers:   answers,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	b.responses[r.ID] = r
	b.responded[surveyID] = true
	return r, nil
}

func (b *fakeBackend) GetResponse(_ context.Context, _ *models.Actor, id string) (*models.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.responses[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("response not found")
	}
	cp := *r
	return &cp, nil
}

func (b *fakeBackend) ListCommunitySessions(_ context.Context, _ *models.Actor, _ url.Values) (*dto.ListEnvelope[models.CommunitySession], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionListCalls++
	return &dto.ListEnvelope[models.CommunitySession]{
		Result: append([]models.CommunitySession(nil), b.sessions...),
		Total:  int64(len(b.sessions)),
	}, nil
}

func (b *fakeBackend) GetCommunitySession(_ context.Context, _ *models.Actor, id string) (*models.CommunitySession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sessions {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("session not found")
}

func (b *fakeBackend) CreateCommunitySession(_ context.Context, _ *models.Actor, payload dto.CreateSessionRequest) (*models.CommunitySession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := models.CommunitySession{ID: "cs" + strconv.Itoa(len(b.sessions)+1), Title: payload.Title, Type: payload.Type}
	b.sessions = append(b.sessions, s)
	return &s, nil
}

func (b *fakeBackend) DeleteCommunitySession(_ context.Context, _ *models.Actor, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.sessions {
		if s.ID == id {
			b.sessions = append(b.sessions[:i], b.sessions[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("session not found")
}

func (b *fakeBackend) ListNotifications(_ context.Context, _ *models.Actor, query url.Values) (*dto.MetaEnvelope[models.Notification], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notificationCalls++
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	return &dto.MetaEnvelope[models.Notification]{
		Result: append([]models.Notification(nil), b.notifications...),
		Meta:   dto.NotificationMeta{Total: 45, Page: page, Limit: limit},
	}, nil
}

func (b *fakeBackend) MarkNotificationRead(_ context.Context, _ *models.Actor, id string) (*models.Notification, error) {
	return &models.Notification{ID: id, IsRead: true}, nil
}

func (b *fakeBackend) counts() (list, get, submit, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls, b.getCalls, b.submitCalls, b.statusCalls
}

// recordingPublisher keeps published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// recordingNotifier keeps realtime hints
type recordingNotifier struct {
	mu         sync.Mutex
	users      []string
	broadcasts int
}

func (n *recordingNotifier) NotifyUser(userID string, _ ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
}

func (n *recordingNotifier) Broadcast(...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts++
}

type fixture struct {
	backend     *fakeBackend
	publisher   *recordingPublisher
	notifier    *recordingNotifier
	ledger      *repositories.MemorySubmissionLedger
	surveys     SurveyService
	submissions SubmissionService
	aggregation AggregationService
	sessions    CommunitySessionService
	feed        NotificationService
}

func newFixture(surveys ...models.Survey) *fixture {
	f := &fixture{
		backend:   newFakeBackend(surveys...),
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
		ledger:    repositories.NewMemorySubmissionLedger(),
	}
	c := cache.New(cache.NewMemoryStore(time.Minute, time.Minute), zerolog.Nop())
	authz := auth.NewAuthorizationService()
	log := zerolog.Nop()

	f.surveys = NewSurveyService(f.backend, c, authz, f.publisher, f.notifier, log,
		WithClock(func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }))
	f.submissions = NewSubmissionService(f.surveys, f.backend, f.ledger, c, authz, f.publisher, f.notifier, log)
	f.aggregation = NewAggregationService(f.surveys, f.backend, c, authz, log)
	f.sessions = NewCommunitySessionService(f.backend, c, authz, f.notifier, log)
	f.feed = NewNotificationService(f.backend, c, f.notifier, log)
	return f
}

func manager() *models.Actor {
	return &models.Actor{UserID: "m1", Roles: []string{models.RoleManager}, Token: "t-m1"}
}

func worker(id string) *models.Actor {
	return &models.Actor{UserID: id, Roles: []string{models.RoleHealthWorker}, Token: "t-" + id}
}

func text(s string) *string { return &s }

// householdSurvey is an active general survey with one required and one optional question
func householdSurvey() models.Survey {
	return models.Survey{
		ID:         "s1",
		Title:      "Household water access",
		SurveyType: models.SurveyTypeGeneral,
		Status:     models.SurveyStatusActive,
		QuestionItems: []models.Question{
			{ID: "q1", Title: "Main water source", Type: models.QuestionSingleChoice, Required: true, Options: []string{"Tap", "Well", "River"}},
			{ID: "q2", Title: "Comments", Type: models.QuestionTextarea},
			{ID: "q3", Title: "Satisfaction", Type: models.QuestionRating},
		},
	}
}
