package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appAuth "github.com/yigit/engageportal/internal/app/auth"
	"github.com/yigit/engageportal/internal/app/controllers"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/app/repositories"
	"github.com/yigit/engageportal/internal/app/services"
	"github.com/yigit/engageportal/internal/middleware"
	"github.com/yigit/engageportal/internal/pkg/auth"
	"github.com/yigit/engageportal/internal/pkg/cache"
	"github.com/yigit/engageportal/internal/pkg/events"
	"github.com/yigit/engageportal/internal/upstream"
)

const surveyJSON = `{"message":"ok","result":{
	"id":"s1","title":"Household water access","surveyType":"general","status":"active",
	"questionItems":[
		{"id":"q1","title":"Main water source","type":"single_choice","required":true,"options":["Tap","Well","River"]},
		{"id":"q2","title":"Comments","type":"textarea","required":false}
	]}}`

type gateway struct {
	router     *gin.Engine
	token      string
	jwt        *auth.JWTService
	postCalls  atomic.Int32
	writeCalls atomic.Int32
}

func newGateway(t *testing.T, checks map[string]controllers.HealthCheck) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gw := &gateway{}

	backend := gin.New()
	backend.GET("/surveys/:id", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(surveyJSON))
	})
	backend.POST("/surveys", func(c *gin.Context) {
		gw.writeCalls.Add(1)
		c.JSON(http.StatusCreated, gin.H{"message": "Survey created", "result": gin.H{"id": "s2", "title": "Clinic wait times", "status": "draft"}})
	})
	backend.DELETE("/community-sessions/:id", func(c *gin.Context) {
		gw.writeCalls.Add(1)
		c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
	})
	backend.POST("/surveys/:id/answers", func(c *gin.Context) {
		gw.postCalls.Add(1)
		c.JSON(http.StatusCreated, gin.H{"message": "Survey submitted", "result": gin.H{
			"id": "r1", "surveyId": c.Param("id"), "userId": "u1", "answers": []gin.H{},
		}})
	})
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := upstream.NewClient(upstream.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, zerolog.Nop())
	require.NoError(t, err)

	lgr := zerolog.Nop()
	c := cache.New(cache.NewMemoryStore(time.Minute, time.Minute), lgr)
	authz := appAuth.NewAuthorizationService()
	surveys := services.NewSurveyService(client, c, authz, events.NopPublisher{}, services.NopNotifier{}, lgr)
	submissions := services.NewSubmissionService(surveys, client, repositories.NewMemorySubmissionLedger(),
		c, authz, events.NopPublisher{}, services.NopNotifier{}, lgr)
	aggregation := services.NewAggregationService(surveys, client, c, authz, lgr)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour})
	gw.jwt = jwtService
	gw.token, _, err = jwtService.GenerateToken("u1", "amina@ngo.org", []string{models.RoleVolunteer})
	require.NoError(t, err)

	gw.router = gin.New()
	SetupRouter(gw.router, Controllers{
		Survey:           controllers.NewSurveyController(surveys, submissions, aggregation),
		Response:         controllers.NewResponseController(aggregation),
		CommunitySession: controllers.NewCommunitySessionController(services.NewCommunitySessionService(client, c, authz, services.NopNotifier{}, lgr)),
		Notification:     controllers.NewNotificationController(services.NewNotificationService(client, c, services.NopNotifier{}, lgr)),
		Health:           controllers.NewHealthController(checks, map[string]controllers.Gauge{"realtimeUsers": func() int { return 3 }}),
	}, middleware.NewAuthMiddleware(jwtService))
	return gw
}

func (gw *gateway) submit(body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/surveys/s1/answers", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+gw.token)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(dto.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	gw.router.ServeHTTP(w, req)
	return w
}

func TestSubmitThenReplay(t *testing.T) {
	gw := newGateway(t, nil)
	body := `{"answers":[{"questionId":"q1","answerOptions":["Well"]}]}`

	w := gw.submit(body, "key-123")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "key-123", w.Header().Get(dto.IdempotencyHeader))

	var first dto.ItemEnvelope[dto.SubmissionResult]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "r1", first.Result.Response.ID)
	assert.False(t, first.Result.Replayed)

	w = gw.submit(body, "key-123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var second dto.ItemEnvelope[dto.SubmissionResult]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.True(t, second.Result.Replayed)
	assert.Equal(t, "r1", second.Result.Response.ID)
	assert.Equal(t, int32(1), gw.postCalls.Load())
}

func TestSubmitWithoutKeyGeneratesOne(t *testing.T) {
	gw := newGateway(t, nil)

	w := gw.submit(`{"answers":[{"questionId":"q1","answerOptions":["Tap"]}]}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, w.Header().Get(dto.IdempotencyHeader), 36)
}

func TestSubmitMissingRequiredNeverReachesUpstream(t *testing.T) {
	gw := newGateway(t, nil)

	w := gw.submit(`{"answers":[{"questionId":"q2","answerText":"fine"}]}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, dto.ErrorCodeMissingAnswers, body.Error.Code)
	assert.Contains(t, body.Message, "Main water source")
	assert.Equal(t, int32(0), gw.postCalls.Load())
}

func TestSubmitRequiresToken(t *testing.T) {
	gw := newGateway(t, nil)
	gw.token = "garbage"

	w := gw.submit(`{"answers":[]}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("Clear-Site-Data"))
	assert.Equal(t, int32(0), gw.postCalls.Load())
}

func TestHealth(t *testing.T) {
	healthy := newGateway(t, map[string]controllers.HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	w := httptest.NewRecorder()
	healthy.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
		Stats      map[string]int    `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "up", body.Components["database"])
	assert.Equal(t, 3, body.Stats["realtimeUsers"])

	degraded := newGateway(t, map[string]controllers.HealthCheck{
		"cache": func(context.Context) error { return errors.New("connection refused") },
	})
	w = httptest.NewRecorder()
	degraded.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestRealtimeRouteOnlyWhenEnabled(t *testing.T) {
	gw := newGateway(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime", nil)
	req.Header.Set("Authorization", "Bearer "+gw.token)
	w := httptest.NewRecorder()
	gw.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteRoutesRequireManagementRole(t *testing.T) {
	gw := newGateway(t, nil)
	send := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		gw.router.ServeHTTP(w, req)
		return w
	}
	create := `{"title":"Clinic wait times","surveyType":"general","questionItems":[{"title":"Hours waited","type":"number"}]}`

	for _, route := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/v1/surveys", create},
		{http.MethodPut, "/api/v1/surveys/s1", create},
		{http.MethodDelete, "/api/v1/surveys/s1", ""},
		{http.MethodPatch, "/api/v1/surveys/s1/status", `{"status":"closed"}`},
		{http.MethodPost, "/api/v1/community-sessions", `{"title":"Town hall"}`},
		{http.MethodDelete, "/api/v1/community-sessions/c1", ""},
	} {
		w := send(route.method, route.path, gw.token, route.body)
		require.Equal(t, http.StatusForbidden, w.Code, route.method+" "+route.path)

		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, dto.ErrorCodeForbidden, body.Error.Code)
	}
	assert.Equal(t, int32(0), gw.writeCalls.Load())

	manager, _, err := gw.jwt.GenerateToken("u9", "lead@ngo.org", []string{models.RoleManager})
	require.NoError(t, err)
	w := send(http.MethodDelete, "/api/v1/community-sessions/c1", manager, "")
	assert.NotEqual(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Equal(t, int32(1), gw.writeCalls.Load())
}
