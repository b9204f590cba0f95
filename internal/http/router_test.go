package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/typecast-backend/internal/clients/redis"
	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	"github.com/yungbote/typecast-backend/internal/data/repos/testutil"
	types "github.com/yungbote/typecast-backend/internal/domain"
	httpH "github.com/yungbote/typecast-backend/internal/http/handlers"
	httpMW "github.com/yungbote/typecast-backend/internal/http/middleware"
	"github.com/yungbote/typecast-backend/internal/modules/personality"
	"github.com/yungbote/typecast-backend/internal/services"
)

const testSecret = "router-test-secret"

type apiFixture struct {
	t      *testing.T
	engine *gin.Engine
	quiz   *types.Quiz
	stats  *aggregates.LogHooks
}

func newAPIFixture(t *testing.T, passcodeGate bool) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	catalog, err := personality.DefaultCatalog()
	require.NoError(t, err)
	stats := aggregates.NewLogHooks(log)
	cache := redis.NoopCache{}

	profiles := services.NewProfileService(db, log, set.UserProfile, cache, stats)
	sessions := services.NewSessionService(db, log, set.Quiz, set.Session, set.Response)
	results := services.NewResultService(db, log, services.ResultServiceDeps{
		Quizzes:   set.Quiz,
		Sessions:  set.Session,
		Responses: set.Response,
		Results:   set.Result,
		Latest:    set.LatestResult,
		Profiles:  profiles,
		Evaluator: personality.NewEvaluator(catalog),
		Cache:     cache,
		Hooks:     stats,
	})
	retake := services.NewRetakeService(db, log, set.Quiz, set.Session, set.Response, set.Result, set.UserProfile)
	sharing := services.NewSharingService(db, log, services.SharingConfig{PasscodeEnabled: passcodeGate}, services.SharingServiceDeps{
		Sessions: set.Session,
		Results:  set.Result,
		Latest:   set.LatestResult,
		Users:    set.UserProfile,
		Profiles: profiles,
		Catalog:  catalog,
		Cache:    cache,
		Hooks:    stats,
	})
	verifier := services.NewIdentityVerifier(log, services.IdentityConfig{SecretKey: testSecret})

	engine := NewRouter(RouterConfig{
		Log:            log,
		Hooks:          stats,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, verifier),
		QuizHandler:    httpH.NewQuizHandler(sessions, retake, "salt"),
		ResultHandler:  httpH.NewResultHandler(results, sharing),
		SharingHandler: httpH.NewSharingHandler(sharing),
		ProfileHandler: httpH.NewProfileHandler(profiles),
		HealthHandler:  httpH.NewHealthHandler(nil, stats),
	})
	return &apiFixture{
		t:      t,
		engine: engine,
		quiz:   testutil.SeedQuiz(t, context.Background(), db, 2),
		stats:  stats,
	}
}

func token(t *testing.T, sub, name string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.IdentityClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

type call struct {
	method, path string
	body         any
	token        string
	header       map[string]string
}

func (f *apiFixture) do(c call) (int, map[string]any) {
	f.t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// answered starts an anonymous session and answers every question forward.
func (f *apiFixture) answered() string {
	f.t.Helper()
	status, body := f.do(call{method: http.MethodPost, path: "/api/quizzes/" + f.quiz.ID.String() + "/sessions"})
	require.Equal(f.t, http.StatusCreated, status, body)
	sessionID := body["session"].(map[string]any)["id"].(string)

	for _, sec := range f.quiz.Sections {
		for _, q := range sec.Questions {
			v := 2
			if q.IsReversed {
				v = -2
			}
			status, body := f.do(call{
				method: http.MethodPut,
				path:   "/api/sessions/" + sessionID + "/responses",
				body:   map[string]any{"question_id": q.ID, "value": v},
			})
			require.Equal(f.t, http.StatusOK, status, body)
		}
	}
	return sessionID
}

func TestRouterQuizFlow(t *testing.T) {
	f := newAPIFixture(t, false)

	status, body := f.do(call{method: http.MethodGet, path: "/healthcheck"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = f.do(call{method: http.MethodGet, path: "/api/quizzes/" + f.quiz.ID.String()})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["quiz"].(map[string]any)["sections"], 4)

	sessionID := f.answered()

	status, body = f.do(call{
		method: http.MethodPut,
		path:   "/api/sessions/" + sessionID + "/responses",
		body:   map[string]any{"question_id": f.quiz.Sections[0].Questions[0].ID, "value": 9},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", errorCode(body))

	status, body = f.do(call{method: http.MethodPost, path: "/api/sessions/" + sessionID + "/complete"})
	require.Equal(t, http.StatusOK, status, body)
	assert.NotEmpty(t, body["session"].(map[string]any)["completed_at"])

	status, body = f.do(call{method: http.MethodPost, path: "/api/sessions/" + sessionID + "/result"})
	require.Equal(t, http.StatusOK, status, body)
	res := body["result"].(map[string]any)
	assert.Equal(t, "SLXV", res["personality_code"])
	assert.NotNil(t, res["personality_type"])

	status, _ = f.do(call{method: http.MethodGet, path: "/api/sessions/" + sessionID + "/result"})
	assert.Equal(t, http.StatusOK, status)

	status, body = f.do(call{method: http.MethodGet, path: "/api/sessions/" + sessionID + "/retake-prefill?quiz_id=" + f.quiz.ID.String()})
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["prefill"].(map[string]any)["answers"], 8)

	status, body = f.do(call{method: http.MethodGet, path: "/api/sessions/not-a-uuid/result"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_id", errorCode(body))

	status, body = f.do(call{method: http.MethodGet, path: "/api/sessions/" + f.quiz.ID.String() + "/result"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorCode(body))
}

func TestRouterLinkAndShare(t *testing.T) {
	f := newAPIFixture(t, false)
	sessionID := f.answered()
	_, _ = f.do(call{method: http.MethodPost, path: "/api/sessions/" + sessionID + "/result"})
	jane := token(t, "auth0|jane", "Jane Doe")

	status, body := f.do(call{method: http.MethodPost, path: "/api/sessions/" + sessionID + "/link"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", errorCode(body))

	status, body = f.do(call{method: http.MethodPost, path: "/api/sessions/" + sessionID + "/link", token: jane})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, services.LinkStatusLinked, body["status"])

	status, body = f.do(call{method: http.MethodPost, path: "/api/sessions/" + sessionID + "/link", token: token(t, "auth0|john", "John")})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", errorCode(body))

	status, body = f.do(call{
		method: http.MethodPost,
		path:   "/api/sessions/" + sessionID + "/sharing",
		token:  jane,
		body:   map[string]any{"is_public": true},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "jane-doe", body["sharing"].(map[string]any)["slug"])

	status, body = f.do(call{method: http.MethodGet, path: "/api/public/Jane-Doe"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "jane-doe", body["profile"].(map[string]any)["slug"])

	status, body = f.do(call{method: http.MethodGet, path: "/api/me/result", token: jane})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, sessionID, body["result"].(map[string]any)["session_id"])

	status, body = f.do(call{method: http.MethodGet, path: "/api/slugs/jane-doe/availability"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["available"])
	assert.Equal(t, "taken", body["reason"])

	status, body = f.do(call{method: http.MethodPut, path: "/api/me/slug", token: jane, body: map[string]any{"slug": "jane"}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "jane", body["profile"].(map[string]any)["slug"])

	status, body = f.do(call{method: http.MethodPatch, path: "/api/me/onboarding", token: jane, body: map[string]any{"role": "Engineer"}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Engineer", body["profile"].(map[string]any)["role"])

	status, _ = f.do(call{method: http.MethodGet, path: "/api/public/jane"})
	assert.Equal(t, http.StatusOK, status)

	assert.NotZero(t, f.stats.Snapshot().Operations["sharing.toggle:success"])
}

func TestRouterPasscodeChallenge(t *testing.T) {
	f := newAPIFixture(t, true)
	sessionID := f.answered()
	jane := token(t, "auth0|jane", "Jane Doe")
	_, _ = f.do(call{method: http.MethodPost, path: "/api/sessions/" + sessionID + "/result", token: jane})

	status, body := f.do(call{
		method: http.MethodPost,
		path:   "/api/sessions/" + sessionID + "/sharing",
		token:  jane,
		body:   map[string]any{"is_public": true, "passcode": "1234"},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["sharing"].(map[string]any)["has_passcode"])

	status, body = f.do(call{method: http.MethodGet, path: "/api/public/jane-doe"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, string(services.CodePasscodeRequired), errorCode(body))

	status, body = f.do(call{method: http.MethodGet, path: "/api/public/jane-doe?passcode=9999"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, string(services.CodePasscodeInvalid), errorCode(body))

	status, _ = f.do(call{method: http.MethodGet, path: "/api/public/jane-doe", header: map[string]string{"X-Passcode": "1234"}})
	assert.Equal(t, http.StatusOK, status)

	status, body = f.do(call{method: http.MethodPost, path: "/api/public/jane-doe/passcode", body: map[string]any{"passcode": "1234"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "ok", body["reason"])
}

func TestRouterRejectsBadTokens(t *testing.T) {
	f := newAPIFixture(t, false)

	status, body := f.do(call{method: http.MethodPost, path: "/api/quizzes/" + f.quiz.ID.String() + "/sessions", token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", errorCode(body))

	status, _ = f.do(call{method: http.MethodGet, path: "/api/me", token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = f.do(call{method: http.MethodGet, path: "/api/me", token: token(t, "auth0|jane", "Jane Doe")})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "jane-doe", body["profile"].(map[string]any)["slug"])
}
