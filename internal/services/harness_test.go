package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	aggtest "github.com/yungbote/typecast-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	"github.com/yungbote/typecast-backend/internal/data/repos/testutil"
	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/modules/personality"
	"github.com/yungbote/typecast-backend/internal/platform/ctxutil"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	generations map[string]int64
	hits        int
	invalidated []string
	// beforeSet runs outside the lock ahead of every Set.
	beforeSet func(slug string)
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}, generations: map[string]int64{}}
}

func (c *memCache) Generation(_ context.Context, slug string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[slug], nil
}

func (c *memCache) Get(_ context.Context, slug string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[slug]
	if ok {
		c.hits++
	}
	return raw, ok, nil
}

func (c *memCache) Set(_ context.Context, slug string, raw []byte, generation int64) error {
	if hook := c.beforeSet; hook != nil {
		hook(slug)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[slug] != generation {
		return nil
	}
	c.entries[slug] = raw
	return nil
}

func (c *memCache) Invalidate(_ context.Context, slug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[slug]++
	delete(c.entries, slug)
	c.invalidated = append(c.invalidated, slug)
	return nil
}

func (c *memCache) Close() error { return nil }

type harness struct {
	t     *testing.T
	db    *gorm.DB
	repos repos.Set
	cache *memCache
	hooks *aggtest.HooksRecorder
	quiz  *types.Quiz

	profiles ProfileService
	sessions SessionService
	results  ResultService
	retake   RetakeService
	sharing  SharingService
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	passcode bool
	users    func(repos.UserProfileRepo) repos.UserProfileRepo
	results  func(repos.ResultRepo) repos.ResultRepo
}

func withPasscodeGate() harnessOption {
	return func(c *harnessConfig) { c.passcode = true }
}

func withUserRepo(wrap func(repos.UserProfileRepo) repos.UserProfileRepo) harnessOption {
	return func(c *harnessConfig) { c.users = wrap }
}

func withResultRepo(wrap func(repos.ResultRepo) repos.ResultRepo) harnessOption {
	return func(c *harnessConfig) { c.results = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	var cfg harnessConfig
	for _, o := range opts {
		o(&cfg)
	}
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	if cfg.users != nil {
		set.UserProfile = cfg.users(set.UserProfile)
	}
	if cfg.results != nil {
		set.Result = cfg.results(set.Result)
	}
	catalog, err := personality.DefaultCatalog()
	require.NoError(t, err)

	h := &harness{
		t:     t,
		db:    db,
		repos: set,
		cache: newMemCache(),
		hooks: &aggtest.HooksRecorder{},
		quiz:  testutil.SeedQuiz(t, context.Background(), db, 4),
	}
	h.profiles = NewProfileService(db, log, set.UserProfile, h.cache, h.hooks)
	h.sessions = NewSessionService(db, log, set.Quiz, set.Session, set.Response)
	h.results = NewResultService(db, log, ResultServiceDeps{
		Quizzes:   set.Quiz,
		Sessions:  set.Session,
		Responses: set.Response,
		Results:   set.Result,
		Latest:    set.LatestResult,
		Profiles:  h.profiles,
		Evaluator: personality.NewEvaluator(catalog),
		Cache:     h.cache,
		Hooks:     h.hooks,
	})
	h.retake = NewRetakeService(db, log, set.Quiz, set.Session, set.Response, set.Result, set.UserProfile)
	h.sharing = NewSharingService(db, log, SharingConfig{PasscodeEnabled: cfg.passcode}, SharingServiceDeps{
		Sessions: set.Session,
		Results:  set.Result,
		Latest:   set.LatestResult,
		Users:    set.UserProfile,
		Profiles: h.profiles,
		Catalog:  catalog,
		Cache:    h.cache,
		Hooks:    h.hooks,
	})
	return h
}

func anon() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func as(identity, displayName string) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		Identity:    identity,
		DisplayName: displayName,
	})
	return dbctx.Context{Ctx: ctx}
}

func (h *harness) start(identity string) *types.QuizSession {
	h.t.Helper()
	s, err := h.sessions.StartSession(anon(), StartSessionInput{QuizID: h.quiz.ID, Identity: identity})
	require.NoError(h.t, err)
	return s
}

// answerAll answers every forward question with fwd and every reversed one
// with rev.
func (h *harness) answerAll(sessionID uuid.UUID, fwd, rev int) {
	h.t.Helper()
	for _, sec := range h.quiz.Sections {
		for _, q := range sec.Questions {
			v := fwd
			if q.IsReversed {
				v = rev
			}
			_, err := h.sessions.SubmitResponse(anon(), sessionID, q.ID, v)
			require.NoError(h.t, err)
		}
	}
}

// scored starts a session for identity, answers it and calculates the result.
func (h *harness) scored(identity, displayName string, fwd, rev int) (*types.QuizSession, *ResultView) {
	h.t.Helper()
	s := h.start(identity)
	h.answerAll(s.ID, fwd, rev)
	res, err := h.results.CalculateResult(as(identity, displayName), s.ID)
	require.NoError(h.t, err)
	return s, res
}
