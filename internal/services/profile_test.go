package services

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/typecast-backend/internal/data/repos"
	"github.com/yungbote/typecast-backend/internal/modules/slug"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

func TestEnsureProfileIsIdempotent(t *testing.T) {
	h := newHarness(t)
	a, err := h.profiles.EnsureProfile(anon(), "auth0|jane", ProfileClaims{DisplayName: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	b, err := h.profiles.EnsureProfile(anon(), "auth0|jane", ProfileClaims{DisplayName: "Someone Else"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "jane-doe", b.Slug)
}

func TestEnsureProfileSlugCandidates(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		identity string
		claims   ProfileClaims
		want     string
	}{
		{"auth0|1", ProfileClaims{DisplayName: "Jane Doe"}, "jane-doe"},
		{"auth0|2", ProfileClaims{DisplayName: "Jane Doe"}, "jane-doe-1"},
		{"auth0|3", ProfileClaims{DisplayName: "Jane  Doe!"}, "jane-doe-2"},
		{"auth0|4", ProfileClaims{Email: "j.smith@example.com"}, "jsmith"},
		{"auth0|5", ProfileClaims{DisplayName: "Admin"}, "admin-1"},
		{"auth0|6", ProfileClaims{}, slug.FromIdentity("auth0|6")},
	}
	for _, tc := range cases {
		p, err := h.profiles.EnsureProfile(anon(), tc.identity, tc.claims)
		require.NoError(t, err, tc.identity)
		assert.Equal(t, tc.want, p.Slug, tc.identity)
		assert.NoError(t, slug.Validate(p.Slug))
	}

	_, err := h.profiles.EnsureProfile(anon(), "  ", ProfileClaims{})
	assert.True(t, apierr.IsCode(err, apierr.CodeValidation))
}

func TestEnsureProfileConcurrentSameIdentity(t *testing.T) {
	h := newHarness(t)
	const n = 8
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := h.profiles.EnsureProfile(anon(), "auth0|jane", ProfileClaims{DisplayName: "Jane Doe"})
			if assert.NoError(t, err) {
				ids[i] = p.ID.String()
			}
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
}

// lyingSlugRepo reports the first few slugs as free even when they are not,
// forcing EnsureProfile down its insert-conflict path.
type lyingSlugRepo struct {
	repos.UserProfileRepo
	lies atomic.Int32
}

func (r *lyingSlugRepo) SlugExists(dbc dbctx.Context, s string) (bool, error) {
	if r.lies.Add(-1) >= 0 {
		return false, nil
	}
	return r.UserProfileRepo.SlugExists(dbc, s)
}

func TestEnsureProfileRetriesSlugRace(t *testing.T) {
	var lying *lyingSlugRepo
	h := newHarness(t, withUserRepo(func(inner repos.UserProfileRepo) repos.UserProfileRepo {
		lying = &lyingSlugRepo{UserProfileRepo: inner}
		return lying
	}))
	_, err := h.profiles.EnsureProfile(anon(), "auth0|1", ProfileClaims{DisplayName: "Jane Doe"})
	require.NoError(t, err)

	lying.lies.Store(2)
	p, err := h.profiles.EnsureProfile(anon(), "auth0|2", ProfileClaims{DisplayName: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "jane-doe-1", p.Slug)
	assert.NotEmpty(t, h.hooks.Conflicts, "the lost race should surface as a conflict")
}

func TestCheckSlugAvailability(t *testing.T) {
	h := newHarness(t)
	_, err := h.profiles.EnsureProfile(anon(), "auth0|jane", ProfileClaims{DisplayName: "Jane Doe"})
	require.NoError(t, err)

	cases := map[string]struct {
		available bool
		reason    string
	}{
		"jane-doe":  {false, "taken"},
		"Jane-Doe ": {false, "taken"},
		"john-doe":  {true, "ok"},
		"ab":        {false, "too_short"},
		"support":   {false, "reserved"},
		"-bad":      {false, "invalid_format"},
	}
	for in, want := range cases {
		got, err := h.profiles.CheckSlugAvailability(anon(), in)
		require.NoError(t, err)
		assert.Equal(t, want.available, got.Available, in)
		assert.Equal(t, want.reason, got.Reason, in)
	}
}

func TestClaimSlug(t *testing.T) {
	h := newHarness(t)
	_, err := h.profiles.EnsureProfile(anon(), "auth0|john", ProfileClaims{DisplayName: "John Doe"})
	require.NoError(t, err)

	ctx := as("auth0|jane", "Jane Doe")
	p, err := h.profiles.ClaimSlug(ctx, "auth0|jane", "Jane-Rocks")
	require.NoError(t, err)
	assert.Equal(t, "jane-rocks", p.Slug)
	assert.Contains(t, h.cache.invalidated, "jane-doe", "old slug must be evicted")

	p, err = h.profiles.ClaimSlug(ctx, "auth0|jane", "jane-rocks")
	require.NoError(t, err, "claiming the slug you own is a no-op")
	assert.Equal(t, "jane-rocks", p.Slug)

	_, err = h.profiles.ClaimSlug(ctx, "auth0|jane", "john-doe")
	assert.True(t, apierr.IsCode(err, apierr.CodeConflict), "taken: %v", err)

	_, err = h.profiles.ClaimSlug(ctx, "auth0|jane", "admin")
	assert.True(t, apierr.IsCode(err, apierr.CodeValidation), "reserved: %v", err)

	_, err = h.profiles.ClaimSlug(ctx, "auth0|jane", "x")
	assert.True(t, apierr.IsCode(err, apierr.CodeValidation), "too short: %v", err)
}

func TestUpdateOnboarding(t *testing.T) {
	h := newHarness(t)
	role, industry := "  Engineer ", "Software"
	p, err := h.profiles.UpdateOnboarding(as("auth0|jane", "Jane Doe"), "auth0|jane", OnboardingInput{Role: &role, Industry: &industry})
	require.NoError(t, err)
	assert.Equal(t, "Engineer", p.Role)
	assert.Equal(t, "Software", p.Industry)
	assert.Equal(t, "jane-doe", p.Slug)

	tooLong := strings.Repeat("x", maxOnboardingFieldLen+1)
	_, err = h.profiles.UpdateOnboarding(anon(), "auth0|jane", OnboardingInput{Role: &tooLong})
	assert.True(t, apierr.IsCode(err, apierr.CodeValidation))
}
