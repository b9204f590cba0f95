package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/clients/redis"
	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/modules/slug"
	"github.com/yungbote/typecast-backend/internal/observability"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

// maxProfileInsertAttempts bounds retries after losing a slug insert race.
const maxProfileInsertAttempts = 5

const maxOnboardingFieldLen = 120

type SlugAvailability struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

// OnboardingInput updates only the non-nil fields.
type OnboardingInput struct {
	DisplayName     *string `json:"display_name"`
	Role            *string `json:"role"`
	Industry        *string `json:"industry"`
	ExperienceLevel *string `json:"experience_level"`
}

type ProfileService interface {
	// EnsureProfile returns the profile for identity, creating it with a fresh
	// slug when missing. Safe to call repeatedly and concurrently.
	EnsureProfile(dbc dbctx.Context, identity string, claims ProfileClaims) (*types.UserProfile, error)
	GetByIdentity(dbc dbctx.Context, identity string) (*types.UserProfile, error)
	CheckSlugAvailability(dbc dbctx.Context, s string) (*SlugAvailability, error)
	ClaimSlug(dbc dbctx.Context, identity, s string) (*types.UserProfile, error)
	UpdateOnboarding(dbc dbctx.Context, identity string, in OnboardingInput) (*types.UserProfile, error)
}

type profileService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.UserProfileRepo
	cache    redis.PublicCache
	deps     aggregates.Deps
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profiles repos.UserProfileRepo, cache redis.PublicCache, hooks aggregates.Hooks) ProfileService {
	if cache == nil {
		cache = redis.NoopCache{}
	}
	return &profileService{
		db:       db,
		log:      log.With("service", "ProfileService"),
		profiles: profiles,
		cache:    cache,
		deps:     aggregates.Deps{DB: db, Hooks: hooks},
	}
}

func (s *profileService) EnsureProfile(dbc dbctx.Context, identity string, claims ProfileClaims) (_ *types.UserProfile, err error) {
	const op = "profile.ensure"
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, apierr.Validation(op, "identity is required")
	}
	ctx, span := observability.StartSpan(dbc.Ctx, "ProfileService.EnsureProfile",
		attribute.Bool("claims.display_name", claims.DisplayName != ""),
	)
	defer func() { observability.EndSpan(span, err) }()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	existing, err := s.profiles.GetByIdentity(dbc, identity)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if existing != nil {
		return existing, nil
	}

	base := slug.Candidate(claims.DisplayName, claims.Email, identity)
	taken := func(_ context.Context, candidate string) (bool, error) {
		return s.profiles.SlugExists(dbc, candidate)
	}
	start := 0
	for attempt := 0; attempt < maxProfileInsertAttempts; attempt++ {
		candidate, err := slug.AllocateFrom(ctx, base, start, taken)
		if err != nil {
			return nil, apierr.Wrap(apierr.CodeInternal, op, err)
		}
		row := &types.UserProfile{
			Identity:    identity,
			Slug:        candidate,
			DisplayName: strings.TrimSpace(claims.DisplayName),
			Email:       strings.TrimSpace(claims.Email),
		}
		var created *types.UserProfile
		err = aggregates.Write(dbc, s.deps, op, func(tx dbctx.Context) error {
			var cerr error
			created, cerr = s.profiles.Create(tx, row)
			return cerr
		})
		if err == nil {
			s.log.Info("profile created", "identity", identity, "slug", created.Slug)
			return created, nil
		}
		if !apierr.IsCode(err, apierr.CodeConflict) {
			return nil, err
		}

		// Either another request created this identity's profile, or someone
		// else took the slug between the availability check and the insert.
		winner, gerr := s.profiles.GetByIdentity(dbc, identity)
		if gerr != nil {
			return nil, aggregates.MapError(op, gerr)
		}
		if winner != nil {
			return winner, nil
		}
		start = slug.SuffixOf(base, candidate) + 1
		s.log.Debug("slug insert race, retrying", "slug", candidate, "attempt", attempt+1)
	}
	return nil, apierr.Conflict(op, "could not allocate a unique slug for %q", base)
}

func (s *profileService) GetByIdentity(dbc dbctx.Context, identity string) (*types.UserProfile, error) {
	const op = "profile.get"
	p, err := s.profiles.GetByIdentity(dbc, strings.TrimSpace(identity))
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if p == nil {
		return nil, apierr.NotFound(op, "no profile for this user")
	}
	return p, nil
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *profileService) CheckSlugAvailability(dbc dbctx.Context, raw string) (*SlugAvailability, error) {
	candidate := normalizeSlug(raw)
	out := &SlugAvailability{Slug: candidate}
	if err := slug.Validate(candidate); err != nil {
		out.Reason = slug.Reason(err)
		return out, nil
	}
	exists, err := s.profiles.SlugExists(dbc, candidate)
	if err != nil {
		return nil, aggregates.MapError("profile.slug_availability", err)
	}
	if exists {
		out.Reason = "taken"
		return out, nil
	}
	out.Available = true
	out.Reason = "ok"
	return out, nil
}

func (s *profileService) ClaimSlug(dbc dbctx.Context, identity, raw string) (*types.UserProfile, error) {
	const op = "profile.claim_slug"
	candidate := normalizeSlug(raw)
	if err := slug.Validate(candidate); err != nil {
		return nil, apierr.Validation(op, "%s", err.Error())
	}
	p, err := s.EnsureProfile(dbc, identity, claimsFromContext(dbc.Ctx, identity))
	if err != nil {
		return nil, err
	}
	if p.Slug == candidate {
		return p, nil
	}
	owner, err := s.profiles.GetBySlug(dbc, candidate)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if owner != nil && owner.ID != p.ID {
		return nil, apierr.Conflict(op, "slug %q is already taken", candidate)
	}

	oldSlug := p.Slug
	err = aggregates.Write(dbc, s.deps, op, func(tx dbctx.Context) error {
		return s.profiles.UpdateFields(tx, p.ID, map[string]any{"slug": candidate})
	})
	if apierr.IsCode(err, apierr.CodeConflict) {
		return nil, apierr.Conflict(op, "slug %q is already taken", candidate)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(dbc, oldSlug, candidate)
	p.Slug = candidate
	return p, nil
}

func (s *profileService) UpdateOnboarding(dbc dbctx.Context, identity string, in OnboardingInput) (*types.UserProfile, error) {
	const op = "profile.update_onboarding"
	updates := map[string]any{}
	for col, v := range map[string]*string{
		"display_name":     in.DisplayName,
		"role":             in.Role,
		"industry":         in.Industry,
		"experience_level": in.ExperienceLevel,
	} {
		if v == nil {
			continue
		}
		val := strings.TrimSpace(*v)
		if len(val) > maxOnboardingFieldLen {
			return nil, apierr.Validation(op, "%s must be at most %d characters", col, maxOnboardingFieldLen)
		}
		updates[col] = val
	}

	p, err := s.EnsureProfile(dbc, identity, claimsFromContext(dbc.Ctx, identity))
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := aggregates.Write(dbc, s.deps, op, func(tx dbctx.Context) error {
		return s.profiles.UpdateFields(tx, p.ID, updates)
	}); err != nil {
		return nil, err
	}
	s.invalidate(dbc, p.Slug)
	return s.GetByIdentity(dbc, identity)
}

func (s *profileService) invalidate(dbc dbctx.Context, slugs ...string) {
	for _, sl := range slugs {
		if err := s.cache.Invalidate(dbc.Ctx, sl); err != nil {
			s.log.Warn("public cache invalidate failed", "slug", sl, "error", err)
		}
	}
}
