package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/clients/redis"
	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/modules/personality"
	"github.com/yungbote/typecast-backend/internal/observability"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

const (
	CodePasscodeRequired apierr.Code = "passcode_required"
	CodePasscodeInvalid  apierr.Code = "passcode_invalid"
)

const (
	LinkStatusLinked        = "linked"
	LinkStatusAlreadyLinked = "already_linked"
)

type ToggleSharingInput struct {
	SessionID uuid.UUID
	Identity  string
	Display   ProfileClaims
	IsPublic  bool
	// Passcode is ignored unless the passcode gate is enabled. A non-nil empty
	// value clears the stored passcode.
	Passcode *string
}

type SharingState struct {
	SessionID   uuid.UUID  `json:"session_id"`
	Slug        string     `json:"slug"`
	IsPublic    bool       `json:"is_public"`
	SharedAt    *time.Time `json:"shared_at,omitempty"`
	HasPasscode bool       `json:"has_passcode"`
}

type PublicProfile struct {
	Slug            string `json:"slug"`
	DisplayName     string `json:"display_name,omitempty"`
	Role            string `json:"role,omitempty"`
	Industry        string `json:"industry,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
}

type PublicResult struct {
	Profile PublicProfile `json:"profile"`
	Result  *ResultView   `json:"result"`
}

type PasscodeCheck struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

type LinkOutcome struct {
	Status string      `json:"status"`
	Result *ResultView `json:"result"`
}

type SharingService interface {
	ToggleSharing(dbc dbctx.Context, in ToggleSharingInput) (*SharingState, error)
	// GetPublicResult returns the result published under slug. When a
	// passcode guards it, a missing or wrong passcode yields a 401 error.
	GetPublicResult(dbc dbctx.Context, slug, passcode string) (*PublicResult, error)
	ValidatePasscode(dbc dbctx.Context, slug, passcode string) (*PasscodeCheck, error)
	LinkResult(dbc dbctx.Context, sessionID uuid.UUID, identity string, claims ProfileClaims) (*LinkOutcome, error)
}

type SharingConfig struct {
	PasscodeEnabled bool
}

type sharingService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      SharingConfig
	sessions repos.SessionRepo
	results  repos.ResultRepo
	latest   repos.LatestResultRepo
	users    repos.UserProfileRepo
	profiles ProfileService
	catalog  *personality.Catalog
	cache    redis.PublicCache
	deps     aggregates.Deps
}

type SharingServiceDeps struct {
	Sessions repos.SessionRepo
	Results  repos.ResultRepo
	Latest   repos.LatestResultRepo
	Users    repos.UserProfileRepo
	Profiles ProfileService
	Catalog  *personality.Catalog
	Cache    redis.PublicCache
	Hooks    aggregates.Hooks
}

func NewSharingService(db *gorm.DB, log *logger.Logger, cfg SharingConfig, d SharingServiceDeps) SharingService {
	cache := d.Cache
	if cache == nil {
		cache = redis.NoopCache{}
	}
	return &sharingService{
		db:       db,
		log:      log.With("service", "SharingService"),
		cfg:      cfg,
		sessions: d.Sessions,
		results:  d.Results,
		latest:   d.Latest,
		users:    d.Users,
		profiles: d.Profiles,
		catalog:  d.Catalog,
		cache:    cache,
		deps:     aggregates.Deps{DB: db, Hooks: d.Hooks},
	}
}

func (s *sharingService) ToggleSharing(dbc dbctx.Context, in ToggleSharingInput) (_ *SharingState, err error) {
	const op = "sharing.toggle"
	ctx, span := observability.StartSpan(dbc.Ctx, "SharingService.ToggleSharing",
		attribute.String("session_id", in.SessionID.String()),
		attribute.Bool("is_public", in.IsPublic),
	)
	defer func() { observability.EndSpan(span, err) }()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	if strings.TrimSpace(in.Identity) == "" {
		return nil, apierr.Unauthorized(op, "sign in to share a result")
	}
	res, session, err := s.loadResult(dbc, op, in.SessionID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.EnsureProfile(dbc, in.Identity, in.Display)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(op, res, session, profile, in.Identity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = aggregates.Write(dbc, s.deps, op, func(tx dbctx.Context) error {
		if res.ProfileID == nil {
			if err := s.link(tx, res, session, profile, in.Identity); err != nil {
				return err
			}
		}
		updates := map[string]any{"is_public": in.IsPublic}
		if in.IsPublic {
			if _, err := s.results.UnshareOthers(tx, profile.ID, res.ID); err != nil {
				return err
			}
			if res.SharedAt == nil {
				updates["shared_at"] = now
				res.SharedAt = &now
			}
		}
		if s.cfg.PasscodeEnabled && in.Passcode != nil {
			if pc := strings.TrimSpace(*in.Passcode); pc != "" {
				h := HashPasscode(pc)
				updates["passcode_hash"] = h
				res.PasscodeHash = &h
			} else {
				updates["passcode_hash"] = nil
				res.PasscodeHash = nil
			}
		}
		return s.results.UpdateFields(tx, res.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	res.IsPublic = in.IsPublic
	s.invalidate(ctx, profile.Slug)

	s.log.WithContext(ctx).Info("sharing updated", "session_id", in.SessionID, "slug", profile.Slug, "is_public", in.IsPublic)
	return &SharingState{
		SessionID:   in.SessionID,
		Slug:        profile.Slug,
		IsPublic:    res.IsPublic,
		SharedAt:    res.SharedAt,
		HasPasscode: s.cfg.PasscodeEnabled && res.HasPasscode(),
	}, nil
}

// cachedPublic is what the read cache stores: the public view plus the
// passcode hash, so the gate can be applied on a cache hit.
type cachedPublic struct {
	View         PublicResult `json:"view"`
	PasscodeHash string       `json:"passcode_hash,omitempty"`
}

func (s *sharingService) GetPublicResult(dbc dbctx.Context, rawSlug, passcode string) (_ *PublicResult, err error) {
	const op = "sharing.public_result"
	ctx, span := observability.StartSpan(dbc.Ctx, "SharingService.GetPublicResult")
	defer func() { observability.EndSpan(span, err) }()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	key := normalizeSlug(rawSlug)
	entry, err := s.publicEntry(dbc, op, key)
	if err != nil {
		return nil, err
	}
	if s.cfg.PasscodeEnabled && entry.PasscodeHash != "" {
		pc := strings.TrimSpace(passcode)
		if pc == "" {
			return nil, apierr.New(http.StatusUnauthorized, CodePasscodeRequired, errors.New("this result is protected by a passcode"))
		}
		if !passcodeMatches(entry.PasscodeHash, pc) {
			return nil, apierr.New(http.StatusUnauthorized, CodePasscodeInvalid, errors.New("incorrect passcode"))
		}
	}
	view := entry.View
	return &view, nil
}

func (s *sharingService) publicEntry(dbc dbctx.Context, op, key string) (*cachedPublic, error) {
	gen, genErr := s.cache.Generation(dbc.Ctx, key)
	if genErr != nil {
		s.log.Warn("public cache generation read failed", "slug", key, "error", genErr)
	}
	if raw, hit, err := s.cache.Get(dbc.Ctx, key); err != nil {
		s.log.Warn("public cache read failed", "slug", key, "error", err)
	} else if hit {
		var entry cachedPublic
		if err := json.Unmarshal(raw, &entry); err == nil {
			return &entry, nil
		}
		s.log.Warn("discarding unreadable public cache entry", "slug", key)
	}

	profile, err := s.users.GetBySlug(dbc, key)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if profile == nil {
		return nil, apierr.NotFound(op, "no public result for %q", key)
	}
	res, err := s.results.GetPublicByProfile(dbc, profile.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if res == nil {
		return nil, apierr.NotFound(op, "no public result for %q", key)
	}

	entry := &cachedPublic{
		View: PublicResult{
			Profile: PublicProfile{
				Slug:            profile.Slug,
				DisplayName:     profile.DisplayName,
				Role:            profile.Role,
				Industry:        profile.Industry,
				ExperienceLevel: profile.ExperienceLevel,
			},
			Result: newResultView(res, s.catalog),
		},
	}
	if res.PasscodeHash != nil {
		entry.PasscodeHash = *res.PasscodeHash
	}
	if raw, err := json.Marshal(entry); genErr == nil && err == nil {
		if err := s.cache.Set(dbc.Ctx, key, raw, gen); err != nil {
			s.log.Warn("public cache write failed", "slug", key, "error", err)
		}
	}
	return entry, nil
}

func (s *sharingService) ValidatePasscode(dbc dbctx.Context, rawSlug, passcode string) (*PasscodeCheck, error) {
	const op = "sharing.validate_passcode"
	key := normalizeSlug(rawSlug)
	profile, err := s.users.GetBySlug(dbc, key)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if profile == nil {
		return &PasscodeCheck{Reason: "not_found"}, nil
	}
	res, err := s.results.GetPublicByProfile(dbc, profile.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	switch {
	case res == nil:
		return &PasscodeCheck{Reason: "not_found"}, nil
	case !s.cfg.PasscodeEnabled || !res.HasPasscode():
		return &PasscodeCheck{Valid: true, Reason: "no_passcode"}, nil
	case strings.TrimSpace(passcode) == "":
		return &PasscodeCheck{Reason: "missing"}, nil
	case !passcodeMatches(*res.PasscodeHash, strings.TrimSpace(passcode)):
		return &PasscodeCheck{Reason: "mismatch"}, nil
	}
	return &PasscodeCheck{Valid: true, Reason: "ok"}, nil
}

func (s *sharingService) LinkResult(dbc dbctx.Context, sessionID uuid.UUID, identity string, claims ProfileClaims) (*LinkOutcome, error) {
	const op = "sharing.link"
	if strings.TrimSpace(identity) == "" {
		return nil, apierr.Unauthorized(op, "sign in to save a result")
	}
	res, session, err := s.loadResult(dbc, op, sessionID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.EnsureProfile(dbc, identity, claims)
	if err != nil {
		return nil, err
	}
	if res.ProfileID != nil && *res.ProfileID == profile.ID {
		return &LinkOutcome{Status: LinkStatusAlreadyLinked, Result: newResultView(res, s.catalog)}, nil
	}
	if err := checkOwnership(op, res, session, profile, identity); err != nil {
		return nil, err
	}

	if err := aggregates.Write(dbc, s.deps, op, func(tx dbctx.Context) error {
		return s.link(tx, res, session, profile, identity)
	}); err != nil {
		return nil, err
	}
	s.log.WithContext(dbc.Ctx).Info("result linked", "session_id", sessionID, "identity", identity)
	return &LinkOutcome{Status: LinkStatusLinked, Result: newResultView(res, s.catalog)}, nil
}

func (s *sharingService) loadResult(dbc dbctx.Context, op string, sessionID uuid.UUID) (*types.Result, *types.QuizSession, error) {
	res, err := s.results.GetBySessionID(dbc, sessionID)
	if err != nil {
		return nil, nil, aggregates.MapError(op, err)
	}
	if res == nil {
		return nil, nil, apierr.NotFound(op, "no result for session %s", sessionID)
	}
	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, nil, aggregates.MapError(op, err)
	}
	if session == nil {
		return nil, nil, apierr.NotFound(op, "session %s not found", sessionID)
	}
	return res, session, nil
}

// checkOwnership fails when the result or its session already belongs to a
// different identity.
func checkOwnership(op string, res *types.Result, session *types.QuizSession, profile *types.UserProfile, identity string) error {
	if res.ProfileID != nil && *res.ProfileID != profile.ID {
		return apierr.Conflict(op, "result is linked to another user")
	}
	if owner := session.IdentityValue(); owner != "" && owner != identity {
		return apierr.Conflict(op, "result is linked to another user")
	}
	return nil
}

// link attaches res to profile and moves the identity's latest-result pointer
// when res was computed no earlier than what it points at.
func (s *sharingService) link(tx dbctx.Context, res *types.Result, session *types.QuizSession, profile *types.UserProfile, identity string) error {
	if err := s.results.SetProfile(tx, res.ID, profile.ID); err != nil {
		return err
	}
	res.ProfileID = &profile.ID
	if err := s.sessions.SetIdentity(tx, session.ID, identity); err != nil {
		return err
	}

	cur, err := s.latest.GetByIdentity(tx, identity)
	if err != nil {
		return err
	}
	if cur != nil && cur.ResultID != res.ID {
		curRes, err := s.results.GetByID(tx, cur.ResultID)
		if err != nil {
			return err
		}
		if curRes != nil && curRes.ComputedAt.After(res.ComputedAt) {
			return nil
		}
	}
	return s.latest.Upsert(tx, identity, res.ID, session.ID)
}

func (s *sharingService) invalidate(ctx context.Context, slug string) {
	if err := s.cache.Invalidate(ctx, slug); err != nil {
		s.log.Warn("public cache invalidate failed", "slug", slug, "error", err)
	}
}
