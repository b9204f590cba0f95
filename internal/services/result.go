package services

import (
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

// ResultView is a stored result plus its catalog entry.
type ResultView struct {
	*types.Result
	PersonalityType *personality.PersonalityType `json:"personality_type,omitempty"`
}

type ResultService interface {
	// CalculateResult scores the session's current answers and stores the
	// outcome, replacing any earlier result for the same session.
	CalculateResult(dbc dbctx.Context, sessionID uuid.UUID) (*ResultView, error)
	GetResult(dbc dbctx.Context, sessionID uuid.UUID) (*ResultView, error)
	GetLatestResultForIdentity(dbc dbctx.Context, identity string) (*ResultView, error)
}

type resultService struct {
	db        *gorm.DB
	log       *logger.Logger
	quizzes   repos.QuizRepo
	sessions  repos.SessionRepo
	responses repos.ResponseRepo
	results   repos.ResultRepo
	latest    repos.LatestResultRepo
	profiles  ProfileService
	evaluator personality.Evaluator
	cache     redis.PublicCache
	deps      aggregates.Deps
}

type ResultServiceDeps struct {
	Quizzes   repos.QuizRepo
	Sessions  repos.SessionRepo
	Responses repos.ResponseRepo
	Results   repos.ResultRepo
	Latest    repos.LatestResultRepo
	Profiles  ProfileService
	Evaluator personality.Evaluator
	Cache     redis.PublicCache
	Hooks     aggregates.Hooks
}

func NewResultService(db *gorm.DB, log *logger.Logger, d ResultServiceDeps) ResultService {
	cache := d.Cache
	if cache == nil {
		cache = redis.NoopCache{}
	}
	return &resultService{
		db:        db,
		log:       log.With("service", "ResultService"),
		quizzes:   d.Quizzes,
		sessions:  d.Sessions,
		responses: d.Responses,
		results:   d.Results,
		latest:    d.Latest,
		profiles:  d.Profiles,
		evaluator: d.Evaluator,
		cache:     cache,
		deps:      aggregates.Deps{DB: db, Hooks: d.Hooks},
	}
}

func (s *resultService) CalculateResult(dbc dbctx.Context, sessionID uuid.UUID) (_ *ResultView, err error) {
	const op = "result.calculate"
	ctx, span := observability.StartSpan(dbc.Ctx, "ResultService.CalculateResult",
		attribute.String("session_id", sessionID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if session == nil {
		return nil, apierr.NotFound(op, "session %s not found", sessionID)
	}
	q, err := s.quizzes.GetWithContent(dbc, session.QuizID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if q == nil {
		return nil, apierr.NotFound(op, "quiz %s not found", session.QuizID)
	}
	responses, err := s.responses.ListBySession(dbc, sessionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	var profile *types.UserProfile
	identity := session.IdentityValue()
	if identity != "" {
		profile, err = s.profiles.EnsureProfile(dbc, identity, claimsFromContext(ctx, identity))
		if err != nil {
			return nil, err
		}
	}

	eval := s.evaluator.Evaluate(sectionInputs(q, s.log), answerMap(responses))
	row := resultRow(session.ID, eval, s.evaluator.Catalog)
	if profile != nil {
		row.ProfileID = &profile.ID
	}

	var stored *types.Result
	err = aggregates.Write(dbc, s.deps, op, func(tx dbctx.Context) error {
		var werr error
		stored, werr = s.results.Upsert(tx, row)
		if werr != nil {
			return werr
		}
		if profile != nil && stored.ProfileID == nil {
			if werr = s.results.SetProfile(tx, stored.ID, profile.ID); werr != nil {
				return werr
			}
			stored.ProfileID = &profile.ID
		}
		if identity != "" {
			return s.latest.Upsert(tx, identity, stored.ID, session.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stored.IsPublic && profile != nil {
		if cerr := s.cache.Invalidate(ctx, profile.Slug); cerr != nil {
			s.log.Warn("public cache invalidate failed", "slug", profile.Slug, "error", cerr)
		}
	}

	s.log.WithContext(ctx).Info("result calculated",
		"session_id", session.ID,
		"code", eval.Code,
		"answered", len(responses),
		"confidence", eval.Confidence,
	)
	return s.view(stored), nil
}

func (s *resultService) GetResult(dbc dbctx.Context, sessionID uuid.UUID) (*ResultView, error) {
	const op = "result.get"
	res, err := s.results.GetBySessionID(dbc, sessionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if res == nil {
		return nil, apierr.NotFound(op, "no result for session %s", sessionID)
	}
	return s.view(res), nil
}

func (s *resultService) GetLatestResultForIdentity(dbc dbctx.Context, identity string) (*ResultView, error) {
	const op = "result.get_latest"
	if identity == "" {
		return nil, apierr.Validation(op, "identity is required")
	}
	idx, err := s.latest.GetByIdentity(dbc, identity)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if idx == nil {
		return nil, apierr.NotFound(op, "no result yet")
	}
	res, err := s.results.GetByID(dbc, idx.ResultID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if res == nil {
		return nil, apierr.NotFound(op, "no result yet")
	}
	return s.view(res), nil
}

func (s *resultService) view(res *types.Result) *ResultView {
	return newResultView(res, s.evaluator.Catalog)
}

func newResultView(res *types.Result, c *personality.Catalog) *ResultView {
	v := &ResultView{Result: res}
	if res.PersonalityTypeCode != nil && c != nil {
		if t, ok := c.Lookup(*res.PersonalityTypeCode); ok {
			v.PersonalityType = t
		}
	}
	return v
}

// sectionInputs maps stored sections onto scoring dimensions. Sections with an
// unknown dimension are skipped.
func sectionInputs(q *types.Quiz, log *logger.Logger) []personality.SectionInput {
	out := make([]personality.SectionInput, 0, len(q.Sections))
	for _, sec := range q.Sections {
		d, err := personality.ParseDimension(sec.Dimension)
		if err != nil {
			log.Warn("skipping section with unknown dimension", "section_id", sec.ID, "dimension", sec.Dimension)
			continue
		}
		in := personality.SectionInput{Dimension: d}
		for _, qn := range sec.Questions {
			in.Questions = append(in.Questions, personality.QuestionInput{ID: qn.ID, Reversed: qn.IsReversed})
		}
		out = append(out, in)
	}
	return out
}

func answerMap(responses []*types.Response) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(responses))
	for _, r := range responses {
		out[r.QuestionID] = r.Value
	}
	return out
}

func resultRow(sessionID uuid.UUID, eval personality.Evaluation, c *personality.Catalog) *types.Result {
	t := eval.Traits
	row := &types.Result{
		SessionID: sessionID,

		WorkStyleScore:          eval.Scores[personality.WorkStyle],
		DecisionProcessScore:    eval.Scores[personality.DecisionProcess],
		CommunicationStyleScore: eval.Scores[personality.CommunicationStyle],
		FocusOrientationScore:   eval.Scores[personality.FocusOrientation],

		WorkStyleTrait:          string(t[personality.WorkStyle].Trait),
		WorkStyleLabel:          t[personality.WorkStyle].Label,
		DecisionProcessTrait:    string(t[personality.DecisionProcess].Trait),
		DecisionProcessLabel:    t[personality.DecisionProcess].Label,
		CommunicationStyleTrait: string(t[personality.CommunicationStyle].Trait),
		CommunicationStyleLabel: t[personality.CommunicationStyle].Label,
		FocusOrientationTrait:   string(t[personality.FocusOrientation].Trait),
		FocusOrientationLabel:   t[personality.FocusOrientation].Label,

		PersonalityCode: eval.Code,
		Confidence:      eval.Confidence,
		Fit:             eval.Fit,
	}
	if eval.Type != nil {
		code := eval.Type.Code
		row.PersonalityTypeCode = &code
	}
	if c != nil {
		row.CatalogVersion = c.Version()
	}
	return row
}
