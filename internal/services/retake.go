package services

import (
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type OnboardingPrefill struct {
	DisplayName     string `json:"display_name,omitempty"`
	Role            string `json:"role,omitempty"`
	Industry        string `json:"industry,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
}

type RetakePrefill struct {
	OriginalSessionID uuid.UUID         `json:"original_session_id"`
	QuizID            uuid.UUID         `json:"quiz_id"`
	Answers           map[uuid.UUID]int `json:"answers"`
	Onboarding        OnboardingPrefill `json:"onboarding"`
}

type RetakeService interface {
	// GetRetakePrefill returns the earlier answers that still apply to
	// currentQuizID plus the onboarding fields of the session's owner. A session
	// that was never scored yields no answers.
	GetRetakePrefill(dbc dbctx.Context, originalSessionID, currentQuizID uuid.UUID) (*RetakePrefill, error)
}

type retakeService struct {
	db        *gorm.DB
	log       *logger.Logger
	quizzes   repos.QuizRepo
	sessions  repos.SessionRepo
	responses repos.ResponseRepo
	results   repos.ResultRepo
	profiles  repos.UserProfileRepo
}

func NewRetakeService(
	db *gorm.DB,
	log *logger.Logger,
	quizzes repos.QuizRepo,
	sessions repos.SessionRepo,
	responses repos.ResponseRepo,
	results repos.ResultRepo,
	profiles repos.UserProfileRepo,
) RetakeService {
	return &retakeService{
		db:        db,
		log:       log.With("service", "RetakeService"),
		quizzes:   quizzes,
		sessions:  sessions,
		responses: responses,
		results:   results,
		profiles:  profiles,
	}
}

func (s *retakeService) GetRetakePrefill(dbc dbctx.Context, originalSessionID, currentQuizID uuid.UUID) (*RetakePrefill, error) {
	const op = "retake.prefill"
	original, err := s.sessions.GetByID(dbc, originalSessionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if original == nil {
		return nil, apierr.NotFound(op, "session %s not found", originalSessionID)
	}
	q, err := s.quizzes.GetByID(dbc, currentQuizID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if q == nil {
		return nil, apierr.NotFound(op, "quiz %s not found", currentQuizID)
	}

	out := &RetakePrefill{
		OriginalSessionID: original.ID,
		QuizID:            q.ID,
		Answers:           map[uuid.UUID]int{},
	}

	// Both lookups are reads; they run outside any caller transaction so they
	// never share one *gorm.DB across goroutines.
	g, gctx := errgroup.WithContext(dbc.Ctx)
	readDBC := dbctx.Context{Ctx: gctx}

	g.Go(func() error {
		res, err := s.results.GetBySessionID(readDBC, original.ID)
		if err != nil || res == nil {
			return err
		}
		valid, err := s.quizzes.QuestionIDs(readDBC, q.ID)
		if err != nil {
			return err
		}
		keep := make(map[uuid.UUID]struct{}, len(valid))
		for _, id := range valid {
			keep[id] = struct{}{}
		}
		responses, err := s.responses.ListBySession(readDBC, original.ID)
		if err != nil {
			return err
		}
		for _, r := range responses {
			if _, ok := keep[r.QuestionID]; ok {
				out.Answers[r.QuestionID] = r.Value
			}
		}
		return nil
	})

	g.Go(func() error {
		identity := original.IdentityValue()
		if identity == "" {
			return nil
		}
		p, err := s.profiles.GetByIdentity(readDBC, identity)
		if err != nil || p == nil {
			return err
		}
		out.Onboarding = OnboardingPrefill{
			DisplayName:     p.DisplayName,
			Role:            p.Role,
			Industry:        p.Industry,
			ExperienceLevel: p.ExperienceLevel,
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}
