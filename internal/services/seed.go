package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/content"
	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type ContentService interface {
	// Seed writes the embedded quiz battery. Re-running it is safe.
	Seed(ctx context.Context) (*types.Quiz, error)
}

type contentService struct {
	db      *gorm.DB
	log     *logger.Logger
	quizzes repos.QuizRepo
	deps    aggregates.Deps
}

func NewContentService(db *gorm.DB, log *logger.Logger, quizzes repos.QuizRepo, hooks aggregates.Hooks) ContentService {
	return &contentService{
		db:      db,
		log:     log.With("service", "ContentService"),
		quizzes: quizzes,
		deps:    aggregates.Deps{DB: db, Hooks: hooks},
	}
}

func (s *contentService) Seed(ctx context.Context) (*types.Quiz, error) {
	const op = "content.seed"
	q, err := content.DefaultQuiz()
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeInternal, op, err)
	}
	if err := aggregates.Write(dbctx.Context{Ctx: ctx}, s.deps, op, func(tx dbctx.Context) error {
		return s.quizzes.UpsertContent(tx, q)
	}); err != nil {
		return nil, err
	}
	questions := 0
	for _, sec := range q.Sections {
		questions += len(sec.Questions)
	}
	s.log.Info("quiz content seeded", "quiz_id", q.ID, "slug", q.Slug, "sections", len(q.Sections), "questions", questions)
	return q, nil
}
