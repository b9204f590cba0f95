package quiz

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type QuizRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Quiz, error)
	// GetWithContent returns the quiz with sections and questions populated in
	// display order.
	GetWithContent(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error)
	QuestionBelongs(dbc dbctx.Context, quizID, questionID uuid.UUID) (bool, error)
	CountQuestions(dbc dbctx.Context, quizID uuid.UUID) (int64, error)
	QuestionIDs(dbc dbctx.Context, quizID uuid.UUID) ([]uuid.UUID, error)
	UpsertContent(dbc dbctx.Context, q *types.Quiz) error
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Quiz
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *quizRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Quiz, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Quiz
	if err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *quizRepo) GetWithContent(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q, err := r.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, id)
	if err != nil || q == nil {
		return q, err
	}

	var sections []*types.Section
	if err := t.WithContext(dbc.Ctx).
		Where("quiz_id = ?", id).
		Order("display_order ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	var questions []*types.Question
	if err := t.WithContext(dbc.Ctx).
		Where("quiz_id = ?", id).
		Order("display_order ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	bySection := make(map[uuid.UUID]*types.Section, len(sections))
	for _, s := range sections {
		s.Questions = []*types.Question{}
		bySection[s.ID] = s
	}
	for _, qn := range questions {
		if s := bySection[qn.SectionID]; s != nil {
			s.Questions = append(s.Questions, qn)
		}
	}
	q.Sections = sections
	return q, nil
}

func (r *quizRepo) QuestionBelongs(dbc dbctx.Context, quizID, questionID uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Where("id = ? AND quiz_id = ?", questionID, quizID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *quizRepo) CountQuestions(dbc dbctx.Context, quizID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *quizRepo) QuestionIDs(dbc dbctx.Context, quizID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ids []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Where("quiz_id = ?", quizID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpsertContent writes the quiz, its sections and its questions. Rows are keyed
// by their (deterministic) ids, so running it twice is a no-op apart from text
// edits.
func (r *quizRepo) UpsertContent(dbc dbctx.Context, q *types.Quiz) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if q == nil {
		return nil
	}
	t = t.WithContext(dbc.Ctx)

	if err := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"slug", "title", "description", "version", "updated_at"}),
	}).Create(q).Error; err != nil {
		return err
	}
	for _, s := range q.Sections {
		s.QuizID = q.ID
		if err := t.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "dimension", "display_order", "updated_at"}),
		}).Create(s).Error; err != nil {
			return err
		}
		for _, qn := range s.Questions {
			qn.QuizID = q.ID
			qn.SectionID = s.ID
			if err := t.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"section_id", "statement", "display_order", "is_reversed", "updated_at"}),
			}).Create(qn).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
