package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.QuizSession) (*types.QuizSession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizSession, error)
	// MarkCompleted sets completed_at once; later calls leave the first stamp.
	MarkCompleted(dbc dbctx.Context, id uuid.UUID, at time.Time) (*types.QuizSession, error)
	SetIdentity(dbc dbctx.Context, id uuid.UUID, identity string) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.QuizSession) (*types.QuizSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	if err := t.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.QuizSession
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID, at time.Time) (*types.QuizSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QuizSession{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]any{
			"completed_at": at,
			"updated_at":   time.Now().UTC(),
		}).Error; err != nil {
		return nil, err
	}
	return r.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, id)
}

func (r *sessionRepo) SetIdentity(dbc dbctx.Context, id uuid.UUID, identity string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.QuizSession{}).
		Where("id = ? AND identity IS NULL", id).
		Updates(map[string]any{
			"identity":   identity,
			"updated_at": time.Now().UTC(),
		}).Error
}
