package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type ResponseRepo interface {
	// Upsert inserts or overwrites the answer for (session, question).
	Upsert(dbc dbctx.Context, resp *types.Response) error
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Response, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{db: db, log: baseLog.With("repo", "ResponseRepo")}
}

func (r *responseRepo) Upsert(dbc dbctx.Context, resp *types.Response) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	now := time.Now().UTC()
	resp.CreatedAt = now
	resp.UpdatedAt = now
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(resp).Error
}

func (r *responseRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Response, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Response
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *responseRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Response{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
