package result

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type LatestResultRepo interface {
	Upsert(dbc dbctx.Context, identity string, resultID, sessionID uuid.UUID) error
	GetByIdentity(dbc dbctx.Context, identity string) (*types.LatestResult, error)
}

type latestResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLatestResultRepo(db *gorm.DB, baseLog *logger.Logger) LatestResultRepo {
	return &latestResultRepo{db: db, log: baseLog.With("repo", "LatestResultRepo")}
}

func (r *latestResultRepo) Upsert(dbc dbctx.Context, identity string, resultID, sessionID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if identity == "" {
		return nil
	}
	row := &types.LatestResult{
		Identity:  identity,
		ResultID:  resultID,
		SessionID: sessionID,
		UpdatedAt: time.Now().UTC(),
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}},
			DoUpdates: clause.AssignmentColumns([]string{"result_id", "session_id", "updated_at"}),
		}).
		Create(row).Error
}

func (r *latestResultRepo) GetByIdentity(dbc dbctx.Context, identity string) (*types.LatestResult, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if identity == "" {
		return nil, nil
	}
	var row types.LatestResult
	if err := t.WithContext(dbc.Ctx).
		Where("identity = ?", identity).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ResultID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
