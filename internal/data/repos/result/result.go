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

// scoreColumns are overwritten when a session is re-scored. Sharing columns
// are deliberately absent.
var scoreColumns = []string{
	"work_style_score", "decision_process_score", "communication_style_score", "focus_orientation_score",
	"work_style_trait", "work_style_label",
	"decision_process_trait", "decision_process_label",
	"communication_style_trait", "communication_style_label",
	"focus_orientation_trait", "focus_orientation_label",
	"personality_code", "personality_type_code", "catalog_version",
	"confidence", "fit", "computed_at", "updated_at",
}

type ResultRepo interface {
	// Upsert writes res keyed by session id and returns the stored row, whose id
	// is the existing one when the session was scored before.
	Upsert(dbc dbctx.Context, res *types.Result) (*types.Result, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Result, error)
	GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) (*types.Result, error)
	GetPublicByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.Result, error)
	SetProfile(dbc dbctx.Context, id, profileID uuid.UUID) error
	// UnshareOthers clears is_public on every result of profileID except keepID.
	// No other column of those rows is touched.
	UnshareOthers(dbc dbctx.Context, profileID, keepID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type resultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRepo(db *gorm.DB, baseLog *logger.Logger) ResultRepo {
	return &resultRepo{db: db, log: baseLog.With("repo", "ResultRepo")}
}

func (r *resultRepo) Upsert(dbc dbctx.Context, res *types.Result) (*types.Result, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	res.ComputedAt = now
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns(scoreColumns),
		}).
		Create(res).Error; err != nil {
		return nil, err
	}
	return r.GetBySessionID(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, res.SessionID)
}

func (r *resultRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Result, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *resultRepo) GetBySessionID(dbc dbctx.Context, sessionID uuid.UUID) (*types.Result, error) {
	return r.first(dbc, "session_id = ?", sessionID)
}

func (r *resultRepo) GetPublicByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.Result, error) {
	return r.first(dbc, "profile_id = ? AND is_public = ?", profileID, true)
}

func (r *resultRepo) first(dbc dbctx.Context, query string, args ...any) (*types.Result, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Result
	if err := t.WithContext(dbc.Ctx).
		Where(query, args...).
		Order("computed_at DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *resultRepo) SetProfile(dbc dbctx.Context, id, profileID uuid.UUID) error {
	return r.UpdateFields(dbc, id, map[string]any{"profile_id": profileID})
}

func (r *resultRepo) UnshareOthers(dbc dbctx.Context, profileID, keepID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Result{}).
		Where("profile_id = ? AND id <> ? AND is_public = ?", profileID, keepID, true).
		UpdateColumn("is_public", false)
	return res.RowsAffected, res.Error
}

func (r *resultRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Result{}).
		Where("id = ?", id).
		Updates(updates).Error
}
