package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type UserProfileRepo interface {
	Create(dbc dbctx.Context, p *types.UserProfile) (*types.UserProfile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error)
	GetByIdentity(dbc dbctx.Context, identity string) (*types.UserProfile, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.UserProfile, error)
	SlugExists(dbc dbctx.Context, slug string) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return &userProfileRepo{db: db, log: baseLog.With("repo", "UserProfileRepo")}
}

// Create inserts p as is. Unique violations on identity or slug are returned
// raw so the caller can decide whether to re-read or pick another slug.
func (r *userProfileRepo) Create(dbc dbctx.Context, p *types.UserProfile) (*types.UserProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *userProfileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "id = ?", id)
}

func (r *userProfileRepo) GetByIdentity(dbc dbctx.Context, identity string) (*types.UserProfile, error) {
	if identity == "" {
		return nil, nil
	}
	return r.first(dbc, "identity = ?", identity)
}

func (r *userProfileRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.UserProfile, error) {
	if slug == "" {
		return nil, nil
	}
	return r.first(dbc, "slug = ?", slug)
}

func (r *userProfileRepo) first(dbc dbctx.Context, query string, args ...any) (*types.UserProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.UserProfile
	if err := t.WithContext(dbc.Ctx).Where(query, args...).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userProfileRepo) SlugExists(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.UserProfile{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userProfileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
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
		Model(&types.UserProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}
