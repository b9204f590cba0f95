package user

import (
	"context"
	"testing"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos/testutil"
	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

func TestUserProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewUserProfileRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	created, err := repo.Create(dbc, &types.UserProfile{Identity: "auth0|a", Slug: "jane-doe", DisplayName: "Jane Doe"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byIdentity, err := repo.GetByIdentity(dbc, "auth0|a")
	if err != nil || byIdentity == nil || byIdentity.ID != created.ID {
		t.Fatalf("GetByIdentity = %+v, %v", byIdentity, err)
	}
	bySlug, err := repo.GetBySlug(dbc, "jane-doe")
	if err != nil || bySlug == nil || bySlug.ID != created.ID {
		t.Fatalf("GetBySlug = %+v, %v", bySlug, err)
	}
	exists, err := repo.SlugExists(dbc, "jane-doe")
	if err != nil || !exists {
		t.Fatalf("SlugExists = %v, %v", exists, err)
	}
	exists, _ = repo.SlugExists(dbc, "john-doe")
	if exists {
		t.Fatal("SlugExists(unknown) should be false")
	}

	_, err = repo.Create(dbc, &types.UserProfile{Identity: "auth0|b", Slug: "jane-doe"})
	if err == nil {
		t.Fatal("expected unique violation on slug")
	}
	if !apierr.IsCode(aggregates.MapError("create", err), apierr.CodeConflict) {
		t.Fatalf("slug collision should map to conflict, got %v", err)
	}

	if err := repo.UpdateFields(dbc, created.ID, map[string]any{"role": "engineer"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ := repo.GetByID(dbc, created.ID)
	if got.Role != "engineer" {
		t.Fatalf("role = %q", got.Role)
	}
}
