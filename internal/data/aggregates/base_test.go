package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apierr.Code
	}{
		{"not_found", gorm.ErrRecordNotFound, apierr.CodeNotFound},
		{"pg_unique", &pgconn.PgError{Code: "23505"}, apierr.CodeConflict},
		{"pg_serialization", &pgconn.PgError{Code: "40001"}, apierr.CodeRetryable},
		{"sqlite_unique", errors.New("UNIQUE constraint failed: user_profile.slug"), apierr.CodeConflict},
		{"sqlite_locked", errors.New("database is locked"), apierr.CodeRetryable},
		{"canceled", context.Canceled, apierr.CodeRetryable},
		{"other", errors.New("boom"), apierr.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := aggregates.MapError("op", tc.err)
			if !apierr.IsCode(got, tc.want) {
				t.Fatalf("MapError(%v) code = %q, want %q", tc.err, apierr.CodeOf(got), tc.want)
			}
		})
	}
}

func TestMapErrorKeepsTaggedErrors(t *testing.T) {
	in := apierr.Validation("op", "bad value")
	if out := aggregates.MapError("other", in); out != in {
		t.Fatalf("expected passthrough, got %v", out)
	}
}

func TestWriteReportsStatus(t *testing.T) {
	hooks := &testutil.HooksRecorder{}
	deps := aggregates.Deps{Runner: &testutil.FailingTxRunner{}, Hooks: hooks}
	ctx := dbctx.Context{Ctx: context.Background()}

	if err := aggregates.Write(ctx, deps, "test.ok", func(dbctx.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hooks.Last("test.ok"); got != "success" {
		t.Fatalf("status = %q", got)
	}

	err := aggregates.Write(ctx, deps, "test.conflict", func(dbctx.Context) error {
		return errors.New("UNIQUE constraint failed: result.session_id")
	})
	if !apierr.IsCode(err, apierr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "test.conflict" {
		t.Fatalf("conflicts = %v", hooks.Conflicts)
	}
	if got := hooks.Last("test.conflict"); got != string(apierr.CodeConflict) {
		t.Fatalf("status = %q", got)
	}
}

func TestWriteClassifiesCommitFailure(t *testing.T) {
	hooks := &testutil.HooksRecorder{}
	runner := &testutil.FailingTxRunner{Err: &pgconn.PgError{Code: "40P01"}}
	err := aggregates.Write(dbctx.Context{Ctx: context.Background()}, aggregates.Deps{Runner: runner, Hooks: hooks}, "test.retry", func(dbctx.Context) error { return nil })
	if !apierr.IsCode(err, apierr.CodeRetryable) {
		t.Fatalf("expected retryable, got %v", err)
	}
	if runner.Calls != 1 || len(hooks.Retries) != 1 {
		t.Fatalf("calls=%d retries=%v", runner.Calls, hooks.Retries)
	}
}
