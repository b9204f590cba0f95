package testutil

import (
	"context"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

// FailingTxRunner runs fn without a database and then returns Err, so callers
// can check how a failed commit is classified.
type FailingTxRunner struct {
	Err   error
	Calls int
}

var _ aggregates.TxRunner = (*FailingTxRunner)(nil)

func (r *FailingTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.Calls++
	if fn != nil {
		if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
			return err
		}
	}
	return r.Err
}
