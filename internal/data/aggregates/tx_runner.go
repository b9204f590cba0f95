package aggregates

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

// TxRunner is the single transaction boundary used by multi-row writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

// InTx joins an enclosing transaction carried by ctx-bound callers through
// dbctx; otherwise it opens a new one.
func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return apierr.Internal("tx", "transaction runner has nil db")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
