package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
)

type Deps struct {
	DB     *gorm.DB
	Runner TxRunner
	Hooks  Hooks
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	return d
}

// Write runs fn in one transaction, maps the outcome through MapError and
// reports it to the hooks. When dbc already carries a transaction fn joins it.
func Write(dbc dbctx.Context, deps Deps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "write"
	}
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	if dbc.Tx != nil {
		err = dbc.Tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = deps.Runner.InTx(ctx, fn)
	}
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = statusOf(mapped)
		switch apierr.CodeOf(mapped) {
		case apierr.CodeConflict:
			deps.Hooks.IncConflict(op)
		case apierr.CodeRetryable:
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func statusOf(err error) string {
	if code := apierr.CodeOf(err); code != "" {
		return string(code)
	}
	return "failure"
}
