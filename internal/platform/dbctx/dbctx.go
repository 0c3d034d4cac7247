package dbctx

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/model3d-backend/internal/platform/ctxutil"
)

// Context carries the request context and, inside a transaction, the tx
// every repo call must go through.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Background is a Context with no deadline and no transaction.
func Background() Context { return Context{Ctx: context.Background()} }

// DB picks Tx over fallback and binds it to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	db := fallback
	if c.Tx != nil {
		db = c.Tx
	}
	return db.WithContext(ctxutil.Default(c.Ctx))
}

// InTx reports whether calls are bound to a caller-owned transaction.
func (c Context) InTx() bool { return c.Tx != nil }
