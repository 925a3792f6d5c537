// Package persistence carries the transaction, its scope ID and the request
// ID through context so repositories and the SQL logger can pick them up.
package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type requestIDKey struct{}

type txScopeKey struct{}

// TxFromContext returns nil when ctx carries no transaction.
func TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithTxScope labels every statement issued under ctx as part of one
// transaction attempt.
func ContextWithTxScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, txScopeKey{}, scope)
}

func TxScopeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	scope, _ := ctx.Value(txScopeKey{}).(string)
	return scope
}
