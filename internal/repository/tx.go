package repository

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key for the active transaction
type txKey struct{}

// TxManager runs service work inside one database transaction. Repositories
// pick the transaction up from the context, so a service can combine several
// repository calls into one atomic unit.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTransaction executes fn within a transaction. An enclosing transaction
// in ctx is reused. Any error from fn rolls everything back.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx or the base handle
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
