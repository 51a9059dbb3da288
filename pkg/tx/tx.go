// Package tx provides transaction management over gorm, including the savepoints
// that let a farm's failure be recorded in the same transaction that rolled its work back.
package tx

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// Tx represents an ongoing database transaction.
type Tx interface {
	// DB returns the gorm handle bound to the transaction.
	DB() *gorm.DB
	// Savepoint creates a named savepoint.
	Savepoint(name string) error
	// RollbackToSavepoint undoes work done after the named savepoint and keeps the transaction open.
	RollbackToSavepoint(name string) error
}

// TransactionManager manages the lifecycle of transactions.
type TransactionManager interface {
	Begin(ctx context.Context, opts ...*sql.TxOptions) (Tx, error)
	Commit(tx Tx) error
	Rollback(tx Tx) error
}

// gormTx implements Tx.
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) DB() *gorm.DB { return t.db }

func (t *gormTx) Savepoint(name string) error {
	return t.db.SavePoint(name).Error
}

func (t *gormTx) RollbackToSavepoint(name string) error {
	return t.db.RollbackTo(name).Error
}

// GormTransactionManager begins transactions on a fixed gorm handle, usually a pinned lease.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a manager for db.
func NewTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Begin starts a transaction bound to ctx.
func (m *GormTransactionManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (Tx, error) {
	txDB := m.db.WithContext(ctx).Begin(opts...)
	if txDB.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", txDB.Error)
	}
	return &gormTx{db: txDB}, nil
}

// Commit commits tx.
func (m *GormTransactionManager) Commit(tx Tx) error {
	return tx.DB().Commit().Error
}

// Rollback rolls tx back.
func (m *GormTransactionManager) Rollback(tx Tx) error {
	return tx.DB().Rollback().Error
}

// WithTransaction runs fn in a transaction, committing on success and rolling back on error or panic.
// A panic is re-raised after the rollback.
func WithTransaction(ctx context.Context, tm TransactionManager, fn func(tx Tx) error) (err error) {
	t, err := tm.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tm.Rollback(t)
			panic(p)
		}
	}()
	if err = fn(t); err != nil {
		if rbErr := tm.Rollback(t); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tm.Commit(t)
}
