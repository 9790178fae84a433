// Package storage is the persistence gateway: every SQL statement the bot
// issues lives here, parameterized, behind typed methods.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/foodfit/foodfitbot/internal/models"
)

// Store wraps the database handle with typed query methods.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store over an established connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Tx exposes the operations available inside a checkout transaction.
type Tx interface {
	CartContents(ctx context.Context, userID int64) ([]models.CartLine, error)
	InsertOrder(ctx context.Context, userID int64, total int, status string) (int64, error)
	InsertOrderLine(ctx context.Context, orderID, dishID int64, quantity, price int) error
	ClearCart(ctx context.Context, userID int64) error
}

type sqlTx struct {
	tx *sqlx.Tx
}

// WithinTx runs fn inside a transaction. The transaction is rolled back
// if fn returns an error or panics; otherwise it is committed.
func (s *Store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin tx", err)
	}

	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(sqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("commit tx", err)
	}
	done = true
	return nil
}
