package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store is the transaction boundary of the listing engine
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on top of an open gorm connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn inside one database transaction. Every write made through the
// Repo handed to fn commits together, or none does when fn returns an error.
func (s *Store) InTx(ctx context.Context, fn func(repo *Repo) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{db: tx})
	})
}

// Read returns a Repo for read-only use outside a transaction
func (s *Store) Read(ctx context.Context) *Repo {
	return &Repo{db: s.db.WithContext(ctx)}
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Repo groups the data access operations of the listing tables. A Repo obtained
// from InTx is bound to that transaction.
type Repo struct {
	db *gorm.DB
}
