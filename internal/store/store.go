// Package store implements the persistence operations of the pharmacy
// backend: per-entity CRUD, authentication, the stock-mutating order and
// shipment workflows, and the reporting queries. Medicine counts are
// mutated only by ReceiveShipment (increase) and CreateOrder (decrease),
// each inside a single transaction.
package store

import (
	"github.com/jmoiron/sqlx"

	"apteka/m/internal/security"
)

// Store bundles the database handle and the credential service.
type Store struct {
	db     *sqlx.DB
	hasher *security.Hasher
}

// New constructs a Store.
func New(db *sqlx.DB, hasher *security.Hasher) *Store {
	return &Store{db: db, hasher: hasher}
}
