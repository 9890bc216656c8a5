// Package store abstracts the document database underneath the asset
// lifecycle engine: plain CRUD, equality queries, atomic multi-document
// transactions and atomic batched writes.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrTransactionConflict is returned when a transaction could not
	// commit because of a conflicting concurrent transaction, after the
	// store's internal retries were exhausted. The operation had no
	// partial effects and may be retried by the caller.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// Write operation types for BatchWrite.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// WriteOp is one operation in an atomic batch.
type WriteOp struct {
	Type       string
	Collection string
	ID         primitive.ObjectID
	Doc        interface{} // insert
	Fields     bson.M      // update ($set semantics)
}

// Tx is the handle passed to a transaction function. All operations
// commit atomically when the function returns nil; any error aborts the
// whole transaction with no partial effects.
type Tx interface {
	Get(collection string, id primitive.ObjectID, out interface{}) error
	Insert(collection string, doc interface{}) error
	Update(collection string, id primitive.ObjectID, fields bson.M) error
	Delete(collection string, id primitive.ObjectID) error
}

// Store is the generic document store consumed by the engine.
//
// Insert stamps createdAt and updatedAt on the stored document; Update
// stamps updatedAt. Find supports equality filters and a single-field
// sort, which is all the engine needs.
type Store interface {
	Get(ctx context.Context, collection string, id primitive.ObjectID, out interface{}) error
	Insert(ctx context.Context, collection string, doc interface{}) error
	Update(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, collection string, id primitive.ObjectID) error
	Find(ctx context.Context, collection string, filter bson.M, sort bson.D, out interface{}) error
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	BatchWrite(ctx context.Context, ops []WriteOp) error
}
