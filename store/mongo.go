// store/mongo.go
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a MongoDB database. Transactions
// use driver sessions; the driver retries transient conflicts internally
// before we surface ErrTransactionConflict.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{db: client.Database(dbName)}
}

func (s *MongoStore) Get(ctx context.Context, collection string, id primitive.ObjectID, out interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc interface{}) error {
	m, err := toDoc(doc)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).InsertOne(ctx, m)
	return err
}

func (s *MongoStore) Update(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) error {
	fields = withUpdatedAt(fields)
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection string, id primitive.ObjectID) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter bson.M, sort bson.D, out interface{}) error {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func (s *MongoStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(&mongoTx{ctx: sc, db: s.db})
	})
	return mapTxError(err)
}

func (s *MongoStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	// Batches are unconditional writes; a session transaction still makes
	// the commit all-or-nothing.
	return s.RunTransaction(ctx, func(tx Tx) error {
		for _, op := range ops {
			var err error
			switch op.Type {
			case OpInsert:
				err = tx.Insert(op.Collection, op.Doc)
			case OpUpdate:
				err = tx.Update(op.Collection, op.ID, op.Fields)
			case OpDelete:
				err = tx.Delete(op.Collection, op.ID)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

type mongoTx struct {
	ctx mongo.SessionContext
	db  *mongo.Database
}

func (t *mongoTx) Get(collection string, id primitive.ObjectID, out interface{}) error {
	err := t.db.Collection(collection).FindOne(t.ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func (t *mongoTx) Insert(collection string, doc interface{}) error {
	m, err := toDoc(doc)
	if err != nil {
		return err
	}
	_, err = t.db.Collection(collection).InsertOne(t.ctx, m)
	return err
}

func (t *mongoTx) Update(collection string, id primitive.ObjectID, fields bson.M) error {
	fields = withUpdatedAt(fields)
	res, err := t.db.Collection(collection).UpdateOne(t.ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *mongoTx) Delete(collection string, id primitive.ObjectID) error {
	_, err := t.db.Collection(collection).DeleteOne(t.ctx, bson.M{"_id": id})
	return err
}

// toDoc converts a model struct to bson.M so the store can stamp
// createdAt/updatedAt without knowing the struct's shape.
func toDoc(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m["createdAt"] = now
	m["updatedAt"] = now
	return m, nil
}

func withUpdatedAt(fields bson.M) bson.M {
	out := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if ce.HasErrorLabel("TransientTransactionError") || ce.HasErrorLabel("UnknownTransactionCommitResult") {
			return ErrTransactionConflict
		}
	}
	return err
}
