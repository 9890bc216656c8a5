// store/memory.go
package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store used by tests and local development.
// Documents are kept as bson maps; transactions are optimistic: reads
// record a per-document version and the commit aborts with
// ErrTransactionConflict when a concurrently committed transaction has
// touched any document read.
type MemoryStore struct {
	mu       sync.Mutex
	colls    map[string]map[primitive.ObjectID]bson.M
	versions map[string]map[primitive.ObjectID]int64

	// commitHook, when set, runs right before a transaction or batch
	// applies its writes. Returning an error aborts the commit with no
	// partial effects. Tests use it for failure injection.
	commitHook func() error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls:    make(map[string]map[primitive.ObjectID]bson.M),
		versions: make(map[string]map[primitive.ObjectID]int64),
	}
}

// SetCommitHook installs a hook invoked before each commit.
func (s *MemoryStore) SetCommitHook(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitHook = fn
}

func (s *MemoryStore) coll(name string) map[primitive.ObjectID]bson.M {
	c, ok := s.colls[name]
	if !ok {
		c = make(map[primitive.ObjectID]bson.M)
		s.colls[name] = c
		s.versions[name] = make(map[primitive.ObjectID]int64)
	}
	return c
}

func (s *MemoryStore) Get(ctx context.Context, collection string, id primitive.ObjectID, out interface{}) error {
	s.mu.Lock()
	doc, ok := s.coll(collection)[id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return decodeDoc(doc, out)
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc interface{}) error {
	m, err := toDoc(doc)
	if err != nil {
		return err
	}
	id, err := docID(m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	if _, exists := c[id]; exists {
		return fmt.Errorf("duplicate key %s in %s", id.Hex(), collection)
	}
	c[id] = copyDoc(m)
	s.versions[collection][id]++
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	doc, ok := c[id]
	if !ok {
		return ErrNotFound
	}
	applyFields(doc, withUpdatedAt(fields))
	s.versions[collection][id]++
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	delete(c, id)
	s.versions[collection][id]++
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter bson.M, sortSpec bson.D, out interface{}) error {
	s.mu.Lock()
	var matched []bson.M
	for _, doc := range s.coll(collection) {
		if matchesFilter(doc, filter) {
			matched = append(matched, copyDoc(doc))
		}
	}
	s.mu.Unlock()

	if len(sortSpec) > 0 {
		field := sortSpec[0].Key
		desc := toInt(sortSpec[0].Value) < 0
		sort.SliceStable(matched, func(i, j int) bool {
			less := compareValues(matched[i][field], matched[j][field]) < 0
			if desc {
				return !less
			}
			return less
		})
	}
	return decodeDocs(matched, out)
}

const maxTxAttempts = 3

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		tx := &memTx{store: s, reads: make(map[readKey]int64)}
		if err = fn(tx); err != nil {
			return err
		}
		if err = s.commit(tx); err != ErrTransactionConflict {
			return err
		}
	}
	return err
}

func (s *MemoryStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	tx := &memTx{store: s, reads: make(map[readKey]int64)}
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
	return s.commit(tx)
}

type readKey struct {
	collection string
	id         primitive.ObjectID
}

type stagedOp struct {
	op         string
	collection string
	id         primitive.ObjectID
	doc        bson.M
	fields     bson.M
}

type memTx struct {
	store  *MemoryStore
	reads  map[readKey]int64
	staged []stagedOp
}

func (t *memTx) Get(collection string, id primitive.ObjectID, out interface{}) error {
	t.store.mu.Lock()
	doc, ok := t.store.coll(collection)[id]
	t.recordRead(collection, id)
	if ok {
		doc = copyDoc(doc)
	}
	t.store.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return decodeDoc(doc, out)
}

// recordRead remembers the first version observed for a document. Later
// reads must not overwrite it, otherwise a write that lands between two
// reads of the same document would slip past the commit check. Caller
// holds the store lock.
func (t *memTx) recordRead(collection string, id primitive.ObjectID) {
	key := readKey{collection, id}
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = t.store.versions[collection][id]
	}
}

func (t *memTx) Insert(collection string, doc interface{}) error {
	m, err := toDoc(doc)
	if err != nil {
		return err
	}
	id, err := docID(m)
	if err != nil {
		return err
	}
	t.staged = append(t.staged, stagedOp{op: OpInsert, collection: collection, id: id, doc: m})
	return nil
}

func (t *memTx) Update(collection string, id primitive.ObjectID, fields bson.M) error {
	t.store.mu.Lock()
	_, ok := t.store.coll(collection)[id]
	t.recordRead(collection, id)
	t.store.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	t.staged = append(t.staged, stagedOp{op: OpUpdate, collection: collection, id: id, fields: withUpdatedAt(fields)})
	return nil
}

func (t *memTx) Delete(collection string, id primitive.ObjectID) error {
	t.staged = append(t.staged, stagedOp{op: OpDelete, collection: collection, id: id})
	return nil
}

func (s *MemoryStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range tx.reads {
		if s.versions[key.collection][key.id] != version {
			return ErrTransactionConflict
		}
	}
	if s.commitHook != nil {
		if err := s.commitHook(); err != nil {
			return err
		}
	}
	for _, op := range tx.staged {
		c := s.coll(op.collection)
		switch op.op {
		case OpInsert:
			if _, exists := c[op.id]; exists {
				return fmt.Errorf("duplicate key %s in %s", op.id.Hex(), op.collection)
			}
			c[op.id] = copyDoc(op.doc)
		case OpUpdate:
			if doc, ok := c[op.id]; ok {
				applyFields(doc, op.fields)
			}
		case OpDelete:
			delete(c, op.id)
		}
		s.versions[op.collection][op.id]++
	}
	return nil
}

func docID(m bson.M) (primitive.ObjectID, error) {
	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("document missing _id")
	}
	return id, nil
}

func copyDoc(m bson.M) bson.M {
	raw, _ := bson.Marshal(m)
	var out bson.M
	_ = bson.Unmarshal(raw, &out)
	return out
}

func applyFields(doc bson.M, fields bson.M) {
	for k, v := range fields {
		doc[k] = normalizeValue(v)
	}
}

// normalizeValue round-trips a value through bson so stored documents use
// the same primitive types a real driver would return (time.Time becomes
// primitive.DateTime and so on).
func normalizeValue(v interface{}) interface{} {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return v
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return v
	}
	return m["v"]
}

func matchesFilter(doc bson.M, filter bson.M) bool {
	for field, want := range filter {
		if !valuesEqual(doc[field], normalizeValue(want)) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == b
	}
	if compareNumeric(a, b) {
		return toFloat(a) == toFloat(b)
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case primitive.DateTime:
		bv, ok := b.(primitive.DateTime)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	if compareNumeric(a, b) {
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
	}
	return 0
}

func compareNumeric(a, b interface{}) bool {
	return isNumeric(a) && isNumeric(b)
}

func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	}
	return 0
}

func decodeDoc(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeDocs(docs []bson.M, out interface{}) error {
	slice := reflect.ValueOf(out)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out must be a pointer to a slice")
	}
	elemType := slice.Elem().Type().Elem()
	result := reflect.MakeSlice(slice.Elem().Type(), 0, len(docs))
	for _, doc := range docs {
		elem := reflect.New(elemType)
		if err := decodeDoc(doc, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Elem().Set(result)
	return nil
}
