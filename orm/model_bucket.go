package orm

import (
	"reflect"
	"regexp"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

// ModelBucket is implemented by buckets that operate on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db htlc.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists and
	// ErrNotFound otherwise.
	Has(db htlc.ReadOnlyKVStore, key []byte) error

	// ByIndex returns the primary keys of all entities with given index
	// value, ordered by primary key. When dest is not nil it must be a
	// pointer to a slice of models. The slice is filled with the entities
	// in the same order.
	ByIndex(db htlc.ReadOnlyKVStore, indexName string, value []byte, dest interface{}) ([][]byte, error)

	// Put saves given model in the database. All indexes are updated.
	Put(db htlc.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db htlc.KVStore, key []byte) error
}

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucketOption configures a ModelBucket.
type ModelBucketOption func(*modelBucket)

// WithIndex registers a secondary index with one value per model.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return WithMultiKeyIndex(name, asMultiKeyIndexer(indexer))
}

// WithMultiKeyIndex registers a secondary index that can reference a
// model under many values.
func WithMultiKeyIndex(name string, indexer MultiKeyIndexer) ModelBucketOption {
	return func(b *modelBucket) {
		if _, ok := b.indexes[name]; ok {
			panic("duplicated index " + name)
		}
		b.indexes[name] = newNativeIndex(b.name, name, indexer)
	}
}

// NewModelBucket returns a ModelBucket storing models of the same type as
// given example. Bucket name must be a short lowercase identifier and is
// used as the key prefix of all entities.
func NewModelBucket(name string, example Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name " + name)
	}
	typ := reflect.TypeOf(example)
	if typ.Kind() != reflect.Ptr {
		panic("model must be a pointer")
	}
	b := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   typ,
		indexes: make(map[string]nativeIndex),
	}
	for _, fn := range opts {
		fn(b)
	}
	return b
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]nativeIndex
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	out := make([]byte, len(mb.prefix)+len(key))
	copy(out, mb.prefix)
	copy(out[len(mb.prefix):], key)
	return out
}

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model.Elem()).Interface().(Model)
}

func (mb *modelBucket) One(db htlc.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "%s %X: %s", mb.name, key, err)
	}
	return nil
}

func (mb *modelBucket) Has(db htlc.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db htlc.ReadOnlyKVStore, indexName string, value []byte, dest interface{}) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown index %q", indexName)
	}
	keys, err := idx.Keys(db, value)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return keys, nil
	}

	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	elemType := slice.Elem().Type().Elem()
	byValue := elemType == mb.model.Elem()
	if !byValue && elemType != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "%s cannot be represented as %s", mb.model, elemType)
	}

	res := reflect.MakeSlice(slice.Elem().Type(), 0, len(keys))
	for _, key := range keys {
		m := mb.newModel()
		if err := mb.One(db, key, m); err != nil {
			return nil, errors.Wrap(err, "indexed entity")
		}
		v := reflect.ValueOf(m)
		if byValue {
			v = v.Elem()
		}
		res = reflect.Append(res, v)
	}
	slice.Elem().Set(res)
	return keys, nil
}

func (mb *modelBucket) Put(db htlc.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrInput, "empty key")
	}
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored in %s bucket", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "marshal: %s", err)
	}

	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	for _, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, m); err != nil {
			return errors.Wrap(err, "cannot update index")
		}
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (mb *modelBucket) Delete(db htlc.KVStore, key []byte) error {
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	for _, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, nil); err != nil {
			return errors.Wrap(err, "cannot update index")
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// load returns the stored model or nil if it does not exist.
func (mb *modelBucket) load(db htlc.ReadOnlyKVStore, key []byte) (Model, error) {
	m := mb.newModel()
	switch err := mb.One(db, key, m); {
	case err == nil:
		return m, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}
