package orm

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
)

const nativeIdxPrefix = "_i."

// nativeIndex stores every reference as a separate entry, keyed by the
// length prefixed index value followed by the primary key. The entry value
// is the primary key.
type nativeIndex struct {
	name    string
	id      []byte
	indexer MultiKeyIndexer
}

func newNativeIndex(bucket, name string, indexer MultiKeyIndexer) nativeIndex {
	return nativeIndex{
		name:    name,
		id:      []byte(nativeIdxPrefix + bucket + "_" + name + ":"),
		indexer: indexer,
	}
}

// valuePrefix returns the common prefix of all entries indexed under value.
func (i nativeIndex) valuePrefix(value []byte) []byte {
	out := make([]byte, len(i.id)+2+len(value))
	copy(out, i.id)
	binary.BigEndian.PutUint16(out[len(i.id):], uint16(len(value)))
	copy(out[len(i.id)+2:], value)
	return out
}

func (i nativeIndex) refKey(value, pk []byte) []byte {
	return append(i.valuePrefix(value), pk...)
}

func (i nativeIndex) values(m Model) ([][]byte, error) {
	if m == nil {
		return nil, nil
	}
	vals, err := i.indexer(m)
	if err != nil {
		return nil, errors.Wrapf(err, "index %q", i.name)
	}
	for _, v := range vals {
		if len(v) > 0xffff {
			return nil, errors.Wrapf(errors.ErrInput, "index %q value too long", i.name)
		}
	}
	return vals, nil
}

// Update moves the references of pk from the values of prev to the values
// of next. A nil prev means insert and a nil next means delete.
func (i nativeIndex) Update(db htlc.KVStore, pk []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil model")
	}
	old, err := i.values(prev)
	if err != nil {
		return err
	}
	cur, err := i.values(next)
	if err != nil {
		return err
	}
	for _, v := range old {
		if !contains(cur, v) {
			if err := db.Delete(i.refKey(v, pk)); err != nil {
				return errors.Wrap(errors.ErrDatabase, err.Error())
			}
		}
	}
	for _, v := range cur {
		if !contains(old, v) {
			if err := db.Set(i.refKey(v, pk), pk); err != nil {
				return errors.Wrap(errors.ErrDatabase, err.Error())
			}
		}
	}
	return nil
}

// Keys returns all primary keys indexed under given value, ordered by
// primary key.
func (i nativeIndex) Keys(db htlc.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	start, end := prefixRange(i.valuePrefix(value))
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer it.Close()

	var keys [][]byte
	for ; it.Valid(); it.Next() {
		keys = append(keys, append([]byte(nil), it.Value()...))
	}
	return keys, nil
}

func contains(list [][]byte, v []byte) bool {
	for _, x := range list {
		if bytes.Equal(x, v) {
			return true
		}
	}
	return false
}

// prefixRange turns a prefix into (start, end) to create
// an iterator over all keys with that prefix
func prefixRange(prefix []byte) ([]byte, []byte) {
	var end []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xff {
			end = append([]byte(nil), prefix[:i+1]...)
			end[i]++
			break
		}
	}
	return prefix, end
}
