package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestSuite provides many methods that can be called in package-specific test
code. We just customize the store being tested (pass in constructor), the rest
of the logic is generic to the KVStore interface.

It is shared by btree_test.go and iavl/adapter_test.go, but can be used for
any implementation of CacheableKVStore.
*/
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite testing stores created by given constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet does basic sanity checks on our cache
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	k, v := []byte("french"), []byte("fry")
	s.AssertGetHas(t, base, k, nil, false)
	require.NoError(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	s.AssertGetHas(t, cache, k2, nil, false)
	require.NoError(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	s.AssertGetHas(t, c2, k, v, true)
	s.AssertGetHas(t, c2, k2, v2, true)
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()
	s.AssertGetHas(t, base, k3, nil, false)

	// and commit another
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Write())
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
	s.AssertGetHas(t, base, k3, nil, false)
}

// CacheConflicts checks that we can handle
// overwriting values and deleting underlying values
func (s *TestSuite) CacheConflicts(t *testing.T) {
	ks := randKeys(10, 16)
	vs := randKeys(20, 40)

	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model // Key is what we query, Value is what we expect
		childQueries  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(ks[1], vs[1]), SetOp(ks[2], vs[2])},
			childOps:      []Op{SetOp(ks[1], vs[11]), SetOp(ks[3], vs[7]), DelOp(ks[2])},
			parentQueries: []Model{Pair(ks[1], vs[1]), Pair(ks[2], vs[2]), Pair(ks[3], nil)},
			childQueries:  []Model{Pair(ks[1], vs[11]), Pair(ks[2], nil), Pair(ks[3], vs[7])},
		},
		"set after delete": {
			parentOps:     []Op{SetOp(ks[4], vs[4])},
			childOps:      []Op{DelOp(ks[4]), SetOp(ks[4], vs[14])},
			parentQueries: []Model{Pair(ks[4], vs[4])},
			childQueries:  []Model{Pair(ks[4], vs[14])},
		},
		"delete missing key": {
			childOps:      []Op{DelOp(ks[5])},
			parentQueries: []Model{Pair(ks[5], nil)},
			childQueries:  []Model{Pair(ks[5], nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				require.NoError(t, op.Apply(parent))
			}

			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				require.NoError(t, op.Apply(child))
			}

			// now check the parent is unaffected
			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}

			// the child shows changes
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			// write child to parent and make sure it also shows proper data
			require.NoError(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// IteratorWithConflicts iterates over a cache layered on top of data in the
// parent, where the cache overwrites and deletes some of the parent keys.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	ms := randModels(8, 8, 16)
	sorted := sortModels(ms)

	cases := map[string]struct {
		parentOps  []Op
		childOps   []Op
		start, end []byte
		want       []Model
	}{
		"only parent": {
			parentOps: makeSetOps(ms...),
			want:      sorted,
		},
		"only child": {
			childOps: makeSetOps(ms...),
			want:     sorted,
		},
		"split between layers": {
			parentOps: makeSetOps(ms[:4]...),
			childOps:  makeSetOps(ms[4:]...),
			want:      sorted,
		},
		"child deletes parent keys": {
			parentOps: makeSetOps(ms...),
			childOps:  []Op{DelOp(sorted[0].Key), DelOp(sorted[7].Key), DelOp(sorted[3].Key)},
			want:      []Model{sorted[1], sorted[2], sorted[4], sorted[5], sorted[6]},
		},
		"child overwrites parent keys": {
			parentOps: makeSetOps(ms...),
			childOps:  []Op{SetOp(sorted[2].Key, []byte("new")), SetOp(sorted[5].Key, []byte("other"))},
			want: []Model{
				sorted[0], sorted[1], Pair(sorted[2].Key, []byte("new")), sorted[3],
				sorted[4], Pair(sorted[5].Key, []byte("other")), sorted[6], sorted[7],
			},
		},
		"bounded range": {
			parentOps: makeSetOps(ms[:4]...),
			childOps:  append(makeSetOps(ms[4:]...), DelOp(sorted[3].Key)),
			start:     sorted[2].Key,
			end:       sorted[6].Key,
			want:      []Model{sorted[2], sorted[4], sorted[5]},
		},
		"open start": {
			parentOps: makeSetOps(ms...),
			end:       sorted[2].Key,
			want:      sorted[:2],
		},
		"open end": {
			childOps: makeSetOps(ms...),
			start:    sorted[6].Key,
			want:     sorted[6:],
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()
			for _, op := range tc.parentOps {
				require.NoError(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				require.NoError(t, op.Apply(child))
			}

			it, err := child.Iterator(tc.start, tc.end)
			require.NoError(t, err)
			defer it.Close()
			var got []Model
			for ; it.Valid(); it.Next() {
				got = append(got, Pair(it.Key(), it.Value()))
			}
			assert.Equal(t, len(tc.want), len(got))
			for i := range tc.want {
				if i >= len(got) {
					break
				}
				assert.Equal(t, tc.want[i].Key, got[i].Key)
				assert.Equal(t, tc.want[i].Value, got[i].Value)
			}
		})
	}
}

// AssertGetHas makes sure that this key returns
// the given value for Get and Has
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists)
}

func randBytes(length int) []byte {
	res := make([]byte, length)
	if _, err := rand.Read(res); err != nil {
		panic(err)
	}
	return res
}

func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = randBytes(size)
	}
	return res
}

func randModels(count, keySize, valueSize int) []Model {
	models := make([]Model, count)
	for i := 0; i < count; i++ {
		models[i] = Pair(randBytes(keySize), randBytes(valueSize))
	}
	return models
}

func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func makeSetOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}
