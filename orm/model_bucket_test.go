package orm

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Owner string   `json:"owner"`
	Tags  []string `json:"tags"`
	Count int64    `json:"count"`
}

func (c *counter) Marshal() ([]byte, error)   { return json.Marshal(c) }
func (c *counter) Unmarshal(raw []byte) error { return json.Unmarshal(raw, c) }

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrInput, "negative count")
	}
	return nil
}

type other struct{ counter }

func newCounterBucket() ModelBucket {
	return NewModelBucket("cnts", &counter{},
		WithIndex("owner", func(m Model) ([]byte, error) {
			return []byte(m.(*counter).Owner), nil
		}),
		WithMultiKeyIndex("tag", func(m Model) ([][]byte, error) {
			var res [][]byte
			for _, t := range m.(*counter).Tags {
				res = append(res, []byte(t))
			}
			return res, nil
		}),
	)
}

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	if err := b.Put(db, []byte("c1"), &counter{Owner: "alice", Count: 1}); err != nil {
		t.Fatalf("cannot save counter instance: %s", err)
	}
	require.NoError(t, b.Has(db, []byte("c1")))

	var c1 counter
	if err := b.One(db, []byte("c1"), &c1); err != nil {
		t.Fatalf("cannot get c1 counter: %s", err)
	}
	assert.Equal(t, int64(1), c1.Count)

	if err := b.One(db, []byte("c1"), &other{}); !errors.ErrType.Is(err) {
		t.Fatalf("unexpected error for a wrong destination type: %+v", err)
	}
	if err := b.Put(db, []byte("c2"), &counter{Count: -1}); !errors.ErrInput.Is(err) {
		t.Fatalf("invalid model must not be saved: %+v", err)
	}
	if err := b.Put(db, nil, &counter{}); !errors.ErrInput.Is(err) {
		t.Fatalf("empty key must not be accepted: %+v", err)
	}

	if err := b.Delete(db, []byte("c1")); err != nil {
		t.Fatalf("cannot delete c1 counter: %s", err)
	}
	if err := b.Delete(db, []byte("unknown")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error when deleting unexisting instance: %s", err)
	}
	if err := b.One(db, []byte("c1"), &c1); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error for an unknown model get: %s", err)
	}
	if err := b.Has(db, []byte("c1")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error for an unknown model: %s", err)
	}
}

func TestModelBucketByIndex(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	require.NoError(t, b.Put(db, []byte("c3"), &counter{Owner: "alice", Count: 3, Tags: []string{"x", "y"}}))
	require.NoError(t, b.Put(db, []byte("c1"), &counter{Owner: "alice", Count: 1, Tags: []string{"x"}}))
	require.NoError(t, b.Put(db, []byte("c2"), &counter{Owner: "bob", Count: 2}))
	// an owner being a prefix of another must not be matched
	require.NoError(t, b.Put(db, []byte("c4"), &counter{Owner: "alicea", Count: 4}))

	cases := map[string]struct {
		index    string
		value    string
		wantKeys []string
		wantErr  *errors.Error
	}{
		"find none": {
			index: "owner",
			value: "charlie",
		},
		"find one": {
			index:    "owner",
			value:    "bob",
			wantKeys: []string{"c2"},
		},
		"find many ordered by key": {
			index:    "owner",
			value:    "alice",
			wantKeys: []string{"c1", "c3"},
		},
		"multi key index": {
			index:    "tag",
			value:    "y",
			wantKeys: []string{"c3"},
		},
		"unknown index": {
			index:   "color",
			value:   "red",
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var dest []*counter
			keys, err := b.ByIndex(db, tc.index, []byte(tc.value), &dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			var got []string
			for _, k := range keys {
				got = append(got, string(k))
			}
			assert.Equal(t, tc.wantKeys, got)
			require.Len(t, dest, len(tc.wantKeys))
			for _, c := range dest {
				assert.NotZero(t, c.Count)
			}
		})
	}
}

func TestModelBucketIndexUpdate(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	require.NoError(t, b.Put(db, []byte("c1"), &counter{Owner: "alice", Tags: []string{"x", "y"}}))
	require.NoError(t, b.Put(db, []byte("c1"), &counter{Owner: "bob", Tags: []string{"y", "z"}}))

	keys, err := b.ByIndex(db, "owner", []byte("alice"), nil)
	require.NoError(t, err)
	assert.Empty(t, keys)

	var values []counter
	keys, err = b.ByIndex(db, "owner", []byte("bob"), &values)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	require.Len(t, values, 1)
	assert.Equal(t, "bob", values[0].Owner)

	for tag, want := range map[string]int{"x": 0, "y": 1, "z": 1} {
		keys, err := b.ByIndex(db, "tag", []byte(tag), nil)
		require.NoError(t, err)
		assert.Len(t, keys, want, tag)
	}

	require.NoError(t, b.Delete(db, []byte("c1")))
	keys, err = b.ByIndex(db, "tag", []byte("y"), nil)
	require.NoError(t, err)
	assert.Empty(t, keys)

	var wrong []string
	_, err = b.ByIndex(db, "tag", []byte("y"), &wrong)
	assert.True(t, errors.ErrType.Is(err))
}

func TestPrefixRange(t *testing.T) {
	cases := map[string]struct {
		prefix, end []byte
	}{
		"simple":        {prefix: []byte{1, 2}, end: []byte{1, 3}},
		"trailing 0xff": {prefix: []byte{1, 0xff}, end: []byte{2}},
		"all 0xff":      {prefix: []byte{0xff, 0xff}, end: nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			start, end := prefixRange(tc.prefix)
			assert.Equal(t, tc.prefix, start)
			assert.Equal(t, tc.end, end)
		})
	}
}
