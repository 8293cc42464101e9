package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/htlc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeBase returns the base layer
func makeBase() (store.CacheableKVStore, func()) {
	commit, close := makeCommitStore()
	return commit.Adapter(), close
}

func makeCommitStore() (*CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	commit, err := NewCommitStore(tmpDir, "base", 0)
	if err != nil {
		panic(err)
	}
	close := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, close
}

var suite = store.NewTestSuite(makeBase)

func TestIavlGetSet(t *testing.T)            { suite.GetSet(t) }
func TestIavlCacheConflicts(t *testing.T)    { suite.CacheConflicts(t) }
func TestIavlIteratorConflicts(t *testing.T) { suite.IteratorWithConflicts(t) }

func TestCommitAndReload(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-commit-")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	db, err := NewCommitStore(tmpDir, "ledger", 100)
	require.NoError(t, err)

	empty, err := db.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Version)

	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("alice"), []byte("100")))
	require.NoError(t, cache.Set([]byte("bob"), []byte("50")))

	// nothing is visible before the cache is written and committed
	val, err := db.Get([]byte("alice"))
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, cache.Write())
	first, err := db.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)
	assert.NotEmpty(t, first.Hash)

	val, err = db.Get([]byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, []byte("100"), val)

	// a discarded cache never reaches the tree
	cache = db.CacheWrap()
	require.NoError(t, cache.Delete([]byte("alice")))
	cache.Discard()
	second, err := db.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, first.Hash, second.Hash)

	db.Close()

	reopened, err := NewCommitStore(tmpDir, "ledger", 100)
	require.NoError(t, err)
	defer reopened.Close()
	latest, err := reopened.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, second, latest)
	val, err = reopened.Get([]byte("bob"))
	require.NoError(t, err)
	assert.Equal(t, []byte("50"), val)
}

func TestMockCommitStore(t *testing.T) {
	db := MockCommitStore()
	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("k"), nil))
	require.NoError(t, cache.Write())
	_, err := db.Commit()
	require.NoError(t, err)

	ok, err := db.Adapter().Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
}
