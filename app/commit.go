package app

import (
	"encoding/binary"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/x/sigs"
)

// CommitStore handles loading from a CommitKVStore, handing out a cache wrap
// per call and committing the ones that succeeded.
type CommitStore struct {
	committed htlc.CommitKVStore
}

// NewCommitStore loads the latest version of the store.
func NewCommitStore(store htlc.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{committed: store}, nil
}

// CommitInfo returns the current version and hash
func (cs *CommitStore) CommitInfo() (htlc.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Begin returns a fresh scratch pad on top of the committed state. It must
// be either passed to Commit or discarded.
func (cs *CommitStore) Begin() htlc.KVCacheWrap {
	return cs.committed.CacheWrap()
}

// Commit flushes the cache to the underlying store and persists it as a
// new version.
func (cs *CommitStore) Commit(cache htlc.KVCacheWrap) (htlc.CommitID, error) {
	if err := cache.Write(); err != nil {
		return htlc.CommitID{}, errors.Wrap(err, "write cache")
	}
	return cs.committed.Commit()
}

//------- storing chainID ---------

// _htlc: is a prefix for host internal data
const chainIDKey = "_htlc:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv htlc.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv htlc.KVStore, chainID string) error {
	if !sigs.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}

//------- storing block time ---------

const blockTimeKey = "_htlc:blockTime"

// loadBlockTime returns the block time of the last committed call, or zero
// if none was stored yet.
func loadBlockTime(kv htlc.ReadOnlyKVStore) (htlc.UnixTime, error) {
	v, err := kv.Get([]byte(blockTimeKey))
	if err != nil {
		return 0, errors.Wrap(err, "load block time")
	}
	if len(v) == 0 {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, errors.Wrapf(errors.ErrState, "block time of %d bytes", len(v))
	}
	return htlc.UnixTime(binary.BigEndian.Uint64(v)), nil
}

// saveBlockTime stores the block time of a call.
func saveBlockTime(kv htlc.KVStore, t htlc.UnixTime) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(t))
	if err := kv.Set([]byte(blockTimeKey), raw[:]); err != nil {
		return errors.Wrap(err, "save block time")
	}
	return nil
}
