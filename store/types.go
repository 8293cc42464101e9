//nolint
package store

import "github.com/iov-one/htlc"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = htlc.ReadOnlyKVStore
type SetDeleter = htlc.SetDeleter
type KVStore = htlc.KVStore
type Batch = htlc.Batch
type Iterator = htlc.Iterator
type CacheableKVStore = htlc.CacheableKVStore
type KVCacheWrap = htlc.KVCacheWrap
type CommitKVStore = htlc.CommitKVStore
type CommitID = htlc.CommitID
