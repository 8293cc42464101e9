/*
Package orm stores Models in a KVStore.

Every ModelBucket owns a key prefix. Entities are saved under the bucket
name followed by their primary key. Secondary indexes keep one store entry
per (index value, primary key) pair, so that all entities sharing an index
value can be listed by a single prefix iteration.
*/
package orm
