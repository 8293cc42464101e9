/*
Package htlc defines all common interfaces used to tie together the hashed
timelock escrow engine and the capabilities it depends on, as well as
implementations of some of the simpler components (when interfaces would be
too much overhead).

The engine itself lives in x/aswap. It never talks to a concrete ledger:
value movement, authorization, storage, time and event delivery are passed in
as capabilities. This package declares the types those capabilities share:

  Address, Condition   principals and how they are derived
  UnixTime, Clock      deadlines and the time source of a call
  KVStore and friends  the storage substrate and its cache wrapping

We pass context through context.Context between the host and the engine. The
host stores per call information, such as block time and logger, using the
WithXYZ functions; the matching getters return it.
*/
package htlc
