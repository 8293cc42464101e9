/*
Package sigs authenticates callers by ed25519 signatures.

A signature covers the request payload together with the chain id and the
signer sequence number. The sequence is kept in the store and incremented
with every accepted signature, so a signed request cannot be replayed.
Verified signers are placed in the context, where Authenticate reads them.
*/
package sigs
