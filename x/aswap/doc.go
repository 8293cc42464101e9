/*
Package aswap implements hashed timelock escrows used for atomic swaps.

Funds are held in an escrow and locked by a hashlock, the sha256 hash of a
secret known to the sender. The receiver claims the funds by revealing the
secret before the deadline. Once the deadline has passed only the sender can
reclaim them. Revealing the secret is what allows the counterparty of a swap
to complete the mirrored escrow on another ledger.

The algorithm is as follows:
1. Sender generates a secret, stores it in a secure place.
2. Sender makes a sha256 hash out of the secret.
3. With this hash sender creates an Escrow. Amount and safety deposit are
moved from the sender into the custody address of the escrow.
4. Receiver withdraws the amount by supplying the secret before the
deadline. The safety deposit goes back to the sender.
5. At or after the deadline the sender refunds the amount together with the
safety deposit.
6. Escrows are never deleted. Exactly one of withdraw and refund succeeds.

The engine assumes that its host executes calls one at a time and runs every
call atomically: all writes of a failed call are discarded. The Locked flag
of an escrow is a self-check against a transfer re-entering the engine, not a
mutual exclusion primitive.
*/
package aswap
