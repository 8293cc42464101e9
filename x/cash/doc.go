/*
Package cash keeps per-asset balances of addresses and moves value between
them.

There is no logic in the assets, except that the balance of any address may
not go below zero. Thus, this implementation is referred to as cash. Simple
and safe.
*/
package cash
