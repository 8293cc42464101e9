// Package htlctest provides helpers for testing code built on top of the
// escrow engine.
package htlctest
