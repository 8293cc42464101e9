package sigs

import "github.com/iov-one/htlc/errors"

// ErrInvalidSequence is returned when a signature uses a sequence other
// than the one expected for the signer.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
