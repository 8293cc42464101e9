package app

import (
	"github.com/iov-one/htlc/errors"
)

// safeRun executes fn and turns any panic into an ErrPanic error, so that
// a faulty capability never takes the host down.
func safeRun(fn func() error) (err error) {
	defer errors.Recover(&err)
	return fn()
}
