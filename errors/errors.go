package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Escrow errors. Each of them is a terminal rejection of a single call.
var (
	// ErrUnauthorized is returned when the caller cannot prove authority
	// to act as the required principal.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when no escrow exists under given ID.
	ErrNotFound = Register(3, "not found")

	// ErrInvalidAmount is returned when the escrowed amount is not
	// positive or an amount computation cannot be represented.
	ErrInvalidAmount = Register(4, "invalid amount")

	// ErrInvalidSafetyDeposit is returned for a negative safety deposit.
	ErrInvalidSafetyDeposit = Register(5, "invalid safety deposit")

	// ErrInvalidDeadline is returned when the deadline is not in the
	// future at creation time.
	ErrInvalidDeadline = Register(6, "invalid deadline")

	// ErrAlreadyExists is returned when an escrow with the derived ID is
	// already stored. Callers should retry once the clock has advanced.
	ErrAlreadyExists = Register(7, "already exists")

	// ErrReentrancyDetected is returned when an escrow is found locked on
	// entry, meaning a call was made while another one was in progress.
	ErrReentrancyDetected = Register(8, "reentrancy detected")

	// ErrAlreadyWithdrawn is returned for operations on a withdrawn escrow.
	ErrAlreadyWithdrawn = Register(9, "already withdrawn")

	// ErrAlreadyRefunded is returned for operations on a refunded escrow.
	ErrAlreadyRefunded = Register(10, "already refunded")

	// ErrDeadlineExpired is returned when a withdraw is attempted at or
	// after the deadline.
	ErrDeadlineExpired = Register(11, "deadline expired")

	// ErrDeadlineNotExpired is returned when a refund is attempted before
	// the deadline.
	ErrDeadlineNotExpired = Register(12, "deadline not expired")

	// ErrInvalidPreimage is returned when the revealed secret does not
	// hash to the hashlock.
	ErrInvalidPreimage = Register(13, "invalid preimage")

	// ErrInsufficientBalance is returned by the transfer capability when
	// the source cannot cover the amount.
	ErrInsufficientBalance = Register(14, "insufficient balance")
)

// Infrastructure errors.
var (
	// ErrInput stands for general input problems indication.
	ErrInput = Register(100, "invalid input")

	// ErrState is returned when an object or the environment is in an
	// invalid state.
	ErrState = Register(101, "invalid state")

	// ErrDatabase is returned when a storage operation fails.
	ErrDatabase = Register(102, "database")

	// ErrModel is returned whenever a model is invalid and cannot be
	// persisted.
	ErrModel = Register(103, "invalid model")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(104, "invalid type")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(105, "an operation cannot be completed due to value overflow")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected.
	ErrHuman = Register(106, "coding error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// This function ensures that no error code is used twice. Attempt to reuse
// an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is restricted for unregistered errors.
}

// Error represents a root error.
//
// Root errors categorize issues. Each instance created during the runtime
// should wrap one of the declared root errors. This allows error tests and
// returning all errors to the client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric code this error was registered with.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//	e.New("my description")
//	Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (e *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if e == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == e {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Unwrap makes wrapped errors usable with the standard library errors.Is and
// errors.As functions.
func (e *wrappedError) Unwrap() error {
	return e.parent
}

// Format prints the message, %+v includes the stack trace of the innermost
// wrap.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s", e.Error())
		if st := stackTrace(e); st != nil {
			fmt.Fprintf(s, "%+v", st.StackTrace())
		}
		return
	}
	fmt.Fprintf(s, "%s", e.Error())
}

// Code returns the numeric code of the root error. Errors that do not wrap a
// registered root error have the reserved code 1.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	for {
		if e, ok := err.(*Error); ok {
			return e.code
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return 1
		}
	}
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType is a helper to augment an error with a corresponding type message.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack tracer in the chain of wrapped
// errors or nil.
func stackTrace(err error) stackTracer {
	for {
		if st, ok := err.(stackTracer); ok {
			return st
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
