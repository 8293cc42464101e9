/*
Package errors implements custom error interfaces for the escrow engine.

Every failure is reported as an error wrapping one of the root errors declared
in this package. Root errors carry a numeric code so that a caller on the other
side of a process boundary can distinguish them and act accordingly: retry an
ErrAlreadyExists with fresh timing, treat everything else as a permanent
rejection.

If you want to register a custom error - use Register(code, description).
For reusing errors - use ErrXxx.New and ErrXxx.Newf, or Wrap and Wrapf.

There is also support for stacktraces. Please ensure you create the custom
error using ErrXyz.New("...") or errors.Wrap(err, "...") at the point of
creation to ensure we attach a stacktrace. If you wrap multiple times, we only
record the first wrap with the stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
for the error
	%s is just the error message
	%+v is the full stack trace
*/
package errors
