// Package errors provides structured error types for the data-source registry.
//
// Errors are categorized by Phase (which operation failed) and Kind (error category).
// The Error type carries the source path, driver name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseOpen, errors.KindOpenFailed).
//		Source("/data/poly.gpkg").
//		Driver("sqlite").
//		Cause(ioErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvariantViolation(errors.PhaseRelease, path, "release of closed handle")
//	err := errors.IndexOutOfRange(5, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
// The ErrOpen, ErrInvariant, ErrOutOfRange and ErrClosed sentinels match any
// error of the same phase and kind.
package errors
