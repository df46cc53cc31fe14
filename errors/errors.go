package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which registry operation produced the error
type Phase string

const (
	PhaseOpen      Phase = "open"      // shared open and driver dispatch
	PhaseRelease   Phase = "release"   // refcount decrement and payload close
	PhaseReference Phase = "reference" // refcount increment without open
	PhaseEnumerate Phase = "enumerate" // index-based lookup of live handles
	PhaseClose     Phase = "close"     // registry teardown
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindOpenFailed   Kind = "open_failed"
	KindCloseFailed  Kind = "close_failed"
	KindInvariant    Kind = "invariant_violation"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindClosed       Kind = "closed"
	KindUnsupported  Kind = "unsupported"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindInvalidData  Kind = "invalid_data"
)

// Sentinels for errors.Is matching. Only Phase and Kind are compared.
var (
	ErrOpen       = &Error{Phase: PhaseOpen, Kind: KindOpenFailed}
	ErrInvariant  = &Error{Phase: PhaseRelease, Kind: KindInvariant}
	ErrOutOfRange = &Error{Phase: PhaseEnumerate, Kind: KindOutOfBounds}
	ErrClosed     = &Error{Phase: PhaseOpen, Kind: KindClosed}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Source string
	Driver string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Source != "" {
		b.WriteString(" ")
		b.WriteString(e.Source)
	}

	if e.Driver != "" {
		b.WriteString(" (driver ")
		b.WriteString(e.Driver)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Invariant violations match regardless of phase so a single sentinel covers
// release and reference misuse.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == KindInvariant && t.Kind == KindInvariant {
		return true
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Source sets the data source path
func (b *Builder) Source(path string) *Builder {
	b.err.Source = path
	return b
}

// Driver sets the driver name
func (b *Builder) Driver(name string) *Builder {
	b.err.Driver = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OpenFailed creates an open error for a source the backend could not open
func OpenFailed(source, driver string, cause error) *Error {
	return &Error{
		Phase:  PhaseOpen,
		Kind:   KindOpenFailed,
		Source: source,
		Driver: driver,
		Cause:  cause,
	}
}

// AsOpenFailed reports err as an open failure of source. An existing
// open_failed error is copied with empty Source and Driver filled in; any
// other error, structured or not, becomes the Cause of a new one. The
// argument is never modified, so sentinels stay intact.
func AsOpenFailed(source, driver string, err error) *Error {
	if e, ok := err.(*Error); ok {
		if e.Kind != KindOpenFailed {
			if driver == "" {
				driver = e.Driver
			}
			return OpenFailed(source, driver, e)
		}
		c := *e
		c.Phase = PhaseOpen
		if c.Source == "" {
			c.Source = source
		}
		if c.Driver == "" {
			c.Driver = driver
		}
		return &c
	}
	return OpenFailed(source, driver, err)
}

// CloseFailed creates an error for a payload whose close operation failed
func CloseFailed(phase Phase, source string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCloseFailed,
		Source: source,
		Cause:  cause,
	}
}

// InvariantViolation creates a lifecycle misuse error such as a double release
func InvariantViolation(phase Phase, source, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvariant,
		Source: source,
		Detail: detail,
	}
}

// IndexOutOfRange creates an enumeration error
func IndexOutOfRange(index, length int) *Error {
	return &Error{
		Phase:  PhaseEnumerate,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of range [0, %d)", index, length),
		Value:  index,
	}
}

// Closed creates an error for operations on a closed registry or driver
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s closed", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, source, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Source: source,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
