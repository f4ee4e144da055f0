package errors

// Panic recovery for the library's entry points. Training walks deep
// recursive data splits; a panic escaping Fit would take the caller's
// goroutine down, so Fit converts panics into structured errors
// instead.

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// PanicError is the error a recovered panic is converted into. It
// keeps the original panic value and the stack at the panic site.
type PanicError struct {
	// Operation is the entry point the panic escaped from, e.g.
	// "FURIA.Fit".
	Operation string

	// PanicValue is the value passed to panic().
	PanicValue interface{}

	// StackTrace is the goroutine stack captured at recovery time.
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("furia: panic in %s: %v", e.Operation, e.PanicValue)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Str("panic_value", fmt.Sprintf("%v", e.PanicValue)).
		Str("type", "PanicError")
}

// NewPanicError creates a PanicError carrying the current stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		Operation:  operation,
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
	}
}

// Recover converts a panic into an error on the deferring function's
// named return value:
//
//	func (f *FURIA) Fit(data *dataset.Instances) (err error) {
//	    defer errors.Recover(&err, "FURIA.Fit")
//	    ...
//	}
//
// When the function already produced an error, the panic context is
// wrapped around it so Is/As still reach the original.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = errors.Wrapf(*err, "panic in %s: %v", operation, r)
		return
	}
	*err = errors.WithStack(NewPanicError(operation, r))
}

// SafeExecute runs fn and converts any panic into an error.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
