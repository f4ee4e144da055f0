package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestRecoverConvertsPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "FURIA.Fit")
		panic("split index out of range")
	}

	err := run()
	if err == nil {
		t.Fatal("Expected an error from the recovered panic")
	}

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatal("Error should be castable to *PanicError")
	}
	if panicErr.Operation != "FURIA.Fit" {
		t.Errorf("Operation = %q, want FURIA.Fit", panicErr.Operation)
	}
	if panicErr.PanicValue != "split index out of range" {
		t.Errorf("PanicValue = %v", panicErr.PanicValue)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected a captured stack trace")
	}

	want := "furia: panic in FURIA.Fit: split index out of range"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("Error() = %q, want it to contain %q", err.Error(), want)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "FURIA.Fit")
		return nil
	}
	if err := run(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestRecoverKeepsExistingError(t *testing.T) {
	original := NewValueError("FURIA.Fit", "class attribute must be nominal")

	run := func() (err error) {
		defer Recover(&err, "FURIA.Fit")
		err = original
		panic("secondary failure")
	}

	err := run()
	if err == nil {
		t.Fatal("Expected an error")
	}

	// The original error stays reachable through the wrap.
	if !Is(err, original) {
		t.Error("Expected Is(err, original) to be true")
	}
	var valErr *ValueError
	if !As(err, &valErr) {
		t.Error("Original ValueError should still be castable")
	}
	if !strings.Contains(err.Error(), "panic in FURIA.Fit: secondary failure") {
		t.Errorf("Error() = %q, want panic context", err.Error())
	}
}

func TestRecoverPanicWithErrorValue(t *testing.T) {
	cause := fmt.Errorf("corrupt instance weights")

	run := func() (err error) {
		defer Recover(&err, "FURIA.Predict")
		panic(cause)
	}

	err := run()
	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatal("Error should be castable to *PanicError")
	}
	if panicErr.PanicValue != cause {
		t.Errorf("PanicValue = %v, want the panicked error", panicErr.PanicValue)
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("Preprocessing", func() error { return nil }); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	sentinel := fmt.Errorf("sentinel")
	if err := SafeExecute("Preprocessing", func() error { return sentinel }); !Is(err, sentinel) {
		t.Errorf("Expected sentinel error, got %v", err)
	}

	err := SafeExecute("Training", func() error {
		var rules []int
		_ = rules[3] // out of range
		return nil
	})
	if err == nil {
		t.Fatal("Expected an error from the panicking function")
	}
	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Error("Error should be castable to *PanicError")
	}
	if panicErr.Operation != "Training" {
		t.Errorf("Operation = %q, want Training", panicErr.Operation)
	}
}

func TestSafeExecuteChaining(t *testing.T) {
	pipeline := func() error {
		return SafeExecute("Preprocessing", func() error {
			return SafeExecute("Training", func() error {
				panic("grow step failed")
			})
		})
	}

	err := pipeline()
	if err == nil {
		t.Fatal("Expected an error")
	}
	// The innermost recovery converts the panic; the outer stage sees
	// a plain error and passes it through.
	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatal("Error should be castable to *PanicError")
	}
	if panicErr.Operation != "Training" {
		t.Errorf("Operation = %q, want Training", panicErr.Operation)
	}
}
