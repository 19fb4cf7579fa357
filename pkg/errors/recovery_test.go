package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "TestOperation" {
		t.Errorf("Expected operation 'TestOperation', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in TestOperation: test panic message" {
		t.Errorf("unexpected message %q", panicErr.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "panic in TestOperation") {
		t.Errorf("Error message should contain panic info: %s", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("original error should stay in the chain")
	}
}

func TestSafeExecute(t *testing.T) {
	sentinel := fmt.Errorf("function error")

	tests := []struct {
		name      string
		fn        func() error
		wantErr   error
		wantPanic bool
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "error", fn: func() error { return sentinel }, wantErr: sentinel},
		{name: "panic", fn: func() error { panic("boom") }, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("op", tt.fn)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			var panicErr *PanicError
			if got := errors.As(err, &panicErr); got != tt.wantPanic {
				t.Errorf("PanicError = %v, want %v (err=%v)", got, tt.wantPanic, err)
			}
			if tt.wantErr == nil && !tt.wantPanic && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestPanicError_UnwrapError(t *testing.T) {
	inner := fmt.Errorf("inner")
	panicErr := NewPanicError("op", inner)

	if !errors.Is(panicErr, inner) {
		t.Error("PanicError should unwrap an error panic value")
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}
