package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"submission cancelled", ErrSubmissionCancelled, true},
		{"capacity exceeded", ErrCapacityExceeded, true},
		{"invalid event", ErrInvalidEvent, false},
		{"not durable", ErrNotDurable, false},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"cyclical backpressure", ErrCyclicalBackpressure, true},
		{"double bind", ErrDoubleBind, true},
		{"unbound wire", ErrUnboundWire, true},
		{"not durable", ErrNotDurable, true},
		{"submission cancelled", ErrSubmissionCancelled, false},
		{"invalid event", ErrInvalidEvent, false},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsFatal(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid event", ErrInvalidEvent, true},
		{"duplicate event", ErrDuplicateEvent, true},
		{"ancient event", ErrAncientEvent, true},
		{"not durable", ErrNotDurable, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil error", nil, ErrorTransient},
		{"fatal", ErrNotDurable, ErrorFatal},
		{"invalid", ErrDuplicateEvent, ErrorInvalid},
		{"transient default", fmt.Errorf("something else"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	base := fmt.Errorf("boom")

	wrapped := Wrap(base, "OrphanBuffer", "HandleEvent", "link parents")
	if wrapped.Error() != "OrphanBuffer.HandleEvent: link parents failed: boom" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should unwrap to base")
	}

	transient := WrapTransient(base, "c", "m", "a")
	if !IsTransient(transient) {
		t.Error("WrapTransient should classify as transient")
	}
	fatal := WrapFatal(base, "c", "m", "a")
	if !IsFatal(fatal) {
		t.Error("WrapFatal should classify as fatal")
	}
	invalid := WrapInvalid(base, "c", "m", "a")
	if !IsInvalid(invalid) {
		t.Error("WrapInvalid should classify as invalid")
	}
	if !errors.Is(fatal, base) {
		t.Error("classified error should unwrap to base")
	}

	if WrapTransient(nil, "c", "m", "a") != nil {
		t.Error("wrapping nil should return nil")
	}
	if WrapFatal(nil, "c", "m", "a") != nil {
		t.Error("wrapping nil should return nil")
	}
	if WrapInvalid(nil, "c", "m", "a") != nil {
		t.Error("wrapping nil should return nil")
	}
}
