package apperror

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeDanglingReference, "balance not found"),
			expected: "[DANGLING_REFERENCE] balance not found",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeMissingField, "missing capacity", "Flow.GasPlant"),
			expected: "[MISSING_FIELD] missing capacity (field: Flow.GasPlant)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestIsAndCode(t *testing.T) {
	err := New(CodeUnknownType, "no include-function registered")
	if !Is(err, CodeUnknownType) {
		t.Errorf("Is() = false, want true")
	}
	if Code(err) != CodeUnknownType {
		t.Errorf("Code() = %v, want %v", Code(err), CodeUnknownType)
	}
	if Code(errors.New("plain")) != CodeInternal {
		t.Errorf("Code() on a plain error should default to CodeInternal")
	}
}

func TestList_TruncatesAndAccumulates(t *testing.T) {
	l := NewList(2)
	l.Add(New(CodeDuplicateElement, "dup 1"))
	l.Add(New(CodeDuplicateElement, "dup 2"))
	l.Add(New(CodeDuplicateElement, "dup 3"))

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if l.Truncated() != 1 {
		t.Fatalf("Truncated() = %d, want 1", l.Truncated())
	}
	if !l.HasErrors() {
		t.Fatalf("HasErrors() = false, want true")
	}
	if l.Err() == nil {
		t.Fatalf("Err() = nil, want non-nil")
	}
}

func TestList_WarningsDoNotCountAsErrors(t *testing.T) {
	l := NewList(0)
	l.Add(NewWarning(CodeInvariantViolation, "storage has no release, but 0 MW cap"))

	if l.HasErrors() {
		t.Fatalf("HasErrors() = true, want false for warning-only list")
	}
	if l.Err() != nil {
		t.Fatalf("Err() = %v, want nil", l.Err())
	}
}
