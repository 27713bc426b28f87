package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errTooShort = errors.New("route needs at least two points")

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "cycle",
			err:  New(ErrCodeCycle, "%q cannot contain its ancestor %q", "panel", "window"),
			want: `CYCLE: "panel" cannot contain its ancestor "window"`,
		},
		{
			name: "read only",
			err:  New(ErrCodeReadOnly, "canvas is read-only"),
			want: "READ_ONLY: canvas is read-only",
		},
		{
			name: "conflict",
			err:  New(ErrCodeConflict, "document %s is at version %d, not %d", "d1", 3, 2),
			want: "CONFLICT: document d1 is at version 3, not 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if tt.err.Cause != nil {
				t.Errorf("Cause = %v, want nil", tt.err.Cause)
			}
		})
	}
}

func TestWrapRouteFailure(t *testing.T) {
	err := Wrap(ErrCodeRouteFailed, errTooShort, "route %s", "c1")

	if got, want := err.Error(), "ROUTE_FAILED: route c1: route needs at least two points"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Unwrap(err) != errTooShort {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), errTooShort)
	}

	outer := fmt.Errorf("paint: %w", err)
	if !errors.Is(outer, errTooShort) {
		t.Error("sentinel lost through the fmt wrapper")
	}
	if !Is(outer, ErrCodeRouteFailed) {
		t.Error("code lost through the fmt wrapper")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"same code", New(ErrCodeReadOnly, "x"), ErrCodeReadOnly, true},
		{"other code", New(ErrCodeCycle, "x"), ErrCodeInvalidInput, false},
		{"through fmt", fmt.Errorf("move: %w", New(ErrCodeReadOnly, "x")), ErrCodeReadOnly, true},
		{"outer code wins", Wrap(ErrCodeInternal, New(ErrCodeCycle, "inner"), "outer"), ErrCodeCycle, false},
		{"plain", errTooShort, ErrCodeRouteFailed, false},
		{"nil", nil, ErrCodeReadOnly, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"unknown type", New(ErrCodeUnknownType, "no factory for %q", "cloud"), ErrCodeUnknownType},
		{"wrapped", fmt.Errorf("parse: %w", Wrap(ErrCodeRouteFailed, errTooShort, "c1")), ErrCodeRouteFailed},
		{"plain", errTooShort, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"code hidden", New(ErrCodeReadOnly, "canvas is read-only"), "canvas is read-only"},
		{"cause hidden", Wrap(ErrCodeRouteFailed, errTooShort, "cannot route c1"), "cannot route c1"},
		{"through fmt", fmt.Errorf("cli: %w", New(ErrCodeCycle, "loop")), "loop"},
		{"plain", errTooShort, "route needs at least two points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodesDistinct(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidSelection, ErrCodeInvalidFormat,
		ErrCodeCycle, ErrCodeReadOnly, ErrCodeNotFound, ErrCodeUnknownType,
		ErrCodeConflict, ErrCodeUnavailable, ErrCodeRouteFailed,
		ErrCodeInternal, ErrCodeUnsupported,
	}
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate code %s", c)
		}
		seen[c] = true
		if string(c) != strings.ToUpper(string(c)) {
			t.Errorf("code %q is not upper case", c)
		}
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("shape", "s1")
	if !Is(err, ErrCodeNotFound) {
		t.Errorf("Is(err, ErrCodeNotFound) = false, want true")
	}
	want := `NOT_FOUND: shape not found: "s1"`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}
