package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestBazaarErrorFormatting(t *testing.T) {
	if got := ErrInvalidFee.Error(); got != "[INVALID_FEE] Fee must be at most 10000 basis points" {
		t.Errorf("unexpected message: %s", got)
	}

	withDetails := NewBazaarError(ErrorCodeInvalidRequest, "Bad field", "name")
	if got := withDetails.Error(); got != "[INVALID_REQUEST] Bad field: name" {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestIsBazaarError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "predeclared", err: ErrSelfRating, want: true},
		{name: "constructed", err: NewBazaarError(ErrorCodeInvalidRequest, "bad", ""), want: true},
		{name: "wrapped domain error", err: fmt.Errorf("submit: %w", ErrFeedbackExists), want: true},
		{name: "foreign", err: errors.New("disk full"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBazaarError(tt.err); got != tt.want {
				t.Errorf("IsBazaarError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(ErrUnauthorized); got != ErrorCodeUnauthorized {
		t.Errorf("unexpected code: %s", got)
	}
	if got := GetErrorCode(fmt.Errorf("close: %w", ErrRecentActivity)); got != ErrorCodeRecentActivity {
		t.Errorf("wrapped error lost its code: %s", got)
	}
	if got := GetErrorCode(errors.New("disk full")); got != "UNKNOWN_ERROR" {
		t.Errorf("foreign error should report UNKNOWN_ERROR, got %s", got)
	}
}

func TestWrapError(t *testing.T) {
	wrapped := WrapError(errors.New("unexpected EOF"), ErrorCodeInvalidRequest, "Request body is not valid JSON")
	if !HasCode(wrapped, ErrorCodeInvalidRequest) {
		t.Errorf("wrapped error lost its code: %v", wrapped)
	}
	if wrapped.Details != "unexpected EOF" {
		t.Errorf("cause not preserved in details: %q", wrapped.Details)
	}
}
