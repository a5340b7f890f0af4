package common

import (
	"errors"
	"math"
	"testing"
)

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		want    uint64
		wantErr bool
	}{
		{name: "zero plus zero", a: 0, b: 0, want: 0},
		{name: "simple add", a: 40, b: 2, want: 42},
		{name: "max plus zero", a: math.MaxUint64, b: 0, want: math.MaxUint64},
		{name: "max plus one overflows", a: math.MaxUint64, b: 1, wantErr: true},
		{name: "halfway overflow", a: math.MaxUint64/2 + 1, b: math.MaxUint64/2 + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckedAdd(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrArithmeticOverflow) {
					t.Errorf("expected ErrArithmeticOverflow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCheckedInc(t *testing.T) {
	got, err := CheckedInc(41)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	if _, err := CheckedInc(math.MaxUint64); !errors.Is(err, ErrArithmeticOverflow) {
		t.Errorf("expected ErrArithmeticOverflow, got %v", err)
	}
}
