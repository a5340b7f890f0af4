package common

import "math"

// CheckedAdd adds two counters, failing with ArithmeticOverflow instead
// of wrapping. Every aggregate increment in the system goes through here.
func CheckedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

// CheckedInc is CheckedAdd by one.
func CheckedInc(a uint64) (uint64, error) {
	return CheckedAdd(a, 1)
}
