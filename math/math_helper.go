// Package math includes checked arithmetic helpers for the unsigned 64 bit
// balances and counters used across the accounting core. Balance math must
// never wrap silently; every helper reports overflow instead.
package math

import (
	"math/bits"

	"github.com/pkg/errors"
)

var (
	// ErrOverflow occurs when an operation exceeds the uint64 range.
	ErrOverflow = errors.New("integer overflow")
	// ErrUnderflow occurs when a subtraction goes below zero.
	ErrUnderflow = errors.New("integer underflow")
	// ErrDivByZero occurs when the caller supplies a zero denominator.
	ErrDivByZero = errors.New("integer divide by zero")
)

// Min returns the smaller of two uint64 values.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Add64 adds two uint64 values and fails with ErrOverflow instead of
// wrapping around.
func Add64(a, b uint64) (uint64, error) {
	res, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return res, nil
}

// Sub64 subtracts b from a and fails with ErrUnderflow instead of
// wrapping around.
func Sub64(a, b uint64) (uint64, error) {
	res, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return res, nil
}

// Mul64 multiplies two uint64 values and fails with ErrOverflow instead
// of wrapping around.
func Mul64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// MulDiv64 returns a * b / den rounded down, carrying the intermediate
// product at 128 bit precision so that share and asset conversions do not
// overflow on large balances. Fails with ErrDivByZero when den is zero and
// with ErrOverflow when the quotient itself does not fit in 64 bits.
func MulDiv64(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrDivByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrOverflow
	}
	quo, _ := bits.Div64(hi, lo, den)
	return quo, nil
}
