package math_test

import (
	stdmath "math"
	"testing"

	"github.com/restakelabs/restaking/math"
	"github.com/stretchr/testify/require"
)

func TestAdd64(t *testing.T) {
	sum, err := math.Add64(1<<63, 1<<62)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<63+1<<62), sum)

	_, err = math.Add64(stdmath.MaxUint64, 1)
	require.ErrorIs(t, err, math.ErrOverflow)
}

func TestSub64(t *testing.T) {
	diff, err := math.Sub64(10, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(6), diff)

	_, err = math.Sub64(4, 10)
	require.ErrorIs(t, err, math.ErrUnderflow)
}

func TestMul64(t *testing.T) {
	prod, err := math.Mul64(1<<32, 1<<31)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<63), prod)

	_, err = math.Mul64(1<<32, 1<<32)
	require.ErrorIs(t, err, math.ErrOverflow)
}

func TestMulDiv64(t *testing.T) {
	tests := []struct {
		a, b, den uint64
		want      uint64
	}{
		{100, 1000, 1000, 100},
		{100, 800, 1000, 80},
		{7, 3, 2, 10},
		{stdmath.MaxUint64, 1000, 2000, stdmath.MaxUint64 / 2},
	}
	for _, tt := range tests {
		got, err := math.MulDiv64(tt.a, tt.b, tt.den)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}

	_, err := math.MulDiv64(1, 1, 0)
	require.ErrorIs(t, err, math.ErrDivByZero)

	_, err = math.MulDiv64(stdmath.MaxUint64, stdmath.MaxUint64, 2)
	require.ErrorIs(t, err, math.ErrOverflow)
}

func TestMin(t *testing.T) {
	require.Equal(t, uint64(3), math.Min(3, 5))
	require.Equal(t, uint64(3), math.Min(5, 3))
}
