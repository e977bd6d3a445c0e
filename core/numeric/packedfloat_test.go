// Copyright 2026 The rollup-core Authors
// This file is part of the rollup-core library.
//
// The rollup-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The rollup-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the rollup-core library. If not, see <http://www.gnu.org/licenses/>.

package numeric

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpack_RoundTrips(t *testing.T) {
	cases := []int64{0, 1, 999, 123000, 1 << 30}
	for _, v := range cases {
		value := big.NewInt(v)
		m, e, err := Pack(AmountField, value)
		assert.Nil(t, err)
		assert.Equal(t, 0, Unpack(m, e).Cmp(value))
	}
}

func TestPack_NegativeNotRepresentable(t *testing.T) {
	_, _, err := Pack(AmountField, big.NewInt(-1))
	assert.Equal(t, ErrNotRepresentable, err)
}

func TestPack_ZeroIsZeroMantissaZeroExponent(t *testing.T) {
	m, e, err := Pack(AmountField, big.NewInt(0))
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), m)
	assert.Equal(t, uint64(0), e)
}

func TestPack_FeeFieldNarrowerMantissaRejectsLargeValue(t *testing.T) {
	// 2053 exceeds the 11-bit mantissa's ceiling (2048) and isn't
	// divisible by ten, so no exponent shift can shrink it further.
	assert.False(t, Representable(FeeField, big.NewInt(2053)))
}

func TestRepresentable_TrailingZerosShiftIntoExponent(t *testing.T) {
	// 10^40 has far more than 35 significant bits, but its decimal
	// mantissa is a single digit, so it must pack into the amount field.
	value := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
	assert.True(t, Representable(AmountField, value))
}

func TestRepresentable_NonTerminatingNotRepresentable(t *testing.T) {
	// A value whose only prime factor beyond 2 isn't 5 can never divide
	// evenly by 10 down to a small enough mantissa.
	value := new(big.Int).Lsh(big.NewInt(1), 60) // 2^60: dividing by 10 always leaves a remainder
	assert.False(t, Representable(AmountField, value))
}
