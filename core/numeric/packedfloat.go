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

// Package numeric implements the packed (mantissa, exponent, base=10)
// float encoding used for amounts and fees on L1 (§4.5, §9 "Numeric
// semantics"). Off-chain arithmetic stays in arbitrary-precision
// *big.Int; every user-facing amount must round-trip through this packing
// or the transaction is rejected.
package numeric

import (
	"errors"
	"math/big"
)

// FieldKind distinguishes the two width classes: amounts get more mantissa
// bits than fees.
type FieldKind int

const (
	// AmountField: 5-bit exponent, 35-bit mantissa.
	AmountField FieldKind = iota
	// FeeField: 5-bit exponent, 11-bit mantissa.
	FeeField
)

var widths = map[FieldKind]struct{ exp, mantissa uint }{
	AmountField: {exp: 5, mantissa: 35},
	FeeField:    {exp: 5, mantissa: 11},
}

var ErrNotRepresentable = errors.New("numeric: value has no exact packed-float representation")

var ten = big.NewInt(10)

// Pack finds the smallest exponent e and a mantissa m < 2^mantissaBits
// such that value == m * 10^e, returning ErrNotRepresentable if no such
// pair exists within the field's bit widths (§9: "implementers must
// verify that every user amount round-trips through the packing or
// reject the transaction").
func Pack(kind FieldKind, value *big.Int) (mantissa uint64, exponent uint64, err error) {
	w := widths[kind]
	maxExp := uint64(1)<<w.exp - 1
	maxMantissa := new(big.Int).Lsh(big.NewInt(1), w.mantissa)

	if value.Sign() < 0 {
		return 0, 0, ErrNotRepresentable
	}
	if value.Sign() == 0 {
		return 0, 0, nil
	}

	v := new(big.Int).Set(value)
	var exp uint64
	for exp = 0; exp <= maxExp; exp++ {
		if v.Cmp(maxMantissa) < 0 {
			return v.Uint64(), exp, nil
		}
		q, r := new(big.Int).QuoRem(v, ten, new(big.Int))
		if r.Sign() != 0 {
			return 0, 0, ErrNotRepresentable
		}
		v = q
	}
	return 0, 0, ErrNotRepresentable
}

// Unpack reverses Pack: value == mantissa * 10^exponent.
func Unpack(mantissa uint64, exponent uint64) *big.Int {
	v := new(big.Int).SetUint64(mantissa)
	if exponent == 0 {
		return v
	}
	scale := new(big.Int).Exp(ten, new(big.Int).SetUint64(exponent), nil)
	return v.Mul(v, scale)
}

// Representable reports whether value survives a Pack/Unpack round trip
// exactly, the admission check every apply() must run before crediting or
// debiting a packed amount (§4.1 InvalidOp: "amount not representable").
func Representable(kind FieldKind, value *big.Int) bool {
	_, _, err := Pack(kind, value)
	return err == nil
}
