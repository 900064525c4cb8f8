// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcunit provides a set of types for dealing with bitcoin size and
// fee rate units.
package btcunit

import (
	"math"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// SatsPerKilo is the number of satoshis in a kilo-satoshi.
	SatsPerKilo = 1000

	// floatStringPrecision is the number of decimal places to use when
	// converting a fee rate to a string.
	floatStringPrecision = 2
)

// SatPerVByte represents a fee rate in sat/vbyte. The fee rate is encoded
// as a big.Rat to allow for fractional (sub-satoshi) fee rates.
type SatPerVByte struct {
	*big.Rat
}

// NewSatPerVByte returns the fee rate of paying fee for vb virtual bytes.
func NewSatPerVByte(fee btcutil.Amount, vb VByte) SatPerVByte {
	if vb.val == 0 {
		return SatPerVByte{big.NewRat(0, 1)}
	}

	return SatPerVByte{big.NewRat(int64(fee), capInt64(vb.val))}
}

// FeePerKVByte converts the current fee rate from sat/vb to sat/kvb.
func (s SatPerVByte) FeePerKVByte() SatPerKVByte {
	kvbRate := new(big.Rat).Mul(s.Rat, big.NewRat(SatsPerKilo, 1))

	return SatPerKVByte{kvbRate}
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	return s.FloatString(floatStringPrecision) + " sat/vb"
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (s SatPerVByte) LessThan(other SatPerVByte) bool {
	return s.Cmp(other.Rat) < 0
}

// SatPerKVByte represents a fee rate in sat/kvb, the unit used by node relay
// policies.
type SatPerKVByte struct {
	*big.Rat
}

// NewSatPerKVByte creates a fee rate from a whole sat/kvb amount, such as a
// relay fee setting.
func NewSatPerKVByte(rate btcutil.Amount) SatPerKVByte {
	return SatPerKVByte{big.NewRat(int64(rate), 1)}
}

// FeePerVByte converts the current fee rate from sat/kvb to sat/vb.
func (s SatPerKVByte) FeePerVByte() SatPerVByte {
	vbRate := new(big.Rat).Quo(s.Rat, big.NewRat(SatsPerKilo, 1))

	return SatPerVByte{vbRate}
}

// FeeForVSize calculates the fee resulting from this fee rate and the given
// vsize in vbytes.
func (s SatPerKVByte) FeeForVSize(vbytes VByte) btcutil.Amount {
	fee := new(big.Rat).Mul(
		s.Rat, big.NewRat(capInt64(vbytes.val), SatsPerKilo),
	)

	return roundToAmount(fee)
}

// String returns a human-readable string of the fee rate.
func (s SatPerKVByte) String() string {
	return s.FloatString(floatStringPrecision) + " sat/kvb"
}

// roundToAmount rounds a big.Rat to the nearest btcutil.Amount (int64),
// with halves rounded away from zero.
func roundToAmount(r *big.Rat) btcutil.Amount {
	f, _ := r.Float64()

	return btcutil.Amount(math.Round(f))
}

// capInt64 converts a uint64 to an int64, capping at math.MaxInt64.
func capInt64(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(u)
}
