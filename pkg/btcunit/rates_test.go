// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestFeeRateConversions checks that the conversion between sat/vb and
// sat/kvb is lossless.
func TestFeeRateConversions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		vbRate      SatPerVByte
		expectedKVB SatPerKVByte
	}{
		{
			name:        "1 sat/vb",
			vbRate:      SatPerVByte{big.NewRat(1, 1)},
			expectedKVB: SatPerKVByte{big.NewRat(1000, 1)},
		},
		{
			name:        "0.11 sat/vb",
			vbRate:      SatPerVByte{big.NewRat(11, 100)},
			expectedKVB: SatPerKVByte{big.NewRat(110, 1)},
		},
		{
			name:        "52.63 sat/vb",
			vbRate:      SatPerVByte{big.NewRat(10000, 190)},
			expectedKVB: SatPerKVByte{big.NewRat(10000000, 190)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			kvb := tc.vbRate.FeePerKVByte()
			require.Zero(t, tc.expectedKVB.Cmp(kvb.Rat))
			require.Zero(t, tc.vbRate.Cmp(kvb.FeePerVByte().Rat))
		})
	}
}

// TestNewFeeRateConstructors checks that the New* fee rate constructors work
// as expected.
func TestNewFeeRateConstructors(t *testing.T) {
	t.Parallel()

	fee := btcutil.Amount(1000)

	// Test NewSatPerVByte.
	expectedRateVB := SatPerVByte{big.NewRat(4, 1)}
	require.Zero(
		t, expectedRateVB.Cmp(NewSatPerVByte(fee, NewVByte(250)).Rat),
	)

	// A zero size yields a zero rate instead of a division by zero.
	require.Zero(t, NewSatPerVByte(fee, NewVByte(0)).Sign())

	// Test NewSatPerKVByte.
	require.Zero(
		t, big.NewRat(1000, 1).Cmp(NewSatPerKVByte(fee).Rat),
	)
}

// TestFeeForVSize checks the fee computed for a relay fee rate.
func TestFeeForVSize(t *testing.T) {
	t.Parallel()

	rate := NewSatPerKVByte(1000)

	require.EqualValues(t, 226, rate.FeeForVSize(NewVByte(226)))
	require.EqualValues(t, 0, rate.FeeForVSize(NewVByte(0)))

	// 1500 sat/kvb over 191 vb is 286.5 sats, rounded away from zero.
	require.EqualValues(
		t, 287, NewSatPerKVByte(1500).FeeForVSize(NewVByte(191)),
	)
}

// TestFeeRateComparisons tests the comparison methods of the fee rate types.
func TestFeeRateComparisons(t *testing.T) {
	t.Parallel()

	r1 := SatPerVByte{big.NewRat(1, 1)}
	r2 := SatPerVByte{big.NewRat(2, 1)}
	r3 := SatPerVByte{big.NewRat(1, 1)}

	require.True(t, r1.LessThan(r2))
	require.False(t, r2.LessThan(r1))
	require.False(t, r1.LessThan(r3))
}

// TestStringer tests the stringer methods of the unit types.
func TestStringer(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.25 sat/vb",
		SatPerVByte{big.NewRat(1, 4)}.String())
	require.Equal(t, "1000.00 sat/kvb", NewSatPerKVByte(1000).String())
	require.Equal(t, "226 vb", NewVByte(226).String())
	require.Equal(t, "904 wu", NewVByte(226).ToWU().String())
	require.Equal(t, "57 vb", NewWeightUnit(225).ToVB().String())
}
