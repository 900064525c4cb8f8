// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestParseAmount checks the accepted amount notations.
func TestParseAmount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value    string
		expected btcutil.Amount
		valid    bool
	}{
		{value: "0.0008", expected: 80_000, valid: true},
		{value: "1 BTC", expected: btcutil.SatoshiPerBitcoin, valid: true},
		{value: "80000sat", expected: 80_000, valid: true},
		{value: "10000 sats", expected: 10_000, valid: true},
		{value: "1.5sat", valid: false},
		{value: "lots", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()

			amt, err := ParseAmount(tc.value)
			if !tc.valid {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, amt)
		})
	}
}

// TestAmountFlag checks the flags.Unmarshaler and Marshaler round trip.
func TestAmountFlag(t *testing.T) {
	t.Parallel()

	flag := NewAmountFlag(10_000)
	s, err := flag.MarshalFlag()
	require.NoError(t, err)
	require.Equal(t, "0.0001 BTC", s)

	require.NoError(t, flag.UnmarshalFlag(s))
	require.Equal(t, btcutil.Amount(10_000), flag.Amount)

	require.NoError(t, flag.UnmarshalFlag("2000sat"))
	require.Equal(t, btcutil.Amount(2000), flag.Amount)
}

// TestPaymentFlag checks parsing of address:amount pairs.
func TestPaymentFlag(t *testing.T) {
	t.Parallel()

	var p PaymentFlag
	require.NoError(t, p.UnmarshalFlag(
		"mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn:0.0008",
	))
	require.Equal(t, "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", p.Address)
	require.Equal(t, btcutil.Amount(80_000), p.Amount)

	s, err := p.MarshalFlag()
	require.NoError(t, err)
	require.Equal(t, "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn:80000 sat", s)

	for _, bad := range []string{"", "addr", ":1", "addr:", "addr:x"} {
		require.Error(t, p.UnmarshalFlag(bad), bad)
	}
}

// TestNormalizeAddress checks that a default port is only added when
// missing.
func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	addr, err := NormalizeAddress("localhost", "18443")
	require.NoError(t, err)
	require.Equal(t, "localhost:18443", addr)

	addr, err = NormalizeAddress("127.0.0.1:8332", "18443")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8332", addr)

	addr, err = NormalizeAddress("::1", "8332")
	require.NoError(t, err)
	require.Equal(t, "[::1]:8332", addr)
}

// TestExplicitString checks that explicitly setting a flag is recorded.
func TestExplicitString(t *testing.T) {
	t.Parallel()

	s := NewExplicitString("default")
	require.False(t, s.ExplicitlySet())

	require.NoError(t, s.UnmarshalFlag("default"))
	require.True(t, s.ExplicitlySet())
	require.Equal(t, "default", s.Value)
}

// TestFileExists checks existing and missing paths.
func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rpc.cert")

	ok, err := FileExists(path)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("cert"), 0600))

	ok, err = FileExists(path)
	require.NoError(t, err)
	require.True(t, ok)
}
