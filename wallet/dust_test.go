// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// TestChangeOutput checks that leftovers below the dust threshold never
// produce a change output.
func TestChangeOutput(t *testing.T) {
	t.Parallel()

	pkScript := []byte{txscript.OP_TRUE}

	testCases := []struct {
		name      string
		remaining btcutil.Amount
		wantDust  bool
	}{
		{name: "negative", remaining: -5_000, wantDust: true},
		{name: "zero", remaining: 0, wantDust: true},
		{name: "just below", remaining: DustThreshold - 1, wantDust: true},
		{name: "threshold", remaining: DustThreshold},
		{name: "above", remaining: 20_000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.wantDust, IsDust(tc.remaining))

			change := ChangeOutput(tc.remaining, pkScript)
			require.Equal(t, tc.wantDust, change.IsNone())

			change.WhenSome(func(out *wire.TxOut) {
				require.Equal(t, int64(tc.remaining), out.Value)
				require.Equal(t, pkScript, out.PkScript)
			})
		})
	}
}
