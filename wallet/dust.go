// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// DustThreshold is the smallest leftover value that is returned to the
// sender as a change output. Anything below it is left to the miner.
const DustThreshold btcutil.Amount = 10_000

// IsDust reports whether a leftover amount is too small to be worth its own
// change output.
func IsDust(amount btcutil.Amount) bool {
	return amount < DustThreshold
}

// ChangeOutput returns an output paying remaining to pkScript, or None if
// remaining is dust.
func ChangeOutput(remaining btcutil.Amount,
	pkScript []byte) fn.Option[*wire.TxOut] {

	if IsDust(remaining) {
		return fn.None[*wire.TxOut]()
	}

	return fn.Some(wire.NewTxOut(int64(remaining), pkScript))
}
