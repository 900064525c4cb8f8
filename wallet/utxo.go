// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcsend/chain"
)

// Utxo provides a detailed overview of an unspent transaction output.
type Utxo struct {
	// OutPoint is the transaction output identifier.
	OutPoint wire.OutPoint

	// Amount is the value of the output.
	Amount btcutil.Amount

	// PkScript is the public key script for the output.
	PkScript []byte

	// Height is the height of the block that confirmed the output, or
	// zero if it is still in the mempool.
	Height int32

	// Confirmations is the number of confirmations the output has.
	Confirmations int32
}

// TotalAmount sums the value of the given UTXOs.
func TotalAmount(utxos []Utxo) btcutil.Amount {
	var total btcutil.Amount
	for _, u := range utxos {
		total += u.Amount
	}

	return total
}

// OutPoints returns the outpoints of the given UTXOs in order.
func OutPoints(utxos []Utxo) []wire.OutPoint {
	ops := make([]wire.OutPoint, 0, len(utxos))
	for _, u := range utxos {
		ops = append(ops, u.OutPoint)
	}

	return ops
}

// utxosFromChain converts the outputs reported by a chain backend.
func utxosFromChain(unspent []chain.Unspent) []Utxo {
	utxos := make([]Utxo, 0, len(unspent))
	for _, u := range unspent {
		utxos = append(utxos, Utxo{
			OutPoint:      u.OutPoint,
			Amount:        u.Amount,
			PkScript:      u.PkScript,
			Height:        u.Height,
			Confirmations: u.Confirmations,
		})
	}

	return utxos
}
