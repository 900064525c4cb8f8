// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcsend/chain"
	"github.com/stretchr/testify/require"
)

// testParams are the chain parameters used by the tests of this package.
var testParams = &chaincfg.RegressionNetParams

// testKey returns a deterministic key derived from seed together with its
// P2PKH address on testParams.
func testKey(t *testing.T, seed byte) (*btcutil.WIF,
	*btcutil.AddressPubKeyHash) {

	t.Helper()

	privKey, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	wif, err := btcutil.NewWIF(privKey, testParams, true)
	require.NoError(t, err)

	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(wif.SerializePubKey()), testParams,
	)
	require.NoError(t, err)

	return wif, addr
}

// testScript returns the output script paying to addr.
func testScript(t *testing.T, addr btcutil.Address) []byte {
	t.Helper()

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return script
}

// testOutPoint returns an outpoint whose hash is filled with b.
func testOutPoint(b byte, index uint32) wire.OutPoint {
	var hash chainhash.Hash
	copy(hash[:], bytes.Repeat([]byte{b}, chainhash.HashSize))

	return wire.OutPoint{Hash: hash, Index: index}
}

// testUtxos returns one UTXO paying pkScript per amount, each with a
// distinct outpoint.
func testUtxos(pkScript []byte, amounts ...btcutil.Amount) []Utxo {
	utxos := make([]Utxo, 0, len(amounts))
	for i, amt := range amounts {
		utxos = append(utxos, Utxo{
			OutPoint:      testOutPoint(byte(i+1), uint32(i)),
			Amount:        amt,
			PkScript:      pkScript,
			Height:        100,
			Confirmations: 6,
		})
	}

	return utxos
}

// TestUtxoHelpers checks the aggregate helpers over a list of UTXOs.
func TestUtxoHelpers(t *testing.T) {
	t.Parallel()

	utxos := testUtxos([]byte{txscript.OP_TRUE}, 50_000, 60_000, 1)

	require.Equal(t, btcutil.Amount(110_001), TotalAmount(utxos))
	require.Zero(t, TotalAmount(nil))

	ops := OutPoints(utxos)
	require.Len(t, ops, 3)
	for i, op := range ops {
		require.Equal(t, utxos[i].OutPoint, op)
	}
	require.Empty(t, OutPoints(nil))
}

// TestUtxosFromChain checks that outputs reported by a backend are carried
// over field by field and in order.
func TestUtxosFromChain(t *testing.T) {
	t.Parallel()

	unspent := []chain.Unspent{{
		OutPoint:      testOutPoint(1, 0),
		Amount:        1_000,
		PkScript:      []byte{1},
		Height:        10,
		Confirmations: 3,
	}, {
		OutPoint: testOutPoint(2, 7),
		Amount:   2_000,
		PkScript: []byte{2},
	}}

	utxos := utxosFromChain(unspent)
	require.Len(t, utxos, 2)
	for i, u := range utxos {
		require.Equal(t, unspent[i].OutPoint, u.OutPoint)
		require.Equal(t, unspent[i].Amount, u.Amount)
		require.Equal(t, unspent[i].PkScript, u.PkScript)
		require.Equal(t, unspent[i].Height, u.Height)
		require.Equal(t, unspent[i].Confirmations, u.Confirmations)
	}
}
