// Copyright (c) 2020 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
)

// testUnsignedTx builds a two input payment from the key derived from seed.
func testUnsignedTx(t *testing.T, seed byte) (*UnsignedTx, *btcutil.WIF,
	*btcutil.AddressPubKeyHash) {

	t.Helper()

	wif, source := testKey(t, seed)
	_, dest := testKey(t, seed+1)
	utxos := testUtxos(testScript(t, source), 50_000, 60_000)

	unsigned, err := BuildTransaction(
		utxos, source, dest, 80_000, 10_000, nil,
	)
	require.NoError(t, err)

	return unsigned, wif, source
}

// TestSignTransaction checks that every input gets a valid P2PKH signature
// script.
func TestSignTransaction(t *testing.T) {
	t.Parallel()

	unsigned, wif, source := testUnsignedTx(t, 1)
	before := unsigned.Tx.TxHash()

	signed, err := SignTransaction(unsigned.Tx, wif, source)
	require.NoError(t, err)

	// The unsigned transaction is left untouched.
	require.Equal(t, before, unsigned.Tx.TxHash())
	for _, txIn := range unsigned.Tx.TxIn {
		require.Empty(t, txIn.SignatureScript)
	}

	require.Len(t, signed.TxIn, len(unsigned.Tx.TxIn))
	require.Equal(t, unsigned.Tx.TxOut, signed.TxOut)
	require.Equal(t, unsigned.Tx.Version, signed.Version)
	require.Equal(t, unsigned.Tx.LockTime, signed.LockTime)

	pubKey := wif.SerializePubKey()
	for i, txIn := range signed.TxIn {
		require.Empty(t, txIn.Witness)

		pushes, err := txscript.PushedData(txIn.SignatureScript)
		require.NoError(t, err)
		require.Len(t, pushes, 2)

		sigBytes := pushes[0]
		require.Equal(t, byte(txscript.SigHashAll),
			sigBytes[len(sigBytes)-1])
		require.Equal(t, pubKey, pushes[1])

		sig, err := ecdsa.ParseDERSignature(sigBytes[:len(sigBytes)-1])
		require.NoError(t, err)

		hash, err := txscript.CalcSignatureHash(
			unsigned.PrevScripts[i], txscript.SigHashAll,
			unsigned.Tx, i,
		)
		require.NoError(t, err)
		require.True(t, sig.Verify(hash, wif.PrivKey.PubKey()))
	}

	err = VerifyTransaction(
		signed, unsigned.PrevScripts, unsigned.PrevInputValues,
	)
	require.NoError(t, err)
}

// TestSignTransactionDeterministic checks that signing twice gives the same
// bytes.
func TestSignTransactionDeterministic(t *testing.T) {
	t.Parallel()

	unsigned, wif, source := testUnsignedTx(t, 3)

	first, err := SignTransaction(unsigned.Tx, wif, source)
	require.NoError(t, err)
	second, err := SignTransaction(unsigned.Tx, wif, source)
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, first.Serialize(&a))
	require.NoError(t, second.Serialize(&b))
	require.Equal(t, a.Bytes(), b.Bytes())
}

// TestSignTransactionErrors checks the rejected key and address
// combinations.
func TestSignTransactionErrors(t *testing.T) {
	t.Parallel()

	unsigned, wif, source := testUnsignedTx(t, 5)
	otherWIF, _ := testKey(t, 9)

	scriptAddr, err := btcutil.NewAddressScriptHash(
		[]byte{txscript.OP_TRUE}, testParams,
	)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		wif     *btcutil.WIF
		source  btcutil.Address
		wantErr error
	}{{
		name:    "not p2pkh",
		wif:     wif,
		source:  scriptAddr,
		wantErr: ErrUnsupportedAddressType,
	}, {
		name:    "missing key",
		source:  source,
		wantErr: ErrInvalidPrivateKey,
	}, {
		name:    "key for another address",
		wif:     otherWIF,
		source:  source,
		wantErr: ErrKeyAddressMismatch,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := SignTransaction(unsigned.Tx, tc.wif, tc.source)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// TestVerifyTransactionTampered checks that changing a signed transaction
// invalidates its signatures.
func TestVerifyTransactionTampered(t *testing.T) {
	t.Parallel()

	unsigned, wif, source := testUnsignedTx(t, 7)

	signed, err := SignTransaction(unsigned.Tx, wif, source)
	require.NoError(t, err)

	signed.TxOut[0].Value--

	err = VerifyTransaction(
		signed, unsigned.PrevScripts, unsigned.PrevInputValues,
	)
	require.Error(t, err)

	// A transaction that was never signed can't be valid either.
	err = VerifyTransaction(
		unsigned.Tx, unsigned.PrevScripts, unsigned.PrevInputValues,
	)
	require.Error(t, err)
}
