// Copyright (c) 2020 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
)

// SignTransaction signs every input of tx as a spend of the pay-to-pubkey-hash
// output locked to source, using the key held by wif. Each input commits to
// the whole transaction with SIGHASH_ALL. Signatures are deterministic
// (RFC 6979), so signing the same transaction twice with the same key yields
// identical bytes.
//
// The passed transaction is left untouched and a signed copy is returned.
// The signature hash for every input is computed over the unsigned
// transaction.
func SignTransaction(tx *wire.MsgTx, wif *btcutil.WIF,
	source btcutil.Address) (*wire.MsgTx, error) {

	p2pkh, ok := source.(*btcutil.AddressPubKeyHash)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedAddressType,
			source)
	}
	if wif == nil || wif.PrivKey == nil {
		return nil, ErrInvalidPrivateKey
	}

	pubKey := wif.SerializePubKey()
	if !bytes.Equal(btcutil.Hash160(pubKey), p2pkh.Hash160()[:]) {
		return nil, fmt.Errorf("%w: %v", ErrKeyAddressMismatch,
			source.EncodeAddress())
	}

	pkScript, err := txscript.PayToAddrScript(p2pkh)
	if err != nil {
		return nil, err
	}

	signed := tx.Copy()
	for i := range tx.TxIn {
		hash, err := txscript.CalcSignatureHash(
			pkScript, txscript.SigHashAll, tx, i,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to compute sighash for "+
				"input %d: %w", i, err)
		}

		sig := ecdsa.Sign(wif.PrivKey, hash)
		sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))

		sigScript, err := txscript.NewScriptBuilder().
			AddData(sigBytes).
			AddData(pubKey).
			Script()
		if err != nil {
			return nil, err
		}

		signed.TxIn[i].SignatureScript = sigScript
		signed.TxIn[i].Witness = nil
	}

	return signed, nil
}

// VerifyTransaction executes the scripts of every input of a signed
// transaction against the outputs it spends.
func VerifyTransaction(tx *wire.MsgTx, prevScripts [][]byte,
	prevValues []btcutil.Amount) error {

	fetcher, err := txauthor.TXPrevOutFetcher(tx, prevScripts, prevValues)
	if err != nil {
		return err
	}
	hashCache := txscript.NewTxSigHashes(tx, fetcher)

	for i, prevScript := range prevScripts {
		vm, err := txscript.NewEngine(
			prevScript, tx, i, txscript.StandardVerifyFlags, nil,
			hashCache, int64(prevValues[i]), fetcher,
		)
		if err != nil {
			return fmt.Errorf("cannot create script engine: %w", err)
		}

		if err := vm.Execute(); err != nil {
			return fmt.Errorf("cannot validate input %d: %w", i, err)
		}
	}

	return nil
}

