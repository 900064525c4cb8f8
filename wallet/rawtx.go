// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

// Network identifies one of the bitcoin networks supported by the raw
// transaction helpers.
type Network uint8

const (
	// Bitcoin is the main network.
	Bitcoin Network = iota

	// Testnet is testnet3.
	Testnet

	// Regtest is the regression test network.
	Regtest

	// Signet is the default signet.
	Signet
)

// String returns the chaincfg name of the network.
func (n Network) String() string {
	return n.Params().Name
}

// Params returns the chain parameters of the network. Unknown values map
// to the main network.
func (n Network) Params() *chaincfg.Params {
	switch n {
	case Testnet:
		return &chaincfg.TestNet3Params
	case Regtest:
		return &chaincfg.RegressionNetParams
	case Signet:
		return &chaincfg.SigNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

// DecodeAddress decodes an address and checks that it belongs to params.
func DecodeAddress(s string, params *chaincfg.Params) (btcutil.Address,
	error) {

	addr, err := btcutil.DecodeAddress(s, params)
	if err != nil {
		return nil, err
	}
	if !addr.IsForNet(params) {
		return nil, fmt.Errorf("address %s is not for %v", s,
			params.Name)
	}

	return addr, nil
}

// DecodeWIF imports a private key and checks that it belongs to params.
func DecodeWIF(wif string, params *chaincfg.Params) (*btcutil.WIF, error) {
	key, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if !key.IsForNet(params) {
		return nil, fmt.Errorf("%w: key is not for %v",
			ErrInvalidPrivateKey, params.Name)
	}

	return key, nil
}

// P2PKHAddress returns the pay-to-pubkey-hash address controlled by the key
// encoded in wif on the given network.
func P2PKHAddress(wif string, network Network) (string, error) {
	params := network.Params()

	key, err := DecodeWIF(wif, params)
	if err != nil {
		return "", err
	}
	defer key.PrivKey.Zero()

	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(key.SerializePubKey()), params,
	)
	if err != nil {
		return "", err
	}

	return addr.EncodeAddress(), nil
}

// BuildRawTransaction builds an unsigned payment of amount from source to
// destination and returns it serialized, together with the positions in
// utxos of the outputs it spends. Selection is non-strict: it only fails if
// all of utxos together are worth less than amount.
func BuildRawTransaction(utxos []Utxo, source, destination string,
	amount, fees btcutil.Amount, network Network) ([]byte, []int, error) {

	unsigned, err := buildRaw(
		utxos, source, destination, amount, fees, network,
	)
	if err != nil {
		return nil, nil, err
	}

	raw, err := serializeTx(unsigned.Tx)
	if err != nil {
		return nil, nil, err
	}

	return raw, unsigned.Indices, nil
}

// SignRawTransaction signs every input of a serialized transaction as a
// spend of source's P2PKH output and returns the signed serialization.
func SignRawTransaction(wif string, raw []byte, source string,
	network Network) ([]byte, error) {

	params := network.Params()

	src, err := DecodeAddress(source, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSourceAddress, err)
	}

	key, err := DecodeWIF(wif, params)
	if err != nil {
		return nil, err
	}
	defer key.PrivKey.Zero()

	tx := wire.NewMsgTx(TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("unable to decode transaction: %w", err)
	}

	signed, err := SignTransaction(tx, key, src)
	if err != nil {
		return nil, err
	}

	return serializeTx(signed)
}

// BuildAndSignRawTransaction builds a payment like BuildRawTransaction and
// signs it with wif. The key must control source.
func BuildAndSignRawTransaction(wif string, utxos []Utxo, source,
	destination string, amount, fees btcutil.Amount,
	network Network) ([]byte, error) {

	unsigned, err := buildRaw(
		utxos, source, destination, amount, fees, network,
	)
	if err != nil {
		return nil, err
	}

	params := network.Params()
	key, err := DecodeWIF(wif, params)
	if err != nil {
		return nil, err
	}
	defer key.PrivKey.Zero()

	src, err := DecodeAddress(source, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSourceAddress, err)
	}

	signed, err := SignTransaction(unsigned.Tx, key, src)
	if err != nil {
		return nil, err
	}

	return serializeTx(signed)
}

func buildRaw(utxos []Utxo, source, destination string, amount,
	fees btcutil.Amount, network Network) (*UnsignedTx, error) {

	params := network.Params()

	src, err := DecodeAddress(source, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSourceAddress, err)
	}
	dst, err := DecodeAddress(destination, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDestinationAddress,
			err)
	}

	return BuildTransaction(
		utxos, src, dst, amount, fees, &InOrderSelector{},
	)
}

func serializeTx(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
