// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcsend/internal/cfgutil"
	"github.com/btcsuite/btcsend/internal/prompt"
	"github.com/btcsuite/btcsend/internal/zero"
	"github.com/btcsuite/btcsend/wallet"
	flags "github.com/jessevdk/go-flags"
)

var newlineBytes = []byte{'\n'}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Stderr.Write(newlineBytes)
	os.Exit(1)
}

func errContext(err error, context string) error {
	return fmt.Errorf("%s: %w", context, err)
}

// Flags.
var opts = struct {
	Network     string              `long:"network" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"signet" description:"Bitcoin network of the key and addresses"`
	ShowAddress bool                `long:"showaddress" description:"Print the P2PKH address of the key and exit"`
	Source      string              `long:"from" description:"P2PKH address the outputs pay to (default: derived from the key)"`
	Destination string              `long:"to" description:"Address to pay"`
	Amount      *cfgutil.AmountFlag `long:"amount" description:"Amount to pay, in BTC or with a sat suffix"`
	Fee         *cfgutil.AmountFlag `long:"fee" description:"Absolute transaction fee"`
	Utxos       []string            `long:"utxo" description:"Output to spend as txid:vout:amount, may be repeated; outputs are spent in the given order"`
	Unsigned    bool                `long:"unsigned" description:"Print the unsigned transaction and the spent outputs instead of signing"`
	SignTx      string              `long:"signtx" description:"Sign the given hex encoded transaction instead of building one"`
}{
	Network: "mainnet",
	Amount:  cfgutil.NewAmountFlag(0),
	Fee:     cfgutil.NewAmountFlag(wallet.DefaultFee),
}

var network wallet.Network

// Parse and validate flags.
func init() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	switch opts.Network {
	case "testnet":
		network = wallet.Testnet
	case "regtest":
		network = wallet.Regtest
	case "signet":
		network = wallet.Signet
	default:
		network = wallet.Bitcoin
	}

	if opts.ShowAddress || opts.SignTx != "" {
		return
	}

	if opts.Destination == "" {
		fatalf("Destination address is required")
	}
	if opts.Amount.Amount <= 0 {
		fatalf("Amount must be positive")
	}
	if opts.Fee.Amount < 0 || opts.Fee.Amount > btcutil.MaxSatoshi {
		fatalf("Fee must be between 0 and %v", btcutil.Amount(
			btcutil.MaxSatoshi))
	}
	if len(opts.Utxos) == 0 {
		fatalf("At least one output to spend is required")
	}
	if opts.Unsigned && opts.Source == "" {
		fatalf("Source address is required for unsigned transactions")
	}
}

func main() {
	err := run()
	if err != nil {
		fatalf("%v", err)
	}
}

func run() error {
	var wif string
	if !opts.Unsigned {
		secret, err := prompt.Secret(
			bufio.NewReader(os.Stdin), "WIF private key",
		)
		if err != nil {
			return errContext(err, "failed to read private key")
		}
		wif = string(secret)
		zero.Bytes(secret)
	}

	if opts.Source == "" && wif != "" {
		addr, err := wallet.P2PKHAddress(wif, network)
		if err != nil {
			return errContext(err, "failed to derive address")
		}
		opts.Source = addr
	}

	if opts.ShowAddress {
		fmt.Println(opts.Source)
		return nil
	}

	if opts.SignTx != "" {
		raw, err := hex.DecodeString(strings.TrimSpace(opts.SignTx))
		if err != nil {
			return errContext(err, "invalid transaction hex")
		}
		signed, err := wallet.SignRawTransaction(
			wif, raw, opts.Source, network,
		)
		if err != nil {
			return errContext(err, "failed to sign transaction")
		}
		fmt.Println(hex.EncodeToString(signed))
		return nil
	}

	source, err := wallet.DecodeAddress(opts.Source, network.Params())
	if err != nil {
		return errContext(err, "invalid source address")
	}
	pkScript, err := txscript.PayToAddrScript(source)
	if err != nil {
		return errContext(err, "invalid source address")
	}

	utxos := make([]wallet.Utxo, 0, len(opts.Utxos))
	for _, s := range opts.Utxos {
		utxo, err := parseUtxo(s, pkScript)
		if err != nil {
			return errContext(err, fmt.Sprintf("invalid output `%s`", s))
		}
		utxos = append(utxos, utxo)
	}

	if opts.Unsigned {
		raw, indices, err := wallet.BuildRawTransaction(
			utxos, opts.Source, opts.Destination, opts.Amount.Amount,
			opts.Fee.Amount, network,
		)
		if err != nil {
			return errContext(err, "failed to build transaction")
		}

		fmt.Println(hex.EncodeToString(raw))
		fmt.Fprintf(os.Stderr, "Spending %d %s:", len(indices),
			pickNoun(len(indices), "output", "outputs"))
		for _, i := range indices {
			fmt.Fprintf(os.Stderr, " %v", utxos[i].OutPoint)
		}
		os.Stderr.Write(newlineBytes)
		return nil
	}

	signed, err := wallet.BuildAndSignRawTransaction(
		wif, utxos, opts.Source, opts.Destination, opts.Amount.Amount,
		opts.Fee.Amount, network,
	)
	if err != nil {
		return errContext(err, "failed to create transaction")
	}

	fmt.Println(hex.EncodeToString(signed))
	return nil
}

// parseUtxo parses an output given as txid:vout:amount. The output is
// assumed to pay to pkScript.
func parseUtxo(s string, pkScript []byte) (wallet.Utxo, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return wallet.Utxo{}, fmt.Errorf("expected txid:vout:amount")
	}

	op, err := parseOutPoint(parts[0], parts[1])
	if err != nil {
		return wallet.Utxo{}, err
	}
	amount, err := cfgutil.ParseAmount(parts[2])
	if err != nil {
		return wallet.Utxo{}, err
	}
	if !saneOutputValue(amount) {
		return wallet.Utxo{}, fmt.Errorf("impossible output amount "+
			"`%v`", amount)
	}

	return wallet.Utxo{
		OutPoint: op,
		Amount:   amount,
		PkScript: pkScript,
	}, nil
}

func saneOutputValue(amount btcutil.Amount) bool {
	return amount > 0 && amount <= btcutil.MaxSatoshi
}

func parseOutPoint(txid, vout string) (wire.OutPoint, error) {
	txHash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return wire.OutPoint{}, err
	}
	index, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return wire.OutPoint{}, err
	}
	return wire.OutPoint{Hash: *txHash, Index: uint32(index)}, nil
}

func pickNoun(n int, singularForm, pluralForm string) string {
	if n == 1 {
		return singularForm
	}
	return pluralForm
}
