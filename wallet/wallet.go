// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet implements a single-key custodial wallet that funds,
// signs and publishes legacy pay-to-pubkey-hash transactions.
//
// Outputs spent by a transaction are remembered in a SpentCache until the
// process exits, so successive sends never select the same output twice
// even before the first transaction confirms.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcsend/chain"
	"github.com/btcsuite/btcsend/pkg/btcunit"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultFee is the fee paid by every send unless configured otherwise.
const DefaultFee btcutil.Amount = 10_000

// Config holds everything a Wallet needs.
type Config struct {
	// Chain is used to look up outputs and publish transactions.
	Chain chain.Interface

	// Key is the wallet's only private key. Funds are received on and
	// change is returned to its P2PKH address.
	Key *btcutil.WIF

	// ChainParams selects the network. The key must be encoded for it.
	ChainParams *chaincfg.Params

	// Cache records outputs spent by pending transactions. A new
	// MemSpentCache is used when nil.
	Cache SpentCache

	// Fee is the absolute fee paid by every send. DefaultFee is used
	// when zero.
	Fee btcutil.Amount

	// MinConf is the number of confirmations an output needs before it is
	// spent. Zero allows spending unconfirmed outputs.
	MinConf int32

	// Selector picks the outputs funding a send. A strict
	// InOrderSelector is used when nil.
	Selector CoinSelector
}

// Wallet sends payments from the P2PKH address of a single key.
type Wallet struct {
	chain       chain.Interface
	key         *btcutil.WIF
	addr        *btcutil.AddressPubKeyHash
	chainParams *chaincfg.Params
	cache       SpentCache
	fee         btcutil.Amount
	minConf     int32
	selector    CoinSelector

	// sendMtx serializes the part of a send that reads the cache, selects
	// outputs and commits them back to the cache.
	sendMtx sync.Mutex
}

// New creates a wallet from cfg.
func New(cfg Config) (*Wallet, error) {
	switch {
	case cfg.Chain == nil:
		return nil, errors.New("missing chain backend")

	case cfg.ChainParams == nil:
		return nil, errors.New("missing chain params")

	case cfg.Key == nil:
		return nil, fmt.Errorf("%w: missing key", ErrInvalidPrivateKey)

	case !cfg.Key.IsForNet(cfg.ChainParams):
		return nil, fmt.Errorf("%w: key is not for %v",
			ErrInvalidPrivateKey, cfg.ChainParams.Name)

	case cfg.Fee < 0 || cfg.Fee > btcutil.MaxSatoshi:
		return nil, fmt.Errorf("%w: fee %v out of range",
			ErrInvalidAmount, cfg.Fee)

	case cfg.MinConf < 0:
		return nil, fmt.Errorf("negative minconf %d", cfg.MinConf)
	}

	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(cfg.Key.SerializePubKey()), cfg.ChainParams,
	)
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		chain:       cfg.Chain,
		key:         cfg.Key,
		addr:        addr,
		chainParams: cfg.ChainParams,
		cache:       cfg.Cache,
		fee:         cfg.Fee,
		minConf:     cfg.MinConf,
		selector:    cfg.Selector,
	}
	if w.cache == nil {
		w.cache = NewMemSpentCache()
	}
	if w.fee == 0 {
		w.fee = DefaultFee
	}
	if w.selector == nil {
		w.selector = &InOrderSelector{Strict: true}
	}

	return w, nil
}

// Address returns the wallet's P2PKH address.
func (w *Wallet) Address() btcutil.Address {
	return w.addr
}

// Fee returns the fee paid by every send.
func (w *Wallet) Fee() btcutil.Amount {
	return w.fee
}

// ChainParams returns the network the wallet operates on.
func (w *Wallet) ChainParams() *chaincfg.Params {
	return w.chainParams
}

// Balance returns the value of the outputs paying to the wallet address as
// reported by the chain backend. Outputs spent by pending transactions are
// still included until the backend stops reporting them.
func (w *Wallet) Balance(ctx context.Context) (btcutil.Amount, error) {
	bal, err := w.chain.Balance(ctx, w.addr, w.minConf)
	if err != nil {
		return 0, fmt.Errorf("unable to fetch balance: %w", err)
	}

	return bal, nil
}

// ListUnspent returns the outputs the wallet can spend, which excludes those
// already spent by a pending transaction.
func (w *Wallet) ListUnspent(ctx context.Context) ([]Utxo, error) {
	unspent, err := w.chain.ListUnspent(ctx, w.addr, w.minConf)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch utxos: %w", err)
	}

	return FilterSpent(w.cache, utxosFromChain(unspent)), nil
}

// Info summarizes the wallet state.
type Info struct {
	Address   btcutil.Address
	Balance   btcutil.Amount
	Spendable btcutil.Amount
	Utxos     []Utxo

	// Pending lists the outputs spent by transactions sent from this
	// process. It is only filled for caches that can enumerate their
	// entries.
	Pending []wire.OutPoint
}

// Info fetches the balance and the spendable outputs concurrently.
func (w *Wallet) Info(ctx context.Context) (*Info, error) {
	info := &Info{Address: w.addr}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bal, err := w.Balance(gctx)
		info.Balance = bal

		return err
	})
	g.Go(func() error {
		utxos, err := w.ListUnspent(gctx)
		info.Utxos = utxos

		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	info.Spendable = TotalAmount(info.Utxos)

	if c, ok := w.cache.(interface{ OutPoints() []wire.OutPoint }); ok {
		info.Pending = c.OutPoints()
	}

	return info, nil
}

// SendResult describes a signed, and possibly published, payment.
type SendResult struct {
	// Tx is the signed transaction.
	Tx *wire.MsgTx

	// TxHash is the transaction id.
	TxHash chainhash.Hash

	// Inputs are the outputs spent by Tx.
	Inputs []Utxo

	// Fee is the value left to the miner. It exceeds the configured fee
	// when the leftover value was too small for a change output.
	Fee btcutil.Amount

	// FeeRate is the effective fee rate of Tx.
	FeeRate btcunit.SatPerVByte

	// Change is the value returned to the wallet, if any.
	Change fn.Option[btcutil.Amount]

	// Published is false for simulated sends.
	Published bool
}

// Send pays amount to destination. The outputs spent are committed to the
// spent cache before the transaction is signed and published, and stay
// there even if publishing fails.
func (w *Wallet) Send(ctx context.Context, amount btcutil.Amount,
	destination string) (*SendResult, error) {

	return w.send(ctx, amount, destination, true)
}

// SimulateSend builds and signs the same transaction Send would, but neither
// publishes it nor records its inputs as spent.
func (w *Wallet) SimulateSend(ctx context.Context, amount btcutil.Amount,
	destination string) (*SendResult, error) {

	return w.send(ctx, amount, destination, false)
}

func (w *Wallet) send(ctx context.Context, amount btcutil.Amount,
	destination string, publish bool) (*SendResult, error) {

	if amount <= w.fee {
		return nil, fmt.Errorf("%w: amount %v, fee %v",
			ErrFeeExceedsAmount, amount, w.fee)
	}

	dest, err := DecodeAddress(destination, w.chainParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDestinationAddress,
			err)
	}

	unsigned, err := w.fundTransaction(ctx, amount, dest, publish)
	if err != nil {
		return nil, err
	}

	signed, err := SignTransaction(unsigned.Tx, w.key, w.addr)
	if err != nil {
		return nil, err
	}
	err = VerifyTransaction(
		signed, unsigned.PrevScripts, unsigned.PrevInputValues,
	)
	if err != nil {
		return nil, err
	}

	result := w.newSendResult(unsigned, signed)

	log.Tracef("Signed transaction: %v", newLogClosure(func() string {
		return spew.Sdump(signed)
	}))

	if !publish {
		log.Infof("Simulated send of %v to %v in tx %v (fee %v)",
			amount, dest, result.TxHash, result.Fee)

		return result, nil
	}

	txid, err := w.chain.SendRawTransaction(ctx, signed)
	switch {
	// The backend already has it, which is what we wanted.
	case errors.Is(err, chain.ErrTxAlreadyKnown):
		log.Warnf("Transaction %v already known to backend",
			result.TxHash)

	case err != nil:
		return nil, fmt.Errorf("unable to publish tx %v: %w",
			result.TxHash, err)

	case txid != nil && *txid != result.TxHash:
		log.Warnf("Backend reported txid %v for tx %v", txid,
			result.TxHash)
	}

	result.Published = true

	log.Infof("Sent %v to %v in tx %v (fee %v, %v)", amount, dest,
		result.TxHash, result.Fee, result.FeeRate)

	return result, nil
}

// fundTransaction selects outputs for a payment and builds the unsigned
// transaction. When commit is set, the selected outputs are recorded in the
// spent cache before sendMtx is released.
func (w *Wallet) fundTransaction(ctx context.Context, amount btcutil.Amount,
	dest btcutil.Address, commit bool) (*UnsignedTx, error) {

	w.sendMtx.Lock()
	defer w.sendMtx.Unlock()

	utxos, err := w.ListUnspent(ctx)
	if err != nil {
		return nil, err
	}

	unsigned, err := BuildTransaction(
		utxos, w.addr, dest, amount, w.fee, w.selector,
	)
	if err != nil {
		return nil, err
	}

	w.checkFee(unsigned, utxos)

	if !commit {
		return unsigned, nil
	}

	spent := OutPoints(unsigned.Selected)
	if !commitSpent(w.cache, spent) {
		return nil, ErrOutpointsInUse
	}

	log.Debugf("Marked %d %s as spent", len(spent),
		pickNoun(len(spent), "output", "outputs"))

	return unsigned, nil
}

// checkFee logs when the fee of a transaction falls short of what the
// default relay policy asks for the same payment. The transaction is still
// built, since some backends relay it anyway.
func (w *Wallet) checkFee(unsigned *UnsignedTx, utxos []Utxo) {
	minFee, err := w.relayFee(unsigned.Tx.TxOut[0], utxos)
	if err != nil {
		log.Debugf("Unable to estimate relay fee: %v", err)
		return
	}

	if unsigned.Fee() < minFee {
		size := txsizes.EstimateSerializeSize(
			len(unsigned.Tx.TxIn), unsigned.Tx.TxOut, false,
		)
		log.Warnf("Fee %v is below the relay minimum %v for an "+
			"estimated %d bytes", unsigned.Fee(), minFee, size)
	}
}

// relayFee returns the fee txauthor would pay for payment at the default
// relay fee rate, funding it in order from utxos.
func (w *Wallet) relayFee(payment *wire.TxOut,
	utxos []Utxo) (btcutil.Amount, error) {

	changeScript, err := txscript.PayToAddrScript(w.addr)
	if err != nil {
		return 0, err
	}

	tx, err := txauthor.NewUnsignedTransaction(
		[]*wire.TxOut{payment}, txrules.DefaultRelayFeePerKb,
		InputSource(&InOrderSelector{Strict: true}, utxos),
		&txauthor.ChangeSource{
			NewScript: func() ([]byte, error) {
				return changeScript, nil
			},
			ScriptSize: len(changeScript),
		},
	)
	if err != nil {
		return 0, err
	}

	return tx.TotalInput - txauthor.SumOutputValues(tx.Tx.TxOut), nil
}

func (w *Wallet) newSendResult(unsigned *UnsignedTx,
	signed *wire.MsgTx) *SendResult {

	fee := unsigned.Fee()

	change := fn.None[btcutil.Amount]()
	if amt, ok := unsigned.Change(); ok {
		change = fn.Some(amt)
	}

	return &SendResult{
		Tx:      signed,
		TxHash:  signed.TxHash(),
		Inputs:  unsigned.Selected,
		Fee:     fee,
		FeeRate: btcunit.NewSatPerVByte(fee, btcunit.TxVSize(signed)),
		Change:  change,
	}
}
