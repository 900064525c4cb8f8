// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
)

// TxVersion is the version of every transaction built by this package.
const TxVersion = 2

// UnsignedTx is a freshly built transaction together with the UTXOs that
// fund it. The embedded AuthoredTx carries the previous output scripts and
// values needed to sign and verify it, and a negative ChangeIndex when no
// change output was added.
type UnsignedTx struct {
	txauthor.AuthoredTx

	// Selected are the UTXOs spent by the transaction, in input order.
	Selected []Utxo

	// Indices holds the position of every selected UTXO in the slice the
	// transaction was built from.
	Indices []int
}

// Fee returns the value left to the miner, which is the difference between
// the total input and total output value.
func (u *UnsignedTx) Fee() btcutil.Amount {
	return u.TotalInput - txauthor.SumOutputValues(u.Tx.TxOut)
}

// Change returns the value of the change output, if any.
func (u *UnsignedTx) Change() (btcutil.Amount, bool) {
	if u.ChangeIndex < 0 {
		return 0, false
	}

	return btcutil.Amount(u.Tx.TxOut[u.ChangeIndex].Value), true
}

// BuildTransaction assembles an unsigned transaction paying amount to
// destination, funded from utxos chosen by selector. Leftover value of at
// least DustThreshold is returned to source as a second output, smaller
// leftovers are added to the fee. All inputs are final and carry empty
// signature scripts. A nil selector defaults to a non-strict
// InOrderSelector.
func BuildTransaction(utxos []Utxo, source, destination btcutil.Address,
	amount, fees btcutil.Amount, selector CoinSelector) (*UnsignedTx,
	error) {

	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount %v must be positive",
			ErrInvalidAmount, amount)
	}
	if fees < 0 || fees > btcutil.MaxSatoshi {
		return nil, fmt.Errorf("%w: fee %v out of range",
			ErrInvalidAmount, fees)
	}
	if selector == nil {
		selector = &InOrderSelector{}
	}

	destScript, err := txscript.PayToAddrScript(destination)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDestinationAddress,
			err)
	}
	sourceScript, err := txscript.PayToAddrScript(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSourceAddress, err)
	}

	payment := wire.NewTxOut(int64(amount), destScript)
	if err := txrules.CheckOutput(payment, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	sel, err := selector.Select(utxos, amount, fees)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(TxVersion)
	tx.LockTime = 0

	prevScripts := make([][]byte, 0, len(sel.Utxos))
	prevValues := make([]btcutil.Amount, 0, len(sel.Utxos))
	for _, u := range sel.Utxos {
		op := u.OutPoint
		txIn := wire.NewTxIn(&op, nil, nil)
		txIn.Sequence = wire.MaxTxInSequenceNum

		tx.AddTxIn(txIn)
		prevScripts = append(prevScripts, u.PkScript)
		prevValues = append(prevValues, u.Amount)
	}

	tx.AddTxOut(payment)

	changeIndex := -1
	remaining := sel.Total - amount - fees
	ChangeOutput(remaining, sourceScript).WhenSome(func(out *wire.TxOut) {
		changeIndex = len(tx.TxOut)
		tx.AddTxOut(out)
	})

	log.Tracef("Built tx spending %d %s worth %v: pay %v, fee budget %v, "+
		"leftover %v", len(sel.Utxos), pickNoun(len(sel.Utxos), "input",
		"inputs"), sel.Total, amount, fees, remaining)

	return &UnsignedTx{
		AuthoredTx: txauthor.AuthoredTx{
			Tx:              tx,
			PrevScripts:     prevScripts,
			PrevInputValues: prevValues,
			TotalInput:      sel.Total,
			ChangeIndex:     changeIndex,
		},
		Selected: sel.Utxos,
		Indices:  sel.Indices,
	}, nil
}
