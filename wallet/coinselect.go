// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
)

// Selection is the result of running a CoinSelector over a set of UTXOs.
type Selection struct {
	// Utxos are the selected outputs, in the order they were consumed.
	Utxos []Utxo

	// Indices holds the position of every selected output in the slice
	// that was handed to the selector.
	Indices []int

	// Total is the summed value of the selected outputs.
	Total btcutil.Amount
}

// CoinSelector decides which UTXOs fund a payment of amount plus fees.
//
// Implementations must not reorder or mutate the given slice. A selector
// that cannot fund the payment returns an error matching
// ErrInsufficientBalance.
type CoinSelector interface {
	Select(utxos []Utxo, amount, fees btcutil.Amount) (*Selection, error)
}

// InOrderSelector is a greedy CoinSelector. It consumes UTXOs in the order
// they are presented, without sorting by value, and stops as soon as the
// accumulated value reaches amount plus fees.
//
// With Strict unset, running out of UTXOs is only an error if the
// accumulated value is below amount. A selection worth between amount and
// amount plus fees is returned as-is and the caller pays whatever is left
// over as fee. With Strict set, the full amount plus fees must be covered.
type InOrderSelector struct {
	Strict bool
}

// A compile time check to ensure that InOrderSelector implements the
// interface.
var _ CoinSelector = (*InOrderSelector)(nil)

// Select implements CoinSelector.
func (s *InOrderSelector) Select(utxos []Utxo, amount,
	fees btcutil.Amount) (*Selection, error) {

	if amount < 0 || amount > btcutil.MaxSatoshi || fees < 0 ||
		fees > btcutil.MaxSatoshi {

		return nil, fmt.Errorf("%w: cannot select %v plus fee %v",
			ErrInvalidAmount, amount, fees)
	}

	target := amount + fees

	sel := &Selection{}
	for i, u := range utxos {
		sel.Utxos = append(sel.Utxos, u)
		sel.Indices = append(sel.Indices, i)
		sel.Total += u.Amount

		if sel.Total >= target {
			return sel, nil
		}
	}

	required := amount
	if s.Strict {
		required = target
	}
	if sel.Total < required {
		return nil, insufficientBalanceError{
			available: sel.Total,
			required:  required,
		}
	}

	return sel, nil
}

// InputSource adapts the selector to the txauthor.InputSource contract so
// that it can be plugged into txauthor.NewUnsignedTransaction. The amount
// requested by txauthor already includes its own fee estimate, so the
// selection is run with zero additional fees.
func InputSource(selector CoinSelector, utxos []Utxo) txauthor.InputSource {
	return func(target btcutil.Amount) (btcutil.Amount, []*wire.TxIn,
		[]btcutil.Amount, [][]byte, error) {

		sel, err := selector.Select(utxos, target, 0)
		if err != nil {
			return 0, nil, nil, nil, err
		}

		inputs := make([]*wire.TxIn, 0, len(sel.Utxos))
		values := make([]btcutil.Amount, 0, len(sel.Utxos))
		scripts := make([][]byte, 0, len(sel.Utxos))
		for _, u := range sel.Utxos {
			op := u.OutPoint
			inputs = append(inputs, wire.NewTxIn(&op, nil, nil))
			values = append(values, u.Amount)
			scripts = append(scripts, u.PkScript)
		}

		return sel.Total, inputs, values, scripts, nil
	}
}
