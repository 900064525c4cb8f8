// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	// BackEndRPC names the bitcoind/btcd JSON-RPC backend.
	BackEndRPC = "rpc"

	// BackEndEsplora names the Esplora REST backend.
	BackEndEsplora = "esplora"
)

// BackEnds returns a list of the available back ends.
func BackEnds() []string {
	return []string{
		BackEndRPC,
		BackEndEsplora,
	}
}

// Unspent is an unspent output as reported by a backend.
type Unspent struct {
	OutPoint      wire.OutPoint
	Amount        btcutil.Amount
	PkScript      []byte
	Height        int32
	Confirmations int32
}

// Interface is the view of the chain a wallet needs to fund and publish
// transactions. All errors returned by implementations wrap
// ErrExternalCall.
type Interface interface {
	Start(ctx context.Context) error
	Stop()
	BackEnd() string

	// BestHeight returns the height of the current chain tip.
	BestHeight(ctx context.Context) (int32, error)

	// ListUnspent returns the outputs paying to addr that have at least
	// minConf confirmations. A minConf of zero includes mempool outputs.
	ListUnspent(ctx context.Context, addr btcutil.Address,
		minConf int32) ([]Unspent, error)

	// Balance returns the summed value of ListUnspent.
	Balance(ctx context.Context, addr btcutil.Address,
		minConf int32) (btcutil.Amount, error)

	// SendRawTransaction publishes a signed transaction.
	SendRawTransaction(ctx context.Context,
		tx *wire.MsgTx) (*chainhash.Hash, error)
}

// confirmations returns the number of confirmations of an output mined at
// height given the current tip. Outputs with a non-positive height are
// unconfirmed.
func confirmations(tip, height int32) int32 {
	if height <= 0 || height > tip {
		return 0
	}

	return tip - height + 1
}

// filterMinConf drops outputs with fewer than minConf confirmations,
// keeping the order of the rest.
func filterMinConf(unspent []Unspent, minConf int32) []Unspent {
	filtered := unspent[:0]
	for _, u := range unspent {
		if u.Confirmations < minConf {
			continue
		}
		filtered = append(filtered, u)
	}

	return filtered
}

// sumUnspent returns the total value of the given outputs.
func sumUnspent(unspent []Unspent) btcutil.Amount {
	var total btcutil.Amount
	for _, u := range unspent {
		total += u.Amount
	}

	return total
}
