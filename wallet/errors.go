// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcsend/chain"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
)

var (
	// ErrInsufficientBalance is returned when the available UTXOs cannot
	// cover the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrFeeExceedsAmount is returned when the requested amount is not
	// larger than the fee the wallet pays for every send.
	ErrFeeExceedsAmount = errors.New("fee exceeds amount")

	// ErrMalformedDestinationAddress is returned when the destination
	// cannot be decoded as an address of the wallet's network.
	ErrMalformedDestinationAddress = errors.New("malformed destination " +
		"address")

	// ErrMalformedSourceAddress is returned when the source cannot be
	// decoded as an address of the wallet's network.
	ErrMalformedSourceAddress = errors.New("malformed source address")

	// ErrUnsupportedAddressType is returned when signing is requested for
	// an address that is not pay-to-pubkey-hash.
	ErrUnsupportedAddressType = errors.New("unsupported address type")

	// ErrInvalidPrivateKey is returned when a WIF string cannot be
	// imported, or it was encoded for a different network.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidAmount is returned for non-positive amounts, negative
	// fees and payment outputs rejected by the relay policy.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrKeyAddressMismatch is returned when the signing key does not
	// hash to the source address, so the produced signatures would never
	// satisfy the spent scripts.
	ErrKeyAddressMismatch = errors.New("private key does not match " +
		"source address")

	// ErrOutpointsInUse is returned when a built transaction selected an
	// outpoint that has been committed to another transaction in the
	// meantime.
	ErrOutpointsInUse = errors.New("outpoints already spent by a " +
		"pending transaction")

	// ErrExternalCall is returned when the chain backend could not serve
	// a request. It aliases the chain package's sentinel so callers only
	// need to import this package.
	ErrExternalCall = chain.ErrExternalCall
)

// insufficientBalanceError is returned by coin selectors. It matches
// ErrInsufficientBalance with errors.Is and implements
// txauthor.InputSourceError so it can be told apart from other failures of
// an input source.
type insufficientBalanceError struct {
	available btcutil.Amount
	required  btcutil.Amount
}

// InputSourceError marks the error as an input source failure.
func (insufficientBalanceError) InputSourceError() {}

// Error returns a human readable description of the shortfall.
func (e insufficientBalanceError) Error() string {
	return fmt.Sprintf("%v: have %v, need %v", ErrInsufficientBalance,
		e.available, e.required)
}

// Is allows errors.Is to match ErrInsufficientBalance.
func (e insufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// A compile time check to ensure the selector error can be reported through
// the txauthor input source contract.
var _ txauthor.InputSourceError = insufficientBalanceError{}
