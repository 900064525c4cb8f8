// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrExternalCall is wrapped by every error a backend returns, so callers
// can tell backend failures apart from local validation errors.
var ErrExternalCall = errors.New("external call failed")

// RPCErr represents an error returned by bitcoind or btcd when rejecting a
// transaction.
type RPCErr uint32

const (
	// ErrTxAlreadyKnown is returned when the transaction is already in the
	// mempool.
	ErrTxAlreadyKnown RPCErr = iota

	// ErrTxAlreadyConfirmed is returned when the transaction has already
	// been included in a block.
	ErrTxAlreadyConfirmed

	// ErrMempoolConflict is returned when the transaction spends an
	// output that an unconfirmed transaction already spends.
	ErrMempoolConflict

	// ErrMissingInputs is returned when a referenced output is unknown or
	// already spent.
	ErrMissingInputs

	// ErrMinRelayFeeNotMet is returned when the fee rate is below the
	// node's minimum relay fee.
	ErrMinRelayFeeNotMet

	// ErrInsufficientFee is returned when the fee is too low for the
	// mempool to accept the transaction.
	ErrInsufficientFee

	// ErrNonStandard is returned when the transaction violates the
	// node's standardness policy.
	ErrNonStandard

	// errSentinel is used to indicate the end of the error list.
	errSentinel
)

// Error implements the error interface.
func (r RPCErr) Error() string {
	switch r {
	case ErrTxAlreadyKnown:
		return "txn-already-known"

	case ErrTxAlreadyConfirmed:
		return "transaction already in block chain"

	case ErrMempoolConflict:
		return "txn-mempool-conflict"

	case ErrMissingInputs:
		return "bad-txns-inputs-missingorspent"

	case ErrMinRelayFeeNotMet:
		return "min relay fee not met"

	case ErrInsufficientFee:
		return "insufficient fee"

	case ErrNonStandard:
		return "non-standard transaction"
	}

	return "unknown error"
}

// rejectReasons maps the strings found in backend rejections to RPCErr.
// Several strings map to the same error since bitcoind, btcd and Esplora
// word the same condition differently.
var rejectReasons = []struct {
	reason string
	err    RPCErr
}{
	{"txn-already-known", ErrTxAlreadyKnown},
	{"txn-already-in-mempool", ErrTxAlreadyKnown},
	{"already have transaction", ErrTxAlreadyKnown},
	{"transaction already exists", ErrTxAlreadyKnown},
	{"transaction already in block chain", ErrTxAlreadyConfirmed},
	{"transaction already exists in blockchain", ErrTxAlreadyConfirmed},
	{"txn-mempool-conflict", ErrMempoolConflict},
	{"already spent by transaction", ErrMempoolConflict},
	{"bad-txns-inputs-missingorspent", ErrMissingInputs},
	{"missing inputs", ErrMissingInputs},
	{"orphan transaction", ErrMissingInputs},
	{"min relay fee not met", ErrMinRelayFeeNotMet},
	{"insufficient fee", ErrInsufficientFee},
	{"insufficient priority", ErrInsufficientFee},
	{"non-mandatory-script-verify-flag", ErrNonStandard},
	{"tx-size-small", ErrNonStandard},
}

// rejectTokens are reasons bitcoind reports as a single word. They only match
// a whole word of the rejection, so that unrelated messages merely
// containing them are left unclassified.
var rejectTokens = []struct {
	token string
	err   RPCErr
}{
	{"dust", ErrNonStandard},
}

// mapRejectErr wraps err with ErrExternalCall and, if the message contains a
// known rejection reason, the matching RPCErr.
func mapRejectErr(err error) error {
	for _, r := range rejectReasons {
		if matchErrStr(err, r.reason) {
			return fmt.Errorf("%w: %w: %w", ErrExternalCall,
				r.err, err)
		}
	}

	for _, r := range rejectTokens {
		if matchErrToken(err, r.token) {
			return fmt.Errorf("%w: %w: %w", ErrExternalCall,
				r.err, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrExternalCall, err)
}

// matchErrToken reports whether token appears as a whole word of the error
// message. Words are runs of letters and digits, compared case-insensitively.
func matchErrToken(err error, token string) bool {
	words := strings.FieldsFunc(err.Error(), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if strings.EqualFold(w, token) {
			return true
		}
	}

	return false
}

// matchErrStr takes an error returned from a backend and matches it against
// the specified string. If the expected string pattern is found in the error
// passed, return true. Both the error strings are normalized before matching.
func matchErrStr(err error, s string) bool {
	// Replace all dashes found in the error string with spaces.
	strippedErrStr := strings.ReplaceAll(err.Error(), "-", " ")

	// Do the same for the match string.
	strippedMatchStr := strings.ReplaceAll(s, "-", " ")

	// Match against the lowercase.
	return strings.Contains(
		strings.ToLower(strippedErrStr),
		strings.ToLower(strippedMatchStr),
	)
}
