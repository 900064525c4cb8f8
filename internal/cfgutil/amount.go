// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// AmountFlag embeds a btcutil.Amount and implements the flags.Marshaler and
// Unmarshaler interfaces so it can be used as a config struct field.
type AmountFlag struct {
	btcutil.Amount
}

// NewAmountFlag creates an AmountFlag with a default btcutil.Amount.
func NewAmountFlag(defaultValue btcutil.Amount) *AmountFlag {
	return &AmountFlag{defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (a *AmountFlag) MarshalFlag() (string, error) {
	return a.Amount.String(), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (a *AmountFlag) UnmarshalFlag(value string) error {
	amount, err := ParseAmount(value)
	if err != nil {
		return err
	}
	a.Amount = amount
	return nil
}

// ParseAmount parses an amount given either in BTC, optionally suffixed
// with "BTC", or as a whole number of satoshis suffixed with "sat" or
// "sats".
func ParseAmount(value string) (btcutil.Amount, error) {
	value = strings.TrimSpace(value)

	for _, suffix := range []string{"sats", "sat"} {
		if sats, ok := strings.CutSuffix(value, suffix); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(sats), 10, 64)
			if err != nil {
				return 0, err
			}
			return btcutil.Amount(n), nil
		}
	}

	value = strings.TrimSpace(strings.TrimSuffix(value, "BTC"))
	valueF64, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return btcutil.NewAmount(valueF64)
}
