// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// PaymentFlag is a destination address and amount given on the command line
// as address:amount. It implements the flags.Marshaler and Unmarshaler
// interfaces so a slice of them can be used for a repeatable option.
type PaymentFlag struct {
	Address string
	Amount  btcutil.Amount
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (p *PaymentFlag) MarshalFlag() (string, error) {
	return fmt.Sprintf("%s:%d sat", p.Address, int64(p.Amount)), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (p *PaymentFlag) UnmarshalFlag(value string) error {
	addr, amt, ok := strings.Cut(value, ":")
	if !ok || addr == "" || amt == "" {
		return fmt.Errorf("payment %q is not of the form "+
			"address:amount", value)
	}

	amount, err := ParseAmount(amt)
	if err != nil {
		return fmt.Errorf("payment %q: %w", value, err)
	}

	p.Address = strings.TrimSpace(addr)
	p.Amount = amount
	return nil
}
