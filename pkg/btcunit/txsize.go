// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// WeightUnit is a transaction size in BIP 141 weight units.
type WeightUnit struct {
	val uint64
}

// NewWeightUnit returns a size of val weight units.
func NewWeightUnit(val uint64) WeightUnit {
	return WeightUnit{val: val}
}

// ToVB converts the weight to virtual bytes, rounding up.
func (wu WeightUnit) ToVB() VByte {
	const scale = blockchain.WitnessScaleFactor

	return VByte{val: (wu.val + scale - 1) / scale}
}

func (wu WeightUnit) String() string {
	return fmt.Sprintf("%d wu", wu.val)
}

// VByte is a transaction size in virtual bytes. A legacy transaction's
// virtual size equals its serialized size.
type VByte struct {
	val uint64
}

// NewVByte returns a size of val virtual bytes.
func NewVByte(val uint64) VByte {
	return VByte{val: val}
}

// ToWU converts the size to weight units.
func (vb VByte) ToWU() WeightUnit {
	return WeightUnit{val: vb.val * blockchain.WitnessScaleFactor}
}

func (vb VByte) String() string {
	return fmt.Sprintf("%d vb", vb.val)
}

// Uint64 returns the size as a plain integer.
func (vb VByte) Uint64() uint64 {
	return vb.val
}

// TxVSize returns the virtual size of tx.
func TxVSize(tx *wire.MsgTx) VByte {
	weight := blockchain.GetTransactionWeight(btcutil.NewTx(tx))

	return NewWeightUnit(uint64(weight)).ToVB()
}
