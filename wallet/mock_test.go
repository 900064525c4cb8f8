// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// This file contains a mock implementation of the chain.Interface interface.
// It is used in various tests to isolate wallet logic from a real backend.

package wallet

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcsend/chain"
	"github.com/stretchr/testify/mock"
)

// mockChain is a mock implementation of the chain.Interface interface.
type mockChain struct {
	mock.Mock
}

// A compile-time assertion to ensure that mockChain implements the chain
// interface.
var _ chain.Interface = (*mockChain)(nil)

// Start implements the chain.Interface interface.
func (m *mockChain) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stop implements the chain.Interface interface.
func (m *mockChain) Stop() {
	m.Called()
}

// BackEnd implements the chain.Interface interface.
func (m *mockChain) BackEnd() string {
	return "mock"
}

// BestHeight implements the chain.Interface interface.
func (m *mockChain) BestHeight(ctx context.Context) (int32, error) {
	args := m.Called(ctx)
	return int32(args.Int(0)), args.Error(1)
}

// ListUnspent implements the chain.Interface interface.
func (m *mockChain) ListUnspent(ctx context.Context, addr btcutil.Address,
	minConf int32) ([]chain.Unspent, error) {

	args := m.Called(ctx, addr, minConf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]chain.Unspent), args.Error(1)
}

// Balance implements the chain.Interface interface.
func (m *mockChain) Balance(ctx context.Context, addr btcutil.Address,
	minConf int32) (btcutil.Amount, error) {

	args := m.Called(ctx, addr, minConf)
	if args.Get(0) == nil {
		return btcutil.Amount(0), args.Error(1)
	}

	return args.Get(0).(btcutil.Amount), args.Error(1)
}

// SendRawTransaction implements the chain.Interface interface.
func (m *mockChain) SendRawTransaction(ctx context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chainhash.Hash), args.Error(1)
}
