// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
)

// rpcCaller is the subset of *rpcclient.Client used by RPCClient.
type rpcCaller interface {
	RawRequest(method string, params []json.RawMessage) (json.RawMessage,
		error)
	GetBlockCount() (int64, error)
	GetBlockChainInfo() (*btcjson.GetBlockChainInfoResult, error)
	SendRawTransaction(tx *wire.MsgTx, allowHighFees bool) (
		*chainhash.Hash, error)
	Shutdown()
	WaitForShutdown()
}

// RPCClient is a chain backend talking JSON-RPC over HTTP POST to a bitcoind
// node. Unspent outputs are found with scantxoutset, so the node does not
// need a wallet or an address index, but only confirmed outputs are
// returned. btcd does not implement scantxoutset and is refused by Start.
type RPCClient struct {
	client      rpcCaller
	chainParams *chaincfg.Params
}

// A compile-time check to ensure that RPCClient satisfies the chain.Interface
// interface.
var _ Interface = (*RPCClient)(nil)

// RPCClientConfig defines the config options used when initializing the RPC
// Client.
type RPCClientConfig struct {
	// Conn describes the connection configuration parameters for the
	// client.
	Conn *rpcclient.ConnConfig

	// Chain defines a Bitcoin network by its parameters.
	Chain *chaincfg.Params
}

// validate checks the required config options are set.
func (r *RPCClientConfig) validate() error {
	if r == nil {
		return errors.New("missing rpc config")
	}

	// Make sure the chain params are configed.
	if r.Chain == nil {
		return errors.New("missing chain params config")
	}

	// Make sure connection config is supplied.
	if r.Conn == nil {
		return errors.New("missing conn config")
	}

	// If disableTLS is false, the remote RPC certificate must be provided
	// in the certs slice.
	if !r.Conn.DisableTLS && r.Conn.Certificates == nil {
		return errors.New("must provide certs when TLS is enabled")
	}

	return nil
}

// NewRPCClientWithConfig creates a client for the server described by cfg.
// Requests are sent over HTTP POST, so no connection is held open between
// calls.
func NewRPCClientWithConfig(cfg *RPCClientConfig) (*RPCClient, error) {
	// Make sure the config is valid.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Conn.HTTPPostMode = true

	rpcClient, err := rpcclient.New(cfg.Conn, nil)
	if err != nil {
		return nil, err
	}

	return &RPCClient{
		client:      rpcClient,
		chainParams: cfg.Chain,
	}, nil
}

// BackEnd returns the name of the driver.
func (c *RPCClient) BackEnd() string {
	return BackEndRPC
}

// Start checks that the node is reachable and serves the configured
// network.
func (c *RPCClient) Start(ctx context.Context) error {
	info, err := callCtx(ctx, c.client.GetBlockChainInfo)
	if err != nil {
		return mapRPCErr(err)
	}

	if netName(info.Chain) != c.chainParams.Name {
		return fmt.Errorf("%w: node is on %q, expected %q",
			ErrExternalCall, info.Chain, c.chainParams.Name)
	}

	_, err = callCtx(ctx, func() (json.RawMessage, error) {
		return c.client.RawRequest("help", []json.RawMessage{
			json.RawMessage(`"scantxoutset"`),
		})
	})
	if err != nil {
		return fmt.Errorf("%w: node does not support scantxoutset, "+
			"a bitcoind node is required: %v", ErrExternalCall, err)
	}

	log.Infof("Connected to bitcoind on %v at height %d",
		c.chainParams.Name, info.Blocks)

	return nil
}

// Stop shuts down the underlying client.
func (c *RPCClient) Stop() {
	c.client.Shutdown()
	c.client.WaitForShutdown()
}

// BestHeight returns the block count of the node.
func (c *RPCClient) BestHeight(ctx context.Context) (int32, error) {
	count, err := callCtx(ctx, c.client.GetBlockCount)
	if err != nil {
		return 0, mapRPCErr(err)
	}

	return int32(count), nil
}

// scanResult is the subset of the scantxoutset response that is used.
type scanResult struct {
	Success  bool   `json:"success"`
	Height   int32  `json:"height"`
	Unspents []struct {
		TxID         string  `json:"txid"`
		Vout         uint32  `json:"vout"`
		ScriptPubKey string  `json:"scriptPubKey"`
		Amount       float64 `json:"amount"`
		Height       int32   `json:"height"`
	} `json:"unspents"`
}

// ListUnspent scans the node's UTXO set for outputs paying to addr.
func (c *RPCClient) ListUnspent(ctx context.Context, addr btcutil.Address,
	minConf int32) ([]Unspent, error) {

	descs, err := jsonCodec.Marshal([]string{
		fmt.Sprintf("addr(%s)", addr.EncodeAddress()),
	})
	if err != nil {
		return nil, err
	}
	params := []json.RawMessage{json.RawMessage(`"start"`), descs}

	raw, err := callCtx(ctx, func() (json.RawMessage, error) {
		return c.client.RawRequest("scantxoutset", params)
	})
	if err != nil {
		return nil, mapRPCErr(err)
	}

	var res scanResult
	if err := jsonCodec.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%w: decode scantxoutset: %v",
			ErrExternalCall, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: scantxoutset did not complete",
			ErrExternalCall)
	}

	unspent := make([]Unspent, 0, len(res.Unspents))
	for _, u := range res.Unspents {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad txid %q: %v",
				ErrExternalCall, u.TxID, err)
		}
		pkScript, err := decodeHex(u.ScriptPubKey)
		if err != nil {
			return nil, err
		}
		amt, err := btcutil.NewAmount(u.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %v: %v",
				ErrExternalCall, u.Amount, err)
		}

		unspent = append(unspent, Unspent{
			OutPoint:      *wire.NewOutPoint(hash, u.Vout),
			Amount:        amt,
			PkScript:      pkScript,
			Height:        u.Height,
			Confirmations: confirmations(res.Height, u.Height),
		})
	}

	log.Debugf("scantxoutset found %d outputs for %v at height %d",
		len(unspent), addr, res.Height)

	return filterMinConf(unspent, minConf), nil
}

// Balance sums the outputs returned by ListUnspent.
func (c *RPCClient) Balance(ctx context.Context, addr btcutil.Address,
	minConf int32) (btcutil.Amount, error) {

	unspent, err := c.ListUnspent(ctx, addr, minConf)
	if err != nil {
		return 0, err
	}

	return sumUnspent(unspent), nil
}

// SendRawTransaction publishes tx through the node.
func (c *RPCClient) SendRawTransaction(ctx context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	txid, err := callCtx(ctx, func() (*chainhash.Hash, error) {
		return c.client.SendRawTransaction(tx, false)
	})
	if err != nil {
		return nil, mapRejectErr(err)
	}

	return txid, nil
}

// mapRPCErr wraps an error from a non-publishing call.
func mapRPCErr(err error) error {
	if errors.Is(err, ErrExternalCall) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrExternalCall, err)
}

// callCtx runs a blocking rpcclient call and returns early if ctx is done.
// rpcclient has no context support, so the call itself keeps running in the
// background until it completes.
func callCtx[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)
	go func() {
		val, err := call()
		done <- result{val, err}
	}()

	select {
	case res := <-done:
		return res.val, res.err

	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// netName maps the chain names reported by getblockchaininfo to chaincfg
// network names.
func netName(chain string) string {
	switch strings.ToLower(chain) {
	case "main":
		return chaincfg.MainNetParams.Name
	case "test":
		return chaincfg.TestNet3Params.Name
	default:
		return chain
	}
}
