// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	jsoniter "github.com/json-iterator/go"
)

// jsonCodec is a drop-in replacement for encoding/json.
var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultEsploraTimeout bounds every Esplora request whose context has no
// deadline.
const DefaultEsploraTimeout = 30 * time.Second

// maxResponseSize caps the size of a response body that is read into memory.
const maxResponseSize = 8 << 20

// EsploraConfig defines the config options used when initializing an
// EsploraClient.
type EsploraConfig struct {
	// URL is the API root, for example https://blockstream.info/api.
	URL string

	// Chain defines a Bitcoin network by its parameters.
	Chain *chaincfg.Params

	// HTTPClient is used for all requests. http.DefaultClient is used
	// when nil.
	HTTPClient *http.Client

	// Timeout overrides DefaultEsploraTimeout.
	Timeout time.Duration
}

// validate checks the required config options are set.
func (e *EsploraConfig) validate() error {
	if e == nil {
		return errors.New("missing esplora config")
	}

	if e.URL == "" {
		return errors.New("missing esplora url")
	}

	if e.Chain == nil {
		return errors.New("missing chain params config")
	}

	return nil
}

// EsploraClient is a chain backend using the REST API of an Esplora
// (Blockstream/mempool.space style) indexer.
type EsploraClient struct {
	baseURL     string
	client      *http.Client
	chainParams *chaincfg.Params
	timeout     time.Duration
}

// A compile-time check to ensure that EsploraClient satisfies the
// chain.Interface interface.
var _ Interface = (*EsploraClient)(nil)

// NewEsploraClient creates a new Esplora backend. No request is made until
// Start is called.
func NewEsploraClient(cfg *EsploraConfig) (*EsploraClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultEsploraTimeout
	}

	return &EsploraClient{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		client:      client,
		chainParams: cfg.Chain,
		timeout:     timeout,
	}, nil
}

// BackEnd returns the name of the driver.
func (e *EsploraClient) BackEnd() string {
	return BackEndEsplora
}

// Start checks that the indexer serves the configured network by comparing
// its genesis block hash.
func (e *EsploraClient) Start(ctx context.Context) error {
	body, err := e.do(ctx, http.MethodGet, "/block-height/0", nil)
	if err != nil {
		return err
	}

	genesis := strings.TrimSpace(string(body))
	if genesis != e.chainParams.GenesisHash.String() {
		return fmt.Errorf("%w: indexer genesis %s does not match %v",
			ErrExternalCall, genesis, e.chainParams.Name)
	}

	log.Infof("Using Esplora indexer at %s for %v", e.baseURL,
		e.chainParams.Name)

	return nil
}

// Stop releases idle connections.
func (e *EsploraClient) Stop() {
	e.client.CloseIdleConnections()
}

// BestHeight returns the height of the indexer's chain tip.
func (e *EsploraClient) BestHeight(ctx context.Context) (int32, error) {
	body, err := e.do(ctx, http.MethodGet, "/blocks/tip/height", nil)
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad tip height %q: %v",
			ErrExternalCall, body, err)
	}

	return int32(height), nil
}

// esploraUtxo is an element of the /address/:address/utxo response.
type esploraUtxo struct {
	TxID   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Value  int64  `json:"value"`
	Status struct {
		Confirmed   bool  `json:"confirmed"`
		BlockHeight int32 `json:"block_height"`
	} `json:"status"`
}

// ListUnspent returns the outputs paying to addr in the order reported by
// the indexer. Mempool outputs are included when minConf is zero.
func (e *EsploraClient) ListUnspent(ctx context.Context, addr btcutil.Address,
	minConf int32) ([]Unspent, error) {

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported address %v: %v",
			ErrExternalCall, addr, err)
	}

	tip, err := e.BestHeight(ctx)
	if err != nil {
		return nil, err
	}

	body, err := e.do(ctx, http.MethodGet,
		"/address/"+addr.EncodeAddress()+"/utxo", nil)
	if err != nil {
		return nil, err
	}

	var utxos []esploraUtxo
	if err := jsonCodec.Unmarshal(body, &utxos); err != nil {
		return nil, fmt.Errorf("%w: decode utxos: %v", ErrExternalCall,
			err)
	}

	unspent := make([]Unspent, 0, len(utxos))
	for _, u := range utxos {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad txid %q: %v",
				ErrExternalCall, u.TxID, err)
		}

		var height int32
		if u.Status.Confirmed {
			height = u.Status.BlockHeight
		}

		unspent = append(unspent, Unspent{
			OutPoint:      *wire.NewOutPoint(hash, u.Vout),
			Amount:        btcutil.Amount(u.Value),
			PkScript:      pkScript,
			Height:        height,
			Confirmations: confirmations(tip, height),
		})
	}

	log.Debugf("Esplora reported %d outputs for %v at height %d",
		len(unspent), addr, tip)

	return filterMinConf(unspent, minConf), nil
}

// Balance sums the outputs returned by ListUnspent.
func (e *EsploraClient) Balance(ctx context.Context, addr btcutil.Address,
	minConf int32) (btcutil.Amount, error) {

	unspent, err := e.ListUnspent(ctx, addr, minConf)
	if err != nil {
		return 0, err
	}

	return sumUnspent(unspent), nil
}

// SendRawTransaction posts the hex encoded transaction to the indexer.
func (e *EsploraClient) SendRawTransaction(ctx context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}

	body, err := e.do(ctx, http.MethodPost, "/tx",
		[]byte(hex.EncodeToString(buf.Bytes())))
	var statusErr *httpStatusError
	switch {
	case errors.As(err, &statusErr):
		return nil, mapRejectErr(statusErr)

	case err != nil:
		return nil, err
	}

	txid, err := chainhash.NewHashFromStr(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: bad txid in response %q: %v",
			ErrExternalCall, body, err)
	}

	return txid, nil
}

// do performs a request against the API and returns the body of a 200
// response. Any other outcome is returned as an error wrapping
// ErrExternalCall.
func (e *EsploraClient) do(ctx context.Context, method, path string,
	body []byte) ([]byte, error) {

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	url := e.baseURL + path

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalCall, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalCall, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrExternalCall, url,
			err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", ErrExternalCall,
			&httpStatusError{
				url:    url,
				status: resp.StatusCode,
				body:   strings.TrimSpace(string(respBody)),
			})
	}

	return respBody, nil
}

// httpStatusError describes a non-200 response.
type httpStatusError struct {
	url    string
	status int
	body   string
}

// Error implements the error interface.
func (e *httpStatusError) Error() string {
	return fmt.Sprintf("request %s returned status %d: %s", e.url,
		e.status, e.body)
}

// decodeHex decodes a hex string returned by a backend.
func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex %q: %v", ErrExternalCall, s,
			err)
	}

	return b, nil
}
