// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const testEsploraURL = "https://esplora.test/api"

const testUtxoResponse = `[
  {"txid": "1111111111111111111111111111111111111111111111111111111111111111",
   "vout": 0, "value": 50000,
   "status": {"confirmed": true, "block_height": 100}},
  {"txid": "2222222222222222222222222222222222222222222222222222222222222222",
   "vout": 3, "value": 60000,
   "status": {"confirmed": true, "block_height": 110}},
  {"txid": "3333333333333333333333333333333333333333333333333333333333333333",
   "vout": 1, "value": 70000,
   "status": {"confirmed": false}}
]`

// newTestEsplora returns a regtest Esplora client whose requests are served
// by the returned mock transport.
func newTestEsplora(t *testing.T) (*EsploraClient, *httpmock.MockTransport) {
	t.Helper()

	mt := httpmock.NewMockTransport()
	c, err := NewEsploraClient(&EsploraConfig{
		URL:        testEsploraURL + "/",
		Chain:      &chaincfg.RegressionNetParams,
		HTTPClient: &http.Client{Transport: mt},
	})
	require.NoError(t, err)

	return c, mt
}

// TestNewEsploraClient checks the config validation.
func TestNewEsploraClient(t *testing.T) {
	t.Parallel()

	_, err := NewEsploraClient(nil)
	require.Error(t, err)

	_, err = NewEsploraClient(&EsploraConfig{
		Chain: &chaincfg.RegressionNetParams,
	})
	require.Error(t, err)

	_, err = NewEsploraClient(&EsploraConfig{URL: testEsploraURL})
	require.Error(t, err)

	c, err := NewEsploraClient(&EsploraConfig{
		URL:   testEsploraURL + "/",
		Chain: &chaincfg.RegressionNetParams,
	})
	require.NoError(t, err)
	require.Equal(t, testEsploraURL, c.baseURL)
	require.Equal(t, DefaultEsploraTimeout, c.timeout)
	require.Equal(t, BackEndEsplora, c.BackEnd())
}

// TestEsploraStart checks the network check done on start.
func TestEsploraStart(t *testing.T) {
	t.Parallel()

	genesis := chaincfg.RegressionNetParams.GenesisHash.String()

	testCases := []struct {
		name      string
		responder httpmock.Responder
		wantErr   bool
	}{{
		name:      "matching genesis",
		responder: httpmock.NewStringResponder(200, genesis+"\n"),
	}, {
		name: "other network",
		responder: httpmock.NewStringResponder(
			200, chaincfg.MainNetParams.GenesisHash.String(),
		),
		wantErr: true,
	}, {
		name:      "server error",
		responder: httpmock.NewStringResponder(500, "oops"),
		wantErr:   true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, mt := newTestEsplora(t)
			mt.RegisterResponder(
				http.MethodGet, testEsploraURL+"/block-height/0",
				tc.responder,
			)

			err := c.Start(context.Background())
			if tc.wantErr {
				require.ErrorIs(t, err, ErrExternalCall)
				return
			}
			require.NoError(t, err)
		})
	}
}

// TestEsploraListUnspent checks the conversion of the utxo endpoint and the
// confirmation filter.
func TestEsploraListUnspent(t *testing.T) {
	t.Parallel()

	addr, pkScript := testAddr(t)

	testCases := []struct {
		name       string
		minConf    int32
		wantVouts  []uint32
		wantConfs  []int32
		wantAmount btcutil.Amount
	}{{
		name:       "mempool included",
		minConf:    0,
		wantVouts:  []uint32{0, 3, 1},
		wantConfs:  []int32{11, 1, 0},
		wantAmount: 180_000,
	}, {
		name:       "confirmed only",
		minConf:    1,
		wantVouts:  []uint32{0, 3},
		wantConfs:  []int32{11, 1},
		wantAmount: 110_000,
	}, {
		name:       "deeply confirmed",
		minConf:    6,
		wantVouts:  []uint32{0},
		wantConfs:  []int32{11},
		wantAmount: 50_000,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, mt := newTestEsplora(t)
			mt.RegisterResponder(
				http.MethodGet, testEsploraURL+"/blocks/tip/height",
				httpmock.NewStringResponder(200, "110"),
			)
			mt.RegisterResponder(
				http.MethodGet, testEsploraURL+"/address/"+
					addr.EncodeAddress()+"/utxo",
				httpmock.NewStringResponder(200, testUtxoResponse),
			)

			ctx := context.Background()
			unspent, err := c.ListUnspent(ctx, addr, tc.minConf)
			require.NoError(t, err)
			require.Len(t, unspent, len(tc.wantVouts))
			for i, u := range unspent {
				require.Equal(t, tc.wantVouts[i], u.OutPoint.Index)
				require.Equal(t, tc.wantConfs[i], u.Confirmations)
				require.Equal(t, pkScript, u.PkScript)
			}

			bal, err := c.Balance(ctx, addr, tc.minConf)
			require.NoError(t, err)
			require.Equal(t, tc.wantAmount, bal)
		})
	}
}

// TestEsploraListUnspentErrors checks that malformed responses are reported
// as backend failures.
func TestEsploraListUnspentErrors(t *testing.T) {
	t.Parallel()

	addr, _ := testAddr(t)

	testCases := []struct {
		name   string
		tip    string
		status int
		body   string
	}{{
		name:   "bad tip",
		tip:    "tip",
		status: 200,
		body:   "[]",
	}, {
		name:   "bad json",
		tip:    "1",
		status: 200,
		body:   "{",
	}, {
		name:   "bad txid",
		tip:    "1",
		status: 200,
		body:   `[{"txid": "zz", "vout": 0, "value": 1}]`,
	}, {
		name:   "not found",
		tip:    "1",
		status: 404,
		body:   "not found",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, mt := newTestEsplora(t)
			mt.RegisterResponder(
				http.MethodGet, testEsploraURL+"/blocks/tip/height",
				httpmock.NewStringResponder(200, tc.tip),
			)
			mt.RegisterResponder(
				http.MethodGet, testEsploraURL+"/address/"+
					addr.EncodeAddress()+"/utxo",
				httpmock.NewStringResponder(tc.status, tc.body),
			)

			_, err := c.ListUnspent(context.Background(), addr, 0)
			require.ErrorIs(t, err, ErrExternalCall)
		})
	}
}

// opaqueAddr is an address type without an output script.
type opaqueAddr struct{}

func (opaqueAddr) String() string                 { return "opaque" }
func (opaqueAddr) EncodeAddress() string          { return "opaque" }
func (opaqueAddr) ScriptAddress() []byte          { return nil }
func (opaqueAddr) IsForNet(*chaincfg.Params) bool { return true }

// TestEsploraListUnspentUnsupportedAddress checks that an address without an
// output script fails as a backend error before any request is made.
func TestEsploraListUnspentUnsupportedAddress(t *testing.T) {
	t.Parallel()

	c, mt := newTestEsplora(t)

	_, err := c.ListUnspent(context.Background(), opaqueAddr{}, 0)
	require.ErrorIs(t, err, ErrExternalCall)
	require.Zero(t, mt.GetTotalCallCount())
}

// TestEsploraSendRawTransaction checks that transactions are posted as hex
// and that rejections are classified.
func TestEsploraSendRawTransaction(t *testing.T) {
	t.Parallel()

	_, pkScript := testAddr(t)
	tx := testTx(pkScript)

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	wantBody := hex.EncodeToString(buf.Bytes())

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		c, mt := newTestEsplora(t)
		mt.RegisterResponder(
			http.MethodPost, testEsploraURL+"/tx",
			func(req *http.Request) (*http.Response, error) {
				body, err := io.ReadAll(req.Body)
				if err != nil {
					return nil, err
				}
				if string(body) != wantBody {
					return httpmock.NewStringResponse(
						400, "unexpected body",
					), nil
				}

				return httpmock.NewStringResponse(
					200, tx.TxHash().String(),
				), nil
			},
		)

		txid, err := c.SendRawTransaction(context.Background(), tx)
		require.NoError(t, err)
		require.Equal(t, tx.TxHash(), *txid)
		require.Equal(t, 1, mt.GetTotalCallCount())
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		c, mt := newTestEsplora(t)
		mt.RegisterResponder(
			http.MethodPost, testEsploraURL+"/tx",
			httpmock.NewStringResponder(400, "sendrawtransaction "+
				`RPC error: {"code":-26,"message":`+
				`"txn-mempool-conflict"}`),
		)

		_, err := c.SendRawTransaction(context.Background(), tx)
		require.ErrorIs(t, err, ErrExternalCall)
		require.ErrorIs(t, err, ErrMempoolConflict)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		c, mt := newTestEsplora(t)
		mt.RegisterResponder(
			http.MethodPost, testEsploraURL+"/tx",
			httpmock.NewErrorResponder(io.ErrUnexpectedEOF),
		)

		_, err := c.SendRawTransaction(context.Background(), tx)
		require.ErrorIs(t, err, ErrExternalCall)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

// TestEsploraCanceled checks that a canceled context aborts the request.
func TestEsploraCanceled(t *testing.T) {
	t.Parallel()

	c, mt := newTestEsplora(t)
	mt.RegisterResponder(
		http.MethodGet, testEsploraURL+"/blocks/tip/height",
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.BestHeight(ctx)
	require.ErrorIs(t, err, ErrExternalCall)
	require.ErrorIs(t, err, context.Canceled)
}
