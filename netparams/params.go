// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netparams

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Params is used to group parameters for various networks such as the main
// network and test networks.
type Params struct {
	*chaincfg.Params

	// RPCClientPort is the default JSON-RPC port of a bitcoind node on
	// the network.
	RPCClientPort string

	// EsploraURL is the default Esplora API root for the network. It is
	// empty if there is no public instance.
	EsploraURL string
}

// MainNetParams contains parameters specific running btcsend on the main
// network (wire.MainNet).
var MainNetParams = Params{
	Params:        &chaincfg.MainNetParams,
	RPCClientPort: "8332",
	EsploraURL:    "https://blockstream.info/api",
}

// TestNet3Params contains parameters specific running btcsend on the test
// network (version 3) (wire.TestNet3).
var TestNet3Params = Params{
	Params:        &chaincfg.TestNet3Params,
	RPCClientPort: "18332",
	EsploraURL:    "https://blockstream.info/testnet/api",
}

// TestNet4Params contains parameters specific running btcsend on the test
// network (version 4).
var TestNet4Params = Params{
	Params:        &TestNet4ChainParams,
	RPCClientPort: "48332",
	EsploraURL:    "https://mempool.space/testnet4/api",
}

// RegTestParams contains parameters specific to the regression test network
// (wire.TestNet). The Esplora URL is the default of a local electrs
// instance.
var RegTestParams = Params{
	Params:        &chaincfg.RegressionNetParams,
	RPCClientPort: "18443",
	EsploraURL:    "http://127.0.0.1:3002",
}

// SimNetParams contains parameters specific to the simulation test network
// (wire.SimNet).
var SimNetParams = Params{
	Params:        &chaincfg.SimNetParams,
	RPCClientPort: "18556",
}

// SigNetParams contains parameters specific to the default signet
// (wire.SigNet).
var SigNetParams = Params{
	Params:        &chaincfg.SigNetParams,
	RPCClientPort: "38332",
	EsploraURL:    "https://mempool.space/signet/api",
}

// ByName returns the parameters of the network with the given chaincfg
// name.
func ByName(name string) (*Params, error) {
	for _, p := range []*Params{
		&MainNetParams, &TestNet3Params, &TestNet4Params,
		&RegTestParams, &SimNetParams, &SigNetParams,
	} {
		if p.Name == name {
			return p, nil
		}
	}

	return nil, fmt.Errorf("unknown network %q", name)
}
