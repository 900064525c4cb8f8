// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "github.com/btcsuite/btclog"

// log is the logger of the backend clients. It is disabled until UseLogger
// is called.
var log = btclog.Disabled

// UseLogger sets the logger used by the chain package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
