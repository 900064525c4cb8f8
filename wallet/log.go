// Copyright (c) 2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import "github.com/btcsuite/btclog"

// log is the package logger. Nothing is written until UseLogger is called.
var log = btclog.Disabled

// UseLogger sets the logger used by the wallet package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// logClosure defers building a log message until the level is enabled.
type logClosure func() string

func (c logClosure) String() string {
	return c()
}

func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}

func pickNoun(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
