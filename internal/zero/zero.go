// Copyright (c) 2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zero contains functions to clear secrets held in memory.
package zero

// Bytes sets all bytes in the passed slice to zero.  This is used to
// explicitly clear private key material, such as a WIF string read from a
// terminal, from memory.
func Bytes(b []byte) {
	clear(b)
}
