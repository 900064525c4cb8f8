// Copyright (c) 2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"errors"
	"net"
)

// NormalizeAddress returns addr as host:port, appending defaultPort when addr
// has no port. IPv6 hosts are bracketed. An address that is invalid for any
// reason other than a missing port is rejected.
func NormalizeAddress(addr, defaultPort string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		return net.JoinHostPort(host, port), nil
	}

	var addrErr *net.AddrError
	if !errors.As(err, &addrErr) {
		return "", err
	}

	withPort := net.JoinHostPort(addr, defaultPort)
	if _, _, err2 := net.SplitHostPort(withPort); err2 != nil {
		return "", err
	}

	return withPort, nil
}
