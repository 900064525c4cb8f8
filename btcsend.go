// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcsend/chain"
	"github.com/btcsuite/btcsend/internal/prompt"
	"github.com/btcsuite/btcsend/internal/zero"
	"github.com/btcsuite/btcsend/wallet"
)

var cfg *config

func main() {
	// Work around defer not working after os.Exit.
	if err := sendMain(); err != nil {
		os.Exit(1)
	}
}

// sendMain is a work-around main function that is required since deferred
// functions (such as log flushing) are not called with calls to os.Exit.
// Instead, main runs this function and checks for a non-nil error, at which
// point any defers have already run, and if the error is non-nil, the program
// can be exited with an error exit status.
func sendMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	log.Infof("Version %s", version())

	ctx := interruptContext()
	stdin := bufio.NewReader(os.Stdin)

	key, err := loadKey(stdin)
	if err != nil {
		log.Errorf("Unable to load key: %v", err)
		return err
	}
	defer key.PrivKey.Zero()

	chainClient, err := newChainClient()
	if err != nil {
		log.Errorf("Unable to create %s backend: %v", cfg.Backend, err)
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	err = chainClient.Start(startCtx)
	cancel()
	if err != nil {
		log.Errorf("Unable to start %s backend: %v", cfg.Backend, err)
		return err
	}
	defer chainClient.Stop()

	w, err := wallet.New(wallet.Config{
		Chain:       chainClient,
		Key:         key,
		ChainParams: cfg.activeNet.Params,
		Fee:         cfg.Fee.Amount,
		MinConf:     cfg.MinConf,
		Selector: &wallet.InOrderSelector{
			Strict: cfg.StrictSelect,
		},
	})
	if err != nil {
		log.Errorf("Unable to create wallet: %v", err)
		return err
	}

	if err := runActions(ctx, w, stdin); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("Shutdown complete")
			return err
		}
		log.Error(err)
		return err
	}

	return nil
}

// loadKey reads the wallet key from the config, or from stdin when none was
// configured.
func loadKey(stdin *bufio.Reader) (*btcutil.WIF, error) {
	if cfg.WIF != "" {
		return wallet.DecodeWIF(cfg.WIF, cfg.activeNet.Params)
	}

	secret, err := prompt.Secret(stdin, "Enter the WIF private key")
	if err != nil {
		return nil, err
	}
	defer zero.Bytes(secret)

	return wallet.DecodeWIF(string(secret), cfg.activeNet.Params)
}

// newChainClient creates the chain backend selected by the config.
func newChainClient() (chain.Interface, error) {
	switch cfg.Backend {
	case chain.BackEndRPC:
		conn := &rpcclient.ConnConfig{
			Host:       cfg.RPCConnect,
			User:       cfg.RPCUser,
			Pass:       cfg.RPCPass,
			DisableTLS: !cfg.RPCTLS,
		}
		if cfg.RPCTLS {
			certs, err := os.ReadFile(cfg.RPCCert)
			if err != nil {
				return nil, err
			}
			conn.Certificates = certs
		}

		return chain.NewRPCClientWithConfig(&chain.RPCClientConfig{
			Conn:  conn,
			Chain: cfg.activeNet.Params,
		})

	case chain.BackEndEsplora:
		return chain.NewEsploraClient(&chain.EsploraConfig{
			URL:        cfg.EsploraURL.Value,
			Chain:      cfg.activeNet.Params,
			HTTPClient: &http.Client{},
			Timeout:    cfg.Timeout,
		})
	}

	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// runActions performs the actions requested on the command line in a fixed
// order. Sends run one after the other, so later sends never spend the
// outputs of earlier ones.
func runActions(ctx context.Context, w *wallet.Wallet,
	stdin *bufio.Reader) error {

	noAction := !cfg.ShowAddress && !cfg.Balance && !cfg.ListUnspent &&
		len(cfg.Sends) == 0

	if cfg.ShowAddress || noAction {
		fmt.Println(w.Address())
	}

	if cfg.Balance || cfg.ListUnspent {
		tctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		info, err := w.Info(tctx)
		cancel()
		if err != nil {
			return err
		}

		if cfg.Balance {
			fmt.Printf("Balance: %v\n", info.Balance)
			fmt.Printf("Spendable: %v\n", info.Spendable)
		}
		if cfg.ListUnspent {
			for _, u := range info.Utxos {
				fmt.Printf("%v %v (%d confirmations)\n",
					u.OutPoint, u.Amount, u.Confirmations)
			}
			for _, op := range info.Pending {
				fmt.Printf("%v (spent by a pending send)\n", op)
			}
		}
	}

	for _, p := range cfg.Sends {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := runSend(ctx, w, stdin, p.Address, p.Amount); err != nil {
			return err
		}
	}

	return nil
}

// runSend performs a single payment, asking for confirmation before it is
// published unless --yes or --dryrun was given.
func runSend(ctx context.Context, w *wallet.Wallet, stdin *bufio.Reader,
	dest string, amount btcutil.Amount) error {

	if !cfg.DryRun && !cfg.Yes {
		msg := fmt.Sprintf("Send %v to %s paying a fee of %v?", amount,
			dest, w.Fee())
		ok, err := prompt.Confirm(stdin, os.Stdout, msg, "no")
		if err != nil {
			return err
		}
		if !ok {
			log.Infof("Skipping send of %v to %s", amount, dest)
			return nil
		}
	}

	tctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var (
		res *wallet.SendResult
		err error
	)
	if cfg.DryRun {
		res, err = w.SimulateSend(tctx, amount, dest)
	} else {
		res, err = w.Send(tctx, amount, dest)
	}
	if err != nil {
		return fmt.Errorf("send of %v to %s failed: %w", amount, dest,
			err)
	}

	fmt.Println(res.TxHash)
	if cfg.DryRun {
		var buf bytes.Buffer
		if err := res.Tx.Serialize(&buf); err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(buf.Bytes()))
	}

	return nil
}
