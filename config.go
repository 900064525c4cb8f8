// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcsend/chain"
	"github.com/btcsuite/btcsend/internal/cfgutil"
	"github.com/btcsuite/btcsend/netparams"
	"github.com/btcsuite/btcsend/wallet"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "btcsend.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "btcsend.log"
	defaultBackend        = chain.BackEndRPC
	defaultMinConf        = 1
	defaultTimeout        = time.Minute
)

var (
	btcsendHomeDir    = btcutil.AppDataDir("btcsend", false)
	defaultConfigFile = filepath.Join(btcsendHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(btcsendHomeDir, defaultLogDirname)
)

type config struct {
	// General application behavior
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	LogDir      string `long:"logdir" description:"Directory to log output."`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	// Network selection
	TestNet3 bool `long:"testnet" description:"Use the test Bitcoin network (version 3) (default mainnet)"`
	TestNet4 bool `long:"testnet4" description:"Use the test Bitcoin network (version 4)"`
	RegTest  bool `long:"regtest" description:"Use the regression test network"`
	SimNet   bool `long:"simnet" description:"Use the simulation test network"`
	SigNet   bool `long:"signet" description:"Use the signet test network"`

	// Chain backend options
	Backend       string                  `long:"backend" choice:"rpc" choice:"esplora" description:"Where to look up outputs and publish transactions"`
	RPCConnect    string                  `short:"c" long:"rpcconnect" description:"Hostname/IP and port of the bitcoind RPC server (default localhost with the network's RPC port)"`
	RPCUser       string                  `short:"u" long:"rpcuser" description:"Username for bitcoind RPC authentication"`
	RPCPass       string                  `short:"P" long:"rpcpass" default-mask:"-" description:"Password for bitcoind RPC authentication"`
	RPCTLS        bool                    `long:"rpctls" description:"Connect to the RPC server over TLS"`
	RPCCert       string                  `long:"rpccert" description:"File containing the RPC server certificate, required with --rpctls"`
	EsploraURL    *cfgutil.ExplicitString `long:"esploraurl" description:"Esplora API root (default depends on the network)"`
	Timeout       time.Duration           `long:"timeout" description:"Timeout for every backend request"`
	MinConf       int32                   `long:"minconf" description:"Confirmations an output needs before it is spent"`
	Fee           *cfgutil.AmountFlag     `long:"fee" description:"Absolute fee paid by every send, in BTC or with a sat suffix"`
	StrictSelect  bool                    `long:"strictselect" description:"Fail a send unless the selected outputs cover amount plus fee (default true)"`
	LiteralSelect bool                    `long:"literalselect" description:"Only require the selected outputs to cover the amount, paying whatever is left as fee"`

	// Key options
	WIF string `long:"wif" default-mask:"-" description:"WIF encoded private key of the wallet, prompted for when not set"`

	// Actions
	ShowAddress bool                  `long:"showaddress" description:"Print the wallet address"`
	Balance     bool                  `long:"balance" description:"Print the wallet balance"`
	ListUnspent bool                  `long:"listunspent" description:"Print the spendable outputs of the wallet"`
	Sends       []cfgutil.PaymentFlag `long:"send" description:"Pay address:amount, may be repeated; sends run in order"`
	DryRun      bool                  `long:"dryrun" description:"Build and sign sends without publishing them"`
	Yes         bool                  `short:"y" long:"yes" description:"Do not ask for confirmation before publishing"`

	activeNet *netparams.Params
}

// cleanAndExpandPath expands environement variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(btcsendHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but they variables can still be expanded via POSIX-style
	// $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		subsysID, logLevel, ok := strings.Cut(logLevelPair, "=")
		if !ok {
			str := "the specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsytems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// defaultConfig returns a config with every option set to its default.
func defaultConfig() config {
	return config{
		ConfigFile:   defaultConfigFile,
		DebugLevel:   defaultLogLevel,
		LogDir:       defaultLogDir,
		Backend:      defaultBackend,
		EsploraURL:   cfgutil.NewExplicitString(""),
		Timeout:      defaultTimeout,
		MinConf:      defaultMinConf,
		Fee:          cfgutil.NewAmountFlag(wallet.DefaultFee),
		StrictSelect: true,
	}
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in btcsend functioning properly without any config
// settings while still allowing the user to override settings with config files
// and command line options.  Command line options always take precedence.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := defaultConfig()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	_, err := preParser.Parse()
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			preParser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version())
		os.Exit(0)
	}

	// Load additional config from file.
	var configFileError error
	parser := flags.NewParser(&cfg, flags.Default)
	configFilePath := cleanAndExpandPath(preCfg.ConfigFile)
	exists, err := cfgutil.FileExists(configFilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	if exists {
		err = flags.NewIniParser(parser).ParseFile(configFilePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
			return nil, nil, err
		}
	} else if preCfg.ConfigFile != defaultConfigFile {
		configFileError = fmt.Errorf("config file %s not found",
			configFilePath)
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	// Append the network type to the log directory so it is "namespaced"
	// per network.
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.activeNet.Params.Name)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
	if err := initLogRotator(logFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	setLogLevels(defaultLogLevel)

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("loadConfig: %w", err)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Warn about missing config file after the final command line parse
	// succeeds.  This prevents the warning on help messages and invalid
	// options.
	if configFileError != nil {
		log.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}

// validate checks the options for consistency and fills in the defaults that
// depend on the selected network.
func (cfg *config) validate() error {
	// Choose the active network params based on the selected network.
	// Multiple networks can't be selected simultaneously.
	cfg.activeNet = &netparams.MainNetParams
	numNets := 0
	for _, n := range []struct {
		set    bool
		params *netparams.Params
	}{
		{cfg.TestNet3, &netparams.TestNet3Params},
		{cfg.TestNet4, &netparams.TestNet4Params},
		{cfg.RegTest, &netparams.RegTestParams},
		{cfg.SimNet, &netparams.SimNetParams},
		{cfg.SigNet, &netparams.SigNetParams},
	} {
		if n.set {
			cfg.activeNet = n.params
			numNets++
		}
	}
	if numNets > 1 {
		return errors.New("the testnet, testnet4, regtest, simnet and " +
			"signet params can't be used together -- choose one")
	}

	if cfg.MinConf < 0 {
		return errors.New("minconf must be non-negative")
	}
	if cfg.Fee.Amount <= 0 || cfg.Fee.Amount > btcutil.MaxSatoshi {
		return fmt.Errorf("fee %v must be positive and at most %v",
			cfg.Fee.Amount, btcutil.Amount(btcutil.MaxSatoshi))
	}
	if cfg.LiteralSelect {
		cfg.StrictSelect = false
	}

	switch cfg.Backend {
	case chain.BackEndRPC:
		if cfg.RPCConnect == "" {
			cfg.RPCConnect = "localhost"
		}
		rpcConnect, err := cfgutil.NormalizeAddress(
			cfg.RPCConnect, cfg.activeNet.RPCClientPort,
		)
		if err != nil {
			return fmt.Errorf("invalid rpcconnect network address "+
				"%v: %w", cfg.RPCConnect, err)
		}
		cfg.RPCConnect = rpcConnect

		if cfg.RPCTLS {
			if cfg.RPCCert == "" {
				return errors.New("rpccert is required with " +
					"rpctls")
			}
			cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)
			exists, err := cfgutil.FileExists(cfg.RPCCert)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("RPC certificate file %s not "+
					"found", cfg.RPCCert)
			}
		}

	case chain.BackEndEsplora:
		if !cfg.EsploraURL.ExplicitlySet() {
			cfg.EsploraURL.Value = cfg.activeNet.EsploraURL
		}
		if cfg.EsploraURL.Value == "" {
			return fmt.Errorf("esploraurl is required on %v",
				cfg.activeNet.Name)
		}

	default:
		return fmt.Errorf("unknown backend %q, choose one of %v",
			cfg.Backend, chain.BackEnds())
	}

	for _, p := range cfg.Sends {
		if p.Amount <= cfg.Fee.Amount {
			return fmt.Errorf("send of %v to %s does not cover the "+
				"fee of %v", p.Amount, p.Address, cfg.Fee.Amount)
		}
	}

	return nil
}
