package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/htlc/app"
	"github.com/iov-one/htlc/coin"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Initialize a new ledger.

If the home directory does not contain a genesis file yet, one is created
that issues the given amount of an asset to the owner of the key. The genesis
is then applied to the store. A ledger can be initialized only once.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKey(fl)
		hostFl    = flHost(fl)
		chainFl   = fl.String("chain-id", "htlc-local", "Chain ID that all requests are signed for.")
		tickerFl  = fl.String("ticker", "IOV", "Ticker of the issued asset.")
		amount    coin.Amount
	)
	fl.Var(&amount, "amount", "Amount issued to the key owner.")
	fl.Parse(args)

	cfg, err := hostFl.config()
	if err != nil {
		return err
	}
	gen, err := app.LoadGenesis(cfg.GenesisFile())
	if err != nil {
		if _, statErr := os.Stat(cfg.GenesisFile()); !os.IsNotExist(statErr) {
			return err
		}
		if gen, err = newGenesis(*keyPathFl, *chainFl, *tickerFl, amount); err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.Home, 0700); err != nil {
			return fmt.Errorf("cannot create home directory: %s", err)
		}
		if err := gen.Save(cfg.GenesisFile()); err != nil {
			return err
		}
	}

	return hostFl.withHost(func(host *app.Host) error {
		info, err := host.InitChain(gen)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(output, "%s %d %X\n", gen.ChainID, info.Version, info.Hash)
		return err
	})
}

func newGenesis(keyPath, chainID, ticker string, amount coin.Amount) (*app.Genesis, error) {
	gen := &app.Genesis{ChainID: chainID}
	if !amount.IsZero() {
		key, err := readKey(keyPath)
		if err != nil {
			return nil, err
		}
		gen.Balances = append(gen.Balances, app.GenesisBalance{
			Owner:  key.PublicKey().Address(),
			Ticker: ticker,
			Amount: amount,
		})
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return gen, nil
}
