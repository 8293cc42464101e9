package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/app"
)

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print balances of an address. Without -owner the address of the key is used.
With -ticker only the balance of that asset is printed.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKey(fl)
		hostFl    = flHost(fl)
		tickerFl  = fl.String("ticker", "", "Ticker of the asset.")
		ownerFl   htlc.Address
	)
	fl.Var(&ownerFl, "owner", "Address of the owner.")
	fl.Parse(args)

	if len(ownerFl) == 0 {
		key, err := readKey(*keyPathFl)
		if err != nil {
			return err
		}
		ownerFl = key.PublicKey().Address()
	}

	return hostFl.withHost(func(host *app.Host) error {
		if *tickerFl != "" {
			amount, err := host.Balance(*tickerFl, ownerFl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(output, amount)
			return err
		}
		wallets, err := host.Balances(ownerFl)
		if err != nil {
			return err
		}
		for _, w := range wallets {
			if _, err := fmt.Fprintf(output, "%s %s\n", w.Asset, w.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}
