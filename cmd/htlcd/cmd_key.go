package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/htlc/crypto"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file containing the Stellar seed of the private key is
created. This command fails if the private key file already exists.
`)
		fl.PrintDefaults()
	}
	keyPathFl := flKey(fl)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	priv := crypto.GenPrivKeyEd25519()
	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fmt.Fprintln(fd, priv.String()); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	_, err = fmt.Fprintln(output, priv.PublicKey().Address())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address, its bech32 form and the public key of your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKey(fl)
		hrpFl     = fl.String("hrp", "htlc", "Human readable part of the bech32 address.")
	)
	fl.Parse(args)

	key, err := readKey(*keyPathFl)
	if err != nil {
		return err
	}
	pub := key.PublicKey()
	bech, err := pub.Address().Bech32(*hrpFl)
	if err != nil {
		return fmt.Errorf("cannot encode bech32: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s\n%s\n%s\n", pub.Address(), bech, pub)
	return err
}
