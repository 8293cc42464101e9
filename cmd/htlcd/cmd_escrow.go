package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/app"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/crypto"
	"github.com/iov-one/htlc/x/aswap"
	"github.com/iov-one/htlc/x/cash"
	"github.com/iov-one/htlc/x/sigs"
)

func cmdCreate(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an escrow funded by the owner of the key.

The escrow is locked by the sha256 hash of a secret. Provide either the
secret or its hash. When neither is given a random secret is generated and
printed. Only the receiver can withdraw the funds by revealing the secret
before the deadline. Once the deadline passed the sender can refund it.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl  = flKey(fl)
		hostFl     = flHost(fl)
		receiverFl htlc.Address
		amountFl   coin.Amount
		depositFl  coin.Amount
		tickerFl   = fl.String("ticker", "IOV", "Ticker of the escrowed asset.")
		secretFl   = flHex(fl, "secret", "Hex encoded secret.")
		hashlockFl = flHex(fl, "hashlock", "Hex encoded sha256 hash of the secret.")
		timeoutFl  = fl.Duration("timeout", time.Hour, "Time until the deadline.")
	)
	fl.Var(&receiverFl, "receiver", "Address of the receiver.")
	fl.Var(&amountFl, "amount", "Escrowed amount.")
	fl.Var(&depositFl, "deposit", "Safety deposit returned to the sender on either outcome.")
	fl.Parse(args)

	key, err := readKey(*keyPathFl)
	if err != nil {
		return err
	}

	secret, hashlock := *secretFl, *hashlockFl
	switch {
	case len(hashlock) != 0 && len(secret) != 0:
		return fmt.Errorf("use either secret or hashlock")
	case len(secret) != 0:
		hashlock = aswap.HashSecret(secret)
	case len(hashlock) == 0:
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("cannot generate secret: %s", err)
		}
		hashlock = aswap.HashSecret(secret)
	}

	msg := &aswap.CreateMsg{
		Sender:        key.PublicKey().Address(),
		Receiver:      receiverFl,
		Amount:        amountFl,
		Asset:         cash.AssetAddress(*tickerFl),
		Hashlock:      hashlock,
		Deadline:      htlc.AsUnixTime(time.Now().Add(*timeoutFl)),
		SafetyDeposit: depositFl,
	}
	return hostFl.withHost(func(host *app.Host) error {
		sig, err := signMsg(host, key, msg)
		if err != nil {
			return err
		}
		res, err := host.Create(context.Background(), msg, sig)
		if err != nil {
			return err
		}
		return writeJSON(output, struct {
			ID       string        `json:"id"`
			Secret   string        `json:"secret,omitempty"`
			Hashlock string        `json:"hashlock"`
			Deadline htlc.UnixTime `json:"deadline"`
			Height   int64         `json:"height"`
		}{
			ID:       hex.EncodeToString(res.ID),
			Secret:   hex.EncodeToString(secret),
			Hashlock: hex.EncodeToString(hashlock),
			Deadline: msg.Deadline,
			Height:   res.Height,
		})
	})
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Withdraw an escrow by revealing its secret. The key must belong to the
receiver.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKey(fl)
		hostFl    = flHost(fl)
		idFl      = flHex(fl, "id", "Hex encoded escrow ID.")
		secretFl  = flHex(fl, "secret", "Hex encoded secret.")
	)
	fl.Parse(args)

	key, err := readKey(*keyPathFl)
	if err != nil {
		return err
	}
	msg := &aswap.WithdrawMsg{ID: *idFl, Secret: *secretFl}
	return hostFl.withHost(func(host *app.Host) error {
		sig, err := signMsg(host, key, msg)
		if err != nil {
			return err
		}
		res, err := host.Withdraw(context.Background(), msg, sig)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(output, "withdrawn at height %d\n", res.Height)
		return err
	})
}

func cmdRefund(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Refund an expired escrow. The key must belong to the sender.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKey(fl)
		hostFl    = flHost(fl)
		idFl      = flHex(fl, "id", "Hex encoded escrow ID.")
	)
	fl.Parse(args)

	key, err := readKey(*keyPathFl)
	if err != nil {
		return err
	}
	msg := &aswap.RefundMsg{ID: *idFl}
	return hostFl.withHost(func(host *app.Host) error {
		sig, err := signMsg(host, key, msg)
		if err != nil {
			return err
		}
		res, err := host.Refund(context.Background(), msg, sig)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(output, "refunded at height %d\n", res.Height)
		return err
	})
}

func signMsg(host *app.Host, key crypto.PrivateKey, msg app.Msg) (*sigs.StdSignature, error) {
	seq, err := host.NextSequence(key.PublicKey())
	if err != nil {
		return nil, err
	}
	return app.SignMsg(key, msg, host.ChainID(), seq)
}

type escrowView struct {
	ID            string        `json:"id"`
	Sender        htlc.Address  `json:"sender"`
	Receiver      htlc.Address  `json:"receiver"`
	Amount        coin.Amount   `json:"amount"`
	Asset         htlc.Address  `json:"asset"`
	Hashlock      string        `json:"hashlock"`
	Deadline      htlc.UnixTime `json:"deadline"`
	CreatedAt     htlc.UnixTime `json:"created_at"`
	SafetyDeposit coin.Amount   `json:"safety_deposit"`
	Status        aswap.Status  `json:"status"`
	Locked        bool          `json:"locked"`
	Custody       coin.Amount   `json:"custody"`
}

func cmdShow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print an escrow together with the balance of its custody address.
`)
		fl.PrintDefaults()
	}
	var (
		hostFl = flHost(fl)
		idFl   = flHex(fl, "id", "Hex encoded escrow ID.")
	)
	fl.Parse(args)

	return hostFl.withHost(func(host *app.Host) error {
		e, err := host.Escrow(*idFl)
		if err != nil {
			return err
		}
		custody, err := host.Custody(*idFl)
		if err != nil {
			return err
		}
		return writeJSON(output, escrowView{
			ID:            hex.EncodeToString(e.ID),
			Sender:        e.Sender,
			Receiver:      e.Receiver,
			Amount:        e.Amount,
			Asset:         e.Asset,
			Hashlock:      hex.EncodeToString(e.Hashlock),
			Deadline:      e.Deadline,
			CreatedAt:     e.CreatedAt,
			SafetyDeposit: e.SafetyDeposit,
			Status:        e.Status,
			Locked:        e.Locked,
			Custody:       custody,
		})
	})
}

func cmdFind(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
List IDs of escrows locked by a hashlock, funded by a sender or payable to a
receiver. Exactly one of the filters must be given.
`)
		fl.PrintDefaults()
	}
	var (
		hostFl     = flHost(fl)
		hashlockFl = flHex(fl, "hashlock", "Hex encoded hashlock.")
		senderFl   htlc.Address
		receiverFl htlc.Address
	)
	fl.Var(&senderFl, "sender", "Address of the sender.")
	fl.Var(&receiverFl, "receiver", "Address of the receiver.")
	fl.Parse(args)

	var filters []string
	var index string
	var value []byte
	if len(*hashlockFl) != 0 {
		filters, index, value = append(filters, "hashlock"), "hashlock", *hashlockFl
	}
	if len(senderFl) != 0 {
		filters, index, value = append(filters, "sender"), "sender", senderFl
	}
	if len(receiverFl) != 0 {
		filters, index, value = append(filters, "receiver"), "receiver", receiverFl
	}
	if len(filters) != 1 {
		return fmt.Errorf("exactly one filter required, got %v", filters)
	}

	return hostFl.withHost(func(host *app.Host) error {
		ids, err := host.Find(index, value)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := fmt.Fprintln(output, hex.EncodeToString(id)); err != nil {
				return err
			}
		}
		return nil
	})
}
