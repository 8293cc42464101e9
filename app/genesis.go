package app

import (
	"encoding/json"
	"io/ioutil"
	"regexp"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/x/cash"
	"github.com/iov-one/htlc/x/sigs"
)

var isTicker = regexp.MustCompile(`^[A-Z0-9]{3,8}$`).MatchString

// Genesis file format. It names the chain and lists the balances available
// before the first call.
type Genesis struct {
	ChainID  string           `json:"chain_id"`
	Balances []GenesisBalance `json:"balances"`
}

// GenesisBalance issues an amount of an asset to an owner.
type GenesisBalance struct {
	Owner  htlc.Address `json:"owner"`
	Ticker string       `json:"ticker"`
	Amount coin.Amount  `json:"amount"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Save writes the genesis as indented JSON.
func (g *Genesis) Save(filePath string) error {
	raw, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(filePath, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrInput, "write genesis file: %s", err)
	}
	return nil
}

// Validate checks the chain id and that every balance is positive.
func (g *Genesis) Validate() error {
	if !sigs.IsValidChainID(g.ChainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %q", g.ChainID)
	}
	for i, b := range g.Balances {
		if err := b.Owner.Validate(); err != nil {
			return errors.Wrapf(err, "balance %d: owner", i)
		}
		if !isTicker(b.Ticker) {
			return errors.Wrapf(errors.ErrInput, "balance %d: ticker %q", i, b.Ticker)
		}
		if !b.Amount.IsPositive() {
			return errors.Wrapf(errors.ErrInvalidAmount, "balance %d: %s", i, b.Amount)
		}
	}
	return nil
}

// initState stores the chain id and issues all balances.
func (g *Genesis) initState(db htlc.KVStore, bank *cash.Controller) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := saveChainID(db, g.ChainID); err != nil {
		return err
	}
	for i, b := range g.Balances {
		if err := bank.Issue(db, cash.AssetAddress(b.Ticker), b.Owner, b.Amount); err != nil {
			return errors.Wrapf(err, "balance %d", i)
		}
	}
	return nil
}
