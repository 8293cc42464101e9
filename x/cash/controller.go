package cash

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
)

// Controller moves and issues value kept in wallets.
type Controller struct {
	bucket orm.ModelBucket
}

// NewController returns a controller using the default wallet bucket.
func NewController() *Controller {
	return &Controller{bucket: NewBucket()}
}

// Balance returns how much of the asset the owner holds. An unknown wallet
// holds zero.
func (c *Controller) Balance(db htlc.ReadOnlyKVStore, asset, owner htlc.Address) (coin.Amount, error) {
	w, err := c.load(db, asset, owner)
	if err != nil {
		return coin.Amount{}, err
	}
	return w.Amount, nil
}

// Balances returns all non empty wallets of the owner ordered by asset.
func (c *Controller) Balances(db htlc.ReadOnlyKVStore, owner htlc.Address) ([]Wallet, error) {
	var wallets []Wallet
	if _, err := c.bucket.ByIndex(db, "owner", owner, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// MoveCoins moves the given amount of the asset from src to dst.
// If src doesn't have sufficient funds, it fails with
// ErrInsufficientBalance. Moving zero is a no-op.
func (c *Controller) MoveCoins(db htlc.KVStore, asset, src, dst htlc.Address, amount coin.Amount) error {
	if amount.IsNegative() {
		return errors.Wrapf(errors.ErrInvalidAmount, "negative transfer: %s", amount)
	}
	for _, a := range []htlc.Address{asset, src, dst} {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if amount.IsZero() || src.Equals(dst) {
		return nil
	}

	sender, err := c.load(db, asset, src)
	if err != nil {
		return err
	}
	if sender.Amount.Cmp(amount) < 0 {
		return errors.Wrapf(errors.ErrInsufficientBalance, "%s has %s, needs %s", src, sender.Amount, amount)
	}
	recipient, err := c.load(db, asset, dst)
	if err != nil {
		return err
	}

	if sender.Amount, err = sender.Amount.Sub(amount); err != nil {
		return err
	}
	if recipient.Amount, err = recipient.Amount.Add(amount); err != nil {
		return err
	}
	if err := c.save(db, sender); err != nil {
		return err
	}
	return c.save(db, recipient)
}

// Issue adds the given amount of the asset to the owner. Fails if it
// overflows the wallet. A negative amount burns value and fails if the
// wallet would go below zero.
func (c *Controller) Issue(db htlc.KVStore, asset, owner htlc.Address, amount coin.Amount) error {
	w, err := c.load(db, asset, owner)
	if err != nil {
		return err
	}
	if w.Amount, err = w.Amount.Add(amount); err != nil {
		return err
	}
	if w.Amount.IsNegative() {
		return errors.Wrapf(errors.ErrInsufficientBalance, "cannot burn %s from %s", amount.String(), owner)
	}
	return c.save(db, w)
}

func (c *Controller) load(db htlc.ReadOnlyKVStore, asset, owner htlc.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, walletKey(asset, owner), &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{Asset: asset, Owner: owner}, nil
	default:
		return nil, err
	}
}

// save removes emptied wallets, so that only owners of value are listed.
func (c *Controller) save(db htlc.KVStore, w *Wallet) error {
	key := walletKey(w.Asset, w.Owner)
	if w.Amount.IsZero() {
		err := c.bucket.Delete(db, key)
		if errors.ErrNotFound.Is(err) {
			return nil
		}
		return err
	}
	return c.bucket.Put(db, key, w)
}
