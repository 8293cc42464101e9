package cash

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
)

// Wallet is the balance of a single asset held by an owner.
type Wallet struct {
	Asset  htlc.Address
	Owner  htlc.Address
	Amount coin.Amount
}

var _ orm.Model = (*Wallet)(nil)

// Validate ensures the wallet is not negative and refers to valid
// addresses.
func (w *Wallet) Validate() error {
	if err := w.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if err := w.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if w.Amount.IsNegative() {
		return errors.Wrap(errors.ErrModel, "negative balance")
	}
	return nil
}

// Marshal encodes the wallet in the wire format of cash.Wallet.
func (w *Wallet) Marshal() ([]byte, error) {
	e := orm.NewEncoder()
	e.Bytes(1, w.Asset)
	e.Bytes(2, w.Owner)
	e.Bytes(3, w.Amount.Bytes())
	return e.Marshal()
}

// Unmarshal decodes data created by Marshal.
func (w *Wallet) Unmarshal(raw []byte) error {
	fields, err := orm.DecodeFields(raw)
	if err != nil {
		return err
	}
	*w = Wallet{}
	for _, f := range fields {
		switch f.Num {
		case 1:
			w.Asset = htlc.Address(f.Bytes)
		case 2:
			w.Owner = htlc.Address(f.Bytes)
		case 3:
			if w.Amount, err = coin.AmountFromBytes(f.Bytes); err != nil {
				return errors.Wrap(errors.ErrModel, err.Error())
			}
		}
	}
	return nil
}

// walletKey is the primary key of a wallet: the asset followed by the owner.
func walletKey(asset, owner htlc.Address) []byte {
	key := make([]byte, 0, len(asset)+len(owner))
	key = append(key, asset...)
	return append(key, owner...)
}

// NewBucket returns the bucket of wallets, indexed by owner.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("cash", &Wallet{},
		orm.WithIndex("owner", func(m orm.Model) ([]byte, error) {
			w, ok := m.(*Wallet)
			if !ok {
				return nil, errors.WithType(errors.ErrType, m)
			}
			return w.Owner, nil
		}),
	)
}

// AssetAddress returns the address of an asset known by its ticker.
func AssetAddress(ticker string) htlc.Address {
	return htlc.NewCondition("cash", "asset", []byte(ticker)).Address()
}
