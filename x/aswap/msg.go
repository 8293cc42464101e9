package aswap

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/errors"
)

// CreateMsg requests a new escrow funded by the sender.
type CreateMsg struct {
	Sender        htlc.Address  `json:"sender"`
	Receiver      htlc.Address  `json:"receiver"`
	Amount        coin.Amount   `json:"amount"`
	Asset         htlc.Address  `json:"asset"`
	Hashlock      []byte        `json:"hashlock"`
	Deadline      htlc.UnixTime `json:"deadline"`
	SafetyDeposit coin.Amount   `json:"safety_deposit"`
}

// Path returns the route of this message.
func (CreateMsg) Path() string { return "htlc/create" }

// Validate makes sure the message is well formed. Amounts and the deadline
// are checked by the engine, after authorization.
func (m *CreateMsg) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrInput, "nil message")
	}
	if err := m.Sender.Validate(); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := m.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := m.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if len(m.Hashlock) != HashlockSize {
		return errors.Wrapf(errors.ErrInput, "hashlock has to be exactly %d bytes", HashlockSize)
	}
	return nil
}

// WithdrawMsg claims the escrow amount for the receiver by revealing the
// secret.
type WithdrawMsg struct {
	ID     []byte `json:"id"`
	Secret []byte `json:"secret"`
}

func (WithdrawMsg) Path() string { return "htlc/withdraw" }

// RefundMsg returns an expired escrow to its sender.
type RefundMsg struct {
	ID []byte `json:"id"`
}

func (RefundMsg) Path() string { return "htlc/refund" }
