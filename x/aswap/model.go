package aswap

import (
	"bytes"
	"encoding/json"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
)

// Status is the resolution state of an escrow.
type Status int32

const (
	StatusActive Status = iota + 1
	StatusWithdrawn
	StatusRefunded
)

var statusNames = map[Status]string{
	StatusActive:    "active",
	StatusWithdrawn: "withdrawn",
	StatusRefunded:  "refunded",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "invalid"
}

// Validate returns an error for an unknown status.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errors.Wrapf(errors.ErrModel, "invalid status %d", s)
	}
	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Escrow is the persisted state of a single escrow.
type Escrow struct {
	ID            []byte
	Sender        htlc.Address
	Receiver      htlc.Address
	Amount        coin.Amount
	Asset         htlc.Address
	Hashlock      []byte
	Deadline      htlc.UnixTime
	CreatedAt     htlc.UnixTime
	SafetyDeposit coin.Amount
	Status        Status
	Locked        bool
}

var _ orm.Model = (*Escrow)(nil)

// Validate ensures the escrow holds the invariants of a stored record.
func (e *Escrow) Validate() error {
	if len(e.ID) != IDSize {
		return errors.Wrapf(errors.ErrModel, "id must be %d bytes", IDSize)
	}
	if err := e.Sender.Validate(); err != nil {
		return errors.Wrap(err, "sender")
	}
	if err := e.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := e.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if len(e.Hashlock) != HashlockSize {
		return errors.Wrapf(errors.ErrModel, "hashlock must be %d bytes", HashlockSize)
	}
	if !e.Amount.IsPositive() {
		return errors.Wrap(errors.ErrModel, "amount must be positive")
	}
	if e.SafetyDeposit.IsNegative() {
		return errors.Wrap(errors.ErrModel, "negative safety deposit")
	}
	if e.Deadline <= e.CreatedAt {
		return errors.Wrap(errors.ErrModel, "deadline must be after creation")
	}
	return e.Status.Validate()
}

// Copy makes a new escrow sharing no memory with the original.
func (e *Escrow) Copy() *Escrow {
	cpy := *e
	cpy.ID = append([]byte(nil), e.ID...)
	cpy.Sender = e.Sender.Clone()
	cpy.Receiver = e.Receiver.Clone()
	cpy.Asset = e.Asset.Clone()
	cpy.Hashlock = append([]byte(nil), e.Hashlock...)
	return &cpy
}

// Marshal encodes the escrow in the wire format described in codec.proto.
func (e *Escrow) Marshal() ([]byte, error) {
	enc := orm.NewEncoder()
	enc.Bytes(1, e.ID)
	enc.Bytes(2, e.Sender)
	enc.Bytes(3, e.Receiver)
	enc.Bytes(4, e.Amount.Bytes())
	enc.Bytes(5, e.Asset)
	enc.Bytes(6, e.Hashlock)
	enc.Uint64(7, uint64(e.Deadline))
	enc.Uint64(8, uint64(e.CreatedAt))
	enc.Bytes(9, e.SafetyDeposit.Bytes())
	enc.Uint64(10, uint64(e.Status))
	enc.Bool(11, e.Locked)
	return enc.Marshal()
}

// Unmarshal decodes data created by Marshal.
func (e *Escrow) Unmarshal(raw []byte) error {
	fields, err := orm.DecodeFields(raw)
	if err != nil {
		return err
	}
	*e = Escrow{}
	for _, f := range fields {
		switch f.Num {
		case 1:
			e.ID = f.Bytes
		case 2:
			e.Sender = htlc.Address(f.Bytes)
		case 3:
			e.Receiver = htlc.Address(f.Bytes)
		case 4:
			e.Amount, err = coin.AmountFromBytes(f.Bytes)
		case 5:
			e.Asset = htlc.Address(f.Bytes)
		case 6:
			e.Hashlock = f.Bytes
		case 7:
			e.Deadline = htlc.UnixTime(f.Varint)
		case 8:
			e.CreatedAt = htlc.UnixTime(f.Varint)
		case 9:
			e.SafetyDeposit, err = coin.AmountFromBytes(f.Bytes)
		case 10:
			e.Status = Status(f.Varint)
		case 11:
			e.Locked = f.Varint != 0
		}
		if err != nil {
			return errors.Wrapf(errors.ErrModel, "field %d: %s", f.Num, err)
		}
	}
	return nil
}

// Unlocks returns true if the secret matches the hashlock.
func (e *Escrow) Unlocks(secret []byte) bool {
	return bytes.Equal(HashSecret(secret), e.Hashlock)
}

// NewBucket returns the bucket of escrows, indexed by hashlock, sender and
// receiver.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("htlc", &Escrow{},
		orm.WithIndex("hashlock", idxHashlock),
		orm.WithIndex("sender", idxSender),
		orm.WithIndex("receiver", idxReceiver),
	)
}

func toEscrow(m orm.Model) (*Escrow, error) {
	esc, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of Escrow")
	}
	return esc, nil
}

func idxHashlock(m orm.Model) ([]byte, error) {
	esc, err := toEscrow(m)
	if err != nil {
		return nil, err
	}
	return esc.Hashlock, nil
}

func idxSender(m orm.Model) ([]byte, error) {
	esc, err := toEscrow(m)
	if err != nil {
		return nil, err
	}
	return esc.Sender, nil
}

func idxReceiver(m orm.Model) ([]byte, error) {
	esc, err := toEscrow(m)
	if err != nil {
		return nil, err
	}
	return esc.Receiver, nil
}
