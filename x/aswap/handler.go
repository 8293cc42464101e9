package aswap

import (
	"context"
	"encoding/hex"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/events"
	"github.com/iov-one/htlc/orm"
	"github.com/iov-one/htlc/x"
)

// Bank moves value of an asset between addresses. Implementations must not
// leave partial effects behind when they fail. The store of the call is
// passed along so that a transfer operates on the same state as the engine.
type Bank interface {
	MoveCoins(db htlc.KVStore, asset, src, dst htlc.Address, amount coin.Amount) error
}

// Engine executes the escrow state machine.
type Engine struct {
	auth   x.Authenticator
	bank   Bank
	clock  htlc.Clock
	sink   events.Sink
	bucket orm.ModelBucket
}

// NewEngine returns an engine using given capabilities. Sink may be nil.
func NewEngine(auth x.Authenticator, bank Bank, clock htlc.Clock, sink events.Sink) *Engine {
	return &Engine{
		auth:   auth,
		bank:   bank,
		clock:  clock,
		sink:   sink,
		bucket: NewBucket(),
	}
}

// Create funds a new escrow from the sender and returns its identifier.
func (h *Engine) Create(ctx context.Context, db htlc.KVStore, msg *CreateMsg) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "create")
	}
	if !h.auth.HasAddress(ctx, msg.Sender) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "sender %s", msg.Sender)
	}
	if !msg.Amount.IsPositive() {
		return nil, errors.Wrapf(errors.ErrInvalidAmount, "amount %s", msg.Amount)
	}
	if msg.SafetyDeposit.IsNegative() {
		return nil, errors.Wrapf(errors.ErrInvalidSafetyDeposit, "safety deposit %s", msg.SafetyDeposit)
	}
	now, err := h.clock.Now(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "clock")
	}
	if msg.Deadline <= now {
		return nil, errors.Wrapf(errors.ErrInvalidDeadline, "deadline %s is not after %s", msg.Deadline, now)
	}

	id := DeriveID(msg.Sender, msg.Receiver, msg.Amount, msg.Hashlock, msg.Deadline, now)
	switch err := h.bucket.Has(db, id); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrAlreadyExists, "escrow %X", id)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	total, err := msg.Amount.Add(msg.SafetyDeposit)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidAmount, "amount with safety deposit: %s", err)
	}
	if err := h.bank.MoveCoins(db, msg.Asset, msg.Sender, EscrowAddress(id), total); err != nil {
		return nil, errors.Wrap(err, "fund escrow")
	}

	escrow := &Escrow{
		ID:            id,
		Sender:        msg.Sender,
		Receiver:      msg.Receiver,
		Amount:        msg.Amount,
		Asset:         msg.Asset,
		Hashlock:      msg.Hashlock,
		Deadline:      msg.Deadline,
		CreatedAt:     now,
		SafetyDeposit: msg.SafetyDeposit,
		Status:        StatusActive,
	}
	if err := h.bucket.Put(db, id, escrow); err != nil {
		return nil, err
	}

	h.logTransition(ctx, escrow)
	events.Publish(ctx, h.sink, CreatedEvent{Escrow: escrow.Copy()})
	return id, nil
}

// Withdraw releases the escrow amount to the receiver if the secret is
// revealed before the deadline. The safety deposit returns to the sender.
func (h *Engine) Withdraw(ctx context.Context, db htlc.KVStore, msg *WithdrawMsg) error {
	escrow, err := h.Get(db, msg.ID)
	if err != nil {
		return err
	}
	if escrow.Locked {
		return errors.Wrapf(errors.ErrReentrancyDetected, "escrow %X", escrow.ID)
	}
	if !h.auth.HasAddress(ctx, escrow.Receiver) {
		return errors.Wrapf(errors.ErrUnauthorized, "receiver %s", escrow.Receiver)
	}
	if err := requireActive(escrow); err != nil {
		return err
	}
	now, err := h.clock.Now(ctx)
	if err != nil {
		return errors.Wrap(err, "clock")
	}
	if now >= escrow.Deadline {
		return errors.Wrapf(errors.ErrDeadlineExpired, "deadline %s", escrow.Deadline)
	}
	if !escrow.Unlocks(msg.Secret) {
		return errors.Wrap(errors.ErrInvalidPreimage, "secret does not match hashlock")
	}

	if err := h.lock(db, escrow); err != nil {
		return err
	}
	custody := EscrowAddress(escrow.ID)
	if err := h.bank.MoveCoins(db, escrow.Asset, custody, escrow.Receiver, escrow.Amount); err != nil {
		return errors.Wrap(err, "release amount")
	}
	if escrow.SafetyDeposit.IsPositive() {
		if err := h.bank.MoveCoins(db, escrow.Asset, custody, escrow.Sender, escrow.SafetyDeposit); err != nil {
			return errors.Wrap(err, "return safety deposit")
		}
	}
	if err := h.finalize(db, escrow, StatusWithdrawn); err != nil {
		return err
	}

	h.logTransition(ctx, escrow)
	events.Publish(ctx, h.sink, WithdrawnEvent{
		ID:     escrow.ID,
		Secret: append([]byte(nil), msg.Secret...),
	})
	return nil
}

// Refund returns the amount and the safety deposit to the sender once the
// deadline has passed.
func (h *Engine) Refund(ctx context.Context, db htlc.KVStore, msg *RefundMsg) error {
	escrow, err := h.Get(db, msg.ID)
	if err != nil {
		return err
	}
	if escrow.Locked {
		return errors.Wrapf(errors.ErrReentrancyDetected, "escrow %X", escrow.ID)
	}
	if !h.auth.HasAddress(ctx, escrow.Sender) {
		return errors.Wrapf(errors.ErrUnauthorized, "sender %s", escrow.Sender)
	}
	if err := requireActive(escrow); err != nil {
		return err
	}
	now, err := h.clock.Now(ctx)
	if err != nil {
		return errors.Wrap(err, "clock")
	}
	if now < escrow.Deadline {
		return errors.Wrapf(errors.ErrDeadlineNotExpired, "deadline %s", escrow.Deadline)
	}

	total, err := escrow.Amount.Add(escrow.SafetyDeposit)
	if err != nil {
		return errors.Wrap(errors.ErrState, err.Error())
	}
	if err := h.lock(db, escrow); err != nil {
		return err
	}
	if err := h.bank.MoveCoins(db, escrow.Asset, EscrowAddress(escrow.ID), escrow.Sender, total); err != nil {
		return errors.Wrap(err, "refund")
	}
	if err := h.finalize(db, escrow, StatusRefunded); err != nil {
		return err
	}

	h.logTransition(ctx, escrow)
	events.Publish(ctx, h.sink, RefundedEvent{ID: escrow.ID})
	return nil
}

// Exists returns true if an escrow with given id was ever created.
func (h *Engine) Exists(db htlc.ReadOnlyKVStore, id []byte) (bool, error) {
	switch err := h.bucket.Has(db, id); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Get returns the escrow with given id or ErrNotFound.
func (h *Engine) Get(db htlc.ReadOnlyKVStore, id []byte) (*Escrow, error) {
	var escrow Escrow
	if err := h.bucket.One(db, id, &escrow); err != nil {
		return nil, err
	}
	return &escrow, nil
}

// Status returns the status of the escrow with given id or ErrNotFound.
func (h *Engine) Status(db htlc.ReadOnlyKVStore, id []byte) (Status, error) {
	escrow, err := h.Get(db, id)
	if err != nil {
		return 0, err
	}
	return escrow.Status, nil
}

// ByHashlock returns the ids of all escrows locked by given hashlock. The
// counterparty of a swap uses it to find the escrow mirroring its own.
func (h *Engine) ByHashlock(db htlc.ReadOnlyKVStore, hashlock []byte) ([][]byte, error) {
	return h.bucket.ByIndex(db, "hashlock", hashlock, nil)
}

// BySender returns the ids of all escrows funded by given address.
func (h *Engine) BySender(db htlc.ReadOnlyKVStore, sender htlc.Address) ([][]byte, error) {
	return h.bucket.ByIndex(db, "sender", sender, nil)
}

// ByReceiver returns the ids of all escrows payable to given address.
func (h *Engine) ByReceiver(db htlc.ReadOnlyKVStore, receiver htlc.Address) ([][]byte, error) {
	return h.bucket.ByIndex(db, "receiver", receiver, nil)
}

func requireActive(escrow *Escrow) error {
	switch escrow.Status {
	case StatusActive:
		return nil
	case StatusWithdrawn:
		return errors.Wrapf(errors.ErrAlreadyWithdrawn, "escrow %X", escrow.ID)
	case StatusRefunded:
		return errors.Wrapf(errors.ErrAlreadyRefunded, "escrow %X", escrow.ID)
	default:
		return errors.Wrapf(errors.ErrState, "escrow %X has status %d", escrow.ID, escrow.Status)
	}
}

// lock persists the escrow as locked before any value leaves the custody
// address, so that a re-entrant call is rejected.
func (h *Engine) lock(db htlc.KVStore, escrow *Escrow) error {
	escrow.Locked = true
	if err := h.bucket.Put(db, escrow.ID, escrow); err != nil {
		return errors.Wrap(err, "lock")
	}
	return nil
}

func (h *Engine) finalize(db htlc.KVStore, escrow *Escrow, status Status) error {
	escrow.Status = status
	escrow.Locked = false
	if err := h.bucket.Put(db, escrow.ID, escrow); err != nil {
		return errors.Wrap(err, "finalize")
	}
	return nil
}

func (h *Engine) logTransition(ctx context.Context, escrow *Escrow) {
	htlc.GetLogger(ctx).Info("escrow transition",
		"escrow", hex.EncodeToString(escrow.ID),
		"status", escrow.Status.String())
}
