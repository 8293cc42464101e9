package aswap

import (
	"encoding/hex"

	"github.com/iov-one/htlc/events"
)

// Topics of the events published by the engine.
const (
	TopicCreated   = "htlc/created"
	TopicWithdrawn = "htlc/withdrawn"
	TopicRefunded  = "htlc/refunded"
)

// CreatedEvent carries all fields of a newly created escrow.
type CreatedEvent struct {
	Escrow *Escrow
}

var _ events.Event = CreatedEvent{}

func (CreatedEvent) Topic() string { return TopicCreated }

func (e CreatedEvent) KeyVals() []interface{} {
	return []interface{}{
		"id", hex.EncodeToString(e.Escrow.ID),
		"sender", e.Escrow.Sender,
		"receiver", e.Escrow.Receiver,
		"amount", e.Escrow.Amount,
		"asset", e.Escrow.Asset,
		"hashlock", hex.EncodeToString(e.Escrow.Hashlock),
		"deadline", uint64(e.Escrow.Deadline),
		"created_at", uint64(e.Escrow.CreatedAt),
		"safety_deposit", e.Escrow.SafetyDeposit,
	}
}

// WithdrawnEvent reveals the secret that unlocked an escrow.
type WithdrawnEvent struct {
	ID     []byte
	Secret []byte
}

var _ events.Event = WithdrawnEvent{}

func (WithdrawnEvent) Topic() string { return TopicWithdrawn }

func (e WithdrawnEvent) KeyVals() []interface{} {
	return []interface{}{
		"id", hex.EncodeToString(e.ID),
		"secret", hex.EncodeToString(e.Secret),
	}
}

// RefundedEvent is published when an escrow returned to its sender.
type RefundedEvent struct {
	ID []byte
}

var _ events.Event = RefundedEvent{}

func (RefundedEvent) Topic() string { return TopicRefunded }

func (e RefundedEvent) KeyVals() []interface{} {
	return []interface{}{"id", hex.EncodeToString(e.ID)}
}
