package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/iov-one/htlc/crypto"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/events"
	"github.com/iov-one/htlc/x"
	"github.com/iov-one/htlc/x/aswap"
	"github.com/iov-one/htlc/x/cash"
	"github.com/iov-one/htlc/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

// Result describes a committed call.
type Result struct {
	// ID is the identifier of the escrow created by the call, if any.
	ID []byte
	// Height is the version of the store that holds the changes.
	Height int64
	// Hash is the root hash of that version.
	Hash []byte
	// Events lists everything published by the call, in order.
	Events []events.Event
}

// Host runs escrow operations one at a time against a committed store.
type Host struct {
	mu      sync.Mutex
	store   *CommitStore
	bank    *cash.Controller
	auth    x.Authenticator
	extra   []x.Authenticator
	sink    events.Sink
	logger  log.Logger
	now     func() time.Time
	chainID string
	// lastTime is the latest block time handed to a call. Block time never
	// goes below it, even when the time source does.
	lastTime htlc.UnixTime
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger of the host and of every call it runs.
func WithLogger(logger log.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

// WithSink sets where events of committed calls are published.
func WithSink(sink events.Sink) Option {
	return func(h *Host) { h.sink = sink }
}

// WithTimeSource replaces the wall clock used as block time.
func WithTimeSource(now func() time.Time) Option {
	return func(h *Host) { h.now = now }
}

// WithAuthenticators accepts conditions of given authenticators in addition
// to the signatures of a call.
func WithAuthenticators(auth ...x.Authenticator) Option {
	return func(h *Host) { h.extra = append(h.extra, auth...) }
}

// NewHost loads the latest version of the store and returns a host serving
// it.
func NewHost(store htlc.CommitKVStore, opts ...Option) (*Host, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	h := &Host{
		store:  cs,
		bank:   cash.NewController(),
		logger: log.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.auth = x.ChainAuth(append([]x.Authenticator{sigs.Authenticate{}}, h.extra...)...)

	cache := cs.Begin()
	defer cache.Discard()
	if h.chainID, err = loadChainID(cache); err != nil {
		return nil, err
	}
	if h.lastTime, err = loadBlockTime(cache); err != nil {
		return nil, err
	}
	info, err := cs.CommitInfo()
	if err != nil {
		return nil, err
	}
	h.logger.Info("host loaded",
		"chain_id", h.chainID,
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))
	return h, nil
}

// ChainID returns the chain id set by the genesis, or an empty string if
// the chain was not initialized.
func (h *Host) ChainID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.chainID
}

// Info returns the latest committed version.
func (h *Host) Info() (htlc.CommitID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.CommitInfo()
}

// InitChain applies the genesis and commits the first version. It can be
// called only once in the lifetime of a store.
func (h *Host) InitChain(gen *Genesis) (htlc.CommitID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.chainID != "" {
		return htlc.CommitID{}, errors.Wrapf(errors.ErrState, "chain %q already initialized", h.chainID)
	}
	cache := h.store.Begin()
	if err := gen.initState(cache, h.bank); err != nil {
		cache.Discard()
		return htlc.CommitID{}, err
	}
	id, err := h.store.Commit(cache)
	if err != nil {
		return id, err
	}
	h.chainID = gen.ChainID
	h.logger.Info("chain initialized", "chain_id", gen.ChainID, "balances", len(gen.Balances))
	return id, nil
}

// Create executes a create request signed by the sender.
func (h *Host) Create(ctx context.Context, msg *aswap.CreateMsg, signatures ...*sigs.StdSignature) (*Result, error) {
	var id []byte
	res, err := h.deliver(ctx, msg, signatures, func(ctx context.Context, db htlc.KVStore, e *aswap.Engine) error {
		var err error
		id, err = e.Create(ctx, db, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.ID = id
	return res, nil
}

// Withdraw executes a withdraw request signed by the receiver.
func (h *Host) Withdraw(ctx context.Context, msg *aswap.WithdrawMsg, signatures ...*sigs.StdSignature) (*Result, error) {
	return h.deliver(ctx, msg, signatures, func(ctx context.Context, db htlc.KVStore, e *aswap.Engine) error {
		return e.Withdraw(ctx, db, msg)
	})
}

// Refund executes a refund request signed by the sender.
func (h *Host) Refund(ctx context.Context, msg *aswap.RefundMsg, signatures ...*sigs.StdSignature) (*Result, error) {
	return h.deliver(ctx, msg, signatures, func(ctx context.Context, db htlc.KVStore, e *aswap.Engine) error {
		return e.Refund(ctx, db, msg)
	})
}

type deliverFn func(ctx context.Context, db htlc.KVStore, e *aswap.Engine) error

// deliver verifies the signatures and runs fn on a cache wrap. The cache is
// committed only if both succeed. Events reach the sink after the commit.
func (h *Host) deliver(ctx context.Context, msg Msg, signatures []*sigs.StdSignature, fn deliverFn) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	payload, err := SignBytes(msg)
	if err != nil {
		return nil, err
	}
	info, err := h.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	height := info.Version + 1

	ctx = htlc.WithLogger(ctx, h.logger)
	ctx = htlc.WithLogInfo(ctx, "path", msg.Path(), "height", height)
	ctx = htlc.WithHeight(ctx, height)
	blockTime := h.blockTime(ctx)
	ctx = htlc.WithBlockTime(ctx, blockTime.Time())

	recorder := events.NewRecorder()
	engine := aswap.NewEngine(h.auth, h.bank, htlc.BlockClock{}, recorder)
	cache := h.store.Begin()
	callCtx := ctx
	err = safeRun(func() error {
		signers, err := sigs.VerifySignatures(cache, payload, h.chainID, signatures)
		if err != nil {
			return err
		}
		callCtx = sigs.WithSigners(ctx, signers)
		if err := fn(callCtx, cache, engine); err != nil {
			return err
		}
		return saveBlockTime(cache, blockTime)
	})
	if err != nil {
		cache.Discard()
		htlc.GetLogger(ctx).Debug("call failed", "code", errors.Code(err), "err", err)
		return nil, err
	}

	id, err := h.store.Commit(cache)
	if err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	htlc.GetLogger(ctx).Debug("call committed",
		"signers", fmt.Sprint(x.GetAddresses(callCtx, h.auth)),
		"hash", fmt.Sprintf("%X", id.Hash))
	published := recorder.Events()
	for _, e := range published {
		events.Publish(ctx, h.sink, e)
	}
	return &Result{Height: id.Version, Hash: id.Hash, Events: published}, nil
}

// blockTime returns the time of the next call. A time source that goes
// backwards is clamped to the latest time already handed out, so an escrow
// seen as expired stays expired.
func (h *Host) blockTime(ctx context.Context) htlc.UnixTime {
	now := htlc.AsUnixTime(h.now())
	if now < h.lastTime {
		htlc.GetLogger(ctx).Info("time source behind block time",
			"now", uint64(now), "block_time", uint64(h.lastTime))
		return h.lastTime
	}
	h.lastTime = now
	return now
}

// read runs fn on a throw away view of the committed state.
func (h *Host) read(fn func(db htlc.ReadOnlyKVStore) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	cache := h.store.Begin()
	defer cache.Discard()
	return safeRun(func() error { return fn(cache) })
}

func (h *Host) engine() *aswap.Engine {
	return aswap.NewEngine(h.auth, h.bank, htlc.BlockClock{}, nil)
}

// Escrow returns the escrow with given id.
func (h *Host) Escrow(id []byte) (*aswap.Escrow, error) {
	var escrow *aswap.Escrow
	err := h.read(func(db htlc.ReadOnlyKVStore) error {
		var err error
		escrow, err = h.engine().Get(db, id)
		return err
	})
	return escrow, err
}

// Custody returns how much value the custody address of an escrow holds.
func (h *Host) Custody(id []byte) (coin.Amount, error) {
	var amount coin.Amount
	err := h.read(func(db htlc.ReadOnlyKVStore) error {
		escrow, err := h.engine().Get(db, id)
		if err != nil {
			return err
		}
		amount, err = h.bank.Balance(db, escrow.Asset, aswap.EscrowAddress(id))
		return err
	})
	return amount, err
}

// Find returns the ids of escrows matching given value of an index. The
// index is one of hashlock, sender or receiver.
func (h *Host) Find(index string, value []byte) ([][]byte, error) {
	var ids [][]byte
	err := h.read(func(db htlc.ReadOnlyKVStore) error {
		var err error
		e := h.engine()
		switch index {
		case "hashlock":
			ids, err = e.ByHashlock(db, value)
		case "sender":
			ids, err = e.BySender(db, value)
		case "receiver":
			ids, err = e.ByReceiver(db, value)
		default:
			err = errors.Wrapf(errors.ErrInput, "unknown index %q", index)
		}
		return err
	})
	return ids, err
}

// Balance returns how much of the asset with given ticker the owner holds.
func (h *Host) Balance(ticker string, owner htlc.Address) (coin.Amount, error) {
	var amount coin.Amount
	err := h.read(func(db htlc.ReadOnlyKVStore) error {
		var err error
		amount, err = h.bank.Balance(db, cash.AssetAddress(ticker), owner)
		return err
	})
	return amount, err
}

// Balances returns all wallets of the owner.
func (h *Host) Balances(owner htlc.Address) ([]cash.Wallet, error) {
	var wallets []cash.Wallet
	err := h.read(func(db htlc.ReadOnlyKVStore) error {
		var err error
		wallets, err = h.bank.Balances(db, owner)
		return err
	})
	return wallets, err
}

// NextSequence returns the sequence the key must sign its next request
// with.
func (h *Host) NextSequence(pub crypto.PublicKey) (int64, error) {
	var seq int64
	err := h.read(func(db htlc.ReadOnlyKVStore) error {
		var err error
		seq, err = sigs.NextSequence(db, pub)
		return err
	})
	return seq, err
}
