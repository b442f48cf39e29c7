// Package ledger is a persistent account store with a manual slot clock. It
// implements oracle.Ledger so the shadow oracle can run outside a test
// validator, for example behind the CLI.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/storage/compression"
	"github.com/LeJamon/goShadowOracle/internal/storage/kv"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
)

// MaxPermittedDataLength is the largest account the runtime allows.
const MaxPermittedDataLength = 10 * 1024 * 1024

// ErrAccountTooLarge is returned by SetAccount when data exceeds the maximum length.
var ErrAccountTooLarge = errors.New("account data too large")

var (
	accountPrefix = []byte("acct/")
	clockKey      = []byte("sysvar/clock")
)

// accountRecord is the stored form of an account.
type accountRecord struct {
	Lamports    uint64 `codec:"lamports"`
	Owner       []byte `codec:"owner"`
	Executable  bool   `codec:"executable"`
	RentEpoch   uint64 `codec:"rent_epoch"`
	Compression string `codec:"compression"`
	Data        []byte `codec:"data"`
}

type clockRecord struct {
	Slot     uint64 `codec:"slot"`
	UnixNano int64  `codec:"unix_nano"`
}

// Options configures a Ledger.
type Options struct {
	Clock         *ManualClock
	Compressor    compression.Compressor
	MaxDataLength int
	Logger        logrus.FieldLogger
}

// Option mutates Options.
type Option func(*Options)

// WithClock uses clock instead of a fresh ManualClock.
func WithClock(clock *ManualClock) Option {
	return func(o *Options) { o.Clock = clock }
}

// WithCompressor compresses account data with c before storing it.
func WithCompressor(c compression.Compressor) Option {
	return func(o *Options) { o.Compressor = c }
}

// WithMaxDataLength overrides MaxPermittedDataLength.
func WithMaxDataLength(n int) Option {
	return func(o *Options) { o.MaxDataLength = n }
}

// WithLogger sets the ledger logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Ledger stores accounts in a kv.DB. It is safe for concurrent use as long
// as the underlying kv.DB is.
type Ledger struct {
	db         kv.DB
	clock      *ManualClock
	compressor compression.Compressor
	maxData    int
	handle     codec.MsgpackHandle
	log        logrus.FieldLogger
}

var _ oracle.Ledger = (*Ledger)(nil)

// New opens a ledger over db. A clock persisted by an earlier session
// replaces the configured clock's time and slot.
func New(db kv.DB, opts ...Option) (*Ledger, error) {
	o := Options{
		Compressor:    compression.NoCompressor{},
		MaxDataLength: MaxPermittedDataLength,
		Logger:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Clock == nil {
		o.Clock = NewManualClock()
	}

	l := &Ledger{
		db:         db,
		clock:      o.Clock,
		compressor: o.Compressor,
		maxData:    o.MaxDataLength,
		log:        o.Logger.WithField("component", "ledger"),
	}

	if err := l.loadClock(context.Background()); err != nil {
		return nil, err
	}
	return l, nil
}

// Clock returns the current slot and unix timestamp.
func (l *Ledger) Clock() oracle.Clock {
	return l.clock.Snapshot()
}

// ManualClock returns the clock driving the ledger.
func (l *Ledger) ManualClock() *ManualClock {
	return l.clock
}

// GetAccount returns the account at address or oracle.ErrAccountNotFound.
func (l *Ledger) GetAccount(address solana.PublicKey) (oracle.Account, error) {
	raw, err := l.db.Read(context.Background(), accountKey(address))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return oracle.Account{}, oracle.ErrAccountNotFound
	}
	if err != nil {
		return oracle.Account{}, err
	}
	return l.decodeAccount(raw)
}

// SetAccount stores account at address, replacing any previous account.
func (l *Ledger) SetAccount(address solana.PublicKey, account oracle.Account) error {
	if len(account.Data) > l.maxData {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrAccountTooLarge, len(account.Data), l.maxData)
	}
	raw, err := l.encodeAccount(account)
	if err != nil {
		return err
	}

	if err := l.db.Write(context.Background(), accountKey(address), raw); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{
		"address": address.String(),
		"owner":   account.Owner.String(),
		"size":    len(account.Data),
	}).Trace("account stored")
	return nil
}

// DeleteAccount removes the account at address. Deleting a missing account is not an error.
func (l *Ledger) DeleteAccount(address solana.PublicKey) error {
	return l.db.Delete(context.Background(), accountKey(address))
}

// Range calls fn for every account in address order until fn returns an
// error. fn must not write to the ledger.
func (l *Ledger) Range(ctx context.Context, fn func(solana.PublicKey, oracle.Account) error) error {
	it, err := l.db.Iterator(ctx, accountPrefix)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := it.Key()
		if len(key) != len(accountPrefix)+solana.PublicKeyLength {
			continue
		}
		address := solana.PublicKeyFromBytes(key[len(accountPrefix):])
		account, err := l.decodeAccount(it.Value())
		if err != nil {
			return fmt.Errorf("decode %s: %w", address, err)
		}
		if err := fn(address, account); err != nil {
			return err
		}
	}
	return it.Error()
}

// Reset deletes every account. The clock is kept.
func (l *Ledger) Reset(ctx context.Context) error {
	it, err := l.db.Iterator(ctx, accountPrefix)
	if err != nil {
		return err
	}
	var ops []kv.BatchOperation
	for it.Next() {
		ops = append(ops, kv.BatchOperation{Type: kv.BatchDelete, Key: bytes.Clone(it.Key())})
	}
	iterErr := it.Error()
	if err := it.Close(); err != nil && iterErr == nil {
		iterErr = err
	}
	if iterErr != nil {
		return iterErr
	}
	if len(ops) == 0 {
		return nil
	}
	if err := l.db.Batch(ctx, ops); err != nil {
		return err
	}
	l.log.WithField("accounts", len(ops)).Info("ledger reset")
	return nil
}

// AdvanceTime moves the clock forward by d and persists it.
func (l *Ledger) AdvanceTime(ctx context.Context, d time.Duration) error {
	l.clock.Advance(d)
	return l.SaveClock(ctx)
}

// AdvanceSlots moves the clock forward n slots and persists it.
func (l *Ledger) AdvanceSlots(ctx context.Context, n uint64) error {
	l.clock.AdvanceSlots(n)
	return l.SaveClock(ctx)
}

// WarpToSlot jumps the clock to slot and persists it.
func (l *Ledger) WarpToSlot(ctx context.Context, slot uint64) error {
	l.clock.WarpToSlot(slot)
	return l.SaveClock(ctx)
}

// SaveClock persists the clock so the next New over the same db resumes from it.
func (l *Ledger) SaveClock(ctx context.Context) error {
	rec := clockRecord{Slot: l.clock.Slot(), UnixNano: l.clock.Now().UnixNano()}
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, &l.handle).Encode(rec); err != nil {
		return fmt.Errorf("encode clock: %w", err)
	}
	return l.db.Write(ctx, clockKey, raw)
}

// Close persists the clock and closes the database.
func (l *Ledger) Close() error {
	saveErr := l.SaveClock(context.Background())
	if err := l.db.Close(); err != nil {
		return err
	}
	return saveErr
}

func (l *Ledger) loadClock(ctx context.Context) error {
	raw, err := l.db.Read(ctx, clockKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read clock: %w", err)
	}
	var rec clockRecord
	if err := codec.NewDecoderBytes(raw, &l.handle).Decode(&rec); err != nil {
		return fmt.Errorf("decode clock: %w", err)
	}
	l.clock.Set(time.Unix(0, rec.UnixNano).UTC(), rec.Slot)
	l.log.WithField("slot", rec.Slot).Debug("clock restored")
	return nil
}

func (l *Ledger) encodeAccount(account oracle.Account) ([]byte, error) {
	data, err := l.compressor.Compress(account.Data)
	if err != nil {
		return nil, err
	}
	rec := accountRecord{
		Lamports:    account.Lamports,
		Owner:       account.Owner[:],
		Executable:  account.Executable,
		RentEpoch:   account.RentEpoch,
		Compression: l.compressor.Name(),
		Data:        data,
	}
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, &l.handle).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode account: %w", err)
	}
	return raw, nil
}

func (l *Ledger) decodeAccount(raw []byte) (oracle.Account, error) {
	var rec accountRecord
	if err := codec.NewDecoderBytes(raw, &l.handle).Decode(&rec); err != nil {
		return oracle.Account{}, fmt.Errorf("decode account: %w", err)
	}
	if len(rec.Owner) != solana.PublicKeyLength {
		return oracle.Account{}, fmt.Errorf("decode account: owner is %d bytes", len(rec.Owner))
	}
	c := l.compressor
	if rec.Compression != c.Name() {
		var err error
		if c, err = compression.Get(rec.Compression); err != nil {
			return oracle.Account{}, err
		}
	}
	data, err := c.Decompress(rec.Data)
	if err != nil {
		return oracle.Account{}, err
	}
	return oracle.Account{
		Lamports:   rec.Lamports,
		Data:       data,
		Owner:      solana.PublicKeyFromBytes(rec.Owner),
		Executable: rec.Executable,
		RentEpoch:  rec.RentEpoch,
	}, nil
}

func accountKey(address solana.PublicKey) []byte {
	key := make([]byte, 0, len(accountPrefix)+solana.PublicKeyLength)
	key = append(key, accountPrefix...)
	return append(key, address[:]...)
}
