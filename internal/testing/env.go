package testing

import (
	"testing"
	"time"

	"github.com/LeJamon/goShadowOracle/internal/ledger"
	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/shadow"
	"github.com/LeJamon/goShadowOracle/internal/storage/compression"
	"github.com/LeJamon/goShadowOracle/internal/storage/kv"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// TestEnv manages an in-memory ledger with the shadow oracle bound to it.
// It provides a simplified interface for creating feeds, moving the clock
// and inspecting raw accounts.
type TestEnv struct {
	t      *testing.T
	ledger *ledger.Ledger
	clock  *ledger.ManualClock
	oracle *shadow.Oracle
	logs   *test.Hook
}

// EnvOption configures a TestEnv.
type EnvOption func(*envOptions)

type envOptions struct {
	db         kv.DB
	compressor compression.Compressor
	shadow     []shadow.Option
}

// WithDB backs the environment with db instead of an in-memory store.
func WithDB(db kv.DB) EnvOption {
	return func(o *envOptions) { o.db = db }
}

// WithCompression stores account data through c.
func WithCompression(c compression.Compressor) EnvOption {
	return func(o *envOptions) { o.compressor = c }
}

// WithOracleOptions passes opts to shadow.New.
func WithOracleOptions(opts ...shadow.Option) EnvOption {
	return func(o *envOptions) { o.shadow = append(o.shadow, opts...) }
}

// NewTestEnv creates a test environment over an in-memory ledger whose clock
// starts at slot 1, January 1, 2024, 00:00:00 UTC.
func NewTestEnv(t *testing.T, opts ...EnvOption) *TestEnv {
	t.Helper()

	o := envOptions{compressor: compression.NoCompressor{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.db == nil {
		o.db = kv.NewMemory()
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	clock := ledger.NewManualClock()
	l, err := ledger.New(o.db,
		ledger.WithClock(clock),
		ledger.WithCompressor(o.compressor),
		ledger.WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Failed to close ledger: %v", err)
		}
	})

	shadowOpts := append([]shadow.Option{shadow.WithLogger(logger)}, o.shadow...)
	return &TestEnv{
		t:      t,
		ledger: l,
		clock:  clock,
		oracle: shadow.New(l, shadowOpts...),
		logs:   hook,
	}
}

// Oracle returns the shadow oracle bound to the environment's ledger.
func (e *TestEnv) Oracle() *shadow.Oracle {
	return e.oracle
}

// Ledger returns the environment's ledger.
func (e *TestEnv) Ledger() *ledger.Ledger {
	return e.ledger
}

// Clock returns the manual clock driving the ledger.
func (e *TestEnv) Clock() *ledger.ManualClock {
	return e.clock
}

// Now returns the current ledger unix timestamp.
func (e *TestEnv) Now() int64 {
	return e.clock.Now().Unix()
}

// Slot returns the current ledger slot.
func (e *TestEnv) Slot() uint64 {
	return e.clock.Slot()
}

// Advance moves the clock forward by d without changing the slot.
func (e *TestEnv) Advance(d time.Duration) {
	e.clock.Advance(d)
}

// AdvanceSlots moves the clock forward n slots.
func (e *TestEnv) AdvanceSlots(n uint64) {
	e.clock.AdvanceSlots(n)
}

// Account returns the raw account at address, failing the test if it is missing.
func (e *TestEnv) Account(address solana.PublicKey) oracle.Account {
	e.t.Helper()
	account, err := e.ledger.GetAccount(address)
	if err != nil {
		e.t.Fatalf("Failed to read account %s: %v", address, err)
	}
	return account
}

// Exists reports whether an account is stored at address.
func (e *TestEnv) Exists(address solana.PublicKey) bool {
	_, err := e.ledger.GetAccount(address)
	return err == nil
}

// Logs returns the entries logged by the ledger and providers so far.
func (e *TestEnv) Logs() []*logrus.Entry {
	return e.logs.AllEntries()
}
