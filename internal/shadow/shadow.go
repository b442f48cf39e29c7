// Package shadow bundles the Pyth, Switchboard and Chainlink mock providers
// behind a single handle bound to one ledger.
//
//	so := shadow.New(ledger)
//	feed, _ := so.Pyth().CreatePriceFeed(oracle.NewUSD(100, 0.1))
//	_ = so.Pyth().SimulateCrash(feed, 50)
//
// Provider handles are created once, so feeds registered through one call to
// Pyth() remain visible to the next.
package shadow

import (
	"context"
	"fmt"
	"strings"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/oracle/chainlink"
	"github.com/LeJamon/goShadowOracle/internal/oracle/pyth"
	"github.com/LeJamon/goShadowOracle/internal/oracle/switchboard"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Feeds is the part of the provider API that is identical across providers.
// Prices are in quote units; Chainlink reports a zero confidence.
type Feeds interface {
	Name() string
	ProgramID() solana.PublicKey
	Feeds() []solana.PublicKey
	Owns(address solana.PublicKey) bool

	CreatePriceFeed(conf oracle.Conf) (solana.PublicKey, error)
	CreatePriceFeedAt(address solana.PublicKey, conf oracle.Conf) error
	CreateStandardFeeds() (oracle.StandardFeeds, error)
	Adopt(address solana.PublicKey) error

	SetPriceUSD(address solana.PublicKey, price, confidence float64) error
	GetPriceUSD(address solana.PublicKey) (float64, float64, error)
	GetTimestamp(address solana.PublicKey) (int64, error)
	GetSlot(address solana.PublicKey) (uint64, error)
	MakeStale(address solana.PublicKey, secondsAgo int64) error

	SimulateCrash(address solana.PublicKey, percent float64) error
	SimulateDepeg(address solana.PublicKey, target float64) error
}

var (
	_ Feeds = (*pyth.Provider)(nil)
	_ Feeds = (*switchboard.Provider)(nil)
	_ Feeds = (*chainlink.Provider)(nil)
)

// Options configures the facade.
type Options struct {
	Logger               logrus.FieldLogger
	Lamports             uint64
	PythProgramID        solana.PublicKey
	SwitchboardProgramID solana.PublicKey
	ChainlinkProgramID   solana.PublicKey
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the logger shared by all providers.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithLamports sets the balance of every feed account.
func WithLamports(lamports uint64) Option {
	return func(o *Options) { o.Lamports = lamports }
}

// WithPythProgramID overrides the Pyth owner program.
func WithPythProgramID(id solana.PublicKey) Option {
	return func(o *Options) { o.PythProgramID = id }
}

// WithSwitchboardProgramID overrides the Switchboard owner program.
func WithSwitchboardProgramID(id solana.PublicKey) Option {
	return func(o *Options) { o.SwitchboardProgramID = id }
}

// WithChainlinkProgramID overrides the Chainlink owner program.
func WithChainlinkProgramID(id solana.PublicKey) Option {
	return func(o *Options) { o.ChainlinkProgramID = id }
}

// Oracle is the facade over all three providers.
type Oracle struct {
	ledger      oracle.Ledger
	pyth        *pyth.Provider
	switchboard *switchboard.Provider
	chainlink   *chainlink.Provider
}

// New creates the three providers over ledger.
func New(ledger oracle.Ledger, opts ...Option) *Oracle {
	o := Options{
		Logger:               logrus.StandardLogger(),
		Lamports:             oracle.DefaultLamports,
		PythProgramID:        oracle.PythProgramID,
		SwitchboardProgramID: oracle.SwitchboardProgramID,
		ChainlinkProgramID:   oracle.ChainlinkProgramID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	common := []oracle.Option{oracle.WithLogger(o.Logger), oracle.WithLamports(o.Lamports)}
	with := func(id solana.PublicKey) []oracle.Option {
		return append(append([]oracle.Option{}, common...), oracle.WithProgramID(id))
	}
	return &Oracle{
		ledger:      ledger,
		pyth:        pyth.New(ledger, with(o.PythProgramID)...),
		switchboard: switchboard.New(ledger, with(o.SwitchboardProgramID)...),
		chainlink:   chainlink.New(ledger, with(o.ChainlinkProgramID)...),
	}
}

// Ledger returns the ledger the providers write into.
func (o *Oracle) Ledger() oracle.Ledger {
	return o.ledger
}

// Pyth returns the Pyth provider.
func (o *Oracle) Pyth() *pyth.Provider {
	return o.pyth
}

// Switchboard returns the Switchboard provider.
func (o *Oracle) Switchboard() *switchboard.Provider {
	return o.switchboard
}

// Chainlink returns the Chainlink provider.
func (o *Oracle) Chainlink() *chainlink.Provider {
	return o.chainlink
}

// Provider returns the provider registered under name, case-insensitively.
func (o *Oracle) Provider(name string) (Feeds, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case oracle.ProviderPyth:
		return o.pyth, nil
	case oracle.ProviderSwitchboard:
		return o.switchboard, nil
	case oracle.ProviderChainlink:
		return o.chainlink, nil
	}
	return nil, fmt.Errorf("unknown oracle provider %q (want one of %s)", name, strings.Join(oracle.Providers, ", "))
}

// All returns every provider in oracle.Providers order.
func (o *Oracle) All() []Feeds {
	return []Feeds{o.pyth, o.switchboard, o.chainlink}
}

// Locate returns the provider whose program owns the registered feed at
// address. A provider that registered address before another provider
// overwrote it does not match.
func (o *Oracle) Locate(address solana.PublicKey) (Feeds, error) {
	for _, p := range o.All() {
		if p.Owns(address) {
			return p, nil
		}
	}
	return nil, oracle.NotFound("", address)
}

// Ranger enumerates stored accounts. *ledger.Ledger implements it.
type Ranger interface {
	Range(ctx context.Context, fn func(solana.PublicKey, oracle.Account) error) error
}

// Restore adopts every account in r owned by one of the provider programs,
// so feeds written by an earlier session can be read and updated again.
// It returns the number of feeds adopted.
func (o *Oracle) Restore(ctx context.Context, r Ranger) (int, error) {
	owners := make(map[solana.PublicKey]Feeds, 3)
	for _, p := range o.All() {
		owners[p.ProgramID()] = p
	}
	var addresses []solana.PublicKey
	var providers []Feeds
	err := r.Range(ctx, func(address solana.PublicKey, account oracle.Account) error {
		if p, ok := owners[account.Owner]; ok {
			addresses = append(addresses, address)
			providers = append(providers, p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for i, address := range addresses {
		if err := providers[i].Adopt(address); err != nil {
			return i, fmt.Errorf("restore %s feed: %w", providers[i].Name(), err)
		}
	}
	return len(addresses), nil
}
