package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeJamon/goShadowOracle/internal/config"
	"github.com/LeJamon/goShadowOracle/internal/ledger"
	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/shadow"
	"github.com/LeJamon/goShadowOracle/internal/storage/compression"
	"github.com/LeJamon/goShadowOracle/internal/storage/kv"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// session is one command's view of the persisted ledger and its feeds.
type session struct {
	ledger *ledger.Ledger
	oracle *shadow.Oracle
	log    logrus.FieldLogger
}

// openSession opens the configured ledger and adopts the feeds stored in it.
func openSession(ctx context.Context, c *config.Config) (*session, error) {
	log := logrus.WithField("backend", c.Ledger.Backend)

	var dir string
	switch c.Ledger.Backend {
	case kv.BackendPebble, kv.BackendLevelDB:
		dir = c.Ledger.Path
	case kv.BackendBBolt:
		dir = filepath.Dir(c.Ledger.Path)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	db, err := kv.Open(c.Ledger.Backend, c.Ledger.Path)
	if err != nil {
		return nil, err
	}
	if c.Ledger.CacheSize > 0 {
		cached, err := kv.NewCached(db, c.Ledger.CacheSize)
		if err != nil {
			db.Close()
			return nil, err
		}
		db = cached
	}

	compressor, err := compression.Get(c.Ledger.Compression)
	if err != nil {
		db.Close()
		return nil, err
	}
	l, err := ledger.New(db,
		ledger.WithClock(ledger.NewManualClockAt(c.Clock.Start(), c.Clock.Slot)),
		ledger.WithCompressor(compressor),
		ledger.WithLogger(logrus.StandardLogger()),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	opts, err := oracleOptions(c.Oracle)
	if err != nil {
		l.Close()
		return nil, err
	}
	o := shadow.New(l, opts...)
	n, err := o.Restore(ctx, l)
	if err != nil {
		l.Close()
		return nil, err
	}
	log.WithFields(logrus.Fields{"path": c.Ledger.Path, "feeds": n}).Debug("ledger opened")
	return &session{ledger: l, oracle: o, log: log}, nil
}

func oracleOptions(c config.OracleConfig) ([]shadow.Option, error) {
	pyth, switchboard, chainlink, err := c.ProgramIDs()
	if err != nil {
		return nil, err
	}
	opts := []shadow.Option{
		shadow.WithLogger(logrus.StandardLogger()),
		shadow.WithLamports(c.Lamports),
	}
	if !pyth.IsZero() {
		opts = append(opts, shadow.WithPythProgramID(pyth))
	}
	if !switchboard.IsZero() {
		opts = append(opts, shadow.WithSwitchboardProgramID(switchboard))
	}
	if !chainlink.IsZero() {
		opts = append(opts, shadow.WithChainlinkProgramID(chainlink))
	}
	return opts, nil
}

// providers returns the enabled providers, or only name when it is set.
func (s *session) providers(name string) ([]shadow.Feeds, error) {
	if name != "" {
		if !cfg.Oracle.Enabled(name) {
			return nil, fmt.Errorf("provider %q is not enabled", name)
		}
		p, err := s.oracle.Provider(name)
		if err != nil {
			return nil, err
		}
		return []shadow.Feeds{p}, nil
	}
	var out []shadow.Feeds
	for _, p := range s.oracle.All() {
		if cfg.Oracle.Enabled(p.Name()) {
			out = append(out, p)
		}
	}
	return out, nil
}

// feed parses address and finds the provider that owns it.
func (s *session) feed(address string) (solana.PublicKey, shadow.Feeds, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	p, err := s.oracle.Locate(key)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return key, p, nil
}

func (s *session) Close() error {
	return s.ledger.Close()
}

// withSession runs fn against a freshly opened session and closes it afterwards.
func withSession(ctx context.Context, fn func(*session) error) (err error) {
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// describe renders the current state of a feed as a single line.
func describe(p shadow.Feeds, address solana.PublicKey) (string, error) {
	price, conf, err := p.GetPriceUSD(address)
	if err != nil {
		return "", err
	}
	ts, err := p.GetTimestamp(address)
	if err != nil {
		return "", err
	}
	slot, err := p.GetSlot(address)
	if err != nil {
		return "", err
	}
	line := fmt.Sprintf("%-11s %-44s price=%-14g conf=%-10g ts=%d slot=%d", p.Name(), address, price, conf, ts, slot)
	if py, ok := p.(interface {
		GetStatus(solana.PublicKey) (oracle.Status, error)
	}); ok {
		status, err := py.GetStatus(address)
		if err != nil {
			return "", err
		}
		line += " status=" + status.String()
	}
	return line, nil
}
