package oracle

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Options configures a provider registry.
type Options struct {
	ProgramID solana.PublicKey
	Lamports  uint64
	Logger    logrus.FieldLogger
}

// Option mutates Options.
type Option func(*Options)

// WithProgramID overrides the owner program written into feed accounts.
func WithProgramID(programID solana.PublicKey) Option {
	return func(o *Options) {
		o.ProgramID = programID
	}
}

// WithLamports overrides the balance written into feed accounts.
func WithLamports(lamports uint64) Option {
	return func(o *Options) {
		o.Lamports = lamports
	}
}

// WithLogger sets the logger used for feed lifecycle events.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Registry tracks the feeds of one provider and writes their accounts through
// to the ledger. It owns the address set only; account bytes live in the ledger.
type Registry struct {
	provider  string
	ledger    Ledger
	programID solana.PublicKey
	lamports  uint64
	feeds     map[solana.PublicKey]struct{}
	log       logrus.FieldLogger
}

// NewRegistry creates a registry for provider writing accounts owned by defaultProgram
// unless overridden by WithProgramID.
func NewRegistry(provider string, ledger Ledger, defaultProgram solana.PublicKey, opts ...Option) *Registry {
	o := Options{
		ProgramID: defaultProgram,
		Lamports:  DefaultLamports,
		Logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		provider:  provider,
		ledger:    ledger,
		programID: o.ProgramID,
		lamports:  o.Lamports,
		feeds:     make(map[solana.PublicKey]struct{}),
		log:       o.Logger.WithField("provider", provider),
	}
}

// Provider returns the provider name.
func (r *Registry) Provider() string {
	return r.provider
}

// ProgramID returns the owner program of this registry's accounts.
func (r *Registry) ProgramID() solana.PublicKey {
	return r.programID
}

// Clock samples the ledger clock.
func (r *Registry) Clock() Clock {
	return r.ledger.Clock()
}

// Logger returns the registry logger, scoped to the provider.
func (r *Registry) Logger() logrus.FieldLogger {
	return r.log
}

// Contains reports whether address is a registered feed.
func (r *Registry) Contains(address solana.PublicKey) bool {
	_, ok := r.feeds[address]
	return ok
}

// Feeds returns the registered addresses in byte order. An address whose
// account is gone or now belongs to another program is unregistered first.
func (r *Registry) Feeds() []solana.PublicKey {
	out := make([]solana.PublicKey, 0, len(r.feeds))
	for address := range r.feeds {
		if !r.Owns(address) {
			continue
		}
		out = append(out, address)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// Owns reports whether address is registered and its ledger account is still
// owned by the registry's program. A feed overwritten by another writer is
// dropped from the registry. Read errors other than a missing account keep
// the registration.
func (r *Registry) Owns(address solana.PublicKey) bool {
	if !r.Contains(address) {
		return false
	}
	account, err := r.ledger.GetAccount(address)
	switch {
	case errors.Is(err, ErrAccountNotFound):
	case err != nil:
		return true
	case account.Owner.Equals(r.programID):
		return true
	}
	delete(r.feeds, address)
	r.log.WithField("address", address.String()).Debug("price feed released")
	return false
}

// NewAddress returns a random address not yet registered.
func (r *Registry) NewAddress() solana.PublicKey {
	for {
		address := solana.NewWallet().PublicKey()
		if !r.Contains(address) {
			return address
		}
	}
}

// Create writes data at address and registers it, replacing any previous content.
func (r *Registry) Create(address solana.PublicKey, data []byte) error {
	if err := r.Store(address, data); err != nil {
		return err
	}
	r.feeds[address] = struct{}{}
	r.log.WithField("address", address.String()).Debug("price feed created")
	return nil
}

// Load returns the account data of a registered feed.
func (r *Registry) Load(address solana.PublicKey) ([]byte, error) {
	if !r.Contains(address) {
		return nil, NotFound(r.provider, address)
	}
	return r.read(address)
}

// Store writes data at address under the registry's program.
func (r *Registry) Store(address solana.PublicKey, data []byte) error {
	err := r.ledger.SetAccount(address, Account{
		Lamports: r.lamports,
		Data:     data,
		Owner:    r.programID,
	})
	if err != nil {
		return &LedgerWriteError{Address: address, Cause: err}
	}
	return nil
}

// Adopt registers an account that already exists in the ledger, for example
// one written by an earlier process. validate is called with the account data
// before the address is registered.
func (r *Registry) Adopt(address solana.PublicKey, validate func([]byte) error) error {
	data, err := r.read(address)
	if err != nil {
		return err
	}
	if err := validate(data); err != nil {
		return fmt.Errorf("adopt %s: %w", address, err)
	}
	r.feeds[address] = struct{}{}
	r.log.WithField("address", address.String()).Debug("price feed adopted")
	return nil
}

// Update loads a feed, applies mutate to its data in place and writes it back.
func (r *Registry) Update(address solana.PublicKey, mutate func([]byte) error) error {
	data, err := r.Load(address)
	if err != nil {
		return err
	}
	if err := mutate(data); err != nil {
		return err
	}
	if err := r.Store(address, data); err != nil {
		return err
	}
	r.log.WithField("address", address.String()).Debug("price feed updated")
	return nil
}

func (r *Registry) read(address solana.PublicKey) ([]byte, error) {
	account, err := r.ledger.GetAccount(address)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, NotFound(r.provider, address)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", address, err)
	}
	if !account.Owner.Equals(r.programID) {
		return nil, NotFound(r.provider, address)
	}
	data := make([]byte, len(account.Data))
	copy(data, account.Data)
	return data, nil
}
