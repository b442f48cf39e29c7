// Package pyth writes mock Pyth v2 price accounts into a ledger.
package pyth

import (
	"math/big"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Provider manages mock Pyth price feeds in one ledger.
type Provider struct {
	registry *oracle.Registry
}

// New creates a Pyth provider bound to ledger.
func New(ledger oracle.Ledger, opts ...oracle.Option) *Provider {
	return &Provider{
		registry: oracle.NewRegistry(oracle.ProviderPyth, ledger, oracle.PythProgramID, opts...),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return oracle.ProviderPyth
}

// ProgramID returns the owner of the accounts this provider writes.
func (p *Provider) ProgramID() solana.PublicKey {
	return p.registry.ProgramID()
}

// Feeds returns the registered feed addresses.
func (p *Provider) Feeds() []solana.PublicKey {
	return p.registry.Feeds()
}

// Owns reports whether address is a registered feed still owned by the program.
func (p *Provider) Owns(address solana.PublicKey) bool {
	return p.registry.Owns(address)
}

// CreatePriceFeed writes a new price account at a random address.
func (p *Provider) CreatePriceFeed(conf oracle.Conf) (solana.PublicKey, error) {
	address := p.registry.NewAddress()
	if err := p.CreatePriceFeedAt(address, conf); err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

// CreatePriceFeedAt writes a new price account at address, replacing whatever
// was stored there.
func (p *Provider) CreatePriceFeedAt(address solana.PublicKey, conf oracle.Conf) error {
	account, err := NewPriceAccount(conf, p.registry.Clock())
	if err != nil {
		return err
	}
	return p.registry.Create(address, account.Bytes())
}

// CreateStandardFeeds creates SOL, BTC, ETH, USDC and USDT feeds at their
// mainnet addresses.
func (p *Provider) CreateStandardFeeds() (oracle.StandardFeeds, error) {
	return oracle.CreateStandard(oracle.PythMainnet, p.createAt)
}

func (p *Provider) createAt(address solana.PublicKey, conf oracle.Conf) (solana.PublicKey, error) {
	if address.IsZero() {
		return p.CreatePriceFeed(conf)
	}
	return address, p.CreatePriceFeedAt(address, conf)
}

// Adopt registers a price account already present in the ledger.
func (p *Provider) Adopt(address solana.PublicKey) error {
	return p.registry.Adopt(address, func(data []byte) error {
		_, err := Decode(data)
		return err
	})
}

// Account returns the decoded price account at address.
func (p *Provider) Account(address solana.PublicKey) (*PriceAccount, error) {
	data, err := p.registry.Load(address)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (p *Provider) update(address solana.PublicKey, mutate func(*PriceAccount) error) error {
	return p.registry.Update(address, func(data []byte) error {
		account, err := Decode(data)
		if err != nil {
			return err
		}
		if err := mutate(account); err != nil {
			return err
		}
		return account.Encode(data)
	})
}

// SetPrice overwrites the aggregate price and confidence with raw fixed-point
// values and stamps the feed with the current ledger clock.
func (p *Provider) SetPrice(address solana.PublicKey, price int64, conf uint64) error {
	clock := p.registry.Clock()
	return p.update(address, func(a *PriceAccount) error {
		a.publish(price, conf, clock)
		return nil
	})
}

// SetPriceUSD scales price and confidence by the feed's exponent and then
// behaves as SetPrice.
func (p *Provider) SetPriceUSD(address solana.PublicKey, price, confidence float64) error {
	clock := p.registry.Clock()
	return p.update(address, func(a *PriceAccount) error {
		raw, err := oracle.ToRaw(price, a.Exponent)
		if err != nil {
			return err
		}
		rawConf, err := oracle.ToRawConfidence(confidence, a.Exponent)
		if err != nil {
			return err
		}
		a.publish(raw, rawConf, clock)
		return nil
	})
}

// SetStatus changes only the aggregate status; timestamp and slot are kept.
func (p *Provider) SetStatus(address solana.PublicKey, status oracle.Status) error {
	return p.update(address, func(a *PriceAccount) error {
		a.Aggregate.Status = status
		return nil
	})
}

// MakeStale moves the feed's timestamp secondsAgo before the ledger clock
// without changing the price.
func (p *Provider) MakeStale(address solana.PublicKey, secondsAgo int64) error {
	now := p.registry.Clock().UnixTimestamp
	return p.update(address, func(a *PriceAccount) error {
		a.Timestamp = now - secondsAgo
		return nil
	})
}

// GetPrice returns the raw aggregate price and confidence.
func (p *Provider) GetPrice(address solana.PublicKey) (int64, uint64, error) {
	a, err := p.Account(address)
	if err != nil {
		return 0, 0, err
	}
	return a.Aggregate.Price, a.Aggregate.Conf, nil
}

// GetPriceUSD returns the aggregate price and confidence scaled by the exponent.
func (p *Provider) GetPriceUSD(address solana.PublicKey) (float64, float64, error) {
	a, err := p.Account(address)
	if err != nil {
		return 0, 0, err
	}
	return oracle.FromRaw(a.Aggregate.Price, a.Exponent), oracle.FromRawConfidence(a.Aggregate.Conf, a.Exponent), nil
}

// GetEMAPrice returns the raw EMA price and confidence.
func (p *Provider) GetEMAPrice(address solana.PublicKey) (int64, uint64, error) {
	a, err := p.Account(address)
	if err != nil {
		return 0, 0, err
	}
	return a.EMAPrice, a.EMAConf, nil
}

// GetStatus returns the aggregate status.
func (p *Provider) GetStatus(address solana.PublicKey) (oracle.Status, error) {
	a, err := p.Account(address)
	if err != nil {
		return oracle.StatusUnknown, err
	}
	return a.Aggregate.Status, nil
}

// GetTimestamp returns the publish timestamp of the last update.
func (p *Provider) GetTimestamp(address solana.PublicKey) (int64, error) {
	a, err := p.Account(address)
	if err != nil {
		return 0, err
	}
	return a.Timestamp, nil
}

// GetSlot returns the slot of the last update.
func (p *Provider) GetSlot(address solana.PublicKey) (uint64, error) {
	a, err := p.Account(address)
	if err != nil {
		return 0, err
	}
	return a.LastSlot, nil
}

// SimulateCrash lowers the price by percent and widens the confidence interval.
func (p *Provider) SimulateCrash(address solana.PublicKey, percent float64) error {
	price, conf, err := p.GetPrice(address)
	if err != nil {
		return err
	}
	crashed, err := oracle.CrashRaw(price, percent)
	if err != nil {
		return err
	}
	return p.SetPrice(address, crashed, oracle.CrashRawConfidence(conf))
}

// SimulateDepeg moves the price to target.
func (p *Provider) SimulateDepeg(address solana.PublicKey, target float64) error {
	if _, _, err := p.GetPrice(address); err != nil {
		return err
	}
	return p.SetPriceUSD(address, target, oracle.DepegConfidence(target))
}

// publish shifts the aggregate into the prev_* fields, writes the new
// aggregate and folds it into the EMA with weight 1/10.
func (a *PriceAccount) publish(price int64, conf uint64, clock oracle.Clock) {
	a.PrevPrice = a.Aggregate.Price
	a.PrevConf = a.Aggregate.Conf
	a.PrevTimestamp = a.Timestamp
	a.PrevSlot = a.LastSlot

	a.Aggregate.Price = price
	a.Aggregate.Conf = conf
	a.LastSlot = clock.Slot
	a.ValidSlot = clock.Slot
	a.Aggregate.PublishSlot = clock.Slot
	a.Timestamp = clock.UnixTimestamp

	a.EMAPrice = emaStep(decimal.NewFromInt(a.EMAPrice), decimal.NewFromInt(price)).IntPart()
	a.EMAConf = emaStep(unsigned(a.EMAConf), unsigned(conf)).BigInt().Uint64()
}

func emaStep(ema, next decimal.Decimal) decimal.Decimal {
	return ema.Mul(decimal.NewFromInt(9)).Add(next).Div(decimal.NewFromInt(10)).Truncate(0)
}

func unsigned(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
