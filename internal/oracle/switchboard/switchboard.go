// Package switchboard writes mock Switchboard aggregator accounts into a ledger.
//
// Only the latest confirmed round is populated; the result and its standard
// deviation share the scale given by Conf.Decimals.
package switchboard

import (
	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/gagliardetto/solana-go"
)

// Provider manages mock Switchboard aggregators in one ledger.
type Provider struct {
	registry *oracle.Registry
}

// New creates a Switchboard provider bound to ledger.
func New(ledger oracle.Ledger, opts ...oracle.Option) *Provider {
	return &Provider{
		registry: oracle.NewRegistry(oracle.ProviderSwitchboard, ledger, oracle.SwitchboardProgramID, opts...),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return oracle.ProviderSwitchboard
}

// ProgramID returns the owner of the accounts this provider writes.
func (p *Provider) ProgramID() solana.PublicKey {
	return p.registry.ProgramID()
}

// Feeds returns the registered aggregator addresses.
func (p *Provider) Feeds() []solana.PublicKey {
	return p.registry.Feeds()
}

// Owns reports whether address is a registered aggregator still owned by the program.
func (p *Provider) Owns(address solana.PublicKey) bool {
	return p.registry.Owns(address)
}

// CreatePriceFeed writes a new aggregator at a random address.
func (p *Provider) CreatePriceFeed(conf oracle.Conf) (solana.PublicKey, error) {
	address := p.registry.NewAddress()
	if err := p.CreatePriceFeedAt(address, conf); err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

// CreatePriceFeedAt writes a new aggregator at address.
func (p *Provider) CreatePriceFeedAt(address solana.PublicKey, conf oracle.Conf) error {
	agg, err := NewAggregator(conf, p.registry.Clock())
	if err != nil {
		return err
	}
	data, err := agg.Bytes()
	if err != nil {
		return err
	}
	return p.registry.Create(address, data)
}

// CreateStandardFeeds creates SOL, BTC and ETH at their mainnet addresses and
// the stablecoin feeds at random addresses.
func (p *Provider) CreateStandardFeeds() (oracle.StandardFeeds, error) {
	return oracle.CreateStandard(oracle.SwitchboardMainnet, func(address solana.PublicKey, conf oracle.Conf) (solana.PublicKey, error) {
		if address.IsZero() {
			return p.CreatePriceFeed(conf)
		}
		return address, p.CreatePriceFeedAt(address, conf)
	})
}

// Adopt registers an aggregator already present in the ledger.
func (p *Provider) Adopt(address solana.PublicKey) error {
	return p.registry.Adopt(address, func(data []byte) error {
		_, err := Decode(data)
		return err
	})
}

// Aggregator returns the decoded aggregator at address.
func (p *Provider) Aggregator(address solana.PublicKey) (*Aggregator, error) {
	data, err := p.registry.Load(address)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// SetPrice writes a new result and standard deviation at the feed's existing
// scale and stamps the round with the ledger clock.
func (p *Provider) SetPrice(address solana.PublicKey, value, stdDev float64) error {
	clock := p.registry.Clock()
	return p.registry.Update(address, func(data []byte) error {
		agg, err := Decode(data)
		if err != nil {
			return err
		}
		if stdDev < 0 {
			return oracle.Invalidf("standard deviation %v is negative", stdDev)
		}
		if agg.Result.Scale > uint32(oracle.MaxDecimals) {
			return oracle.Invalidf("switchboard scale %d exceeds %d", agg.Result.Scale, oracle.MaxDecimals)
		}
		decimals := uint8(agg.Result.Scale)
		if agg.Result, err = NewDecimal(value, decimals); err != nil {
			return err
		}
		if agg.StdDeviation, err = NewDecimal(stdDev, decimals); err != nil {
			return err
		}
		agg.Slot = clock.Slot
		agg.Timestamp = clock.UnixTimestamp
		return agg.Encode(data)
	})
}

// SetPriceUSD is SetPrice; Switchboard values are already in quote units.
func (p *Provider) SetPriceUSD(address solana.PublicKey, value, stdDev float64) error {
	return p.SetPrice(address, value, stdDev)
}

// GetPrice returns the latest result and standard deviation.
func (p *Provider) GetPrice(address solana.PublicKey) (float64, float64, error) {
	agg, err := p.Aggregator(address)
	if err != nil {
		return 0, 0, err
	}
	return agg.Result.Float(), agg.StdDeviation.Float(), nil
}

// GetPriceUSD is GetPrice.
func (p *Provider) GetPriceUSD(address solana.PublicKey) (float64, float64, error) {
	return p.GetPrice(address)
}

// GetTimestamp returns the open timestamp of the latest confirmed round.
func (p *Provider) GetTimestamp(address solana.PublicKey) (int64, error) {
	agg, err := p.Aggregator(address)
	if err != nil {
		return 0, err
	}
	return agg.Timestamp, nil
}

// GetSlot returns the open slot of the latest confirmed round.
func (p *Provider) GetSlot(address solana.PublicKey) (uint64, error) {
	agg, err := p.Aggregator(address)
	if err != nil {
		return 0, err
	}
	return agg.Slot, nil
}

// MakeStale moves the round timestamp secondsAgo before the ledger clock.
func (p *Provider) MakeStale(address solana.PublicKey, secondsAgo int64) error {
	now := p.registry.Clock().UnixTimestamp
	return p.registry.Update(address, func(data []byte) error {
		agg, err := Decode(data)
		if err != nil {
			return err
		}
		agg.Timestamp = now - secondsAgo
		return agg.Encode(data)
	})
}

// SimulateCrash lowers the result by percent and widens the standard deviation.
func (p *Provider) SimulateCrash(address solana.PublicKey, percent float64) error {
	value, stdDev, err := p.GetPrice(address)
	if err != nil {
		return err
	}
	crashed, err := oracle.CrashPrice(value, percent)
	if err != nil {
		return err
	}
	return p.SetPrice(address, crashed, oracle.CrashConfidence(stdDev))
}

// SimulateDepeg moves the result to target.
func (p *Provider) SimulateDepeg(address solana.PublicKey, target float64) error {
	if _, _, err := p.GetPrice(address); err != nil {
		return err
	}
	return p.SetPrice(address, target, oracle.DepegConfidence(target))
}
