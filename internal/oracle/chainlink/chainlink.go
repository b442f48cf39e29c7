// Package chainlink writes mock Chainlink transmissions accounts into a ledger.
//
// Every price update opens a new round; the account keeps the last
// RingLength rounds so GetRoundData can serve recent history. Chainlink feeds
// carry no confidence interval.
package chainlink

import (
	"math/big"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/gagliardetto/solana-go"
)

// RoundData is one historical round of a feed.
type RoundData struct {
	RoundID   uint32
	Answer    *big.Int
	Slot      uint64
	Timestamp uint32
}

// Provider manages mock Chainlink feeds in one ledger.
type Provider struct {
	registry *oracle.Registry
}

// New creates a Chainlink provider bound to ledger.
func New(ledger oracle.Ledger, opts ...oracle.Option) *Provider {
	return &Provider{
		registry: oracle.NewRegistry(oracle.ProviderChainlink, ledger, oracle.ChainlinkProgramID, opts...),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return oracle.ProviderChainlink
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

// CreatePriceFeed writes a new feed at a random address. Confidence is ignored.
func (p *Provider) CreatePriceFeed(conf oracle.Conf) (solana.PublicKey, error) {
	address := p.registry.NewAddress()
	if err := p.CreatePriceFeedAt(address, conf); err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

// CreatePriceFeedAt writes a new feed at address, starting at round 1.
func (p *Provider) CreatePriceFeedAt(address solana.PublicKey, conf oracle.Conf) error {
	feed, err := NewFeed(conf, p.registry.Clock())
	if err != nil {
		return err
	}
	data, err := feed.Bytes()
	if err != nil {
		return err
	}
	return p.registry.Create(address, data)
}

// CreateStandardFeeds creates SOL, BTC and ETH at their mainnet addresses and
// the stablecoin feeds at random addresses.
func (p *Provider) CreateStandardFeeds() (oracle.StandardFeeds, error) {
	return oracle.CreateStandard(oracle.ChainlinkMainnet, func(address solana.PublicKey, conf oracle.Conf) (solana.PublicKey, error) {
		if address.IsZero() {
			return p.CreatePriceFeed(conf)
		}
		return address, p.CreatePriceFeedAt(address, conf)
	})
}

// Adopt registers a transmissions account already present in the ledger.
func (p *Provider) Adopt(address solana.PublicKey) error {
	return p.registry.Adopt(address, func(data []byte) error {
		_, err := Decode(data)
		return err
	})
}

// Feed returns the decoded feed at address.
func (p *Provider) Feed(address solana.PublicKey) (*Feed, error) {
	data, err := p.registry.Load(address)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (p *Provider) update(address solana.PublicKey, mutate func(*Feed) error) error {
	return p.registry.Update(address, func(data []byte) error {
		feed, err := Decode(data)
		if err != nil {
			return err
		}
		if err := mutate(feed); err != nil {
			return err
		}
		return feed.Encode(data)
	})
}

// SetPrice opens a new round with value, scaled by the feed's decimals.
func (p *Provider) SetPrice(address solana.PublicKey, value float64) error {
	clock := p.registry.Clock()
	return p.update(address, func(f *Feed) error {
		ts, err := Timestamp32(clock.UnixTimestamp)
		if err != nil {
			return err
		}
		answer, err := oracle.ToScaled(value, f.Decimals)
		if err != nil {
			return err
		}
		return f.Transmit(answer, clock.Slot, ts)
	})
}

// SetPriceUSD is SetPrice; the confidence argument is ignored.
func (p *Provider) SetPriceUSD(address solana.PublicKey, value, _ float64) error {
	return p.SetPrice(address, value)
}

// GetPrice returns the latest answer in quote units.
func (p *Provider) GetPrice(address solana.PublicKey) (float64, error) {
	f, err := p.Feed(address)
	if err != nil {
		return 0, err
	}
	return f.Price(), nil
}

// GetPriceUSD returns the latest answer and a zero confidence.
func (p *Provider) GetPriceUSD(address solana.PublicKey) (float64, float64, error) {
	price, err := p.GetPrice(address)
	return price, 0, err
}

// GetLatestAnswer returns the latest answer as a scaled integer.
func (p *Provider) GetLatestAnswer(address solana.PublicKey) (*big.Int, error) {
	f, err := p.Feed(address)
	if err != nil {
		return nil, err
	}
	return f.Latest.Answer, nil
}

// GetDecimals returns the feed's decimals.
func (p *Provider) GetDecimals(address solana.PublicKey) (uint8, error) {
	f, err := p.Feed(address)
	if err != nil {
		return 0, err
	}
	return f.Decimals, nil
}

// GetLatestRound returns the latest round id.
func (p *Provider) GetLatestRound(address solana.PublicKey) (uint32, error) {
	f, err := p.Feed(address)
	if err != nil {
		return 0, err
	}
	return f.LatestRound, nil
}

// GetRoundData returns a recent round. Rounds older than the ring fail with
// ErrRoundNotFound.
func (p *Provider) GetRoundData(address solana.PublicKey, round uint32) (RoundData, error) {
	data, err := p.registry.Load(address)
	if err != nil {
		return RoundData{}, err
	}
	t, err := ReadRound(data, round)
	if err != nil {
		return RoundData{}, err
	}
	return RoundData{RoundID: round, Answer: t.Answer, Slot: t.Slot, Timestamp: t.Timestamp}, nil
}

// GetTimestamp returns the timestamp of the latest round.
func (p *Provider) GetTimestamp(address solana.PublicKey) (int64, error) {
	f, err := p.Feed(address)
	if err != nil {
		return 0, err
	}
	return int64(f.Latest.Timestamp), nil
}

// GetSlot returns the slot of the latest round.
func (p *Provider) GetSlot(address solana.PublicKey) (uint64, error) {
	f, err := p.Feed(address)
	if err != nil {
		return 0, err
	}
	return f.Latest.Slot, nil
}

// MakeStale moves the latest round's timestamp secondsAgo before the ledger
// clock. No round is opened.
func (p *Provider) MakeStale(address solana.PublicKey, secondsAgo int64) error {
	now := p.registry.Clock().UnixTimestamp
	return p.update(address, func(f *Feed) error {
		ts, err := Timestamp32(now - secondsAgo)
		if err != nil {
			return err
		}
		f.Latest.Timestamp = ts
		return nil
	})
}

// SimulateCrash opens a round with the answer lowered by percent.
func (p *Provider) SimulateCrash(address solana.PublicKey, percent float64) error {
	price, err := p.GetPrice(address)
	if err != nil {
		return err
	}
	crashed, err := oracle.CrashPrice(price, percent)
	if err != nil {
		return err
	}
	return p.SetPrice(address, crashed)
}

// SimulateDepeg opens a round with the answer at target.
func (p *Provider) SimulateDepeg(address solana.PublicKey, target float64) error {
	if _, err := p.GetPrice(address); err != nil {
		return err
	}
	return p.SetPrice(address, target)
}
