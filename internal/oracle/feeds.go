package oracle

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// FeedTable holds well-known feed addresses for one provider. A zero address
// means the provider has no well-known feed for that asset.
type FeedTable struct {
	SOL  solana.PublicKey
	BTC  solana.PublicKey
	ETH  solana.PublicKey
	USDC solana.PublicKey
	USDT solana.PublicKey
}

// Mainnet feed addresses, so test code can address mocks the way production does.
var (
	PythMainnet = FeedTable{
		SOL:  solana.MustPublicKeyFromBase58("H6ARHf6YXhGYeQfUzQNGk6rDNnLBQKrenN712K4AQJEG"),
		BTC:  solana.MustPublicKeyFromBase58("GVXRSBjFk6e6J3NbVPXohDJetcTjaeeuykUpbQF8UoMU"),
		ETH:  solana.MustPublicKeyFromBase58("JBu1AL4obBcCMqKBBxhpWCNUt136ijcuMZLFvTP7iWdB"),
		USDC: solana.MustPublicKeyFromBase58("Gnt27xtC473ZT2Mw5u8wZ68Z3gULkSTb5DuxJy7eJotD"),
		USDT: solana.MustPublicKeyFromBase58("3vxLXJqLqF3JG5TCbYycbKWRBbCJQLxQmBGCkyqEEefL"),
	}

	SwitchboardMainnet = FeedTable{
		SOL: solana.MustPublicKeyFromBase58("GvDMxPzN1sCj7L26YDK2HnMRXEQmQ2aemov8YBtPS7vR"),
		BTC: solana.MustPublicKeyFromBase58("8SXvChNYFhRq4EZuZvnhjrB3jJRQCv4k3P4W6hesH3Ee"),
		ETH: solana.MustPublicKeyFromBase58("HNStfhaLnqwF2ZtJUizaA9uHDAVB976r2AgTUx9LrdEo"),
	}

	ChainlinkMainnet = FeedTable{
		SOL: solana.MustPublicKeyFromBase58("CcPVS9bqyXbD9cLnTbhhHazLsrua8QMFUHTutPtjyDzq"),
		BTC: solana.MustPublicKeyFromBase58("CGmWwBNsTRDENT5gmVZzRu38GnNnMm1K5C3sFiUUyYQX"),
		ETH: solana.MustPublicKeyFromBase58("5JcBbyiwxPxFMvNJHLxLqg5LPZeC4sC3VdWFfaKManYm"),
	}
)

// StandardFeeds holds the addresses created by CreateStandardFeeds.
type StandardFeeds struct {
	SOL  solana.PublicKey
	BTC  solana.PublicKey
	ETH  solana.PublicKey
	USDC solana.PublicKey
	USDT solana.PublicKey
}

// StandardAsset is one entry of the standard feed set.
type StandardAsset struct {
	Symbol string
	Conf   Conf
}

// StandardAssets returns the standard feed set: a base asset, two majors and
// two stablecoins.
func StandardAssets() []StandardAsset {
	return []StandardAsset{
		{Symbol: "SOL", Conf: NewUSD(100.0, 0.1)},
		{Symbol: "BTC", Conf: NewUSD(43000.0, 10.0)},
		{Symbol: "ETH", Conf: NewUSD(2200.0, 1.0)},
		{Symbol: "USDC", Conf: Stablecoin()},
		{Symbol: "USDT", Conf: Stablecoin()},
	}
}

// Address returns the table entry for symbol.
func (t FeedTable) Address(symbol string) solana.PublicKey {
	switch symbol {
	case "SOL":
		return t.SOL
	case "BTC":
		return t.BTC
	case "ETH":
		return t.ETH
	case "USDC":
		return t.USDC
	case "USDT":
		return t.USDT
	}
	return solana.PublicKey{}
}

// Set stores address under symbol.
func (f *StandardFeeds) Set(symbol string, address solana.PublicKey) error {
	switch symbol {
	case "SOL":
		f.SOL = address
	case "BTC":
		f.BTC = address
	case "ETH":
		f.ETH = address
	case "USDC":
		f.USDC = address
	case "USDT":
		f.USDT = address
	default:
		return fmt.Errorf("unknown standard asset %q", symbol)
	}
	return nil
}

// CreateFunc creates a feed for conf. A zero address asks for a random one.
type CreateFunc func(address solana.PublicKey, conf Conf) (solana.PublicKey, error)

// CreateStandard creates every standard asset through create, at the table's
// address when it has one.
func CreateStandard(table FeedTable, create CreateFunc) (StandardFeeds, error) {
	var feeds StandardFeeds
	for _, asset := range StandardAssets() {
		conf := asset.Conf.WithDescription(asset.Symbol + " / USD")
		address, err := create(table.Address(asset.Symbol), conf)
		if err != nil {
			return StandardFeeds{}, fmt.Errorf("create %s feed: %w", asset.Symbol, err)
		}
		if err := feeds.Set(asset.Symbol, address); err != nil {
			return StandardFeeds{}, err
		}
	}
	return feeds, nil
}
