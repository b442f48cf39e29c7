package oracle

import "github.com/gagliardetto/solana-go"

// Owner program IDs used when writing feed accounts (mainnet deployments).
var (
	PythProgramID                = solana.MustPublicKeyFromBase58("FsJ3A3u2vn5cTVofAjvy6y5kwABJAqYWpe4975bi2epH")
	SwitchboardProgramID         = solana.MustPublicKeyFromBase58("SW1TCH7qEPTdLsDHRgPuMQjbQxKdH2aBStViMFnt64f")
	SwitchboardOnDemandProgramID = solana.MustPublicKeyFromBase58("SBondMDrcV3K4kxZR1HNVT7osZxAHVHgYXL5Ze1oMUv")
	ChainlinkProgramID           = solana.MustPublicKeyFromBase58("HEvSKofvBgfaexv23kMabbYqxasxU3mQ4ibBMEmJWHny")
	ChainlinkStoreProgramID      = solana.MustPublicKeyFromBase58("CaH12fwNTKJAG8PxEvo9R96Zc2j8Jq3Q5K9B7tTFQ2by")
)

// Provider names, used in logs, errors and the CLI.
const (
	ProviderPyth        = "pyth"
	ProviderSwitchboard = "switchboard"
	ProviderChainlink   = "chainlink"
)

// Providers lists every provider name in a stable order.
var Providers = []string{ProviderPyth, ProviderSwitchboard, ProviderChainlink}
