package domain

import "fmt"

// chainNames maps chain IDs to the labels recorded on ledger rows.
var chainNames = map[int64]string{
	1:        "Ethereum Mainnet",
	10:       "Optimism",
	137:      "Polygon",
	8453:     "Base",
	42161:    "Arbitrum One",
	84532:    "Base Sepolia",
	11155111: "Ethereum Sepolia",
	5042002:  "Arc Testnet",
}

// ChainName returns the human-readable network name for a chain ID.
// Unknown chains render as "Chain <id>" rather than failing.
func ChainName(chainID int64) string {
	if name, ok := chainNames[chainID]; ok {
		return name
	}
	return fmt.Sprintf("Chain %d", chainID)
}
