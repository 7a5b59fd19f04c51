package chain

import (
	"fmt"
	"math/big"
)

// NativeCurrency describes the chain's native asset for wallet prompts.
type NativeCurrency struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Policy is the static description of the one chain the application
// requires, including everything needed to ask a wallet to add it.
// Read-only after construction.
type Policy struct {
	ChainID        *big.Int
	DisplayName    string
	RPCURLs        []string
	ExplorerURLs   []string
	NativeCurrency NativeCurrency
}

// Sepolia returns the policy for the Sepolia test network.
func Sepolia() Policy {
	return Policy{
		ChainID:      big.NewInt(11155111),
		DisplayName:  "Sepolia Test Network",
		RPCURLs:      []string{"https://rpc.sepolia.org"},
		ExplorerURLs: []string{"https://sepolia.etherscan.io"},
		NativeCurrency: NativeCurrency{
			Name:     "SepoliaETH",
			Symbol:   "SEP",
			Decimals: 18,
		},
	}
}

// HexChainID returns the chain id in the 0x-prefixed form wallet
// switch/add requests expect (e.g. "0xaa36a7" for Sepolia).
func (p Policy) HexChainID() string {
	return fmt.Sprintf("0x%x", p.ChainID)
}

// Matches reports whether the given chain id satisfies the policy.
func (p Policy) Matches(chainID *big.Int) bool {
	return chainID != nil && p.ChainID.Cmp(chainID) == 0
}

// ExplorerTxURL returns a link to a transaction on the chain's explorer,
// or an empty string when no explorer is configured.
func (p Policy) ExplorerTxURL(txHash string) string {
	if len(p.ExplorerURLs) == 0 {
		return ""
	}
	return p.ExplorerURLs[0] + "/tx/" + txHash
}
