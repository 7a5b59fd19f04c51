package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSepoliaPolicy(t *testing.T) {
	p := Sepolia()

	assert.Equal(t, "0xaa36a7", p.HexChainID())
	assert.True(t, p.Matches(big.NewInt(11155111)))
	assert.False(t, p.Matches(big.NewInt(1)))
	assert.False(t, p.Matches(nil))
	assert.NotEmpty(t, p.RPCURLs)
	assert.Equal(t, uint8(18), p.NativeCurrency.Decimals)
}

func TestExplorerTxURL(t *testing.T) {
	p := Sepolia()
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc", p.ExplorerTxURL("0xabc"))

	p.ExplorerURLs = nil
	assert.Empty(t, p.ExplorerTxURL("0xabc"))
}
