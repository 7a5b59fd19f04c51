package tokens_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletguard/pkg/tokens"
	"walletguard/pkg/wallet/wallettest"
)

var (
	holder    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenAddr = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func newTestResolver(t *testing.T) (*tokens.Resolver, *wallettest.FakeProvider, *wallettest.FakeERC20) {
	t.Helper()

	provider := wallettest.NewFakeProvider(holder, big.NewInt(11155111))
	token := wallettest.NewFakeERC20("MyToken", "MTK", 18)
	provider.Code[tokenAddr] = []byte{0x60, 0x80}
	provider.CallFn = token.Call

	resolver, err := tokens.NewResolver(provider)
	require.NoError(t, err)
	return resolver, provider, token
}

func TestResolveReadsMetadataAndBalance(t *testing.T) {
	resolver, _, token := newTestResolver(t)
	token.Balances[holder] = big.NewInt(1500000000000000000)

	info, err := resolver.Resolve(context.Background(), holder, tokenAddr.Hex())
	require.NoError(t, err)

	assert.Equal(t, "MyToken", info.Name)
	assert.Equal(t, "MTK", info.Symbol)
	assert.Equal(t, uint8(18), info.Decimals)
	assert.Equal(t, "1.5", info.Balance)
	assert.Equal(t, tokenAddr, info.Address)
}

func TestResolveZeroBalanceSucceeds(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	info, err := resolver.Resolve(context.Background(), holder, tokenAddr.Hex())
	require.NoError(t, err)
	assert.Equal(t, "0", info.Balance)
}

func TestResolveRejectsMalformedAddress(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), holder, "not-an-address")
	assert.ErrorIs(t, err, tokens.ErrInvalidAddress)
}

// An address with no bytecode is "not a token", which must stay distinct
// from a token with a zero balance.
func TestResolveFailsWithoutContract(t *testing.T) {
	resolver, _, _ := newTestResolver(t)
	empty := common.HexToAddress("0x4444444444444444444444444444444444444444")

	_, err := resolver.Resolve(context.Background(), holder, empty.Hex())
	assert.ErrorIs(t, err, tokens.ErrNoContractAtAddress)
}

// Resolution against unchanged chain state is idempotent.
func TestResolveIsIdempotent(t *testing.T) {
	resolver, _, token := newTestResolver(t)
	token.Balances[holder] = big.NewInt(42000000)

	first, err := resolver.Resolve(context.Background(), holder, tokenAddr.Hex())
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), holder, tokenAddr.Hex())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecimalsAndBalanceOf(t *testing.T) {
	resolver, _, token := newTestResolver(t)
	token.Decimals = 6
	token.Balances[holder] = big.NewInt(12340000)

	decimals, err := resolver.Decimals(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	balance, err := resolver.BalanceOf(context.Background(), tokenAddr, holder)
	require.NoError(t, err)
	assert.Equal(t, int64(12340000), balance.Int64())
}

func TestTransferCalldata(t *testing.T) {
	receiver := common.HexToAddress("0x5555555555555555555555555555555555555555")

	data, err := tokens.TransferCalldata(receiver, big.NewInt(1000))
	require.NoError(t, err)

	// transfer(address,uint256) selector plus two 32-byte words.
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, data[:4])
	assert.Len(t, data, 68)
}

func TestRegistry(t *testing.T) {
	r := tokens.NewRegistry("0x6666666666666666666666666666666666666666")

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "MYTOKEN", list[0].Key)

	link, err := r.Lookup("link")
	require.NoError(t, err)
	assert.Equal(t, "LINK", link.Symbol)

	_, err = r.Lookup("DOGE")
	assert.Error(t, err)
}

func TestRegistryWithoutLocalToken(t *testing.T) {
	r := tokens.NewRegistry("")

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "LINK", list[0].Key)

	_, err := r.Lookup("MYTOKEN")
	assert.Error(t, err)
}
