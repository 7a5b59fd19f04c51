// Package wallettest provides fake wallet providers for tests.
package wallettest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"walletguard/pkg/chain"
	"walletguard/pkg/wallet"
)

// FakeProvider is an in-memory wallet.Provider with scriptable failures
// and call counters.
type FakeProvider struct {
	mu sync.Mutex

	Accounts    []common.Address
	Chain       *big.Int
	KnownChains map[string]bool
	Balances    map[common.Address]*big.Int
	Code        map[common.Address][]byte
	CallFn      func(msg ethereum.CallMsg) ([]byte, error)

	RequestAccountsErr error
	SwitchChainErr     error
	AddChainErr        error
	SendErr            error
	SendHash           common.Hash

	SwitchChainCalls int
	AddChainCalls    int
	BalanceCalls     int
	SendCalls        int
	SentTxs          []wallet.TxRequest

	handlers  map[int]wallet.EventHandlers
	nextSubID int
}

// NewFakeProvider returns a provider with one account on the given chain.
func NewFakeProvider(account common.Address, chainID *big.Int) *FakeProvider {
	return &FakeProvider{
		Accounts:    []common.Address{account},
		Chain:       chainID,
		KnownChains: map[string]bool{fmt.Sprintf("0x%x", chainID): true},
		Balances:    make(map[common.Address]*big.Int),
		Code:        make(map[common.Address][]byte),
		handlers:    make(map[int]wallet.EventHandlers),
	}
}

func (f *FakeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if f.RequestAccountsErr != nil {
		return nil, f.RequestAccountsErr
	}
	return f.Accounts, nil
}

func (f *FakeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.Chain), nil
}

func (f *FakeProvider) SwitchChain(ctx context.Context, hexChainID string) error {
	f.mu.Lock()
	f.SwitchChainCalls++
	f.mu.Unlock()

	if f.SwitchChainErr != nil {
		return f.SwitchChainErr
	}
	if !f.KnownChains[hexChainID] {
		return &wallet.ProviderError{Code: wallet.CodeUnrecognizedChain, Message: "unrecognized chain"}
	}
	f.setChain(hexChainID)
	return nil
}

func (f *FakeProvider) AddChain(ctx context.Context, policy chain.Policy) error {
	f.mu.Lock()
	f.AddChainCalls++
	f.mu.Unlock()

	if f.AddChainErr != nil {
		return f.AddChainErr
	}
	f.KnownChains[policy.HexChainID()] = true
	f.setChain(policy.HexChainID())
	return nil
}

func (f *FakeProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BalanceCalls++
	if b, ok := f.Balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (f *FakeProvider) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return f.Code[account], nil
}

func (f *FakeProvider) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if f.CallFn == nil {
		return nil, fmt.Errorf("no contract call handler configured")
	}
	return f.CallFn(msg)
}

func (f *FakeProvider) SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SendCalls++
	if f.SendErr != nil {
		return common.Hash{}, f.SendErr
	}
	f.SentTxs = append(f.SentTxs, tx)
	return f.SendHash, nil
}

func (f *FakeProvider) Subscribe(handlers wallet.EventHandlers) func() {
	f.mu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.handlers[id] = handlers
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.handlers, id)
		f.mu.Unlock()
	}
}

// SubscriberCount reports how many subscriptions are live.
func (f *FakeProvider) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// EmitAccountsChanged pushes an accountsChanged event to subscribers.
func (f *FakeProvider) EmitAccountsChanged(accounts []common.Address) {
	for _, h := range f.snapshotHandlers() {
		if h.OnAccountsChanged != nil {
			h.OnAccountsChanged(accounts)
		}
	}
}

// EmitChainChanged pushes a chainChanged event to subscribers.
func (f *FakeProvider) EmitChainChanged(chainID *big.Int) {
	for _, h := range f.snapshotHandlers() {
		if h.OnChainChanged != nil {
			h.OnChainChanged(chainID)
		}
	}
}

func (f *FakeProvider) setChain(hexChainID string) {
	chainID, ok := new(big.Int).SetString(strings.TrimPrefix(hexChainID, "0x"), 16)
	if !ok {
		return
	}
	f.mu.Lock()
	f.Chain = chainID
	f.mu.Unlock()
	f.EmitChainChanged(chainID)
}

func (f *FakeProvider) snapshotHandlers() []wallet.EventHandlers {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]wallet.EventHandlers, 0, len(f.handlers))
	for _, h := range f.handlers {
		out = append(out, h)
	}
	return out
}

// FakeERC20 answers the read-side ERC-20 calls the resolver issues. Wire
// its Call method into FakeProvider.CallFn.
type FakeERC20 struct {
	Name     string
	Symbol   string
	Decimals uint8
	Balances map[common.Address]*big.Int

	readABI abi.ABI
}

const erc20ReadABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}
]`

// NewFakeERC20 builds a fake token contract.
func NewFakeERC20(name, symbol string, decimals uint8) *FakeERC20 {
	readABI, err := abi.JSON(strings.NewReader(erc20ReadABI))
	if err != nil {
		panic(err)
	}
	return &FakeERC20{
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
		Balances: make(map[common.Address]*big.Int),
		readABI:  readABI,
	}
}

// Call dispatches an eth_call to the fake token by method selector.
func (t *FakeERC20) Call(msg ethereum.CallMsg) ([]byte, error) {
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("missing selector")
	}

	for name, method := range t.readABI.Methods {
		if string(method.ID) != string(msg.Data[:4]) {
			continue
		}
		switch name {
		case "name":
			return method.Outputs.Pack(t.Name)
		case "symbol":
			return method.Outputs.Pack(t.Symbol)
		case "decimals":
			return method.Outputs.Pack(t.Decimals)
		case "balanceOf":
			args, err := method.Inputs.Unpack(msg.Data[4:])
			if err != nil {
				return nil, err
			}
			owner := args[0].(common.Address)
			balance, ok := t.Balances[owner]
			if !ok {
				balance = big.NewInt(0)
			}
			return method.Outputs.Pack(balance)
		}
	}
	return nil, fmt.Errorf("unknown method selector %x", msg.Data[:4])
}
