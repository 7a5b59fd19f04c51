package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"walletguard/pkg/chain"
)

// RPCProvider implements Provider over a JSON-RPC endpoint and a local
// signing key. It plays the role a browser extension plays for a dapp:
// it owns the key, tracks which chain it is pointed at, and pushes
// chainChanged events when that changes.
type RPCProvider struct {
	mu         sync.RWMutex
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	account    common.Address
	chainID    *big.Int

	// Known chains by hex id. SwitchChain only succeeds for chains
	// registered here or via AddChain.
	knownChains map[string][]string

	subscribers map[int]EventHandlers
	nextSubID   int
}

// NewRPCProvider connects to the RPC endpoint and derives the signing
// account from the private key.
func NewRPCProvider(rpcURL, privateKeyHex string) (*RPCProvider, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL is required")
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to get public key")
	}

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	return &RPCProvider{
		client:      client,
		privateKey:  privateKey,
		account:     crypto.PubkeyToAddress(*publicKey),
		chainID:     chainID,
		knownChains: map[string][]string{fmt.Sprintf("0x%x", chainID): {rpcURL}},
		subscribers: make(map[int]EventHandlers),
	}, nil
}

// RequestAccounts returns the account derived from the configured key.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return []common.Address{p.account}, nil
}

// ChainID returns the chain of the currently selected endpoint.
func (p *RPCProvider) ChainID(ctx context.Context) (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.chainID), nil
}

// SwitchChain re-points the provider at an endpoint for the requested
// chain. Chains it has no endpoint for fail with code 4902, matching the
// injected-wallet contract.
func (p *RPCProvider) SwitchChain(ctx context.Context, hexChainID string) error {
	p.mu.Lock()
	if fmt.Sprintf("0x%x", p.chainID) == hexChainID {
		p.mu.Unlock()
		return nil
	}
	urls, known := p.knownChains[hexChainID]
	p.mu.Unlock()

	if !known || len(urls) == 0 {
		return &ProviderError{Code: CodeUnrecognizedChain, Message: fmt.Sprintf("unrecognized chain %s", hexChainID)}
	}

	return p.selectEndpoint(ctx, urls[0], hexChainID)
}

// AddChain registers the chain described by the policy and selects it.
func (p *RPCProvider) AddChain(ctx context.Context, policy chain.Policy) error {
	if len(policy.RPCURLs) == 0 {
		return fmt.Errorf("chain %s has no RPC URLs", policy.DisplayName)
	}

	hexID := policy.HexChainID()
	p.mu.Lock()
	p.knownChains[hexID] = policy.RPCURLs
	p.mu.Unlock()

	return p.selectEndpoint(ctx, policy.RPCURLs[0], hexID)
}

// selectEndpoint dials a new endpoint, verifies it serves the expected
// chain, swaps it in, and notifies chainChanged subscribers.
func (p *RPCProvider) selectEndpoint(ctx context.Context, rpcURL, hexChainID string) error {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to read chain id from %s: %w", rpcURL, err)
	}
	if fmt.Sprintf("0x%x", chainID) != hexChainID {
		client.Close()
		return fmt.Errorf("endpoint %s serves chain 0x%x, expected %s", rpcURL, chainID, hexChainID)
	}

	p.mu.Lock()
	old := p.client
	p.client = client
	p.chainID = chainID
	handlers := p.snapshotSubscribers()
	p.mu.Unlock()

	if old != nil {
		old.Close()
	}

	for _, h := range handlers {
		if h.OnChainChanged != nil {
			h.OnChainChanged(new(big.Int).Set(chainID))
		}
	}

	return nil
}

// BalanceAt returns the native balance of an account in wei.
func (p *RPCProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return p.currentClient().BalanceAt(ctx, account, nil)
}

// CodeAt returns the bytecode deployed at an address.
func (p *RPCProvider) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return p.currentClient().CodeAt(ctx, account, nil)
}

// CallContract executes a read-only contract call.
func (p *RPCProvider) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return p.currentClient().CallContract(ctx, msg, nil)
}

// SendTransaction builds, signs, and broadcasts a transaction from the
// provider's account. It returns as soon as the transaction is accepted.
func (p *RPCProvider) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	p.mu.RLock()
	client := p.client
	from := p.account
	chainID := new(big.Int).Set(p.chainID)
	key := p.privateKey
	p.mu.RUnlock()

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit := uint64(21000)
	if len(req.Data) > 0 {
		gasLimit = 100000
		msg := ethereum.CallMsg{From: from, To: &req.To, Value: value, Data: req.Data}
		if estimated, err := client.EstimateGas(ctx, msg); err == nil {
			gasLimit = estimated * 120 / 100
		}
	}

	tx := types.NewTransaction(nonce, req.To, value, gasLimit, gasPrice, req.Data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash(), nil
}

// Subscribe registers event handlers and returns a revoking function.
func (p *RPCProvider) Subscribe(handlers EventHandlers) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = handlers
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// Close closes the underlying RPC connection.
func (p *RPCProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

func (p *RPCProvider) currentClient() *ethclient.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// snapshotSubscribers copies the handler list; callers must hold the lock.
func (p *RPCProvider) snapshotSubscribers() []EventHandlers {
	out := make([]EventHandlers, 0, len(p.subscribers))
	for _, h := range p.subscribers {
		out = append(out, h)
	}
	return out
}
