package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"walletguard/pkg/chain"
)

// TxRequest describes a transaction for the provider to sign and broadcast.
// Value pays native currency; Data carries an optional contract call.
type TxRequest struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// EventHandlers receives provider push events. Either handler may be nil.
type EventHandlers struct {
	OnAccountsChanged func(accounts []common.Address)
	OnChainChanged    func(chainID *big.Int)
}

// Provider is the wallet the application talks to. It mirrors the injected
// provider contract of a browser wallet: account access, chain negotiation,
// read calls, transaction submission, and push events with a revocable
// subscription.
type Provider interface {
	// RequestAccounts asks the wallet for account access.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// ChainID returns the chain the wallet is currently on.
	ChainID(ctx context.Context) (*big.Int, error)

	// SwitchChain asks the wallet to move to the chain with the given
	// 0x-prefixed id. Fails with code 4902 when the chain is unknown.
	SwitchChain(ctx context.Context, hexChainID string) error

	// AddChain registers a chain with the wallet and selects it.
	AddChain(ctx context.Context, policy chain.Policy) error

	// BalanceAt returns the native balance of an account in wei.
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)

	// CodeAt returns the bytecode deployed at an address. Empty means no
	// contract lives there.
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)

	// CallContract executes a read-only contract call.
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)

	// SendTransaction signs and broadcasts a transaction, returning its
	// hash once the transaction is accepted. It does not wait for
	// confirmation.
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)

	// Subscribe registers for accountsChanged/chainChanged push events and
	// returns a function that revokes the subscription.
	Subscribe(handlers EventHandlers) (unsubscribe func())
}
