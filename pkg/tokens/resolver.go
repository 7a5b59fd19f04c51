package tokens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"walletguard/pkg/wallet"
)

var (
	// ErrInvalidAddress means the token address is not a well-formed
	// hex address. Rejected before any network call.
	ErrInvalidAddress = errors.New("invalid token address")

	// ErrNoContractAtAddress means the address holds no bytecode. A zero
	// balance and "not a token" are different user-facing states, so this
	// never degrades into a zero-balance success.
	ErrNoContractAtAddress = errors.New("no contract found at address")
)

// ERC-20 read-side ABI: metadata plus balanceOf.
const erc20ReadABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}
]`

// ERC-20 transfer ABI, used by the transfer pipeline to build calldata.
const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// Info is the resolved metadata and balance for one token and account at
// one point in time. It is recomputed on demand, never cached: callers
// re-resolve after anything balance-affecting.
type Info struct {
	Name       string
	Symbol     string
	Decimals   uint8
	Balance    string
	RawBalance *big.Int
	Address    common.Address
}

// Resolver reads ERC-20 metadata and balances through the wallet provider.
// Resolution is idempotent and side-effect-free.
type Resolver struct {
	provider wallet.Provider
	readABI  abi.ABI
}

// NewResolver creates a resolver backed by the given provider.
func NewResolver(provider wallet.Provider) (*Resolver, error) {
	readABI, err := abi.JSON(strings.NewReader(erc20ReadABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &Resolver{provider: provider, readABI: readABI}, nil
}

// ValidateContract checks that the address is well-formed and has
// bytecode deployed, without reading any token metadata.
func (r *Resolver) ValidateContract(ctx context.Context, address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	addr := common.HexToAddress(address)

	code, err := r.provider.CodeAt(ctx, addr)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to check contract code: %w", err)
	}
	if len(code) == 0 {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNoContractAtAddress, address)
	}
	return addr, nil
}

// Resolve reads name, symbol, decimals, and the account's balance for the
// token at the given address, and formats the balance using the reported
// decimals. The four reads are independent and issued concurrently.
func (r *Resolver) Resolve(ctx context.Context, account common.Address, address string) (*Info, error) {
	addr, err := r.ValidateContract(ctx, address)
	if err != nil {
		return nil, err
	}

	info := &Info{Address: addr}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, err := r.callString(gctx, addr, "name")
		if err != nil {
			return fmt.Errorf("failed to read name: %w", err)
		}
		info.Name = name
		return nil
	})
	g.Go(func() error {
		symbol, err := r.callString(gctx, addr, "symbol")
		if err != nil {
			return fmt.Errorf("failed to read symbol: %w", err)
		}
		info.Symbol = symbol
		return nil
	})
	g.Go(func() error {
		decimals, err := r.Decimals(gctx, addr)
		if err != nil {
			return err
		}
		info.Decimals = decimals
		return nil
	})
	g.Go(func() error {
		balance, err := r.BalanceOf(gctx, addr, account)
		if err != nil {
			return err
		}
		info.RawBalance = balance
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	info.Balance = FormatUnits(info.RawBalance, info.Decimals)
	return info, nil
}

// Decimals reads the token's decimals.
func (r *Resolver) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := r.call(ctx, token, "decimals")
	if err != nil {
		return 0, fmt.Errorf("failed to read decimals: %w", err)
	}

	values, err := r.readABI.Unpack("decimals", out)
	if err != nil {
		return 0, fmt.Errorf("failed to decode decimals: %w", err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", values[0])
	}
	return decimals, nil
}

// BalanceOf reads the token balance of an account.
func (r *Resolver) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	out, err := r.call(ctx, token, "balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	values, err := r.readABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode balance: %w", err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balance type %T", values[0])
	}
	return balance, nil
}

// TransferCalldata encodes an ERC-20 transfer(to, amount) call.
func TransferCalldata(to common.Address, amount *big.Int) ([]byte, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer ABI: %w", err)
	}
	data, err := parsed.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer data: %w", err)
	}
	return data, nil
}

func (r *Resolver) callString(ctx context.Context, token common.Address, method string) (string, error) {
	out, err := r.call(ctx, token, method)
	if err != nil {
		return "", err
	}
	values, err := r.readABI.Unpack(method, out)
	if err != nil {
		return "", err
	}
	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected %s type %T", method, values[0])
	}
	return s, nil
}

func (r *Resolver) call(ctx context.Context, token common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := r.readABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	return r.provider.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data})
}
