package refresh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"walletguard/pkg/tokens"
	"walletguard/pkg/wallet"
)

const etherDecimals = 18

// CustomKey selects a user-supplied token address instead of a registry
// entry.
const CustomKey = "CUSTOM"

// Selection names the token whose balance should be shown alongside ETH.
type Selection struct {
	Key           string
	CustomAddress string
}

// Snapshot is the UI-visible balance state. TokenBalance stays "0" when
// the token could not be resolved; TokenErr says why, so an unresolvable
// token is never mistaken for an empty one.
type Snapshot struct {
	EthBalance   string
	TokenSymbol  string
	TokenBalance string
	TokenInfo    *tokens.Info
	TokenErr     error
}

// Refresher recomputes displayed balances from fresh chain state. It is
// read-only and safe to re-run concurrently with itself: the newest
// refresh wins on the stored snapshot.
type Refresher struct {
	provider wallet.Provider
	session  *wallet.Manager
	resolver *tokens.Resolver
	registry *tokens.Registry

	mu        sync.Mutex
	snap      Snapshot
	nextSeq   uint64
	storedSeq uint64
}

// NewRefresher wires a refresher over the session, resolver, and registry.
func NewRefresher(provider wallet.Provider, session *wallet.Manager, resolver *tokens.Resolver, registry *tokens.Registry) *Refresher {
	return &Refresher{
		provider: provider,
		session:  session,
		resolver: resolver,
		registry: registry,
		snap:     emptySnapshot(),
	}
}

// Refresh re-reads the ETH balance and the selected token's info for the
// current session account, stores the result, and returns it.
func (r *Refresher) Refresh(ctx context.Context, sel Selection) (Snapshot, error) {
	r.mu.Lock()
	r.nextSeq++
	seq := r.nextSeq
	r.mu.Unlock()

	// Fresh session snapshot per run; account/chain may have changed
	// since the last refresh.
	session := r.session.Snapshot()
	if !session.Connected {
		snap := emptySnapshot()
		r.store(seq, snap)
		return snap, nil
	}

	wei, err := r.provider.BalanceAt(ctx, session.Account)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get balance: %w", err)
	}

	snap := Snapshot{
		EthBalance:   tokens.FormatUnits(wei, etherDecimals),
		TokenBalance: "0",
	}

	address, symbol, selErr := r.tokenAddress(sel)
	if selErr != nil {
		snap.TokenErr = selErr
	} else if address != "" {
		snap.TokenSymbol = symbol
		info, resolveErr := r.resolver.Resolve(ctx, session.Account, address)
		switch {
		case resolveErr == nil:
			snap.TokenInfo = info
			snap.TokenBalance = info.Balance
			if snap.TokenSymbol == "" {
				snap.TokenSymbol = info.Symbol
			}
		case errors.Is(resolveErr, tokens.ErrNoContractAtAddress),
			errors.Is(resolveErr, tokens.ErrInvalidAddress):
			// Not a token. The displayed balance stays "0" and the
			// error is kept distinct from a genuine zero balance.
			snap.TokenErr = resolveErr
		default:
			return Snapshot{}, resolveErr
		}
	}

	r.store(seq, snap)
	return snap, nil
}

// Clear resets the stored snapshot, for disconnects and chain changes
// where all derived balances become meaningless.
func (r *Refresher) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	r.storedSeq = r.nextSeq
	r.snap = emptySnapshot()
}

// Snapshot returns the most recently stored balance state.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

func (r *Refresher) store(seq uint64, snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq > r.storedSeq {
		r.storedSeq = seq
		r.snap = snap
	}
}

func (r *Refresher) tokenAddress(sel Selection) (address, symbol string, err error) {
	if strings.EqualFold(sel.Key, CustomKey) {
		return sel.CustomAddress, "", nil
	}
	if sel.Key == "" {
		return "", "", nil
	}
	desc, err := r.registry.Lookup(sel.Key)
	if err != nil {
		return "", "", err
	}
	return desc.Address.Hex(), desc.Symbol, nil
}

func emptySnapshot() Snapshot {
	return Snapshot{EthBalance: "0", TokenBalance: "0"}
}
