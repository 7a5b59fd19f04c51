package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"walletguard/pkg/chain"
)

// Snapshot is a point-in-time view of the wallet session. Consumers must
// take a fresh snapshot before each operation rather than holding one
// across suspension points, since the account or chain can change under
// them at any time.
type Snapshot struct {
	Account   common.Address
	ChainID   *big.Int
	Connected bool
}

// OnRequiredChain reports whether the session sits on the policy's chain.
func (s Snapshot) OnRequiredChain(policy chain.Policy) bool {
	return s.Connected && policy.Matches(s.ChainID)
}

// ChangeReason explains why a session change event fired.
type ChangeReason string

const (
	// ReasonAccountsChanged means the wallet switched to another account.
	ReasonAccountsChanged ChangeReason = "accounts_changed"
	// ReasonChainChanged means the wallet moved to another chain. All
	// derived state (balances, resolved token info) is chain-specific and
	// must be rebuilt from scratch.
	ReasonChainChanged ChangeReason = "chain_changed"
	// ReasonDisconnected means the session was reset to empty.
	ReasonDisconnected ChangeReason = "disconnected"
)

// ChangeEvent carries the post-change session snapshot to watchers.
type ChangeEvent struct {
	Snapshot Snapshot
	Reason   ChangeReason
}

// Manager owns the wallet session. It is the only writer of session
// state; writes happen from its own operations and from provider event
// callbacks, and every read hands out a copy.
type Manager struct {
	mu          sync.RWMutex
	provider    Provider
	policy      chain.Policy
	snap        Snapshot
	unsubscribe func()
	onChange    func(ChangeEvent)
}

// NewManager creates a session manager for the given provider and chain
// policy. The provider may be nil, in which case Connect reports
// ErrProviderUnavailable.
func NewManager(provider Provider, policy chain.Policy) *Manager {
	return &Manager{provider: provider, policy: policy}
}

// Connect requests account access and negotiates the required chain.
//
// A chain that cannot be switched or added does not undo the connection:
// the returned snapshot is connected but carries the wrong chain, and the
// error wraps ErrChainSwitchFailed so the caller can tell the user to
// switch manually. Subsequent operations must re-check the chain rather
// than assume negotiation succeeded.
func (m *Manager) Connect(ctx context.Context) (Snapshot, error) {
	if m.provider == nil {
		return Snapshot{}, ErrProviderUnavailable
	}

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		if IsUserRejected(err) {
			return Snapshot{}, fmt.Errorf("connection request was declined: %w", ErrUserRejected)
		}
		return Snapshot{}, fmt.Errorf("failed to request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return Snapshot{}, fmt.Errorf("wallet returned no accounts")
	}

	m.mu.Lock()
	m.snap.Account = accounts[0]
	m.snap.Connected = true
	m.mu.Unlock()

	chainID, chainErr := m.negotiateChain(ctx)

	m.mu.Lock()
	m.snap.ChainID = chainID
	snap := m.snap
	m.mu.Unlock()

	if chainErr != nil {
		return snap, fmt.Errorf("%w: %v (switch to %s manually in your wallet)",
			ErrChainSwitchFailed, chainErr, m.policy.DisplayName)
	}
	return snap, nil
}

// negotiateChain reads the provider's chain and, on mismatch, attempts one
// switch, falling back to an add when the chain is unrecognized. It
// returns the chain the provider ends up on, which on failure may not be
// the required one.
func (m *Manager) negotiateChain(ctx context.Context) (*big.Int, error) {
	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current chain: %v", err)
	}
	if m.policy.Matches(chainID) {
		return chainID, nil
	}

	switchErr := m.provider.SwitchChain(ctx, m.policy.HexChainID())
	if switchErr != nil {
		if !IsUnrecognizedChain(switchErr) {
			if IsUserRejected(switchErr) {
				return chainID, fmt.Errorf("chain switch was declined")
			}
			return chainID, fmt.Errorf("chain switch failed: %v", switchErr)
		}
		if addErr := m.provider.AddChain(ctx, m.policy); addErr != nil {
			if IsUserRejected(addErr) {
				return chainID, fmt.Errorf("adding %s was declined", m.policy.DisplayName)
			}
			return chainID, fmt.Errorf("failed to add %s: %v", m.policy.DisplayName, addErr)
		}
	}

	chainID, err = m.provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read chain after switch: %v", err)
	}
	if !m.policy.Matches(chainID) {
		return chainID, fmt.Errorf("wallet stayed on chain %v", chainID)
	}
	return chainID, nil
}

// Disconnect resets the session to empty. It is a pure local reset:
// injected wallet providers have no programmatic disconnect, so there is
// no provider call to make. Watchers are told so derived state gets
// cleared too.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.snap = Snapshot{}
	snap := m.snap
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange(ChangeEvent{Snapshot: snap, Reason: ReasonDisconnected})
	}
}

// Watch subscribes to the provider's push events and forwards session
// changes to onChange. An empty account list from the provider counts as
// a disconnect. Close revokes the subscription.
func (m *Manager) Watch(onChange func(ChangeEvent)) error {
	if m.provider == nil {
		return ErrProviderUnavailable
	}

	m.mu.Lock()
	if m.unsubscribe != nil {
		m.mu.Unlock()
		return fmt.Errorf("already watching provider events")
	}
	m.onChange = onChange
	m.mu.Unlock()

	unsubscribe := m.provider.Subscribe(EventHandlers{
		OnAccountsChanged: m.handleAccountsChanged,
		OnChainChanged:    m.handleChainChanged,
	})

	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()
	return nil
}

// Close revokes the provider event subscription so handlers do not leak
// across reconnects.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.onChange = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *Manager) handleAccountsChanged(accounts []common.Address) {
	if len(accounts) == 0 {
		m.Disconnect()
		return
	}

	m.mu.Lock()
	m.snap.Account = accounts[0]
	m.snap.Connected = true
	snap := m.snap
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange(ChangeEvent{Snapshot: snap, Reason: ReasonAccountsChanged})
	}
}

func (m *Manager) handleChainChanged(chainID *big.Int) {
	m.mu.Lock()
	m.snap.ChainID = chainID
	snap := m.snap
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange(ChangeEvent{Snapshot: snap, Reason: ReasonChainChanged})
	}
}
