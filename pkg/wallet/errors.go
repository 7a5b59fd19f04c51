package wallet

import (
	"errors"
	"fmt"
)

// Wallet-level failure conditions. Each one calls for a different user
// remedy, so they are never collapsed into a generic connection error.
var (
	// ErrProviderUnavailable means no wallet provider is configured at all.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")

	// ErrUserRejected means the user dismissed a wallet prompt.
	ErrUserRejected = errors.New("request rejected by user")

	// ErrChainSwitchFailed means the wallet could not be moved to the
	// required chain. The session still counts as connected.
	ErrChainSwitchFailed = errors.New("failed to switch to required chain")

	// ErrNotConnected means an operation needs a connected session.
	ErrNotConnected = errors.New("wallet not connected")
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
)

// ProviderError carries the numeric code a wallet provider attaches to a
// failed request, so callers can distinguish a user clicking "cancel" from
// a chain the wallet has never heard of.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// IsUserRejected reports whether err is a provider rejection caused by the
// user dismissing a prompt.
func IsUserRejected(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeUserRejected
}

// IsUnrecognizedChain reports whether err means the provider does not know
// the requested chain and needs it added first.
func IsUnrecognizedChain(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeUnrecognizedChain
}
