package transfer

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAmount means the amount does not parse as a positive
	// decimal, or carries more precision than the token supports.
	ErrInvalidAmount = errors.New("invalid transfer amount")

	// ErrSubmissionFailed means the signed transaction was not accepted
	// by the provider.
	ErrSubmissionFailed = errors.New("transaction submission failed")

	// ErrUnsupportedAsset means the request names an asset kind the
	// pipeline does not know how to move.
	ErrUnsupportedAsset = errors.New("unsupported asset kind")
)

// AssetKind selects what a transfer moves.
type AssetKind string

const (
	AssetETH   AssetKind = "eth"
	AssetERC20 AssetKind = "erc20"
)

// Request describes one transfer attempt. It is constructed fresh per
// submission and never mutated by the pipeline. The sender comes from the
// wallet session at run time.
type Request struct {
	Receiver     string
	Amount       string
	Asset        AssetKind
	TokenSymbol  string
	TokenAddress string
}

// Status is the terminal state of one pipeline run.
type Status string

const (
	// StatusSent means the transaction was accepted by the provider.
	// Accepted, not confirmed: the pipeline does not wait for inclusion.
	StatusSent Status = "sent"
	// StatusBlocked means the risk service rejected the transfer and no
	// transaction was constructed.
	StatusBlocked Status = "blocked"
	// StatusFailed means some step errored; nothing was retried.
	StatusFailed Status = "failed"
)

// Outcome is the user-visible result of one pipeline run.
type Outcome struct {
	Status Status
	TxHash common.Hash
	Reason string
	Err    error
}

func sent(hash common.Hash) Outcome {
	return Outcome{Status: StatusSent, TxHash: hash}
}

func blocked(reason string) Outcome {
	return Outcome{Status: StatusBlocked, Reason: reason}
}

func failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
