package transfer

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"walletguard/pkg/fraud"
	"walletguard/pkg/tokens"
	"walletguard/pkg/wallet"
)

const etherDecimals = 18

// Pipeline runs guarded transfers: validate, risk-check, then submit.
// Risk-checking strictly precedes signing, so a rejected transfer never
// reaches the mempool. Each run's state is local to the run; the pipeline
// is safe to use from overlapping submissions.
type Pipeline struct {
	provider wallet.Provider
	session  *wallet.Manager
	resolver *tokens.Resolver
	fraud    *fraud.Client

	onAuditError func(error)
	auditWG      sync.WaitGroup
}

// NewPipeline wires a pipeline over the session manager, token resolver,
// and fraud-check client.
func NewPipeline(provider wallet.Provider, session *wallet.Manager, resolver *tokens.Resolver, fraudClient *fraud.Client) *Pipeline {
	return &Pipeline{
		provider: provider,
		session:  session,
		resolver: resolver,
		fraud:    fraudClient,
	}
}

// OnAuditError registers a hook for audit-log failures. Those failures
// never change a Blocked outcome, but they should not vanish silently.
func (p *Pipeline) OnAuditError(fn func(error)) {
	p.onAuditError = fn
}

// Run takes a transfer request to a terminal outcome. Invalid input fails
// before any network call; the risk verdict gates transaction
// construction; nothing is ever retried automatically.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	// Validating. A fresh session snapshot fixes the sender for this run.
	snap := p.session.Snapshot()
	if !snap.Connected {
		return failed(wallet.ErrNotConnected)
	}
	if !tokens.IsPositiveDecimal(req.Amount) {
		return failed(fmt.Errorf("%w: %q must be a positive number", ErrInvalidAmount, req.Amount))
	}
	if !common.IsHexAddress(req.Receiver) {
		return failed(fmt.Errorf("%w: receiver %q", tokens.ErrInvalidAddress, req.Receiver))
	}
	if req.Asset != AssetETH && req.Asset != AssetERC20 {
		return failed(fmt.Errorf("%w: %q", ErrUnsupportedAsset, req.Asset))
	}
	receiver := common.HexToAddress(req.Receiver)

	var tokenAddr common.Address
	if req.Asset == AssetERC20 {
		addr, err := p.resolver.ValidateContract(ctx, req.TokenAddress)
		if err != nil {
			return failed(err)
		}
		tokenAddr = addr
	}

	// Risk-checking. Blocking: no transaction exists before the verdict.
	check := fraud.CheckRequest{
		Sender:   snap.Account.Hex(),
		Receiver: receiver.Hex(),
		Amount:   req.Amount,
		Token:    req.TokenSymbol,
	}
	if req.Asset == AssetERC20 {
		check.TokenAddress = tokenAddr.Hex()
	}

	verdict, err := p.fraud.Check(ctx, check)
	if err != nil {
		return failed(err)
	}
	if verdict.Rejected {
		p.recordFraudAttempt(check)
		return blocked(verdict.Label)
	}

	// Submitting. Unit conversion happens only now, so no decimals
	// round-trip is spent on a blocked path.
	var tx wallet.TxRequest
	switch req.Asset {
	case AssetERC20:
		decimals, err := p.resolver.Decimals(ctx, tokenAddr)
		if err != nil {
			return failed(err)
		}
		units, err := tokens.ParseUnits(req.Amount, decimals)
		if err != nil {
			return failed(fmt.Errorf("%w: %v", ErrInvalidAmount, err))
		}
		data, err := tokens.TransferCalldata(receiver, units)
		if err != nil {
			return failed(err)
		}
		tx = wallet.TxRequest{To: tokenAddr, Value: big.NewInt(0), Data: data}
	case AssetETH:
		value, err := tokens.ParseUnits(req.Amount, etherDecimals)
		if err != nil {
			return failed(fmt.Errorf("%w: %v", ErrInvalidAmount, err))
		}
		tx = wallet.TxRequest{To: receiver, Value: value}
	}

	hash, err := p.provider.SendTransaction(ctx, tx)
	if err != nil {
		if wallet.IsUserRejected(err) {
			return failed(fmt.Errorf("signing was declined: %w", wallet.ErrUserRejected))
		}
		return failed(fmt.Errorf("%w: %v", ErrSubmissionFailed, err))
	}

	return sent(hash)
}

// Wait blocks until in-flight audit notifications have finished.
// Short-lived callers must call it before the process exits, or a
// Blocked outcome's audit report may never leave the process.
func (p *Pipeline) Wait() {
	p.auditWG.Wait()
}

// recordFraudAttempt notifies the audit log about a rejected transfer.
// It runs in the background, detached from the pipeline's context so an
// abandoned run still gets recorded; Wait flushes pending reports.
func (p *Pipeline) recordFraudAttempt(check fraud.CheckRequest) {
	entry := fraud.AuditEntry{
		Sender:   check.Sender,
		Receiver: check.Receiver,
		Amount:   check.Amount,
		Token:    check.Token,
	}
	onAuditError := p.onAuditError

	p.auditWG.Add(1)
	go func() {
		defer p.auditWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.fraud.ReportFraud(ctx, entry); err != nil && onAuditError != nil {
			onAuditError(err)
		}
	}()
}
