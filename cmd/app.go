package cmd

import (
	"context"
	"errors"

	"walletguard/config"
	"walletguard/pkg/chain"
	"walletguard/pkg/explorer"
	"walletguard/pkg/fraud"
	"walletguard/pkg/refresh"
	"walletguard/pkg/tokens"
	"walletguard/pkg/transfer"
	"walletguard/pkg/wallet"
)

// app bundles the wired-up components every command needs.
type app struct {
	cfg       *config.Config
	policy    chain.Policy
	provider  *wallet.RPCProvider
	session   *wallet.Manager
	registry  *tokens.Registry
	resolver  *tokens.Resolver
	fraud     *fraud.Client
	pipeline  *transfer.Pipeline
	refresher *refresh.Refresher
	explorer  *explorer.Client
}

// newApp loads configuration and wires the provider, session manager,
// resolver, fraud client, pipeline, and refresher together.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	policy := chain.Sepolia()

	provider, err := wallet.NewRPCProvider(cfg.RPCURL, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	resolver, err := tokens.NewResolver(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}

	session := wallet.NewManager(provider, policy)
	registry := tokens.NewRegistry(cfg.LocalTokenAddress)
	fraudClient := fraud.NewClient(cfg.FraudAPIURL, cfg.FraudCheckTimeout)

	return &app{
		cfg:       cfg,
		policy:    policy,
		provider:  provider,
		session:   session,
		registry:  registry,
		resolver:  resolver,
		fraud:     fraudClient,
		pipeline:  transfer.NewPipeline(provider, session, resolver, fraudClient),
		refresher: refresh.NewRefresher(provider, session, resolver, registry),
		explorer:  explorer.NewClient(cfg.ExplorerAPIURL, cfg.ExplorerAPIKey, policy.ChainID),
	}, nil
}

func (a *app) Close() {
	a.session.Close()
	a.provider.Close()
}

// connect establishes the wallet session. A failed chain negotiation is
// reported as a warning and leaves the session usable; everything else is
// fatal to the command.
func (a *app) connect(ctx context.Context) (wallet.Snapshot, error) {
	snap, err := a.session.Connect(ctx)
	if err != nil {
		if errors.Is(err, wallet.ErrChainSwitchFailed) && snap.Connected {
			printChainWarning(err)
			return snap, nil
		}
		return snap, err
	}
	return snap, nil
}
