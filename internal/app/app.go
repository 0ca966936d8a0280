// Package app assembles the swap pipeline from configuration. It is shared by
// the HTTP server and the CLI.
package app

import (
	"fmt"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/config"
	"github.com/GoPolymarket/gaslessgate/internal/service"
	"github.com/GoPolymarket/gaslessgate/internal/signer"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
)

const (
	rpcTimeout = 10 * time.Second
	rpcRetries = 2
)

// Pipeline holds the long-lived swap components. Signer and Orchestrator are
// nil when no wallet key is configured; everything else always works.
type Pipeline struct {
	Catalog      *catalog.Catalog
	Client       *zerox.Client
	Validator    *service.RequestValidator
	Quotes       *service.QuoteClient
	Poller       *service.StatusPoller
	RPC          *service.RPCPool
	Signer       *signer.KeySigner
	Orchestrator *service.Orchestrator
}

// Catalog returns the built-in catalog with configured RPC overrides.
func Catalog(cfg *config.Config) *catalog.Catalog {
	overrides := make(map[string]string, len(cfg.Chains))
	for name, cc := range cfg.Chains {
		overrides[name] = cc.RPCURL
	}
	return catalog.Default().WithRPC(overrides)
}

func NewPipeline(cfg *config.Config, opts ...service.OrchestratorOption) (*Pipeline, error) {
	cat := Catalog(cfg)
	client := zerox.NewClient(cfg.ZeroX.BaseURL, cfg.ZeroX.APIKey, cfg.ZeroX.Version, cfg.ZeroX.Timeout())
	rpc := service.NewRPCPool(cat, rpcTimeout, rpcRetries)

	p := &Pipeline{
		Catalog:   cat,
		Client:    client,
		Validator: service.NewRequestValidator(cat),
		Quotes:    service.NewQuoteClient(client),
		Poller:    service.NewStatusPoller(client, service.RealScheduler(), cfg.Poller.Interval(), cfg.Poller.MaxAttempts),
		RPC:       rpc,
	}

	if cfg.Wallet.PrivateKey == "" {
		return p, nil
	}
	key, err := signer.NewKeySigner(cfg.Wallet.PrivateKey)
	if err != nil {
		rpc.Close()
		return nil, fmt.Errorf("wallet: %w", err)
	}
	p.Signer = key

	base := []service.OrchestratorOption{
		service.WithNetworkCheck(rpc),
		service.WithBalanceReconciler(service.NewChainBalanceReconciler(rpc, cat)),
	}
	p.Orchestrator = service.NewOrchestrator(
		p.Validator,
		p.Quotes,
		service.NewSignatureCollector(key, cfg.Wallet.VerifySignatures),
		service.NewSubmissionClient(client),
		p.Poller,
		append(base, opts...)...,
	)
	return p, nil
}

// Taker is the address swaps are signed for, or "" without a wallet.
func (p *Pipeline) Taker() string {
	if p.Signer == nil {
		return ""
	}
	return p.Signer.Address().Hex()
}

func (p *Pipeline) Close() {
	p.RPC.Close()
}
