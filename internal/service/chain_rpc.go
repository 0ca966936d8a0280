package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const erc20BalanceOfABI = `[{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var erc20ABI = mustParseABI(erc20BalanceOfABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ChainReader is the read-only chain access used by balance reconciliation
// and the network check.
type ChainReader interface {
	ChainID(ctx context.Context, chainID int64) (*big.Int, error)
	NativeBalance(ctx context.Context, chainID int64, owner common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, chainID int64, token, owner common.Address) (*big.Int, error)
}

// RPCPool lazily dials one ethclient per chain and retries reads with a
// short linear backoff.
type RPCPool struct {
	catalog *catalog.Catalog
	mu      sync.Mutex
	clients map[int64]*ethclient.Client
	timeout time.Duration
	retries int
}

func NewRPCPool(cat *catalog.Catalog, timeout time.Duration, retries int) *RPCPool {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &RPCPool{
		catalog: cat,
		clients: make(map[int64]*ethclient.Client),
		timeout: timeout,
		retries: retries,
	}
}

func (p *RPCPool) ChainID(ctx context.Context, chainID int64) (*big.Int, error) {
	return p.call(ctx, chainID, func(ctx context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.ChainID(ctx)
	})
}

func (p *RPCPool) NativeBalance(ctx context.Context, chainID int64, owner common.Address) (*big.Int, error) {
	return p.call(ctx, chainID, func(ctx context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.BalanceAt(ctx, owner, nil)
	})
}

func (p *RPCPool) TokenBalance(ctx context.Context, chainID int64, token, owner common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to pack call data: %w", err)
	}
	return p.call(ctx, chainID, func(ctx context.Context, c *ethclient.Client) (*big.Int, error) {
		output, err := c.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
		if err != nil {
			return nil, err
		}
		if len(output) == 0 {
			return nil, fmt.Errorf("empty balanceOf response from %s", token.Hex())
		}
		return new(big.Int).SetBytes(output), nil
	})
}

func (p *RPCPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}

func (p *RPCPool) call(ctx context.Context, chainID int64, fn func(context.Context, *ethclient.Client) (*big.Int, error)) (*big.Int, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		client, err := p.getClient(attemptCtx, chainID)
		if err != nil {
			cancel()
			lastErr = err
			if !shouldRetry(ctx, attempt, p.retries) {
				break
			}
			continue
		}
		out, err := fn(attemptCtx, client)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("rpc call failed: %w", err)
			if !shouldRetry(ctx, attempt, p.retries) {
				break
			}
			continue
		}
		return out, nil
	}
	return nil, lastErr
}

func (p *RPCPool) getClient(ctx context.Context, chainID int64) (*ethclient.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[chainID]; ok {
		return c, nil
	}
	chain, ok := p.catalog.ChainByID(chainID)
	if !ok || strings.TrimSpace(chain.RPCURL) == "" {
		return nil, fmt.Errorf("rpc url not configured for chain %d", chainID)
	}
	client, err := ethclient.DialContext(ctx, chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect rpc: %w", err)
	}
	p.clients[chainID] = client
	return client, nil
}

func shouldRetry(ctx context.Context, attempt, max int) bool {
	if attempt >= max {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	default:
	}
	time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
	return true
}
