package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeToken describes the gas token of a chain.
type NativeToken struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int32  `json:"decimals"`
	Address  string `json:"address"`
}

type Chain struct {
	ID          int64       `json:"id"`
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	RPCURL      string      `json:"-"`
	ExplorerURL string      `json:"explorer_url"`
	Native      NativeToken `json:"native_token"`
}

// TxURL links a transaction hash on the chain's block explorer.
func (c Chain) TxURL(hash string) string {
	return strings.TrimRight(c.ExplorerURL, "/") + "/tx/" + hash
}

type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int32  `json:"decimals"`
	// Version is the EIP-712 domain version used by the token contract.
	Version   string            `json:"version"`
	Addresses map[string]string `json:"addresses"`
}

// AddressOn returns the token contract on the given chain key.
func (t Token) AddressOn(chainKey string) (string, bool) {
	addr, ok := t.Addresses[strings.ToUpper(chainKey)]
	return addr, ok
}

// ResolvedToken is a token bound to one chain.
type ResolvedToken struct {
	Token
	Address common.Address `json:"address"`
	ChainID int64          `json:"chain_id"`
}

// Catalog is an immutable lookup table of supported chains and tokens.
type Catalog struct {
	chains map[string]Chain
	byID   map[int64]string
	tokens map[string]Token
}

func New(chains []Chain, tokens []Token) *Catalog {
	c := &Catalog{
		chains: make(map[string]Chain, len(chains)),
		byID:   make(map[int64]string, len(chains)),
		tokens: make(map[string]Token, len(tokens)),
	}
	for _, ch := range chains {
		key := strings.ToUpper(ch.Key)
		ch.Key = key
		c.chains[key] = ch
		c.byID[ch.ID] = key
	}
	for _, t := range tokens {
		c.tokens[strings.ToUpper(t.Symbol)] = t
	}
	return c
}

// Default returns the catalog of chains and tokens supported by the gasless API.
func Default() *Catalog {
	return New(defaultChains(), defaultTokens())
}

// WithRPC returns a copy of the catalog with RPC endpoints overridden by
// chain key. Empty values are ignored.
func (c *Catalog) WithRPC(overrides map[string]string) *Catalog {
	out := &Catalog{
		chains: make(map[string]Chain, len(c.chains)),
		byID:   c.byID,
		tokens: c.tokens,
	}
	for key, ch := range c.chains {
		for k, url := range overrides {
			if strings.EqualFold(k, key) && url != "" {
				ch.RPCURL = url
			}
		}
		out.chains[key] = ch
	}
	return out
}

func (c *Catalog) ChainByID(id int64) (Chain, bool) {
	key, ok := c.byID[id]
	if !ok {
		return Chain{}, false
	}
	return c.chains[key], true
}

func (c *Catalog) ChainByKey(key string) (Chain, bool) {
	ch, ok := c.chains[strings.ToUpper(strings.TrimSpace(key))]
	return ch, ok
}

// Chains lists all chains ordered by id.
func (c *Catalog) Chains() []Chain {
	out := make([]Chain, 0, len(c.chains))
	for _, ch := range c.chains {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) Token(symbol string) (Token, bool) {
	t, ok := c.tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	return t, ok
}

// TokenAddress returns the contract address of symbol on the chain.
func (c *Catalog) TokenAddress(symbol, chainKey string) (string, bool) {
	t, ok := c.Token(symbol)
	if !ok {
		return "", false
	}
	return t.AddressOn(chainKey)
}

// TokensForChain lists the tokens deployed on the chain, ordered by symbol.
func (c *Catalog) TokensForChain(chainKey string) []ResolvedToken {
	ch, ok := c.ChainByKey(chainKey)
	if !ok {
		return nil
	}
	var out []ResolvedToken
	for _, t := range c.tokens {
		if addr, ok := t.AddressOn(ch.Key); ok {
			out = append(out, ResolvedToken{Token: t, Address: common.HexToAddress(addr), ChainID: ch.ID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Resolve accepts a token symbol or a contract address and returns the token
// as deployed on chainID. Addresses must belong to a catalog token on that
// chain.
func (c *Catalog) Resolve(chainID int64, symbolOrAddress string) (ResolvedToken, error) {
	ch, ok := c.ChainByID(chainID)
	if !ok {
		return ResolvedToken{}, fmt.Errorf("unsupported chain %d", chainID)
	}
	in := strings.TrimSpace(symbolOrAddress)
	if in == "" {
		return ResolvedToken{}, fmt.Errorf("token is required")
	}

	if common.IsHexAddress(in) {
		want := common.HexToAddress(in)
		for _, t := range c.tokens {
			addr, ok := t.AddressOn(ch.Key)
			if ok && common.HexToAddress(addr) == want {
				return ResolvedToken{Token: t, Address: want, ChainID: ch.ID}, nil
			}
		}
		return ResolvedToken{}, fmt.Errorf("token %s is not available on %s", in, ch.Name)
	}

	t, ok := c.Token(in)
	if !ok {
		return ResolvedToken{}, fmt.Errorf("unknown token %s", in)
	}
	addr, ok := t.AddressOn(ch.Key)
	if !ok {
		return ResolvedToken{}, fmt.Errorf("token %s is not available on %s", t.Symbol, ch.Name)
	}
	return ResolvedToken{Token: t, Address: common.HexToAddress(addr), ChainID: ch.ID}, nil
}

// FindByAddress looks a contract address up across all chains.
func (c *Catalog) FindByAddress(address string) (Token, bool) {
	if !common.IsHexAddress(address) {
		return Token{}, false
	}
	want := common.HexToAddress(address)
	for _, t := range c.tokens {
		for _, addr := range t.Addresses {
			if common.HexToAddress(addr) == want {
				return t, true
			}
		}
	}
	return Token{}, false
}
