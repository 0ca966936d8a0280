package catalog

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAtomic(t *testing.T) {
	cases := []struct {
		amount   string
		decimals int32
		want     string
	}{
		{"5.00", 6, "5000000"},
		{"5", 6, "5000000"},
		{"0.000001", 6, "1"},
		{"1.5", 18, "1500000000000000000"},
		{"123456789.123456789012345678", 18, "123456789123456789012345678"},
	}
	for _, tc := range cases {
		got, err := ToAtomic(tc.amount, tc.decimals)
		require.NoError(t, err, tc.amount)
		assert.Equal(t, tc.want, got, tc.amount)
	}
}

func TestToAtomicRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "0.00", "-1", "0.0000001"} {
		_, err := ToAtomic(in, 6)
		assert.Error(t, err, in)
	}
}

func TestFromAtomic(t *testing.T) {
	d, err := FromAtomic("5000000", 6)
	require.NoError(t, err)
	assert.Equal(t, "5", d.String())

	_, err = FromAtomic("5.5", 6)
	assert.Error(t, err)
}

func TestResolveBySymbolAndAddress(t *testing.T) {
	c := Default()

	usdc, err := c.Resolve(8453, "usdc")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), usdc.Address)
	assert.Equal(t, int32(6), usdc.Decimals)

	dai, err := c.Resolve(8453, "0x50c47525c143017431176112b604b2346e5197d2")
	require.NoError(t, err)
	assert.Equal(t, "DAI", dai.Symbol)
}

func TestResolveFailures(t *testing.T) {
	c := Default()

	_, err := c.Resolve(999, "USDC")
	assert.ErrorContains(t, err, "unsupported chain")

	_, err = c.Resolve(43114, "DAI")
	assert.ErrorContains(t, err, "not available")

	_, err = c.Resolve(8453, "DOGE")
	assert.ErrorContains(t, err, "unknown token")

	// USDC on Polygon is not a token on Base
	_, err = c.Resolve(8453, "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	assert.Error(t, err)
}

func TestChainsAndExplorer(t *testing.T) {
	c := Default()
	chains := c.Chains()
	require.Len(t, chains, 6)
	assert.Equal(t, int64(1), chains[0].ID)

	base, ok := c.ChainByID(8453)
	require.True(t, ok)
	assert.Equal(t, "https://basescan.org/tx/0xabc", base.TxURL("0xabc"))

	tokens := c.TokensForChain("base")
	symbols := make([]string, 0, len(tokens))
	for _, tk := range tokens {
		symbols = append(symbols, tk.Symbol)
	}
	assert.Equal(t, []string{"DAI", "EURC", "POL", "USDC", "USDT", "WETH"}, symbols)
}

func TestWithRPC(t *testing.T) {
	c := Default().WithRPC(map[string]string{"base": "http://localhost:8545"})
	base, _ := c.ChainByKey("BASE")
	assert.Equal(t, "http://localhost:8545", base.RPCURL)

	eth, _ := c.ChainByKey("ETHEREUM")
	assert.NotEqual(t, "http://localhost:8545", eth.RPCURL)
}
