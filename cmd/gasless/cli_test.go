package main

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/config"
	"github.com/briandowns/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapIntent_ArgsOverrideDefaults(t *testing.T) {
	defaults := config.SwapDefaults{Chain: "BASE", Amount: "5.00", SellToken: "USDC", BuyToken: "DAI", Recipient: "0x7eac9f0Dcf81Ed413647D2B1c9b02620DA298A93"}

	intent := swapIntent(defaults, nil)
	assert.Equal(t, "5.00", intent.Amount)
	assert.Equal(t, "USDC", intent.SellToken)
	assert.Equal(t, "BASE", intent.Chain)

	swapChain, swapAtomic = "POLYGON", true
	defer func() { swapChain, swapAtomic = "", false }()

	intent = swapIntent(defaults, []string{"7000000", "DAI", "USDC"})
	assert.Equal(t, "POLYGON", intent.Chain)
	assert.Empty(t, intent.Amount)
	assert.Equal(t, "7000000", intent.SellAmountAtomic)
	assert.Equal(t, "DAI", intent.SellToken)
	assert.Equal(t, "USDC", intent.BuyToken)
}

func TestResolveChain(t *testing.T) {
	cat := catalog.Default()

	ch, err := resolveChain(cat, "8453")
	require.NoError(t, err)
	assert.Equal(t, "BASE", ch.Key)

	ch, err = resolveChain(cat, "polygon")
	require.NoError(t, err)
	assert.Equal(t, int64(137), ch.ID)

	_, err = resolveChain(cat, "999")
	assert.Error(t, err)
}

func TestHumanAmount(t *testing.T) {
	cat := catalog.Default()
	assert.Equal(t, "5 USDC", humanAmount(cat, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "5000000"))
	assert.Equal(t, "42", humanAmount(cat, "0x0000000000000000000000000000000000000001", "42"))
	assert.Equal(t, "-", humanAmount(cat, "", ""))
}

func TestSetSuffix_WhileSpinning(t *testing.T) {
	s := spinner.New(spinner.CharSets[14], time.Millisecond, spinner.WithWriter(io.Discard))
	s.Start()
	defer s.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			setSuffix(s, fmt.Sprintf(" Check %d/10", i))
		}(i)
	}
	wg.Wait()

	setSuffix(s, " Check 10/10: success")
	s.Lock()
	defer s.Unlock()
	assert.Equal(t, " Check 10/10: success", s.Suffix)
}
