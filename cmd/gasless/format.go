package main

import (
	"fmt"
	"strings"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

const ruleWidth = 70

var phaseLabels = map[model.Phase]string{
	model.PhaseValidating:      "Validating request",
	model.PhaseQuoting:         "Fetching firm quote",
	model.PhaseSigningTrade:    "Signing trade",
	model.PhaseSigningApproval: "Signing token approval",
	model.PhaseSubmitting:      "Submitting to relayer",
	model.PhaseMonitoring:      "Waiting for settlement",
	model.PhaseCompleted:       "Completed",
	model.PhaseFailed:          "Failed",
}

func phaseLabel(p model.Phase) string {
	if l, ok := phaseLabels[p]; ok {
		return l
	}
	return string(p)
}

// setSuffix updates a spinner that may already be drawing.
func setSuffix(s *spinner.Spinner, suffix string) {
	s.Lock()
	s.Suffix = suffix
	s.Unlock()
}

func coloredStatus(s model.SwapStatus) string {
	label := strings.ToUpper(string(s))
	switch s {
	case model.StatusSuccess:
		return color.GreenString(label)
	case model.StatusPending:
		return color.YellowString(label)
	case model.StatusFailed, model.StatusTimeout, model.StatusPollingError:
		return color.RedString(label)
	default:
		return label
	}
}

// humanAmount renders an atomic amount of the token at address, falling back
// to the raw value for tokens outside the catalog.
func humanAmount(cat *catalog.Catalog, address, atomic string) string {
	if atomic == "" {
		return "-"
	}
	t, ok := cat.FindByAddress(address)
	if !ok {
		return atomic
	}
	d, err := catalog.FromAtomic(atomic, t.Decimals)
	if err != nil {
		return atomic
	}
	return d.String() + " " + t.Symbol
}

func printRule() {
	fmt.Println(strings.Repeat("=", ruleWidth))
}

func displayRecord(cat *catalog.Catalog, rec model.SwapRecord) {
	fmt.Println()
	printRule()
	if rec.Outcome == model.OutcomeCompleted {
		color.Green("                        SWAP COMPLETED")
	} else {
		color.Red("                        SWAP FAILED")
	}
	printRule()

	req := rec.Request
	fmt.Printf("\n  Swap ID:      %s\n", rec.ID)
	fmt.Printf("  Sell:         %s\n", humanAmount(cat, req.SellToken, rec.SellAmount))
	fmt.Printf("  Buy:          %s\n", humanAmount(cat, req.BuyToken, rec.BuyAmount))
	if rec.TradeHash != "" {
		fmt.Printf("  Trade hash:   %s\n", color.CyanString(rec.TradeHash))
		fmt.Printf("  Explorer:     %s\n", rec.ExplorerURL)
	}
	if rec.Status != "" {
		fmt.Printf("  Status:       %s (%d checks)\n", coloredStatus(rec.Status), rec.Attempts)
	}
	if rec.Error != "" {
		fmt.Printf("  Error:        %s %s\n", color.RedString(rec.ErrorCode), rec.Error)
	}

	if b := rec.Balances; b != nil {
		fmt.Println()
		fmt.Printf("  %-6s %14s -> %-14s (%s)\n", b.NativeSymbol, b.NativeBefore, b.NativeAfter, b.NativeChange)
		fmt.Printf("  %-6s %14s -> %-14s (%s)\n", b.TokenSymbol, b.TokenBefore, b.TokenAfter, b.TokenChange)
		if b.GaslessVerified {
			color.Green("\n  Gasless verified: no native token was spent.")
		} else {
			color.Yellow("\n  Gasless not verified: native balance changed or is unknown.")
		}
	}
	fmt.Println()
	printRule()
	fmt.Println()
}
