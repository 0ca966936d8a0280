package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/app"
	"github.com/GoPolymarket/gaslessgate/internal/config"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/service"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	swapChain     string
	swapRecipient string
	swapAtomic    bool
)

var swapCmd = &cobra.Command{
	Use:   "swap [amount] [sell-token] [buy-token]",
	Short: "Execute a gasless swap with the configured wallet",
	Long: `Quote, sign, submit and monitor one gasless swap. Missing arguments fall
back to the swap defaults in the configuration.

Examples:
  gasless swap
  gasless swap 5 USDC DAI --chain BASE
  gasless swap 5000000 USDC DAI --atomic`,
	Args: cobra.MaximumNArgs(3),
	RunE: runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapChain, "chain", "", "Chain name or id (default from config)")
	swapCmd.Flags().StringVar(&swapRecipient, "recipient", "", "Recipient of the bought tokens (default: wallet)")
	swapCmd.Flags().BoolVar(&swapAtomic, "atomic", false, "Treat the amount as atomic units")
}

func runSwap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	quiet := jsonOutput(cmd)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	progress := service.ReporterFunc(func(_ context.Context, rec model.SwapRecord) {
		if quiet {
			return
		}
		suffix := " " + phaseLabel(rec.Phase) + "..."
		if rec.Phase == model.PhaseMonitoring && rec.Attempts > 0 {
			suffix = fmt.Sprintf(" %s (check %d, %s)...", phaseLabel(rec.Phase), rec.Attempts, rec.Status)
		}
		setSuffix(s, suffix)
	})

	p, err := app.NewPipeline(cfg, service.WithReporter(service.MultiReporter{service.LogReporter{}, progress}))
	if err != nil {
		return err
	}
	defer p.Close()
	if p.Orchestrator == nil {
		return errors.New("wallet.private_key is not configured")
	}

	intent := swapIntent(cfg.Swap, args)
	req, err := p.Validator.BuildRequest(intent, p.Taker())
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("\nSwapping %s -> %s on chain %d from %s\n",
			humanAmount(p.Catalog, req.SellToken, req.SellAmountAtomic),
			symbolOf(p, req.BuyToken), req.ChainID, color.CyanString(req.Taker))
		s.Start()
	}

	// Interrupts stop the swap until it is submitted; after that the
	// orchestrator keeps monitoring to a verdict.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec, err := p.Orchestrator.Execute(ctx, req)
	if !quiet {
		s.Stop()
	}

	if quiet {
		printJSON(rec)
	} else if rec.ID != "" {
		displayRecord(p.Catalog, rec)
	}
	return err
}

func swapIntent(defaults config.SwapDefaults, args []string) service.SwapIntent {
	intent := service.SwapIntent{
		Chain:     defaults.Chain,
		Amount:    defaults.Amount,
		SellToken: defaults.SellToken,
		BuyToken:  defaults.BuyToken,
		Recipient: defaults.Recipient,
	}
	if swapChain != "" {
		intent.Chain = swapChain
	}
	if swapRecipient != "" {
		intent.Recipient = swapRecipient
	}
	if len(args) > 0 {
		intent.Amount = args[0]
	}
	if len(args) > 1 {
		intent.SellToken = args[1]
	}
	if len(args) > 2 {
		intent.BuyToken = args[2]
	}
	if swapAtomic {
		intent.SellAmountAtomic = intent.Amount
		intent.Amount = ""
	}
	return intent
}

func symbolOf(p *app.Pipeline, address string) string {
	if t, ok := p.Catalog.FindByAddress(address); ok {
		return t.Symbol
	}
	return address
}
