package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/app"
	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/service"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	statusChain string
	statusWatch bool
)

var statusCmd = &cobra.Command{
	Use:   "status <trade-hash>",
	Short: "Check the relayer status of a submitted trade",
	Long: `Check a trade submitted to the gasless relayer. With --watch the trade is
polled until it reaches a verdict, using the poller settings from the
configuration.

Examples:
  gasless status 0xabc... --chain BASE
  gasless status 0xabc... --chain 8453 --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusChain, "chain", "", "Chain name or id (default from config)")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Poll until the trade settles")
}

type statusOutput struct {
	TradeHash   string           `json:"trade_hash"`
	ChainID     int64            `json:"chain_id"`
	Status      model.SwapStatus `json:"status"`
	Upstream    string           `json:"upstream_status,omitempty"`
	Attempts    int              `json:"attempts,omitempty"`
	Error       string           `json:"error,omitempty"`
	ExplorerURL string           `json:"explorer_url"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := app.NewPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ref := statusChain
	if ref == "" {
		ref = cfg.Swap.Chain
	}
	chain, err := resolveChain(p.Catalog, ref)
	if err != nil {
		return err
	}
	hash := args[0]

	var out statusOutput
	if statusWatch {
		out = watchStatus(cmd.Context(), p, chain, hash, jsonOutput(cmd))
	} else {
		out, err = checkStatus(cmd.Context(), p, chain, hash, jsonOutput(cmd))
		if err != nil {
			return err
		}
	}

	if jsonOutput(cmd) {
		printJSON(out)
		return nil
	}
	displayStatus(out)
	return nil
}

func checkStatus(ctx context.Context, p *app.Pipeline, chain catalog.Chain, hash string, quiet bool) (statusOutput, error) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if !quiet {
		s.Suffix = " Checking trade status..."
		s.Start()
	}
	resp, err := p.Client.Status(ctx, hash, chain.ID)
	if !quiet {
		s.Stop()
	}
	if err != nil {
		return statusOutput{}, apperrors.New(apperrors.ErrUpstream, "failed to fetch status", err)
	}

	out := statusOutput{
		TradeHash:   hash,
		ChainID:     chain.ID,
		Upstream:    resp.Status,
		ExplorerURL: chain.TxURL(hash),
	}
	switch resp.Status {
	case "success", "confirmed":
		out.Status = model.StatusSuccess
	case "failed":
		out.Status = model.StatusFailed
		out.Error = firstNonEmpty(resp.Error, resp.Reason)
	default:
		out.Status = model.StatusPending
	}
	return out, nil
}

func watchStatus(ctx context.Context, p *app.Pipeline, chain catalog.Chain, hash string, quiet bool) statusOutput {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if !quiet {
		fmt.Printf("\nWatching trade %s\n", color.CyanString(hash))
		fmt.Printf("Checking every %s, up to %d times. Press Ctrl+C to stop.\n\n", p.Poller.Interval(), p.Poller.MaxAttempts())
		s.Suffix = " Waiting for first check..."
		s.Start()
	}

	result := p.Poller.Monitor(ctx, hash, chain.ID, nil,
		service.WithAttemptHook(func(attempt int, status model.SwapStatus, err error) {
			if err != nil {
				setSuffix(s, fmt.Sprintf(" Check %d/%d failed: %v", attempt, p.Poller.MaxAttempts(), err))
				return
			}
			setSuffix(s, fmt.Sprintf(" Check %d/%d: %s", attempt, p.Poller.MaxAttempts(), status))
		}),
	)
	if !quiet {
		s.Stop()
	}

	return statusOutput{
		TradeHash:   hash,
		ChainID:     chain.ID,
		Status:      result.Status,
		Attempts:    result.Attempts,
		Error:       result.Error,
		ExplorerURL: chain.TxURL(hash),
	}
}

func displayStatus(out statusOutput) {
	fmt.Println()
	printRule()
	color.Green("                        TRADE STATUS")
	printRule()
	fmt.Printf("\n  Trade hash:   %s\n", color.CyanString(out.TradeHash))
	fmt.Printf("  Chain:        %d\n", out.ChainID)
	fmt.Printf("  Status:       %s\n", coloredStatus(out.Status))
	if out.Upstream != "" && out.Upstream != string(out.Status) {
		fmt.Printf("  Relayer:      %s\n", out.Upstream)
	}
	if out.Attempts > 0 {
		fmt.Printf("  Checks:       %d\n", out.Attempts)
	}
	if out.Error != "" {
		fmt.Printf("  Error:        %s\n", color.RedString(out.Error))
	}
	fmt.Printf("  Explorer:     %s\n\n", out.ExplorerURL)
	printRule()
	fmt.Println()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
