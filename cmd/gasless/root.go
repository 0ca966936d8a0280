package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/GoPolymarket/gaslessgate/internal/config"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gasless",
	Short: "Gasless token swaps through the 0x Gasless API",
	Long: `gasless quotes, signs, submits and monitors gasless swaps. The relayer
pays gas; the wallet only signs EIP-712 documents.

Configuration comes from config.yaml, GASLESSGATE_* environment variables
and an optional .env file.

Examples:
  gasless swap 5 USDC DAI --chain BASE
  gasless price 100 USDC WETH --chain POLYGON
  gasless status 0xabc... --chain BASE --watch
  gasless tokens --chain BASE`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logger.InitWithWriter(level, os.Stderr)
		return nil
	},
}

// Execute runs the root command and prints any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level written to stderr")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

func printError(err error) {
	appErr := apperrors.Wrap(err)
	fmt.Fprintf(os.Stderr, "\n%s %s\n", color.RedString("Error:"), appErr.Error())
	if appErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.YellowString("Hint:"), appErr.Suggestion)
	}
	fmt.Fprintln(os.Stderr)
}
