package main

import (
	"fmt"
	"strings"

	"github.com/GoPolymarket/gaslessgate/internal/app"
	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokensChain string

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "List supported chains and tokens",
	Long: `List the chains and tokens gasless knows about.

Examples:
  gasless tokens
  gasless tokens --chain BASE`,
	Args: cobra.NoArgs,
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&tokensChain, "chain", "", "Only list tokens on this chain")
}

type chainTokens struct {
	Chain  catalog.Chain           `json:"chain"`
	Tokens []catalog.ResolvedToken `json:"tokens"`
}

func runTokens(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat := app.Catalog(cfg)

	chains := cat.Chains()
	if tokensChain != "" {
		ch, err := resolveChain(cat, tokensChain)
		if err != nil {
			return err
		}
		chains = []catalog.Chain{ch}
	}

	out := make([]chainTokens, 0, len(chains))
	for _, ch := range chains {
		out = append(out, chainTokens{Chain: ch, Tokens: cat.TokensForChain(ch.Key)})
	}

	if jsonOutput(cmd) {
		printJSON(out)
		return nil
	}

	for _, ct := range out {
		fmt.Printf("\n%s %s\n", color.CyanString(ct.Chain.Name), color.HiBlackString("(%d, native %s)", ct.Chain.ID, ct.Chain.Native.Symbol))
		fmt.Println(strings.Repeat("-", ruleWidth))
		for _, t := range ct.Tokens {
			fmt.Printf("  %-6s %-24s %2d  %s\n", t.Symbol, t.Name, t.Decimals, color.HiBlackString(t.Address.Hex()))
		}
	}
	fmt.Println()
	return nil
}
