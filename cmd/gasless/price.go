package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/app"
	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var priceChain string

var priceCmd = &cobra.Command{
	Use:   "price <amount> <sell-token> <buy-token>",
	Short: "Show an indicative price without signing anything",
	Long: `Fetch an indicative gasless price. Nothing is signed or submitted.

Examples:
  gasless price 5 USDC DAI
  gasless price 100 USDC WETH --chain POLYGON`,
	Args: cobra.ExactArgs(3),
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVar(&priceChain, "chain", "", "Chain name or id (default from config)")
}

func runPrice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := app.NewPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ref := priceChain
	if ref == "" {
		ref = cfg.Swap.Chain
	}
	chain, err := resolveChain(p.Catalog, ref)
	if err != nil {
		return err
	}
	sell, err := p.Catalog.Resolve(chain.ID, args[1])
	if err != nil {
		return apperrors.NewValidation("sell token: " + err.Error())
	}
	buy, err := p.Catalog.Resolve(chain.ID, args[2])
	if err != nil {
		return apperrors.NewValidation("buy token: " + err.Error())
	}
	amount, err := catalog.ToAtomic(args[0], sell.Decimals)
	if err != nil {
		return apperrors.NewValidation(err.Error())
	}

	quiet := jsonOutput(cmd)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if !quiet {
		s.Suffix = " Fetching price..."
		s.Start()
	}
	price, err := p.Quotes.GetPrice(cmd.Context(), zerox.PriceRequest{
		ChainID:    chain.ID,
		SellToken:  sell.Address.Hex(),
		BuyToken:   buy.Address.Hex(),
		SellAmount: amount,
		Taker:      p.Taker(),
	})
	if !quiet {
		s.Stop()
	}
	if err != nil {
		return err
	}

	if quiet {
		printJSON(price)
		return nil
	}

	fmt.Println()
	printRule()
	color.Green("                        INDICATIVE PRICE")
	printRule()
	fmt.Printf("\n  Chain:        %s (%d)\n", chain.Name, chain.ID)
	fmt.Printf("  Sell:         %s\n", humanAmount(p.Catalog, sell.Address.Hex(), price.SellAmount))
	fmt.Printf("  Buy:          %s\n", humanAmount(p.Catalog, buy.Address.Hex(), price.BuyAmount))
	if price.MinBuyAmount != "" {
		fmt.Printf("  Minimum buy:  %s\n", humanAmount(p.Catalog, buy.Address.Hex(), price.MinBuyAmount))
	}
	if !price.LiquidityAvailable {
		color.Yellow("\n  No liquidity available for this pair.")
	}
	for _, v := range price.ValidationErrors {
		color.Yellow("  %s", v.Description)
	}
	fmt.Println()
	printRule()
	fmt.Println()
	return nil
}

// resolveChain accepts a chain id or name.
func resolveChain(cat *catalog.Catalog, ref string) (catalog.Chain, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if ch, ok := cat.ChainByID(id); ok {
			return ch, nil
		}
	} else if ch, ok := cat.ChainByKey(ref); ok {
		return ch, nil
	}
	return catalog.Chain{}, apperrors.NewValidation(fmt.Sprintf("unsupported chain %q", ref))
}
