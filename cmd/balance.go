package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"walletguard/pkg/refresh"
)

var (
	balanceToken     string
	balanceTokenAddr string
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show ETH and token balances",
	Long: `Show the connected account's ETH balance and one token balance.

The token comes from the registry by default; pass --token-address to
inspect an arbitrary ERC-20 contract instead.

Examples:
  walletguard balance
  walletguard balance --token LINK
  walletguard balance --token-address 0x779877A7B0D9E8603169DdbD7836e478b4624789`,
	Run: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVar(&balanceToken, "token", "", "Registry token key (MYTOKEN, LINK, WETH)")
	balanceCmd.Flags().StringVar(&balanceTokenAddr, "token-address", "", "Custom ERC-20 contract address")
}

func runBalance(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	app, err := newApp()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	ctx := context.Background()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching balances..."
		s.Start()
	}

	_, err = app.connect(ctx)
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}

	sel := defaultSelection(app)
	if balanceTokenAddr != "" {
		sel = refresh.Selection{Key: refresh.CustomKey, CustomAddress: balanceTokenAddr}
	} else if balanceToken != "" {
		sel = refresh.Selection{Key: balanceToken}
	}

	balances, err := app.refresher.Refresh(ctx, sel)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"eth_balance":   balances.EthBalance,
			"token_symbol":  balances.TokenSymbol,
			"token_balance": balances.TokenBalance,
		}
		if balances.TokenErr != nil {
			output["token_error"] = balances.TokenErr.Error()
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                       BALANCES")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  ETH:  %s\n", balances.EthBalance)
	if balances.TokenSymbol != "" || balances.TokenErr != nil {
		symbol := balances.TokenSymbol
		if symbol == "" {
			symbol = "Token"
		}
		fmt.Printf("  %s:  %s\n", symbol, balances.TokenBalance)
	}
	if balances.TokenErr != nil {
		color.Yellow("\n  Token not resolved: %s\n", describeError(balances.TokenErr))
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
