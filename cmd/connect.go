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

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet and verify the chain",
	Long: `Connect the configured wallet, negotiate the required chain, and show
the account's balances.

If the wallet sits on the wrong chain, one switch is attempted; a chain the
wallet does not know is added first. A failed negotiation still leaves the
wallet connected, with a warning to switch manually.`,
	Run: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) {
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
		s.Suffix = " Connecting wallet..."
		s.Start()
	}

	snap, err := app.connect(ctx)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Balances are read only after chain negotiation settles.
	balances, err := app.refresher.Refresh(ctx, defaultSelection(app))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"account":           snap.Account.Hex(),
			"chain_id":          snap.ChainID.String(),
			"on_required_chain": snap.OnRequiredChain(app.policy),
			"eth_balance":       balances.EthBalance,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    WALLET CONNECTED")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Account:      %s\n", color.CyanString(snap.Account.Hex()))
	fmt.Printf("  Chain:        %s (id %s)\n", app.policy.DisplayName, snap.ChainID)
	fmt.Printf("  ETH Balance:  %s\n", balances.EthBalance)
	if balances.TokenSymbol != "" {
		fmt.Printf("  %s Balance:  %s\n", balances.TokenSymbol, balances.TokenBalance)
	}
	if !snap.OnRequiredChain(app.policy) {
		color.Yellow("\n  Wallet is on the wrong chain. Switch to %s manually.\n", app.policy.DisplayName)
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

// defaultSelection picks the first registry token for display, matching
// the dashboard's default of the project token.
func defaultSelection(app *app) refresh.Selection {
	list := app.registry.List()
	if len(list) == 0 {
		return refresh.Selection{}
	}
	return refresh.Selection{Key: list[0].Key}
}
