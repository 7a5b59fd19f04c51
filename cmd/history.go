package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyAddress string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transactions for the wallet account",
	Long: `Fetch the most recent transactions of the connected account from the
block explorer, newest first.

Examples:
  walletguard history
  walletguard history --address 0x123...`,
	Run: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyAddress, "address", "", "Account to query instead of the wallet account")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	app, err := newApp()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	ctx := context.Background()

	var account common.Address
	if historyAddress != "" {
		if !common.IsHexAddress(historyAddress) {
			printError(fmt.Errorf("invalid address: %s", historyAddress))
			os.Exit(1)
		}
		account = common.HexToAddress(historyAddress)
	} else {
		snap, err := app.connect(ctx)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		account = snap.Account
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching transaction history..."
		s.Start()
	}

	txs, err := app.explorer.Transactions(ctx, account)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(txs, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(txs) == 0 {
		fmt.Println("\nNo transactions found.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 110))
	color.Green("                                     TRANSACTION HISTORY")
	fmt.Println(strings.Repeat("=", 110))
	fmt.Printf("\n  %-14s %-44s %-44s %s\n", "Hash", "From", "To", "Value (ETH)")
	for _, tx := range txs {
		hash := tx.Hash
		if len(hash) > 12 {
			hash = hash[:12] + ".."
		}
		fmt.Printf("  %-14s %-44s %-44s %s\n", hash, tx.From, tx.To, tx.ValueEth())
	}
	fmt.Println("\n" + strings.Repeat("=", 110) + "\n")
}
