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
)

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Inspect any ERC-20 token contract",
	Long: `Resolve the name, symbol, decimals, and your balance for an arbitrary
ERC-20 contract address.

An address with no deployed contract is reported as such, not as a zero
balance.

Examples:
  walletguard token 0x779877A7B0D9E8603169DdbD7836e478b4624789`,
	Args: cobra.ExactArgs(1),
	Run:  runToken,
}

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List the registry tokens",
	Run:     runListTokens,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(tokensCmd)
}

func runToken(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	address := args[0]

	app, err := newApp()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	ctx := context.Background()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Resolving token..."
		s.Start()
	}

	snap, err := app.connect(ctx)
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}

	info, err := app.resolver.Resolve(ctx, snap.Account, address)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"address":  info.Address.Hex(),
			"name":     info.Name,
			"symbol":   info.Symbol,
			"decimals": info.Decimals,
			"balance":  info.Balance,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                      TOKEN INFO")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Address:   %s\n", color.CyanString(info.Address.Hex()))
	fmt.Printf("  Name:      %s\n", info.Name)
	fmt.Printf("  Symbol:    %s\n", info.Symbol)
	fmt.Printf("  Decimals:  %d\n", info.Decimals)
	fmt.Printf("  Balance:   %s %s\n", info.Balance, info.Symbol)
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	app, err := newApp()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	list := app.registry.List()

	if jsonOutput {
		output := make([]map[string]string, 0, len(list))
		for _, d := range list {
			output = append(output, map[string]string{
				"key":     d.Key,
				"name":    d.Name,
				"symbol":  d.Symbol,
				"address": d.Address.Hex(),
			})
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                            REGISTRY TOKENS")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
	for _, d := range list {
		fmt.Printf("  %-10s %-20s %-6s %s\n", d.Key, d.Name, d.Symbol, d.Address.Hex())
	}
	fmt.Println("\n" + strings.Repeat("=", 80) + "\n")
}
