package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"walletguard/pkg/parser"
	"walletguard/pkg/refresh"
	"walletguard/pkg/transfer"
)

var (
	sendTokenAddr string
	sendNoConfirm bool
)

var sendCmd = &cobra.Command{
	Use:   "send <amount> <token> to <address>",
	Short: "Send ETH or an ERC-20 token through the fraud screen",
	Long: `Send a value transfer. The request is screened by the fraud-detection
service first; a rejected transfer is never signed or broadcast.

The token is either ETH, a registry key (MYTOKEN, LINK, WETH), or any
symbol combined with --token-address for an arbitrary contract.

Examples:
  walletguard send 1.5 ETH to 0x123...
  walletguard send 100 MYTOKEN to 0x123...
  walletguard send 25 DAI to 0x123... --token-address 0xabc...`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendTokenAddr, "token-address", "", "ERC-20 contract address for a non-registry token")
	sendCmd.Flags().BoolVarP(&sendNoConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSend(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Parse the command
	sendReq, err := parser.ParseSendCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	app, err := newApp()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer app.Close()

	req, err := buildTransferRequest(app, sendReq)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

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

	if !sendNoConfirm && !jsonOutput {
		displayTransfer(snap.Account.Hex(), sendReq)
		if !confirmSend() {
			fmt.Println("\nTransfer cancelled.")
			os.Exit(0)
		}
	}

	if !jsonOutput {
		s.Suffix = " Screening and submitting transfer..."
		s.Start()
	}

	outcome := app.pipeline.Run(ctx, req)
	if !jsonOutput {
		s.Stop()
	}

	reportOutcome(app, sendReq, outcome, jsonOutput)

	// Re-read balances after a successful send.
	if outcome.Status == transfer.StatusSent {
		sel := refresh.Selection{Key: sendReq.Token}
		if req.Asset == transfer.AssetERC20 {
			sel = refresh.Selection{Key: refresh.CustomKey, CustomAddress: req.TokenAddress}
		}
		if balances, err := app.refresher.Refresh(ctx, sel); err == nil && !jsonOutput {
			fmt.Printf("  ETH Balance:  %s\n", balances.EthBalance)
			if balances.TokenSymbol != "" {
				fmt.Printf("  %s Balance:  %s\n", balances.TokenSymbol, balances.TokenBalance)
			}
			fmt.Println()
		}
	}

	// A blocked transfer reports to the audit log in the background;
	// flush before the process exits.
	app.pipeline.Wait()

	if outcome.Status != transfer.StatusSent {
		os.Exit(1)
	}
}

// buildTransferRequest maps the parsed command onto a pipeline request,
// resolving registry keys to contract addresses.
func buildTransferRequest(app *app, sendReq *parser.SendCommand) (transfer.Request, error) {
	req := transfer.Request{
		Receiver:    sendReq.Receiver,
		Amount:      sendReq.Amount,
		TokenSymbol: sendReq.Token,
	}

	if parser.IsNativeToken(sendReq.Token) {
		req.Asset = transfer.AssetETH
		req.TokenSymbol = "ETH"
		return req, nil
	}

	req.Asset = transfer.AssetERC20
	if sendTokenAddr != "" {
		req.TokenAddress = sendTokenAddr
		return req, nil
	}

	desc, err := app.registry.Lookup(sendReq.Token)
	if err != nil {
		return transfer.Request{}, fmt.Errorf("%v. Use --token-address for non-registry tokens", err)
	}
	req.TokenAddress = desc.Address.Hex()
	req.TokenSymbol = desc.Symbol
	return req, nil
}

func reportOutcome(app *app, sendReq *parser.SendCommand, outcome transfer.Outcome, jsonOutput bool) {
	if jsonOutput {
		output := map[string]interface{}{
			"status": string(outcome.Status),
		}
		switch outcome.Status {
		case transfer.StatusSent:
			output["tx_hash"] = outcome.TxHash.Hex()
		case transfer.StatusBlocked:
			output["reason"] = outcome.Reason
		case transfer.StatusFailed:
			output["error"] = describeError(outcome.Err)
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	switch outcome.Status {
	case transfer.StatusSent:
		printSuccess(color.GreenString("✓ Transfer sent!"))
		fmt.Printf("  Tx Hash:  %s\n", color.CyanString(outcome.TxHash.Hex()))
		if link := app.policy.ExplorerTxURL(outcome.TxHash.Hex()); link != "" {
			fmt.Printf("  Explorer: %s\n", link)
		}
		fmt.Println()
	case transfer.StatusBlocked:
		color.Red("\n✗ Transfer blocked by fraud screening (verdict: %s)\n", outcome.Reason)
		fmt.Println("\nNo transaction was signed or broadcast. The attempt has been recorded.")
	case transfer.StatusFailed:
		printError(outcome.Err)
	}
}

func displayTransfer(sender string, sendReq *parser.SendCommand) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                      TRANSFER")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  From:    %s\n", sender)
	fmt.Printf("  To:      %s\n", sendReq.Receiver)
	fmt.Printf("  Amount:  %s %s\n", sendReq.Amount, sendReq.Token)
	fmt.Println("\n" + strings.Repeat("=", 60))
}

func confirmSend() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with transfer? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
