package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"walletguard/pkg/fraud"
	"walletguard/pkg/tokens"
	"walletguard/pkg/transfer"
	"walletguard/pkg/wallet"
)

var rootCmd = &cobra.Command{
	Use:   "walletguard",
	Short: "A CLI wallet with fraud-screened transfers",
	Long: `walletguard is a command-line wallet for a single EVM chain. Every
transfer is screened by an external fraud-detection service before it is
signed; rejected transfers never reach the mempool.

Examples:
  walletguard connect
  walletguard balance --token MYTOKEN
  walletguard send 1.5 ETH to 0x123...
  walletguard send 100 MTK to 0x123... --token-address 0xabc...
  walletguard history`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %s\n\n", describeError(err))
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}

// describeError turns a failure into an actionable message. Conditions
// with different remedies stay distinct.
func describeError(err error) string {
	switch {
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return "no wallet provider available. Set WALLETGUARD_RPC_URL and WALLETGUARD_PRIVATE_KEY."
	case errors.Is(err, wallet.ErrUserRejected):
		return fmt.Sprintf("%v. Approve the prompt and try again.", err)
	case errors.Is(err, wallet.ErrChainSwitchFailed):
		return err.Error()
	case errors.Is(err, wallet.ErrNotConnected):
		return "wallet is not connected. Run 'walletguard connect' first."
	case errors.Is(err, tokens.ErrInvalidAddress):
		return err.Error()
	case errors.Is(err, tokens.ErrNoContractAtAddress):
		return fmt.Sprintf("%v. Double-check the contract address.", err)
	case errors.Is(err, transfer.ErrInvalidAmount):
		return err.Error()
	case errors.Is(err, fraud.ErrServiceUnavailable):
		return fmt.Sprintf("%v. The transfer was not submitted; try again later.", err)
	case errors.Is(err, transfer.ErrSubmissionFailed):
		return err.Error()
	default:
		return err.Error()
	}
}

func printChainWarning(err error) {
	color.Yellow("\nWarning: %s\n", describeError(err))
}
