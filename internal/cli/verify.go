package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatewei/gatewei/pkg/client"
)

func createVerifyCmd() *cobra.Command {
	var wait bool
	var interval time.Duration
	var timeout time.Duration
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify <txhash>",
		Short: "Verify an on-chain payment transaction",
		Long: `Submit a transaction hash to the server for payment verification.

The server inspects the transaction's receipt and PaymentReceived events
and returns a verdict: verified, pending, or rejected.

EXAMPLES:
  # Verify a payment transaction
  gatewei verify 0x3f1a...

  # Keep polling while the transaction is unmined
  gatewei verify 0x3f1a... --wait

  # Poll with a custom interval and cap
  gatewei verify 0x3f1a... --wait --interval 5s --timeout 2m

  # Output as JSON
  gatewei verify 0x3f1a... --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerifyTx(args[0], wait, interval, timeout, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the transaction is mined")
	cmd.Flags().DurationVar(&interval, "interval", 3*time.Second, "polling interval with --wait")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "give up after this long with --wait")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runVerifyTx(txHash string, wait bool, interval, timeout time.Duration, jsonOutput bool) error {
	c := client.New(getServer(), getAPIKey())
	ctx := context.Background()

	result, err := c.Verify(ctx, txHash)
	if err != nil {
		return fmt.Errorf("verification request failed: %w", err)
	}

	if wait && result.Pending() {
		if !jsonOutput {
			fmt.Printf("⏳ Transaction pending, polling every %s...\n", interval)
		}
		deadline := time.Now().Add(timeout)
		for result.Pending() {
			if time.Now().After(deadline) {
				return fmt.Errorf("timed out after %s waiting for transaction to mine", timeout)
			}
			time.Sleep(interval)
			result, err = c.Verify(ctx, txHash)
			if err != nil {
				return fmt.Errorf("verification request failed: %w", err)
			}
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println()
	switch result.Status {
	case "verified":
		fmt.Println("✅ VERIFIED")
		fmt.Printf("   Payer:   %s\n", result.Payer)
		fmt.Printf("   Paid to: %s\n", result.Beneficiary)
		fmt.Printf("   Amount:  %s ETH (%s wei)\n", result.AmountEther, result.AmountWei)
		if result.VerifiedAt != "" {
			fmt.Printf("   At:      %s\n", result.VerifiedAt)
		}
	case "pending":
		fmt.Println("⏳ PENDING")
		fmt.Println("   Transaction is known but not yet mined")
		fmt.Printf("   Re-check: gatewei verify %s --wait\n", result.TxHash)
	case "rejected":
		fmt.Println("❌ REJECTED")
		fmt.Printf("   Reason: %s\n", result.Reason)
	default:
		fmt.Printf("Status: %s\n", result.Status)
	}

	return nil
}
