package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatewei/gatewei/pkg/client"
)

func createRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage stored verification records (admin)",
	}

	cmd.AddCommand(createRecordsListCmd())
	cmd.AddCommand(createRecordsShowCmd())
	cmd.AddCommand(createRecordsPurgeCmd())

	return cmd
}

func createRecordsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List verification records",
		Long: `List all stored verification records.

Requires an admin API key.

EXAMPLES:
  gatewei records list

  # Output as JSON
  gatewei records list --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func createRecordsShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <txhash>",
		Short: "Show one verification record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsShow(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func createRecordsPurgeCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge <txhash>",
		Short: "Delete a verification record",
		Long: `Delete a stored verification record.

The next verify call for this transaction will re-check the chain
instead of hitting the record fast path.

EXAMPLES:
  gatewei records purge 0x3f1a...

  # Skip confirmation
  gatewei records purge 0x3f1a... --force
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsPurge(args[0], force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation")

	return cmd
}

func runRecordsList(jsonOutput bool) error {
	c := client.New(getServer(), getAPIKey())

	page, err := c.ListRecords(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	if page.Count == 0 {
		fmt.Println("No verification records")
		return nil
	}

	fmt.Printf("Verification records (%d):\n", page.Count)
	for _, rec := range page.Records {
		fmt.Printf("  • %s  %s ETH  payer %s  at %s\n",
			rec.TxHash, rec.AmountEther, rec.Payer, rec.VerifiedAt)
	}

	return nil
}

func runRecordsShow(txHash string, jsonOutput bool) error {
	c := client.New(getServer(), getAPIKey())

	rec, err := c.GetRecord(context.Background(), txHash)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Printf("Transaction: %s\n", rec.TxHash)
	fmt.Printf("Payer:       %s\n", rec.Payer)
	fmt.Printf("Beneficiary: %s\n", rec.Beneficiary)
	fmt.Printf("Amount:      %s ETH (%s wei)\n", rec.AmountEther, rec.AmountWei)
	fmt.Printf("Verified:    %s\n", rec.VerifiedAt)

	return nil
}

func runRecordsPurge(txHash string, force bool) error {
	if !force {
		fmt.Printf("Delete verification record %s? [y/N] ", txHash)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	c := client.New(getServer(), getAPIKey())
	if err := c.DeleteRecord(context.Background(), txHash); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	fmt.Printf("✅ Record deleted: %s\n", txHash)
	return nil
}
