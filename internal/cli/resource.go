package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatewei/gatewei/pkg/client"
)

func createResourceCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resource <id>",
		Short: "Show resource details",
		Long: `Display public metadata for a gated resource.

Pricing and payment stats come from the on-chain resource registry.
The content reference itself is never exposed here.

EXAMPLES:
  # Show resource info
  gatewei resource article-42

  # Output as JSON
  gatewei resource article-42 --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResource(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func createAccessCmd() *cobra.Command {
	var wallet string

	cmd := &cobra.Command{
		Use:   "access <id>",
		Short: "Check whether a wallet has paid for a resource",
		Long: `Check the on-chain access state for one wallet and resource.

EXAMPLES:
  gatewei access article-42 --wallet 0xABc1...
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccess(args[0], wallet)
		},
	}

	cmd.Flags().StringVar(&wallet, "wallet", "", "wallet address (required)")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

func createContentCmd() *cobra.Command {
	var wallet string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "content <id>",
		Short: "Fetch the gated content descriptor",
		Long: `Fetch the classified content descriptor for a paying wallet.

The server checks on-chain access first and returns 403 for wallets
that have not paid.

EXAMPLES:
  gatewei content article-42 --wallet 0xABc1...

  # Output as JSON
  gatewei content article-42 --wallet 0xABc1... --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContent(args[0], wallet, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&wallet, "wallet", "", "wallet address (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

func runResource(resourceID string, jsonOutput bool) error {
	c := client.New(getServer(), getAPIKey())

	res, err := c.GetResource(context.Background(), resourceID)
	if err != nil {
		return fmt.Errorf("failed to get resource: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("Resource: %s\n", res.ResourceID)
	fmt.Printf("Price:    %s ETH (%s wei)\n", res.PriceEther, res.PriceWei)
	fmt.Printf("Type:     %s\n", res.ContentType)
	if res.LifetimeAccess {
		fmt.Println("Access:   lifetime")
	} else {
		fmt.Println("Access:   per-payment")
	}
	if res.Active {
		fmt.Println("Status:   active")
	} else {
		fmt.Println("Status:   inactive")
	}
	fmt.Println()
	fmt.Printf("Payments: %s\n", res.PaymentCount)
	if res.TotalRevenue != "" {
		fmt.Printf("Revenue:  %s wei\n", res.TotalRevenue)
	}

	return nil
}

func runAccess(resourceID, wallet string) error {
	c := client.New(getServer(), getAPIKey())

	access, err := c.GetAccess(context.Background(), resourceID, wallet)
	if err != nil {
		return fmt.Errorf("failed to check access: %w", err)
	}

	if access.HasAccess {
		fmt.Printf("✅ %s has access to %s\n", access.Wallet, access.ResourceID)
	} else {
		fmt.Printf("❌ %s has no access to %s\n", access.Wallet, access.ResourceID)
		fmt.Println()
		fmt.Printf("Pay for it:  gatewei paydata %s\n", access.ResourceID)
	}

	return nil
}

func runContent(resourceID, wallet string, jsonOutput bool) error {
	c := client.New(getServer(), getAPIKey())

	content, err := c.GetContent(context.Background(), resourceID, wallet)
	if err != nil {
		return fmt.Errorf("failed to fetch content: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(content)
	}

	fmt.Printf("Kind:    %s\n", content.Kind)
	fmt.Printf("Locator: %s\n", content.Locator)
	if content.PlatformID != "" {
		fmt.Printf("Video:   %s\n", content.PlatformID)
	}

	return nil
}
