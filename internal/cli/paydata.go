package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gatewei/gatewei/internal/vault"
	"github.com/gatewei/gatewei/pkg/client"
)

func createPaydataCmd() *cobra.Command {
	var nonceHex string

	cmd := &cobra.Command{
		Use:   "paydata <id>",
		Short: "Build payForResource transaction calldata",
		Long: `ABI-encode the calldata for a payForResource transaction.

A random nonce is generated unless --nonce provides one. The server's
public config (contract address and price) is fetched when reachable
to print a complete transaction recipe.

EXAMPLES:
  # Build calldata with a random nonce
  gatewei paydata article-42

  # Pin the nonce (32 bytes of hex)
  gatewei paydata article-42 --nonce 0x0123...ff
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaydata(args[0], nonceHex)
		},
	}

	cmd.Flags().StringVar(&nonceHex, "nonce", "", "32-byte hex nonce (random if omitted)")

	return cmd
}

func runPaydata(resourceID, nonceHex string) error {
	var nonce [32]byte
	if nonceHex != "" {
		raw, err := hex.DecodeString(strings.TrimPrefix(nonceHex, "0x"))
		if err != nil {
			return fmt.Errorf("invalid nonce hex: %w", err)
		}
		if len(raw) != 32 {
			return fmt.Errorf("nonce must be 32 bytes, got %d", len(raw))
		}
		copy(nonce[:], raw)
	} else {
		// Two v4 UUIDs give 32 random bytes.
		a, b := uuid.New(), uuid.New()
		copy(nonce[:16], a[:])
		copy(nonce[16:], b[:])
	}

	data, err := vault.EncodePayForResource(resourceID, nonce)
	if err != nil {
		return fmt.Errorf("encoding calldata: %w", err)
	}

	fmt.Printf("Resource: %s\n", resourceID)
	fmt.Printf("Nonce:    0x%s\n", hex.EncodeToString(nonce[:]))
	fmt.Printf("Data:     0x%s\n", hex.EncodeToString(data))

	// Best effort: complete the recipe from the server's public config.
	c := client.New(getServer(), "")
	cfg, err := c.Config(context.Background())
	if err != nil {
		fmt.Println()
		fmt.Printf("⚠️  Server unreachable (%v), send the transaction to the vault contract with the resource price as value\n", err)
		return nil
	}

	fmt.Printf("To:       %s\n", cfg.ContractAddress)
	fmt.Printf("Value:    %s wei (%s ETH)\n", cfg.PriceWei, cfg.PriceEther)
	fmt.Printf("Chain:    %d\n", cfg.ChainID)

	return nil
}
