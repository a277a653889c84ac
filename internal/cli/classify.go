package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatewei/gatewei/internal/content"
)

func createClassifyCmd() *cobra.Command {
	var gateway string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify <ref>",
		Short: "Classify a content reference locally",
		Long: `Classify a content reference into a canonical descriptor without
contacting a server.

Recognizes IPFS CIDs and ipfs:// URIs, direct media URLs, and video
platform links. Useful for checking what the delivery layer will do
with a reference before publishing it.

EXAMPLES:
  # Classify an IPFS CID
  gatewei classify QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG

  # Classify a YouTube URL
  gatewei classify "https://youtu.be/dQw4w9WgXcQ"

  # Use a custom IPFS gateway
  gatewei classify ipfs://QmYwAP... --gateway https://gateway.example.com/ipfs/
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(args[0], gateway, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&gateway, "gateway", "", "IPFS gateway URL prefix")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runClassify(ref, gateway string, jsonOutput bool) error {
	resolver := content.NewResolver(gateway)
	desc := resolver.Classify(ref)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}

	fmt.Printf("Kind:    %s\n", desc.Kind)
	fmt.Printf("Locator: %s\n", desc.Locator)
	if desc.PlatformID != "" {
		fmt.Printf("Video:   %s\n", desc.PlatformID)
	}
	if desc.Kind == content.KindUnknown {
		fmt.Println()
		fmt.Println("⚠️  Reference was not recognized and will pass through unchanged")
	}

	return nil
}
