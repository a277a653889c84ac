package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gatewei/gatewei/internal/validation"
)

func createVersionCmd(version string) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show the CLI version.

EXAMPLES:
  gatewei version

  # Also compare against the server's version
  gatewei version --check
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(version, check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "compare against the server version")

	return cmd
}

func runVersion(version string, check bool) error {
	fmt.Printf("gatewei %s\n", version)

	if !check {
		return nil
	}

	serverURL := getServer()
	serverVersion, err := fetchServerVersion(serverURL)
	if err != nil {
		return fmt.Errorf("failed to fetch server version from %s: %w", serverURL, err)
	}

	fmt.Printf("server  %s (%s)\n", serverVersion, serverURL)

	if serverVersion == "dev" || version == "dev" {
		return nil
	}

	switch validation.CompareVersions(version, serverVersion) {
	case -1:
		fmt.Println()
		fmt.Println("⚠️  CLI is older than the server, consider upgrading")
	case 1:
		fmt.Println()
		fmt.Println("⚠️  CLI is newer than the server")
	}

	return nil
}

func fetchServerVersion(serverURL string) (string, error) {
	req, err := http.NewRequestWithContext(context.Background(), "GET", serverURL+"/health", nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "", err
	}
	if health.Version == "" {
		return "", fmt.Errorf("server did not report a version")
	}

	return health.Version, nil
}
