package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// projectConfigFiles is the search order for project config files
var projectConfigFiles = []string{"gatewei.toml", "gw.toml"}

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Server   string `toml:"server"`
	Resource string `toml:"resource,omitempty"`
	Gateway  string `toml:"gateway,omitempty"`
}

// ServerConfig is the global server configuration (stored in ~/.gatewei/config.yaml)
type ServerConfig struct {
	Server string `yaml:"server"`
	APIKey string `yaml:"api_key,omitempty"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var serverURL string
	var resource string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create a gatewei.toml configuration file in the current directory.

This file stores project-specific settings like the server URL, a
default resource id, and the IPFS gateway for local classification.

EXAMPLES:
  # Create config with default server
  gatewei config init

  # Create config for a specific server
  gatewei config init --server https://gatewei.example.com

  # Overwrite existing config
  gatewei config init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(serverURL, resource, force)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "server URL")
	cmd.Flags().StringVar(&resource, "resource", "", "default resource id")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		Long: `Display the current configuration.

Shows both the local project config (gatewei.toml) and the global config from ~/.gatewei/config.yaml.

EXAMPLES:
  gatewei config show
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func runConfigInit(serverURL, resource string, force bool) error {
	configPath := "gatewei.toml"

	// Check if any config file already exists
	for _, cfgFile := range projectConfigFiles {
		if _, err := os.Stat(cfgFile); err == nil && !force {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", cfgFile)
		}
	}

	// Generate TOML config
	content := fmt.Sprintf(`# Gatewei project configuration

server = "%s"

# Default resource id for verify/access/content commands
# resource = "article-42"

# IPFS gateway for local classification
# gateway = "https://ipfs.io/ipfs/"
`, serverURL)
	if resource != "" {
		content += fmt.Sprintf("\nresource = %q\n", resource)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Server: %s\n", serverURL)
	if resource != "" {
		fmt.Printf("  Resource: %s\n", resource)
	}
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Edit %s to customize settings\n", configPath)
	fmt.Println("  2. Run 'gatewei auth login' to authenticate for admin commands")
	fmt.Println("  3. Run 'gatewei verify <txhash>' to verify a payment")

	return nil
}

func runConfigShow() error {
	fmt.Println("Configuration sources (in order of precedence):")
	fmt.Println()

	// 1. Command line flags
	fmt.Println("1. Command line flags")
	fmt.Println("   --server, --api-key, --config")
	fmt.Println()

	// 2. Environment variables
	fmt.Println("2. Environment variables")
	serverEnv := os.Getenv("GATEWEI_SERVER")
	keyEnv := os.Getenv("GATEWEI_API_KEY")
	if serverEnv != "" {
		fmt.Printf("   GATEWEI_SERVER=%s\n", serverEnv)
	} else {
		fmt.Println("   GATEWEI_SERVER=(not set)")
	}
	if keyEnv != "" {
		fmt.Printf("   GATEWEI_API_KEY=%s\n", maskAPIKey(keyEnv))
	} else {
		fmt.Println("   GATEWEI_API_KEY=(not set)")
	}
	fmt.Println()

	// 3. Local project config
	fmt.Println("3. Local project config (gatewei.toml or gw.toml)")
	projectConfig, configPath, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		fmt.Printf("   Loaded from: %s\n", configPath)
		if projectConfig.Server != "" {
			fmt.Printf("   server: %s\n", projectConfig.Server)
		}
		if projectConfig.Resource != "" {
			fmt.Printf("   resource: %s\n", projectConfig.Resource)
		}
		if projectConfig.Gateway != "" {
			fmt.Printf("   gateway: %s\n", projectConfig.Gateway)
		}
	}
	fmt.Println()

	// 4. Global config
	fmt.Println("4. Global config (~/.gatewei/config.yaml)")
	if global := loadGlobalConfigSilent(); global == nil {
		fmt.Println("   (not found)")
	} else {
		if global.Server != "" {
			fmt.Printf("   server: %s\n", global.Server)
		}
		if global.APIKey != "" {
			fmt.Printf("   api_key: %s\n", maskAPIKey(global.APIKey))
		}
	}
	fmt.Println()

	// 5. Credentials
	fmt.Println("5. Credentials (~/.gatewei/credentials)")
	creds, err := loadCredentials()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		if len(creds.Servers) == 0 {
			fmt.Println("   (no credentials stored)")
		} else {
			for server, cred := range creds.Servers {
				fmt.Printf("   %s: %s\n", server, maskAPIKey(cred.APIKey))
			}
		}
	}
	fmt.Println()

	// Effective config
	fmt.Println("Effective configuration:")
	fmt.Printf("   Server:  %s\n", getServer())
	if key := getAPIKey(); key != "" {
		fmt.Printf("   API Key: %s\n", maskAPIKey(key))
	} else {
		fmt.Println("   API Key: (not set)")
	}

	return nil
}

// loadProjectConfig loads the project config from the first matching config file.
// Returns the config, the path it was loaded from, and an error.
func loadProjectConfig() (*ProjectConfig, string, error) {
	// If --config flag was provided, use that directly
	if cfgFile != "" {
		config, err := loadProjectConfigFromPath(cfgFile)
		if err != nil {
			return nil, cfgFile, err
		}
		return config, cfgFile, nil
	}

	// Search for config files in order
	for _, name := range projectConfigFiles {
		if _, err := os.Stat(name); err == nil {
			config, err := loadProjectConfigFromPath(name)
			if err != nil {
				return nil, name, err
			}
			return config, name, nil
		}
	}
	return nil, "", os.ErrNotExist
}

// loadProjectConfigFromPath loads a project config from a specific path
func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ProjectConfig
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	return &config, nil
}

// loadGlobalConfigSilent loads ~/.gatewei/config.yaml, returning nil when the
// file is missing or unreadable.
func loadGlobalConfigSilent() *ServerConfig {
	data, err := os.ReadFile(filepath.Join(credentialsDir(), "config.yaml"))
	if err != nil {
		return nil
	}
	var config ServerConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load global config: %v\n", err)
		return nil
	}
	return &config
}

// loadProjectConfigSilent loads the project config without returning errors for missing files.
// Returns nil if the file doesn't exist, but returns errors for parse failures.
func loadProjectConfigSilent() *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		// Show actionable errors (parse failures)
		fmt.Fprintf(os.Stderr, "Warning: failed to load project config: %v\n", err)
		return nil
	}
	return config
}
