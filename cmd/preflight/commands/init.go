package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kavrelis/preflight/internal/config"
	"github.com/spf13/cobra"
)

const starterPolicy = `{
  "version": "1",
  "project": "my-project",
  "modifications": {
    "protectedFiles": ["package-lock.json"],
    "protectedDirectories": [".preflight"]
  },
  "codeQuality": {
    "maxFileLines": 400
  }
}
`

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize preflight in a project",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	configPath := config.Path(root)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
		return nil
	}

	if err := os.MkdirAll(config.StateDir(root), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	cfg := config.DefaultConfig()
	cfg.Policy = "preflight.policy.json"
	if err := config.Save(cfg, root); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	policyPath := filepath.Join(root, cfg.Policy)
	if _, err := os.Stat(policyPath); os.IsNotExist(err) {
		if err := os.WriteFile(policyPath, []byte(starterPolicy), 0644); err != nil {
			return fmt.Errorf("failed to write starter policy: %w", err)
		}
	}

	fmt.Printf("Preflight initialized!\n")
	fmt.Printf("Config: %s\n", configPath)
	fmt.Printf("Policy: %s\n", policyPath)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("1. Edit %s to describe your architecture rules\n", cfg.Policy)
	fmt.Printf("2. Pipe agent output through 'preflight validate'\n")

	return nil
}
