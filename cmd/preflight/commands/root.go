package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kavrelis/preflight/internal/config"
	"github.com/spf13/cobra"
)

var (
	logLevelOverride string
	projectRootFlag  string
	quietFlag        bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Preflight - validation guard for agent-proposed code changes",
		Long: `Preflight inspects the file modifications an automated agent proposes and
decides whether they are safe to apply: paths must resolve inside the
project, imports must exist, brackets must balance, and the project's
architecture policy must hold.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return configureLogger(config.DefaultConfig(), logLevelOverride, quietFlag)
			}
			root, err := resolveRoot()
			if err != nil {
				return err
			}
			cfg, err := config.Load(root)
			if err != nil {
				return err
			}
			return configureLogger(cfg, logLevelOverride, quietFlag)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "Override log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&projectRootFlag, "root", "", "Project root (defaults to the working directory)")
	cmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress log output (for --json pipelines)")

	cmd.AddCommand(
		NewInitCmd(),
		NewValidateCmd(),
		NewPolicyCmd(),
		NewApprovalCmd(),
		NewStatusCmd(),
		NewVersionCmd(),
	)

	return cmd
}

func resolveRoot() (string, error) {
	root := strings.TrimSpace(projectRootFlag)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", root)
	}
	return abs, nil
}
