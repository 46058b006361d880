package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kavrelis/preflight/internal/config"
	"github.com/kavrelis/preflight/internal/policy"
	"github.com/spf13/cobra"
)

func NewPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the project policy document",
	}

	cmd.AddCommand(
		newPolicyLintCmd(),
		newPolicyShowCmd(),
	)

	return cmd
}

func newPolicyLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [file]",
		Short: "Check a policy document against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPolicyLint,
	}
}

func newPolicyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Summarize the rules a policy document enforces",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPolicyShow,
	}
}

func runPolicyLint(cmd *cobra.Command, args []string) error {
	path, err := policyTarget(args)
	if err != nil {
		return err
	}

	issues, err := policy.Lint(path)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Printf("%s: OK\n", path)
		return nil
	}

	fmt.Printf("%s: %d issue(s)\n", path, len(issues))
	for _, issue := range issues {
		fmt.Printf("  - %s\n", issue)
	}
	return fmt.Errorf("policy does not match the schema")
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	path, err := policyTarget(args)
	if err != nil {
		return err
	}

	doc, err := policy.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Policy: %s\n", path)
	if doc.Project != "" {
		fmt.Printf("  Project: %s\n", doc.Project)
	}
	if doc.Version != "" {
		fmt.Printf("  Version: %s\n", doc.Version)
	}
	if doc.TechStack.Framework != "" || doc.TechStack.Language != "" {
		fmt.Printf("  Stack: %s %s\n", doc.TechStack.Framework, doc.TechStack.Language)
	}

	fmt.Println("\nRules:")
	fmt.Printf("  Protected files: %d\n", len(doc.Modifications.ProtectedFiles))
	fmt.Printf("  Protected directories: %d\n", len(doc.Modifications.ProtectedDirectories))
	fmt.Printf("  Approval triggers: %d\n", len(doc.Modifications.RequireApproval))
	fmt.Printf("  Boundaries: %d\n", len(doc.Boundaries))
	fmt.Printf("  Forbidden packages: %d\n", len(doc.TechStack.ForbiddenPackages))
	fmt.Printf("  Forbidden patterns: %d\n", len(doc.CodeQuality.ForbiddenPatterns))
	if doc.CodeQuality.MaxFileLines > 0 {
		fmt.Printf("  Max file lines: %d\n", doc.CodeQuality.MaxFileLines)
	}

	if len(doc.Directories) > 0 {
		fmt.Println("\nDirectory rules:")
		dirs := make([]string, 0, len(doc.Directories))
		for dir := range doc.Directories {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			rule := doc.Directories[dir]
			var parts []string
			if rule.MaxLines > 0 {
				parts = append(parts, fmt.Sprintf("maxLines=%d", rule.MaxLines))
			}
			if len(rule.RequiredExports) > 0 {
				parts = append(parts, fmt.Sprintf("exports=%s", strings.Join(rule.RequiredExports, ",")))
			}
			if len(rule.ForbiddenPatterns) > 0 {
				parts = append(parts, fmt.Sprintf("forbidden=%d pattern(s)", len(rule.ForbiddenPatterns)))
			}
			if rule.Pure {
				parts = append(parts, "pure")
			}
			if len(parts) == 0 {
				parts = append(parts, "no constraints")
			}
			fmt.Printf("  %s: %s\n", dir, strings.Join(parts, ", "))
		}
	}

	if len(doc.Naming) > 0 {
		fmt.Println("\nNaming:")
		kinds := make([]string, 0, len(doc.Naming))
		for kind := range doc.Naming {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  %s: %s\n", kind, doc.Naming[kind])
		}
	}

	return nil
}

// policyTarget resolves the document to inspect: an explicit argument
// wins, otherwise the configured or conventional project policy.
func policyTarget(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	root, err := resolveRoot()
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	path := cfg.PolicyPath(root)
	if path == "" {
		return "", fmt.Errorf("no policy document found (looked for preflight.policy.{json,yaml,yml} in %s)", root)
	}
	return path, nil
}
