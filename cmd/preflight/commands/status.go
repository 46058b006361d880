package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kavrelis/preflight/internal/approval"
	"github.com/kavrelis/preflight/internal/config"
	"github.com/kavrelis/preflight/internal/metrics"
	"github.com/kavrelis/preflight/internal/policy"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show preflight configuration status",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("=== Preflight Status ===")
	fmt.Println()

	fmt.Printf("Project root: %s\n", root)

	fmt.Printf("\nConfig: %s\n", config.Path(root))
	if _, err := os.Stat(config.Path(root)); err == nil {
		fmt.Println("  Status: OK")
	} else {
		fmt.Println("  Status: Not found (defaults in effect, run 'preflight init')")
	}

	fmt.Println("\nPolicy:")
	policyPath := cfg.PolicyPath(root)
	if policyPath == "" {
		fmt.Println("  Status: none found (policy compliance check idles)")
	} else {
		fmt.Printf("  File: %s\n", policyPath)
		issues, err := policy.Lint(policyPath)
		switch {
		case err != nil:
			fmt.Printf("  Status: unreadable (%v)\n", err)
		case len(issues) > 0:
			fmt.Printf("  Status: %d schema issue(s), run 'preflight policy lint'\n", len(issues))
		default:
			fmt.Println("  Status: OK")
		}
	}

	fmt.Println("\nChecks:")
	fmt.Printf("  file_existence: %s\n", enabledWord(cfg.Checks.FileExistence))
	fmt.Printf("  import_validity: %s\n", enabledWord(cfg.Checks.ImportValidity))
	fmt.Printf("  syntax_validity: %s\n", enabledWord(cfg.Checks.SyntaxValidity))
	fmt.Printf("  policy_compliance: %s\n", enabledWord(cfg.Checks.PolicyCompliance))

	fmt.Println("\nApprovals:")
	svc := approval.NewService(root)
	if _, err := svc.ExpirePending(); err != nil {
		fmt.Printf("  Status: unavailable (%v)\n", err)
	} else if pending, err := svc.List(approval.Query{Status: approval.StatusPending}); err != nil {
		fmt.Printf("  Status: unavailable (%v)\n", err)
	} else {
		fmt.Printf("  Pending: %d (ttl=%dm)\n", len(pending), cfg.Approvals.TTLMinutes)
	}

	fmt.Println("\nAudit:")
	if !cfg.Audit.Enabled {
		fmt.Println("  Status: disabled")
	} else {
		trail := filepath.Join(config.StateDir(root), "audit.jsonl")
		fmt.Printf("  Trail: %s (%d event(s))\n", trail, countLines(trail))
	}

	fmt.Println("\nRuns:")
	snap := metrics.NewRuntimeMetrics(root).Snapshot()
	switch {
	case !snap.HasData():
		fmt.Println("  Status: no runs recorded yet")
	default:
		fmt.Printf("  Total: %d (blocked=%d gated=%d warned=%d)\n",
			snap.Runs.Total, snap.Runs.Blocked, snap.Runs.ApprovalGated, snap.Runs.Warned)
		fmt.Printf("  Latency: avg=%.0fms p95~%dms max=%dms\n",
			snap.Runs.AvgLatencyMs(), snap.Runs.P95ProxyLatencyMs, snap.Runs.MaxLatencyMs)
	}

	return nil
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func countLines(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		count++
	}
	return count
}
