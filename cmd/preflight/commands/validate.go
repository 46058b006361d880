package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kavrelis/preflight/internal/action"
	"github.com/kavrelis/preflight/internal/approval"
	"github.com/kavrelis/preflight/internal/audit"
	"github.com/kavrelis/preflight/internal/config"
	"github.com/kavrelis/preflight/internal/guard"
	"github.com/kavrelis/preflight/internal/metrics"
	"github.com/kavrelis/preflight/internal/policy"
	"github.com/spf13/cobra"
)

func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate proposed actions against the project",
		Long: `Validate reads agent output (a JSON envelope, an action array, or a single
action object) from a file or stdin and runs every enabled check against
the project root. Exit codes: 0 pass, 2 blocked, 3 approval required.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
	cmd.Flags().Bool("json", false, "Emit the machine-readable result")
	return cmd
}

// validateReport is the machine-readable envelope for --json. Decision is
// the final outcome after the approval ledger is consulted; Result is the
// raw aggregate.
type validateReport struct {
	Decision  string             `json:"decision"`
	Result    guard.Result       `json:"result"`
	Approvals []approval.Request `json:"approvals,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	payload, err := readActionPayload(args)
	if err != nil {
		return err
	}
	acts, err := action.Decode(payload)
	if err != nil {
		return err
	}

	var doc *policy.Document
	if cfg.Checks.PolicyCompliance {
		if path := cfg.PolicyPath(root); path != "" {
			doc, err = policy.Load(path)
			if err != nil {
				return err
			}
		}
	}

	g := guard.New(guard.Config{
		ProjectRoot: root,
		Policy:      doc,
		Checks: guard.Toggles{
			FileExistence:    cfg.Checks.FileExistence,
			ImportValidity:   cfg.Checks.ImportValidity,
			SyntaxValidity:   cfg.Checks.SyntaxValidity,
			PolicyCompliance: cfg.Checks.PolicyCompliance,
		},
	})
	if cfg.Audit.Enabled {
		g.Subscribe(audit.NewWriter(root).Recorder())
	}
	g.Subscribe(metrics.NewRuntimeMetrics(root).Recorder())

	res := g.Validate(action.Output{Actions: acts})

	pending, err := fileApprovals(root, cfg, acts, doc, res)
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		report := validateReport{
			Decision:  finalDecision(res, pending),
			Result:    res,
			Approvals: pending,
		}
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Println(string(encoded))
	} else {
		fmt.Print(renderReport(res, pending))
	}

	switch {
	case !res.Pass:
		return &exitError{code: ExitBlocked, msg: "validation blocked"}
	case len(pending) > 0:
		return &exitError{code: ExitApproval, msg: "approval required"}
	}
	return nil
}

func readActionPayload(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return nil, fmt.Errorf("no action payload on stdin (pass a file or pipe JSON)")
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read actions file: %w", err)
	}
	return data, nil
}

// fileApprovals reconciles gated actions against the approval ledger. A
// gated action whose fingerprint was already approved is released; the
// rest get a pending request filed (reusing open ones) and are returned.
// Blocked runs skip the ledger: the agent has to fix the output first,
// and the fix changes the fingerprint anyway.
func fileApprovals(root string, cfg *config.Config, acts []action.Action, doc *policy.Document, res guard.Result) ([]approval.Request, error) {
	if doc == nil || !res.Pass || !res.RequiresApproval() {
		return nil, nil
	}

	svc := approval.NewService(root)
	if _, err := svc.ExpirePending(); err != nil {
		return nil, fmt.Errorf("sweep approval ledger: %w", err)
	}
	ttl := time.Duration(cfg.Approvals.TTLMinutes) * time.Minute

	var pending []approval.Request
	for _, a := range acts {
		r := policy.Comply(a, doc)
		if !r.ApprovalGated() {
			continue
		}

		fingerprint := approval.ActionFingerprint(a)
		granted, err := svc.Granted(fingerprint)
		if err != nil {
			return nil, err
		}
		if granted {
			continue
		}

		var reasons []string
		if r.Details != nil {
			reasons = r.Details.ApprovalReasons
		}
		req, _, err := svc.Ensure(approval.CreateInput{
			Fingerprint: fingerprint,
			ActionKind:  string(a.Kind),
			TargetPath:  a.TargetPath,
			Reasons:     reasons,
			TTL:         ttl,
		})
		if err != nil {
			return nil, err
		}
		pending = append(pending, req)
	}
	return pending, nil
}

// finalDecision folds the approval ledger into the aggregate decision: a
// gated run whose every gate was already approved passes.
func finalDecision(res guard.Result, pending []approval.Request) string {
	if !res.Pass {
		return "block"
	}
	if len(pending) > 0 {
		return "approval_required"
	}
	if len(res.Warnings) > 0 {
		return "warn"
	}
	return "pass"
}
