package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kavrelis/preflight/internal/approval"
	"github.com/kavrelis/preflight/internal/check"
	"github.com/kavrelis/preflight/internal/guard"
)

var (
	reportHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#8E4EC6")). // Purple
				Padding(0, 1).
				MarginBottom(1)

	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E8B57")).Bold(true) // SeaGreen
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)     // Orange
	blockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD5C5C")).Bold(true) // IndianRed
	gateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8E4EC6")).Bold(true)

	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18).MarginRight(1)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func renderReport(res guard.Result, pending []approval.Request) string {
	var b strings.Builder

	b.WriteString(reportHeaderStyle.Render("Preflight Report"))
	b.WriteString("\n")

	for _, r := range res.Results {
		b.WriteString(fmt.Sprintf("  %s %s%s\n", resultTag(r), kindStyle.Render(string(r.Kind)), r.Message))
		for _, line := range resultDetails(r) {
			b.WriteString("      " + detailStyle.Render(line) + "\n")
		}
	}

	if len(pending) > 0 {
		b.WriteString("\n" + gateStyle.Render("Approvals pending:") + "\n")
		for _, req := range pending {
			b.WriteString(fmt.Sprintf("  %s  %s %s\n", req.ID, req.ActionKind, req.TargetPath))
			for _, reason := range req.Reasons {
				b.WriteString("      " + detailStyle.Render(reason) + "\n")
			}
		}
		b.WriteString(detailStyle.Render("Approve with: preflight approval approve <id> --by <name>") + "\n")
	}

	b.WriteString("\n" + decisionBanner(res, pending) + "\n")
	return b.String()
}

func resultTag(r check.Result) string {
	switch {
	case r.Blocking():
		return blockStyle.Render("[block]")
	case r.ApprovalGated():
		return gateStyle.Render("[gate] ")
	case r.Severity == check.SeverityWarn:
		return warnStyle.Render("[warn] ")
	default:
		return passStyle.Render("[pass] ")
	}
}

func resultDetails(r check.Result) []string {
	if r.Details == nil {
		return nil
	}
	var lines []string
	for _, d := range r.Details.Diagnostics {
		lines = append(lines, fmt.Sprintf("line %d, col %d: %s", d.Line, d.Column, d.Message))
	}
	if len(r.Details.TriedPaths) > 0 {
		lines = append(lines, "tried: "+strings.Join(r.Details.TriedPaths, ", "))
	}
	for _, v := range r.Details.Violations {
		if v.Rule != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s (%s)", v.Severity, v.Message, v.Rule))
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", v.Severity, v.Message))
	}
	if r.Details.Err != "" {
		lines = append(lines, r.Details.Err)
	}
	return lines
}

func decisionBanner(res guard.Result, pending []approval.Request) string {
	switch finalDecision(res, pending) {
	case "block":
		return blockStyle.Render("BLOCKED") + detailStyle.Render(fmt.Sprintf(" (%d reason(s))", len(res.BlockingReasons)))
	case "approval_required":
		return gateStyle.Render("APPROVAL REQUIRED") + detailStyle.Render(fmt.Sprintf(" (%d request(s) pending)", len(pending)))
	case "warn":
		return warnStyle.Render("PASS WITH WARNINGS") + detailStyle.Render(fmt.Sprintf(" (%d warning(s))", len(res.Warnings)))
	default:
		return passStyle.Render("PASS")
	}
}
