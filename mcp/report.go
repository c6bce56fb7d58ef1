package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaeawc/git-flow-mcp/gitflow"
)

// repoStatus is the snapshot rendered by the repo_status tool.
type repoStatus struct {
	Branch    string
	Detached  bool
	Clean     bool
	Operation gitflow.OperationState
	Unmerged  []string
	Upstream  string
	Counts    gitflow.AheadBehind
	GitHubCLI bool
}

// buildRepoStatus collects the read-only repository snapshot. Ahead/behind is
// measured against remote/<branch>; a missing upstream leaves Counts unknown.
func buildRepoStatus(ctx context.Context, insp gitflow.StateInspector, remote string) repoStatus {
	status := repoStatus{
		Branch:    insp.CurrentBranch(ctx),
		Clean:     insp.IsClean(ctx),
		Operation: insp.Operation(ctx),
		Unmerged:  insp.UnmergedFiles(ctx),
		GitHubCLI: gitflow.HasGitHubCLI(),
	}
	if status.Branch == "" {
		status.Detached = true
		return status
	}
	if insp.BranchExistsOnRemote(ctx, remote, status.Branch) {
		status.Upstream = remote + "/" + status.Branch
		status.Counts = insp.AheadBehind(ctx, status.Branch, status.Upstream)
	}
	return status
}

func renderRepoStatus(status repoStatus) string {
	var b strings.Builder
	b.WriteString("# Repository status\n\n")

	if status.Detached {
		b.WriteString("- **Branch:** detached HEAD\n")
	} else {
		fmt.Fprintf(&b, "- **Branch:** %s\n", status.Branch)
	}
	if status.Clean {
		b.WriteString("- **Working tree:** clean\n")
	} else {
		b.WriteString("- **Working tree:** uncommitted changes\n")
	}
	if status.Operation != gitflow.OpNone {
		fmt.Fprintf(&b, "- **In progress:** %s (use resolve_conflicts or abort_operation)\n", status.Operation)
	}
	if len(status.Unmerged) > 0 {
		fmt.Fprintf(&b, "- **Unmerged files:** %s\n", strings.Join(status.Unmerged, ", "))
	}
	switch {
	case status.Upstream == "":
		if !status.Detached {
			b.WriteString("- **Upstream:** none (branch not on remote)\n")
		}
	case status.Counts.Known:
		fmt.Fprintf(&b, "- **Upstream:** %s (%d ahead, %d behind)\n",
			status.Upstream, status.Counts.Ahead, status.Counts.Behind)
	default:
		fmt.Fprintf(&b, "- **Upstream:** %s (ahead/behind unknown)\n", status.Upstream)
	}
	if status.GitHubCLI {
		b.WriteString("- **GitHub CLI:** available and authenticated\n")
	}
	return b.String()
}

// renderReport turns a gitflow report into the markdown returned to the
// caller. Steps come before warnings so partial progress reads in order.
func renderReport(title string, report *gitflow.Report) string {
	var b strings.Builder
	if report.Success {
		fmt.Fprintf(&b, "# %s succeeded\n\n%s\n", title, report.Message)
	} else {
		fmt.Fprintf(&b, "# %s failed\n\n%s\n", title, report.Message)
	}

	if len(report.Steps) > 0 {
		b.WriteString("\n## Steps\n")
		for _, step := range report.Steps {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}
	if len(report.Warnings) > 0 {
		b.WriteString("\n## Warnings\n")
		for _, warning := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}
	if len(report.ConflictFiles) > 0 {
		b.WriteString("\n## Conflicted files\n")
		for _, file := range report.ConflictFiles {
			fmt.Fprintf(&b, "- %s\n", file)
		}
	}
	if report.Before.Known || report.After.Known {
		b.WriteString("\n## Position\n")
		if report.Before.Known {
			fmt.Fprintf(&b, "- before: %d ahead, %d behind\n", report.Before.Ahead, report.Before.Behind)
		}
		if report.After.Known {
			fmt.Fprintf(&b, "- after: %d ahead, %d behind\n", report.After.Ahead, report.After.Behind)
		}
	}
	return b.String()
}

// renderAnalyses formats conflict analyses per file with one entry per block.
// Marker positions are reported as 1-based line numbers.
func renderAnalyses(analyses []*gitflow.FileConflictAnalysis) string {
	total := 0
	for _, analysis := range analyses {
		total += analysis.TotalConflicts()
	}
	if total == 0 {
		return "No conflict markers found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Conflict analysis: %d block(s) in %d file(s)\n", total, len(analyses))
	for _, analysis := range analyses {
		if len(analysis.Blocks) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s (%s)\n", analysis.Path, gitflow.SummarizeCategories(analysis.Blocks))
		for _, block := range analysis.Blocks {
			class := gitflow.Classify(block)
			fmt.Fprintf(&b, "- lines %d-%d: %s", block.StartLine+1, block.EndLine+1, class.Category)
			if class.Resolved {
				b.WriteString(" (auto-resolvable)")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
