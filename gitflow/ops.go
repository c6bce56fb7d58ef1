package gitflow

import (
	"context"
	"fmt"
	"strings"
)

// ResolveConflicts resolves the currently unmerged files outside of a sync
// attempt. It stages resolved files but never continues the suspended
// operation; the caller (or the agent) decides when to resume. In preview
// mode nothing is written or staged.
func (s *Syncer) ResolveConflicts(ctx context.Context, strategy AutoResolveStrategy, files []string, preview bool) *Report {
	report := &Report{}

	if strategy == "" || strategy == AutoResolveNone {
		return report.fail("a resolve strategy is required: ours, theirs, or smart")
	}
	if !strategy.IsValid() {
		return report.fail("unknown auto-resolve strategy %q: expected ours, theirs, or smart", string(strategy))
	}
	if !s.inspector.IsRepository() {
		return report.fail("not a git repository: %s", s.dir)
	}

	if len(files) == 0 {
		files = s.inspector.UnmergedFiles(ctx)
	}
	if len(files) == 0 {
		return report.succeed("no conflicted files found")
	}
	report.ConflictFiles = files

	resolved := 0
	for _, file := range files {
		outcome, err := s.resolver.ResolveFile(ctx, file, strategy, preview)
		if err != nil {
			report.warn("could not resolve %s: %v", file, err)
			continue
		}
		if outcome.ResolvedBlocks == 0 {
			report.warn("no resolvable conflicts in %s", file)
			continue
		}
		if !preview {
			if add := s.runner.Run(ctx, "git", "add", "--", file); !add.Success {
				report.warn("failed to stage %s: %s", file, add.ErrorText)
				continue
			}
		}
		resolved++
		for _, desc := range outcome.Strategies {
			report.step("%s: %s", file, desc)
		}
	}

	if resolved == 0 {
		return report.fail("no files could be resolved with strategy %q", strategy)
	}
	if preview {
		return report.succeed("would resolve %d of %d conflicted file(s)", resolved, len(files))
	}
	return report.succeed("resolved and staged %d of %d conflicted file(s)", resolved, len(files))
}

// AbortOperation aborts whichever merge, rebase, or cherry-pick is currently
// suspended.
func (s *Syncer) AbortOperation(ctx context.Context) *Report {
	report := &Report{}

	if !s.inspector.IsRepository() {
		return report.fail("not a git repository: %s", s.dir)
	}

	op := s.inspector.Operation(ctx)
	var args []string
	switch op {
	case OpMerge:
		args = []string{"merge", "--abort"}
	case OpRebase:
		args = []string{"rebase", "--abort"}
	case OpCherryPick:
		args = []string{"cherry-pick", "--abort"}
	default:
		return report.fail("no merge, rebase, or cherry-pick is in progress")
	}

	if res := s.runner.Run(ctx, "git", args...); !res.Success {
		return report.fail("failed to abort %s: %s", op, res.ErrorText)
	}
	report.step("aborted %s", op)
	return report.succeed("aborted the in-progress %s", op)
}

// AnalyzeConflicts parses and classifies the conflicts of the currently
// unmerged files (or an explicit list) without mutating anything.
func (s *Syncer) AnalyzeConflicts(ctx context.Context, files []string) ([]*FileConflictAnalysis, error) {
	if len(files) == 0 {
		files = s.inspector.UnmergedFiles(ctx)
	}
	var analyses []*FileConflictAnalysis
	for _, file := range files {
		analysis, err := AnalyzeFile(s.resolver.absPath(file))
		if err != nil {
			return nil, err
		}
		analysis.Path = file
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// Inspector exposes the syncer's state inspector for read-only callers.
func (s *Syncer) Inspector() StateInspector {
	return s.inspector
}

// Dir returns the working tree the syncer operates on.
func (s *Syncer) Dir() string {
	return s.dir
}

// SummarizeCategories builds a one-line category breakdown for a file's
// conflict blocks, e.g. "merged imports x2, manual resolution needed".
func SummarizeCategories(blocks []ConflictBlock) string {
	counts := map[string]int{}
	var order []string
	for _, block := range blocks {
		category := Classify(block).Category
		if counts[category] == 0 {
			order = append(order, category)
		}
		counts[category]++
	}
	var parts []string
	for _, category := range order {
		if counts[category] == 1 {
			parts = append(parts, category)
		} else {
			parts = append(parts, fmt.Sprintf("%s x%d", category, counts[category]))
		}
	}
	return strings.Join(parts, ", ")
}
