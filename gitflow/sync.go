package gitflow

import (
	"context"
	"fmt"
	"strings"
)

// conflictIndicators are the stderr substrings git emits when a merge,
// rebase, or cherry-pick stops on conflicts. Matching one of these is
// necessary but not sufficient: a conflict is only confirmed when unmerged
// files exist.
var conflictIndicators = []string{
	"CONFLICT",
	"Automatic merge failed",
	"could not apply",
	"needs merge",
}

// ffFailureIndicators mark a fast-forward refusal due to divergent history.
// This is a distinct failure mode, not a conflict: no unmerged files exist
// and there is nothing to resolve.
var ffFailureIndicators = []string{
	"Not possible to fast-forward",
	"not possible to fast-forward",
	"Diverging branches can't be fast-forwarded",
}

// SyncOptions configures one sync attempt.
type SyncOptions struct {
	// Branch is the target branch. Empty means the current branch;
	// detached HEAD with no explicit branch is fatal.
	Branch string
	// Source is the upstream branch name on the remote. Empty means the
	// same name as the target branch.
	Source string
	// Remote names the remote, default "origin".
	Remote string
	// Strategy selects fast-forward, merge, or rebase.
	Strategy SyncStrategy
	// AutoResolve is the conflict policy applied when the sync stops on
	// conflicts. AutoResolveNone surfaces them for manual resolution.
	AutoResolve AutoResolveStrategy
	// Push force-pushes (with lease) after a successful sync when the
	// branch is ahead of its upstream. Push failure is a warning only.
	Push bool
	// Stash allows stashing uncommitted changes when a branch switch is
	// required. Without it a dirty tree refuses the switch.
	Stash bool
}

// Report is the caller-facing outcome of a sync or prepare attempt: the
// ordered steps that completed, accumulated warnings, conflicted file paths,
// ahead/behind accounting, and the terminal verdict. Every fatal path still
// carries the steps that succeeded before the failure.
type Report struct {
	Steps         []string
	Warnings      []string
	ConflictFiles []string
	Before        AheadBehind
	After         AheadBehind
	Success       bool
	Message       string
}

func (r *Report) step(format string, args ...any) {
	r.Steps = append(r.Steps, fmt.Sprintf(format, args...))
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) fail(format string, args ...any) *Report {
	r.Success = false
	r.Message = fmt.Sprintf(format, args...)
	return r
}

func (r *Report) succeed(format string, args ...any) *Report {
	r.Success = true
	r.Message = fmt.Sprintf(format, args...)
	return r
}

// Syncer drives branch synchronization against a remote: it validates
// preconditions, runs exactly one git operation per strategy, downgrades
// conflicts into auto-resolution or a manual-resolution report, and resumes
// the suspended operation after staging resolved files.
type Syncer struct {
	dir       string
	runner    Runner
	inspector StateInspector
	resolver  *Resolver
}

// NewSyncer creates a syncer for the repository at dir with the default
// command-line inspector and resolver.
func NewSyncer(dir string, runner Runner) *Syncer {
	return &Syncer{
		dir:       dir,
		runner:    runner,
		inspector: NewInspector(dir, runner),
		resolver:  NewResolver(dir, runner),
	}
}

// NewSyncerWith wires explicit collaborators. Used by tests.
func NewSyncerWith(dir string, runner Runner, inspector StateInspector, resolver *Resolver) *Syncer {
	return &Syncer{dir: dir, runner: runner, inspector: inspector, resolver: resolver}
}

// Sync runs one synchronization attempt to completion and always returns a
// report; it never panics or returns a Go error. State is local to the call.
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) *Report {
	report := &Report{}

	// Strategy validation happens before any command executes.
	if !opts.Strategy.IsValid() {
		return report.fail("unknown strategy %q: expected fast-forward, merge, or rebase", string(opts.Strategy))
	}
	if opts.AutoResolve == "" {
		opts.AutoResolve = AutoResolveNone
	}
	if !opts.AutoResolve.IsValid() {
		return report.fail("unknown auto-resolve strategy %q: expected none, ours, theirs, or smart", string(opts.AutoResolve))
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}

	// Precondition checks: nothing below mutates until all of them pass.
	if !s.inspector.IsRepository() {
		return report.fail("not a git repository: %s", s.dir)
	}

	target := opts.Branch
	current := s.inspector.CurrentBranch(ctx)
	if target == "" {
		if current == "" {
			return report.fail("cannot determine target branch: HEAD is detached and no branch was given")
		}
		target = current
	}
	if !s.inspector.BranchExists(ctx, target) {
		return report.fail("branch %q does not exist locally", target)
	}

	source := opts.Source
	if source == "" {
		source = target
	}

	if fetch := s.runner.Run(ctx, "git", "fetch", opts.Remote); fetch.Success {
		report.step("fetched %s", opts.Remote)
	} else {
		report.warn("fetch from %s failed: %s", opts.Remote, fetch.ErrorText)
	}

	if !s.inspector.BranchExistsOnRemote(ctx, opts.Remote, source) {
		return report.fail("branch %q does not exist on remote %s", source, opts.Remote)
	}

	if current != target {
		if !s.inspector.IsClean(ctx) {
			if !opts.Stash {
				return report.fail("working directory has uncommitted changes; commit or stash them before switching to %q", target)
			}
			if stash := s.runner.Run(ctx, "git", "stash", "push", "-m", "git-flow-mcp: auto-stash"); !stash.Success {
				return report.fail("failed to stash changes: %s", stash.ErrorText)
			}
			report.step("stashed uncommitted changes")
			report.warn("changes were stashed; run `git stash pop` to restore them")
		}
		if checkout := s.runner.Run(ctx, "git", "checkout", target); !checkout.Success {
			return report.fail("failed to switch to %q: %s", target, checkout.ErrorText)
		}
		report.step("switched to branch %s", target)
	}

	upstream := opts.Remote + "/" + source
	report.Before = s.inspector.AheadBehind(ctx, target, upstream)

	res := s.runSyncOperation(ctx, opts.Strategy, upstream)
	if res.Success {
		report.step("%s completed against %s", opts.Strategy, upstream)
		report.After = s.inspector.AheadBehind(ctx, target, upstream)
		s.maybePush(ctx, report, opts, target, upstream)
		return report.succeed("synced %s with %s via %s", target, upstream, opts.Strategy)
	}

	if opts.Strategy == StrategyFastForward && containsAny(res.ErrorText, ffFailureIndicators) {
		report.After = s.inspector.AheadBehind(ctx, target, upstream)
		return report.fail("fast-forward not possible: %s and %s have diverged", target, upstream)
	}

	conflicts := s.inspector.UnmergedFiles(ctx)
	if !containsAny(res.ErrorText+res.Stdout, conflictIndicators) || len(conflicts) == 0 {
		report.After = s.inspector.AheadBehind(ctx, target, upstream)
		return report.fail("%s failed: %s", opts.Strategy, res.ErrorText)
	}

	report.ConflictFiles = conflicts
	report.step("%s stopped with %d conflicted file(s)", opts.Strategy, len(conflicts))

	if opts.AutoResolve == AutoResolveNone {
		report.After = s.inspector.AheadBehind(ctx, target, upstream)
		return report.fail("conflicts in %d file(s) require manual resolution: %s",
			len(conflicts), strings.Join(conflicts, ", "))
	}

	resolved := s.autoResolve(ctx, report, conflicts, opts.AutoResolve)
	if resolved == 0 {
		report.After = s.inspector.AheadBehind(ctx, target, upstream)
		return report.fail("no conflicted files could be auto-resolved with strategy %q", opts.AutoResolve)
	}

	if err := s.continueOperation(ctx, opts.Strategy); err != nil {
		report.After = s.inspector.AheadBehind(ctx, target, upstream)
		return report.fail("failed to continue %s after resolving %d file(s): %v", opts.Strategy, resolved, err)
	}
	report.step("resumed %s after staging resolved files", opts.Strategy)

	report.After = s.inspector.AheadBehind(ctx, target, upstream)
	s.maybePush(ctx, report, opts, target, upstream)
	return report.succeed("synced %s with %s via %s, auto-resolved %d of %d conflicted file(s)",
		target, upstream, opts.Strategy, resolved, len(conflicts))
}

// runSyncOperation executes exactly one git operation for the strategy.
func (s *Syncer) runSyncOperation(ctx context.Context, strategy SyncStrategy, upstream string) Result {
	switch strategy {
	case StrategyFastForward:
		return s.runner.Run(ctx, "git", "merge", "--ff-only", upstream)
	case StrategyMerge:
		msg := fmt.Sprintf("Merge %s into current branch", upstream)
		return s.runner.Run(ctx, "git", "merge", "--no-ff", "-m", msg, upstream)
	case StrategyRebase:
		return s.runner.Run(ctx, "git", "rebase", upstream)
	default:
		return Result{ErrorText: fmt.Sprintf("unknown strategy %q", strategy)}
	}
}

// autoResolve runs the resolver over each conflicted file and stages the
// ones that resolved. Per-file failures are warnings; the file stays
// unmerged and the sync reports partial success if others resolved.
func (s *Syncer) autoResolve(ctx context.Context, report *Report, files []string, strategy AutoResolveStrategy) int {
	resolved := 0
	for _, file := range files {
		outcome, err := s.resolver.ResolveFile(ctx, file, strategy, false)
		if err != nil {
			report.warn("could not resolve %s: %v", file, err)
			continue
		}
		if outcome.ResolvedBlocks == 0 {
			report.warn("no resolvable conflicts in %s, left unmerged", file)
			continue
		}
		if add := s.runner.Run(ctx, "git", "add", "--", file); !add.Success {
			report.warn("failed to stage %s: %s", file, add.ErrorText)
			continue
		}
		resolved++
		for _, desc := range outcome.Strategies {
			report.step("%s: %s", file, desc)
		}
	}
	return resolved
}

// continueOperation resumes the suspended git operation after conflict
// resolution. Fast-forward never reaches this state.
func (s *Syncer) continueOperation(ctx context.Context, strategy SyncStrategy) error {
	switch strategy {
	case StrategyRebase:
		// core.editor=true keeps git from opening an editor for the
		// reworded commit message.
		if res := s.runner.Run(ctx, "git", "-c", "core.editor=true", "rebase", "--continue"); !res.Success {
			return fmt.Errorf("rebase --continue: %s", res.ErrorText)
		}
	case StrategyMerge:
		if res := s.runner.Run(ctx, "git", "commit", "--no-edit"); !res.Success {
			return fmt.Errorf("merge commit: %s", res.ErrorText)
		}
	}
	return nil
}

// maybePush force-pushes (with lease) after a successful terminal state.
// It runs only when requested and when commits exist ahead of the upstream;
// failure is a warning, never a state-machine failure.
func (s *Syncer) maybePush(ctx context.Context, report *Report, opts SyncOptions, branch, upstream string) {
	if !opts.Push {
		return
	}
	if !report.After.Known {
		report.warn("skipped push: position relative to %s is unknown", upstream)
		return
	}
	if report.After.Ahead == 0 {
		report.warn("skipped push: no commits ahead of %s", upstream)
		return
	}
	if push := s.runner.Run(ctx, "git", "push", "--force-with-lease", opts.Remote, branch); push.Success {
		report.step("pushed %s to %s", branch, opts.Remote)
	} else {
		report.warn("push failed: %s", push.ErrorText)
	}
}

func containsAny(text string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}
