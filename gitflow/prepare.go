package gitflow

import (
	"context"
)

// PrepareOptions configures a branch preparation attempt.
type PrepareOptions struct {
	// Branch is the work branch to create or check out. Required.
	Branch string
	// Base is the branch to create from when Branch does not exist yet.
	// Empty means the repository's default branch (main, falling back to
	// master).
	Base string
	// Remote names the remote, default "origin".
	Remote string
	// Stash allows stashing uncommitted changes before switching. The
	// policy matches Sync: a dirty tree refuses the switch by default,
	// nothing is ever stashed silently.
	Stash bool
	// Sync merges the base branch into the work branch after checkout.
	Sync bool
	// Strategy selects the sync operation when Sync is set; empty means
	// merge.
	Strategy SyncStrategy
	// AutoResolve is the conflict policy for the post-checkout sync.
	AutoResolve AutoResolveStrategy
}

// PrepareBranch creates or checks out a work branch: existing local branches
// are switched to, remote-only branches get a local tracking branch, and
// otherwise a fresh branch is created from the base. With opts.Sync it then
// runs the sync state machine against the base branch.
func (s *Syncer) PrepareBranch(ctx context.Context, opts PrepareOptions) *Report {
	report := &Report{}

	if opts.Branch == "" {
		return report.fail("branch name is required")
	}
	branch := SanitizeBranchName(opts.Branch)
	if !IsValidBranchName(branch) {
		branch = SafeBranchName("", opts.Branch)
	}
	if branch != opts.Branch {
		report.warn("branch name sanitized from %q to %q", opts.Branch, branch)
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}

	if !s.inspector.IsRepository() {
		return report.fail("not a git repository: %s", s.dir)
	}

	if fetch := s.runner.Run(ctx, "git", "fetch", opts.Remote); fetch.Success {
		report.step("fetched %s", opts.Remote)
	} else {
		report.warn("fetch from %s failed: %s", opts.Remote, fetch.ErrorText)
	}

	current := s.inspector.CurrentBranch(ctx)
	if current == branch {
		report.step("already on branch %s", branch)
	} else {
		if !s.inspector.IsClean(ctx) {
			if !opts.Stash {
				return report.fail("working directory has uncommitted changes; commit or stash them before switching to %q", branch)
			}
			if stash := s.runner.Run(ctx, "git", "stash", "push", "-m", "git-flow-mcp: auto-stash"); !stash.Success {
				return report.fail("failed to stash changes: %s", stash.ErrorText)
			}
			report.step("stashed uncommitted changes")
			report.warn("changes were stashed; run `git stash pop` to restore them")
		}

		switch {
		case s.inspector.BranchExists(ctx, branch):
			if res := s.runner.Run(ctx, "git", "checkout", branch); !res.Success {
				return report.fail("failed to switch to %q: %s", branch, res.ErrorText)
			}
			report.step("switched to existing branch %s", branch)

		case s.inspector.BranchExistsOnRemote(ctx, opts.Remote, branch):
			if res := s.runner.Run(ctx, "git", "checkout", "-b", branch, "--track", opts.Remote+"/"+branch); !res.Success {
				return report.fail("failed to create tracking branch %q: %s", branch, res.ErrorText)
			}
			report.step("created %s tracking %s/%s", branch, opts.Remote, branch)

		default:
			base := opts.Base
			if base == "" {
				base = s.defaultBranch(ctx)
			}
			if !s.inspector.BranchExists(ctx, base) {
				return report.fail("base branch %q does not exist locally", base)
			}
			if res := s.runner.Run(ctx, "git", "checkout", "-b", branch, base); !res.Success {
				return report.fail("failed to create branch %q from %q: %s", branch, base, res.ErrorText)
			}
			report.step("created branch %s from %s", branch, base)
		}
	}

	if !opts.Sync {
		return report.succeed("branch %s is ready", branch)
	}

	base := opts.Base
	if base == "" {
		base = s.defaultBranch(ctx)
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyMerge
	}
	syncReport := s.Sync(ctx, SyncOptions{
		Branch:      branch,
		Source:      base,
		Remote:      opts.Remote,
		Strategy:    strategy,
		AutoResolve: opts.AutoResolve,
	})

	report.Steps = append(report.Steps, syncReport.Steps...)
	report.Warnings = append(report.Warnings, syncReport.Warnings...)
	report.ConflictFiles = syncReport.ConflictFiles
	report.Before = syncReport.Before
	report.After = syncReport.After
	if !syncReport.Success {
		return report.fail("branch %s prepared, but sync with %s failed: %s", branch, base, syncReport.Message)
	}
	return report.succeed("branch %s is ready and synced with %s", branch, base)
}

// defaultBranch returns "main" when it exists locally, otherwise "master".
func (s *Syncer) defaultBranch(ctx context.Context) string {
	if s.inspector.BranchExists(ctx, "main") {
		return "main"
	}
	return "master"
}
