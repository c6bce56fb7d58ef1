package gitflow

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
)

// AheadBehind holds commit counts relative to an upstream ref. Known is false
// when the counts could not be determined; callers must not treat that as
// {0, 0}.
type AheadBehind struct {
	Ahead  int
	Behind int
	Known  bool
}

// OperationState identifies which long-running git operation is currently
// suspended in the repository, if any.
type OperationState int

const (
	OpNone OperationState = iota
	OpMerge
	OpRebase
	OpCherryPick
)

func (s OperationState) String() string {
	switch s {
	case OpMerge:
		return "merge"
	case OpRebase:
		return "rebase"
	case OpCherryPick:
		return "cherry-pick"
	default:
		return "none"
	}
}

// StateInspector is the read-only view of repository state the sync executor
// depends on. The concrete Inspector shells out to git; tests substitute a
// stub.
type StateInspector interface {
	IsRepository() bool
	CurrentBranch(ctx context.Context) string
	IsClean(ctx context.Context) bool
	BranchExists(ctx context.Context, name string) bool
	BranchExistsOnRemote(ctx context.Context, remote, name string) bool
	AheadBehind(ctx context.Context, local, upstream string) AheadBehind
	Operation(ctx context.Context) OperationState
	UnmergedFiles(ctx context.Context) []string
}

// Inspector derives git-level facts for one working directory. All queries
// downgrade command failure to a zero/unknown default; callers decide whether
// that default is fatal.
type Inspector struct {
	dir    string
	runner Runner
}

// NewInspector creates an inspector for the repository at dir.
func NewInspector(dir string, runner Runner) *Inspector {
	return &Inspector{dir: dir, runner: runner}
}

var _ StateInspector = (*Inspector)(nil)

// IsRepository reports whether dir is inside a git repository. It walks up
// toward the filesystem root opening each candidate directory.
func (i *Inspector) IsRepository() bool {
	current := i.dir
	for {
		if _, err := git.PlainOpen(current); err == nil {
			return true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return false
		}
		current = parent
	}
}

// CurrentBranch returns the checked-out branch name, or "" for a detached
// HEAD or on failure.
func (i *Inspector) CurrentBranch(ctx context.Context) string {
	res := i.runner.Run(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if !res.Success {
		return ""
	}
	name := res.Output()
	if name == "HEAD" {
		// rev-parse prints the literal string HEAD when detached.
		return ""
	}
	return name
}

// IsClean reports whether the working tree has no staged or unstaged changes.
func (i *Inspector) IsClean(ctx context.Context) bool {
	res := i.runner.Run(ctx, "git", "status", "--porcelain")
	if !res.Success {
		return false
	}
	return res.Output() == ""
}

// BranchExists reports whether a local branch with the given name exists.
func (i *Inspector) BranchExists(ctx context.Context, name string) bool {
	res := i.runner.Run(ctx, "git", "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return res.Success
}

// BranchExistsOnRemote reports whether the remote advertises a branch with
// the given name.
func (i *Inspector) BranchExistsOnRemote(ctx context.Context, remote, name string) bool {
	res := i.runner.Run(ctx, "git", "ls-remote", "--heads", remote, name)
	return res.Success && res.Output() != ""
}

// AheadBehind counts commits between local and its upstream ref using
// `git rev-list --left-right --count <upstream>...<local>`. With the upstream
// on the left of the triple-dot, the left column counts commits only in the
// upstream (behind) and the right column commits only in local (ahead).
func (i *Inspector) AheadBehind(ctx context.Context, local, upstream string) AheadBehind {
	res := i.runner.Run(ctx, "git", "rev-list", "--left-right", "--count", upstream+"..."+local)
	if !res.Success {
		return AheadBehind{}
	}
	fields := strings.Fields(res.Output())
	if len(fields) != 2 {
		return AheadBehind{}
	}
	behind, err1 := strconv.Atoi(fields[0])
	ahead, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return AheadBehind{}
	}
	return AheadBehind{Ahead: ahead, Behind: behind, Known: true}
}

// Operation detects a suspended merge, rebase, or cherry-pick by checking the
// git dir markers. When several markers are present (e.g. leftovers from an
// interrupted operation) the precedence is Merge > Rebase > CherryPick.
func (i *Inspector) Operation(ctx context.Context) OperationState {
	gitDir := i.gitDir(ctx)
	if gitDir == "" {
		return OpNone
	}
	if fileExists(filepath.Join(gitDir, "MERGE_HEAD")) {
		return OpMerge
	}
	if dirExists(filepath.Join(gitDir, "rebase-apply")) || dirExists(filepath.Join(gitDir, "rebase-merge")) {
		return OpRebase
	}
	if fileExists(filepath.Join(gitDir, "CHERRY_PICK_HEAD")) {
		return OpCherryPick
	}
	return OpNone
}

// UnmergedFiles lists paths currently in an unmerged (conflicted) state.
func (i *Inspector) UnmergedFiles(ctx context.Context) []string {
	res := i.runner.Run(ctx, "git", "diff", "--name-only", "--diff-filter=U")
	if !res.Success {
		return nil
	}
	out := res.Output()
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// gitDir resolves the repository's git directory, which differs from
// <workdir>/.git in worktrees.
func (i *Inspector) gitDir(ctx context.Context) string {
	res := i.runner.Run(ctx, "git", "rev-parse", "--git-dir")
	if !res.Success {
		return ""
	}
	dir := res.Output()
	if dir == "" {
		return ""
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(i.dir, dir)
	}
	return dir
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
