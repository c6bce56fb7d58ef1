// Package mcp exposes the git workflow tools over the Model Context
// Protocol. Handlers stay thin: parse arguments, call into gitflow, render a
// markdown report.
package mcp

import (
	"github.com/kaeawc/git-flow-mcp/config"
	"github.com/kaeawc/git-flow-mcp/gitflow"
	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const serverInstructions = "You are connected to git-flow-mcp, a git workflow server for AI agents. " +
	"Call repo_status before starting work to learn the current branch, cleanliness, and any " +
	"suspended merge/rebase/cherry-pick. Use prepare_branch to create or switch to a work branch, " +
	"and sync_work to bring a branch up to date with its upstream (fast-forward, merge, or rebase). " +
	"When a sync stops on conflicts, use analyze_conflicts to see each conflict block and its " +
	"heuristic classification, then resolve_conflicts (strategy ours/theirs/smart, preview first) " +
	"or resolve them manually. abort_operation backs out of a stuck merge/rebase/cherry-pick. " +
	"Nothing is ever stashed or force-pushed unless you ask for it explicitly."

// GitFlowServer wraps an MCP server with the git workflow state for one
// repository.
type GitFlowServer struct {
	server   *mcpserver.MCPServer
	syncer   *gitflow.Syncer
	repoPath string
	cfg      config.Config
}

// NewGitFlowServer creates the MCP server for the repository at repoPath.
func NewGitFlowServer(repoPath string, cfg config.Config) *GitFlowServer {
	s := mcpserver.NewMCPServer(
		"git-flow-mcp",
		"0.1.0",
		mcpserver.WithInstructions(serverInstructions),
	)

	g := &GitFlowServer{
		server:   s,
		syncer:   gitflow.NewSyncer(repoPath, gitflow.NewExecRunner(repoPath)),
		repoPath: repoPath,
		cfg:      cfg,
	}

	g.registerStatusTools()
	g.registerBranchTools()
	g.registerConflictTools()

	Log("server created: repo=%s remote=%s", repoPath, cfg.Remote)
	return g
}

// registerStatusTools registers the read-only inspection tools.
func (g *GitFlowServer) registerStatusTools() {
	repoStatus := gomcp.NewTool("repo_status",
		gomcp.WithDescription(
			"Inspect the repository: current branch, working-tree cleanliness, any suspended "+
				"merge/rebase/cherry-pick, and ahead/behind counts against the upstream. "+
				"Call this before starting or resuming work.",
		),
		gomcp.WithReadOnlyHintAnnotation(true),
	)
	g.server.AddTool(repoStatus, handleRepoStatus(g.syncer, g.cfg.Remote))

	analyze := gomcp.NewTool("analyze_conflicts",
		gomcp.WithDescription(
			"Parse the conflict markers of the currently unmerged files (or one specific file) "+
				"and classify each conflict block. Nothing is modified. Use this to decide between "+
				"resolve_conflicts strategies.",
		),
		gomcp.WithReadOnlyHintAnnotation(true),
		gomcp.WithString("file",
			gomcp.Description("Optional: restrict the analysis to one file path."),
		),
	)
	g.server.AddTool(analyze, handleAnalyzeConflicts(g.syncer))
}

// registerBranchTools registers branch preparation and synchronization.
func (g *GitFlowServer) registerBranchTools() {
	prepare := gomcp.NewTool("prepare_branch",
		gomcp.WithDescription(
			"Create or check out a work branch. Existing local branches are switched to, "+
				"remote-only branches get a local tracking branch, and new branches are created "+
				"from the base branch. A dirty working tree refuses the switch unless stash=true.",
		),
		gomcp.WithString("branch",
			gomcp.Required(),
			gomcp.Description("Name of the work branch. Sanitized to a valid git branch name."),
		),
		gomcp.WithString("base",
			gomcp.Description("Base branch for new branches (default: main, falling back to master)."),
		),
		gomcp.WithBoolean("stash",
			gomcp.Description("Stash uncommitted changes before switching. Default false: a dirty tree fails."),
		),
		gomcp.WithBoolean("sync",
			gomcp.Description("After checkout, merge the base branch into the work branch."),
		),
	)
	g.server.AddTool(prepare, handlePrepareBranch(g.syncer, g.cfg))

	syncWork := gomcp.NewTool("sync_work",
		gomcp.WithDescription(
			"Synchronize a branch with its upstream using fast-forward, merge, or rebase. "+
				"On conflicts, auto_resolve=ours/theirs takes one whole side per file, smart applies "+
				"per-block heuristics, and none (default) reports the conflicted files for manual "+
				"resolution. Reports every step taken, including partial progress on failure.",
		),
		gomcp.WithString("strategy",
			gomcp.Required(),
			gomcp.Description("Sync strategy: fast-forward, merge, or rebase."),
		),
		gomcp.WithString("branch",
			gomcp.Description("Target branch (default: the current branch; fails on detached HEAD)."),
		),
		gomcp.WithString("source",
			gomcp.Description("Upstream branch name on the remote (default: same as the target branch)."),
		),
		gomcp.WithString("auto_resolve",
			gomcp.Description("Conflict policy: none, ours, theirs, or smart. Default none."),
		),
		gomcp.WithBoolean("push",
			gomcp.Description("Force-push (with lease) after a successful sync when commits are ahead."),
		),
		gomcp.WithBoolean("stash",
			gomcp.Description("Stash uncommitted changes if a branch switch is required. Default false."),
		),
	)
	g.server.AddTool(syncWork, handleSyncWork(g.syncer, g.cfg))
}

// registerConflictTools registers resolution and abort.
func (g *GitFlowServer) registerConflictTools() {
	resolve := gomcp.NewTool("resolve_conflicts",
		gomcp.WithDescription(
			"Resolve the currently unmerged files. strategy=ours/theirs takes one whole side per "+
				"file via git checkout; strategy=smart classifies each conflict block and applies "+
				"heuristic resolutions, leaving unresolvable blocks in place. Resolved files are "+
				"staged but the suspended merge/rebase is NOT continued. Use preview=true first.",
		),
		gomcp.WithString("strategy",
			gomcp.Required(),
			gomcp.Description("Resolution strategy: ours, theirs, or smart."),
		),
		gomcp.WithString("files",
			gomcp.Description("Comma-separated file paths to resolve (default: all unmerged files)."),
		),
		gomcp.WithBoolean("preview",
			gomcp.Description("Report what would be resolved without touching any file."),
		),
	)
	g.server.AddTool(resolve, handleResolveConflicts(g.syncer))

	abort := gomcp.NewTool("abort_operation",
		gomcp.WithDescription("Abort the in-progress merge, rebase, or cherry-pick and restore the previous state."),
	)
	g.server.AddTool(abort, handleAbortOperation(g.syncer))
}

// Serve starts the MCP server on the stdio transport.
func (g *GitFlowServer) Serve() error {
	return mcpserver.ServeStdio(g.server)
}
