package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kaeawc/git-flow-mcp/config"
	"github.com/kaeawc/git-flow-mcp/gitflow"
	"github.com/kaeawc/git-flow-mcp/mcp"
	"github.com/spf13/cobra"
)

// Build information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildVersionString() string {
	if commit == "none" {
		return version
	}
	commitDisplay := commit
	if len(commit) > 8 {
		commitDisplay = commit[:8]
	}
	return fmt.Sprintf("%s (commit: %s)", version, commitDisplay)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git-flow-mcp",
		Short: "Git workflow MCP server",
		Long: `git-flow-mcp exposes git branch synchronization and conflict resolution
as MCP tools for AI agents, plus a small CLI for running the same
operations directly.

Run with no arguments to start the MCP server on stdio.`,
		Version: buildVersionString(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(resolveRepoPath(""))
		},
	}

	cmd.AddCommand(
		newServeCmd(),
		newSyncCmd(),
		newResolveCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(buildVersionString())
		},
	}
}

// resolveRepoPath picks the repository: explicit flag, then the
// GIT_FLOW_REPO_PATH environment variable, then the working directory.
func resolveRepoPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("GIT_FLOW_REPO_PATH"); env != "" {
		return env
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func newServeCmd() *cobra.Command {
	var repo string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(resolveRepoPath(repo))
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "repository path (default: $GIT_FLOW_REPO_PATH or the working directory)")
	return cmd
}

func runServe(repoPath string) error {
	stateDir, err := config.StateDir()
	if err != nil {
		return fmt.Errorf("resolve state directory: %w", err)
	}

	// Set up file logging; stdout is the MCP protocol, stderr is captured by the client.
	if err := os.MkdirAll(stateDir, 0700); err == nil {
		logPath := filepath.Join(stateDir, "mcp-server.log")
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
			mcp.SetLogger(log.New(f, "[mcp] ", log.Ldate|log.Ltime|log.Lshortfile))
			defer f.Close()
		}
	}

	cfg, err := config.EnsureDefault(stateDir)
	if err != nil {
		mcp.Log("config load failed, using defaults: %v", err)
		cfg = config.Default()
	}

	mcp.Log("starting: repo=%s version=%s", repoPath, buildVersionString())
	server := mcp.NewGitFlowServer(repoPath, cfg)
	if err := server.Serve(); err != nil {
		mcp.Log("server stopped: %v", err)
		return err
	}
	return nil
}

func newSyncCmd() *cobra.Command {
	var (
		repo        string
		branch      string
		source      string
		remote      string
		autoResolve string
		push        bool
		stash       bool
	)
	cmd := &cobra.Command{
		Use:   "sync <fast-forward|merge|rebase>",
		Short: "Synchronize a branch with its upstream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := gitflow.ParseSyncStrategy(args[0])
			if err != nil {
				return err
			}
			resolveStrategy, err := gitflow.ParseAutoResolveStrategy(autoResolve)
			if err != nil {
				return err
			}

			dir := resolveRepoPath(repo)
			syncer := gitflow.NewSyncer(dir, gitflow.NewExecRunner(dir))
			report := syncer.Sync(cmd.Context(), gitflow.SyncOptions{
				Branch:      branch,
				Source:      source,
				Remote:      remote,
				Strategy:    strategy,
				AutoResolve: resolveStrategy,
				Push:        push,
				Stash:       stash,
			})
			return printReport(report)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "repository path")
	cmd.Flags().StringVar(&branch, "branch", "", "target branch (default: current branch)")
	cmd.Flags().StringVar(&source, "source", "", "upstream branch name (default: same as target)")
	cmd.Flags().StringVar(&remote, "remote", "origin", "remote name")
	cmd.Flags().StringVar(&autoResolve, "auto-resolve", "none", "conflict policy: none, ours, theirs, or smart")
	cmd.Flags().BoolVar(&push, "push", false, "force-push (with lease) after a successful sync")
	cmd.Flags().BoolVar(&stash, "stash", false, "stash uncommitted changes if a branch switch is required")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var (
		repo    string
		files   []string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <ours|theirs|smart>",
		Short: "Resolve the currently unmerged files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := gitflow.ParseAutoResolveStrategy(args[0])
			if err != nil {
				return err
			}

			dir := resolveRepoPath(repo)
			syncer := gitflow.NewSyncer(dir, gitflow.NewExecRunner(dir))
			report := syncer.ResolveConflicts(cmd.Context(), strategy, files, preview)
			return printReport(report)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "repository path")
	cmd.Flags().StringSliceVar(&files, "file", nil, "file to resolve (repeatable; default: all unmerged files)")
	cmd.Flags().BoolVar(&preview, "preview", false, "report what would change without touching any file")
	return cmd
}

// printReport writes the report to stdout and returns an error for failed
// outcomes so the process exits nonzero.
func printReport(report *gitflow.Report) error {
	for _, step := range report.Steps {
		fmt.Printf("  - %s\n", step)
	}
	for _, warning := range report.Warnings {
		fmt.Printf("  ! %s\n", warning)
	}
	if len(report.ConflictFiles) > 0 {
		fmt.Println("conflicted files:")
		for _, file := range report.ConflictFiles {
			fmt.Printf("  - %s\n", file)
		}
	}
	if !report.Success {
		return fmt.Errorf("%s", report.Message)
	}
	fmt.Println(report.Message)
	return nil
}
