package mcp

import (
	"context"
	"strings"

	"github.com/kaeawc/git-flow-mcp/config"
	"github.com/kaeawc/git-flow-mcp/gitflow"
	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func missingParamErr(param, example string) *gomcp.CallToolResult {
	msg := "missing required parameter: " + param
	if strings.TrimSpace(example) != "" {
		msg += ". Example: " + example
	}
	return gomcp.NewToolResultError(msg)
}

func toolErrWithHint(prefix string, err error, hint string) *gomcp.CallToolResult {
	msg := prefix
	if err != nil {
		msg += ": " + err.Error()
	}
	if strings.TrimSpace(hint) != "" {
		msg += " Hint: " + hint
	}
	return gomcp.NewToolResultError(msg)
}

// splitFileList parses a comma-separated file argument. Empty entries are
// dropped so trailing commas are harmless.
func splitFileList(raw string) []string {
	var files []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			files = append(files, p)
		}
	}
	return files
}

// handleRepoStatus reports branch, cleanliness, suspended operation, and
// ahead/behind counts. Read-only: the only git commands it runs are queries.
func handleRepoStatus(syncer *gitflow.Syncer, remote string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: repo_status")
		insp := syncer.Inspector()
		if !insp.IsRepository() {
			return toolErrWithHint("not a git repository", nil,
				"Start the server inside a repository or pass --repo."), nil
		}
		status := buildRepoStatus(ctx, insp, remote)
		return gomcp.NewToolResultText(renderRepoStatus(status)), nil
	}
}

// handleSyncWork runs the synchronization state machine and renders its
// report. Argument validation failures and sync failures are both tool
// results, never Go errors.
func handleSyncWork(syncer *gitflow.Syncer, cfg config.Config) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		rawStrategy := req.GetString("strategy", "")
		if rawStrategy == "" {
			return missingParamErr("strategy", `sync_work(strategy="rebase", auto_resolve="smart")`), nil
		}
		strategy, err := gitflow.ParseSyncStrategy(rawStrategy)
		if err != nil {
			return toolErrWithHint("invalid strategy", err,
				"Use fast-forward, merge, or rebase."), nil
		}
		autoResolve, err := gitflow.ParseAutoResolveStrategy(req.GetString("auto_resolve", cfg.AutoResolve))
		if err != nil {
			return toolErrWithHint("invalid auto_resolve", err,
				"Use none, ours, theirs, or smart."), nil
		}

		opts := gitflow.SyncOptions{
			Branch:      req.GetString("branch", ""),
			Source:      req.GetString("source", ""),
			Remote:      cfg.Remote,
			Strategy:    strategy,
			AutoResolve: autoResolve,
			Push:        req.GetBool("push", false),
			Stash:       req.GetBool("stash", false),
		}
		Log("tool call: sync_work strategy=%s branch=%q auto_resolve=%s", strategy, opts.Branch, autoResolve)

		report := syncer.Sync(ctx, opts)
		return gomcp.NewToolResultText(renderReport("Sync", report)), nil
	}
}

// handlePrepareBranch creates or checks out a work branch.
func handlePrepareBranch(syncer *gitflow.Syncer, cfg config.Config) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		branch := req.GetString("branch", "")
		if branch == "" {
			return missingParamErr("branch", `prepare_branch(branch="feature/login", sync=true)`), nil
		}

		opts := gitflow.PrepareOptions{
			Branch:      branch,
			Base:        req.GetString("base", cfg.DefaultBase),
			Remote:      cfg.Remote,
			Stash:       req.GetBool("stash", false),
			Sync:        req.GetBool("sync", false),
			Strategy:    gitflow.StrategyMerge,
			AutoResolve: gitflow.AutoResolveNone,
		}
		Log("tool call: prepare_branch branch=%q base=%q sync=%v", branch, opts.Base, opts.Sync)

		report := syncer.PrepareBranch(ctx, opts)
		return gomcp.NewToolResultText(renderReport("Prepare branch", report)), nil
	}
}

// handleAnalyzeConflicts parses and classifies conflict blocks without
// modifying anything.
func handleAnalyzeConflicts(syncer *gitflow.Syncer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		var files []string
		if file := req.GetString("file", ""); file != "" {
			files = []string{file}
		}
		Log("tool call: analyze_conflicts files=%v", files)

		analyses, err := syncer.AnalyzeConflicts(ctx, files)
		if err != nil {
			return toolErrWithHint("conflict analysis failed", err,
				"Check that the file paths are relative to the repository root."), nil
		}
		return gomcp.NewToolResultText(renderAnalyses(analyses)), nil
	}
}

// handleResolveConflicts applies a resolution strategy to unmerged files.
func handleResolveConflicts(syncer *gitflow.Syncer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		rawStrategy := req.GetString("strategy", "")
		if rawStrategy == "" {
			return missingParamErr("strategy", `resolve_conflicts(strategy="smart", preview=true)`), nil
		}
		strategy, err := gitflow.ParseAutoResolveStrategy(rawStrategy)
		if err != nil || strategy == gitflow.AutoResolveNone {
			return toolErrWithHint("invalid strategy", err,
				"Use ours, theirs, or smart."), nil
		}

		files := splitFileList(req.GetString("files", ""))
		preview := req.GetBool("preview", false)
		Log("tool call: resolve_conflicts strategy=%s files=%v preview=%v", strategy, files, preview)

		report := syncer.ResolveConflicts(ctx, strategy, files, preview)
		title := "Resolve conflicts"
		if preview {
			title = "Resolve conflicts (preview)"
		}
		return gomcp.NewToolResultText(renderReport(title, report)), nil
	}
}

// handleAbortOperation aborts the in-progress merge, rebase, or cherry-pick.
func handleAbortOperation(syncer *gitflow.Syncer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: abort_operation")
		report := syncer.AbortOperation(ctx)
		return gomcp.NewToolResultText(renderReport("Abort", report)), nil
	}
}
