package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kaeawc/git-flow-mcp/config"
	"github.com/kaeawc/git-flow-mcp/gitflow"
	gomcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, result *gomcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := gomcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func testSyncer(t *testing.T) *gitflow.Syncer {
	t.Helper()
	dir := t.TempDir()
	return gitflow.NewSyncer(dir, gitflow.NewExecRunner(dir))
}

func request(args map[string]interface{}) gomcp.CallToolRequest {
	req := gomcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleSyncWork_MissingStrategy(t *testing.T) {
	handler := handleSyncWork(testSyncer(t), config.Default())

	result, err := handler(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing required parameter: strategy")
}

func TestHandleSyncWork_InvalidStrategy(t *testing.T) {
	handler := handleSyncWork(testSyncer(t), config.Default())

	result, err := handler(context.Background(), request(map[string]interface{}{"strategy": "squash"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "invalid strategy")
	assert.Contains(t, text, "fast-forward, merge, or rebase")
}

func TestHandleSyncWork_InvalidAutoResolve(t *testing.T) {
	handler := handleSyncWork(testSyncer(t), config.Default())

	result, err := handler(context.Background(), request(map[string]interface{}{
		"strategy":     "merge",
		"auto_resolve": "both",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid auto_resolve")
}

func TestHandleSyncWork_OutsideRepositoryReportsFailure(t *testing.T) {
	handler := handleSyncWork(testSyncer(t), config.Default())

	result, err := handler(context.Background(), request(map[string]interface{}{"strategy": "merge"}))
	require.NoError(t, err)
	assert.False(t, result.IsError, "sync failures are reported, not raised")
	text := resultText(t, result)
	assert.Contains(t, text, "Sync failed")
	assert.Contains(t, text, "not a git repository")
}

func TestHandlePrepareBranch_MissingBranch(t *testing.T) {
	handler := handlePrepareBranch(testSyncer(t), config.Default())

	result, err := handler(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing required parameter: branch")
}

func TestHandleResolveConflicts_MissingStrategy(t *testing.T) {
	handler := handleResolveConflicts(testSyncer(t))

	result, err := handler(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing required parameter: strategy")
}

func TestHandleResolveConflicts_RejectsNone(t *testing.T) {
	handler := handleResolveConflicts(testSyncer(t))

	result, err := handler(context.Background(), request(map[string]interface{}{"strategy": "none"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "ours, theirs, or smart")
}

func TestHandleAnalyzeConflicts_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	content := "<<<<<<< HEAD\n\n=======\nkeep\n>>>>>>> other\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte(content), 0644))
	syncer := gitflow.NewSyncer(dir, gitflow.NewExecRunner(dir))

	handler := handleAnalyzeConflicts(syncer)
	result, err := handler(context.Background(), request(map[string]interface{}{"file": "f.txt"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "1 block(s) in 1 file(s)")
	assert.Contains(t, text, "f.txt")
	assert.Contains(t, text, "theirs (ours empty)")
}

func TestHandleAnalyzeConflicts_MissingFile(t *testing.T) {
	handler := handleAnalyzeConflicts(testSyncer(t))

	result, err := handler(context.Background(), request(map[string]interface{}{"file": "ghost.txt"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "conflict analysis failed")
}

func TestSplitFileList(t *testing.T) {
	assert.Nil(t, splitFileList(""))
	assert.Equal(t, []string{"a.go"}, splitFileList("a.go"))
	assert.Equal(t, []string{"a.go", "b.go"}, splitFileList(" a.go , b.go ,"))
}
