package gitflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareBranch_RequiresName(t *testing.T) {
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, happyInspector())

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{})
	assert.False(t, report.Success)
	assert.Contains(t, report.Message, "branch name is required")
	assert.Empty(t, runner.calls)
}

func TestPrepareBranch_SanitizesNameWithWarning(t *testing.T) {
	inspector := happyInspector()
	inspector.branch = "main"
	inspector.local["fix-login-bug"] = true
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, inspector)

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "Fix Login Bug"})
	require.True(t, report.Success, "message: %s", report.Message)
	assert.True(t, runner.ran("git checkout fix-login-bug"))
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "sanitized")
}

func TestPrepareBranch_RescuesUnsalvageableName(t *testing.T) {
	inspector := happyInspector()
	inspector.branch = "main"
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, inspector)

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "???"})
	require.True(t, report.Success, "message: %s", report.Message)
	assert.True(t, runner.ran("git checkout -b work/work-"))
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "sanitized")
}

func TestPrepareBranch_AlreadyOnBranch(t *testing.T) {
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, happyInspector())

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "feature"})
	require.True(t, report.Success)
	assert.False(t, runner.ran("git checkout"))
	assert.Contains(t, report.Message, "feature is ready")
}

func TestPrepareBranch_TracksRemoteOnlyBranch(t *testing.T) {
	inspector := happyInspector()
	inspector.branch = "main"
	inspector.remote["hotfix"] = true
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, inspector)

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "hotfix"})
	require.True(t, report.Success, "message: %s", report.Message)
	assert.True(t, runner.ran("git checkout -b hotfix --track origin/hotfix"))
}

func TestPrepareBranch_CreatesFromDefaultBase(t *testing.T) {
	inspector := happyInspector()
	inspector.branch = "main"
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, inspector)

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "brand-new"})
	require.True(t, report.Success, "message: %s", report.Message)
	assert.True(t, runner.ran("git checkout -b brand-new main"))
}

func TestPrepareBranch_MissingBaseFails(t *testing.T) {
	inspector := happyInspector()
	inspector.branch = "main"
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, inspector)

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "brand-new", Base: "develop"})
	assert.False(t, report.Success)
	assert.Contains(t, report.Message, `"develop" does not exist locally`)
}

func TestPrepareBranch_DirtyTreeRefusesSwitch(t *testing.T) {
	inspector := happyInspector()
	inspector.branch = "main"
	inspector.clean = false
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, inspector)

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "feature"})
	assert.False(t, report.Success)
	assert.Contains(t, report.Message, "uncommitted changes")
	assert.False(t, runner.ran("git checkout"))
}

func TestPrepareBranch_SyncMergesBase(t *testing.T) {
	runner := &fakeRunner{}
	syncer := newTestSyncer(t.TempDir(), runner, happyInspector())

	report := syncer.PrepareBranch(context.Background(), PrepareOptions{Branch: "feature", Sync: true})
	require.True(t, report.Success, "message: %s", report.Message)
	assert.True(t, runner.ran("git merge --no-ff"))
	assert.Contains(t, report.Message, "synced with main")
}
