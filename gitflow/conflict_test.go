package gitflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConflicts_SingleBlock(t *testing.T) {
	content := "line one\n<<<<<<< HEAD\nour change\n=======\ntheir change\n>>>>>>> origin/main\nline two\n"
	blocks := ParseConflicts(content)
	require.Len(t, blocks, 1)
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, 5, blocks[0].EndLine)
	assert.Equal(t, "our change", blocks[0].Ours)
	assert.Equal(t, "their change", blocks[0].Theirs)
}

func TestParseConflicts_MultipleBlocksInOrder(t *testing.T) {
	content := "<<<<<<< HEAD\na\n=======\nb\n>>>>>>> other\nmiddle\n<<<<<<< HEAD\nc\n=======\nd\n>>>>>>> other\n"
	blocks := ParseConflicts(content)
	require.Len(t, blocks, 2)
	assert.Less(t, blocks[0].EndLine, blocks[1].StartLine)
	assert.Equal(t, "a", blocks[0].Ours)
	assert.Equal(t, "d", blocks[1].Theirs)
	for _, block := range blocks {
		assert.Less(t, block.StartLine, block.EndLine)
	}
}

func TestParseConflicts_DanglingStartMarker(t *testing.T) {
	content := "<<<<<<< HEAD\nsome text\nno other markers\n"
	assert.Empty(t, ParseConflicts(content))
}

func TestParseConflicts_MissingEndMarker(t *testing.T) {
	content := "<<<<<<< HEAD\nours\n=======\ntheirs but never closed\n"
	assert.Empty(t, ParseConflicts(content))
}

func TestParseConflicts_NestedLookingMarkers(t *testing.T) {
	// A second start marker between the first start and middle does not open
	// a new block; only the first middle/end after a start count.
	content := "<<<<<<< HEAD\n<<<<<<< inner\nours\n=======\ntheirs\n>>>>>>> other\ntail\n"
	blocks := ParseConflicts(content)
	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].StartLine)
	assert.Equal(t, 5, blocks[0].EndLine)
	assert.Equal(t, "<<<<<<< inner\nours", blocks[0].Ours)
}

func TestParseConflicts_EmptySides(t *testing.T) {
	content := "<<<<<<< HEAD\n=======\n>>>>>>> other\n"
	blocks := ParseConflicts(content)
	require.Len(t, blocks, 1)
	assert.Equal(t, "", blocks[0].Ours)
	assert.Equal(t, "", blocks[0].Theirs)
}

func TestParseConflicts_NoMarkers(t *testing.T) {
	assert.Empty(t, ParseConflicts("just\nregular\ncontent\n"))
	assert.Empty(t, ParseConflicts(""))
}

func TestHasConflictMarkers(t *testing.T) {
	assert.True(t, HasConflictMarkers("<<<<<<< HEAD\nx\n"))
	assert.False(t, HasConflictMarkers("a <<<<<<< not at line start\n"))
	assert.False(t, HasConflictMarkers("clean file\n"))
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conflicted.txt")
	content := "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> other\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	analysis, err := AnalyzeFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, analysis.Path)
	assert.Equal(t, 1, analysis.TotalConflicts())
}

func TestAnalyzeFile_Missing(t *testing.T) {
	_, err := AnalyzeFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
