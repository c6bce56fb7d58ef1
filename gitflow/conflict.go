package gitflow

import (
	"os"
	"strings"
)

// Git conflict markers. Marker lines carry a trailing label ("<<<<<<< HEAD")
// so detection is by prefix.
const (
	conflictStart  = "<<<<<<<"
	conflictMiddle = "======="
	conflictEnd    = ">>>>>>>"
)

// ConflictBlock is one marker-delimited region within a file. StartLine and
// EndLine are 0-based indices of the start and end marker lines in the
// original content.
type ConflictBlock struct {
	StartLine int
	EndLine   int
	Ours      string
	Theirs    string
}

// FileConflictAnalysis aggregates the conflict blocks of one file in document
// order. It is computed fresh per call; the working file may change between
// calls, so analyses are never cached.
type FileConflictAnalysis struct {
	Path   string
	Blocks []ConflictBlock
}

// TotalConflicts returns the number of conflict blocks found.
func (a *FileConflictAnalysis) TotalConflicts() int {
	return len(a.Blocks)
}

// HasConflictMarkers reports whether content contains a conflict start marker.
func HasConflictMarkers(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, conflictStart) {
			return true
		}
	}
	return false
}

// ParseConflicts scans content line by line and returns all well-formed
// conflict blocks in document order. A start marker without a middle and end
// marker before EOF is skipped without error: stray marker text inside a
// comment or string literal is not a conflict region. Only the first middle
// and end marker after a start count, so nested-looking markers do not
// produce extra blocks.
func ParseConflicts(content string) []ConflictBlock {
	lines := strings.Split(content, "\n")
	var blocks []ConflictBlock

	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], conflictStart) {
			continue
		}

		middle := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.HasPrefix(lines[j], conflictMiddle) {
				middle = j
				break
			}
		}
		if middle == -1 {
			continue
		}

		end := -1
		for k := middle + 1; k < len(lines); k++ {
			if strings.HasPrefix(lines[k], conflictEnd) {
				end = k
				break
			}
		}
		if end == -1 {
			continue
		}

		blocks = append(blocks, ConflictBlock{
			StartLine: i,
			EndLine:   end,
			Ours:      strings.Join(lines[i+1:middle], "\n"),
			Theirs:    strings.Join(lines[middle+1:end], "\n"),
		})
		i = end
	}

	return blocks
}

// AnalyzeFile reads path and parses its conflict blocks.
func AnalyzeFile(path string) (*FileConflictAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileConflictAnalysis{Path: path, Blocks: ParseConflicts(string(data))}, nil
}
