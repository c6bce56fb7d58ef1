package gitflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Classification is the outcome of classifying one conflict block.
// Resolution is only meaningful when Resolved is true.
type Classification struct {
	Category   string
	Resolution string
	Resolved   bool
}

// resolveRule pairs a category name with a predicate+resolver. Rules are
// evaluated in registration order and the first match wins; several
// categories overlap, so the order is load-bearing.
type resolveRule struct {
	category string
	apply    func(ours, theirs string) (resolution string, ok bool)
}

var smartRules = []resolveRule{
	{
		category: "theirs (ours empty)",
		apply: func(ours, theirs string) (string, bool) {
			if strings.TrimSpace(ours) == "" && strings.TrimSpace(theirs) != "" {
				return theirs, true
			}
			return "", false
		},
	},
	{
		category: "ours (theirs empty)",
		apply: func(ours, theirs string) (string, bool) {
			if strings.TrimSpace(ours) != "" && strings.TrimSpace(theirs) == "" {
				return ours, true
			}
			return "", false
		},
	},
	{
		category: "ours (includes theirs)",
		apply: func(ours, theirs string) (string, bool) {
			if strings.Contains(ours, theirs) {
				return ours, true
			}
			return "", false
		},
	},
	{
		category: "theirs (includes ours)",
		apply: func(ours, theirs string) (string, bool) {
			if strings.Contains(theirs, ours) {
				return theirs, true
			}
			return "", false
		},
	},
	{
		category: "merged imports",
		apply: func(ours, theirs string) (string, bool) {
			if !isImportBlock(ours) || !isImportBlock(theirs) {
				return "", false
			}
			return mergeImportLines(ours, theirs), true
		},
	},
	{
		category: "combined additions",
		apply: func(ours, theirs string) (string, bool) {
			if isSimpleAddition(ours) && isSimpleAddition(theirs) {
				return ours + "\n" + theirs, true
			}
			return "", false
		},
	},
	{
		category: "theirs (version update)",
		apply: func(ours, theirs string) (string, bool) {
			if hasVersionToken(ours) && hasVersionToken(theirs) {
				return theirs, true
			}
			return "", false
		},
	},
}

const manualCategory = "manual resolution needed"

// Classify runs the rule chain over a block and returns the first matching
// classification. Blocks no rule can handle are flagged for manual
// resolution.
func Classify(block ConflictBlock) Classification {
	for _, rule := range smartRules {
		if resolution, ok := rule.apply(block.Ours, block.Theirs); ok {
			return Classification{Category: rule.category, Resolution: resolution, Resolved: true}
		}
	}
	return Classification{Category: manualCategory}
}

// importPrefixes are the per-language statement keywords that mark a line as
// part of an import/include block.
var importPrefixes = []string{"import", "require", "from", "#include"}

// isImportBlock reports whether every non-blank line of text looks like an
// import/include/require statement.
func isImportBlock(text string) bool {
	sawLine := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		sawLine = true
		matched := false
		for _, prefix := range importPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return sawLine
}

// mergeImportLines unions the non-blank lines of both sides, deduplicated and
// lexicographically sorted.
func mergeImportLines(ours, theirs string) string {
	seen := make(map[string]struct{})
	var merged []string
	for _, side := range []string{ours, theirs} {
		for _, line := range strings.Split(side, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, ok := seen[line]; ok {
				continue
			}
			seen[line] = struct{}{}
			merged = append(merged, line)
		}
	}
	sort.Strings(merged)
	return strings.Join(merged, "\n")
}

// isSimpleAddition reports whether a side is a small pure addition: at most
// five non-blank lines and no deletion indicator (a "delete" keyword or a
// line starting with "-").
func isSimpleAddition(text string) bool {
	if strings.Contains(text, "delete") {
		return false
	}
	count := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			return false
		}
		count++
	}
	return count > 0 && count <= 5
}

var semverCandidate = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:[-+][0-9A-Za-z.\-]+)?`)

// hasVersionToken reports whether text mentions a version: either a literal
// "version"/"VERSION" keyword or a parseable semantic-version token.
func hasVersionToken(text string) bool {
	if strings.Contains(text, "version") || strings.Contains(text, "VERSION") {
		return true
	}
	for _, candidate := range semverCandidate.FindAllString(text, -1) {
		if _, err := goversion.NewVersion(candidate); err == nil {
			return true
		}
	}
	return false
}

// ResolutionOutcome reports the result of resolving one file.
type ResolutionOutcome struct {
	ResolvedBlocks int
	Strategies     []string
}

// Resolver applies conflict resolutions to files in a repository working
// tree. Whole-file ours/theirs strategies go through git's own two-way
// checkout; the smart strategy classifies and splices per block.
type Resolver struct {
	dir    string
	runner Runner
}

// NewResolver creates a resolver for the working tree at dir.
func NewResolver(dir string, runner Runner) *Resolver {
	return &Resolver{dir: dir, runner: runner}
}

// ResolveFile resolves the conflicts of one file (path relative to the
// working tree) with the given strategy. In preview mode nothing is written
// or checked out; the outcome reports what would happen. Staging the result
// is the caller's responsibility.
func (r *Resolver) ResolveFile(ctx context.Context, path string, strategy AutoResolveStrategy, preview bool) (*ResolutionOutcome, error) {
	switch strategy {
	case AutoResolveOurs, AutoResolveTheirs:
		return r.resolveWholeFile(ctx, path, strategy, preview)
	case AutoResolveSmart:
		return r.resolveSmart(path, preview)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// resolveWholeFile takes one side of the whole file via git's two-way
// checkout. This is the cheapest, least intelligent path; it applies per
// file, not per block. Marker count is informational only: add/add,
// delete/modify, and binary conflicts carry no textual markers but still
// resolve by taking one side, and a delete/modify side may not even be
// readable. The file counts as one resolved unit either way.
func (r *Resolver) resolveWholeFile(ctx context.Context, path string, strategy AutoResolveStrategy, preview bool) (*ResolutionOutcome, error) {
	blocks := 1
	if analysis, err := AnalyzeFile(r.absPath(path)); err == nil && analysis.TotalConflicts() > 0 {
		blocks = analysis.TotalConflicts()
	}
	desc := fmt.Sprintf("take %s side for the whole file", strategy)
	if preview {
		return &ResolutionOutcome{
			ResolvedBlocks: blocks,
			Strategies:     []string{"would " + desc},
		}, nil
	}

	sideFlag := "--ours"
	if strategy == AutoResolveTheirs {
		sideFlag = "--theirs"
	}
	if res := r.runner.Run(ctx, "git", "checkout", sideFlag, "--", path); !res.Success {
		return nil, fmt.Errorf("checkout %s for %s: %s", sideFlag, path, res.ErrorText)
	}
	return &ResolutionOutcome{
		ResolvedBlocks: blocks,
		Strategies:     []string{desc},
	}, nil
}

// resolveSmart classifies every block and splices resolutions into the file.
// Blocks are spliced from the last to the first so earlier line offsets stay
// valid while later regions are replaced.
func (r *Resolver) resolveSmart(path string, preview bool) (*ResolutionOutcome, error) {
	abs := r.absPath(path)
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	blocks := ParseConflicts(string(data))

	outcome := &ResolutionOutcome{}
	lines := strings.Split(string(data), "\n")
	for idx := len(blocks) - 1; idx >= 0; idx-- {
		block := blocks[idx]
		cls := Classify(block)
		if !cls.Resolved {
			continue
		}
		outcome.ResolvedBlocks++

		desc := fmt.Sprintf("block at line %d: %s", block.StartLine+1, cls.Category)
		if preview {
			desc = "would resolve " + desc
		}
		// Prepend so descriptions end up in document order.
		outcome.Strategies = append([]string{desc}, outcome.Strategies...)

		var resolution []string
		if cls.Resolution != "" {
			resolution = strings.Split(cls.Resolution, "\n")
		}
		lines = append(lines[:block.StartLine], append(resolution, lines[block.EndLine+1:]...)...)
	}

	if outcome.ResolvedBlocks == 0 {
		outcome.Strategies = []string{fmt.Sprintf("%d conflict(s) need manual resolution", len(blocks))}
		return outcome, nil
	}

	if !preview {
		mode := os.FileMode(0644)
		if info, statErr := os.Stat(abs); statErr == nil {
			mode = info.Mode().Perm()
		}
		if err := os.WriteFile(abs, []byte(strings.Join(lines, "\n")), mode); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

func (r *Resolver) absPath(path string) string {
	if r.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.dir, path)
}
