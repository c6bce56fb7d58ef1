package gitflow

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

var (
	unsafeBranchChars = regexp.MustCompile(`[^a-z0-9\-_/.]+`)
	repeatedDashes    = regexp.MustCompile(`-+`)
)

// SanitizeBranchName transforms an arbitrary string into a git-branch
// friendly string.
func SanitizeBranchName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = unsafeBranchChars.ReplaceAllString(s, "")
	s = repeatedDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-/")
}

// IsValidBranchName performs a conservative validation for git branch names.
// It rejects ambiguous or unsafe forms before they reach git.
func IsValidBranchName(s string) bool {
	if s == "" || s == "@" {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return false
	}
	if strings.Contains(s, "//") || strings.Contains(s, "..") || strings.Contains(s, "@{") {
		return false
	}
	if strings.ContainsAny(s, " ~^:?*[\\'\"`") {
		return false
	}
	for _, part := range strings.Split(s, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
			return false
		}
		if strings.HasSuffix(part, ".lock") {
			return false
		}
	}
	return true
}

// SafeBranchName derives a valid branch name from prefix+name. It never
// returns an empty or invalid name.
func SafeBranchName(prefix, name string) string {
	p := SanitizeBranchName(prefix)
	if p != "" {
		p += "/"
	}

	candidate := SanitizeBranchName(p + name)
	if IsValidBranchName(candidate) {
		return candidate
	}

	base := SanitizeBranchName(name)
	if base == "" {
		base = "work"
	}
	suffix := fmt.Sprintf("%x", time.Now().UnixNano())

	if p != "" {
		candidate = p + base + "-" + suffix
		if IsValidBranchName(candidate) {
			return candidate
		}
	}

	candidate = "work/" + base + "-" + suffix
	if IsValidBranchName(candidate) {
		return candidate
	}

	return "work-" + suffix
}

// HasGitHubCLI reports whether the gh CLI is installed and authenticated.
// This is a capability probe only; no platform operations depend on it.
func HasGitHubCLI() bool {
	if _, err := exec.LookPath("gh"); err != nil {
		return false
	}
	return exec.Command("gh", "auth", "status").Run() == nil
}
