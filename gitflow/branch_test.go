package gitflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBranchName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Fix Login Bug", "fix-login-bug"},
		{"feature/add-auth", "feature/add-auth"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"UPPER_case.mix", "upper_case.mix"},
		{"weird!!chars##here", "weirdcharshere"},
		{"---leading-and-trailing---", "leading-and-trailing"},
		{"/slashes/around/", "slashes/around"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeBranchName(tc.in), "input %q", tc.in)
	}
}

func TestIsValidBranchName(t *testing.T) {
	valid := []string{"main", "feature/login", "fix-123", "release/v1.2.3", "a/b/c"}
	for _, name := range valid {
		assert.True(t, IsValidBranchName(name), "expected %q to be valid", name)
	}

	invalid := []string{
		"", "@", "/leading", "trailing/", "double//slash",
		"dot..dot", "ref@{0}", "has space", "has~tilde", "has^caret",
		"has:colon", "has?mark", "wild*card", ".hidden", "part./x",
		"branch.lock", "nested/branch.lock",
	}
	for _, name := range invalid {
		assert.False(t, IsValidBranchName(name), "expected %q to be invalid", name)
	}
}

func TestSafeBranchName_PassThrough(t *testing.T) {
	assert.Equal(t, "feature/login", SafeBranchName("feature", "login"))
	assert.Equal(t, "login", SafeBranchName("", "login"))
}

func TestSafeBranchName_NeverEmpty(t *testing.T) {
	name := SafeBranchName("", "!!!")
	assert.True(t, IsValidBranchName(name), "got %q", name)
	assert.True(t, strings.HasPrefix(name, "work"), "got %q", name)
}

func TestSafeBranchName_KeepsPrefixOnFallback(t *testing.T) {
	// "x." is invalid as a path component but fine once a suffix is added.
	name := SafeBranchName("feature", "x.")
	assert.True(t, IsValidBranchName(name), "got %q", name)
	assert.True(t, strings.HasPrefix(name, "feature/x."), "got %q", name)
}
