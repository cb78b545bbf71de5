package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitid/internal/gitrepo"
)

func TestRewriteHostAlias(testInstance *testing.T) {
	testCases := []struct {
		name            string
		remote          string
		expectedRemote  string
		expectRewritten bool
	}{
		{name: "scp_style", remote: "git@github.com:a/b.git", expectedRemote: "git@github-work:a/b.git", expectRewritten: true},
		{name: "https", remote: "https://github.com/a/b", expectedRemote: "git@github-work:a/b", expectRewritten: true},
		{name: "ssh_scheme", remote: "ssh://git@github.com/a/b.git", expectedRemote: "git@github-work:a/b.git", expectRewritten: true},
		{name: "other_host", remote: "git@gitlab.com:a/b.git", expectedRemote: "git@gitlab.com:a/b.git"},
		{name: "host_prefix_only", remote: "https://github.com.evil.example/a/b", expectedRemote: "https://github.com.evil.example/a/b"},
		{name: "plain_argument", remote: "origin", expectedRemote: "origin"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rewrittenRemote, rewritten := gitrepo.RewriteHostAlias(testCase.remote, "github.com", "github-work")
			require.Equal(testInstance, testCase.expectedRemote, rewrittenRemote)
			require.Equal(testInstance, testCase.expectRewritten, rewritten)
		})
	}
}

func TestCloneDirectoryName(testInstance *testing.T) {
	testCases := map[string]string{
		"git@github.com:a/b.git":          "b",
		"git@github-work:a/b.git":         "b",
		"https://github.com/a/project":    "project",
		"https://github.com/a/project/":   "project",
		"ssh://git@github.com/a/tool.git": "tool",
	}
	for remote, expectedDirectory := range testCases {
		require.Equal(testInstance, expectedDirectory, gitrepo.CloneDirectoryName(remote), remote)
	}
}
