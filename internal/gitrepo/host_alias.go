package gitrepo

import (
	"strings"
)

const (
	cloneDirectoryTrimCharactersConstant = "/"
)

// RewriteHostAlias points a remote on host at the SSH alias instead. The repository path is kept verbatim.
// Remotes on other hosts, and unrecognized strings, are returned unchanged with false.
func RewriteHostAlias(remote string, host string, alias string) (string, bool) {
	if len(host) == 0 || len(alias) == 0 {
		return remote, false
	}

	aliasPrefix := gitUserPrefixConstant + alias + sshPathDelimiterConstant
	rewritablePrefixes := []string{
		gitUserPrefixConstant + host + sshPathDelimiterConstant,
		httpsProtocolPrefixConstant + host + pathSeparatorConstant,
		sshProtocolPrefixConstant + gitUserPrefixConstant + host + pathSeparatorConstant,
	}
	for _, rewritablePrefix := range rewritablePrefixes {
		if strings.HasPrefix(remote, rewritablePrefix) {
			return aliasPrefix + strings.TrimPrefix(remote, rewritablePrefix), true
		}
	}
	return remote, false
}

// CloneDirectoryName returns the directory git clone creates for remote: the last path segment without .git.
func CloneDirectoryName(remote string) string {
	trimmedRemote := strings.TrimRight(strings.TrimSpace(remote), cloneDirectoryTrimCharactersConstant)
	lastSeparatorIndex := strings.LastIndexAny(trimmedRemote, pathSeparatorConstant+sshPathDelimiterConstant)
	lastSegment := trimmedRemote[lastSeparatorIndex+1:]
	return strings.TrimSuffix(lastSegment, gitSuffixConstant)
}
