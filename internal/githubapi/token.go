package githubapi

import (
	"errors"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// Environment variable names consulted for a pre-issued GitHub token.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const environmentTokenMissingMessageConstant = "no GitHub token found in GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN"

// ErrEnvironmentTokenMissing indicates none of the token variables are set.
var ErrEnvironmentTokenMissing = errors.New(environmentTokenMissingMessageConstant)

var environmentTokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentTokenSource supplies the first non-empty token variable as a static OAuth token.
type EnvironmentTokenSource struct {
	lookupEnvironment func(string) (string, bool)
}

// NewEnvironmentTokenSource constructs a token source reading variables through lookupEnvironment.
func NewEnvironmentTokenSource(lookupEnvironment func(string) (string, bool)) EnvironmentTokenSource {
	if lookupEnvironment == nil {
		lookupEnvironment = os.LookupEnv
	}
	return EnvironmentTokenSource{lookupEnvironment: lookupEnvironment}
}

// Token implements oauth2.TokenSource. The zero value never finds a token.
func (source EnvironmentTokenSource) Token() (*oauth2.Token, error) {
	if source.lookupEnvironment == nil {
		return nil, ErrEnvironmentTokenMissing
	}
	for _, variableName := range environmentTokenPreference {
		value, exists := source.lookupEnvironment(variableName)
		if !exists {
			continue
		}
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) > 0 {
			return &oauth2.Token{AccessToken: trimmedValue}, nil
		}
	}
	return nil, ErrEnvironmentTokenMissing
}

// Available reports whether a token variable is set.
func (source EnvironmentTokenSource) Available() bool {
	_, tokenError := source.Token()
	return tokenError == nil
}
