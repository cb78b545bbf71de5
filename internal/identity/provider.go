package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/temirov/gitid/internal/githubapi"
)

const (
	deviceFlowMissingMessageConstant = "device flow not configured and no token found in the environment"
	environmentTokenUsedMessage      = "using identity provider token from environment"
	cliTokenUsedMessage              = "using identity provider token from gh"
	cliTokenUnavailableMessage       = "gh token unavailable"
)

// ErrDeviceFlowNotConfigured indicates no authentication method is available.
var ErrDeviceFlowNotConfigured = errors.New(deviceFlowMissingMessageConstant)

// GitHubConnectorOptions configures NewGitHubConnector.
type GitHubConnectorOptions struct {
	EnvironmentToken githubapi.EnvironmentTokenSource
	CLIToken         func(context.Context) (string, error)
	DeviceFlow       *githubapi.DeviceFlow
	APIBaseURL       string
	Logger           *zap.Logger
}

// NewGitHubConnector authenticates with a token from the environment when one is set, then
// with the token of a signed-in gh installation, and falls back to the OAuth device flow.
func NewGitHubConnector(options GitHubConnectorOptions) ProviderConnector {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(executionContext context.Context) (ProviderAccount, error) {
		var tokenSource oauth2.TokenSource
		if options.EnvironmentToken.Available() {
			logger.Debug(environmentTokenUsedMessage)
			tokenSource = options.EnvironmentToken
		} else if options.CLIToken != nil {
			token, tokenError := options.CLIToken(executionContext)
			if tokenError != nil {
				logger.Debug(cliTokenUnavailableMessage, zap.Error(tokenError))
			} else {
				logger.Debug(cliTokenUsedMessage)
				tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			}
		}

		if tokenSource == nil {
			if options.DeviceFlow == nil {
				return nil, ErrDeviceFlowNotConfigured
			}
			token, authenticationError := options.DeviceFlow.Authenticate(executionContext)
			if authenticationError != nil {
				return nil, authenticationError
			}
			tokenSource = oauth2.StaticTokenSource(token)
		}

		client, clientError := githubapi.NewClient(executionContext, tokenSource, options.APIBaseURL)
		if clientError != nil {
			return nil, clientError
		}
		return client, nil
	}
}
