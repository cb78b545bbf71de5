package githubapi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	defaultClientIDConstant             = "Ov23liig7GSttaj33WLN"
	deviceCodeErrorTemplateConstant     = "unable to request GitHub device code: %w"
	accessTokenErrorTemplateConstant    = "GitHub authorization failed: %w"
	authorizationExpiredMessageConstant = "authorization expired; please try again"
	verificationBannerConstant          = "GitHub Authentication"
	verificationStepOneTemplateConstant = "  1. Open: %s\n"
	verificationStepTwoTemplateConstant = "  2. Enter code: %s\n"
	waitingForAuthorizationConstant     = "Waiting for GitHub authorization..."
	deviceCodeIssuedMessageConstant     = "Issued GitHub device code"
	browserOpenSkippedMessageConstant   = "Browser launch disabled; open the verification URL manually"
	logFieldVerificationURIConstant     = "verification_uri"
	logFieldDeviceCodeExpiryConstant    = "expires_at"
	newlineConstant                     = "\n"
	expiredTokenErrorCodeConstant       = "expired_token"
)

var defaultScopes = []string{"read:user", "user:email", "admin:public_key"}

// ErrAuthorizationExpired indicates the user did not approve the device code before it expired.
var ErrAuthorizationExpired = errors.New(authorizationExpiredMessageConstant)

// BrowserOpener opens a URL in the user's browser.
type BrowserOpener func(url string)

// DeviceFlowOptions configures DeviceFlow.
type DeviceFlowOptions struct {
	ClientID      string
	Scopes        []string
	Endpoint      oauth2.Endpoint
	OpenBrowser   bool
	BrowserOpener BrowserOpener
	Output        io.Writer
	Logger        *zap.Logger
}

// DeviceFlow runs the OAuth device authorization grant against GitHub.
type DeviceFlow struct {
	configuration oauth2.Config
	openBrowser   bool
	browserOpener BrowserOpener
	output        io.Writer
	logger        *zap.Logger
}

// NewDeviceFlow constructs a DeviceFlow, defaulting to the git-id OAuth application and GitHub endpoints.
func NewDeviceFlow(options DeviceFlowOptions) *DeviceFlow {
	clientID := options.ClientID
	if len(clientID) == 0 {
		clientID = defaultClientIDConstant
	}
	scopes := options.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	endpoint := options.Endpoint
	if len(endpoint.DeviceAuthURL) == 0 {
		endpoint = endpoints.GitHub
	}
	browserOpener := options.BrowserOpener
	if browserOpener == nil {
		browserOpener = launcher.Open
	}
	output := options.Output
	if output == nil {
		output = io.Discard
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeviceFlow{
		configuration: oauth2.Config{ClientID: clientID, Scopes: scopes, Endpoint: endpoint},
		openBrowser:   options.OpenBrowser,
		browserOpener: browserOpener,
		output:        output,
		logger:        logger,
	}
}

// Authenticate requests a device code, shows it to the user, and polls until an access token is issued,
// the code expires, or executionContext is cancelled.
func (flow *DeviceFlow) Authenticate(executionContext context.Context) (*oauth2.Token, error) {
	deviceAuthorization, deviceError := flow.configuration.DeviceAuth(executionContext)
	if deviceError != nil {
		return nil, fmt.Errorf(deviceCodeErrorTemplateConstant, deviceError)
	}

	flow.logger.Debug(deviceCodeIssuedMessageConstant,
		zap.String(logFieldVerificationURIConstant, deviceAuthorization.VerificationURI),
		zap.Time(logFieldDeviceCodeExpiryConstant, deviceAuthorization.Expiry),
	)

	fmt.Fprint(flow.output, newlineConstant+verificationBannerConstant+newlineConstant)
	fmt.Fprintf(flow.output, verificationStepOneTemplateConstant, deviceAuthorization.VerificationURI)
	fmt.Fprintf(flow.output, verificationStepTwoTemplateConstant, deviceAuthorization.UserCode)
	fmt.Fprint(flow.output, newlineConstant)

	if flow.openBrowser {
		flow.browserOpener(deviceAuthorization.VerificationURI)
	} else {
		flow.logger.Debug(browserOpenSkippedMessageConstant)
	}

	fmt.Fprintln(flow.output, waitingForAuthorizationConstant)

	pollingContext := executionContext
	if !deviceAuthorization.Expiry.IsZero() {
		var cancel context.CancelFunc
		pollingContext, cancel = context.WithDeadline(executionContext, deviceAuthorization.Expiry)
		defer cancel()
	}

	token, tokenError := flow.configuration.DeviceAccessToken(pollingContext, deviceAuthorization)
	if tokenError != nil {
		if errors.Is(tokenError, context.DeadlineExceeded) && executionContext.Err() == nil {
			return nil, ErrAuthorizationExpired
		}
		var retrieveError *oauth2.RetrieveError
		if errors.As(tokenError, &retrieveError) && retrieveError.ErrorCode == expiredTokenErrorCodeConstant {
			return nil, ErrAuthorizationExpired
		}
		return nil, fmt.Errorf(accessTokenErrorTemplateConstant, tokenError)
	}
	return token, nil
}
