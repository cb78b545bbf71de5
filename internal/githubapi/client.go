package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const (
	noreplyEmailTemplateConstant      = "%s@users.noreply.github.com"
	userRequestErrorTemplateConstant  = "unable to fetch GitHub user: %w"
	emailRequestErrorTemplateConstant = "unable to fetch GitHub emails: %w"
	keyUploadErrorTemplateConstant    = "unable to upload SSH key to GitHub: %w"
	baseURLErrorTemplateConstant      = "invalid GitHub API base URL %q: %w"
	tokenSourceMissingMessageConstant = "GitHub token source not configured"
	urlPathSeparatorConstant          = "/"
)

// ErrTokenSourceNotConfigured indicates NewClient received no token source.
var ErrTokenSourceNotConfigured = errors.New(tokenSourceMissingMessageConstant)

// User is the signed-in GitHub account.
type User struct {
	Login string
	Name  string
}

// DisplayName returns the profile name, falling back to the login.
func (user User) DisplayName() string {
	if len(strings.TrimSpace(user.Name)) == 0 {
		return user.Login
	}
	return user.Name
}

// KeyUploadResult reports how GitHub handled an uploaded key.
type KeyUploadResult struct {
	Created       bool
	AlreadyExists bool
}

// Client wraps the GitHub REST API calls git-id needs.
type Client struct {
	client *github.Client
}

// NewClient constructs a Client authenticated by tokenSource. An empty apiBaseURL targets api.github.com.
func NewClient(executionContext context.Context, tokenSource oauth2.TokenSource, apiBaseURL string) (*Client, error) {
	if tokenSource == nil {
		return nil, ErrTokenSourceNotConfigured
	}

	githubClient := github.NewClient(oauth2.NewClient(executionContext, tokenSource))
	if len(strings.TrimSpace(apiBaseURL)) > 0 {
		normalizedBaseURL := strings.TrimRight(apiBaseURL, urlPathSeparatorConstant) + urlPathSeparatorConstant
		parsedBaseURL, parseError := url.Parse(normalizedBaseURL)
		if parseError != nil {
			return nil, fmt.Errorf(baseURLErrorTemplateConstant, apiBaseURL, parseError)
		}
		githubClient.BaseURL = parsedBaseURL
	}
	return &Client{client: githubClient}, nil
}

// AuthenticatedUser returns the account owning the token.
func (client *Client) AuthenticatedUser(executionContext context.Context) (User, error) {
	githubUser, _, requestError := client.client.Users.Get(executionContext, "")
	if requestError != nil {
		return User{}, fmt.Errorf(userRequestErrorTemplateConstant, requestError)
	}
	return User{Login: githubUser.GetLogin(), Name: githubUser.GetName()}, nil
}

// PrimaryEmail returns the primary address, else the first listed address, else the login's noreply address.
func (client *Client) PrimaryEmail(executionContext context.Context, login string) (string, error) {
	emails, _, requestError := client.client.Users.ListEmails(executionContext, nil)
	if requestError != nil {
		return "", fmt.Errorf(emailRequestErrorTemplateConstant, requestError)
	}
	for _, email := range emails {
		if email.GetPrimary() && len(email.GetEmail()) > 0 {
			return email.GetEmail(), nil
		}
	}
	for _, email := range emails {
		if len(email.GetEmail()) > 0 {
			return email.GetEmail(), nil
		}
	}
	return fmt.Sprintf(noreplyEmailTemplateConstant, login), nil
}

// UploadPublicKey registers an SSH public key. GitHub answers 422 when the key is already registered;
// that is reported as success with AlreadyExists set.
func (client *Client) UploadPublicKey(executionContext context.Context, title string, publicKey string) (KeyUploadResult, error) {
	_, response, requestError := client.client.Users.CreateKey(executionContext, &github.Key{
		Title: github.String(title),
		Key:   github.String(strings.TrimSpace(publicKey)),
	})
	if requestError != nil {
		if response != nil && response.StatusCode == http.StatusUnprocessableEntity {
			return KeyUploadResult{AlreadyExists: true}, nil
		}
		return KeyUploadResult{}, fmt.Errorf(keyUploadErrorTemplateConstant, requestError)
	}
	return KeyUploadResult{Created: true}, nil
}
