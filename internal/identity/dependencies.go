package identity

import (
	"context"

	"github.com/temirov/gitid/internal/gitconfig"
	"github.com/temirov/gitid/internal/githubapi"
	"github.com/temirov/gitid/internal/profiles"
	"github.com/temirov/gitid/internal/prompt"
	"github.com/temirov/gitid/internal/remotes"
	"github.com/temirov/gitid/internal/sshkeys"
)

// ProfileStore persists profiles.
type ProfileStore interface {
	List() []profiles.Profile
	Names() []string
	Find(name string) (profiles.Profile, error)
	Add(executionContext context.Context, profile profiles.Profile) (profiles.Profile, error)
	Delete(executionContext context.Context, name string) error
	DeleteAll(executionContext context.Context) error
}

// IdentityApplier writes and reads git identity configuration.
type IdentityApplier interface {
	Apply(executionContext context.Context, options gitconfig.ApplyOptions) error
	EffectiveIdentity(executionContext context.Context, workingDirectory string) gitconfig.Identity
}

// KeyManager provisions per-profile SSH keys and host aliases.
type KeyManager interface {
	Layout() sshkeys.Layout
	Generate(executionContext context.Context, comment string, profileName string) (sshkeys.KeyPair, error)
	ConfigureAlias(executionContext context.Context, profileName string) error
	RemoveAlias(executionContext context.Context, profileName string) error
	DeleteKeyFiles(profileName string) error
	AddToAgent(profileName string) (bool, error)
	TestConnection(executionContext context.Context, profileName string) sshkeys.ConnectionResult
}

// ProviderAccount is an authenticated identity-provider session.
type ProviderAccount interface {
	AuthenticatedUser(executionContext context.Context) (githubapi.User, error)
	PrimaryEmail(executionContext context.Context, login string) (string, error)
	UploadPublicKey(executionContext context.Context, title string, publicKey string) (githubapi.KeyUploadResult, error)
}

// ProviderConnector authenticates against the identity provider.
type ProviderConnector func(executionContext context.Context) (ProviderAccount, error)

// GitRouter runs git under a profile.
type GitRouter interface {
	Route(executionContext context.Context, arguments []string) error
}

// Prompter collects typed answers.
type Prompter interface {
	Input(label string, defaultValue string, validator prompt.Validator) (string, error)
	Confirm(label string, defaultValue bool) (bool, error)
}

// OptionSelector lets the user pick one option.
type OptionSelector interface {
	Select(title string, options []prompt.SelectOption) (prompt.SelectOption, error)
}

// RemoteBinder points repository remotes at a profile's host alias.
type RemoteBinder interface {
	Execute(executionContext context.Context, options remotes.Options) (remotes.Outcome, error)
}
